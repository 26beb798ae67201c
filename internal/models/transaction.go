package models

import (
	"time"
)

// Status is the lifecycle status of a transaction. Pending is the only
// initial value; success and failed are terminal.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// IsTerminal reports whether no further transition out of s is permitted.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Transaction is a single STK-push collection attempt, keyed by the
// gateway-issued transaction id.
type Transaction struct {
	TransactionID    string    `bson:"transactionId" json:"transactionId"`
	Phone            string    `bson:"phone" json:"phone"`
	Amount           float64   `bson:"amount" json:"amount"`
	Status           Status    `bson:"status" json:"status"`
	GatewayReference string    `bson:"gatewayReference,omitempty" json:"gatewayReference,omitempty"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
}
