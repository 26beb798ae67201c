package repository

import (
	"context"
	"errors"

	"github.com/lykerclassy/lipana-mpesa-integration/internal/models"
)

// ErrNotFound is returned when no transaction matches the given id.
var ErrNotFound = errors.New("transaction not found")

// TransactionRepository persists transactions keyed by the gateway-issued id.
//
//go:generate mockgen -destination=mocks/mock_repository.go -package=mock_repository -source=repository.go TransactionRepository
//
// MarkSuccess and MarkFailed only touch records that are still pending, so a
// record that has reached a terminal status is never overwritten; re-applying
// the same terminal update reports ErrNotFound via the pending filter, which
// callers treat as an idempotent no-op after checking the record exists.
type TransactionRepository interface {
	Insert(ctx context.Context, txn *models.Transaction) error
	FindByID(ctx context.Context, transactionID string) (*models.Transaction, error)
	MarkSuccess(ctx context.Context, transactionID, reference string) error
	MarkFailed(ctx context.Context, transactionID string) error
}
