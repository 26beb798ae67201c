package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lykerclassy/lipana-mpesa-integration/internal/gateway"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/logger"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/models"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/repository"
)

// TransactionLifecycle creates transactions on initiation, reconciles webhook
// events into status transitions, and answers status queries.
//
//go:generate mockgen -destination=mocks/mock_services.go -package=mock_services -source=transaction.go TransactionLifecycle
type TransactionLifecycle interface {
	Initiate(ctx context.Context, phone string, amount float64) (string, error)
	Reconcile(ctx context.Context, body map[string]interface{}) error
	GetStatus(ctx context.Context, transactionID string) (models.Status, error)
}

type TransactionService struct {
	repo    repository.TransactionRepository
	gateway gateway.Client
	log     logger.Logger
}

func NewTransactionService(repo repository.TransactionRepository, gw gateway.Client, log logger.Logger) *TransactionService {
	return &TransactionService{repo: repo, gateway: gw, log: log}
}

// Initiate pushes a payment prompt to the customer's phone and, once the
// gateway has accepted it, persists a pending record keyed by the gateway's
// transaction id. A rejected or unreachable push never creates a record.
func (s *TransactionService) Initiate(ctx context.Context, phone string, amount float64) (string, error) {
	s.log.Info("initiating payment",
		logger.StringField("phone", phone),
		logger.Float64Field("amount", amount))

	result, err := s.gateway.InitiateSTKPush(ctx, phone, amount)
	if err != nil {
		s.log.Error("payment initiation failed", logger.ErrorField("error", err))
		return "", err
	}

	txn := &models.Transaction{
		TransactionID: result.TransactionID,
		Phone:         phone,
		Amount:        amount,
		Status:        models.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, txn); err != nil {
		s.log.Error("failed to save transaction",
			logger.StringField("transaction_id", result.TransactionID),
			logger.ErrorField("error", err))
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.log.Info("transaction saved", logger.StringField("transaction_id", result.TransactionID))
	return result.TransactionID, nil
}

// Reconcile applies a gateway webhook event to the matching record. It is
// idempotent: the first terminal event wins, repeats and stale duplicates
// leave the stored state unchanged. Only a store failure is returned as an
// error; unmatched, unrecognized, and malformed events are acknowledged as
// no-ops so the gateway does not re-deliver them.
func (s *TransactionService) Reconcile(ctx context.Context, body map[string]interface{}) error {
	event, ok := ParseWebhookEvent(body)
	if !ok {
		s.log.Warn("webhook without transaction id, ignoring")
		return nil
	}

	s.log.Info("processing webhook",
		logger.StringField("event", event.Name),
		logger.StringField("transaction_id", event.TransactionID))

	switch {
	case successEvents[event.Name]:
		return s.applyTerminal(ctx, event, models.StatusSuccess)
	case failureEvents[event.Name]:
		return s.applyTerminal(ctx, event, models.StatusFailed)
	default:
		s.log.Info("unhandled webhook event", logger.StringField("event", event.Name))
		return nil
	}
}

func (s *TransactionService) applyTerminal(ctx context.Context, event *WebhookEvent, status models.Status) error {
	var err error
	if status == models.StatusSuccess {
		err = s.repo.MarkSuccess(ctx, event.TransactionID, event.Reference)
	} else {
		err = s.repo.MarkFailed(ctx, event.TransactionID)
	}

	if err == nil {
		s.log.Info("transaction status updated",
			logger.StringField("transaction_id", event.TransactionID),
			logger.StringField("status", string(status)))
		return nil
	}

	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// No pending record matched: either the transaction is unknown, or it
	// already reached a terminal state and this is a duplicate delivery.
	txn, findErr := s.repo.FindByID(ctx, event.TransactionID)
	switch {
	case errors.Is(findErr, repository.ErrNotFound):
		s.log.Warn("webhook for unknown transaction",
			logger.StringField("transaction_id", event.TransactionID))
		return nil
	case findErr != nil:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, findErr)
	default:
		s.log.Info("duplicate webhook for settled transaction",
			logger.StringField("transaction_id", event.TransactionID),
			logger.StringField("status", string(txn.Status)))
		return nil
	}
}

// GetStatus returns the stored status for the given transaction id.
func (s *TransactionService) GetStatus(ctx context.Context, transactionID string) (models.Status, error) {
	txn, err := s.repo.FindByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrTransactionNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return txn.Status, nil
}
