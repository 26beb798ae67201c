package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lykerclassy/lipana-mpesa-integration/internal/logger"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/models"
)

// State is the client-side view of one payment submission.
type State string

const (
	StateIdle                State = "idle"
	StateProcessing          State = "processing"
	StateWaitingConfirmation State = "waitingConfirmation"
	StateSuccess             State = "success"
	StateFailed              State = "failed"
)

// ErrConfirmationTimeout is returned when the poll attempt budget runs out
// before the backend reports a terminal status.
var ErrConfirmationTimeout = errors.New("timed out waiting for payment confirmation")

// PaymentAPI is the slice of the backend the poller drives.
type PaymentAPI interface {
	Initiate(ctx context.Context, phone string, amount float64) (string, error)
	Status(ctx context.Context, transactionID string) (models.Status, error)
}

// Poller runs one submission through
// idle -> processing -> waitingConfirmation -> success|failed.
// The polling ticker is stopped on every exit path; cancelling the context
// tears the flow down.
type Poller struct {
	api         PaymentAPI
	log         logger.Logger
	interval    time.Duration
	maxAttempts int

	mu            sync.Mutex
	state         State
	transactionID string
}

func New(api PaymentAPI, log logger.Logger, interval time.Duration, maxAttempts int) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 150
	}
	return &Poller{
		api:         api,
		log:         log,
		interval:    interval,
		maxAttempts: maxAttempts,
		state:       StateIdle,
	}
}

func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Poller) TransactionID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transactionID
}

// Reset returns the poller to idle. Retrying after a terminal state is a
// brand-new flow, not a transition.
func (p *Poller) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateIdle
	p.transactionID = ""
}

// Run submits the payment and polls until success, failure, attempt
// exhaustion, or context cancellation. It returns the terminal state reached
// and, for failures that were not a gateway "failed" outcome, the cause.
func (p *Poller) Run(ctx context.Context, phone string, amount float64) (State, error) {
	p.transition(StateProcessing)

	transactionID, err := p.api.Initiate(ctx, phone, amount)
	if err != nil {
		p.log.Warn("payment initiation failed", logger.ErrorField("error", err))
		p.transition(StateFailed)
		return StateFailed, err
	}

	p.mu.Lock()
	p.transactionID = transactionID
	p.mu.Unlock()
	p.transition(StateWaitingConfirmation)

	return p.waitForConfirmation(ctx, transactionID)
}

func (p *Poller) waitForConfirmation(ctx context.Context, transactionID string) (State, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			p.transition(StateFailed)
			return StateFailed, ctx.Err()
		case <-ticker.C:
			attempts++
			status, err := p.api.Status(ctx, transactionID)
			if err != nil {
				// Transient poll errors do not fail the flow.
				p.log.Warn("status poll failed",
					logger.StringField("transaction_id", transactionID),
					logger.ErrorField("error", err))
			} else {
				switch status {
				case models.StatusSuccess:
					p.transition(StateSuccess)
					return StateSuccess, nil
				case models.StatusFailed:
					p.transition(StateFailed)
					return StateFailed, nil
				}
			}
			if attempts >= p.maxAttempts {
				p.transition(StateFailed)
				return StateFailed, ErrConfirmationTimeout
			}
		}
	}
}

func (p *Poller) transition(next State) {
	p.mu.Lock()
	prev := p.state
	p.state = next
	p.mu.Unlock()
	p.log.Info("poller state change",
		logger.StringField("from", string(prev)),
		logger.StringField("to", string(next)))
}
