package client_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lykerclassy/lipana-mpesa-integration/internal/client"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/gateway"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/handlers"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/logger"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/models"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/poller"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/repository"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/services"
)

// memoryRepo is an in-memory TransactionRepository with the same
// pending-guard semantics as the Mongo implementation.
type memoryRepo struct {
	mu   sync.Mutex
	txns map[string]*models.Transaction
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{txns: make(map[string]*models.Transaction)}
}

func (r *memoryRepo) Insert(_ context.Context, txn *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *txn
	r.txns[txn.TransactionID] = &copied
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, id string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.txns[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *txn
	return &copied, nil
}

func (r *memoryRepo) MarkSuccess(_ context.Context, id, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.txns[id]
	if !ok || txn.Status != models.StatusPending {
		return repository.ErrNotFound
	}
	txn.Status = models.StatusSuccess
	txn.GatewayReference = reference
	return nil
}

func (r *memoryRepo) MarkFailed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.txns[id]
	if !ok || txn.Status != models.StatusPending {
		return repository.ErrNotFound
	}
	txn.Status = models.StatusFailed
	return nil
}

type fakeGateway struct {
	transactionID string
}

func (g *fakeGateway) InitiateSTKPush(context.Context, string, float64) (*gateway.PushResult, error) {
	return &gateway.PushResult{TransactionID: g.transactionID}, nil
}

// newBackend wires a real router, handler, and lifecycle service over the
// in-memory store and a fake gateway.
func newBackend(t *testing.T, transactionID string) *httptest.Server {
	t.Helper()
	log := logger.NewNop()
	svc := services.NewTransactionService(newMemoryRepo(), &fakeGateway{transactionID: transactionID}, log)
	router := mux.NewRouter()
	handlers.NewPaymentHandler(svc, log).RegisterRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postWebhook(t *testing.T, baseURL, body string) {
	t.Helper()
	resp, err := http.Post(baseURL+"/api/webhook", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEndToEnd_InitiateWebhookStatus(t *testing.T) {
	srv := newBackend(t, "TXN123")
	api := client.New(srv.URL)
	ctx := context.Background()

	transactionID, err := api.Initiate(ctx, "+254700000000", 100)
	require.NoError(t, err)
	require.Equal(t, "TXN123", transactionID)

	status, err := api.Status(ctx, "TXN123")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, status)

	postWebhook(t, srv.URL, `{"event":"payment.success","data":{"transactionId":"TXN123","reference":"REF1"}}`)

	status, err = api.Status(ctx, "TXN123")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, status)

	// Re-delivering the same event leaves everything as is.
	postWebhook(t, srv.URL, `{"event":"payment.success","data":{"transactionId":"TXN123","reference":"REF1"}}`)
	status, err = api.Status(ctx, "TXN123")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, status)
}

func TestStatus_UnknownTransaction(t *testing.T) {
	srv := newBackend(t, "TXN123")
	api := client.New(srv.URL)

	_, err := api.Status(context.Background(), "DOES-NOT-EXIST")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Transaction not found")
}

func TestPollerAgainstRealBackend(t *testing.T) {
	srv := newBackend(t, "TXN123")
	api := client.New(srv.URL)

	// Confirm the payment shortly after the prompt goes out, like a
	// customer entering their PIN.
	go func() {
		time.Sleep(30 * time.Millisecond)
		resp, err := http.Post(srv.URL+"/api/webhook", "application/json",
			bytes.NewBufferString(`{"event":"transaction.success","transaction_id":"TXN123"}`))
		if err == nil {
			resp.Body.Close()
		}
	}()

	p := poller.New(api, logger.NewNop(), 10*time.Millisecond, 100)
	state, err := p.Run(context.Background(), "+254700000000", 100)
	require.NoError(t, err)
	assert.Equal(t, poller.StateSuccess, state)
	assert.Equal(t, "TXN123", p.TransactionID())
}
