package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lykerclassy/lipana-mpesa-integration/internal/gateway"
	mock_gateway "github.com/lykerclassy/lipana-mpesa-integration/internal/gateway/mocks"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/logger"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/models"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/repository"
	mock_repository "github.com/lykerclassy/lipana-mpesa-integration/internal/repository/mocks"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/services"
)

func newService(t *testing.T) (*services.TransactionService, *mock_repository.MockTransactionRepository, *mock_gateway.MockClient) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := mock_repository.NewMockTransactionRepository(ctrl)
	gw := mock_gateway.NewMockClient(ctrl)
	svc := services.NewTransactionService(repo, gw, logger.NewNop())
	return svc, repo, gw
}

func TestInitiate_PersistsPendingRecord(t *testing.T) {
	svc, repo, gw := newService(t)
	ctx := context.Background()

	gw.EXPECT().
		InitiateSTKPush(gomock.Any(), "+254700000000", 100.0).
		Return(&gateway.PushResult{TransactionID: "TXN123"}, nil)

	var saved *models.Transaction
	repo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txn *models.Transaction) error {
			saved = txn
			return nil
		})

	transactionID, err := svc.Initiate(ctx, "+254700000000", 100)
	require.NoError(t, err)
	assert.Equal(t, "TXN123", transactionID)

	require.NotNil(t, saved)
	assert.Equal(t, "TXN123", saved.TransactionID)
	assert.Equal(t, "+254700000000", saved.Phone)
	assert.Equal(t, 100.0, saved.Amount)
	assert.Equal(t, models.StatusPending, saved.Status)
	assert.Empty(t, saved.GatewayReference)
	assert.False(t, saved.CreatedAt.IsZero())
}

func TestInitiate_GatewayRejectedCreatesNoRecord(t *testing.T) {
	svc, _, gw := newService(t)

	gw.EXPECT().
		InitiateSTKPush(gomock.Any(), "+254700000000", 100.0).
		Return(nil, &gateway.RejectedError{Message: "insufficient merchant balance"})

	_, err := svc.Initiate(context.Background(), "+254700000000", 100)
	require.Error(t, err)

	var rejected *gateway.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "insufficient merchant balance", rejected.Message)
}

func TestInitiate_GatewayUnavailableCreatesNoRecord(t *testing.T) {
	svc, _, gw := newService(t)

	gw.EXPECT().
		InitiateSTKPush(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, gateway.ErrUnavailable)

	_, err := svc.Initiate(context.Background(), "+254700000000", 100)
	require.ErrorIs(t, err, gateway.ErrUnavailable)
}

func TestInitiate_StoreFailure(t *testing.T) {
	svc, repo, gw := newService(t)

	gw.EXPECT().
		InitiateSTKPush(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&gateway.PushResult{TransactionID: "TXN123"}, nil)
	repo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(errors.New("connection reset"))

	_, err := svc.Initiate(context.Background(), "+254700000000", 100)
	require.ErrorIs(t, err, services.ErrStoreUnavailable)
}

func TestReconcile_SuccessEventStoresReference(t *testing.T) {
	svc, repo, _ := newService(t)

	repo.EXPECT().MarkSuccess(gomock.Any(), "TXN123", "REF1").Return(nil)

	err := svc.Reconcile(context.Background(), map[string]interface{}{
		"event": "payment.success",
		"data": map[string]interface{}{
			"transactionId": "TXN123",
			"reference":     "REF1",
		},
	})
	require.NoError(t, err)
}

func TestReconcile_FailureClassEvents(t *testing.T) {
	for _, name := range []string{"payment.failed", "transaction.failed", "transaction.timeout"} {
		t.Run(name, func(t *testing.T) {
			svc, repo, _ := newService(t)

			repo.EXPECT().MarkFailed(gomock.Any(), "TXN123").Return(nil)

			err := svc.Reconcile(context.Background(), map[string]interface{}{
				"event":         name,
				"transactionId": "TXN123",
			})
			require.NoError(t, err)
		})
	}
}

func TestReconcile_FallbackNameResolution(t *testing.T) {
	bodies := []map[string]interface{}{
		{"event": "payment.failed", "transaction_id": "TXN123"},
		{"event": "payment.failed", "data": map[string]interface{}{"transactionId": "TXN123"}},
		{"event": "payment.failed", "data": map[string]interface{}{"transaction_id": "TXN123"}},
	}

	for _, body := range bodies {
		svc, repo, _ := newService(t)
		repo.EXPECT().MarkFailed(gomock.Any(), "TXN123").Return(nil)
		require.NoError(t, svc.Reconcile(context.Background(), body))
	}
}

func TestReconcile_DuplicateTerminalEventIsNoOp(t *testing.T) {
	svc, repo, _ := newService(t)

	// No pending record matches, but the transaction exists in a terminal
	// state: the duplicate must be acknowledged without changing anything.
	repo.EXPECT().MarkSuccess(gomock.Any(), "TXN123", "REF1").Return(repository.ErrNotFound)
	repo.EXPECT().FindByID(gomock.Any(), "TXN123").Return(&models.Transaction{
		TransactionID:    "TXN123",
		Status:           models.StatusSuccess,
		GatewayReference: "REF1",
	}, nil)

	err := svc.Reconcile(context.Background(), map[string]interface{}{
		"event": "payment.success",
		"data":  map[string]interface{}{"transactionId": "TXN123", "reference": "REF1"},
	})
	require.NoError(t, err)
}

func TestReconcile_TerminalStateIsNeverReversed(t *testing.T) {
	svc, repo, _ := newService(t)

	// A stale failure arriving after success must not flip the record.
	repo.EXPECT().MarkFailed(gomock.Any(), "TXN123").Return(repository.ErrNotFound)
	repo.EXPECT().FindByID(gomock.Any(), "TXN123").Return(&models.Transaction{
		TransactionID: "TXN123",
		Status:        models.StatusSuccess,
	}, nil)

	err := svc.Reconcile(context.Background(), map[string]interface{}{
		"event":         "transaction.failed",
		"transactionId": "TXN123",
	})
	require.NoError(t, err)
}

func TestReconcile_UnknownTransactionIsAcknowledged(t *testing.T) {
	svc, repo, _ := newService(t)

	repo.EXPECT().MarkSuccess(gomock.Any(), "GHOST", "").Return(repository.ErrNotFound)
	repo.EXPECT().FindByID(gomock.Any(), "GHOST").Return(nil, repository.ErrNotFound)

	err := svc.Reconcile(context.Background(), map[string]interface{}{
		"event":         "payment.success",
		"transactionId": "GHOST",
	})
	require.NoError(t, err)
}

func TestReconcile_UnrecognizedEventLeavesRecordAlone(t *testing.T) {
	svc, _, _ := newService(t)

	// No repository expectations: nothing may be touched.
	err := svc.Reconcile(context.Background(), map[string]interface{}{
		"event":         "payment.created",
		"transactionId": "TXN123",
	})
	require.NoError(t, err)
}

func TestReconcile_MissingIdentifierIsIgnored(t *testing.T) {
	svc, _, _ := newService(t)

	err := svc.Reconcile(context.Background(), map[string]interface{}{
		"event": "payment.success",
		"data":  map[string]interface{}{"reference": "REF1"},
	})
	require.NoError(t, err)
}

func TestReconcile_StoreFailureIsEscalated(t *testing.T) {
	svc, repo, _ := newService(t)

	repo.EXPECT().MarkFailed(gomock.Any(), "TXN123").Return(errors.New("connection reset"))

	err := svc.Reconcile(context.Background(), map[string]interface{}{
		"event":         "payment.failed",
		"transactionId": "TXN123",
	})
	require.ErrorIs(t, err, services.ErrStoreUnavailable)
}

func TestGetStatus(t *testing.T) {
	t.Run("pending record", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().FindByID(gomock.Any(), "TXN123").Return(&models.Transaction{
			TransactionID: "TXN123",
			Status:        models.StatusPending,
		}, nil)

		status, err := svc.GetStatus(context.Background(), "TXN123")
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, status)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().FindByID(gomock.Any(), "DOES-NOT-EXIST").Return(nil, repository.ErrNotFound)

		_, err := svc.GetStatus(context.Background(), "DOES-NOT-EXIST")
		require.ErrorIs(t, err, services.ErrTransactionNotFound)
	})

	t.Run("store unreachable", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().FindByID(gomock.Any(), "TXN123").Return(nil, errors.New("connection reset"))

		_, err := svc.GetStatus(context.Background(), "TXN123")
		require.ErrorIs(t, err, services.ErrStoreUnavailable)
	})
}
