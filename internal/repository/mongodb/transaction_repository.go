package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lykerclassy/lipana-mpesa-integration/internal/logger"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/models"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/repository"
)

const collectionName = "transactions"

type mongoTransactionRepo struct {
	collection *mongo.Collection
	log        logger.Logger
}

func NewTransactionRepo(db *mongo.Database, log logger.Logger) repository.TransactionRepository {
	return &mongoTransactionRepo{
		collection: db.Collection(collectionName),
		log:        log,
	}
}

func (r *mongoTransactionRepo) Insert(ctx context.Context, txn *models.Transaction) error {
	_, err := r.collection.InsertOne(ctx, txn)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *mongoTransactionRepo) FindByID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"transactionId": transactionID}).Decode(&txn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find transaction %s: %w", transactionID, err)
	}
	return &txn, nil
}

// MarkSuccess flips a pending record to success and stores the gateway
// reference. The status filter keeps terminal records untouched, so duplicate
// webhook deliveries cannot rewrite an outcome.
func (r *mongoTransactionRepo) MarkSuccess(ctx context.Context, transactionID, reference string) error {
	return r.markTerminal(ctx, transactionID, bson.M{
		"status":           models.StatusSuccess,
		"gatewayReference": reference,
	})
}

func (r *mongoTransactionRepo) MarkFailed(ctx context.Context, transactionID string) error {
	return r.markTerminal(ctx, transactionID, bson.M{
		"status": models.StatusFailed,
	})
}

func (r *mongoTransactionRepo) markTerminal(ctx context.Context, transactionID string, fields bson.M) error {
	filter := bson.M{
		"transactionId": transactionID,
		"status":        models.StatusPending,
	}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", transactionID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
