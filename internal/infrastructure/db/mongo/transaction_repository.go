package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/literaryvoice/literary-voice/internal/core/domain"
)

const transactionCollection = "transactions"

// TransactionRepository persists the ledger audit trail.
type TransactionRepository struct {
	coll *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{coll: db.Collection(transactionCollection)}
}

type mongoTransaction struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	AccountID string             `bson:"account_id"`
	Amount    int64              `bson:"amount"`
	Action    string             `bson:"action"`
	CreatedAt int64              `bson:"created_at"`
}

func (r *TransactionRepository) Insert(ctx context.Context, tx *domain.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoTransaction{
		AccountID: tx.AccountID,
		Amount:    tx.Amount,
		Action:    tx.Action,
		CreatedAt: tx.CreatedAt.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListByAccount returns the account's most recent transactions, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit int64) ([]domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := r.coll.Find(ctx, bson.M{"account_id": accountID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.Transaction
	for cur.Next(ctx) {
		var mt mongoTransaction
		if err := cur.Decode(&mt); err != nil {
			return nil, fmt.Errorf("decode transaction: %w", err)
		}
		out = append(out, domain.Transaction{
			ID:        mt.ID.Hex(),
			AccountID: mt.AccountID,
			Amount:    mt.Amount,
			Action:    mt.Action,
			CreatedAt: unixToTime(mt.CreatedAt),
		})
	}
	return out, cur.Err()
}

// EnsureIndexes creates the history-query index.
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
