package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rental-api/domain"
)

const transactionsCollection = "transactions"

// TransactionRepository define la interfaz del store de transacciones.
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	Update(ctx context.Context, t *domain.Transaction) error

	FindByTenant(ctx context.Context, tenantID string, page, size int) ([]domain.Transaction, int, error)
	FindByOwner(ctx context.Context, ownerID string, page, size int) ([]domain.Transaction, int, error)
	FindByProperty(ctx context.Context, propertyID string, page, size int) ([]domain.Transaction, int, error)
}

type transactionRepository struct {
	collection *mongo.Collection
}

// NewTransactionRepository crea el repositorio de transacciones sobre MongoDB.
func NewTransactionRepository(db *mongo.Database) TransactionRepository {
	return &transactionRepository{collection: db.Collection(transactionsCollection)}
}

func (r *transactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := r.collection.InsertOne(ctx, t)
	return err
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var t domain.Transaction
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: transaction %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: transaction %s", domain.ErrNotFound, t.ID)
	}
	return nil
}

func (r *transactionRepository) FindByTenant(ctx context.Context, tenantID string, page, size int) ([]domain.Transaction, int, error) {
	return r.findPage(ctx, bson.M{"tenant_id": tenantID}, page, size)
}

func (r *transactionRepository) FindByOwner(ctx context.Context, ownerID string, page, size int) ([]domain.Transaction, int, error) {
	return r.findPage(ctx, bson.M{"owner_id": ownerID}, page, size)
}

func (r *transactionRepository) FindByProperty(ctx context.Context, propertyID string, page, size int) ([]domain.Transaction, int, error) {
	return r.findPage(ctx, bson.M{"property_id": propertyID}, page, size)
}

func (r *transactionRepository) findPage(ctx context.Context, filter bson.M, page, size int) ([]domain.Transaction, int, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(int64(page * size)).
		SetLimit(int64(size)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	transactions := make([]domain.Transaction, 0, size)
	if err := cursor.All(ctx, &transactions); err != nil {
		return nil, 0, err
	}
	return transactions, int(total), nil
}
