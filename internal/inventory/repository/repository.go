package repository

import (
	"context"
	"errors"

	"github.com/modelhub/inventory-server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names in the inventory database.
const (
	ModelsCollection    = "models"
	PurchasedCollection = "purchased"
)

// ErrCommitResultUnknown marks a commit whose outcome the server did not
// report. The transaction may or may not have been applied.
var ErrCommitResultUnknown = errors.New("transaction commit result unknown")

// unknownCommitResultLabel is the server error label behind ErrCommitResultUnknown.
const unknownCommitResultLabel = "UnknownTransactionCommitResult"

// ModelRepository defines persistence operations for models.
// Get returns (nil, nil) when the model does not exist.
type ModelRepository interface {
	List(ctx context.Context) ([]models.Model, error)
	ListRecent(ctx context.Context, limit int64) ([]models.Model, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Model, error)
	Create(ctx context.Context, m *models.Model) (primitive.ObjectID, error)
	IncrementPurchased(ctx context.Context, id primitive.ObjectID) (models.UpdateResult, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, f models.ModelFields) (models.UpdateResult, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// PurchaseRepository defines persistence operations for purchase records.
type PurchaseRepository interface {
	List(ctx context.Context) ([]models.Purchase, error)
	Get(ctx context.Context, modelID primitive.ObjectID, purchasedBy string) (*models.Purchase, error)
	Create(ctx context.Context, p *models.Purchase) (primitive.ObjectID, error)
	ListWithModels(ctx context.Context) ([]models.PurchaseWithModel, error)
	DeleteByModel(ctx context.Context, modelID primitive.ObjectID) (int64, error)
}

// Transactor runs fn inside a single transaction. Repository calls made with
// the context handed to fn are staged in that transaction; they become visible
// together when fn returns nil and are discarded when it returns an error.
// A nested WithTransaction given such a context joins the outer transaction.
// A returned error wrapping ErrCommitResultUnknown means the outcome is unknown.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

var (
	_ ModelRepository    = (*MongoModelRepo)(nil)
	_ PurchaseRepository = (*MongoPurchaseRepo)(nil)
	_ Transactor         = (*MongoTransactor)(nil)
	_ ModelRepository    = (*MemoryModelRepo)(nil)
	_ PurchaseRepository = (*MemoryPurchaseRepo)(nil)
	_ Transactor         = (*MemoryStore)(nil)
)
