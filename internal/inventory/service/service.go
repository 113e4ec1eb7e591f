package service

import (
	"context"
	"time"

	"github.com/modelhub/inventory-server/internal/inventory/repository"
	"github.com/modelhub/inventory-server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LatestLimit is the number of models returned by ListLatestModels.
const LatestLimit = 6

// DefaultTxTimeout bounds DeleteModel when no timeout is configured.
const DefaultTxTimeout = 10 * time.Second

// Service defines the inventory operations used by the handler layer.
type Service interface {
	ListModels(ctx context.Context) ([]models.Model, error)
	ListLatestModels(ctx context.Context) ([]models.Model, error)
	GetModel(ctx context.Context, id primitive.ObjectID) (*models.Model, error)
	CreateModel(ctx context.Context, m *models.Model) (models.InsertResult, error)
	IncrementPurchased(ctx context.Context, id primitive.ObjectID) (models.UpdateResult, error)
	UpdateModel(ctx context.Context, id primitive.ObjectID, f models.ModelFields) (models.UpdateResult, error)
	DeleteModel(ctx context.Context, id primitive.ObjectID) (*DeleteResult, error)

	ListPurchases(ctx context.Context) ([]models.Purchase, error)
	GetPurchase(ctx context.Context, modelID primitive.ObjectID, purchasedBy string) (*models.Purchase, error)
	CreatePurchase(ctx context.Context, p *models.Purchase) (models.InsertResult, error)
	ListPurchasesWithModels(ctx context.Context) ([]models.PurchaseWithModel, error)
}

// NewService wires repositories and a transactor into a Service.
// A non-positive txTimeout selects DefaultTxTimeout.
func NewService(m repository.ModelRepository, p repository.PurchaseRepository, tx repository.Transactor, txTimeout time.Duration) Service {
	if txTimeout <= 0 {
		txTimeout = DefaultTxTimeout
	}
	return &inventoryService{models: m, purchases: p, tx: tx, txTimeout: txTimeout}
}

// NewMemoryService returns a Service backed by an in-memory store.
func NewMemoryService() Service {
	s := repository.NewMemoryStore()
	return NewService(s.Models(), s.Purchases(), s, 0)
}

// NewMongoService returns a Service backed by the given database.
// Caller owns the client and disconnects it on shutdown.
func NewMongoService(client *mongo.Client, db *mongo.Database, txTimeout time.Duration) Service {
	return NewService(
		repository.NewMongoModelRepo(db),
		repository.NewMongoPurchaseRepo(db),
		repository.NewMongoTransactor(client),
		txTimeout,
	)
}

type inventoryService struct {
	models    repository.ModelRepository
	purchases repository.PurchaseRepository
	tx        repository.Transactor
	txTimeout time.Duration
}

func (s *inventoryService) ListModels(ctx context.Context) ([]models.Model, error) {
	return s.models.List(ctx)
}

func (s *inventoryService) ListLatestModels(ctx context.Context) ([]models.Model, error) {
	return s.models.ListRecent(ctx, LatestLimit)
}

func (s *inventoryService) GetModel(ctx context.Context, id primitive.ObjectID) (*models.Model, error) {
	return s.models.Get(ctx, id)
}

func (s *inventoryService) CreateModel(ctx context.Context, m *models.Model) (models.InsertResult, error) {
	m.ID = primitive.NilObjectID
	m.Purchased = 0
	id, err := s.models.Create(ctx, m)
	if err != nil {
		return models.InsertResult{}, err
	}
	return models.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (s *inventoryService) IncrementPurchased(ctx context.Context, id primitive.ObjectID) (models.UpdateResult, error) {
	return s.models.IncrementPurchased(ctx, id)
}

func (s *inventoryService) UpdateModel(ctx context.Context, id primitive.ObjectID, f models.ModelFields) (models.UpdateResult, error) {
	return s.models.UpdateFields(ctx, id, f)
}

func (s *inventoryService) ListPurchases(ctx context.Context) ([]models.Purchase, error) {
	return s.purchases.List(ctx)
}

func (s *inventoryService) GetPurchase(ctx context.Context, modelID primitive.ObjectID, purchasedBy string) (*models.Purchase, error) {
	return s.purchases.Get(ctx, modelID, purchasedBy)
}

func (s *inventoryService) CreatePurchase(ctx context.Context, p *models.Purchase) (models.InsertResult, error) {
	p.ID = primitive.NilObjectID
	id, err := s.purchases.Create(ctx, p)
	if err != nil {
		return models.InsertResult{}, err
	}
	return models.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (s *inventoryService) ListPurchasesWithModels(ctx context.Context) ([]models.PurchaseWithModel, error) {
	return s.purchases.ListWithModels(ctx)
}
