package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/modelhub/inventory-server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-memory stand-in for the inventory database used by
// unit tests and local runs. Both collections share one mutex; a transaction
// holds it for its whole duration and restores a snapshot when fn fails.
type MemoryStore struct {
	mu        sync.Mutex
	models    []models.Model
	purchases []models.Purchase
}

type memoryTxKey struct{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Models returns the store's ModelRepository view.
func (s *MemoryStore) Models() *MemoryModelRepo { return &MemoryModelRepo{s: s} }

// Purchases returns the store's PurchaseRepository view.
func (s *MemoryStore) Purchases() *MemoryPurchaseRepo { return &MemoryPurchaseRepo{s: s} }

// lock acquires the store mutex unless ctx already belongs to a transaction on s.
func (s *MemoryStore) lock(ctx context.Context) func() {
	if owner, _ := ctx.Value(memoryTxKey{}).(*MemoryStore); owner == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithTransaction runs fn holding the store mutex and restores the prior
// state when fn fails, panics or outlives ctx. Called with a context that
// already belongs to a transaction on s, it runs fn inside that transaction.
func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if owner, _ := ctx.Value(memoryTxKey{}).(*MemoryStore); owner == s {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	models0 := append([]models.Model(nil), s.models...)
	purchases0 := append([]models.Purchase(nil), s.purchases...)
	rollback := func() {
		s.models = models0
		s.purchases = purchases0
	}

	defer func() {
		if r := recover(); r != nil {
			rollback()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, memoryTxKey{}, s)); err != nil {
		rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		rollback()
		return err
	}
	return nil
}

func (s *MemoryStore) findModel(id primitive.ObjectID) int {
	for i := range s.models {
		if s.models[i].ID == id {
			return i
		}
	}
	return -1
}

// MemoryModelRepo implements ModelRepository on a MemoryStore.
type MemoryModelRepo struct {
	s *MemoryStore
}

func (r *MemoryModelRepo) List(ctx context.Context) ([]models.Model, error) {
	defer r.s.lock(ctx)()
	return append([]models.Model{}, r.s.models...), nil
}

func (r *MemoryModelRepo) ListRecent(ctx context.Context, limit int64) ([]models.Model, error) {
	defer r.s.lock(ctx)()
	out := append([]models.Model{}, r.s.models...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryModelRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Model, error) {
	defer r.s.lock(ctx)()
	if i := r.s.findModel(id); i >= 0 {
		m := r.s.models[i]
		return &m, nil
	}
	return nil, nil
}

func (r *MemoryModelRepo) Create(ctx context.Context, m *models.Model) (primitive.ObjectID, error) {
	defer r.s.lock(ctx)()
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	r.s.models = append(r.s.models, *m)
	return m.ID, nil
}

func (r *MemoryModelRepo) IncrementPurchased(ctx context.Context, id primitive.ObjectID) (models.UpdateResult, error) {
	defer r.s.lock(ctx)()
	i := r.s.findModel(id)
	if i < 0 {
		return models.UpdateResult{Acknowledged: true}, nil
	}
	r.s.models[i].Purchased++
	return models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (r *MemoryModelRepo) UpdateFields(ctx context.Context, id primitive.ObjectID, f models.ModelFields) (models.UpdateResult, error) {
	defer r.s.lock(ctx)()
	i := r.s.findModel(id)
	if i < 0 {
		return models.UpdateResult{Acknowledged: true}, nil
	}
	before := r.s.models[i]
	f.Apply(&r.s.models[i])
	res := models.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if r.s.models[i] != before {
		res.ModifiedCount = 1
	}
	return res, nil
}

func (r *MemoryModelRepo) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	defer r.s.lock(ctx)()
	i := r.s.findModel(id)
	if i < 0 {
		return 0, nil
	}
	r.s.models = append(r.s.models[:i:i], r.s.models[i+1:]...)
	return 1, nil
}

// MemoryPurchaseRepo implements PurchaseRepository on a MemoryStore.
type MemoryPurchaseRepo struct {
	s *MemoryStore
}

func (r *MemoryPurchaseRepo) List(ctx context.Context) ([]models.Purchase, error) {
	defer r.s.lock(ctx)()
	return append([]models.Purchase{}, r.s.purchases...), nil
}

func (r *MemoryPurchaseRepo) Get(ctx context.Context, modelID primitive.ObjectID, purchasedBy string) (*models.Purchase, error) {
	defer r.s.lock(ctx)()
	for _, p := range r.s.purchases {
		if p.ModelID == modelID && p.PurchasedBy == purchasedBy {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *MemoryPurchaseRepo) Create(ctx context.Context, p *models.Purchase) (primitive.ObjectID, error) {
	defer r.s.lock(ctx)()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.PurchasedAt.IsZero() {
		p.PurchasedAt = time.Now().UTC()
	}
	r.s.purchases = append(r.s.purchases, *p)
	return p.ID, nil
}

func (r *MemoryPurchaseRepo) ListWithModels(ctx context.Context) ([]models.PurchaseWithModel, error) {
	defer r.s.lock(ctx)()
	out := []models.PurchaseWithModel{}
	for _, p := range r.s.purchases {
		i := r.s.findModel(p.ModelID)
		if i < 0 {
			continue
		}
		out = append(out, models.PurchaseWithModel{Purchase: p, Model: r.s.models[i]})
	}
	return out, nil
}

func (r *MemoryPurchaseRepo) DeleteByModel(ctx context.Context, modelID primitive.ObjectID) (int64, error) {
	defer r.s.lock(ctx)()
	kept := make([]models.Purchase, 0, len(r.s.purchases))
	var n int64
	for _, p := range r.s.purchases {
		if p.ModelID == modelID {
			n++
			continue
		}
		kept = append(kept, p)
	}
	r.s.purchases = kept
	return n, nil
}
