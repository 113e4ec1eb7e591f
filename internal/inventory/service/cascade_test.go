package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/modelhub/inventory-server/internal/inventory/repository"
	"github.com/modelhub/inventory-server/internal/models"
	"github.com/modelhub/inventory-server/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// failingPurchases fails DeleteByModel, i.e. after the model delete was staged.
type failingPurchases struct {
	repository.PurchaseRepository
	err error
}

func (f *failingPurchases) DeleteByModel(ctx context.Context, modelID primitive.ObjectID) (int64, error) {
	return 0, f.err
}

// recordingTx wraps a Transactor and records what it was given.
type recordingTx struct {
	inner    repository.Transactor
	calls    int
	deadline bool
}

func (r *recordingTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	_, r.deadline = ctx.Deadline()
	return r.inner.WithTransaction(ctx, fn)
}

func seed(t *testing.T, s *repository.MemoryStore, purchases int) primitive.ObjectID {
	t.Helper()
	ctx := context.Background()
	id, err := s.Models().Create(ctx, &models.Model{Name: "resnet"})
	require.NoError(t, err)
	for i := 0; i < purchases; i++ {
		_, err := s.Purchases().Create(ctx, &models.Purchase{ModelID: id, PurchasedBy: "buyer@example.com"})
		require.NoError(t, err)
	}
	return id
}

func TestDeleteModelWithoutPurchases(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewService(store.Models(), store.Purchases(), store, 0)
	id := seed(t, store, 0)

	res, err := svc.DeleteModel(ctx, id)
	require.NoError(t, err)
	require.Equal(t, &DeleteResult{Success: true, ModelsDeletedCount: 1, PurchasedDeletedCount: 0}, res)

	got, err := svc.GetModel(ctx, id)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestDeleteModelCascadesPurchases(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewService(store.Models(), store.Purchases(), store, 0)
	id := seed(t, store, 3)
	other := seed(t, store, 2)

	res, err := svc.DeleteModel(ctx, id)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, int64(1), res.ModelsDeletedCount)
	require.Equal(t, int64(3), res.PurchasedDeletedCount)

	list, err := svc.ListPurchases(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, p := range list {
		require.Equal(t, other, p.ModelID)
	}
}

func TestDeleteModelIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()

	res, err := svc.DeleteModel(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	require.Equal(t, &DeleteResult{Success: true}, res)
}

func TestDeleteModelAbortsWhenPurchaseDeleteFails(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	id := seed(t, store, 2)
	tx := &recordingTx{inner: store}
	svc := NewService(store.Models(), &failingPurchases{PurchaseRepository: store.Purchases(), err: errors.New("write conflict")}, tx, time.Second)

	before := testutil.ToFloat64(metrics.CascadeDeletes.WithLabelValues("aborted"))
	res, err := svc.DeleteModel(ctx, id)
	require.ErrorIs(t, err, ErrCascadeAborted)
	require.False(t, res.Success)
	require.Equal(t, DeleteFailedMessage, res.Message)
	require.NotContains(t, res.Message, "write conflict")
	require.Equal(t, before+1, testutil.ToFloat64(metrics.CascadeDeletes.WithLabelValues("aborted")))
	require.Equal(t, 1, tx.calls)
	require.True(t, tx.deadline, "transaction must run under a timeout")

	// the staged model delete was discarded
	got, err := svc.GetModel(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	list, err := svc.ListPurchases(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestDeleteModelAbortsWhenTransactionCannotStart(t *testing.T) {
	svc := NewService(repository.NewMemoryStore().Models(), repository.NewMemoryStore().Purchases(), txFunc(func(ctx context.Context, fn func(context.Context) error) error {
		return errors.New("no session available")
	}), 0)

	res, err := svc.DeleteModel(context.Background(), primitive.NewObjectID())
	require.ErrorIs(t, err, ErrCascadeAborted)
	require.False(t, res.Success)
}

func TestDeleteModelReportsUnknownCommitOutcome(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	id := seed(t, store, 1)
	// the writes apply but the commit reply is lost
	tx := txFunc(func(ctx context.Context, fn func(context.Context) error) error {
		if err := store.WithTransaction(ctx, fn); err != nil {
			return err
		}
		return fmt.Errorf("commit transaction: %w: %w", repository.ErrCommitResultUnknown, errors.New("socket timeout"))
	})
	svc := NewService(store.Models(), store.Purchases(), tx, 0)

	before := testutil.ToFloat64(metrics.CascadeDeletes.WithLabelValues("unknown"))
	aborted := testutil.ToFloat64(metrics.CascadeDeletes.WithLabelValues("aborted"))
	res, err := svc.DeleteModel(ctx, id)
	require.ErrorIs(t, err, ErrCascadeOutcomeUnknown)
	require.NotErrorIs(t, err, ErrCascadeAborted)
	require.False(t, res.Success)
	require.Equal(t, DeleteUnknownMessage, res.Message)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.CascadeDeletes.WithLabelValues("unknown")))
	require.Equal(t, aborted, testutil.ToFloat64(metrics.CascadeDeletes.WithLabelValues("aborted")))
}

type txFunc func(ctx context.Context, fn func(context.Context) error) error

func (f txFunc) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	return f(ctx, fn)
}

func TestJoinedReadOmitsDeletedModels(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewService(store.Models(), store.Purchases(), store, 0)
	gone := seed(t, store, 2)
	kept := seed(t, store, 1)

	_, err := svc.DeleteModel(ctx, gone)
	require.NoError(t, err)

	joined, err := svc.ListPurchasesWithModels(ctx)
	require.NoError(t, err)
	require.Len(t, joined, 1)
	require.Equal(t, kept, joined[0].Model.ID)
}
