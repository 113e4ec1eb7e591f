package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelhub/inventory-server/internal/inventory/repository"
	"github.com/modelhub/inventory-server/pkg/logger"
	"github.com/modelhub/inventory-server/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeleteFailedMessage is the only failure text exposed to callers of DeleteModel.
const DeleteFailedMessage = "Failed to delete model and its purchases"

// DeleteUnknownMessage is returned when the commit outcome was not reported.
const DeleteUnknownMessage = "Delete result unknown; check whether the model still exists"

// ErrCascadeAborted reports that DeleteModel rolled back. The cause is logged, not wrapped.
var ErrCascadeAborted = errors.New("cascade delete aborted")

// ErrCascadeOutcomeUnknown reports that the commit may or may not have been applied.
var ErrCascadeOutcomeUnknown = errors.New("cascade delete outcome unknown")

// DeleteResult is the outcome of removing a model together with its purchases.
type DeleteResult struct {
	Success               bool   `json:"success"`
	ModelsDeletedCount    int64  `json:"modelsDeletedCount"`
	PurchasedDeletedCount int64  `json:"purchasedDeletedCount"`
	Message               string `json:"message,omitempty"`
}

// DeleteModel removes the model and every purchase referencing it in one
// transaction. Either both deletions become visible or neither does. Deleting
// an id that matches nothing succeeds with zero counts.
func (s *inventoryService) DeleteModel(ctx context.Context, id primitive.ObjectID) (*DeleteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var modelsDeleted, purchasesDeleted int64
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		n, err := s.models.Delete(txCtx, id)
		if err != nil {
			return fmt.Errorf("delete model: %w", err)
		}
		m, err := s.purchases.DeleteByModel(txCtx, id)
		if err != nil {
			return fmt.Errorf("delete purchases: %w", err)
		}
		modelsDeleted, purchasesDeleted = n, m
		return nil
	})
	if errors.Is(err, repository.ErrCommitResultUnknown) {
		logger.Errorf("cascade delete of model %s: commit outcome unknown: %v", id.Hex(), err)
		metrics.CascadeDeletes.WithLabelValues("unknown").Inc()
		return &DeleteResult{Success: false, Message: DeleteUnknownMessage}, ErrCascadeOutcomeUnknown
	}
	if err != nil {
		logger.Errorf("cascade delete of model %s aborted: %v", id.Hex(), err)
		metrics.CascadeDeletes.WithLabelValues("aborted").Inc()
		return &DeleteResult{Success: false, Message: DeleteFailedMessage}, ErrCascadeAborted
	}

	metrics.CascadeDeletes.WithLabelValues("committed").Inc()
	logger.Debugf("cascade delete of model %s: models=%d purchased=%d", id.Hex(), modelsDeleted, purchasesDeleted)
	return &DeleteResult{
		Success:               true,
		ModelsDeletedCount:    modelsDeleted,
		PurchasedDeletedCount: purchasesDeleted,
	}, nil
}
