package aggregation

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"example.com/freightline/services/settlement/internal/models"
	"example.com/freightline/services/settlement/internal/repository"
)

// Coordinator walks the ownership graph on delete. Removing a settlement
// removes every line item under it; removing a carrier removes every
// settlement, recursively. Bulk child deletes skip per-item aggregation
// passes since the parent is going away with them.
type Coordinator struct {
	engine *Engine
	log    *logrus.Logger
}

// NewCoordinator creates a cascade coordinator bound to an engine
func NewCoordinator(engine *Engine, log *logrus.Logger) *Coordinator {
	return &Coordinator{engine: engine, log: log}
}

// DeleteSettlement removes a settlement and all line items under it,
// then recomputes the owning carrier's aggregates. Must run inside a
// transaction scoped to repo.
func (c *Coordinator) DeleteSettlement(ctx context.Context, repo repository.Repository, settlement *models.Settlement) error {
	for _, kind := range models.LineItemKinds {
		if err := repo.DeleteSettlementLineItems(ctx, kind, settlement.ID); err != nil {
			return fmt.Errorf("%w: remove %s under settlement %s: %v", ErrCascadeFailed, kind, settlement.ID, err)
		}
	}

	if err := repo.DeleteSettlement(ctx, settlement); err != nil {
		return fmt.Errorf("%w: remove settlement %s: %v", ErrCascadeFailed, settlement.ID, err)
	}

	c.log.WithFields(logrus.Fields{
		"settlement_id": settlement.ID,
		"carrier_id":    settlement.CarrierID,
	}).Debug("Settlement cascade delete completed")

	return c.engine.RecomputeCarrier(ctx, repo, settlement.CarrierID)
}

// DeleteCarrier removes a carrier and cascades through every settlement
// under it. Must run inside a transaction scoped to repo.
func (c *Coordinator) DeleteCarrier(ctx context.Context, repo repository.Repository, carrier *models.Carrier) error {
	settlements, err := repo.ListSettlementsByCarrier(ctx, carrier.ID)
	if err != nil {
		return fmt.Errorf("%w: list settlements under carrier %s: %v", ErrCascadeFailed, carrier.ID, err)
	}

	for _, settlement := range settlements {
		if err := c.DeleteSettlement(ctx, repo, settlement); err != nil {
			return err
		}
	}

	if err := repo.DeleteCarrier(ctx, carrier); err != nil {
		return fmt.Errorf("%w: remove carrier %s: %v", ErrCascadeFailed, carrier.ID, err)
	}

	c.log.WithFields(logrus.Fields{
		"carrier_id":  carrier.ID,
		"settlements": len(settlements),
	}).Info("Carrier cascade delete completed")

	return nil
}
