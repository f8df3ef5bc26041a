// Package aggregation keeps the denormalized summary fields on carriers
// and settlements consistent with their child collections. The engine is
// stateless: every pass folds the current child set and writes the
// result onto the parent, inside the caller's transaction.
package aggregation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"example.com/freightline/services/settlement/internal/events"
	"example.com/freightline/services/settlement/internal/models"
	"example.com/freightline/services/settlement/internal/repository"
)

// Errors surfaced to the triggering operation. Both abort the enclosing
// transaction; aggregation failures are never swallowed.
var (
	ErrAggregationFailed = fmt.Errorf("aggregate recomputation failed")
	ErrCascadeFailed     = fmt.Errorf("cascade delete failed")
)

// settlementRule maps a contributing line-item kind to the column it
// folds and the settlement column it writes. Kinds without a rule
// (notes, delivery routes) contribute no aggregate.
type settlementRule struct {
	sourceColumn string
	targetColumn string
}

var settlementRules = map[models.Kind]settlementRule{
	models.KindChargeback:     {sourceColumn: "chargeback_amount", targetColumn: "chargeback_amount"},
	models.KindAdminFee:       {sourceColumn: "admin_fee_amount", targetColumn: "admin_fee"},
	models.KindBondDeduction:  {sourceColumn: "performance_bond_deduction_amount", targetColumn: "bond_deduction"},
	models.KindDamageClaim:    {sourceColumn: "claim_amount", targetColumn: "property_damage_claim_deduction"},
	models.KindOtherDeduction: {sourceColumn: "deduction_amount", targetColumn: "other_deductions"},
}

// Engine recomputes derived parent fields from child-collection snapshots
type Engine struct {
	log *logrus.Logger
}

// NewEngine creates a new aggregation engine
func NewEngine(log *logrus.Logger) *Engine {
	return &Engine{log: log}
}

// Dispatch consumes a mutation event and recomputes the affected parent
// aggregates. It must be called with the repository scoped to the same
// transaction as the mutation that produced the event.
func (e *Engine) Dispatch(ctx context.Context, repo repository.Repository, ev events.Event) error {
	if ev.Kind == models.KindSettlement {
		return e.RecomputeCarrier(ctx, repo, ev.ParentID)
	}
	return e.RecomputeSettlement(ctx, repo, ev.ParentID, ev.Kind)
}

// RecomputeSettlement folds the live records of one child kind under a
// settlement and writes the sum onto the settlement's derived column.
// Kinds that contribute no aggregate are a no-op.
func (e *Engine) RecomputeSettlement(ctx context.Context, repo repository.Repository, settlementID uuid.UUID, kind models.Kind) error {
	rule, ok := settlementRules[kind]
	if !ok {
		return nil
	}

	total, err := repo.SumLineItemAmounts(ctx, kind, rule.sourceColumn, settlementID)
	if err != nil {
		return fmt.Errorf("%w: fold %s under settlement %s: %v", ErrAggregationFailed, kind, settlementID, err)
	}

	if err := repo.UpdateSettlementAggregate(ctx, settlementID, rule.targetColumn, total); err != nil {
		return fmt.Errorf("%w: write %s onto settlement %s: %v", ErrAggregationFailed, rule.targetColumn, settlementID, err)
	}

	e.log.WithFields(logrus.Fields{
		"settlement_id": settlementID,
		"kind":          kind,
		"total":         total,
	}).Debug("Settlement aggregate recomputed")

	return nil
}

// RecomputeCarrier folds the live settlement set under a carrier into
// its totals and averages in a single pass and writes all six fields.
// An empty settlement set writes zeroes.
func (e *Engine) RecomputeCarrier(ctx context.Context, repo repository.Repository, carrierID uuid.UUID) error {
	agg, err := repo.CarrierSettlementStats(ctx, carrierID)
	if err != nil {
		return fmt.Errorf("%w: fold settlements under carrier %s: %v", ErrAggregationFailed, carrierID, err)
	}

	if err := repo.UpdateCarrierAggregates(ctx, carrierID, agg); err != nil {
		return fmt.Errorf("%w: write aggregates onto carrier %s: %v", ErrAggregationFailed, carrierID, err)
	}

	e.log.WithFields(logrus.Fields{
		"carrier_id":    carrierID,
		"total_revenue": agg.TotalSalesRevenue,
	}).Debug("Carrier aggregates recomputed")

	return nil
}
