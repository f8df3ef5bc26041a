package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"example.com/freightline/services/settlement/internal/models"
	"example.com/freightline/services/settlement/internal/repository"
)

const reconcileConcurrency = 4

// Reconcile refolds every derived aggregate from the live child sets.
// Plain updates to settlements and line items do not refold on write,
// so the sweep is what brings the denormalized columns back in line.
func (s *service) Reconcile(ctx context.Context) error {
	settlementIDs, err := s.repo.ListSettlementIDs(ctx)
	if err != nil {
		return translateRepoError(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileConcurrency)

	for _, id := range settlementIDs {
		id := id
		g.Go(func() error {
			return s.reconcileSettlement(gctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	carrierIDs, err := s.repo.ListCarrierIDs(ctx)
	if err != nil {
		return translateRepoError(err)
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(reconcileConcurrency)

	for _, id := range carrierIDs {
		id := id
		g.Go(func() error {
			return s.reconcileCarrier(gctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"settlements": len(settlementIDs),
		"carriers":    len(carrierIDs),
	}).Info("Aggregate reconciliation completed")

	return nil
}

// reconcileSettlement refolds every contributing kind under one
// settlement, holding its row lock for the duration
func (s *service) reconcileSettlement(ctx context.Context, id uuid.UUID) error {
	return s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindSettlementForUpdate(ctx, id); err != nil {
			// Deleted since listing, nothing to repair
			return nil
		}
		for _, kind := range models.LineItemKinds {
			if err := s.engine.RecomputeSettlement(ctx, tx, id, kind); err != nil {
				return err
			}
		}
		return nil
	})
}

// reconcileCarrier refolds one carrier's totals and averages, holding
// its row lock for the duration
func (s *service) reconcileCarrier(ctx context.Context, id uuid.UUID) error {
	return s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindCarrierForUpdate(ctx, id); err != nil {
			return nil
		}
		return s.engine.RecomputeCarrier(ctx, tx, id)
	})
}
