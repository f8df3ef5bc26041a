package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"example.com/freightline/services/settlement/internal/cache"
	"example.com/freightline/services/settlement/internal/events"
	"example.com/freightline/services/settlement/internal/models"
	"example.com/freightline/services/settlement/internal/repository"
)

const settlementCacheTTL = time.Hour

// CreateSettlement records a settlement under a carrier and folds it
// into the carrier's totals and averages. Both happen in one
// transaction, serialized against concurrent mutations of the same
// carrier by a row lock.
func (s *service) CreateSettlement(ctx context.Context, actor *models.User, settlement *models.Settlement) error {
	if settlement.SettlementNumber == "" {
		return errors.Wrap(ErrValidation, "settlement number is required")
	}
	if settlement.CarrierID == uuid.Nil {
		return errors.Wrap(ErrValidation, "carrier id is required")
	}
	if !settlement.Status.Valid() {
		return errors.Wrapf(ErrValidation, "invalid settlement status %q", settlement.Status)
	}

	settlement.UserID = actor.ID

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		carrier, err := tx.FindCarrierForUpdate(ctx, settlement.CarrierID)
		if err != nil {
			return translateRepoError(err)
		}

		if err := tx.CreateSettlement(ctx, settlement); err != nil {
			return translateRepoError(err)
		}

		return s.engine.Dispatch(ctx, tx, events.Created(models.KindSettlement, carrier.ID))
	})
	if err != nil {
		return err
	}

	s.invalidateCarrier(ctx, settlement.CarrierID)
	s.publishChange(ctx, "settlement", settlement.ID, "created")

	return nil
}

// GetSettlement loads a settlement, serving from cache when possible
func (s *service) GetSettlement(ctx context.Context, id uuid.UUID) (*models.Settlement, error) {
	cacheKey := cache.SettlementKey(id)
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		var settlement models.Settlement
		if err := json.Unmarshal([]byte(cached), &settlement); err == nil {
			return &settlement, nil
		}
	}

	settlement, err := s.repo.FindSettlementByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}

	if data, err := json.Marshal(settlement); err == nil {
		s.cache.Set(ctx, cacheKey, string(data), settlementCacheTTL)
	}

	return settlement, nil
}

// ListSettlements returns every settlement
func (s *service) ListSettlements(ctx context.Context) ([]*models.Settlement, error) {
	settlements, err := s.repo.ListSettlements(ctx)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return settlements, nil
}

// ListCarrierSettlements returns the settlements under one carrier
func (s *service) ListCarrierSettlements(ctx context.Context, carrierID uuid.UUID) ([]*models.Settlement, error) {
	if _, err := s.repo.FindCarrierByID(ctx, carrierID); err != nil {
		return nil, translateRepoError(err)
	}
	settlements, err := s.repo.ListSettlementsByCarrier(ctx, carrierID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return settlements, nil
}

// UpdateSettlement persists changes to a settlement the actor owns.
// Updates do not refold carrier aggregates; the reconciliation sweep
// repairs any drift they introduce.
func (s *service) UpdateSettlement(ctx context.Context, actor *models.User, settlement *models.Settlement) error {
	if !canModify(actor, settlement.UserID) {
		return ErrForbidden
	}
	if !settlement.Status.Valid() {
		return errors.Wrapf(ErrValidation, "invalid settlement status %q", settlement.Status)
	}

	if err := s.repo.UpdateSettlement(ctx, settlement); err != nil {
		return translateRepoError(err)
	}

	s.invalidateSettlements(ctx, []uuid.UUID{settlement.ID})
	s.publishChange(ctx, "settlement", settlement.ID, "updated")

	return nil
}

// DeleteSettlement removes a settlement and its line items, then
// refolds the owning carrier's aggregates
func (s *service) DeleteSettlement(ctx context.Context, actor *models.User, id uuid.UUID) error {
	var carrierID uuid.UUID

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		settlement, err := tx.FindSettlementForUpdate(ctx, id)
		if err != nil {
			return translateRepoError(err)
		}

		if !canModify(actor, settlement.UserID) {
			return ErrForbidden
		}

		carrierID = settlement.CarrierID

		// Serialize against concurrent carrier-aggregate writers
		if _, err := tx.FindCarrierForUpdate(ctx, settlement.CarrierID); err != nil {
			return translateRepoError(err)
		}

		return s.coordinator.DeleteSettlement(ctx, tx, settlement)
	})
	if err != nil {
		return err
	}

	s.invalidateCarrier(ctx, carrierID)
	s.invalidateSettlements(ctx, []uuid.UUID{id})
	s.publishChange(ctx, "settlement", id, "deleted")

	return nil
}
