package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"example.com/freightline/services/settlement/internal/aggregation"
	"example.com/freightline/services/settlement/internal/cache"
	"example.com/freightline/services/settlement/internal/models"
	"example.com/freightline/services/settlement/internal/repository"
	"example.com/freightline/services/settlement/internal/utils"

	"github.com/pkg/errors"
)

const carrierCacheTTL = time.Hour

// CreateCarrier registers a new carrier owned by the actor
func (s *service) CreateCarrier(ctx context.Context, actor *models.User, carrier *models.Carrier) error {
	if carrier.Name == "" {
		return errors.Wrap(ErrValidation, "carrier name is required")
	}
	for _, tag := range carrier.Status {
		if !models.ValidCarrierStatus(tag) {
			return errors.Wrapf(ErrValidation, "invalid carrier status %q", tag)
		}
	}

	carrier.Slug = utils.Slugify(carrier.Name)
	carrier.UserID = actor.ID

	if err := s.repo.CreateCarrier(ctx, carrier); err != nil {
		return translateRepoError(err)
	}

	s.invalidateCarrier(ctx, carrier.ID)
	s.publishChange(ctx, "carrier", carrier.ID, "created")

	return nil
}

// GetCarrier loads a carrier, serving from cache when possible
func (s *service) GetCarrier(ctx context.Context, id uuid.UUID) (*models.Carrier, error) {
	cacheKey := cache.CarrierKey(id)
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		var carrier models.Carrier
		if err := json.Unmarshal([]byte(cached), &carrier); err == nil {
			return &carrier, nil
		}
	}

	carrier, err := s.repo.FindCarrierByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}

	if data, err := json.Marshal(carrier); err == nil {
		s.cache.Set(ctx, cacheKey, string(data), carrierCacheTTL)
	}

	return carrier, nil
}

// ListCarriers returns every carrier, serving from cache when possible
func (s *service) ListCarriers(ctx context.Context) ([]*models.Carrier, error) {
	if cached, err := s.cache.Get(ctx, cache.CarrierListKey); err == nil {
		var carriers []*models.Carrier
		if err := json.Unmarshal([]byte(cached), &carriers); err == nil {
			return carriers, nil
		}
	}

	carriers, err := s.repo.ListCarriers(ctx)
	if err != nil {
		return nil, translateRepoError(err)
	}

	if data, err := json.Marshal(carriers); err == nil {
		s.cache.Set(ctx, cache.CarrierListKey, string(data), carrierCacheTTL)
	}

	return carriers, nil
}

// UpdateCarrier persists changes to a carrier the actor owns
func (s *service) UpdateCarrier(ctx context.Context, actor *models.User, carrier *models.Carrier) error {
	if !canModify(actor, carrier.UserID) {
		return ErrForbidden
	}
	for _, tag := range carrier.Status {
		if !models.ValidCarrierStatus(tag) {
			return errors.Wrapf(ErrValidation, "invalid carrier status %q", tag)
		}
	}

	if carrier.Name != "" {
		carrier.Slug = utils.Slugify(carrier.Name)
	}

	if err := s.repo.UpdateCarrier(ctx, carrier); err != nil {
		return translateRepoError(err)
	}

	s.invalidateCarrier(ctx, carrier.ID)
	s.publishChange(ctx, "carrier", carrier.ID, "updated")

	return nil
}

// DeleteCarrier removes a carrier and everything under it
func (s *service) DeleteCarrier(ctx context.Context, actor *models.User, id uuid.UUID) error {
	var settlementIDs []uuid.UUID

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		carrier, err := tx.FindCarrierForUpdate(ctx, id)
		if err != nil {
			return translateRepoError(err)
		}

		if !canModify(actor, carrier.UserID) {
			return ErrForbidden
		}

		settlements, err := tx.ListSettlementsByCarrier(ctx, id)
		if err != nil {
			return translateRepoError(err)
		}
		for _, settlement := range settlements {
			settlementIDs = append(settlementIDs, settlement.ID)
		}

		return s.coordinator.DeleteCarrier(ctx, tx, carrier)
	})
	if err != nil {
		if errors.Is(err, aggregation.ErrCascadeFailed) || errors.Is(err, aggregation.ErrAggregationFailed) {
			s.log.WithError(err).WithField("carrier_id", id).Error("Carrier delete aborted")
		}
		return err
	}

	s.invalidateCarrier(ctx, id)
	s.invalidateSettlements(ctx, settlementIDs)
	s.publishChange(ctx, "carrier", id, "deleted")

	return nil
}

// invalidateCarrier drops the cached carrier and the carrier listing
func (s *service) invalidateCarrier(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, cache.CarrierKey(id), cache.CarrierListKey); err != nil {
		s.log.WithError(err).Warn("Failed to invalidate carrier cache")
	}
}

// invalidateSettlements drops cached settlements
func (s *service) invalidateSettlements(ctx context.Context, ids []uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cache.SettlementKey(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.WithError(err).Warn("Failed to invalidate settlement cache")
	}
}
