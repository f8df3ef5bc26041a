package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"example.com/freightline/services/settlement/internal/events"
	"example.com/freightline/services/settlement/internal/models"
	"example.com/freightline/services/settlement/internal/repository"
)

// validateLineItem checks the enum-valued fields against their accepted
// value sets
func validateLineItem(item models.LineItem) error {
	switch v := item.(type) {
	case *models.PropertyDamageClaim:
		if !v.ClaimStatus.Valid() {
			return errors.Wrapf(ErrValidation, "invalid claim status %q", v.ClaimStatus)
		}
		for _, t := range v.DamageType {
			if !models.ValidDamageType(t) {
				return errors.Wrapf(ErrValidation, "invalid damage type %q", t)
			}
		}
	case *models.OtherDeduction:
		for _, t := range v.DeductionType {
			if !models.ValidDeductionType(t) {
				return errors.Wrapf(ErrValidation, "invalid deduction type %q", t)
			}
		}
	}
	return nil
}

// CreateLineItem records a line item under a settlement and refolds the
// settlement's derived column for that kind. The parent row lock keeps
// concurrent folds of the same settlement serialized.
func (s *service) CreateLineItem(ctx context.Context, actor *models.User, settlementID uuid.UUID, item models.LineItem) error {
	if err := validateLineItem(item); err != nil {
		return err
	}

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindSettlementForUpdate(ctx, settlementID); err != nil {
			return translateRepoError(err)
		}

		// One admin fee per user per settlement
		if item.Kind() == models.KindAdminFee {
			count, err := tx.CountUserLineItems(ctx, models.KindAdminFee, settlementID, actor.ID)
			if err != nil {
				return translateRepoError(err)
			}
			if count > 0 {
				return errors.Wrap(ErrValidation, "an admin fee for this settlement has already been recorded by this user")
			}
		}

		if bond, ok := item.(*models.PerformanceBondDeduction); ok && bond.Note == "" {
			bond.Note = models.DefaultBondDeductionNote
		}

		item.SetSettlementID(settlementID)
		item.SetUserID(actor.ID)

		if err := tx.CreateLineItem(ctx, item); err != nil {
			return translateRepoError(err)
		}

		return s.engine.Dispatch(ctx, tx, events.Created(item.Kind(), settlementID))
	})
	if err != nil {
		return err
	}

	s.invalidateSettlements(ctx, []uuid.UUID{settlementID})
	s.publishChange(ctx, string(item.Kind()), item.GetID(), "created")

	return nil
}

// GetLineItem loads one line item of the given kind
func (s *service) GetLineItem(ctx context.Context, kind models.Kind, id uuid.UUID) (models.LineItem, error) {
	item, err := s.repo.FindLineItemByID(ctx, kind, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return item, nil
}

// ListSettlementLineItems returns every line item of one kind under a
// settlement
func (s *service) ListSettlementLineItems(ctx context.Context, kind models.Kind, settlementID uuid.UUID) ([]models.LineItem, error) {
	if _, err := s.repo.FindSettlementByID(ctx, settlementID); err != nil {
		return nil, translateRepoError(err)
	}
	items, err := s.repo.ListSettlementLineItems(ctx, kind, settlementID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return items, nil
}

// UpdateLineItem persists changes to a line item the actor owns.
// Updates do not refold the settlement aggregate; the reconciliation
// sweep repairs any drift they introduce.
func (s *service) UpdateLineItem(ctx context.Context, actor *models.User, item models.LineItem) error {
	if !canModify(actor, item.GetUserID()) {
		return ErrForbidden
	}
	if err := validateLineItem(item); err != nil {
		return err
	}

	if err := s.repo.UpdateLineItem(ctx, item); err != nil {
		return translateRepoError(err)
	}

	s.invalidateSettlements(ctx, []uuid.UUID{item.GetSettlementID()})
	s.publishChange(ctx, string(item.Kind()), item.GetID(), "updated")

	return nil
}

// DeleteLineItem removes a line item and refolds the settlement's
// derived column for that kind
func (s *service) DeleteLineItem(ctx context.Context, actor *models.User, kind models.Kind, id uuid.UUID) error {
	var settlementID uuid.UUID

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		item, err := tx.FindLineItemByID(ctx, kind, id)
		if err != nil {
			return translateRepoError(err)
		}

		if !canModify(actor, item.GetUserID()) {
			return ErrForbidden
		}

		settlementID = item.GetSettlementID()

		if _, err := tx.FindSettlementForUpdate(ctx, settlementID); err != nil {
			return translateRepoError(err)
		}

		if err := tx.DeleteLineItem(ctx, item); err != nil {
			return translateRepoError(err)
		}

		return s.engine.Dispatch(ctx, tx, events.Deleted(kind, settlementID))
	})
	if err != nil {
		return err
	}

	s.invalidateSettlements(ctx, []uuid.UUID{settlementID})
	s.publishChange(ctx, string(kind), id, "deleted")

	return nil
}
