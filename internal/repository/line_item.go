package repository

import (
	"context"
	"fmt"

	"example.com/freightline/services/settlement/internal/models"

	"github.com/google/uuid"
)

func (r *repo) CreateLineItem(ctx context.Context, item models.LineItem) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return translateError(gormDB.WithContext(ctx).Create(item).Error)
}

func (r *repo) UpdateLineItem(ctx context.Context, item models.LineItem) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return translateError(gormDB.WithContext(ctx).Save(item).Error)
}

func (r *repo) FindLineItemByID(ctx context.Context, kind models.Kind, id uuid.UUID) (models.LineItem, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	item := models.NewLineItem(kind)
	if item == nil {
		return nil, fmt.Errorf("unknown line-item kind %q", kind)
	}

	if err := gormDB.WithContext(ctx).Where("id = ?", id).First(item).Error; err != nil {
		return nil, translateError(err)
	}

	return item, nil
}

func (r *repo) ListSettlementLineItems(ctx context.Context, kind models.Kind, settlementID uuid.UUID) ([]models.LineItem, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	dest := models.NewLineItemSlice(kind)
	if dest == nil {
		return nil, fmt.Errorf("unknown line-item kind %q", kind)
	}

	if err := gormDB.WithContext(ctx).
		Where("settlement_id = ?", settlementID).
		Order("created_at DESC").
		Find(dest).Error; err != nil {
		return nil, err
	}

	return models.LineItemSlice(dest), nil
}

func (r *repo) CountSettlementLineItems(ctx context.Context, kind models.Kind, settlementID uuid.UUID) (int64, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return 0, err
	}

	item := models.NewLineItem(kind)
	if item == nil {
		return 0, fmt.Errorf("unknown line-item kind %q", kind)
	}

	var count int64
	if err := gormDB.WithContext(ctx).Model(item).
		Where("settlement_id = ?", settlementID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *repo) CountUserLineItems(ctx context.Context, kind models.Kind, settlementID, userID uuid.UUID) (int64, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return 0, err
	}

	item := models.NewLineItem(kind)
	if item == nil {
		return 0, fmt.Errorf("unknown line-item kind %q", kind)
	}

	var count int64
	if err := gormDB.WithContext(ctx).Model(item).
		Where("settlement_id = ? AND user_id = ?", settlementID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *repo) DeleteLineItem(ctx context.Context, item models.LineItem) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return translateError(gormDB.WithContext(ctx).Delete(item).Error)
}

// DeleteSettlementLineItems bulk-removes every record of one kind under
// a settlement. Used by the cascade coordinator only.
func (r *repo) DeleteSettlementLineItems(ctx context.Context, kind models.Kind, settlementID uuid.UUID) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	item := models.NewLineItem(kind)
	if item == nil {
		return fmt.Errorf("unknown line-item kind %q", kind)
	}

	return gormDB.WithContext(ctx).
		Where("settlement_id = ?", settlementID).
		Delete(item).Error
}

// SumLineItemAmounts folds the named amount column across the live
// records of one kind under a settlement. An empty set folds to zero.
func (r *repo) SumLineItemAmounts(ctx context.Context, kind models.Kind, column string, settlementID uuid.UUID) (float64, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return 0, err
	}

	item := models.NewLineItem(kind)
	if item == nil {
		return 0, fmt.Errorf("unknown line-item kind %q", kind)
	}

	var total float64
	if err := gormDB.WithContext(ctx).Model(item).
		Select(fmt.Sprintf("COALESCE(SUM(%s), 0)", column)).
		Where("settlement_id = ?", settlementID).
		Scan(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}
