package repository

import (
	"context"

	"example.com/freightline/services/settlement/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (r *repo) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return translateError(gormDB.WithContext(ctx).Create(settlement).Error)
}

func (r *repo) UpdateSettlement(ctx context.Context, settlement *models.Settlement) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return translateError(gormDB.WithContext(ctx).Save(settlement).Error)
}

func (r *repo) FindSettlementByID(ctx context.Context, id uuid.UUID) (*models.Settlement, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var settlement models.Settlement
	if err := gormDB.WithContext(ctx).Preload("Carrier").Where("id = ?", id).First(&settlement).Error; err != nil {
		return nil, translateError(err)
	}

	return &settlement, nil
}

// FindSettlementForUpdate loads a settlement under a row lock so that
// concurrent line-item mutations under the same settlement serialize on
// the aggregate write. SQLite has a single writer and needs no lock.
func (r *repo) FindSettlementForUpdate(ctx context.Context, id uuid.UUID) (*models.Settlement, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	query := gormDB.WithContext(ctx)
	if gormDB.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var settlement models.Settlement
	if err := query.Where("id = ?", id).First(&settlement).Error; err != nil {
		return nil, translateError(err)
	}

	return &settlement, nil
}

func (r *repo) ListSettlements(ctx context.Context) ([]*models.Settlement, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var settlements []*models.Settlement
	if err := gormDB.WithContext(ctx).Preload("Carrier").Order("period_ending DESC").Find(&settlements).Error; err != nil {
		return nil, err
	}

	return settlements, nil
}

func (r *repo) ListSettlementsByCarrier(ctx context.Context, carrierID uuid.UUID) ([]*models.Settlement, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var settlements []*models.Settlement
	if err := gormDB.WithContext(ctx).
		Where("carrier_id = ?", carrierID).
		Order("period_ending DESC").
		Find(&settlements).Error; err != nil {
		return nil, err
	}

	return settlements, nil
}

func (r *repo) ListSettlementIDs(ctx context.Context) ([]uuid.UUID, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	if err := gormDB.WithContext(ctx).Model(&models.Settlement{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *repo) DeleteSettlement(ctx context.Context, settlement *models.Settlement) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return translateError(gormDB.WithContext(ctx).Delete(settlement).Error)
}

// CarrierSettlementStats folds the live settlement set under a carrier
// into its six derived fields in a single pass. An empty set yields
// zeroes for both sums and averages.
func (r *repo) CarrierSettlementStats(ctx context.Context, carrierID uuid.UUID) (CarrierAggregates, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return CarrierAggregates{}, err
	}

	var agg CarrierAggregates
	if err := gormDB.WithContext(ctx).Model(&models.Settlement{}).
		Select(
			"COALESCE(AVG(settlement_amount), 0) AS average_settlement_revenue, "+
				"COALESCE(AVG(stop_count), 0) AS average_settlement_stop_count, "+
				"COALESCE(AVG(route_count), 0) AS average_settlement_route_count, "+
				"COALESCE(SUM(settlement_amount), 0) AS total_sales_revenue, "+
				"COALESCE(SUM(stop_count), 0) AS total_stop_count, "+
				"COALESCE(SUM(route_count), 0) AS total_route_count").
		Where("carrier_id = ?", carrierID).
		Scan(&agg).Error; err != nil {
		return CarrierAggregates{}, err
	}

	return agg, nil
}

// UpdateSettlementAggregate writes one derived column onto the
// settlement record. Updating a settlement that vanished mid-cascade
// affects zero rows and is not an error.
func (r *repo) UpdateSettlementAggregate(ctx context.Context, id uuid.UUID, column string, value float64) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return gormDB.WithContext(ctx).Model(&models.Settlement{}).
		Where("id = ?", id).
		UpdateColumn(column, value).Error
}
