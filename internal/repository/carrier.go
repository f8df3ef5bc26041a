package repository

import (
	"context"

	"example.com/freightline/services/settlement/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (r *repo) CreateCarrier(ctx context.Context, carrier *models.Carrier) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return translateError(gormDB.WithContext(ctx).Create(carrier).Error)
}

func (r *repo) UpdateCarrier(ctx context.Context, carrier *models.Carrier) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return translateError(gormDB.WithContext(ctx).Save(carrier).Error)
}

func (r *repo) FindCarrierByID(ctx context.Context, id uuid.UUID) (*models.Carrier, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var carrier models.Carrier
	if err := gormDB.WithContext(ctx).Where("id = ?", id).First(&carrier).Error; err != nil {
		return nil, translateError(err)
	}

	return &carrier, nil
}

// FindCarrierForUpdate loads a carrier under a row lock so that
// concurrent settlement mutations under the same carrier serialize on
// the aggregate write. SQLite has a single writer and needs no lock.
func (r *repo) FindCarrierForUpdate(ctx context.Context, id uuid.UUID) (*models.Carrier, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	query := gormDB.WithContext(ctx)
	if gormDB.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var carrier models.Carrier
	if err := query.Where("id = ?", id).First(&carrier).Error; err != nil {
		return nil, translateError(err)
	}

	return &carrier, nil
}

func (r *repo) ListCarriers(ctx context.Context) ([]*models.Carrier, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var carriers []*models.Carrier
	if err := gormDB.WithContext(ctx).Order("created_at DESC").Find(&carriers).Error; err != nil {
		return nil, err
	}

	return carriers, nil
}

func (r *repo) ListCarrierIDs(ctx context.Context) ([]uuid.UUID, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	if err := gormDB.WithContext(ctx).Model(&models.Carrier{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *repo) DeleteCarrier(ctx context.Context, carrier *models.Carrier) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return translateError(gormDB.WithContext(ctx).Delete(carrier).Error)
}

// UpdateCarrierAggregates writes the six derived fields onto the carrier
// record. Updating a carrier that vanished mid-cascade affects zero rows
// and is not an error.
func (r *repo) UpdateCarrierAggregates(ctx context.Context, id uuid.UUID, agg CarrierAggregates) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return gormDB.WithContext(ctx).Model(&models.Carrier{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"average_settlement_revenue":     agg.AverageSettlementRevenue,
			"average_settlement_stop_count":  agg.AverageSettlementStopCount,
			"average_settlement_route_count": agg.AverageSettlementRouteCount,
			"total_sales_revenue":            agg.TotalSalesRevenue,
			"total_stop_count":               agg.TotalStopCount,
			"total_route_count":              agg.TotalRouteCount,
		}).Error
}
