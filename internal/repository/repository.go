package repository

import (
	"context"
	"errors"

	"example.com/freightline/services/settlement/internal/database"
	"example.com/freightline/services/settlement/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CarrierAggregates holds the six derived carrier fields computed from
// the live settlement set in a single pass
type CarrierAggregates struct {
	AverageSettlementRevenue    float64
	AverageSettlementStopCount  float64
	AverageSettlementRouteCount float64
	TotalSalesRevenue           float64
	TotalStopCount              float64
	TotalRouteCount             float64
}

// Repository provides data access methods
type Repository interface {
	// Transaction support
	WithTransaction(ctx context.Context, fn func(ctx context.Context, txRepo Repository) error) error

	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error)

	// Carrier operations
	CreateCarrier(ctx context.Context, carrier *models.Carrier) error
	UpdateCarrier(ctx context.Context, carrier *models.Carrier) error
	FindCarrierByID(ctx context.Context, id uuid.UUID) (*models.Carrier, error)
	FindCarrierForUpdate(ctx context.Context, id uuid.UUID) (*models.Carrier, error)
	ListCarriers(ctx context.Context) ([]*models.Carrier, error)
	ListCarrierIDs(ctx context.Context) ([]uuid.UUID, error)
	DeleteCarrier(ctx context.Context, carrier *models.Carrier) error
	UpdateCarrierAggregates(ctx context.Context, id uuid.UUID, agg CarrierAggregates) error

	// Settlement operations
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	UpdateSettlement(ctx context.Context, settlement *models.Settlement) error
	FindSettlementByID(ctx context.Context, id uuid.UUID) (*models.Settlement, error)
	FindSettlementForUpdate(ctx context.Context, id uuid.UUID) (*models.Settlement, error)
	ListSettlements(ctx context.Context) ([]*models.Settlement, error)
	ListSettlementsByCarrier(ctx context.Context, carrierID uuid.UUID) ([]*models.Settlement, error)
	ListSettlementIDs(ctx context.Context) ([]uuid.UUID, error)
	DeleteSettlement(ctx context.Context, settlement *models.Settlement) error
	CarrierSettlementStats(ctx context.Context, carrierID uuid.UUID) (CarrierAggregates, error)
	UpdateSettlementAggregate(ctx context.Context, id uuid.UUID, column string, value float64) error

	// Line-item operations, shared across the seven child kinds
	CreateLineItem(ctx context.Context, item models.LineItem) error
	UpdateLineItem(ctx context.Context, item models.LineItem) error
	FindLineItemByID(ctx context.Context, kind models.Kind, id uuid.UUID) (models.LineItem, error)
	ListSettlementLineItems(ctx context.Context, kind models.Kind, settlementID uuid.UUID) ([]models.LineItem, error)
	CountSettlementLineItems(ctx context.Context, kind models.Kind, settlementID uuid.UUID) (int64, error)
	CountUserLineItems(ctx context.Context, kind models.Kind, settlementID, userID uuid.UUID) (int64, error)
	DeleteLineItem(ctx context.Context, item models.LineItem) error
	DeleteSettlementLineItems(ctx context.Context, kind models.Kind, settlementID uuid.UUID) error
	SumLineItemAmounts(ctx context.Context, kind models.Kind, column string, settlementID uuid.UUID) (float64, error)
}

// repo is an implementation of the Repository interface
type repo struct {
	db database.DB
}

// NewRepository creates a new repository instance
func NewRepository(db database.DB) Repository {
	return &repo{
		db: db,
	}
}

// WithTransaction executes the given function within a database transaction
func (r *repo) WithTransaction(ctx context.Context, fn func(ctx context.Context, txRepo Repository) error) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return gormDB.Transaction(func(tx *gorm.DB) error {
		txRepo := &repo{
			db: database.Wrap(tx),
		}
		return fn(ctx, txRepo)
	})
}

// translateError maps gorm errors onto the repository sentinels
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	default:
		return err
	}
}
