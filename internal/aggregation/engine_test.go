package aggregation_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/freightline/services/settlement/internal/aggregation"
	"example.com/freightline/services/settlement/internal/events"
	"example.com/freightline/services/settlement/internal/models"
	"example.com/freightline/services/settlement/internal/repository"
	"example.com/freightline/services/settlement/internal/testutil"
)

func seedCarrier(t *testing.T, repo repository.Repository, name string) *models.Carrier {
	t.Helper()
	carrier := &models.Carrier{Name: name, UserID: uuid.New()}
	require.NoError(t, repo.CreateCarrier(context.Background(), carrier))
	return carrier
}

func seedSettlement(t *testing.T, repo repository.Repository, carrierID uuid.UUID, amount, stops, routes float64) *models.Settlement {
	t.Helper()
	settlement := &models.Settlement{
		SettlementNumber: uuid.New().String(),
		Status:           models.SettlementStatusOpen,
		SettlementAmount: amount,
		StopCount:        stops,
		RouteCount:       routes,
		CarrierID:        carrierID,
		UserID:           uuid.New(),
	}
	require.NoError(t, repo.CreateSettlement(context.Background(), settlement))
	return settlement
}

func TestRecomputeSettlementSumsChargebacks(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepo(t)
	engine := aggregation.NewEngine(testutil.NewLogger())

	carrier := seedCarrier(t, repo, "Acme Logistics")
	settlement := seedSettlement(t, repo, carrier.ID, 1000, 0, 0)

	for _, amount := range []float64{100, 250, 50} {
		item := &models.Chargeback{ChargebackAmount: amount}
		item.SetSettlementID(settlement.ID)
		item.SetUserID(settlement.UserID)
		require.NoError(t, repo.CreateLineItem(ctx, item))
	}

	require.NoError(t, engine.RecomputeSettlement(ctx, repo, settlement.ID, models.KindChargeback))

	got, err := repo.FindSettlementByID(ctx, settlement.ID)
	require.NoError(t, err)
	assert.Equal(t, 400.0, got.ChargebackAmount)
}

func TestRecomputeSettlementAfterDelete(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepo(t)
	engine := aggregation.NewEngine(testutil.NewLogger())

	carrier := seedCarrier(t, repo, "Acme Logistics")
	settlement := seedSettlement(t, repo, carrier.ID, 1000, 0, 0)

	var middle *models.Chargeback
	for _, amount := range []float64{100, 250, 50} {
		item := &models.Chargeback{ChargebackAmount: amount}
		item.SetSettlementID(settlement.ID)
		item.SetUserID(settlement.UserID)
		require.NoError(t, repo.CreateLineItem(ctx, item))
		if amount == 250 {
			middle = item
		}
	}

	require.NoError(t, engine.RecomputeSettlement(ctx, repo, settlement.ID, models.KindChargeback))
	require.NoError(t, repo.DeleteLineItem(ctx, middle))
	require.NoError(t, engine.RecomputeSettlement(ctx, repo, settlement.ID, models.KindChargeback))

	got, err := repo.FindSettlementByID(ctx, settlement.ID)
	require.NoError(t, err)
	assert.Equal(t, 150.0, got.ChargebackAmount)
}

func TestRecomputeSettlementEmptyFoldIsZero(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepo(t)
	engine := aggregation.NewEngine(testutil.NewLogger())

	carrier := seedCarrier(t, repo, "Acme Logistics")
	settlement := seedSettlement(t, repo, carrier.ID, 1000, 0, 0)

	item := &models.AdminFee{AdminFeeAmount: 75}
	item.SetSettlementID(settlement.ID)
	item.SetUserID(settlement.UserID)
	require.NoError(t, repo.CreateLineItem(ctx, item))
	require.NoError(t, engine.RecomputeSettlement(ctx, repo, settlement.ID, models.KindAdminFee))

	require.NoError(t, repo.DeleteLineItem(ctx, item))
	require.NoError(t, engine.RecomputeSettlement(ctx, repo, settlement.ID, models.KindAdminFee))

	got, err := repo.FindSettlementByID(ctx, settlement.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.AdminFee)
}

func TestEachKindWritesItsOwnColumn(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepo(t)
	engine := aggregation.NewEngine(testutil.NewLogger())

	carrier := seedCarrier(t, repo, "Acme Logistics")
	settlement := seedSettlement(t, repo, carrier.ID, 1000, 0, 0)
	userID := settlement.UserID

	items := []models.LineItem{
		&models.Chargeback{ChargebackAmount: 100},
		&models.AdminFee{AdminFeeAmount: 25},
		&models.PerformanceBondDeduction{PerformanceBondDeductionAmount: 50},
		&models.PropertyDamageClaim{ClaimAmount: 300, ClaimStatus: models.ClaimStatusOpen},
		&models.OtherDeduction{DeductionAmount: 10},
	}
	for _, item := range items {
		item.SetSettlementID(settlement.ID)
		item.SetUserID(userID)
		require.NoError(t, repo.CreateLineItem(ctx, item))
		require.NoError(t, engine.RecomputeSettlement(ctx, repo, settlement.ID, item.Kind()))
	}

	got, err := repo.FindSettlementByID(ctx, settlement.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.ChargebackAmount)
	assert.Equal(t, 25.0, got.AdminFee)
	assert.Equal(t, 50.0, got.BondDeduction)
	assert.Equal(t, 300.0, got.PropertyDamageClaimDeduction)
	assert.Equal(t, 10.0, got.OtherDeductions)
}

func TestNotesAndRoutesContributeNoAggregate(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepo(t)
	engine := aggregation.NewEngine(testutil.NewLogger())

	carrier := seedCarrier(t, repo, "Acme Logistics")
	settlement := seedSettlement(t, repo, carrier.ID, 1000, 0, 0)

	note := &models.Note{Title: "week 12", Text: "short week"}
	note.SetSettlementID(settlement.ID)
	note.SetUserID(settlement.UserID)
	require.NoError(t, repo.CreateLineItem(ctx, note))

	route := &models.DeliveryRoute{RouteNumber: "R-9", RouteRevenue: 500}
	route.SetSettlementID(settlement.ID)
	route.SetUserID(settlement.UserID)
	require.NoError(t, repo.CreateLineItem(ctx, route))

	require.NoError(t, engine.RecomputeSettlement(ctx, repo, settlement.ID, models.KindNote))
	require.NoError(t, engine.RecomputeSettlement(ctx, repo, settlement.ID, models.KindDeliveryRoute))

	got, err := repo.FindSettlementByID(ctx, settlement.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.ChargebackAmount)
	assert.Equal(t, 0.0, got.OtherDeductions)
}

func TestRecomputeCarrierTotalsAndAverages(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepo(t)
	engine := aggregation.NewEngine(testutil.NewLogger())

	carrier := seedCarrier(t, repo, "Acme Logistics")
	seedSettlement(t, repo, carrier.ID, 1000, 100, 10)
	seedSettlement(t, repo, carrier.ID, 2000, 50, 30)

	require.NoError(t, engine.RecomputeCarrier(ctx, repo, carrier.ID))

	got, err := repo.FindCarrierByID(ctx, carrier.ID)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, got.TotalSalesRevenue)
	assert.Equal(t, 150.0, got.TotalStopCount)
	assert.Equal(t, 40.0, got.TotalRouteCount)
	assert.Equal(t, 1500.0, got.AverageSettlementRevenue)
	assert.Equal(t, 75.0, got.AverageSettlementStopCount)
	assert.Equal(t, 20.0, got.AverageSettlementRouteCount)
}

func TestRecomputeCarrierEmptyFoldIsZero(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepo(t)
	engine := aggregation.NewEngine(testutil.NewLogger())

	carrier := seedCarrier(t, repo, "Acme Logistics")
	settlement := seedSettlement(t, repo, carrier.ID, 1000, 100, 10)

	require.NoError(t, engine.RecomputeCarrier(ctx, repo, carrier.ID))
	require.NoError(t, repo.DeleteSettlement(ctx, settlement))
	require.NoError(t, engine.RecomputeCarrier(ctx, repo, carrier.ID))

	got, err := repo.FindCarrierByID(ctx, carrier.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.TotalSalesRevenue)
	assert.Equal(t, 0.0, got.AverageSettlementRevenue)
}

func TestDispatchRoutesByKind(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepo(t)
	engine := aggregation.NewEngine(testutil.NewLogger())

	carrier := seedCarrier(t, repo, "Acme Logistics")
	settlement := seedSettlement(t, repo, carrier.ID, 500, 5, 1)

	item := &models.OtherDeduction{DeductionAmount: 42}
	item.SetSettlementID(settlement.ID)
	item.SetUserID(settlement.UserID)
	require.NoError(t, repo.CreateLineItem(ctx, item))

	require.NoError(t, engine.Dispatch(ctx, repo, events.Created(models.KindOtherDeduction, settlement.ID)))
	require.NoError(t, engine.Dispatch(ctx, repo, events.Created(models.KindSettlement, carrier.ID)))

	gotSettlement, err := repo.FindSettlementByID(ctx, settlement.ID)
	require.NoError(t, err)
	assert.Equal(t, 42.0, gotSettlement.OtherDeductions)

	gotCarrier, err := repo.FindCarrierByID(ctx, carrier.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, gotCarrier.TotalSalesRevenue)
}
