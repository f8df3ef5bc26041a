package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"example.com/freightline/services/settlement/internal/models"
	"example.com/freightline/services/settlement/internal/service"
	"example.com/freightline/services/settlement/internal/testutil"
)

func staffActor() *models.User {
	return &models.User{
		Model: models.Model{ID: uuid.New()},
		Email: uuid.New().String() + "@example.com",
		Role:  models.RoleStaff,
	}
}

func adminActor() *models.User {
	actor := staffActor()
	actor.Role = models.RoleAdmin
	return actor
}

func seedCarrier(t *testing.T, svc service.Service, actor *models.User) *models.Carrier {
	t.Helper()
	carrier := &models.Carrier{Name: "Carrier " + uuid.New().String()}
	require.NoError(t, svc.CreateCarrier(context.Background(), actor, carrier))
	return carrier
}

func seedSettlement(t *testing.T, svc service.Service, actor *models.User, carrierID uuid.UUID, amount, stops, routes float64) *models.Settlement {
	t.Helper()
	settlement := &models.Settlement{
		SettlementNumber: "S-" + uuid.New().String(),
		Status:           models.SettlementStatusOpen,
		SettlementAmount: amount,
		StopCount:        stops,
		RouteCount:       routes,
		CarrierID:        carrierID,
	}
	require.NoError(t, svc.CreateSettlement(context.Background(), actor, settlement))
	return settlement
}

func TestCreateSettlementFoldsIntoCarrier(t *testing.T) {
	ctx := context.Background()
	svc, repo := testutil.NewService(t)
	actor := staffActor()

	carrier := seedCarrier(t, svc, actor)
	seedSettlement(t, svc, actor, carrier.ID, 1000, 100, 10)
	seedSettlement(t, svc, actor, carrier.ID, 2000, 50, 30)

	got, err := repo.FindCarrierByID(ctx, carrier.ID)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, got.TotalSalesRevenue)
	assert.Equal(t, 1500.0, got.AverageSettlementRevenue)
	assert.Equal(t, 150.0, got.TotalStopCount)
	assert.Equal(t, 40.0, got.TotalRouteCount)
}

func TestCreateSettlementRequiresCarrier(t *testing.T) {
	svc, _ := testutil.NewService(t)
	actor := staffActor()

	err := svc.CreateSettlement(context.Background(), actor, &models.Settlement{
		SettlementNumber: "S-1",
		CarrierID:        uuid.New(),
	})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCreateLineItemFoldsIntoSettlement(t *testing.T) {
	ctx := context.Background()
	svc, repo := testutil.NewService(t)
	actor := staffActor()

	carrier := seedCarrier(t, svc, actor)
	settlement := seedSettlement(t, svc, actor, carrier.ID, 1000, 0, 0)

	for _, amount := range []float64{100, 250, 50} {
		item := &models.Chargeback{ChargebackAmount: amount}
		require.NoError(t, svc.CreateLineItem(ctx, actor, settlement.ID, item))
	}

	got, err := repo.FindSettlementByID(ctx, settlement.ID)
	require.NoError(t, err)
	assert.Equal(t, 400.0, got.ChargebackAmount)
}

func TestDeleteLineItemRefoldsSettlement(t *testing.T) {
	ctx := context.Background()
	svc, repo := testutil.NewService(t)
	actor := staffActor()

	carrier := seedCarrier(t, svc, actor)
	settlement := seedSettlement(t, svc, actor, carrier.ID, 1000, 0, 0)

	item := &models.OtherDeduction{DeductionAmount: 75}
	require.NoError(t, svc.CreateLineItem(ctx, actor, settlement.ID, item))
	require.NoError(t, svc.DeleteLineItem(ctx, actor, models.KindOtherDeduction, item.GetID()))

	got, err := repo.FindSettlementByID(ctx, settlement.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.OtherDeductions)
}

func TestAdminFeeUniquePerUserPerSettlement(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewService(t)
	actor := staffActor()

	carrier := seedCarrier(t, svc, actor)
	settlement := seedSettlement(t, svc, actor, carrier.ID, 1000, 0, 0)

	require.NoError(t, svc.CreateLineItem(ctx, actor, settlement.ID, &models.AdminFee{AdminFeeAmount: 25}))

	err := svc.CreateLineItem(ctx, actor, settlement.ID, &models.AdminFee{AdminFeeAmount: 30})
	assert.ErrorIs(t, err, service.ErrValidation)

	// A different user may still record their own fee
	other := staffActor()
	assert.NoError(t, svc.CreateLineItem(ctx, other, settlement.ID, &models.AdminFee{AdminFeeAmount: 30}))
}

func TestBondDeductionGetsDefaultNote(t *testing.T) {
	ctx := context.Background()
	svc, repo := testutil.NewService(t)
	actor := staffActor()

	carrier := seedCarrier(t, svc, actor)
	settlement := seedSettlement(t, svc, actor, carrier.ID, 1000, 0, 0)

	item := &models.PerformanceBondDeduction{PerformanceBondDeductionAmount: 50}
	require.NoError(t, svc.CreateLineItem(ctx, actor, settlement.ID, item))

	got, err := repo.FindLineItemByID(ctx, models.KindBondDeduction, item.GetID())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultBondDeductionNote, got.(*models.PerformanceBondDeduction).Note)
}

func TestDeleteSettlementCascadesAndRefoldsCarrier(t *testing.T) {
	ctx := context.Background()
	svc, repo := testutil.NewService(t)
	actor := staffActor()

	carrier := seedCarrier(t, svc, actor)
	keep := seedSettlement(t, svc, actor, carrier.ID, 1000, 100, 10)
	drop := seedSettlement(t, svc, actor, carrier.ID, 2000, 50, 30)

	require.NoError(t, svc.CreateLineItem(ctx, actor, drop.ID, &models.Chargeback{ChargebackAmount: 10}))

	require.NoError(t, svc.DeleteSettlement(ctx, actor, drop.ID))

	_, err := svc.GetSettlement(ctx, drop.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	count, err := repo.CountSettlementLineItems(ctx, models.KindChargeback, drop.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	got, err := repo.FindCarrierByID(ctx, carrier.ID)
	require.NoError(t, err)
	assert.Equal(t, keep.SettlementAmount, got.TotalSalesRevenue)
	assert.Equal(t, keep.SettlementAmount, got.AverageSettlementRevenue)
}

func TestDeleteCarrierCascades(t *testing.T) {
	ctx := context.Background()
	svc, repo := testutil.NewService(t)
	actor := staffActor()

	carrier := seedCarrier(t, svc, actor)
	settlement := seedSettlement(t, svc, actor, carrier.ID, 1000, 10, 2)
	require.NoError(t, svc.CreateLineItem(ctx, actor, settlement.ID, &models.Note{Title: "week"}))

	require.NoError(t, svc.DeleteCarrier(ctx, actor, carrier.ID))

	_, err := svc.GetCarrier(ctx, carrier.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.GetSettlement(ctx, settlement.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	count, err := repo.CountSettlementLineItems(ctx, models.KindNote, settlement.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOwnershipEnforcedOnMutation(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewService(t)
	owner := staffActor()
	stranger := staffActor()

	carrier := seedCarrier(t, svc, owner)
	settlement := seedSettlement(t, svc, owner, carrier.ID, 1000, 0, 0)

	settlement.CheckNumber = "c-100"
	assert.ErrorIs(t, svc.UpdateSettlement(ctx, stranger, settlement), service.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteSettlement(ctx, stranger, settlement.ID), service.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteCarrier(ctx, stranger, carrier.ID), service.ErrForbidden)

	// Admin overrides ownership
	assert.NoError(t, svc.UpdateSettlement(ctx, adminActor(), settlement))
	assert.NoError(t, svc.DeleteCarrier(ctx, adminActor(), carrier.ID))
}

func TestReconcileRepairsDrift(t *testing.T) {
	ctx := context.Background()
	svc, repo := testutil.NewService(t)
	actor := staffActor()

	carrier := seedCarrier(t, svc, actor)
	settlement := seedSettlement(t, svc, actor, carrier.ID, 1000, 10, 2)
	require.NoError(t, svc.CreateLineItem(ctx, actor, settlement.ID, &models.Chargeback{ChargebackAmount: 100}))

	// Plain updates do not refold, so the carrier totals now lag
	settlement.SettlementAmount = 5000
	require.NoError(t, svc.UpdateSettlement(ctx, actor, settlement))

	stale, err := repo.FindCarrierByID(ctx, carrier.ID)
	require.NoError(t, err)
	require.Equal(t, 1000.0, stale.TotalSalesRevenue)

	require.NoError(t, svc.Reconcile(ctx))

	repaired, err := repo.FindCarrierByID(ctx, carrier.ID)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, repaired.TotalSalesRevenue)

	gotSettlement, err := repo.FindSettlementByID(ctx, settlement.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, gotSettlement.ChargebackAmount)
}

func TestCarrierSlugDerivedFromName(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewService(t)
	actor := staffActor()

	carrier := &models.Carrier{Name: "J & B Trucking, Inc."}
	require.NoError(t, svc.CreateCarrier(ctx, actor, carrier))
	assert.Equal(t, "j-b-trucking-inc", carrier.Slug)
}

func TestDuplicateCarrierNameRejected(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewService(t)
	actor := staffActor()

	require.NoError(t, svc.CreateCarrier(ctx, actor, &models.Carrier{Name: "Acme Logistics"}))
	err := svc.CreateCarrier(ctx, actor, &models.Carrier{Name: "Acme Logistics"})
	assert.ErrorIs(t, err, service.ErrDuplicate)
}

func TestGetLineItemNotFound(t *testing.T) {
	svc, _ := testutil.NewService(t)
	_, err := svc.GetLineItem(context.Background(), models.KindChargeback, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSettlementStatusValidated(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewService(t)
	actor := staffActor()

	carrier := seedCarrier(t, svc, actor)

	err := svc.CreateSettlement(ctx, actor, &models.Settlement{
		SettlementNumber: "S-1",
		CarrierID:        carrier.ID,
		Status:           "Shipped",
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	settlement := seedSettlement(t, svc, actor, carrier.ID, 100, 1, 1)
	settlement.Status = "Shipped"
	assert.ErrorIs(t, svc.UpdateSettlement(ctx, actor, settlement), service.ErrValidation)

	settlement.Status = models.SettlementStatusPaid
	assert.NoError(t, svc.UpdateSettlement(ctx, actor, settlement))
}

func TestLineItemEnumFieldsValidated(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewService(t)
	actor := staffActor()

	carrier := seedCarrier(t, svc, actor)
	settlement := seedSettlement(t, svc, actor, carrier.ID, 100, 1, 1)

	err := svc.CreateLineItem(ctx, actor, settlement.ID, &models.PropertyDamageClaim{
		ClaimAmount: 50,
		ClaimStatus: "Pending",
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	err = svc.CreateLineItem(ctx, actor, settlement.ID, &models.PropertyDamageClaim{
		ClaimAmount: 50,
		ClaimStatus: models.ClaimStatusOpen,
		DamageType:  []string{"Roof Damage"},
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	err = svc.CreateLineItem(ctx, actor, settlement.ID, &models.OtherDeduction{
		DeductionAmount: 25,
		DeductionType:   []string{"Snack Deduction"},
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	// Accepted values pass through
	err = svc.CreateLineItem(ctx, actor, settlement.ID, &models.PropertyDamageClaim{
		ClaimAmount: 50,
		ClaimStatus: models.ClaimStatusOpen,
		DamageType:  []string{"Floor Damage"},
	})
	assert.NoError(t, err)
}

func TestCarrierStatusTagsValidated(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewService(t)
	actor := staffActor()

	err := svc.CreateCarrier(ctx, actor, &models.Carrier{
		Name:   "Status Freight",
		Status: []string{"Dormant"},
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	err = svc.CreateCarrier(ctx, actor, &models.Carrier{
		Name:   "Status Freight",
		Status: []string{"Active", "Recruiting"},
	})
	assert.NoError(t, err)
}

func TestConcurrentLineItemCreationsAllFold(t *testing.T) {
	ctx := context.Background()
	svc, repo := testutil.NewService(t)
	actor := staffActor()

	carrier := seedCarrier(t, svc, actor)
	settlement := seedSettlement(t, svc, actor, carrier.ID, 0, 0, 0)

	// Every concurrent creation runs its fold under the parent row
	// lock, so no contribution may be lost to a stale read
	const workers = 8
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return svc.CreateLineItem(ctx, actor, settlement.ID, &models.Chargeback{ChargebackAmount: 25})
		})
	}
	require.NoError(t, g.Wait())

	got, err := repo.FindSettlementByID(ctx, settlement.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(workers)*25, got.ChargebackAmount)
}
