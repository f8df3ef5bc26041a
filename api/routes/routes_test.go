package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/freightline/services/settlement/api/routes"
	"example.com/freightline/services/settlement/internal/auth"
	"example.com/freightline/services/settlement/internal/service"
	"example.com/freightline/services/settlement/internal/testutil"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	repo := testutil.NewRepo(t)
	tokens := auth.NewManager("test-secret", time.Hour)
	svc, err := service.NewService(service.ServiceConfig{
		Repository:      repo,
		Cache:           testutil.NewFakeCache(),
		MessagingClient: testutil.NewFakeBus(),
		Tokens:          tokens,
		Logger:          testutil.NewLogger(),
	})
	require.NoError(t, err)

	router := gin.New()
	routes.SetupRoutes(router, svc, tokens, testutil.NewLogger())
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, router *gin.Engine, email, role string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    email,
		"password": "hunter22",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCarrierMutationRequiresElevatedRole(t *testing.T) {
	router := newTestRouter(t)

	// No token
	rec := doJSON(t, router, http.MethodPost, "/api/v1/carriers", "", gin.H{"name": "Acme"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Plain user token
	userToken := registerUser(t, router, "user@example.com", "user")
	rec = doJSON(t, router, http.MethodPost, "/api/v1/carriers", userToken, gin.H{"name": "Acme"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Staff token
	staffToken := registerUser(t, router, "staff@example.com", "staff")
	rec = doJSON(t, router, http.MethodPost, "/api/v1/carriers", staffToken, gin.H{"name": "Acme"})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Reads stay public
	rec = doJSON(t, router, http.MethodGet, "/api/v1/carriers", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSettlementLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "staff@example.com", "staff")

	// Create a carrier
	rec := doJSON(t, router, http.MethodPost, "/api/v1/carriers", token, gin.H{"name": "Acme Logistics"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var carrier struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &carrier))
	assert.Equal(t, "acme-logistics", carrier.Slug)

	// Create a settlement under it
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/carriers/%s/settlements", carrier.ID), token, gin.H{
		"settlement_number": "S-100",
		"settlement_amount": 1200.0,
		"stop_count":        40.0,
		"route_count":       4.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var settlement struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settlement))

	// The carrier now reflects the settlement totals
	rec = doJSON(t, router, http.MethodGet, "/api/v1/carriers/"+carrier.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var carrierBody struct {
		TotalSalesRevenue        float64 `json:"total_sales_revenue"`
		AverageSettlementRevenue float64 `json:"average_settlement_revenue"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &carrierBody))
	assert.Equal(t, 1200.0, carrierBody.TotalSalesRevenue)
	assert.Equal(t, 1200.0, carrierBody.AverageSettlementRevenue)

	// Record a chargeback under the settlement
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/settlements/%s/chargebacks", settlement.ID), token, gin.H{
		"chargeback_number": "CB-1",
		"chargeback_amount": 85.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// The settlement now carries the folded chargeback amount
	rec = doJSON(t, router, http.MethodGet, "/api/v1/settlements/"+settlement.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var settlementBody struct {
		ChargebackAmount float64 `json:"chargeback_amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settlementBody))
	assert.Equal(t, 85.0, settlementBody.ChargebackAmount)

	// Delete the settlement and confirm the carrier refolds to zero
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/settlements/"+settlement.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/v1/carriers/"+carrier.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &carrierBody))
	assert.Equal(t, 0.0, carrierBody.TotalSalesRevenue)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/settlements/"+settlement.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminFeeConflictOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "staff@example.com", "staff")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/carriers", token, gin.H{"name": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var carrier struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &carrier))

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/carriers/%s/settlements", carrier.ID), token, gin.H{
		"settlement_number": "S-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var settlement struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settlement))

	path := fmt.Sprintf("/api/v1/settlements/%s/adminfees", settlement.ID)
	rec = doJSON(t, router, http.MethodPost, path, token, gin.H{"admin_fee_amount": 25.0})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, path, token, gin.H{"admin_fee_amount": 30.0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidTokenRejected(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateCannotReassignOwnership(t *testing.T) {
	router := newTestRouter(t)
	ownerToken := registerUser(t, router, "owner@example.com", "staff")
	strangerToken := registerUser(t, router, "stranger@example.com", "staff")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", strangerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stranger struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stranger))

	rec = doJSON(t, router, http.MethodPost, "/api/v1/carriers", ownerToken, gin.H{"name": "Owner Freight"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var carrier struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &carrier))

	// A forged owner in the body must not pass the ownership check
	rec = doJSON(t, router, http.MethodPut, "/api/v1/carriers/"+carrier.ID, strangerToken, gin.H{
		"name":    "Hijacked Logistics",
		"user_id": stranger.ID,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/v1/carriers/"+carrier.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Name   string `json:"name"`
		UserID string `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Owner Freight", got.Name)
	assert.NotEqual(t, stranger.ID, got.UserID)

	// Same for settlements
	rec = doJSON(t, router, http.MethodPost, "/api/v1/carriers/"+carrier.ID+"/settlements", ownerToken, gin.H{
		"settlement_number": "S-100",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var settlement struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settlement))

	rec = doJSON(t, router, http.MethodPut, "/api/v1/settlements/"+settlement.ID, strangerToken, gin.H{
		"check_number": "stolen",
		"user_id":      stranger.ID,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/v1/settlements/"+settlement.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var gotSettlement struct {
		CheckNumber string `json:"check_number"`
		UserID      string `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gotSettlement))
	assert.Empty(t, gotSettlement.CheckNumber)
	assert.NotEqual(t, stranger.ID, gotSettlement.UserID)
}
