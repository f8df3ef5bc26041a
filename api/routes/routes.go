package routes

import (
	"example.com/freightline/services/settlement/api/handlers"
	"example.com/freightline/services/settlement/api/middleware"
	"example.com/freightline/services/settlement/internal/auth"
	"example.com/freightline/services/settlement/internal/models"
	"example.com/freightline/services/settlement/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// lineItemRoute binds a child-collection kind to its URL segments
type lineItemRoute struct {
	kind   models.Kind
	nested string // under /settlements/:id
	direct string // top-level collection
}

var lineItemRoutes = []lineItemRoute{
	{models.KindNote, "notes", "notes"},
	{models.KindChargeback, "chargebacks", "chargebacks"},
	{models.KindDeliveryRoute, "deliveryroutes", "deliveryroutes"},
	{models.KindAdminFee, "adminfees", "adminfees"},
	{models.KindBondDeduction, "performancebonddeductions", "performancebonddeductions"},
	{models.KindDamageClaim, "propertydamageclaims", "propertydamageclaims"},
	{models.KindOtherDeduction, "otherdeductions", "otherdeductions"},
}

// SetupRoutes sets up all the routes for the server
func SetupRoutes(r *gin.Engine, svc service.Service, tokens *auth.Manager, log *logrus.Logger) {
	// Health check
	r.GET("/health", handlers.HealthCheck)

	// API routes
	api := r.Group("/api/v1")

	protect := middleware.Protect(tokens, svc, log)
	manage := middleware.RequireElevated()

	// Auth routes
	authHandler := handlers.NewAuthHandler(svc, log)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/me", protect, authHandler.Me)
		authGroup.POST("/forgotpassword", authHandler.ForgotPassword)
		authGroup.PUT("/resetpassword/:token", authHandler.ResetPassword)
	}

	// Carrier routes
	carrierHandler := handlers.NewCarrierHandler(svc, log)
	settlementHandler := handlers.NewSettlementHandler(svc, log)
	carriers := api.Group("/carriers")
	{
		carriers.GET("", carrierHandler.ListCarriers)
		carriers.GET("/:id", carrierHandler.GetCarrier)
		carriers.POST("", protect, manage, carrierHandler.CreateCarrier)
		carriers.PUT("/:id", protect, manage, carrierHandler.UpdateCarrier)
		carriers.DELETE("/:id", protect, manage, carrierHandler.DeleteCarrier)

		// Settlements nested under their carrier
		carriers.GET("/:id/settlements", settlementHandler.ListCarrierSettlements)
		carriers.POST("/:id/settlements", protect, manage, settlementHandler.CreateSettlement)
	}

	// Settlement routes
	settlements := api.Group("/settlements")
	{
		settlements.GET("", settlementHandler.ListSettlements)
		settlements.GET("/:id", settlementHandler.GetSettlement)
		settlements.PUT("/:id", protect, manage, settlementHandler.UpdateSettlement)
		settlements.DELETE("/:id", protect, manage, settlementHandler.DeleteSettlement)
	}

	// Line-item routes, one nested and one direct group per kind
	lineItemHandler := handlers.NewLineItemHandler(svc, log)
	for _, route := range lineItemRoutes {
		settlements.GET("/:id/"+route.nested, lineItemHandler.List(route.kind))
		settlements.POST("/:id/"+route.nested, protect, lineItemHandler.Create(route.kind))

		direct := api.Group("/" + route.direct)
		direct.GET("/:id", lineItemHandler.Get(route.kind))
		direct.PUT("/:id", protect, lineItemHandler.Update(route.kind))
		direct.DELETE("/:id", protect, lineItemHandler.Delete(route.kind))
	}
}
