package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"example.com/freightline/services/settlement/api/middleware"
	"example.com/freightline/services/settlement/internal/models"
	"example.com/freightline/services/settlement/internal/service"
)

// SettlementHandler handles settlement-related requests
type SettlementHandler struct {
	service service.Service
	log     *logrus.Logger
}

// NewSettlementHandler creates a new SettlementHandler instance
func NewSettlementHandler(svc service.Service, log *logrus.Logger) *SettlementHandler {
	return &SettlementHandler{
		service: svc,
		log:     log,
	}
}

// CreateSettlement handles settlement creation under a carrier
func (h *SettlementHandler) CreateSettlement(c *gin.Context) {
	carrierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid carrier ID",
		})
		return
	}

	var settlement models.Settlement
	if err := c.ShouldBindJSON(&settlement); err != nil {
		h.log.WithError(err).Warn("Invalid settlement format")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid settlement format",
		})
		return
	}
	settlement.CarrierID = carrierID

	actor := middleware.CurrentUser(c)
	if err := h.service.CreateSettlement(c.Request.Context(), actor, &settlement); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, settlement)
}

// GetSettlement handles settlement retrieval
func (h *SettlementHandler) GetSettlement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid settlement ID",
		})
		return
	}

	settlement, err := h.service.GetSettlement(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, settlement)
}

// ListSettlements handles listing all settlements
func (h *SettlementHandler) ListSettlements(c *gin.Context) {
	settlements, err := h.service.ListSettlements(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(settlements),
		"data":  settlements,
	})
}

// ListCarrierSettlements handles listing the settlements under a carrier
func (h *SettlementHandler) ListCarrierSettlements(c *gin.Context) {
	carrierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid carrier ID",
		})
		return
	}

	settlements, err := h.service.ListCarrierSettlements(c.Request.Context(), carrierID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(settlements),
		"data":  settlements,
	})
}

// UpdateSettlement handles settlement updates
func (h *SettlementHandler) UpdateSettlement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid settlement ID",
		})
		return
	}

	settlement, err := h.service.GetSettlement(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	carrierID := settlement.CarrierID
	userID := settlement.UserID
	if err := c.ShouldBindJSON(settlement); err != nil {
		h.log.WithError(err).Warn("Invalid settlement format")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid settlement format",
		})
		return
	}

	// The ID, owning carrier, and owner never change on update
	settlement.ID = id
	settlement.CarrierID = carrierID
	settlement.UserID = userID

	actor := middleware.CurrentUser(c)
	if err := h.service.UpdateSettlement(c.Request.Context(), actor, settlement); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, settlement)
}

// DeleteSettlement handles settlement removal with a full cascade
func (h *SettlementHandler) DeleteSettlement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid settlement ID",
		})
		return
	}

	actor := middleware.CurrentUser(c)
	if err := h.service.DeleteSettlement(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
