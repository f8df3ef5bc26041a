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

// CarrierHandler handles carrier-related requests
type CarrierHandler struct {
	service service.Service
	log     *logrus.Logger
}

// NewCarrierHandler creates a new CarrierHandler instance
func NewCarrierHandler(svc service.Service, log *logrus.Logger) *CarrierHandler {
	return &CarrierHandler{
		service: svc,
		log:     log,
	}
}

// CreateCarrier handles carrier creation
func (h *CarrierHandler) CreateCarrier(c *gin.Context) {
	var carrier models.Carrier
	if err := c.ShouldBindJSON(&carrier); err != nil {
		h.log.WithError(err).Warn("Invalid carrier format")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid carrier format",
		})
		return
	}

	actor := middleware.CurrentUser(c)
	if err := h.service.CreateCarrier(c.Request.Context(), actor, &carrier); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, carrier)
}

// GetCarrier handles carrier retrieval
func (h *CarrierHandler) GetCarrier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid carrier ID",
		})
		return
	}

	carrier, err := h.service.GetCarrier(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, carrier)
}

// ListCarriers handles listing all carriers
func (h *CarrierHandler) ListCarriers(c *gin.Context) {
	carriers, err := h.service.ListCarriers(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(carriers),
		"data":  carriers,
	})
}

// UpdateCarrier handles carrier updates
func (h *CarrierHandler) UpdateCarrier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid carrier ID",
		})
		return
	}

	carrier, err := h.service.GetCarrier(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	userID := carrier.UserID
	if err := c.ShouldBindJSON(carrier); err != nil {
		h.log.WithError(err).Warn("Invalid carrier format")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid carrier format",
		})
		return
	}

	// The ID and owner never change on update
	carrier.ID = id
	carrier.UserID = userID

	actor := middleware.CurrentUser(c)
	if err := h.service.UpdateCarrier(c.Request.Context(), actor, carrier); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, carrier)
}

// DeleteCarrier handles carrier removal with a full cascade
func (h *CarrierHandler) DeleteCarrier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid carrier ID",
		})
		return
	}

	actor := middleware.CurrentUser(c)
	if err := h.service.DeleteCarrier(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
