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

// LineItemHandler handles requests for the settlement-scoped child
// collections. One handler serves all seven kinds; the routes bind each
// method to a kind.
type LineItemHandler struct {
	service service.Service
	log     *logrus.Logger
}

// NewLineItemHandler creates a new LineItemHandler instance
func NewLineItemHandler(svc service.Service, log *logrus.Logger) *LineItemHandler {
	return &LineItemHandler{
		service: svc,
		log:     log,
	}
}

// Create handles line-item creation under a settlement
func (h *LineItemHandler) Create(kind models.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		settlementID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid settlement ID",
			})
			return
		}

		item := models.NewLineItem(kind)
		if err := c.ShouldBindJSON(item); err != nil {
			h.log.WithError(err).Warnf("Invalid %s format", kind)
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request format",
			})
			return
		}

		actor := middleware.CurrentUser(c)
		if err := h.service.CreateLineItem(c.Request.Context(), actor, settlementID, item); err != nil {
			respondError(c, h.log, err)
			return
		}

		c.JSON(http.StatusCreated, item)
	}
}

// Get handles line-item retrieval
func (h *LineItemHandler) Get(kind models.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid ID",
			})
			return
		}

		item, err := h.service.GetLineItem(c.Request.Context(), kind, id)
		if err != nil {
			respondError(c, h.log, err)
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

// List handles listing a kind's line items under a settlement
func (h *LineItemHandler) List(kind models.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		settlementID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid settlement ID",
			})
			return
		}

		items, err := h.service.ListSettlementLineItems(c.Request.Context(), kind, settlementID)
		if err != nil {
			respondError(c, h.log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"count": len(items),
			"data":  items,
		})
	}
}

// Update handles line-item updates
func (h *LineItemHandler) Update(kind models.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid ID",
			})
			return
		}

		item, err := h.service.GetLineItem(c.Request.Context(), kind, id)
		if err != nil {
			respondError(c, h.log, err)
			return
		}

		settlementID := item.GetSettlementID()
		userID := item.GetUserID()

		if err := c.ShouldBindJSON(item); err != nil {
			h.log.WithError(err).Warnf("Invalid %s format", kind)
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request format",
			})
			return
		}

		// The parent and author never change on update
		item.SetSettlementID(settlementID)
		item.SetUserID(userID)

		actor := middleware.CurrentUser(c)
		if err := h.service.UpdateLineItem(c.Request.Context(), actor, item); err != nil {
			respondError(c, h.log, err)
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

// Delete handles line-item removal
func (h *LineItemHandler) Delete(kind models.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid ID",
			})
			return
		}

		actor := middleware.CurrentUser(c)
		if err := h.service.DeleteLineItem(c.Request.Context(), actor, kind, id); err != nil {
			respondError(c, h.log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}
