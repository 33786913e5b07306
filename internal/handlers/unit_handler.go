package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"feed-mapper-service/internal/models"
	"feed-mapper-service/internal/repository"
	"feed-mapper-service/internal/services"
)

// UnitHandler handles unit conversion endpoints
type UnitHandler struct {
	service  *services.UnitIndexService
	unitRepo *repository.UnitRepository
}

// NewUnitHandler creates a new unit handler
func NewUnitHandler(service *services.UnitIndexService, unitRepo *repository.UnitRepository) *UnitHandler {
	return &UnitHandler{
		service:  service,
		unitRepo: unitRepo,
	}
}

// GetIndex returns the full unit conversion index, reciprocals included
func (h *UnitHandler) GetIndex(c *gin.Context) {
	index, err := h.service.GetIndex(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  index.Entries(),
		"total": index.Len(),
	})
}

// UpsertConversionRequest represents the request to store a unit conversion
type UpsertConversionRequest struct {
	FromUnitID uint    `json:"fromUnitId" binding:"required"`
	ToUnitID   uint    `json:"toUnitId" binding:"required"`
	Factor     float64 `json:"factor" binding:"required"`
}

// UpsertConversion creates or updates a unit conversion factor
func (h *UnitHandler) UpsertConversion(c *gin.Context) {
	var req UpsertConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conversion := &models.UnitConversion{
		FromUnitID: req.FromUnitID,
		ToUnitID:   req.ToUnitID,
		Factor:     req.Factor,
	}
	if err := h.unitRepo.UpsertConversion(c.Request.Context(), conversion); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": conversion})
}
