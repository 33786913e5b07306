package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"feed-mapper-service/internal/clients"
	"feed-mapper-service/internal/models"
)

// ImportHandler forwards built offers to the marketplace item-import API
type ImportHandler struct {
	client clients.ItemImportClient
}

// NewImportHandler creates a new import handler
func NewImportHandler(client clients.ItemImportClient) *ImportHandler {
	return &ImportHandler{client: client}
}

// SubmitOffers submits ready offers for import
func (h *ImportHandler) SubmitOffers(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "import API is not configured"})
		return
	}

	var offers []models.BuiltOffer
	if err := c.ShouldBindJSON(&offers); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ready := make([]models.BuiltOffer, 0, len(offers))
	for _, offer := range offers {
		if offer.Ready {
			ready = append(ready, offer)
		}
	}
	if len(ready) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no ready offers to submit"})
		return
	}

	result, err := h.client.SubmitItems(c.Request.Context(), ready)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"data": result, "skipped": len(offers) - len(ready)})
}

// GetImportStatus returns the state of a submitted import task
func (h *ImportHandler) GetImportStatus(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "import API is not configured"})
		return
	}

	status, err := h.client.GetImportStatus(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": status})
}
