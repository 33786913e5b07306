package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"feed-mapper-service/internal/models"
	"feed-mapper-service/internal/repository"
	"feed-mapper-service/internal/services"
)

// OfferHandler handles offer translation endpoints
type OfferHandler struct {
	service *services.OfferService
	jobRepo *repository.JobRepository
}

// NewOfferHandler creates a new offer handler
func NewOfferHandler(service *services.OfferService, jobRepo *repository.JobRepository) *OfferHandler {
	return &OfferHandler{
		service: service,
		jobRepo: jobRepo,
	}
}

// ResolveOffersRequest represents a batch of offers to translate
type ResolveOffersRequest struct {
	FeedID uint           `json:"feedId" binding:"required"`
	Offers []models.Offer `json:"offers" binding:"required"`
}

// ResolveOffers translates a batch of offers without job bookkeeping
func (h *OfferHandler) ResolveOffers(c *gin.Context) {
	var req ResolveOffersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.service.ResolveOffers(c.Request.Context(), req.FeedID, req.Offers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ready := 0
	for _, result := range results {
		if result.Ready {
			ready++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     results,
		"total":    len(results),
		"ready":    ready,
		"rejected": len(results) - ready,
	})
}

// TranslateFeedRequest represents the request to run a translation job
type TranslateFeedRequest struct {
	MarketplaceID uint           `json:"marketplaceId" binding:"required"`
	Offers        []models.Offer `json:"offers" binding:"required"`
}

// TranslateFeed runs a translation job for a feed: one slot per feed,
// progress counters and a completion event
func (h *OfferHandler) TranslateFeed(c *gin.Context) {
	feedID, ok := parseUintParam(c, "feedId")
	if !ok {
		return
	}

	var req TranslateFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, results, err := h.service.RunTranslationJob(c.Request.Context(), feedID, req.MarketplaceID, req.Offers, models.TriggerManual)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "job": job})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job":  job,
		"data": results,
	})
}

// GetJob returns a single translation job
func (h *OfferHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	job, err := h.jobRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": job})
}

// ListJobs returns recent translation jobs for a feed
func (h *OfferHandler) ListJobs(c *gin.Context) {
	feedID, ok := parseUintParam(c, "feedId")
	if !ok {
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l > 0 {
			limit = l
		}
	}

	jobs, err := h.jobRepo.ListByFeed(c.Request.Context(), feedID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  jobs,
		"total": len(jobs),
	})
}
