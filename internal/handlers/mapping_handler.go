package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"feed-mapper-service/internal/events"
	"feed-mapper-service/internal/services"
)

// MappingHandler handles attribute-map and auto-mapping endpoints
type MappingHandler struct {
	attrMaps  *services.AttributeMapService
	automap   *services.AutomapService
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewMappingHandler creates a new mapping handler
func NewMappingHandler(attrMaps *services.AttributeMapService, automap *services.AutomapService, publisher *events.Publisher, logger *logrus.Logger) *MappingHandler {
	return &MappingHandler{
		attrMaps:  attrMaps,
		automap:   automap,
		publisher: publisher,
		logger:    logger.WithField("component", "mapping_handler"),
	}
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(value), true
}

// GetAttributeMap returns the resolved attribute map for a category mapping
func (h *MappingHandler) GetAttributeMap(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	attributeMap, err := h.attrMaps.GetAttributeMap(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": attributeMap})
}

// InvalidateAttributeMap drops the cached attribute map for a category mapping
func (h *MappingHandler) InvalidateAttributeMap(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	h.attrMaps.Invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"message": "attribute map invalidated"})
}

// AutomapValues maps equal feed and market values for one attribute mapping
func (h *MappingHandler) AutomapValues(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	created, err := h.automap.MapEqualValues(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if created > 0 && h.publisher != nil {
		if err := h.publisher.PublishValueMappingsCreated(c.Request.Context(), 0, id, created); err != nil {
			h.logger.WithError(err).Warn("value mappings event publish failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{"created": created})
}

// AutomapFeedValues maps equal values across every eligible mapping of a feed
func (h *MappingHandler) AutomapFeedValues(c *gin.Context) {
	feedID, ok := parseUintParam(c, "feedId")
	if !ok {
		return
	}

	created, err := h.automap.MapEqualValuesForFeed(c.Request.Context(), feedID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if created > 0 && h.publisher != nil {
		if err := h.publisher.PublishValueMappingsCreated(c.Request.Context(), feedID, 0, created); err != nil {
			h.logger.WithError(err).Warn("value mappings event publish failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{"created": created})
}

// AutomapAttributes creates attribute mappings by feed attribute name for a
// category mapping, then maps equal values on each new mapping
func (h *MappingHandler) AutomapAttributes(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	created, err := h.automap.MapAttributesByName(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if created > 0 && h.publisher != nil {
		if err := h.publisher.PublishAttributeMappingsCreated(c.Request.Context(), id, created); err != nil {
			h.logger.WithError(err).Warn("attribute mappings event publish failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{"created": created})
}
