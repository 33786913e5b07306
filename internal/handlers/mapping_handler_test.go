package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"feed-mapper-service/internal/models"
	"feed-mapper-service/internal/services"
)

// ============================================================================
// MOCKS
// ============================================================================

type MockMappingSource struct {
	mock.Mock
}

func (m *MockMappingSource) GetCategoryMapping(ctx context.Context, id uint) (*models.CategoryMapping, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CategoryMapping), args.Error(1)
}

func (m *MockMappingSource) GetAttributeMapping(ctx context.Context, id uint) (*models.AttributeMapping, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttributeMapping), args.Error(1)
}

func (m *MockMappingSource) ListAttributeMappings(ctx context.Context, categoryMappingID uint) ([]models.AttributeMapping, error) {
	args := m.Called(ctx, categoryMappingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AttributeMapping), args.Error(1)
}

func (m *MockMappingSource) ListAttributeMappingsByFeed(ctx context.Context, feedID uint) ([]models.AttributeMapping, error) {
	args := m.Called(ctx, feedID)
	return args.Get(0).([]models.AttributeMapping), args.Error(1)
}

func (m *MockMappingSource) ListValueMappingsForCategory(ctx context.Context, categoryMappingID uint) ([]models.ValueMapping, error) {
	args := m.Called(ctx, categoryMappingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ValueMapping), args.Error(1)
}

func (m *MockMappingSource) ListMappedFeedValueIDs(ctx context.Context, attributeMappingID uint) ([]uint, error) {
	args := m.Called(ctx, attributeMappingID)
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockMappingSource) CreateAttributeMapping(ctx context.Context, mapping *models.AttributeMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockMappingSource) CreateValueMapping(ctx context.Context, mapping *models.ValueMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockMappingSource) CreateValueMappings(ctx context.Context, mappings []models.ValueMapping) error {
	args := m.Called(ctx, mappings)
	return args.Error(0)
}

type MockFeedSource struct {
	mock.Mock
}

func (m *MockFeedSource) ListValues(ctx context.Context, attributeID uint) ([]models.FeedAttributeValue, error) {
	args := m.Called(ctx, attributeID)
	return args.Get(0).([]models.FeedAttributeValue), args.Error(1)
}

func (m *MockFeedSource) ListAttributesByName(ctx context.Context, categoryID uint, name string) ([]models.FeedAttribute, error) {
	args := m.Called(ctx, categoryID, name)
	return args.Get(0).([]models.FeedAttribute), args.Error(1)
}

type MockMarketSource struct {
	mock.Mock
}

func (m *MockMarketSource) ListDictionaryValues(ctx context.Context, attributeID uint) ([]models.MarketAttributeValue, error) {
	args := m.Called(ctx, attributeID)
	return args.Get(0).([]models.MarketAttributeValue), args.Error(1)
}

func (m *MockMarketSource) ListNameMappableAttributes(ctx context.Context, categoryID uint) ([]models.MarketAttribute, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]models.MarketAttribute), args.Error(1)
}

func (m *MockMarketSource) EnsureAttribute(ctx context.Context, attribute *models.MarketAttribute) error {
	args := m.Called(ctx, attribute)
	return args.Error(0)
}

// ============================================================================
// TESTS
// ============================================================================

func newMappingTestHandler(mappings *MockMappingSource, feeds *MockFeedSource, markets *MockMarketSource) *MappingHandler {
	logger := logrus.New()
	attrMaps := services.NewAttributeMapService(mappings, nil, logger)
	automap := services.NewAutomapService(mappings, feeds, markets, attrMaps, logger)
	return NewMappingHandler(attrMaps, automap, nil, logger)
}

func TestMappingHandler_GetAttributeMap(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mappings := new(MockMappingSource)
	mappings.On("GetCategoryMapping", mock.Anything, uint(5)).Return(&models.CategoryMapping{ID: 5}, nil)
	mappings.On("ListAttributeMappings", mock.Anything, uint(5)).Return([]models.AttributeMapping{}, nil)
	mappings.On("ListValueMappingsForCategory", mock.Anything, uint(5)).Return([]models.ValueMapping{}, nil)

	handler := newMappingTestHandler(mappings, new(MockFeedSource), new(MockMarketSource))
	router := gin.New()
	router.GET("/api/v1/mappings/categories/:id/attribute-map", handler.GetAttributeMap)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/mappings/categories/5/attribute-map", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "data")
}

func TestMappingHandler_GetAttributeMap_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := newMappingTestHandler(new(MockMappingSource), new(MockFeedSource), new(MockMarketSource))
	router := gin.New()
	router.GET("/api/v1/mappings/categories/:id/attribute-map", handler.GetAttributeMap)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/mappings/categories/abc/attribute-map", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid id")
}

func TestMappingHandler_GetAttributeMap_Error(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mappings := new(MockMappingSource)
	mappings.On("GetCategoryMapping", mock.Anything, uint(5)).Return(nil, assert.AnError)

	handler := newMappingTestHandler(mappings, new(MockFeedSource), new(MockMarketSource))
	router := gin.New()
	router.GET("/api/v1/mappings/categories/:id/attribute-map", handler.GetAttributeMap)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/mappings/categories/5/attribute-map", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMappingHandler_AutomapValues_NotOptedIn(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mappings := new(MockMappingSource)
	mappings.On("GetAttributeMapping", mock.Anything, uint(7)).Return(&models.AttributeMapping{
		ID:              7,
		MarketAttribute: &models.MarketAttribute{ID: 1, MapEqualValues: false},
	}, nil)

	handler := newMappingTestHandler(mappings, new(MockFeedSource), new(MockMarketSource))
	router := gin.New()
	router.POST("/api/v1/mappings/attributes/:id/automap-values", handler.AutomapValues)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/mappings/attributes/7/automap-values", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"created":0`)
}

func TestMappingHandler_AutomapValues_Error(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mappings := new(MockMappingSource)
	mappings.On("GetAttributeMapping", mock.Anything, uint(7)).Return(nil, assert.AnError)

	handler := newMappingTestHandler(mappings, new(MockFeedSource), new(MockMarketSource))
	router := gin.New()
	router.POST("/api/v1/mappings/attributes/:id/automap-values", handler.AutomapValues)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/mappings/attributes/7/automap-values", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMappingHandler_InvalidateAttributeMap(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := newMappingTestHandler(new(MockMappingSource), new(MockFeedSource), new(MockMarketSource))
	router := gin.New()
	router.DELETE("/api/v1/mappings/categories/:id/attribute-map", handler.InvalidateAttributeMap)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/mappings/categories/5/attribute-map", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "invalidated")
}
