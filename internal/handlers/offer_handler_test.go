package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"feed-mapper-service/internal/models"
	"feed-mapper-service/internal/services"
)

type MockOfferMappings struct {
	mock.Mock
}

func (m *MockOfferMappings) GetCategoryMapping(ctx context.Context, id uint) (*models.CategoryMapping, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CategoryMapping), args.Error(1)
}

func (m *MockOfferMappings) ListCategoryMappingsByFeed(ctx context.Context, feedID uint) ([]models.CategoryMapping, error) {
	args := m.Called(ctx, feedID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CategoryMapping), args.Error(1)
}

func (m *MockOfferMappings) UpsertSyncState(ctx context.Context, state *models.MappingSyncState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

type MockOfferMarkets struct {
	mock.Mock
}

func (m *MockOfferMarkets) ListAttributes(ctx context.Context, categoryID uint) ([]models.MarketAttribute, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]models.MarketAttribute), args.Error(1)
}

func (m *MockOfferMarkets) ListDictionaryValues(ctx context.Context, attributeID uint) ([]models.MarketAttributeValue, error) {
	args := m.Called(ctx, attributeID)
	return args.Get(0).([]models.MarketAttributeValue), args.Error(1)
}

type MockOfferAttrMaps struct {
	mock.Mock
}

func (m *MockOfferAttrMaps) GetAttributeMap(ctx context.Context, categoryMappingID uint) (services.AttributeMap, error) {
	args := m.Called(ctx, categoryMappingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(services.AttributeMap), args.Error(1)
}

type MockOfferUnits struct {
	mock.Mock
}

func (m *MockOfferUnits) GetIndex(ctx context.Context) (*services.UnitIndex, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.UnitIndex), args.Error(1)
}

type MockOfferJobs struct {
	mock.Mock
}

func (m *MockOfferJobs) Create(ctx context.Context, job *models.TranslationJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockOfferJobs) MarkStarted(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOfferJobs) MarkCompleted(ctx context.Context, id uuid.UUID, progress *models.JobProgress) error {
	args := m.Called(ctx, id, progress)
	return args.Error(0)
}

func (m *MockOfferJobs) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}

func newOfferTestHandler(mappings *MockOfferMappings, markets *MockOfferMarkets, attrMaps *MockOfferAttrMaps, units *MockOfferUnits) *OfferHandler {
	service := services.NewOfferService(mappings, markets, attrMaps, units, new(MockOfferJobs), nil, nil, logrus.New())
	return NewOfferHandler(service, nil)
}

func TestOfferHandler_ResolveOffers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mappings := new(MockOfferMappings)
	markets := new(MockOfferMarkets)
	attrMaps := new(MockOfferAttrMaps)
	units := new(MockOfferUnits)

	categoryMapping := models.CategoryMapping{
		ID:               5,
		FeedCategoryID:   30,
		MarketCategoryID: 40,
		FeedCategory:     &models.FeedCategory{ID: 30, SourceID: "101"},
		MarketCategory:   &models.MarketCategory{ID: 40, SourceID: "17027904", Leaf: true},
	}
	mappings.On("ListCategoryMappingsByFeed", mock.Anything, uint(3)).Return([]models.CategoryMapping{categoryMapping}, nil)
	mappings.On("GetCategoryMapping", mock.Anything, uint(5)).Return(&categoryMapping, nil)
	attrMaps.On("GetAttributeMap", mock.Anything, uint(5)).Return(services.AttributeMap{}, nil)
	units.On("GetIndex", mock.Anything).Return(services.BuildUnitIndex(nil), nil)
	markets.On("ListAttributes", mock.Anything, uint(40)).Return([]models.MarketAttribute{}, nil)

	handler := newOfferTestHandler(mappings, markets, attrMaps, units)
	router := gin.New()
	router.POST("/api/v1/offers/resolve", handler.ResolveOffers)

	body, _ := json.Marshal(ResolveOffersRequest{
		FeedID: 3,
		Offers: []models.Offer{
			{
				OfferID:    "SKU-1",
				CategoryID: "101",
				Name:       "Phone X",
				Dimensions: "10/20/30",
				Weight:     "1",
				Price:      "4990",
				Pictures:   []string{"https://cdn/a.jpg"},
			},
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/resolve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total    int `json:"total"`
		Ready    int `json:"ready"`
		Rejected int `json:"rejected"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 1, resp.Ready)
	assert.Equal(t, 0, resp.Rejected)
}

func TestOfferHandler_ResolveOffers_BadRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := newOfferTestHandler(new(MockOfferMappings), new(MockOfferMarkets), new(MockOfferAttrMaps), new(MockOfferUnits))
	router := gin.New()
	router.POST("/api/v1/offers/resolve", handler.ResolveOffers)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/resolve", bytes.NewReader([]byte(`{"offers":[]}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOfferHandler_ResolveOffers_ServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mappings := new(MockOfferMappings)
	mappings.On("ListCategoryMappingsByFeed", mock.Anything, uint(3)).Return(nil, assert.AnError)

	handler := newOfferTestHandler(mappings, new(MockOfferMarkets), new(MockOfferAttrMaps), new(MockOfferUnits))
	router := gin.New()
	router.POST("/api/v1/offers/resolve", handler.ResolveOffers)

	body, _ := json.Marshal(ResolveOffersRequest{FeedID: 3, Offers: []models.Offer{{OfferID: "SKU-1"}}})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/resolve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
