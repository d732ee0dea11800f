package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	shoperrors "github.com/rmehra/sweetshop/internal/errors"
	"github.com/rmehra/sweetshop/internal/service"
	"github.com/rmehra/sweetshop/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSweetService is a mock implementation of the SweetService interface
type mockSweetService struct {
	sweet    *service.SweetDto
	sweets   []service.SweetDto
	purchase *service.PurchaseDto
	restock  *service.RestockDto
	stats    *service.StatsDto
	error    error

	gotCriteria  *store.Criteria
	gotField     store.SortField
	gotThreshold int64
}

func (m *mockSweetService) Add(_ context.Context, _ service.SweetCreateDto) (*service.SweetDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.sweet, nil
}

func (m *mockSweetService) AddWithUnits(_ context.Context, _ service.SweetUnitsCreateDto) (*service.SweetDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.sweet, nil
}

func (m *mockSweetService) FindAll(_ context.Context) ([]service.SweetDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.sweets, nil
}

func (m *mockSweetService) FindByID(_ context.Context, _ int64) (*service.SweetDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.sweet, nil
}

func (m *mockSweetService) Update(_ context.Context, _ int64, _ service.SweetUpdateDto) (*service.SweetDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.sweet, nil
}

func (m *mockSweetService) DeleteByID(_ context.Context, _ int64) error {
	return m.error
}

func (m *mockSweetService) Search(_ context.Context, criteria store.Criteria) ([]service.SweetDto, error) {
	m.gotCriteria = &criteria
	if m.error != nil {
		return nil, m.error
	}
	return m.sweets, nil
}

func (m *mockSweetService) SortBy(_ context.Context, field store.SortField) ([]service.SweetDto, error) {
	m.gotField = field
	if m.error != nil {
		return nil, m.error
	}
	return m.sweets, nil
}

func (m *mockSweetService) Purchase(_ context.Context, _, _ int64) (*service.PurchaseDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.purchase, nil
}

func (m *mockSweetService) Restock(_ context.Context, _, _ int64) (*service.RestockDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.restock, nil
}

func (m *mockSweetService) LowStock(_ context.Context, threshold int64) ([]service.SweetDto, error) {
	m.gotThreshold = threshold
	if m.error != nil {
		return nil, m.error
	}
	return m.sweets, nil
}

func (m *mockSweetService) ByCategory(_ context.Context, _ string) ([]service.SweetDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.sweets, nil
}

func (m *mockSweetService) Stats(_ context.Context) (*service.StatsDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.stats, nil
}

func newTestRouter(svc service.SweetService) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := chi.NewRouter()
	NewHandler(svc, logger).RegisterRoutes(mux)
	return mux
}

func doRequest(t *testing.T, mux *chi.Mux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func sampleDto() *service.SweetDto {
	return &service.SweetDto{
		ID:             1001,
		Name:           "Kaju Katli",
		Category:       "Nut-Based",
		Price:          50,
		Quantity:       20,
		FormattedPrice: "₹50.00",
		InStock:        true,
		TotalValue:     1000,
	}
}

func Test_Handler_Create(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  *mockSweetService
		body         string
		expectedCode int
	}{
		{
			name:         "Success - created",
			mockService:  &mockSweetService{sweet: sampleDto()},
			body:         `{"id":1001,"name":"Kaju Katli","category":"Nut-Based","price":50,"quantity":20}`,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Success - zero price passes required check",
			mockService:  &mockSweetService{sweet: sampleDto()},
			body:         `{"id":1001,"name":"Free Sample","category":"Promo","price":0,"quantity":5}`,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Error - missing fields",
			mockService:  &mockSweetService{},
			body:         `{"id":1001,"name":"Kaju Katli"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - malformed body",
			mockService:  &mockSweetService{},
			body:         `{"id":`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - entity validation failed",
			mockService:  &mockSweetService{error: shoperrors.ErrValidation},
			body:         `{"id":1001,"name":"Kaju Katli","category":"Nut-Based","price":50,"quantity":20}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - duplicate ID",
			mockService:  &mockSweetService{error: shoperrors.ErrDuplicateID},
			body:         `{"id":1001,"name":"Kaju Katli","category":"Nut-Based","price":50,"quantity":20}`,
			expectedCode: http.StatusConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux := newTestRouter(tc.mockService)
			// when
			rec := doRequest(t, mux, http.MethodPost, "/api/v1/sweets", tc.body)
			// then
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}

func Test_Handler_Create_MissingFieldsListed(t *testing.T) {
	mux := newTestRouter(&mockSweetService{})

	rec := doRequest(t, mux, http.MethodPost, "/api/v1/sweets", `{"name":"Kaju Katli"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		ValidationErrors map[string]string `json:"validation_errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.ValidationErrors, "ID")
	assert.Contains(t, body.ValidationErrors, "Category")
	assert.Contains(t, body.ValidationErrors, "Price")
	assert.Contains(t, body.ValidationErrors, "Quantity")
	assert.NotContains(t, body.ValidationErrors, "Name")
}

func Test_Handler_CreateWithUnits(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  *mockSweetService
		body         string
		expectedCode int
	}{
		{
			name:         "Success - preset quantity",
			mockService:  &mockSweetService{sweet: sampleDto()},
			body:         `{"id":1001,"name":"Kaju Katli","category":"Nut-Based","price":50,"quantity":"stockLimit","quantityUnit":"kg"}`,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Error - invalid unit",
			mockService:  &mockSweetService{error: shoperrors.ErrInvalidUnit},
			body:         `{"id":1001,"name":"Kaju Katli","category":"Nut-Based","price":50,"quantity":10,"quantityUnit":"tonne"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - unresolvable preset",
			mockService:  &mockSweetService{error: shoperrors.ErrInvalidAmount},
			body:         `{"id":1001,"name":"Kaju Katli","category":"Nut-Based","price":50,"quantity":"plenty","quantityUnit":"kg"}`,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestRouter(tc.mockService)
			rec := doRequest(t, mux, http.MethodPost, "/api/v1/sweets/units", tc.body)
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}

func Test_Handler_FindByID(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  *mockSweetService
		path         string
		expectedCode int
	}{
		{
			name:         "Success - sweet found",
			mockService:  &mockSweetService{sweet: sampleDto()},
			path:         "/api/v1/sweets/1001",
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - not found",
			mockService:  &mockSweetService{error: shoperrors.ErrSweetNotFound},
			path:         "/api/v1/sweets/9999",
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Error - non-numeric ID",
			mockService:  &mockSweetService{},
			path:         "/api/v1/sweets/abc",
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestRouter(tc.mockService)
			rec := doRequest(t, mux, http.MethodGet, tc.path, "")
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}

func Test_Handler_FindByID_Body(t *testing.T) {
	mux := newTestRouter(&mockSweetService{sweet: sampleDto()})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/sweets/1001", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var dto service.SweetDto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, int64(1001), dto.ID)
	assert.Equal(t, "₹50.00", dto.FormattedPrice)
	assert.True(t, dto.InStock)
	assert.Equal(t, float64(1000), dto.TotalValue)
}

func Test_Handler_Update(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  *mockSweetService
		body         string
		expectedCode int
	}{
		{
			name:         "Success - updated",
			mockService:  &mockSweetService{sweet: sampleDto()},
			body:         `{"price":55}`,
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - not found",
			mockService:  &mockSweetService{error: shoperrors.ErrSweetNotFound},
			body:         `{"price":55}`,
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Error - merge fails validation",
			mockService:  &mockSweetService{error: shoperrors.ErrValidation},
			body:         `{"price":-10}`,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestRouter(tc.mockService)
			rec := doRequest(t, mux, http.MethodPut, "/api/v1/sweets/1001", tc.body)
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}

func Test_Handler_DeleteByID(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  *mockSweetService
		expectedCode int
	}{
		{
			name:         "Success - deleted",
			mockService:  &mockSweetService{},
			expectedCode: http.StatusNoContent,
		},
		{
			name:         "Error - not found",
			mockService:  &mockSweetService{error: shoperrors.ErrSweetNotFound},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestRouter(tc.mockService)
			rec := doRequest(t, mux, http.MethodDelete, "/api/v1/sweets/1001", "")
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}

func Test_Handler_Search_ParsesCriteria(t *testing.T) {
	// given
	mockService := &mockSweetService{sweets: []service.SweetDto{}}
	mux := newTestRouter(mockService)

	// when
	rec := doRequest(t, mux, http.MethodGet, "/api/v1/sweets/search?name=katli&category=Nut-Based&minPrice=20&maxPrice=40", "")

	// then
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, mockService.gotCriteria)
	require.NotNil(t, mockService.gotCriteria.Name)
	assert.Equal(t, "katli", *mockService.gotCriteria.Name)
	require.NotNil(t, mockService.gotCriteria.Category)
	assert.Equal(t, "Nut-Based", *mockService.gotCriteria.Category)
	require.NotNil(t, mockService.gotCriteria.MinPrice)
	assert.Equal(t, 20.0, *mockService.gotCriteria.MinPrice)
	require.NotNil(t, mockService.gotCriteria.MaxPrice)
	assert.Equal(t, 40.0, *mockService.gotCriteria.MaxPrice)
}

func Test_Handler_Search_OmittedCriteriaAreNil(t *testing.T) {
	mockService := &mockSweetService{sweets: []service.SweetDto{}}
	mux := newTestRouter(mockService)

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/sweets/search", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, mockService.gotCriteria)
	assert.Nil(t, mockService.gotCriteria.Name)
	assert.Nil(t, mockService.gotCriteria.Category)
	assert.Nil(t, mockService.gotCriteria.MinPrice)
	assert.Nil(t, mockService.gotCriteria.MaxPrice)
}

func Test_Handler_Search_InvalidPrice(t *testing.T) {
	mux := newTestRouter(&mockSweetService{})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/sweets/search?minPrice=cheap", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_Handler_Sort(t *testing.T) {
	testCases := []struct {
		name          string
		query         string
		expectedCode  int
		expectedField store.SortField
	}{
		{name: "default is name", query: "", expectedCode: http.StatusOK, expectedField: store.SortByName},
		{name: "by price", query: "?by=price", expectedCode: http.StatusOK, expectedField: store.SortByPrice},
		{name: "by quantity", query: "?by=quantity", expectedCode: http.StatusOK, expectedField: store.SortByQuantity},
		{name: "invalid field rejected", query: "?by=weight", expectedCode: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &mockSweetService{sweets: []service.SweetDto{}}
			mux := newTestRouter(mockService)

			rec := doRequest(t, mux, http.MethodGet, "/api/v1/sweets/sort"+tc.query, "")

			assert.Equal(t, tc.expectedCode, rec.Code)
			if tc.expectedCode == http.StatusOK {
				assert.Equal(t, tc.expectedField, mockService.gotField)
			}
		})
	}
}

func Test_Handler_Purchase(t *testing.T) {
	successResult := &service.PurchaseDto{
		Sweet:             *sampleDto(),
		QuantityPurchased: 5,
		TotalCost:         250,
		RemainingQuantity: 15,
	}
	testCases := []struct {
		name         string
		mockService  *mockSweetService
		body         string
		expectedCode int
	}{
		{
			name:         "Success - purchase completed",
			mockService:  &mockSweetService{purchase: successResult},
			body:         `{"quantity":5}`,
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - zero quantity",
			mockService:  &mockSweetService{},
			body:         `{"quantity":0}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - negative quantity",
			mockService:  &mockSweetService{},
			body:         `{"quantity":-2}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - missing quantity",
			mockService:  &mockSweetService{},
			body:         `{}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - insufficient stock",
			mockService:  &mockSweetService{error: shoperrors.ErrInsufficientStock},
			body:         `{"quantity":999}`,
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - not found",
			mockService:  &mockSweetService{error: shoperrors.ErrSweetNotFound},
			body:         `{"quantity":5}`,
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestRouter(tc.mockService)
			rec := doRequest(t, mux, http.MethodPost, "/api/v1/sweets/1001/purchase", tc.body)
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}

func Test_Handler_Purchase_Body(t *testing.T) {
	mux := newTestRouter(&mockSweetService{purchase: &service.PurchaseDto{
		Sweet:             *sampleDto(),
		QuantityPurchased: 5,
		TotalCost:         250,
		RemainingQuantity: 15,
	}})

	rec := doRequest(t, mux, http.MethodPost, "/api/v1/sweets/1001/purchase", `{"quantity":5}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var dto service.PurchaseDto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, int64(5), dto.QuantityPurchased)
	assert.Equal(t, float64(250), dto.TotalCost)
	assert.Equal(t, int64(15), dto.RemainingQuantity)
	assert.Equal(t, int64(1001), dto.Sweet.ID)
}

func Test_Handler_Restock(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  *mockSweetService
		body         string
		expectedCode int
	}{
		{
			name: "Success - restock completed",
			mockService: &mockSweetService{restock: &service.RestockDto{
				Sweet:         *sampleDto(),
				QuantityAdded: 10,
				NewQuantity:   30,
			}},
			body:         `{"quantity":10}`,
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - non-positive quantity",
			mockService:  &mockSweetService{},
			body:         `{"quantity":0}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - not found",
			mockService:  &mockSweetService{error: shoperrors.ErrSweetNotFound},
			body:         `{"quantity":10}`,
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestRouter(tc.mockService)
			rec := doRequest(t, mux, http.MethodPost, "/api/v1/sweets/1001/restock", tc.body)
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}

func Test_Handler_LowStock(t *testing.T) {
	testCases := []struct {
		name              string
		query             string
		expectedCode      int
		expectedThreshold int64
	}{
		{name: "default threshold", query: "", expectedCode: http.StatusOK, expectedThreshold: 5},
		{name: "explicit threshold", query: "?threshold=10", expectedCode: http.StatusOK, expectedThreshold: 10},
		{name: "negative threshold rejected", query: "?threshold=-1", expectedCode: http.StatusBadRequest},
		{name: "non-numeric threshold rejected", query: "?threshold=few", expectedCode: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &mockSweetService{sweets: []service.SweetDto{}}
			mux := newTestRouter(mockService)

			rec := doRequest(t, mux, http.MethodGet, "/api/v1/sweets/low-stock"+tc.query, "")

			assert.Equal(t, tc.expectedCode, rec.Code)
			if tc.expectedCode == http.StatusOK {
				assert.Equal(t, tc.expectedThreshold, mockService.gotThreshold)
			}
		})
	}
}

func Test_Handler_Stats(t *testing.T) {
	mux := newTestRouter(&mockSweetService{stats: &service.StatsDto{
		TotalSweets:         2,
		TotalInventoryValue: 1500,
		LowStockCount:       1,
		Categories: []service.CategoryStatsDto{
			{Category: "Nut-Based", Count: 1, TotalValue: 1000},
			{Category: "Milk-Based", Count: 1, TotalValue: 500},
		},
		AveragePrice: 30,
	}})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/sweets/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var dto service.StatsDto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, 2, dto.TotalSweets)
	assert.Equal(t, float64(1500), dto.TotalInventoryValue)
	require.Len(t, dto.Categories, 2)
	assert.Equal(t, "Nut-Based", dto.Categories[0].Category)
}

func Test_Handler_ByCategory(t *testing.T) {
	mux := newTestRouter(&mockSweetService{sweets: []service.SweetDto{*sampleDto()}})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/sweets/category/Nut-Based", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var list []service.SweetDto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Nut-Based", list[0].Category)
}

func Test_Handler_HealthCheck(t *testing.T) {
	mux := newTestRouter(&mockSweetService{})

	rec := doRequest(t, mux, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}
