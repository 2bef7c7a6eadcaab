package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mytheresa/go-bulk-cart/models"
)

// --- Mock Repo ---

type MockProductRepo struct {
	SourceProducts []models.Product
	Err            error

	// Fields to capture call arguments
	lastCalledOffset  int
	lastCalledLimit   int
	lastCalledFilters models.ProductFilters
	lastCalledID      uint
}

func (m *MockProductRepo) GetFilteredProducts(offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error) {
	m.lastCalledOffset = offset
	m.lastCalledLimit = limit
	m.lastCalledFilters = filters

	if m.Err != nil {
		return nil, 0, m.Err
	}

	// Simulate filtering
	var filteredProducts []models.Product
	for _, p := range m.SourceProducts {
		match := true
		if filters.CategoryCode != "" && p.Category.Code != filters.CategoryCode {
			match = false
		}
		if filters.Status != "" && p.Status != filters.Status {
			match = false
		}
		if filters.PriceLessThan != nil && p.BasePrice.InexactFloat64() >= *filters.PriceLessThan {
			match = false
		}

		if match {
			filteredProducts = append(filteredProducts, p)
		}
	}

	total := int64(len(filteredProducts))

	// Simulate pagination
	start := offset
	if start > len(filteredProducts) {
		start = len(filteredProducts)
	}
	end := offset + limit
	if end > len(filteredProducts) {
		end = len(filteredProducts)
	}

	return filteredProducts[start:end], total, nil
}

func (m *MockProductRepo) GetByID(id uint) (*models.Product, error) {
	m.lastCalledID = id

	if m.Err != nil {
		return nil, m.Err
	}

	for _, p := range m.SourceProducts {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, models.ErrProductNotFound
}

// --- Helpers ---

func newTestProduct(id uint, code, categoryCode string, price float64, stock int, status models.ProductStatus) models.Product {
	return models.Product{
		ID:        id,
		Code:      code,
		Name:      code + " name",
		BasePrice: decimal.NewFromFloat(price),
		Stock:     stock,
		Status:    status,
		Category: models.Category{
			Code: categoryCode,
			Name: categoryCode + " category",
		},
	}
}

// --- Tests ---

func TestHandleGet(t *testing.T) {
	allMockProducts := []models.Product{
		newTestProduct(1, "PROD001", "shirts", 19.99, 120, models.StatusActive),
		newTestProduct(2, "PROD002", "caps", 24.99, 4, models.StatusActive),
		newTestProduct(3, "PROD003", "bags", 10.00, 0, models.StatusPending),
		newTestProduct(4, "PROD004", "caps", 95.50, 30, models.StatusInactive),
	}

	testCases := []struct {
		name               string
		url                string
		mockRepoSetup      func() *MockProductRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCalls     func(t *testing.T, repo *MockProductRepo)
	}{
		{
			name: "Success with default pagination",
			url:  "/catalog",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, 4, resp.Total)
				assert.Len(t, resp.Products, 4)
				assert.Equal(t, "PROD001", resp.Products[0].Code)
				assert.Equal(t, 19.99, resp.Products[0].BasePrice)
				assert.Equal(t, "in_stock", resp.Products[0].StockLevel)
				assert.Equal(t, "low_stock", resp.Products[1].StockLevel)
				assert.Equal(t, "out_of_stock", resp.Products[2].StockLevel)
				assert.Equal(t, "pending", resp.Products[2].Status)
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, 0, repo.lastCalledOffset, "Expected default offset 0")
				assert.Equal(t, 10, repo.lastCalledLimit, "Expected default limit 10")
				assert.Empty(t, repo.lastCalledFilters.CategoryCode)
				assert.Empty(t, repo.lastCalledFilters.Status)
				assert.Nil(t, repo.lastCalledFilters.PriceLessThan)
			},
		},
		{
			name: "Success with custom pagination",
			url:  "/catalog?offset=1&limit=2",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, 4, resp.Total)
				assert.Len(t, resp.Products, 2)
				assert.Equal(t, "PROD002", resp.Products[0].Code)
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, 1, repo.lastCalledOffset)
				assert.Equal(t, 2, repo.lastCalledLimit)
			},
		},
		{
			name: "Pagination with out-of-bounds values",
			url:  "/catalog?offset=-10&limit=200",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, 0, repo.lastCalledOffset, "Offset should be clamped to 0")
				assert.Equal(t, 100, repo.lastCalledLimit, "Limit should be clamped to 100")
			},
		},
		{
			name: "Pagination with lower bound limit",
			url:  "/catalog?limit=0",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, 1, repo.lastCalledLimit, "Limit should be clamped to 1")
			},
		},
		{
			name: "Filter by status",
			url:  "/catalog?status=active",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, 2, resp.Total)
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, models.StatusActive, repo.lastCalledFilters.Status)
			},
		},
		{
			name: "Combined filters",
			url:  "/catalog?category=caps&price_lt=30",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, 1, resp.Total)
				assert.Len(t, resp.Products, 1)
				assert.Equal(t, "PROD002", resp.Products[0].Code)
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, "caps", repo.lastCalledFilters.CategoryCode)
				assert.NotNil(t, repo.lastCalledFilters.PriceLessThan)
				assert.Equal(t, 30.0, *repo.lastCalledFilters.PriceLessThan)
			},
		},
		{
			name: "Invalid price filter is ignored",
			url:  "/catalog?price_lt=cheap",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.Nil(t, repo.lastCalledFilters.PriceLessThan)
			},
		},
		{
			name: "Repository error",
			url:  "/catalog",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{Err: errors.New("db connection lost")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "db connection lost", errResp["error"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewCatalogHandler(mockRepo)
			req := httptest.NewRequest("GET", tc.url, nil)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGet(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)

			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}

			if tc.checkRepoCalls != nil {
				tc.checkRepoCalls(t, mockRepo)
			}
		})
	}
}
