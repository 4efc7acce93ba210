package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perrors "github.com/abgdnv/techstore/internal/product/errors"
	"github.com/abgdnv/techstore/internal/product/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductService is a mock implementation of the ProductService interface
type mockProductService struct {
	product  *service.ProductDto
	products []service.ProductDto
	err      error

	calls     int
	lastID    int64
	lastInput service.ProductInput
}

func (m *mockProductService) FindByID(_ context.Context, id int64) (*service.ProductDto, error) {
	m.calls++
	m.lastID = id
	return m.product, m.err
}

func (m *mockProductService) FindAll(_ context.Context) ([]service.ProductDto, error) {
	m.calls++
	return m.products, m.err
}

func (m *mockProductService) Create(_ context.Context, input service.ProductInput) (*service.ProductDto, error) {
	m.calls++
	m.lastInput = input
	return m.product, m.err
}

func (m *mockProductService) Update(_ context.Context, id int64, input service.ProductInput) (*service.ProductDto, error) {
	m.calls++
	m.lastID = id
	m.lastInput = input
	return m.product, m.err
}

func (m *mockProductService) DeleteByID(_ context.Context, id int64) error {
	m.calls++
	m.lastID = id
	return m.err
}

func (m *mockProductService) Ready(_ context.Context) error {
	return m.err
}

func newTestHandler(svc service.ProductService) http.Handler {
	mux := chi.NewRouter()
	NewHandler(svc, slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))).RegisterRoutes(mux)
	return mux
}

func notFound(id int64) error {
	return fmt.Errorf("failed to fetch product by ID %d: %w", id, perrors.ErrProductNotFound)
}

func Test_Handler_FindByID(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockProductService
		productID    string
		expectedCode int
		expectedBody string
		expectCall   bool
	}{
		{
			name: "Success - product found",
			mockService: mockProductService{
				product: &service.ProductDto{ID: 1, Name: "Laptop", Price: 999.99, Quantity: 5},
			},
			productID:    "1",
			expectedCode: http.StatusOK,
			expectedBody: `{"id":1,"name":"Laptop","price":999.99,"quantity":5}`,
			expectCall:   true,
		},
		{
			name:         "Error - product not found",
			mockService:  mockProductService{err: notFound(999)},
			productID:    "999",
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Product with ID 999 not found"}`,
			expectCall:   true,
		},
		{
			name:         "Error - corrupt store",
			mockService:  mockProductService{err: fmt.Errorf("failed to fetch products: %w", perrors.ErrCorruptStore)},
			productID:    "2",
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to retrieve product with ID 2"}`,
			expectCall:   true,
		},
		{
			name:         "Error - invalid id",
			productID:    "abc",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid ID: abc"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			handler := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodGet, "/products/"+tc.productID, nil)
			rr := httptest.NewRecorder()

			// when
			handler.ServeHTTP(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
			assert.Equal(t, tc.expectCall, tc.mockService.calls == 1)
		})
	}
}

func Test_Handler_FindAll(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockProductService
		expectedCode int
		expectedBody string
	}{
		{
			name: "Success - products in stored order",
			mockService: mockProductService{
				products: []service.ProductDto{
					{ID: 2, Name: "Mouse", Price: 19.5, Quantity: 40},
					{ID: 1, Name: "Laptop", Price: 999.99, Quantity: 5},
				},
			},
			expectedCode: http.StatusOK,
			expectedBody: `[{"id":2,"name":"Mouse","price":19.5,"quantity":40},{"id":1,"name":"Laptop","price":999.99,"quantity":5}]`,
		},
		{
			name:         "Success - no products",
			mockService:  mockProductService{products: nil},
			expectedCode: http.StatusOK,
			expectedBody: `[]`,
		},
		{
			name:         "Error - service error",
			mockService:  mockProductService{err: errors.New("disk failure")},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to fetch products"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			handler := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodGet, "/products", nil)
			rr := httptest.NewRecorder()

			// when
			handler.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func Test_Handler_Create(t *testing.T) {
	created := &service.ProductDto{ID: 1, Name: "Widget", Price: 2.5, Quantity: 10}

	testCases := []struct {
		name          string
		mockService   mockProductService
		body          string
		expectedCode  int
		expectedBody  string
		expectedInput *service.ProductInput
	}{
		{
			name:          "Success - product created",
			mockService:   mockProductService{product: created},
			body:          `{"name":"Widget","price":2.5,"quantity":10}`,
			expectedCode:  http.StatusCreated,
			expectedBody:  `{"id":1,"name":"Widget","price":2.5,"quantity":10}`,
			expectedInput: &service.ProductInput{Name: "Widget", Price: 2.5, Quantity: 10},
		},
		{
			name:          "Success - zero values are present values",
			mockService:   mockProductService{product: &service.ProductDto{ID: 3}},
			body:          `{"name":"","price":0,"quantity":0}`,
			expectedCode:  http.StatusCreated,
			expectedBody:  `{"id":3,"name":"","price":0,"quantity":0}`,
			expectedInput: &service.ProductInput{},
		},
		{
			name:         "Error - missing name",
			body:         `{"price":2.5,"quantity":10}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"Name":"failed on rule: required"}}`,
		},
		{
			name:         "Error - missing every field",
			body:         `{}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"Name":"failed on rule: required","Price":"failed on rule: required","Quantity":"failed on rule: required"}}`,
		},
		{
			name:         "Error - wrong type",
			body:         `{"name":"Widget","price":"cheap","quantity":10}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid request body"}`,
		},
		{
			name:         "Error - fractional quantity",
			body:         `{"name":"Widget","price":2.5,"quantity":1.5}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid request body"}`,
		},
		{
			name:         "Error - malformed json",
			body:         `{"name":`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid request body"}`,
		},
		{
			name:          "Error - service error",
			mockService:   mockProductService{err: errors.New("write failed")},
			body:          `{"name":"Widget","price":2.5,"quantity":10}`,
			expectedCode:  http.StatusInternalServerError,
			expectedBody:  `{"error":"Failed to create product"}`,
			expectedInput: &service.ProductInput{Name: "Widget", Price: 2.5, Quantity: 10},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			handler := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			// when
			handler.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			if tc.expectedInput == nil {
				assert.Zero(t, tc.mockService.calls, "service must not be called for invalid input")
				return
			}
			require.Equal(t, 1, tc.mockService.calls)
			assert.Equal(t, *tc.expectedInput, tc.mockService.lastInput)
		})
	}
}

func Test_Handler_Update(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockProductService
		productID    string
		body         string
		expectedCode int
		expectedBody string
		expectCall   bool
	}{
		{
			name:         "Success - product replaced",
			mockService:  mockProductService{product: &service.ProductDto{ID: 4, Name: "B", Price: 2, Quantity: 0}},
			productID:    "4",
			body:         `{"name":"B","price":2,"quantity":0}`,
			expectedCode: http.StatusOK,
			expectedBody: `{"id":4,"name":"B","price":2,"quantity":0}`,
			expectCall:   true,
		},
		{
			name:         "Error - product not found",
			mockService:  mockProductService{err: notFound(999)},
			productID:    "999",
			body:         `{"name":"B","price":2,"quantity":0}`,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Product with ID 999 not found"}`,
			expectCall:   true,
		},
		{
			name:         "Error - invalid id",
			productID:    "x1",
			body:         `{"name":"B","price":2,"quantity":0}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid ID: x1"}`,
		},
		{
			name:         "Error - missing quantity",
			productID:    "4",
			body:         `{"name":"B","price":2}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"Quantity":"failed on rule: required"}}`,
		},
		{
			name:         "Error - service error",
			mockService:  mockProductService{err: errors.New("write failed")},
			productID:    "4",
			body:         `{"name":"B","price":2,"quantity":0}`,
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to update product with ID 4"}`,
			expectCall:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			handler := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodPut, "/products/"+tc.productID, strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			// when
			handler.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			assert.Equal(t, tc.expectCall, tc.mockService.calls == 1)
			if tc.expectCall {
				assert.Equal(t, service.ProductInput{Name: "B", Price: 2, Quantity: 0}, tc.mockService.lastInput)
			}
		})
	}
}

func Test_Handler_DeleteByID(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockProductService
		productID    string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product deleted",
			productID:    "1",
			expectedCode: http.StatusNoContent,
		},
		{
			name:         "Error - product not found",
			mockService:  mockProductService{err: notFound(1)},
			productID:    "1",
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Product with ID 1 not found"}`,
		},
		{
			name:         "Error - invalid id",
			productID:    "one",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid ID: one"}`,
		},
		{
			name:         "Error - service error",
			mockService:  mockProductService{err: errors.New("write failed")},
			productID:    "1",
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to delete product with ID 1"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			handler := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodDelete, "/products/"+tc.productID, nil)
			rr := httptest.NewRecorder()

			// when
			handler.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedBody == "" {
				assert.Empty(t, rr.Body.String())
				assert.Equal(t, int64(1), tc.mockService.lastID)
				return
			}
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func Test_Handler_Probes(t *testing.T) {
	testCases := []struct {
		name         string
		path         string
		readyErr     error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Welcome",
			path:         "/",
			expectedCode: http.StatusOK,
			expectedBody: `{"message":"Welcome to the Tech Store API"}`,
		},
		{
			name:         "Health ignores store state",
			path:         "/health",
			readyErr:     errors.New("store down"),
			expectedCode: http.StatusOK,
			expectedBody: `{"status":"ok"}`,
		},
		{
			name:         "Ready",
			path:         "/readyz",
			expectedCode: http.StatusOK,
			expectedBody: `{"status":"ready"}`,
		},
		{
			name:         "Not ready",
			path:         "/readyz",
			readyErr:     errors.New("store down"),
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: `{"status":"unavailable"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			handler := newTestHandler(&mockProductService{err: tc.readyErr})
			rr := httptest.NewRecorder()

			// when
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}
