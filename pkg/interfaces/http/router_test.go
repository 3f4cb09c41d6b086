package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/picklist/pkg/application/dto"
	"github.com/vsinha/picklist/pkg/application/services/picklist"
	"github.com/vsinha/picklist/pkg/infrastructure/metrics"
	testhelpers "github.com/vsinha/picklist/pkg/infrastructure/testing"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := testhelpers.BuildWarehouseTestData()
	registry := prometheus.NewRegistry()

	service := picklist.NewService(picklist.Repositories{
		Availability: store.Inventory,
		Items:        store.Items,
		UOMs:         store.UOMs,
		Warehouses:   store.Warehouses,
	}, picklist.WithMetrics(metrics.NewRecorder(registry)))

	return NewRouter(service, RouterConfig{
		AllowedOrigins: []string{"*"},
		Gatherer:       registry,
		Logger:         zerolog.Nop(),
	})
}

func post(handler http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pick-lists/allocate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAllocate_OK(t *testing.T) {
	router := newTestRouter(t)

	rec := post(router, `{
		"lines": [
			{"item_code": "BOLT", "qty": "7", "uom": "Nos", "stock_uom": "Nos", "conversion_factor": "1"},
			{"item_code": "BOLT", "qty": "10", "uom": "Nos", "stock_uom": "Nos", "conversion_factor": "1"}
		],
		"parent_warehouse": "Stores",
		"reference_date": "2024-03-01"
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result dto.PickListResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "2024-03-01", result.ReferenceDate.String())
	assert.Len(t, result.Rows, 3)
	require.Len(t, result.Shortages, 1)
	assert.Equal(t, "8", result.Shortages[0].ShortQuantity.String())
}

func TestAllocate_Errors(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantLine   *int
	}{
		{
			name:       "malformed json",
			body:       `{"lines": [`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"lines": [], "priority": 1}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown item",
			body:       `{"lines": [{"item_code": "GHOST", "qty": "1", "uom": "Nos", "stock_uom": "Nos", "conversion_factor": "1"}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantLine:   intPtr(0),
		},
		{
			name:       "unknown parent warehouse",
			body:       `{"lines": [], "parent_warehouse": "Nowhere"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(router, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.wantLine, resp.LineIndex)
		})
	}
}

type failingAllocator struct{}

func (failingAllocator) Allocate(context.Context, dto.AllocateRequest) (*dto.PickListResult, error) {
	return nil, errors.New("connection refused")
}

func TestAllocate_CollaboratorFailure(t *testing.T) {
	router := NewRouter(failingAllocator{}, RouterConfig{Logger: zerolog.Nop()})

	rec := post(router, `{"lines": []}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	rec := post(router, `{"lines": [{"item_code": "SCREWS", "qty": "1", "uom": "Nos", "stock_uom": "Nos", "conversion_factor": "1"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	health := httptest.NewRecorder()
	router.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Equal(t, "OK", health.Body.String())

	scrape := httptest.NewRecorder()
	router.ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, scrape.Code)
	assert.Contains(t, scrape.Body.String(), `picklist_runs_total{outcome="success"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	router := NewRouter(failingAllocator{}, RouterConfig{Logger: zerolog.Nop()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/pick-lists/allocate", nil)
	req.Header.Set("Origin", "https://erp.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func intPtr(v int) *int { return &v }
