package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppulse/internal/analytics"
	"shoppulse/internal/dataset"
	apierrors "shoppulse/internal/errors"
	"shoppulse/internal/services"
)

// mockDashboardService implements DashboardServiceInterface with
// overridable function fields
type mockDashboardService struct {
	snapshotFn     func(ctx context.Context, r services.DateRange) (*services.DashboardSnapshot, error)
	revenueFn      func(ctx context.Context, r services.DateRange) (*analytics.RevenueMetrics, error)
	trendsFn       func(ctx context.Context, r services.DateRange) ([]analytics.MonthlyTrend, error)
	categoriesFn   func(ctx context.Context, r services.DateRange) ([]analytics.CategoryPerformance, error)
	statesFn       func(ctx context.Context, r services.DateRange) ([]analytics.StatePerformance, error)
	satisfactionFn func(ctx context.Context, r services.DateRange) (*analytics.SatisfactionMetrics, error)
	deliveryFn     func(ctx context.Context, r services.DateRange) (*analytics.DeliveryMetrics, error)
	vsDeliveryFn   func(ctx context.Context, r services.DateRange) ([]analytics.SatisfactionByDelivery, error)
	summaryFn      func(ctx context.Context, r services.DateRange) (string, error)
	infoFn         func(ctx context.Context) ([]dataset.DatasetInfo, error)
	reloadFn       func(ctx context.Context) (*dataset.Store, error)
}

func (m *mockDashboardService) Snapshot(ctx context.Context, r services.DateRange) (*services.DashboardSnapshot, error) {
	return m.snapshotFn(ctx, r)
}

func (m *mockDashboardService) RevenueMetrics(ctx context.Context, r services.DateRange) (*analytics.RevenueMetrics, error) {
	return m.revenueFn(ctx, r)
}

func (m *mockDashboardService) MonthlyTrends(ctx context.Context, r services.DateRange) ([]analytics.MonthlyTrend, error) {
	return m.trendsFn(ctx, r)
}

func (m *mockDashboardService) CategoryPerformance(ctx context.Context, r services.DateRange) ([]analytics.CategoryPerformance, error) {
	return m.categoriesFn(ctx, r)
}

func (m *mockDashboardService) GeographicPerformance(ctx context.Context, r services.DateRange) ([]analytics.StatePerformance, error) {
	return m.statesFn(ctx, r)
}

func (m *mockDashboardService) CustomerSatisfaction(ctx context.Context, r services.DateRange) (*analytics.SatisfactionMetrics, error) {
	return m.satisfactionFn(ctx, r)
}

func (m *mockDashboardService) DeliveryPerformance(ctx context.Context, r services.DateRange) (*analytics.DeliveryMetrics, error) {
	return m.deliveryFn(ctx, r)
}

func (m *mockDashboardService) SatisfactionVsDelivery(ctx context.Context, r services.DateRange) ([]analytics.SatisfactionByDelivery, error) {
	return m.vsDeliveryFn(ctx, r)
}

func (m *mockDashboardService) SummaryReport(ctx context.Context, r services.DateRange) (string, error) {
	return m.summaryFn(ctx, r)
}

func (m *mockDashboardService) DatasetInfo(ctx context.Context) ([]dataset.DatasetInfo, error) {
	return m.infoFn(ctx)
}

func (m *mockDashboardService) Reload(ctx context.Context) (*dataset.Store, error) {
	return m.reloadFn(ctx)
}

func newTestHandler(service DashboardServiceInterface) *DashboardHandler {
	logger := slog.Default()
	return NewDashboardHandler(service, logger, apierrors.NewErrorHandler(logger, false))
}

func TestGetRevenue(t *testing.T) {
	t.Run("returns metrics", func(t *testing.T) {
		service := &mockDashboardService{
			revenueFn: func(ctx context.Context, r services.DateRange) (*analytics.RevenueMetrics, error) {
				return &analytics.RevenueMetrics{
					TotalRevenue:      500,
					TotalOrders:       3,
					AverageOrderValue: analytics.NewRate(166.67),
				}, nil
			},
		}
		handler := newTestHandler(service)

		req := httptest.NewRequest(http.MethodGet, "/revenue", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body analytics.RevenueMetrics
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 500.0, body.TotalRevenue)
		assert.Equal(t, 3, body.TotalOrders)
		assert.True(t, body.AverageOrderValue.Valid)
	})

	t.Run("undefined rates render as null", func(t *testing.T) {
		service := &mockDashboardService{
			revenueFn: func(ctx context.Context, r services.DateRange) (*analytics.RevenueMetrics, error) {
				return &analytics.RevenueMetrics{}, nil
			},
		}
		handler := newTestHandler(service)

		req := httptest.NewRequest(http.MethodGet, "/revenue", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		assert.Equal(t, "null", string(raw["average_order_value"]))
	})

	t.Run("passes the parsed date range", func(t *testing.T) {
		var got services.DateRange
		service := &mockDashboardService{
			revenueFn: func(ctx context.Context, r services.DateRange) (*analytics.RevenueMetrics, error) {
				got = r
				return &analytics.RevenueMetrics{}, nil
			},
		}
		handler := newTestHandler(service)

		req := httptest.NewRequest(http.MethodGet, "/revenue?start=2024-01-01&end=2024-03-31", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got.Start)
		// End covers the whole requested day.
		assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC), got.End)
	})

	t.Run("malformed date yields 400 problem", func(t *testing.T) {
		handler := newTestHandler(&mockDashboardService{})

		req := httptest.NewRequest(http.MethodGet, "/revenue?start=March-1st", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
	})

	t.Run("inverted range yields 400", func(t *testing.T) {
		handler := newTestHandler(&mockDashboardService{})

		req := httptest.NewRequest(http.MethodGet, "/revenue?start=2024-06-01&end=2024-01-01", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetDashboard(t *testing.T) {
	t.Run("missing dataset yields 404 problem", func(t *testing.T) {
		service := &mockDashboardService{
			snapshotFn: func(ctx context.Context, r services.DateRange) (*services.DashboardSnapshot, error) {
				return nil, apierrors.NewDatasetMissingError(dataset.DatasetOrders)
			},
		}
		handler := newTestHandler(service)

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
		assert.Contains(t, rec.Body.String(), "orders")
	})

	t.Run("partial snapshot carries section errors", func(t *testing.T) {
		service := &mockDashboardService{
			snapshotFn: func(ctx context.Context, r services.DateRange) (*services.DashboardSnapshot, error) {
				revenue := analytics.RevenueMetrics{TotalRevenue: 100}
				return &services.DashboardSnapshot{
					Revenue:         &revenue,
					CategoriesError: `dataset "products" not loaded`,
				}, nil
			},
		}
		handler := newTestHandler(service)

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		assert.Contains(t, raw, "revenue")
		assert.Contains(t, raw, "categories_error")
		assert.NotContains(t, raw, "categories")
	})
}

func TestGetSummary(t *testing.T) {
	service := &mockDashboardService{
		summaryFn: func(ctx context.Context, r services.DateRange) (string, error) {
			return "BUSINESS METRICS SUMMARY REPORT\n", nil
		},
	}
	handler := newTestHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "SUMMARY REPORT")
}

func TestGetDatasets(t *testing.T) {
	service := &mockDashboardService{
		infoFn: func(ctx context.Context) ([]dataset.DatasetInfo, error) {
			return []dataset.DatasetInfo{{Name: dataset.DatasetOrders, Rows: 42}}, nil
		},
	}
	handler := newTestHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/datasets", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Datasets []dataset.DatasetInfo `json:"datasets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Datasets, 1)
	assert.Equal(t, 42, body.Datasets[0].Rows)
}

func TestReload(t *testing.T) {
	t.Run("reloads and reports datasets", func(t *testing.T) {
		called := false
		service := &mockDashboardService{
			reloadFn: func(ctx context.Context) (*dataset.Store, error) {
				called = true
				return &dataset.Store{}, nil
			},
		}
		handler := newTestHandler(service)

		req := httptest.NewRequest(http.MethodPost, "/reload", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})

	t.Run("reload failure surfaces as problem", func(t *testing.T) {
		service := &mockDashboardService{
			reloadFn: func(ctx context.Context) (*dataset.Store, error) {
				return nil, apierrors.NewStorageError("failed to open dataset", nil)
			},
		}
		handler := newTestHandler(service)

		req := httptest.NewRequest(http.MethodPost, "/reload", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		service := &mockDashboardService{
			infoFn: func(ctx context.Context) ([]dataset.DatasetInfo, error) {
				return []dataset.DatasetInfo{{Name: dataset.DatasetOrders, Rows: 10}}, nil
			},
		}
		handler := NewHealthHandler(service, slog.Default())

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		handler.HealthCheck(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"healthy"`)
	})

	t.Run("unhealthy when datasets cannot load", func(t *testing.T) {
		service := &mockDashboardService{
			infoFn: func(ctx context.Context) ([]dataset.DatasetInfo, error) {
				return nil, apierrors.NewStorageError("disk gone", nil)
			},
		}
		handler := NewHealthHandler(service, slog.Default())

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		handler.HealthCheck(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"unhealthy"`)
	})

	t.Run("liveness", func(t *testing.T) {
		handler := NewHealthHandler(&mockDashboardService{}, slog.Default())

		req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
		rec := httptest.NewRecorder()
		handler.LivenessCheck(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"alive"`)
	})
}
