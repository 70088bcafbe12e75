package http

import (
	"context"

	"shoppulse/internal/analytics"
	"shoppulse/internal/dataset"
	"shoppulse/internal/services"
)

// DashboardServiceInterface defines the interface for dashboard operations
type DashboardServiceInterface interface {
	Snapshot(ctx context.Context, r services.DateRange) (*services.DashboardSnapshot, error)
	RevenueMetrics(ctx context.Context, r services.DateRange) (*analytics.RevenueMetrics, error)
	MonthlyTrends(ctx context.Context, r services.DateRange) ([]analytics.MonthlyTrend, error)
	CategoryPerformance(ctx context.Context, r services.DateRange) ([]analytics.CategoryPerformance, error)
	GeographicPerformance(ctx context.Context, r services.DateRange) ([]analytics.StatePerformance, error)
	CustomerSatisfaction(ctx context.Context, r services.DateRange) (*analytics.SatisfactionMetrics, error)
	DeliveryPerformance(ctx context.Context, r services.DateRange) (*analytics.DeliveryMetrics, error)
	SatisfactionVsDelivery(ctx context.Context, r services.DateRange) ([]analytics.SatisfactionByDelivery, error)
	SummaryReport(ctx context.Context, r services.DateRange) (string, error)
	DatasetInfo(ctx context.Context) ([]dataset.DatasetInfo, error)
	Reload(ctx context.Context) (*dataset.Store, error)
}
