package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"shoppulse/internal/analytics"
	"shoppulse/internal/config"
	"shoppulse/internal/dataset"
	apperrors "shoppulse/internal/errors"
	"shoppulse/internal/infrastructure"
)

// DateRange is the inclusive purchase-timestamp window the dashboard is
// filtered to. Zero bounds leave that side open.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate checks range ordering
func (r DateRange) Validate() error {
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return apperrors.NewValidationError(
			fmt.Sprintf("end date %s precedes start date %s",
				r.End.Format("2006-01-02"), r.Start.Format("2006-01-02")), nil)
	}
	return nil
}

// PreviousYear shifts the range back one year, the dashboard's comparison
// period
func (r DateRange) PreviousYear() DateRange {
	prev := DateRange{}
	if !r.Start.IsZero() {
		prev.Start = r.Start.AddDate(-1, 0, 0)
	}
	if !r.End.IsZero() {
		prev.End = r.End.AddDate(-1, 0, 0)
	}
	return prev
}

// DashboardSnapshot is everything the dashboard page renders for one date
// range. Sections degrade independently: a section that could not be
// computed carries its error and leaves the rest intact.
type DashboardSnapshot struct {
	Range       DateRange `json:"range"`
	GeneratedAt time.Time `json:"generated_at"`

	Revenue          *analytics.RevenueMetrics `json:"revenue,omitempty"`
	Trends           []analytics.MonthlyTrend  `json:"trends,omitempty"`
	ComparisonTrends []analytics.MonthlyTrend  `json:"comparison_trends,omitempty"`

	Categories      []analytics.CategoryPerformance `json:"categories,omitempty"`
	CategoriesError string                          `json:"categories_error,omitempty"`

	States      []analytics.StatePerformance `json:"states,omitempty"`
	StatesError string                       `json:"states_error,omitempty"`

	Satisfaction      *analytics.SatisfactionMetrics `json:"satisfaction,omitempty"`
	SatisfactionError string                         `json:"satisfaction_error,omitempty"`

	Delivery *analytics.DeliveryMetrics `json:"delivery,omitempty"`

	SatisfactionVsDelivery      []analytics.SatisfactionByDelivery `json:"satisfaction_vs_delivery,omitempty"`
	SatisfactionVsDeliveryError string                             `json:"satisfaction_vs_delivery_error,omitempty"`
}

// DashboardService computes dashboard aggregates over the loaded datasets.
// The file load is memoized per data directory and shared across callers;
// every aggregate is recomputed fresh per request, so there is no mutable
// state beyond the store cache.
type DashboardService struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	group  singleflight.Group
	mu     sync.RWMutex
	stores map[string]*dataset.Store
}

// NewDashboardService creates a dashboard service using the default logger
func NewDashboardService(cfg *config.Config) *DashboardService {
	return NewDashboardServiceWithLogger(cfg, slog.Default())
}

// NewDashboardServiceWithLogger creates a dashboard service with a specific logger
func NewDashboardServiceWithLogger(cfg *config.Config, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "dashboard_service")),
		stores: make(map[string]*dataset.Store),
	}
}

// SetMetrics attaches business metric instruments. Optional; the service
// works without them.
func (s *DashboardService) SetMetrics(metrics *infrastructure.BusinessMetrics) {
	s.metrics = metrics
}

// Store returns the loaded dataset store, loading it on first use. The
// load is keyed on the data directory and deduplicated with singleflight;
// the date-range filter never invalidates it.
func (s *DashboardService) Store(ctx context.Context) (*dataset.Store, error) {
	dir := s.cfg.Data.Dir

	s.mu.RLock()
	store, ok := s.stores[dir]
	s.mu.RUnlock()
	if ok {
		return store, nil
	}

	result, err, _ := s.group.Do(dir, func() (interface{}, error) {
		s.logger.InfoContext(ctx, "loading datasets", slog.String("dir", dir))
		store, err := dataset.Load(dir, s.logger)
		if err != nil {
			return nil, err
		}
		if s.metrics != nil {
			for _, info := range store.Info() {
				s.metrics.RecordRowsLoaded(ctx, info.Name, info.Rows)
			}
		}
		s.mu.Lock()
		s.stores[dir] = store
		s.mu.Unlock()
		return store, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*dataset.Store), nil
}

// Reload drops the cached store and loads the data directory again
func (s *DashboardService) Reload(ctx context.Context) (*dataset.Store, error) {
	s.mu.Lock()
	delete(s.stores, s.cfg.Data.Dir)
	s.mu.Unlock()
	return s.Store(ctx)
}

// DatasetInfo returns per-dataset row counts
func (s *DashboardService) DatasetInfo(ctx context.Context) ([]dataset.DatasetInfo, error) {
	store, err := s.Store(ctx)
	if err != nil {
		return nil, err
	}
	return store.Info(), nil
}

// sales builds the delivered-orders sales view restricted to the range
func (s *DashboardService) sales(ctx context.Context, r DateRange) (*dataset.Store, []dataset.SalesRecord, error) {
	store, err := s.Store(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := dataset.DefaultSalesOptions()
	opts.Status = s.cfg.Data.DefaultStatus
	all, err := store.BuildSales(opts)
	if err != nil {
		return nil, nil, err
	}

	return store, dataset.FilterByDateRange(all, r.Start, r.End), nil
}

// Snapshot computes the full dashboard for the given range. The base sales
// view is required; the enriched sections each degrade independently when
// their dataset is absent.
func (s *DashboardService) Snapshot(ctx context.Context, r DateRange) (*DashboardSnapshot, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	store, current, err := s.sales(ctx, r)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordRecompute(ctx, time.Since(start).Seconds(), err)
		}
		return nil, err
	}

	previous, err := s.previousYearSales(store, r)
	if err != nil {
		return nil, err
	}

	revenue := analytics.CalculateRevenueMetrics(current, previous)
	snapshot := &DashboardSnapshot{
		Range:            r,
		GeneratedAt:      time.Now().UTC(),
		Revenue:          &revenue,
		Trends:           analytics.CalculateMonthlyTrends(current),
		ComparisonTrends: analytics.CalculateMonthlyTrends(previous),
	}

	delivery := dataset.AddDeliveryMetrics(current)
	deliveryMetrics := analytics.CalculateDeliveryPerformance(delivery)
	snapshot.Delivery = &deliveryMetrics

	if categories, err := store.WithCategories(current); err != nil {
		snapshot.CategoriesError = err.Error()
	} else {
		snapshot.Categories = analytics.CalculateProductPerformance(categories)
	}

	if states, err := store.WithStates(current); err != nil {
		snapshot.StatesError = err.Error()
	} else {
		snapshot.States = analytics.CalculateGeographicPerformance(states)
	}

	if reviews, err := store.WithReviews(current); err != nil {
		snapshot.SatisfactionError = err.Error()
		snapshot.SatisfactionVsDeliveryError = err.Error()
	} else {
		satisfaction := analytics.CalculateCustomerSatisfaction(reviews)
		snapshot.Satisfaction = &satisfaction

		combined := dataset.JoinDeliveryReviews(delivery, reviews)
		snapshot.SatisfactionVsDelivery = analytics.AnalyzeSatisfactionVsDelivery(combined)
	}

	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordRecompute(ctx, elapsed.Seconds(), nil)
	}
	s.logger.InfoContext(ctx, "dashboard snapshot computed",
		slog.Int("sales_rows", len(current)),
		slog.Duration("elapsed", elapsed))

	return snapshot, nil
}

// RevenueMetrics computes the revenue section with its previous-year
// comparison
func (s *DashboardService) RevenueMetrics(ctx context.Context, r DateRange) (*analytics.RevenueMetrics, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	store, current, err := s.sales(ctx, r)
	if err != nil {
		return nil, err
	}

	previous, err := s.previousYearSales(store, r)
	if err != nil {
		return nil, err
	}

	metrics := analytics.CalculateRevenueMetrics(current, previous)
	return &metrics, nil
}

// previousYearSales builds the comparison view shifted one year back. An
// open range has no meaningful previous period, so no comparison is made.
func (s *DashboardService) previousYearSales(store *dataset.Store, r DateRange) ([]dataset.SalesRecord, error) {
	if r.Start.IsZero() && r.End.IsZero() {
		return nil, nil
	}

	prevRange := r.PreviousYear()
	previous, err := store.BuildSales(salesOptsFor(s.cfg))
	if err != nil {
		return nil, err
	}
	return dataset.FilterByDateRange(previous, prevRange.Start, prevRange.End), nil
}

// MonthlyTrends computes per-month aggregates for the range
func (s *DashboardService) MonthlyTrends(ctx context.Context, r DateRange) ([]analytics.MonthlyTrend, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	_, current, err := s.sales(ctx, r)
	if err != nil {
		return nil, err
	}
	return analytics.CalculateMonthlyTrends(current), nil
}

// CategoryPerformance computes per-category aggregates for the range
func (s *DashboardService) CategoryPerformance(ctx context.Context, r DateRange) ([]analytics.CategoryPerformance, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	store, current, err := s.sales(ctx, r)
	if err != nil {
		return nil, err
	}
	view, err := store.WithCategories(current)
	if err != nil {
		return nil, err
	}
	return analytics.CalculateProductPerformance(view), nil
}

// GeographicPerformance computes per-state aggregates for the range
func (s *DashboardService) GeographicPerformance(ctx context.Context, r DateRange) ([]analytics.StatePerformance, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	store, current, err := s.sales(ctx, r)
	if err != nil {
		return nil, err
	}
	view, err := store.WithStates(current)
	if err != nil {
		return nil, err
	}
	return analytics.CalculateGeographicPerformance(view), nil
}

// CustomerSatisfaction computes review aggregates for the range
func (s *DashboardService) CustomerSatisfaction(ctx context.Context, r DateRange) (*analytics.SatisfactionMetrics, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	store, current, err := s.sales(ctx, r)
	if err != nil {
		return nil, err
	}
	view, err := store.WithReviews(current)
	if err != nil {
		return nil, err
	}
	metrics := analytics.CalculateCustomerSatisfaction(view)
	return &metrics, nil
}

// DeliveryPerformance computes delivery aggregates for the range
func (s *DashboardService) DeliveryPerformance(ctx context.Context, r DateRange) (*analytics.DeliveryMetrics, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	_, current, err := s.sales(ctx, r)
	if err != nil {
		return nil, err
	}
	metrics := analytics.CalculateDeliveryPerformance(dataset.AddDeliveryMetrics(current))
	return &metrics, nil
}

// SatisfactionVsDelivery computes the per-bucket review statistics
func (s *DashboardService) SatisfactionVsDelivery(ctx context.Context, r DateRange) ([]analytics.SatisfactionByDelivery, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	store, current, err := s.sales(ctx, r)
	if err != nil {
		return nil, err
	}
	reviews, err := store.WithReviews(current)
	if err != nil {
		return nil, err
	}
	combined := dataset.JoinDeliveryReviews(dataset.AddDeliveryMetrics(current), reviews)
	return analytics.AnalyzeSatisfactionVsDelivery(combined), nil
}

// SummaryReport renders the fixed-format text report for the range
func (s *DashboardService) SummaryReport(ctx context.Context, r DateRange) (string, error) {
	snapshot, err := s.Snapshot(ctx, r)
	if err != nil {
		return "", err
	}

	satisfaction := analytics.SatisfactionMetrics{}
	if snapshot.Satisfaction != nil {
		satisfaction = *snapshot.Satisfaction
	}
	delivery := analytics.DeliveryMetrics{}
	if snapshot.Delivery != nil {
		delivery = *snapshot.Delivery
	}

	return analytics.GenerateSummaryReport(*snapshot.Revenue, satisfaction, delivery), nil
}

// salesOptsFor derives the sales filter from configuration
func salesOptsFor(cfg *config.Config) dataset.SalesOptions {
	opts := dataset.DefaultSalesOptions()
	opts.Status = cfg.Data.DefaultStatus
	return opts
}
