package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "shoppulse/internal/errors"
	"shoppulse/internal/services"
)

// DashboardHandler handles dashboard HTTP requests with RFC 7807 compliance
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/dashboard", h.GetDashboard)
	r.Get("/revenue", h.GetRevenue)
	r.Get("/trends", h.GetTrends)
	r.Get("/categories", h.GetCategories)
	r.Get("/states", h.GetStates)
	r.Get("/satisfaction", h.GetSatisfaction)
	r.Get("/delivery", h.GetDelivery)
	r.Get("/satisfaction-vs-delivery", h.GetSatisfactionVsDelivery)
	r.Get("/summary", h.GetSummary)
	r.Get("/datasets", h.GetDatasets)
	r.Post("/reload", h.Reload)

	return r
}

// rangeParams carries the raw date-range query parameters
type rangeParams struct {
	Start string `validate:"omitempty,datetime=2006-01-02"`
	End   string `validate:"omitempty,datetime=2006-01-02"`
}

// dateRange parses and validates the start/end query parameters. The end
// date is inclusive of its whole day.
func (h *DashboardHandler) dateRange(r *http.Request) (services.DateRange, error) {
	params := rangeParams{
		Start: r.URL.Query().Get("start"),
		End:   r.URL.Query().Get("end"),
	}
	if err := h.validate.Struct(params); err != nil {
		return services.DateRange{}, apierrors.NewValidationError(
			"start and end must be YYYY-MM-DD dates", err)
	}

	var dr services.DateRange
	if params.Start != "" {
		start, _ := time.Parse("2006-01-02", params.Start)
		dr.Start = start
	}
	if params.End != "" {
		end, _ := time.Parse("2006-01-02", params.End)
		dr.End = end.Add(24*time.Hour - time.Second)
	}

	if err := dr.Validate(); err != nil {
		return services.DateRange{}, err
	}
	return dr, nil
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dr, err := h.dateRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	snapshot, err := h.service.Snapshot(r.Context(), dr)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, snapshot)
}

// GetRevenue handles GET /api/revenue
func (h *DashboardHandler) GetRevenue(w http.ResponseWriter, r *http.Request) {
	dr, err := h.dateRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	metrics, err := h.service.RevenueMetrics(r.Context(), dr)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, metrics)
}

// GetTrends handles GET /api/trends
func (h *DashboardHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	dr, err := h.dateRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	trends, err := h.service.MonthlyTrends(r.Context(), dr)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, trends)
}

// GetCategories handles GET /api/categories
func (h *DashboardHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	dr, err := h.dateRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	categories, err := h.service.CategoryPerformance(r.Context(), dr)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, categories)
}

// GetStates handles GET /api/states
func (h *DashboardHandler) GetStates(w http.ResponseWriter, r *http.Request) {
	dr, err := h.dateRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	states, err := h.service.GeographicPerformance(r.Context(), dr)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, states)
}

// GetSatisfaction handles GET /api/satisfaction
func (h *DashboardHandler) GetSatisfaction(w http.ResponseWriter, r *http.Request) {
	dr, err := h.dateRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	metrics, err := h.service.CustomerSatisfaction(r.Context(), dr)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, metrics)
}

// GetDelivery handles GET /api/delivery
func (h *DashboardHandler) GetDelivery(w http.ResponseWriter, r *http.Request) {
	dr, err := h.dateRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	metrics, err := h.service.DeliveryPerformance(r.Context(), dr)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, metrics)
}

// GetSatisfactionVsDelivery handles GET /api/satisfaction-vs-delivery
func (h *DashboardHandler) GetSatisfactionVsDelivery(w http.ResponseWriter, r *http.Request) {
	dr, err := h.dateRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, err := h.service.SatisfactionVsDelivery(r.Context(), dr)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, rows)
}

// GetSummary handles GET /api/summary, returning the plain-text report
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	dr, err := h.dateRange(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.service.SummaryReport(r.Context(), dr)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.PlainText(w, r, report)
}

// GetDatasets handles GET /api/datasets
func (h *DashboardHandler) GetDatasets(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.DatasetInfo(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{"datasets": info})
}

// Reload handles POST /api/reload, dropping the memoized store
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	store, err := h.service.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "datasets reloaded")
	render.JSON(w, r, map[string]interface{}{"datasets": store.Info()})
}
