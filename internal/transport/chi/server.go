package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/foodmap/internal/domain"
	"github.com/kailas-cloud/foodmap/internal/domain/hover"
	"github.com/kailas-cloud/foodmap/internal/domain/restaurant"
	logpkg "github.com/kailas-cloud/foodmap/internal/logger"
	catalogpkg "github.com/kailas-cloud/foodmap/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/foodmap/internal/usecase/health"
	"github.com/kailas-cloud/foodmap/internal/version"
)

// Routes.
const (
	pathIndex       = "/"
	pathFigure      = "/figure.json"
	pathHover       = "/callbacks/hover"
	pathPreview     = "/preview.png"
	pathRestaurants = "/api/restaurants"
	pathHealth      = "/health"
	pathMetrics     = "/metrics"
	pathStatic      = "/static/"
)

// maxHoverBody bounds a hover payload; real payloads are a few hundred bytes.
const maxHoverBody = 64 << 10

// ErrorCode is the machine-readable error kind in JSON error bodies.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest    ErrorCode = "bad_request"
	ErrorCodeUnknownLabel  ErrorCode = "unknown_label"
	ErrorCodeInternalError ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Dashboard is the rendered view and its hover binding.
type Dashboard interface {
	FigureJSON() []byte
	PreviewPNG() []byte
	Hover(data *hover.Data) hover.Result
}

// Catalog is the read side of the loaded dataset.
type Catalog interface {
	Restaurants() []restaurant.Restaurant
	Filter(label restaurant.PriceLabel) []restaurant.Restaurant
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the map page, its figure and the hover callback.
type Server struct {
	dashboard     Dashboard
	catalog       Catalog
	health        HealthChecker
	page          []byte
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP server. page is the pre-rendered index document.
func NewServer(dashboard Dashboard, catalog Catalog, health HealthChecker, page []byte, logger *zap.Logger) *Server {
	s := &Server{
		dashboard: dashboard,
		catalog:   catalog,
		health:    health,
		page:      page,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownLabel, http.StatusBadRequest, ErrorCodeUnknownLabel),
	}
	return s
}

// Mount registers all routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Get(pathIndex, s.Index)
	r.Get(pathFigure, s.Figure)
	r.Post(pathHover, s.HoverCallback)
	r.Get(pathPreview, s.Preview)
	r.Get(pathRestaurants, s.ListRestaurants)
	r.Get(pathHealth, s.HealthCheck)
	r.Get(pathMetrics, s.Metrics)
	r.Handle(pathStatic+"*", http.StripPrefix(pathStatic, http.FileServer(http.FS(staticFS()))))
}

// Index handles GET /.
func (s *Server) Index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.page)
}

// Figure handles GET /figure.json.
func (s *Server) Figure(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.dashboard.FigureJSON())
}

// Preview handles GET /preview.png.
func (s *Server) Preview(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.dashboard.PreviewPNG())
}

// hoverUpdate is the body of an image source update.
type hoverUpdate struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// HoverCallback handles POST /callbacks/hover. A JSON null or empty body means
// nothing is hovered and yields 204, leaving the image as it is.
func (s *Server) HoverCallback(w http.ResponseWriter, r *http.Request) {
	var data *hover.Data
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxHoverBody)).Decode(&data)
	if err != nil && !errors.Is(err, io.EOF) {
		logpkg.FromContext(r.Context()).Debug("Invalid hover payload", zap.Error(err))
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res := s.dashboard.Hover(data)
	if !res.IsUpdate() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, hoverUpdate{Property: "src", Value: res.Value()})
}

// restaurantJSON is the API view of a restaurant.
type restaurantJSON struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"full_address"`
	Price     *string `json:"price"`
	Rating    float64 `json:"rating"`
	ImageURL  string  `json:"image_url"`
	Label     string  `json:"price_label"`
}

type restaurantListResponse struct {
	Items []restaurantJSON `json:"items"`
	Total int              `json:"total"`
}

// ListRestaurants handles GET /api/restaurants?label=.
func (s *Server) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	var rs []restaurant.Restaurant
	if q := r.URL.Query(); q.Has("label") {
		label, err := catalogpkg.ParseLabel(q.Get("label"))
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		rs = s.catalog.Filter(label)
	} else {
		rs = s.catalog.Restaurants()
	}

	items := make([]restaurantJSON, len(rs))
	for i, rest := range rs {
		items[i] = restaurantToJSON(rest)
	}
	writeJSON(w, http.StatusOK, restaurantListResponse{Items: items, Total: len(items)})
}

// healthResponse is the /health body.
type healthResponse struct {
	Status  healthuc.Status                 `json:"status"`
	Records int                             `json:"records"`
	Checks  map[string]healthuc.CheckResult `json:"checks"`
	Build   version.Info                    `json:"build"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:  report.Status,
		Records: report.Records,
		Checks:  report.Checks,
		Build:   version.Get(),
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func restaurantToJSON(r restaurant.Restaurant) restaurantJSON {
	var price *string
	if !r.Tier().IsAbsent() {
		p := string(r.Tier())
		price = &p
	}
	return restaurantJSON{
		ID:        r.ID().String(),
		Latitude:  r.Latitude(),
		Longitude: r.Longitude(),
		Address:   r.Address(),
		Price:     price,
		Rating:    r.Rating(),
		ImageURL:  r.ImageURL(),
		Label:     string(r.Label()),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The wrapped message is safe to expose: it carries only the offending query value.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			s.logger.Debug("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
