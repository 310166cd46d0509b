package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reportdex/internal/domain"
	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/reportdex/internal/logger"
	"github.com/kailas-cloud/reportdex/internal/metrics"
	healthuc "github.com/kailas-cloud/reportdex/internal/usecase/health"
)

const internalErrorMessage = "Internal Server Error"

// Searcher runs cached report searches.
type Searcher interface {
	Search(ctx context.Context, p request.Params) ([]byte, bool, error)
	Window() time.Duration
}

// FacetProvider serves the cached facet vocabulary.
type FacetProvider interface {
	Options(ctx context.Context) ([]byte, bool, error)
	Window() time.Duration
}

// Revalidator invalidates a cache topic by tag.
type Revalidator interface {
	Revalidate(ctx context.Context, tag string) (domain.Topic, error)
}

// HealthChecker reports dependency health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RevalidateResponse is the body of a successful revalidation.
type RevalidateResponse struct {
	Revalidated bool   `json:"revalidated"`
	Tag         string `json:"tag"`
	Now         int64  `json:"now"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Server serves the report search HTTP API.
type Server struct {
	search        Searcher
	facets        FacetProvider
	revalidate    Revalidator
	health        HealthChecker
	validate      *validator.Validate
	logger        *zap.Logger
	now           func() time.Time
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	facets FacetProvider,
	revalidate Revalidator,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:     search,
		facets:     facets,
		revalidate: revalidate,
		health:     health,
		validate:   validator.New(),
		logger:     logger,
		now:        time.Now,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrUnknownTopic, http.StatusBadRequest, "unknown revalidation tag"),
	}
	return s
}

// Routes builds the router. apiKeys guard the revalidation route only;
// an empty list disables authentication.
func (s *Server) Routes(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/api/reports", s.SearchReports)
	r.Get("/api/filter-options", s.FilterOptions)
	r.With(BearerAuthMiddleware(apiKeys)).Post("/api/revalidate", s.Revalidate)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// SearchReports handles GET /api/reports.
func (s *Server) SearchReports(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchReportsParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validate.Struct(params); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	body, hit, err := s.search.Search(r.Context(), params.toRequest())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeCached(w, body, hit, s.search.Window())
}

// FilterOptions handles GET /api/filter-options.
func (s *Server) FilterOptions(w http.ResponseWriter, r *http.Request) {
	body, hit, err := s.facets.Options(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeCached(w, body, hit, s.facets.Window())
}

// Revalidate handles POST /api/revalidate?tag=<topic>.
func (s *Server) Revalidate(w http.ResponseWriter, r *http.Request) {
	params, err := bindRevalidateParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validate.Struct(params); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	ctx := logpkg.With(r.Context(), zap.String("tag", params.Tag))
	topic, err := s.revalidate.Revalidate(ctx, params.Tag)
	if err != nil {
		s.handleDomainError(w, r.WithContext(ctx), err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, RevalidateResponse{
		Revalidated: true,
		Tag:         string(topic),
		Now:         s.now().UnixMilli(),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// writeCached writes a pre-encoded JSON body with the cache outcome and
// CDN freshness headers derived from the topic window.
func writeCached(w http.ResponseWriter, body []byte, hit bool, window time.Duration) {
	outcome := "MISS"
	if hit {
		outcome = "HIT"
	}
	secs := int(window / time.Second)
	w.Header().Set(metrics.CacheHeader, outcome)
	w.Header().Set("Cache-Control", fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d", secs, secs))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, status, ErrorResponse{Error: message})
}

// validationHandler reports request validation failures with their client message.
func validationHandler(w http.ResponseWriter, err error) bool {
	msg, ok := domain.ValidationMessage(err)
	if !ok {
		return false
	}
	writeError(w, http.StatusBadRequest, msg)
	return true
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			logger.Debug("request rejected", zap.Error(err))
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, internalErrorMessage)
}

// validationMessage renders the first field failure of a validator error.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return fmt.Sprintf("parameter %s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("parameter %s failed %s", fe.Namespace(), fe.Tag())
	}
	return "invalid request"
}
