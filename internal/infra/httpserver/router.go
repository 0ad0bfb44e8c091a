package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/brandlens/brandlens/internal/application/analysis"
	domain "github.com/brandlens/brandlens/internal/domain/analysis"
	"github.com/brandlens/brandlens/internal/domain/reports"
	"github.com/brandlens/brandlens/internal/logging"
	"github.com/brandlens/brandlens/internal/middleware"
)

const maxBulkBrands = 10

// Options carries the router's cross-cutting knobs.
type Options struct {
	APIKeys           []string
	AllowedOrigins    []string
	RateLimitCapacity int
	RateLimitRefill   int
	Production        bool
	ReportRoot        string
}

type Router struct {
	svc     *appanalysis.Service
	store   reports.Store
	gen     domain.Generator
	history reports.History
	log     *logging.Logger
	opts    Options
}

// NewRouter mounts the full API surface. Health endpoints are open; every
// /api/analysis route sits behind API-key auth and rate limiting.
func NewRouter(svc *appanalysis.Service, store reports.Store, gen domain.Generator, history reports.History, log *logging.Logger, opts Options) http.Handler {
	r := &Router{svc: svc, store: store, gen: gen, history: history, log: log, opts: opts}
	mux := chi.NewRouter()

	mux.Use(middleware.RequestLogging(log))
	mux.Use(middleware.MetricsMiddleware)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "x-api-key"},
		MaxAge:         300,
	}))

	mux.Get("/api/health", middleware.LivenessHandler)
	mux.Get("/api/health/detailed", middleware.DetailedHealthHandler(map[string]middleware.HealthChecker{
		"provider":   &providerChecker{gen: gen},
		"filesystem": &middleware.FilesystemHealthChecker{Dir: opts.ReportRoot},
	}))

	mux.Route("/api/analysis", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(opts.APIKeys))
		rt.Use(middleware.RateLimitMiddleware(opts.RateLimitCapacity, opts.RateLimitRefill))

		rt.Post("/", r.wrap(r.handleAnalyzeLegacy))
		rt.Post("/comprehensive", r.wrap(r.handleAnalyze))
		rt.Post("/bulk", r.wrap(r.handleBulk))
		rt.Get("/brands", r.wrap(r.handleBrands))
		rt.Get("/files", r.wrap(r.handleListFiles))
		rt.Get("/files/{fileName}", r.wrap(r.handleGetFile))
		rt.Get("/files/{fileName}/download", r.wrap(r.handleDownload))
		rt.Delete("/files/{fileName}", r.wrap(r.handleDeleteFile))
		rt.Get("/statistics", r.wrap(r.handleStatistics))
		rt.Get("/history", r.wrap(r.handleHistory))
	})

	return mux
}

// providerChecker adapts the generator's Status ping to the health checker.
type providerChecker struct {
	gen domain.Generator
}

func (p *providerChecker) Check(ctx context.Context) error {
	st := p.gen.Status(ctx)
	if st.Status != "operational" {
		return errors.New(st.Message)
	}
	return nil
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			r.writeError(w, err)
		}
	}
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// writeError maps the error taxonomy onto HTTP statuses. Detail is hidden in
// production for anything unexpected.
func (r *Router) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	env := errorEnvelope{Error: "internal_error"}

	var vErr *domain.ValidationError
	var upErr *domain.UpstreamError
	switch {
	case errors.As(err, &vErr):
		status = http.StatusBadRequest
		env.Error = "validation_failed"
		env.Message = "request validation failed"
		env.Details = vErr.Fields
	case errors.Is(err, reports.ErrNotFound):
		status = http.StatusNotFound
		env.Error = "not_found"
		env.Message = "report not found"
	case errors.As(err, &upErr):
		env.Error = string(upErr.Kind)
		env.Message = upErr.Message
		switch upErr.Kind {
		case domain.ErrRateLimited:
			status = http.StatusTooManyRequests
		case domain.ErrUnauthorized:
			status = http.StatusUnauthorized
		case domain.ErrBadRequest:
			status = http.StatusBadRequest
		case domain.ErrUpstreamUnavailable:
			status = http.StatusServiceUnavailable
		default:
			status = http.StatusInternalServerError
		}
	default:
		if !r.opts.Production {
			env.Message = err.Error()
		}
	}

	if status >= 500 {
		r.log.Error("request failed", "status", status, "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

type resultEnvelope struct {
	Success bool `json:"success"`
	Result  any  `json:"result"`
}

func decodeRequest(req *http.Request) (*domain.Request, error) {
	var body domain.Request
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return nil, &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "body", Message: "invalid JSON: " + err.Error()},
		}}
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}
	return &body, nil
}

// POST /api/analysis
func (r *Router) handleAnalyzeLegacy(w http.ResponseWriter, req *http.Request) error {
	body, err := decodeRequest(req)
	if err != nil {
		return err
	}
	middleware.IncrementAnalyses()
	res, err := r.svc.AnalyzeLegacy(req.Context(), body)
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	return writeJSON(w, http.StatusOK, resultEnvelope{Success: true, Result: res})
}

// POST /api/analysis/comprehensive
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	body, err := decodeRequest(req)
	if err != nil {
		return err
	}
	middleware.IncrementAnalyses()
	res, err := r.svc.Analyze(req.Context(), body)
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	return writeJSON(w, http.StatusOK, resultEnvelope{Success: true, Result: res})
}

// POST /api/analysis/bulk
func (r *Router) handleBulk(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Brands []string `json:"brands"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "body", Message: "invalid JSON: " + err.Error()},
		}}
	}
	if len(body.Brands) == 0 {
		return &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "brands", Message: "is required"},
		}}
	}
	if len(body.Brands) > maxBulkBrands {
		return &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "brands", Message: fmt.Sprintf("at most %d brands per request", maxBulkBrands)},
		}}
	}

	res := r.svc.Bulk(req.Context(), body.Brands)
	return writeJSON(w, http.StatusOK, resultEnvelope{Success: true, Result: res})
}

// GET /api/analysis/brands
func (r *Router) handleBrands(w http.ResponseWriter, req *http.Request) error {
	brands, err := r.store.Brands(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, resultEnvelope{Success: true, Result: brands})
}

// GET /api/analysis/files?limit=&offset=&brandName=&fromDate=&toDate=
func (r *Router) handleListFiles(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	limit = middleware.ValidateLimit(limit)
	offset, _ := strconv.Atoi(q.Get("offset"))
	offset = middleware.ValidateOffset(offset)

	fromDate, err := middleware.ParseDate(q.Get("fromDate"))
	if err != nil {
		return &domain.ValidationError{Fields: []domain.FieldError{{Field: "fromDate", Message: err.Error()}}}
	}
	toDate, err := middleware.ParseDate(q.Get("toDate"))
	if err != nil {
		return &domain.ValidationError{Fields: []domain.FieldError{{Field: "toDate", Message: err.Error()}}}
	}

	all, err := r.store.List(req.Context(), reports.ListFilter{
		BrandName: q.Get("brandName"),
		FromDate:  fromDate,
		ToDate:    toDate,
	})
	if err != nil {
		return err
	}

	// The store returns the full list; pagination is a handler concern.
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := all[offset:end]

	return writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result": map[string]any{
			"files":  page,
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// GET /api/analysis/files/{fileName}?brandFolder=
func (r *Router) handleGetFile(w http.ResponseWriter, req *http.Request) error {
	fileName := chi.URLParam(req, "fileName")
	report, err := r.store.Read(req.Context(), fileName, req.URL.Query().Get("brandFolder"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, resultEnvelope{Success: true, Result: report})
}

// GET /api/analysis/files/{fileName}/download
func (r *Router) handleDownload(w http.ResponseWriter, req *http.Request) error {
	fileName := chi.URLParam(req, "fileName")
	report, err := r.store.Read(req.Context(), fileName, req.URL.Query().Get("brandFolder"))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	_, err = strings.NewReader(report.Content).WriteTo(w)
	return err
}

// DELETE /api/analysis/files/{fileName}?brandFolder=
func (r *Router) handleDeleteFile(w http.ResponseWriter, req *http.Request) error {
	fileName := chi.URLParam(req, "fileName")
	if err := r.store.Delete(req.Context(), fileName, req.URL.Query().Get("brandFolder")); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "report deleted",
	})
}

// GET /api/analysis/statistics
func (r *Router) handleStatistics(w http.ResponseWriter, req *http.Request) error {
	stats, err := r.store.Statistics(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, resultEnvelope{Success: true, Result: stats})
}

// GET /api/analysis/history?page=&pageSize=
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	if r.history == nil {
		// Audit trail disabled; an empty list keeps the surface stable.
		return writeJSON(w, http.StatusOK, resultEnvelope{Success: true, Result: []*reports.HistoryEntry{}})
	}
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(req.URL.Query().Get("pageSize"))

	list, err := r.history.Paginate(req.Context(), page, pageSize)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, resultEnvelope{Success: true, Result: list})
}
