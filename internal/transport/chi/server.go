package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esmodel/internal/domain/search/hit"
	"github.com/kailas-cloud/esmodel/internal/domain/search/page"
	logpkg "github.com/kailas-cloud/esmodel/internal/logger"
	"github.com/kailas-cloud/esmodel/internal/metrics"
	healthuc "github.com/kailas-cloud/esmodel/internal/usecase/health"
	"github.com/kailas-cloud/esmodel/internal/usecase/importing"
	"github.com/kailas-cloud/esmodel/internal/usecase/search"
)

const (
	defaultMaxPerPage = 100
	maxQueryBodyBytes = 1 << 20
)

// catalog is the consumer interface over registered models (ISP).
type catalog interface {
	Search(q any, opts search.Options, names ...string) (*search.Response, error)
	Import(ctx context.Context, name string, opts importing.Options) (importing.Result, error)
	Health(ctx context.Context) healthuc.Report
}

// Server serves model searches, imports and health over HTTP.
type Server struct {
	models        catalog
	logger        *zap.Logger
	maxPerPage    int
	batchSize     int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(models catalog, logger *zap.Logger) *Server {
	return &Server{
		models:        models,
		logger:        logger,
		maxPerPage:    defaultMaxPerPage,
		errorHandlers: defaultErrorHandlers(),
	}
}

// WithMaxPerPage caps the per_page parameter.
func (s *Server) WithMaxPerPage(n int) *Server {
	if n > 0 {
		s.maxPerPage = n
	}
	return s
}

// WithBatchSize sets the default import batch size.
func (s *Server) WithBatchSize(n int) *Server {
	s.batchSize = n
	return s
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/search", s.SearchAll)
		r.Post("/search", s.SearchAll)
		r.Route("/models/{model}", func(r chi.Router) {
			r.Get("/search", s.SearchModel)
			r.Post("/search", s.SearchModel)
			r.Post("/import", s.ImportModel)
		})
	})
}

// SearchResponse is the body of a search response.
type SearchResponse struct {
	Total   int64     `json:"total"`
	Took    int64     `json:"took"`
	Page    page.Meta `json:"page"`
	Hits    []hit.Hit `json:"hits"`
	Records []any     `json:"records,omitempty"`
}

// SearchModel handles GET|POST /v1/models/{model}/search.
func (s *Server) SearchModel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "model")
	s.runSearch(w, r, name, name)
}

// SearchAll handles GET|POST /v1/search. The models parameter is a comma
// separated list of model names; all models are searched when it is empty.
func (s *Server) SearchAll(w http.ResponseWriter, r *http.Request) {
	var names []string
	if v := r.URL.Query().Get("models"); v != "" {
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}
	s.runSearch(w, r, "_all", names...)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, label string, names ...string) {
	params, err := s.parseSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	start := time.Now()
	body, err := s.search(r.Context(), params, names)
	metrics.ObserveSearch(label, start, err)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

type searchParams struct {
	query   any
	page    int
	perPage int
	sort    []string
	records bool
}

func (s *Server) parseSearchParams(r *http.Request) (searchParams, error) {
	qs := r.URL.Query()
	p := searchParams{records: qs.Get("records") == "true"}

	if r.Method == http.MethodPost {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxQueryBodyBytes))
		if err != nil {
			return p, fmt.Errorf("read body: %w", err)
		}
		if len(data) > 0 {
			if !json.Valid(data) {
				return p, fmt.Errorf("invalid request body: not valid JSON")
			}
			p.query = json.RawMessage(data)
		}
	}
	if p.query == nil {
		if q := qs.Get("q"); q != "" {
			p.query = q
		}
	}

	var err error
	if p.page, err = intParam(qs.Get("page"), "page"); err != nil {
		return p, err
	}
	if p.perPage, err = intParam(qs.Get("per_page"), "per_page"); err != nil {
		return p, err
	}
	if p.perPage > s.maxPerPage {
		p.perPage = s.maxPerPage
	}
	if v := qs.Get("sort"); v != "" {
		p.sort = strings.Split(v, ",")
	}
	return p, nil
}

func intParam(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", name, v)
	}
	return n, nil
}

func (s *Server) search(ctx context.Context, p searchParams, names []string) (*SearchResponse, error) {
	resp, err := s.models.Search(p.query, search.Options{Sort: p.sort}, names...)
	if err != nil {
		return nil, err
	}
	if p.perPage > 0 {
		resp.Per(p.perPage)
	}
	if p.page > 0 {
		resp.Page(p.page)
	}

	results, err := resp.Results(ctx)
	if err != nil {
		return nil, err
	}
	meta, err := resp.PagyMeta(ctx)
	if err != nil {
		return nil, err
	}
	took, err := resp.Took(ctx)
	if err != nil {
		return nil, err
	}

	out := &SearchResponse{
		Total: results.Total(),
		Took:  took,
		Page:  meta,
		Hits:  results.Hits(),
	}
	if out.Hits == nil {
		out.Hits = []hit.Hit{}
	}
	if p.records {
		recs, err := resp.Records(ctx)
		if err != nil {
			return nil, err
		}
		if out.Records, err = recs.All(ctx); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ImportRequest is the body of an import request.
type ImportRequest struct {
	Force     bool `json:"force"`
	BatchSize int  `json:"batch_size"`
	Refresh   bool `json:"refresh"`
}

// ImportResponse summarizes an import.
type ImportResponse struct {
	Count   int           `json:"count"`
	Batches int           `json:"batches"`
	Failed  int           `json:"failed"`
	Errors  []ImportError `json:"errors,omitempty"`
}

// ImportError is one rejected document.
type ImportError struct {
	ID     string `json:"id"`
	Status int    `json:"status"`
	Type   string `json:"type,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ImportModel handles POST /v1/models/{model}/import.
func (s *Server) ImportModel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "model")

	var req ImportRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}
	if req.BatchSize < 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "batch_size must be >= 0")
		return
	}
	if req.BatchSize == 0 {
		req.BatchSize = s.batchSize
	}

	start := time.Now()
	res, err := s.models.Import(r.Context(), name, importing.Options{
		Force:     req.Force,
		BatchSize: req.BatchSize,
		Refresh:   req.Refresh,
	})
	metrics.ObserveImport(name, start, res.Count-res.Failed(), res.Failed())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := ImportResponse{Count: res.Count, Batches: res.Batches, Failed: res.Failed()}
	for _, it := range res.Errors {
		e := ImportError{ID: it.ID, Status: it.Status}
		e.Type, _ = it.Error["type"].(string)
		e.Reason, _ = it.Error["reason"].(string)
		out.Errors = append(out.Errors, e)
	}
	logpkg.Or(r.Context(), s.logger).Info("import finished",
		zap.String("model", name),
		zap.Int("count", out.Count),
		zap.Int("failed", out.Failed),
		zap.Duration("duration", time.Since(start)),
	)
	writeJSON(w, http.StatusOK, out)
}

// HealthResponse is the body of a health response.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Cluster string            `json:"cluster,omitempty"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.models.Health(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Cluster: report.Cluster,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
