// ABOUTME: Web UI and JSON API server with embedded templates
// ABOUTME: Serves the insight dashboard, the pipeline graph and the analyze/execute/kpis/admin-chat endpoints
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/goccy/go-graphviz"
	"go.uber.org/zap"

	"github.com/JFernandez0524/leadgen/chat"
	"github.com/JFernandez0524/leadgen/insights"
	"github.com/JFernandez0524/leadgen/viz"
)

//go:embed templates/*
var templatesFS embed.FS

const unavailableMessage = "unable to compute business insights"

type Server struct {
	engine    *insights.Engine
	executor  *insights.Executor
	advisor   *chat.Advisor
	templates *template.Template
	log       *zap.Logger
	timeout   time.Duration
	now       func() time.Time
}

type Option func(*Server)

// WithAdvisor enables /api/admin-chat.
func WithAdvisor(a *chat.Advisor) Option {
	return func(s *Server) { s.advisor = a }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTimeout bounds each request's work against the store.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func NewServer(engine *insights.Engine, executor *insights.Executor, opts ...Option) (*Server, error) {
	funcMap := template.FuncMap{
		"upper": func(p insights.Priority) string {
			switch p {
			case insights.PriorityHigh:
				return "HIGH"
			case insights.PriorityMedium:
				return "MEDIUM"
			}
			return "LOW"
		},
		"pct": func(v float64) string {
			return fmt.Sprintf("%.1f%%", v)
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		engine:    engine,
		executor:  executor,
		templates: tmpl,
		log:       zap.NewNop(),
		timeout:   30 * time.Second,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the routed handler, wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /pipeline.svg", s.handlePipeline)
	mux.HandleFunc("GET /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/execute", s.handleExecute)
	mux.HandleFunc("GET /api/kpis", s.handleKPIs)
	mux.HandleFunc("POST /api/admin-chat", s.handleAdminChat)
	return s.logRequests(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting web server", zap.String("addr", "http://localhost"+srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.timeout)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	now := s.now()
	snap, err := s.engine.Snapshot(ctx)
	if err != nil {
		s.log.Error("dashboard snapshot failed", zap.Error(err))
		http.Error(w, unavailableMessage, http.StatusServiceUnavailable)
		return
	}
	found := insights.Evaluate(snap, now, s.engine.Thresholds())

	data := map[string]interface{}{
		"Title":    "Dashboard",
		"Stats":    viz.GenerateDashboardStats(snap, found, now, s.engine.Thresholds()),
		"Summary":  insights.Summarize(found),
		"Insights": found,
	}
	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	err := s.templates.ExecuteTemplate(w, name, data)
	if err != nil {
		s.log.Error("template render failed", zap.String("template", name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	snap, err := s.engine.Snapshot(ctx)
	if err != nil {
		s.log.Error("pipeline snapshot failed", zap.Error(err))
		http.Error(w, unavailableMessage, http.StatusServiceUnavailable)
		return
	}
	svg, err := viz.GeneratePipelineGraph(ctx, snap.Opportunities, graphviz.SVG)
	if err != nil {
		s.log.Error("pipeline render failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write(svg); err != nil {
		s.log.Warn("failed to write response", zap.Error(err))
	}
}

type analyzeResponse struct {
	Insights []insights.Insight `json:"insights"`
	Summary  string             `json:"summary"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	found, err := s.engine.Analyze(ctx, s.now())
	if err != nil {
		s.log.Error("analyze failed", zap.Error(err))
		s.writeError(w, http.StatusServiceUnavailable, unavailableMessage)
		return
	}
	if found == nil {
		found = []insights.Insight{}
	}
	s.writeJSON(w, http.StatusOK, analyzeResponse{Insights: found, Summary: insights.Summarize(found)})
}

type executeRequest struct {
	Kind string `json:"kind"`
}

type executeResponse struct {
	Success   bool                     `json:"success"`
	RunID     string                   `json:"run_id,omitempty"`
	Attempted int                      `json:"attempted"`
	Failures  []insights.RecordFailure `json:"failures"`
	Message   string                   `json:"message,omitempty"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	kind, err := insights.ParseKind(req.Kind)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	found, err := s.engine.Analyze(ctx, s.now())
	if err != nil {
		s.log.Error("analyze before execute failed", zap.Error(err))
		s.writeError(w, http.StatusServiceUnavailable, unavailableMessage)
		return
	}

	resp := executeResponse{Failures: []insights.RecordFailure{}}
	in, ok := insights.Find(found, kind)
	if !ok {
		resp.Message = fmt.Sprintf("no %s insight is active", kind)
		s.writeJSON(w, http.StatusOK, resp)
		return
	}
	if !in.Automated {
		resp.Message = fmt.Sprintf("%s cannot be automated", kind)
		s.writeJSON(w, http.StatusOK, resp)
		return
	}

	report := s.executor.Run(ctx, in)
	resp.Success = report.Success()
	resp.RunID = report.RunID
	resp.Attempted = report.Attempted
	if len(report.Failures) > 0 {
		resp.Failures = report.Failures
		s.log.Warn("automation finished with failures", zap.Error(report.Err()))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	snap, err := s.engine.Snapshot(ctx)
	if err != nil {
		s.log.Error("kpi snapshot failed", zap.Error(err))
		s.writeError(w, http.StatusServiceUnavailable, unavailableMessage)
		return
	}
	s.writeJSON(w, http.StatusOK, insights.ComputeKPIs(snap, s.now(), s.engine.Thresholds()))
}

func (s *Server) handleAdminChat(w http.ResponseWriter, r *http.Request) {
	if s.advisor == nil {
		s.writeError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	resp, err := s.advisor.Respond(ctx, req)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrUnknownAction):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrUnknownKind):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, insights.ErrInsightsUnavailable):
		s.log.Error("admin chat analysis failed", zap.Error(err))
		s.writeError(w, http.StatusServiceUnavailable, unavailableMessage)
	case errors.Is(err, chat.ErrNoCompleter):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.log.Error("admin chat failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to process chat request")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
