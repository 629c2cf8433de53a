// Package api provides the HTTP server for disciplineviz.
//
// It exposes the per-category data endpoint, the server-rendered dashboard
// with its form actions, a JSON view of the dashboard state, chart images
// and WebSocket state broadcasts.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/disciplineviz/internal/config"
	"github.com/seenimoa/disciplineviz/internal/dataset"
	"github.com/seenimoa/disciplineviz/internal/fetch"
	"github.com/seenimoa/disciplineviz/internal/render"
	"github.com/seenimoa/disciplineviz/internal/store"
	"github.com/seenimoa/disciplineviz/internal/viewmodel"
	"github.com/seenimoa/disciplineviz/pkg/models"
	"github.com/seenimoa/disciplineviz/web"
)

// Version is reported by the health endpoints. Set by the CLI.
var Version = "dev"

// Server is the HTTP server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	data     *dataset.Dataset // nil: data endpoint not served
	store    *store.Store     // nil: dashboard not served
	schema   models.TableSchema
	chartCfg render.ChartConfig
	wsHub    *WSHub
	logger   *slog.Logger
	unsub    func()
}

// Option configures a Server.
type Option func(*Server)

// WithDataset serves GET /api/data from d.
func WithDataset(d *dataset.Dataset) Option {
	return func(s *Server) { s.data = d }
}

// WithStore serves the dashboard backed by st.
func WithStore(st *store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithSchema overrides the dashboard table schema.
func WithSchema(schema models.TableSchema) Option {
	return func(s *Server) { s.schema = schema }
}

// NewServer creates a configured server with all routes and middleware.
// Every store state change is broadcast to WebSocket clients.
func NewServer(cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		schema:   viewmodel.DefaultSchema(),
		chartCfg: render.Sized(cfg.Dashboard.ChartWidth, cfg.Dashboard.ChartHeight),
		wsHub:    NewWSHub(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store != nil {
		s.unsub = s.store.Subscribe(func(st store.State) {
			s.wsHub.Broadcast(WSMessage{Type: "state", Data: newStateView(st)})
		})
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Close detaches the server from the store.
func (s *Server) Close() {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
}

// ListenAndServe starts the HTTP server with graceful shutdown. Once the
// listener is open, the dashboard's initial load runs in the background
// when dashboard.load_on_start is set.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	httpSrv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start WebSocket hub
	go s.wsHub.Run()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	s.logger.Info("server listening", "addr", ln.Addr().String())

	if s.store != nil && s.cfg.Dashboard.LoadOnStart {
		go func() {
			if err := s.store.LoadAll(ctx); err != nil && !errors.Is(err, store.ErrStale) {
				s.logger.Warn("initial load failed", "error", err)
			}
		}()
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-done:
	}
	s.logger.Info("shutting down server")
	cancel()
	s.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// Data endpoint
	if s.data != nil {
		r.Get(fetch.DataPath, s.handleData)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Health (also available at /health)
		r.Get("/health", s.handleHealth)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/settings", s.handleGetSettings)

		r.Get("/categories", s.handleCategories)
		r.Get("/schema", s.handleSchema)

		if s.store == nil {
			return
		}

		// Dashboard state
		r.Get("/state", s.handleState)
		r.Get("/chart", s.handleChartRows)
		r.Get("/table", s.handleTable)
		r.Post("/toggle/{category}", s.handleToggleJSON)
		r.Post("/clear", s.handleClearJSON)
		r.Post("/reload", s.handleReloadJSON)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	if s.store != nil {
		s.mountDashboard(r)
	}

	return r
}

// mountDashboard serves the HTML dashboard, its form actions, the chart
// images and the embedded stylesheet.
func (s *Server) mountDashboard(r chi.Router) {
	r.Get("/", s.handleDashboard)
	r.Post("/toggle/{category}", s.handleToggleForm)
	r.Post("/clear", s.handleClearForm)
	r.Post("/reload", s.handleReloadForm)
	r.Get("/chart.svg", s.handleChartSVG)
	r.Get("/chart.png", s.handleChartPNG)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.StaticFS())))
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// StateView is the compact dashboard state sent to WebSocket clients and
// returned by the JSON actions.
type StateView struct {
	Selected []models.Category       `json:"selected"`
	Loading  bool                    `json:"loading"`
	Error    string                  `json:"error,omitempty"`
	Phase    store.Phase             `json:"phase"`
	Title    string                  `json:"title,omitempty"`
	Counts   map[models.Category]int `json:"counts"`
	Rows     int                     `json:"rows"`
}

func newStateView(st store.State) StateView {
	v := StateView{
		Selected: st.Selected,
		Loading:  st.Loading,
		Error:    st.Err,
		Phase:    st.Phase,
		Counts:   make(map[models.Category]int, len(st.Data)),
		Rows:     viewmodel.RowCount(st),
	}
	if v.Selected == nil {
		v.Selected = []models.Category{}
	}
	if len(st.Selected) > 0 {
		v.Title = viewmodel.Title(st)
	}
	for c, recs := range st.Data {
		v.Counts[c] = len(recs)
	}
	return v
}

// CategoryInfo describes one fixed category.
type CategoryInfo struct {
	Name     models.Category `json:"name"`
	SubGroup string          `json:"subgroup"`
	Color    string          `json:"color"`
	Selected bool            `json:"selected"`
}

// ============================================================
// Handlers: health and data endpoint
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"status":    "ok",
		"message":   "API is running",
		"version":   Version,
		"time":      time.Now().UTC().Format(time.RFC3339),
		"ws_client": s.wsHub.ClientCount(),
	}
	if s.data != nil {
		data["rows"] = s.data.Len()
		data["cached_queries"] = s.data.CachedQueries()
	}
	if s.store != nil {
		data["phase"] = s.store.Snapshot().Phase
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

// handleData answers GET /api/data?category=... with the bare record array.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("category") {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}
	recs := s.data.Query(models.Category(q.Get("category")))
	writeJSON(w, http.StatusOK, recs)
}

// ============================================================
// Handlers: dashboard JSON
// ============================================================

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	var st store.State
	if s.store != nil {
		st = s.store.Snapshot()
	}
	cats := models.AllCategories()
	out := make([]CategoryInfo, len(cats))
	for i, c := range cats {
		out[i] = CategoryInfo{
			Name:     c,
			SubGroup: c.SubGroup(),
			Color:    c.Color(),
			Selected: st.IsSelected(c),
		}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: out})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.schema})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.store.Snapshot()})
}

func (s *Server) handleChartRows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: viewmodel.ChartRows(s.store.Snapshot())})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	st := s.store.Snapshot()
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    viewmodel.BuildTable(viewmodel.TableRows(st), s.schema),
	})
}

func (s *Server) handleToggleJSON(w http.ResponseWriter, r *http.Request) {
	c, err := categoryParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err := s.store.Toggle(context.WithoutCancel(r.Context()), c); err != nil {
		writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: newStateView(s.store.Snapshot())})
}

func (s *Server) handleClearJSON(w http.ResponseWriter, r *http.Request) {
	s.store.Clear()
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: newStateView(s.store.Snapshot())})
}

func (s *Server) handleReloadJSON(w http.ResponseWriter, r *http.Request) {
	s.flushDataCache()
	if err := s.store.LoadAll(context.WithoutCancel(r.Context())); err != nil {
		writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: newStateView(s.store.Snapshot())})
}

// ============================================================
// Handlers: HTML dashboard
// ============================================================

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.Dashboard(w, s.store.Snapshot(), s.schema, s.chartCfg); err != nil {
		s.logger.Error("render dashboard", "error", err)
	}
}

// Form actions run detached from the request so a closed tab does not
// abort the fetch; their outcome is recorded in the store either way.
func (s *Server) handleToggleForm(w http.ResponseWriter, r *http.Request) {
	c, err := categoryParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err := s.store.Toggle(context.WithoutCancel(r.Context()), c); err != nil {
		s.logger.Debug("toggle", "category", c, "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleClearForm(w http.ResponseWriter, r *http.Request) {
	s.store.Clear()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleReloadForm(w http.ResponseWriter, r *http.Request) {
	s.flushDataCache()
	if err := s.store.LoadAll(context.WithoutCancel(r.Context())); err != nil {
		s.logger.Debug("reload", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write([]byte(render.BarChart(viewmodel.ChartRows(s.store.Snapshot()), s.chartCfg)))
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	rows := viewmodel.ChartRows(s.store.Snapshot())
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, render.ErrNoRows.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := render.Export(w, rows, s.chartCfg, render.FormatPNG); err != nil {
		s.logger.Error("render chart png", "error", err)
	}
}

// ============================================================
// Helpers
// ============================================================

// flushDataCache makes a reload re-query the dataset instead of serving
// memoised results.
func (s *Server) flushDataCache() {
	if s.data != nil {
		s.data.FlushCache()
	}
}

// categoryParam reads the {category} path segment. Path-escaped names such
// as "Low-income%20students" are accepted.
func categoryParam(r *http.Request) (models.Category, error) {
	raw := chi.URLParam(r, "category")
	name, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("bad category %q: %w", raw, err)
	}
	return models.ParseCategory(name)
}

// writeActionError maps a store action error to a response.
func writeActionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrStale):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrUnknownCategory):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusBadGateway, fetch.Message(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// ============================================================
// WebSocket Hub
// ============================================================

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}
