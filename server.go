package megasena

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	// DefaultGameCount is used when a generate request names neither budget nor count
	DefaultGameCount = 10

	// MaxUploadSize bounds dataset uploads
	MaxUploadSize = 32 << 20

	// ShutdownTimeout bounds graceful server shutdown
	ShutdownTimeout = 10 * time.Second
)

// Server exposes generation, statistics and dataset management over HTTP
type Server struct {
	generator *Generator
	datasets  *DatasetManager
	config    *ServerConfig
	logger    Logger
	router    chi.Router
}

// NewServer wires the HTTP routes
func NewServer(generator *Generator, datasets *DatasetManager, config *ServerConfig, logger Logger) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	s := &Server{generator: generator, datasets: datasets, config: config, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           60 * 15,
	}))

	r.Route("/api", func(rr chi.Router) {
		rr.Post("/generate-games", s.GenerateGames)
		rr.Post("/export-games", s.ExportGames)
		rr.Get("/summary", s.Summary)
		rr.Get("/statistics", s.Statistics)
		rr.Get("/delayed-numbers", s.DelayedNumbers)
		rr.Get("/database-status", s.DatabaseStatus)
		rr.Post("/upload-database", s.UploadDatabase)
		rr.Delete("/delete-database", s.DeleteDatabase)
		rr.Get("/metrics", s.Metrics)
	})
	return r
}

// Handler returns the router
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening on %s", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		s.logger.Info("HTTP server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("%s %s -> %d in %v [%s]",
			r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}

// ================================================================================

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// statusFor maps typed failures onto HTTP status codes
func statusFor(err error) int {
	switch {
	case IsClientError(err), errors.Is(err, ErrDatasetCorrupted):
		return http.StatusBadRequest
	case errors.Is(err, ErrDatasetNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s failed: %v", r.Method, r.URL.Path, err)
	}
	writeDetail(w, status, err.Error())
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrInvalidParameter.WithDetailsf("query parameter %s must be an integer, got %q", name, raw)
	}
	return v, nil
}

// ================================================================================

type generateGamesRequest struct {
	AnalysisRange       string   `json:"analysis_range"`
	NumbersPerGame      int      `json:"numbers_per_game"`
	Strategy            string   `json:"strategy"`
	Budget              *float64 `json:"budget"`
	GameCount           *int     `json:"game_count"`
	FixedNumbers        []int    `json:"fixed_numbers"`
	SuppressedQuadrants []string `json:"suppressed_quadrants"`
}

// GenerateGames handles POST /api/generate-games
func (s *Server) GenerateGames(w http.ResponseWriter, r *http.Request) {
	history, err := s.datasets.Require()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	defaultCount := DefaultGameCount
	payload := generateGamesRequest{
		AnalysisRange:  AllDraws,
		NumbersPerGame: MinNumbersPerGame,
		GameCount:      &defaultCount,
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	count, err := ResolveGameCount(payload.Budget, payload.GameCount, payload.NumbersPerGame)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if count == 0 {
		writeJSON(w, http.StatusOK, [][]int{})
		return
	}

	strategy, err := ParseStrategy(payload.Strategy)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.generator.GenerateGames(history, GenerateRequest{
		Strategy:            strategy,
		NumGames:            count,
		NumbersPerGame:      payload.NumbersPerGame,
		Range:               ParseAnalysisRange(payload.AnalysisRange),
		FixedNumbers:        payload.FixedNumbers,
		SuppressedQuadrants: payload.SuppressedQuadrants,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Numbers())
}

type exportGamesRequest struct {
	Games [][]int `json:"games"`
}

// ExportGames handles POST /api/export-games?format=csv
func (s *Server) ExportGames(w http.ResponseWriter, r *http.Request) {
	var payload exportGamesRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format != "csv" {
		writeDetail(w, http.StatusBadRequest, "unsupported export format "+strconv.Quote(format)+", use csv")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=jogos_gerados.csv")
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	for _, game := range payload.Games {
		row := make([]string, len(game))
		for i, n := range game {
			row[i] = strconv.Itoa(n)
		}
		if err := cw.Write(row); err != nil {
			s.logger.Error("export aborted: %v", err)
			return
		}
	}
	cw.Flush()
}

// Summary handles GET /api/summary
func (s *Server) Summary(w http.ResponseWriter, r *http.Request) {
	history, err := s.datasets.Require()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := history.Summary()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Statistics handles GET /api/statistics?last_n=
func (s *Server) Statistics(w http.ResponseWriter, r *http.Request) {
	history, err := s.datasets.Require()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	lastN, err := queryInt(r, "last_n", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	stats, err := history.Statistics(lastN)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// DelayedNumbers handles GET /api/delayed-numbers?count=&analysis_range=
func (s *Server) DelayedNumbers(w http.ResponseWriter, r *http.Request) {
	history, err := s.datasets.Require()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	count, err := queryInt(r, "count", DefaultDelayedCount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rangeParam := r.URL.Query().Get("analysis_range")
	if rangeParam == "" {
		rangeParam = AllDraws
	}

	report, err := history.DelayedNumbers(ParseAnalysisRange(rangeParam), count)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// DatabaseStatus handles GET /api/database-status
func (s *Server) DatabaseStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.datasets.Status())
}

// UploadDatabase handles POST /api/upload-database with a multipart "file"
func (s *Server) UploadDatabase(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "missing upload field \"file\": "+err.Error())
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		writeDetail(w, http.StatusBadRequest, "invalid file, upload a .csv results sheet")
		return
	}

	history, err := s.datasets.Replace(r.Context(), file, header.Filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Dataset updated: " + strconv.Itoa(history.Len()) + " draws loaded.",
		"total_draws": history.Len(),
	})
}

// DeleteDatabase handles DELETE /api/delete-database
func (s *Server) DeleteDatabase(w http.ResponseWriter, r *http.Request) {
	if err := s.datasets.Delete(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Dataset deleted."})
}

// Metrics handles GET /api/metrics
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics := s.generator.PerformanceMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"generation":      metrics,
		"acceptance_rate": metrics.GetAcceptanceRate(),
	})
}
