package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"price-tracker/adapters"
	"price-tracker/extractor"
	"price-tracker/internal/logging"
	"price-tracker/internal/types"
	"price-tracker/store"
)

// Reporter runs a search with per-site detail
type Reporter interface {
	SearchReport(ctx context.Context, query string) (types.SearchResult, error)
}

// HistoryStore persists observations and answers history lookups
type HistoryStore interface {
	SaveAll(ctx context.Context, records []types.Record) (int, error)
	History(ctx context.Context, nameQuery string) ([]types.Observation, error)
}

// APIResponse represents the response from the API
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Saved   int         `json:"saved,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Server holds the API dependencies
type Server struct {
	logger   *logrus.Logger
	searcher Reporter
	store    HistoryStore
}

// NewServer creates a new API server
func NewServer(searcher Reporter, store HistoryStore, logger *logrus.Logger) *Server {
	return &Server{
		logger:   logger,
		searcher: searcher,
		store:    store,
	}
}

// Router builds the gin engine with all routes
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.handleHealth)
	api := r.Group("/api")
	{
		api.GET("/search", s.handleSearch)
		api.GET("/history", s.handleHistory)
	}
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Info("request")
	}
}

// handleSearch runs a search, persists the valid records and returns the report
func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("q")
	result, err := s.searcher.SearchReport(c.Request.Context(), query)
	if errors.Is(err, extractor.ErrEmptyQuery) {
		c.JSON(http.StatusBadRequest, APIResponse{Error: "query parameter q is required"})
		return
	}
	if err != nil {
		s.logger.Errorf("Search %q failed: %v", query, err)
		c.JSON(http.StatusInternalServerError, APIResponse{Error: "search failed"})
		return
	}

	saved, err := s.store.SaveAll(c.Request.Context(), result.AllRecords())
	if err != nil {
		s.logger.Errorf("Failed to save results for %q: %v", query, err)
		c.JSON(http.StatusInternalServerError, APIResponse{Error: "failed to save price history"})
		return
	}

	c.JSON(http.StatusOK, APIResponse{Success: true, Data: result, Saved: saved})
}

// handleHistory returns stored observations matching the name parameter
func (s *Server) handleHistory(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, APIResponse{Error: "query parameter name is required"})
		return
	}

	history, err := s.store.History(c.Request.Context(), name)
	if err != nil {
		s.logger.Errorf("History %q failed: %v", name, err)
		c.JSON(http.StatusInternalServerError, APIResponse{Error: "failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, APIResponse{Success: true, Data: history})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func main() {
	_ = godotenv.Load()

	config := types.DefaultConfig()
	types.ApplyEnv(config)

	logger, logCloser, err := logging.New(logging.Options{
		File:  config.LogFile,
		Level: os.Getenv("LOG_LEVEL"),
	})
	if err != nil {
		logrus.Fatal(err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, config.DBPath)
	if err != nil {
		logger.Fatalf("Failed to open price history: %v", err)
	}
	defer db.Close()

	ext := extractor.NewExtractor(adapters.All(config, logger), logger)
	defer ext.Close()

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: NewServer(ext, db, logger).Router(),
	}

	go func() {
		logger.Infof("Starting API server on port %s", port)
		logger.Info("  GET /api/search?q=   - Search all sites and record prices")
		logger.Info("  GET /api/history?name= - Price history by name substring")
		logger.Info("  GET /health          - Health check")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server Shutdown: %v", err)
	}
}
