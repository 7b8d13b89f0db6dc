// Package api exposes the seed finder over HTTP: synchronous and background
// searches, run polling, and persisted results.
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sdv-tools/seed-maker-go/internal/gamedata"
	"github.com/sdv-tools/seed-maker-go/internal/store"
)

// Config is the server configuration, loaded from the environment.
type Config struct {
	Addr         string `env:"SEEDMAKER_ADDR" envDefault:":8080"`
	DBPath       string `env:"SEEDMAKER_DB" envDefault:"seedmaker.db"`
	GameDataPath string `env:"SEEDMAKER_GAMEDATA"`
	Locale       string `env:"SEEDMAKER_LOCALE" envDefault:"en-EN"`
}

// LoadConfig reads the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Server handles HTTP requests.
type Server struct {
	db        store.DB
	data      *gamedata.GameData
	locale    *gamedata.Locale
	logger    *zap.Logger
	metrics   *Metrics
	startTime time.Time

	// runs tracks in-flight background searches; finished runs live only
	// in the store.
	runsMu sync.Mutex
	runs   map[string]*activeRun
}

// NewServer wires a server over the given store and dataset.
func NewServer(db store.DB, data *gamedata.GameData, locale *gamedata.Locale, logger *zap.Logger) *Server {
	return &Server{
		db:        db,
		data:      data,
		locale:    locale,
		logger:    logger,
		metrics:   NewMetrics(),
		startTime: time.Now(),
		runs:      make(map[string]*activeRun),
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)

	r.Get("/health", s.handleHealth)
	r.Method("GET", "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/search/async", s.handleSearchAsync)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/seeds", s.handleRunSeeds)
		r.Get("/predictors", s.handleListPredictors)
	})

	return r
}
