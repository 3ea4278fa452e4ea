package web

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	"github.com/rentscope/internal/query"
	"github.com/rentscope/internal/web/handlers"
	"github.com/rentscope/internal/web/middleware"
)

// Server represents the dashboard API server
type Server struct {
	config     *Config
	db         *sql.DB
	log        *slog.Logger
	httpServer *http.Server
	router     *mux.Router
}

// NewServer creates a new web server instance
func NewServer(config *Config, log *slog.Logger) (*Server, error) {
	db, err := sql.Open("postgres", config.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(config.Database.MaxConnections)
	db.SetMaxIdleConns(config.Database.MaxConnections / 2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	server := &Server{
		config: config,
		db:     db,
		log:    log,
	}
	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      server.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	store := query.NewStore(s.db)
	metaHandler := &handlers.MetaHandler{Store: store}
	listingsHandler := &handlers.ListingsHandler{Store: store}
	mapsHandler := &handlers.MapsHandler{Store: store}

	api := s.router.PathPrefix("/api").Subrouter()

	// Filter vocabularies
	api.HandleFunc("/meta/cities", metaHandler.GetCities).Methods("GET")
	api.HandleFunc("/meta/room-types", metaHandler.GetRoomTypes).Methods("GET")
	api.HandleFunc("/meta/seasons", metaHandler.GetSeasons).Methods("GET")
	api.HandleFunc("/meta/price-ranges", metaHandler.GetPriceRanges).Methods("GET")
	api.HandleFunc("/meta/accommodates", metaHandler.GetAccommodates).Methods("GET")
	api.HandleFunc("/meta/neighbourhoods", metaHandler.GetNeighbourhoods).Methods("GET")

	// Search surfaces
	api.HandleFunc("/listings", listingsHandler.SearchListings).Methods("GET")
	api.HandleFunc("/recommendations", listingsHandler.SearchRecommendations).Methods("GET")

	// Earnings estimate view
	api.HandleFunc("/neighbourhoods/stats", listingsHandler.GetNeighbourhoodStats).Methods("GET")
	api.HandleFunc("/neighbourhoods/location", listingsHandler.GetNeighbourhoodLocation).Methods("GET")

	// Hotspot map
	api.HandleFunc("/neighbourhoods/geojson", mapsHandler.GetGeometries).Methods("GET")

	s.router.Use(middleware.CORS())
	s.router.Use(middleware.RequestLogging(s.log))

	if s.config.Auth.Enabled {
		api.Use(middleware.APIKey(s.config.Auth.APIKey))
	}
}

// Start runs the server until SIGINT/SIGTERM, then shuts down
// gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		s.log.Info("server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error", "error", err)
		}
	}()

	<-stop
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Error("server shutdown error", "error", err)
	}
	if err := s.db.Close(); err != nil {
		s.log.Error("database close error", "error", err)
	}

	s.log.Info("server stopped")
	return nil
}
