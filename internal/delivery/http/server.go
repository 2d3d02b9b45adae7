package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/jderrod/Dota2AnalysisTool/internal/application"
)

type Server struct {
	services   *application.Service
	logger     application.Logger
	httpServer *http.Server
}

func NewServer(port string, services *application.Service, logger application.Logger) *Server {
	s := &Server{
		services: services,
		logger:   logger,
	}

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api.HandleFunc("/matches", s.handleGetMatches).Methods(http.MethodGet)
	api.HandleFunc("/matches/{match_id:[0-9]+}", s.handleGetMatch).Methods(http.MethodGet)
	api.HandleFunc("/teams", s.handleGetTeams).Methods(http.MethodGet)
	api.HandleFunc("/heroes", s.handleGetHeroes).Methods(http.MethodGet)
	api.HandleFunc("/leagues", s.handleGetLeagues).Methods(http.MethodGet)

	api.HandleFunc("/stats/teams", s.handleGetTeamStats).Methods(http.MethodGet)
	api.HandleFunc("/stats/heroes", s.handleGetHeroStats).Methods(http.MethodGet)
	api.HandleFunc("/stats/export", s.handleExportStats).Methods(http.MethodGet)

	api.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/refresh/status", s.handleRefreshStatus).Methods(http.MethodGet)

	// the desktop frontend runs from a different origin
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      c.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // refresh runs inside the request
	}
	return s
}

// Handler exposes the configured root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Run() error {
	s.logger.Info("HTTP API listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
