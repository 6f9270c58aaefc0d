package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/config"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/handler"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/middleware"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/repository"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/service"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/websocket"
)

// Server wires repositories, the websocket hub, middleware and routes into
// one http.Server.
type Server struct {
	cfg    *config.Config
	hub    *websocket.Hub
	router *mux.Router
	http   *http.Server
}

func New(cfg *config.Config, db *sql.DB) *Server {
	callRepo := repository.NewCallRepository(db)
	viewerRepo := repository.NewViewerRepository(db)
	authService := service.NewAuthService(viewerRepo, cfg)

	hub := websocket.NewHub()

	callHandler := handler.NewCallHandler(callRepo)
	authHandler := handler.NewAuthHandler(authService)
	liveHandler := handler.NewLiveHandler(hub, callRepo, cfg)

	m := middleware.NewMiddleware(cfg)

	r := mux.NewRouter()
	r.Use(m.RequestLogMiddleware)
	r.Use(m.CORS)
	r.Use(m.RateLimitMiddleware)

	r.HandleFunc("/api/health", handler.Health).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(m.AuthMiddleware)
	api.HandleFunc("/calls", callHandler.GetCalls).Methods("GET", "OPTIONS")
	api.HandleFunc("/stats", callHandler.GetStats).Methods("GET", "OPTIONS")
	api.HandleFunc("/charts", callHandler.GetCharts).Methods("GET", "OPTIONS")
	api.HandleFunc("/customers", callHandler.GetCustomers).Methods("GET", "OPTIONS")

	r.Handle("/ws", m.AuthMiddleware(http.HandlerFunc(liveHandler.Serve))).Methods("GET")

	if cfg.AuthDisabled || cfg.JWTSecret == "" {
		logrus.Warn("Dashboard auth is disabled; all routes are public")
	}

	return &Server{
		cfg:    cfg,
		hub:    hub,
		router: r,
		http: &http.Server{
			Addr:    ":" + cfg.AppPort,
			Handler: r,
			// No WriteTimeout: websocket connections outlive any
			// request deadline.
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Handler exposes the routing table.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the hub and serves HTTP until Shutdown.
func (s *Server) Start() error {
	go s.hub.Run()
	logrus.Infof("Dashboard API listening on :%s", s.cfg.AppPort)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
