package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"attentionos/handlers"
	"attentionos/internal/network"
)

// Server serves the analytics API and the live dashboard feed
type Server struct {
	app        *App
	httpServer *http.Server
	feed       *network.DashboardBroadcaster
	router     *mux.Router
}

// NewServer creates a server for addr backed by a
func NewServer(a *App, addr string) *Server {
	s := &Server{
		app: a,
		feed: network.NewDashboardBroadcaster(a.Service, network.BroadcasterConfig{
			RefreshInterval: a.Config.Analytics.RefreshInterval,
			PingInterval:    a.Config.WebSocket.PingInterval,
			ClientBuffer:    a.Config.WebSocket.ClientBuffer,
		}),
		router: mux.NewRouter(),
	}

	a.onClose(s.feed.Stop)

	analyticsHandler := handlers.NewAnalyticsHandler(a.Service)
	analyticsHandler.SetChangeHook(s.feed.Notify)
	analyticsHandler.SetHealthCheck(a.Health)
	analyticsHandler.RegisterRoutes(s.router)

	s.router.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	s.router.HandleFunc("/ws/dashboard", s.feed.HandleWebSocket)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Feed returns the live dashboard broadcaster
func (s *Server) Feed() *network.DashboardBroadcaster {
	return s.feed
}

// Start starts the dashboard feed and blocks serving HTTP
func (s *Server) Start(ctx context.Context) error {
	s.feed.Start(ctx)
	return s.httpServer.ListenAndServe()
}

// Stop drains HTTP connections and stops the feed
func (s *Server) Stop(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.feed.Stop()
	return err
}

// handleHome handles the home page
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"name":    "AttentionOS Analytics",
		"version": "0.1.0",
		"status":  "running",
		"source":  s.app.Config.Source.Kind,
		"clients": s.feed.GetClientCount(),
	})
}
