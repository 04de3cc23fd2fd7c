package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"attentionos/internal/analytics"
	"attentionos/internal/analytics/models"
	"attentionos/pkg/logger"
)

// AnalyticsHandler handles analytics-related HTTP requests
type AnalyticsHandler struct {
	service     *analytics.Service
	onChange    func()
	healthCheck func(ctx context.Context) error
	logger      *logger.ColoredLogger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.APILogger,
	}
}

// SetChangeHook registers fn to run after a session is stored
func (h *AnalyticsHandler) SetChangeHook(fn func()) {
	h.onChange = fn
}

// SetHealthCheck registers a dependency check for /api/health
func (h *AnalyticsHandler) SetHealthCheck(fn func(ctx context.Context) error) {
	h.healthCheck = fn
}

// RegisterRoutes registers all analytics routes
func (h *AnalyticsHandler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.requestMiddleware)

	api.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	// Sessions
	api.HandleFunc("/sessions", h.listSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions", h.createSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id:[0-9]+}", h.getSession).Methods(http.MethodGet)

	// Derived metrics
	api.HandleFunc("/stats", h.getStats).Methods(http.MethodGet)
	api.HandleFunc("/grade", h.getGrade).Methods(http.MethodGet)
	api.HandleFunc("/streak", h.getStreak).Methods(http.MethodGet)
	api.HandleFunc("/trend", h.getTrend).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", h.getDashboard).Methods(http.MethodGet)

	// Achievements
	api.HandleFunc("/achievements", h.listAchievements).Methods(http.MethodGet)
	api.HandleFunc("/achievements/unlocked", h.listUnlocked).Methods(http.MethodGet)

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.sendError(w, "Not found", http.StatusNotFound)
	})
	// Preflight requests reach a known path with an unregistered method
	api.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			h.handlePreflight(w, r)
			return
		}
		h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
}

// requestMiddleware tags each request with an id and logs its outcome
func (h *AnalyticsHandler) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		h.logger.Debug("%s %s -> %d in %v [%s]", r.Method, r.URL.Path, rec.status, time.Since(start), requestID)
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

func (h *AnalyticsHandler) handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
	w.WriteHeader(http.StatusNoContent)
}

func (h *AnalyticsHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := struct {
		Status    string    `json:"status"`
		Service   string    `json:"service"`
		Timestamp time.Time `json:"timestamp"`
	}{
		Status:    "ok",
		Service:   "attentionos-analytics",
		Timestamp: time.Now(),
	}

	if h.healthCheck != nil {
		if err := h.healthCheck(r.Context()); err != nil {
			h.logger.Warn("Health check failed: %v", err)
			h.sendError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}

	h.sendJSON(w, response)
}

// Session endpoints

func (h *AnalyticsHandler) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.Sessions(r.Context())
	if err != nil {
		h.sendServiceError(w, err)
		return
	}
	h.sendJSON(w, sessions)
}

func (h *AnalyticsHandler) getSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		h.sendError(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	session, unlocked, err := h.service.SessionAchievements(r.Context(), id)
	if err != nil {
		h.sendServiceError(w, err)
		return
	}

	h.sendJSON(w, struct {
		Session      models.Session                 `json:"session"`
		Achievements []models.AchievementDefinition `json:"achievements"`
	}{
		Session:      session,
		Achievements: unlocked,
	})
}

func (h *AnalyticsHandler) createSession(w http.ResponseWriter, r *http.Request) {
	var rec models.SessionRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		h.sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	session, err := h.service.AddSession(r.Context(), rec)
	if err != nil {
		h.sendServiceError(w, err)
		return
	}

	h.logger.Info("Session %d stored via API", session.ID)
	if h.onChange != nil {
		h.onChange()
	}

	w.Header().Set("Location", "/api/sessions/"+strconv.Itoa(session.ID))
	h.sendJSONStatus(w, session, http.StatusCreated)
}

// Derived metric endpoints

func (h *AnalyticsHandler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.sendServiceError(w, err)
		return
	}
	h.sendJSON(w, stats)
}

func (h *AnalyticsHandler) getGrade(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Grade(r.Context())
	if err != nil {
		h.sendServiceError(w, err)
		return
	}
	h.sendJSON(w, report)
}

func (h *AnalyticsHandler) getStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := h.service.Streak(r.Context())
	if err != nil {
		h.sendServiceError(w, err)
		return
	}
	h.sendJSON(w, map[string]int{"streak": streak})
}

func (h *AnalyticsHandler) getTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.service.Trend(r.Context())
	if err != nil {
		h.sendServiceError(w, err)
		return
	}
	h.sendJSON(w, trend)
}

func (h *AnalyticsHandler) getDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.sendServiceError(w, err)
		return
	}
	h.sendJSON(w, dashboard)
}

// Achievement endpoints

func (h *AnalyticsHandler) listAchievements(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, h.service.Engine().Catalog().Definitions())
}

func (h *AnalyticsHandler) listUnlocked(w http.ResponseWriter, r *http.Request) {
	unlocked, err := h.service.Unlocked(r.Context())
	if err != nil {
		h.sendServiceError(w, err)
		return
	}
	h.sendJSON(w, unlocked)
}

// Helper methods

func (h *AnalyticsHandler) sendServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analytics.ErrSessionNotFound):
		h.sendError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, analytics.ErrInvalidSession):
		h.sendError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, analytics.ErrReadOnlySource):
		h.sendError(w, err.Error(), http.StatusNotImplemented)
	case errors.Is(err, analytics.ErrSessionExists):
		h.sendError(w, "Session id already exists", http.StatusConflict)
	default:
		h.logger.Error("Request failed: %v", err)
		h.sendError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *AnalyticsHandler) sendJSON(w http.ResponseWriter, data interface{}) {
	h.sendJSONStatus(w, data, http.StatusOK)
}

func (h *AnalyticsHandler) sendJSONStatus(w http.ResponseWriter, data interface{}, code int) {
	body, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("Failed to encode JSON response: %v", err)
		h.sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)
	w.Write(append(body, '\n'))
}

func (h *AnalyticsHandler) sendError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)

	response := struct {
		Error   string    `json:"error"`
		Message string    `json:"message"`
		Code    int       `json:"code"`
		Time    time.Time `json:"time"`
	}{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
		Time:    time.Now(),
	}

	json.NewEncoder(w).Encode(response)
}
