// internal/router/router.go
package router

import (
	"encoding/json"
	"net/http"

	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/api/handler"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/db"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/metrics"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/middleware"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/models"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/service"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/websockets"
)

// Services bundles the services the router exposes over HTTP.
type Services struct {
	Kitchen       *service.KitchenService
	Timers        *service.TimerService
	Capacity      *service.CapacityService
	Notifications *service.NotificationService
	Auth          *service.AuthService
}

// Router handles HTTP routing
type Router struct {
	mux      *http.ServeMux
	database *db.Postgres
	services Services
	hub      *websockets.Hub
	metrics  *metrics.Collector
}

// New creates a new router
func New(database *db.Postgres, services Services, hub *websockets.Hub, collector *metrics.Collector) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		database: database,
		services: services,
		hub:      hub,
		metrics:  collector,
	}

	r.setupRoutes()

	return r
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// setupRoutes sets up the routes for the router
func (r *Router) setupRoutes() {
	// Public routes
	r.mux.Handle("/api/auth/login", http.HandlerFunc(r.handleLogin))
	r.mux.Handle("/ws", http.HandlerFunc(r.handleWebSocket))
	r.mux.Handle("/health", http.HandlerFunc(r.handleHealth))
	r.mux.Handle("/metrics", r.metrics.Handler())

	kitchen := handler.NewKitchenHandler(r.services.Kitchen, r.services.Timers, r.services.Capacity, r.hub)
	notifications := handler.NewNotificationHandler(r.services.Notifications)

	// Protected routes
	apiHandler := http.NewServeMux()
	apiHandler.Handle("/kitchen/queue", http.HandlerFunc(kitchen.HandleQueue))
	apiHandler.Handle("/kitchen/active", http.HandlerFunc(kitchen.HandleActive))
	apiHandler.Handle("/kitchen/overdue", http.HandlerFunc(kitchen.HandleOverdue))
	apiHandler.Handle("/kitchen/capacity", http.HandlerFunc(kitchen.HandleCapacity))
	apiHandler.Handle("/kitchen/stations/", http.HandlerFunc(kitchen.HandleStations))
	apiHandler.Handle("/kitchen/timers/", http.HandlerFunc(kitchen.HandleTimers))
	apiHandler.Handle("/kitchen/orders", http.HandlerFunc(kitchen.HandleOrders))
	apiHandler.Handle("/kitchen/orders/", http.HandlerFunc(kitchen.HandleOrders))
	apiHandler.Handle("/notifications", http.HandlerFunc(notifications.HandleNotifications))
	apiHandler.Handle("/notifications/", http.HandlerFunc(notifications.HandleNotifications))

	// Apply middleware to protected routes
	apiChain := middleware.Logger(
		middleware.Auth(r.services.Auth)(
			apiHandler,
		),
	)

	r.mux.Handle("/api/", http.StripPrefix("/api", apiChain))
}

// handleLogin handles staff login
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var loginReq struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(req.Body).Decode(&loginReq); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, staff, err := r.services.Auth.Login(req.Context(), loginReq.Username, loginReq.Password)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	response := struct {
		Token string       `json:"token"`
		Staff models.Staff `json:"staff"`
	}{
		Token: token,
		Staff: *staff,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleWebSocket handles WebSocket connections
func (r *Router) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	staffID := req.URL.Query().Get("staff_id")
	if staffID == "" {
		http.Error(w, "staff_id is required", http.StatusBadRequest)
		return
	}

	clientTypeStr := req.URL.Query().Get("client_type")
	if clientTypeStr == "" {
		http.Error(w, "client_type is required", http.StatusBadRequest)
		return
	}

	clientType := websockets.ClientType(clientTypeStr)

	switch clientType {
	case websockets.ClientTypeKDS, websockets.ClientTypePOS, websockets.ClientTypeAdmin,
		websockets.ClientTypeDisplay:
		// Valid client type
	default:
		http.Error(w, "invalid client_type", http.StatusBadRequest)
		return
	}

	conn, err := websockets.Upgrader.Upgrade(w, req, nil)
	if err != nil {
		// If upgrading fails, the upgrader has already written the error to the response
		return
	}

	websockets.ServeWs(r.hub, conn, staffID, clientType)
}

// handleHealth reports service and database health
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	if r.database != nil {
		if err := r.database.HealthCheck(req.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "degraded", "database": err.Error()})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
