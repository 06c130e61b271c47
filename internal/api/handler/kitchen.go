package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/api"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/middleware"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/models"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/service"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/websockets"
)

// KitchenHandler handles kitchen order and timer requests
type KitchenHandler struct {
	kitchen  *service.KitchenService
	timers   *service.TimerService
	capacity *service.CapacityService
	hub      *websockets.Hub
}

// NewKitchenHandler creates a new kitchen handler
func NewKitchenHandler(kitchen *service.KitchenService, timers *service.TimerService, capacity *service.CapacityService, hub *websockets.Hub) *KitchenHandler {
	return &KitchenHandler{
		kitchen:  kitchen,
		timers:   timers,
		capacity: capacity,
		hub:      hub,
	}
}

// HandleQueue lists queued orders
func (h *KitchenHandler) HandleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orders, err := h.kitchen.Queue(r.Context())
	if err != nil {
		api.WriteError(w, err)
		return
	}

	respondJSON(w, orders)
}

// HandleActive lists orders being worked
func (h *KitchenHandler) HandleActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orders, err := h.kitchen.Active(r.Context())
	if err != nil {
		api.WriteError(w, err)
		return
	}

	respondJSON(w, orders)
}

// HandleOverdue lists orders past their estimate
func (h *KitchenHandler) HandleOverdue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orders, err := h.kitchen.Overdue(r.Context())
	if err != nil {
		api.WriteError(w, err)
		return
	}

	respondJSON(w, orders)
}

// HandleCapacity returns the current kitchen-wide capacity snapshot
func (h *KitchenHandler) HandleCapacity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot, err := h.capacity.CurrentCapacity(r.Context())
	if err != nil {
		api.WriteError(w, err)
		return
	}

	respondJSON(w, snapshot)
}

// HandleStations routes workstation requests
// Paths: /kitchen/stations/{id}/capacity (GET), /kitchen/stations/{id}/timers (GET)
func (h *KitchenHandler) HandleStations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/kitchen/stations/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	stationID, err := uuid.Parse(parts[0])
	if err != nil {
		api.BadRequest(w, "Invalid workstation ID")
		return
	}

	switch parts[1] {
	case "capacity":
		capacity, err := h.capacity.StationCapacity(r.Context(), stationID)
		if err != nil {
			api.WriteError(w, err)
			return
		}
		respondJSON(w, capacity)

	case "timers":
		timers, err := h.timers.WorkstationTimers(r.Context(), stationID)
		if err != nil {
			api.WriteError(w, err)
			return
		}
		respondJSON(w, timers)

	default:
		http.Error(w, "Invalid path", http.StatusBadRequest)
	}
}

// HandleOrders routes kitchen order requests
// Paths: /kitchen/orders (POST), /kitchen/orders/{orderId} (GET),
// /kitchen/orders/{orderId}/{action} (POST/PUT)
func (h *KitchenHandler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/kitchen/orders")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.acceptOrder(w, r)
		return
	}

	parts := strings.Split(path, "/")
	orderID, err := uuid.Parse(parts[0])
	if err != nil {
		api.BadRequest(w, "Invalid order ID")
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.getOrder(w, r, orderID)
		return
	}

	switch parts[1] {
	case "start":
		h.startPreparing(w, r, orderID)
	case "complete":
		h.completeOrder(w, r, orderID)
	case "pause":
		h.pauseOrder(w, r, orderID)
	case "resume":
		h.resumeOrder(w, r, orderID)
	case "cancel":
		h.cancelOrder(w, r, orderID)
	case "served":
		h.markServed(w, r, orderID)
	case "priority":
		h.updatePriority(w, r, orderID)
	case "timer":
		h.handleTimer(w, r, orderID)
	default:
		http.Error(w, "Invalid path", http.StatusBadRequest)
	}
}

func (h *KitchenHandler) acceptOrder(w http.ResponseWriter, r *http.Request) {
	var req models.KitchenOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.kitchen.AcceptOrder(r.Context(), req)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	h.broadcastKitchenUpdate(websockets.TypeKitchenOrderNew, order.OrderID.String())

	w.WriteHeader(http.StatusCreated)
	respondJSON(w, order)
}

func (h *KitchenHandler) getOrder(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) {
	order, err := h.kitchen.GetOrder(r.Context(), orderID)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	respondJSON(w, order)
}

func (h *KitchenHandler) startPreparing(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ItemCount int `json:"item_count"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.ItemCount < 1 {
		req.ItemCount = 1
	}

	staffID, ok := currentStaffID(r)
	if !ok {
		http.Error(w, "Staff ID not found in context", http.StatusInternalServerError)
		return
	}

	order, err := h.kitchen.StartPreparing(r.Context(), orderID, staffID, req.ItemCount)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	h.broadcastKitchenUpdate(websockets.TypeKitchenOrderUpdate, orderID.String())

	respondJSON(w, order)
}

func (h *KitchenHandler) completeOrder(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	staffID, ok := currentStaffID(r)
	if !ok {
		http.Error(w, "Staff ID not found in context", http.StatusInternalServerError)
		return
	}

	order, err := h.kitchen.Complete(r.Context(), orderID, staffID)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	h.broadcastKitchenUpdate(websockets.TypeKitchenOrderUpdate, orderID.String())

	respondJSON(w, order)
}

func (h *KitchenHandler) pauseOrder(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "Invalid request body")
		return
	}

	staffID, ok := currentStaffID(r)
	if !ok {
		http.Error(w, "Staff ID not found in context", http.StatusInternalServerError)
		return
	}

	order, err := h.kitchen.Pause(r.Context(), orderID, staffID, req.Reason)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	h.broadcastKitchenUpdate(websockets.TypeKitchenOrderUpdate, orderID.String())

	respondJSON(w, order)
}

func (h *KitchenHandler) resumeOrder(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	order, err := h.kitchen.Resume(r.Context(), orderID)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	h.broadcastKitchenUpdate(websockets.TypeKitchenOrderUpdate, orderID.String())

	respondJSON(w, order)
}

func (h *KitchenHandler) cancelOrder(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "Invalid request body")
		return
	}

	staffID, ok := currentStaffID(r)
	if !ok {
		http.Error(w, "Staff ID not found in context", http.StatusInternalServerError)
		return
	}

	order, err := h.kitchen.Cancel(r.Context(), orderID, staffID, req.Reason)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	h.broadcastKitchenUpdate(websockets.TypeKitchenOrderUpdate, orderID.String())

	respondJSON(w, order)
}

func (h *KitchenHandler) markServed(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	order, err := h.kitchen.MarkServed(r.Context(), orderID)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	h.broadcastKitchenUpdate(websockets.TypeKitchenOrderUpdate, orderID.String())

	respondJSON(w, order)
}

func (h *KitchenHandler) updatePriority(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Priority int `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "Invalid request body")
		return
	}

	order, err := h.kitchen.UpdatePriority(r.Context(), orderID, req.Priority)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	h.broadcastKitchenUpdate(websockets.TypeKitchenOrderUpdate, orderID.String())

	respondJSON(w, order)
}

// HandleTimers routes timer requests addressed by order
// Paths: /kitchen/timers/{orderId} (GET/PUT)
func (h *KitchenHandler) HandleTimers(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/kitchen/timers/")

	orderID, err := uuid.Parse(path)
	if err != nil {
		api.BadRequest(w, "Invalid order ID")
		return
	}

	h.handleTimer(w, r, orderID)
}

// handleTimer reads or re-estimates the cooking timer for an order
func (h *KitchenHandler) handleTimer(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) {
	switch r.Method {
	case http.MethodGet:
		timer, err := h.timers.GetTimer(r.Context(), orderID)
		if err != nil {
			api.WriteError(w, err)
			return
		}
		respondJSON(w, timer)

	case http.MethodPut:
		var req struct {
			MinutesRemaining int    `json:"minutes_remaining"`
			Notes            string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.BadRequest(w, "Invalid request body")
			return
		}

		timer, err := h.timers.UpdateEstimate(r.Context(), orderID, req.MinutesRemaining, req.Notes)
		if err != nil {
			api.WriteError(w, err)
			return
		}

		h.broadcastKitchenUpdate(websockets.TypeTimerUpdate, orderID.String())

		respondJSON(w, timer)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// broadcastKitchenUpdate pushes an update marker to all connected clients
func (h *KitchenHandler) broadcastKitchenUpdate(updateType websockets.MessageType, id string) {
	if h.hub == nil {
		return
	}

	data, err := json.Marshal(struct {
		ID string `json:"id"`
	}{ID: id})
	if err != nil {
		return
	}

	message, err := json.Marshal(websockets.Message{Type: updateType, Data: data})
	if err != nil {
		return
	}

	h.hub.BroadcastMessage(message)
}

// currentStaffID resolves the authenticated staff member from the request
func currentStaffID(r *http.Request) (uuid.UUID, bool) {
	idStr, ok := middleware.GetStaffID(r.Context())
	if !ok {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}
