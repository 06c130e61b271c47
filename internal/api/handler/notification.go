package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/api"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/service"
)

// NotificationHandler handles notification requests
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// HandleNotifications routes notification requests for the authenticated
// staff member
// Paths: /notifications (GET), /notifications/unread (GET),
// /notifications/unread/count (GET), /notifications/read-all (PUT),
// /notifications/{id}/read (PUT)
func (h *NotificationHandler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	staffID, ok := currentStaffID(r)
	if !ok {
		http.Error(w, "Staff ID not found in context", http.StatusInternalServerError)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/notifications")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r, staffID)

	case path == "unread":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.listUnread(w, r, staffID)

	case path == "unread/count":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.countUnread(w, r, staffID)

	case path == "read-all":
		if r.Method != http.MethodPut {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.markAllRead(w, r, staffID)

	case strings.HasSuffix(path, "/read"):
		if r.Method != http.MethodPut {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		idStr := strings.TrimSuffix(path, "/read")
		id, err := uuid.Parse(idStr)
		if err != nil {
			api.BadRequest(w, "Invalid notification ID")
			return
		}
		h.markRead(w, r, staffID, id)

	default:
		http.Error(w, "Invalid path", http.StatusBadRequest)
	}
}

func (h *NotificationHandler) list(w http.ResponseWriter, r *http.Request, staffID uuid.UUID) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	notifications, err := h.notifications.ListByStaff(r.Context(), staffID, limit)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	respondJSON(w, notifications)
}

func (h *NotificationHandler) listUnread(w http.ResponseWriter, r *http.Request, staffID uuid.UUID) {
	notifications, err := h.notifications.ListUnread(r.Context(), staffID)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	respondJSON(w, notifications)
}

func (h *NotificationHandler) countUnread(w http.ResponseWriter, r *http.Request, staffID uuid.UUID) {
	count, err := h.notifications.CountUnread(r.Context(), staffID)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	respondJSON(w, struct {
		Count int `json:"count"`
	}{Count: count})
}

func (h *NotificationHandler) markAllRead(w http.ResponseWriter, r *http.Request, staffID uuid.UUID) {
	updated, err := h.notifications.MarkAllRead(r.Context(), staffID)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	respondJSON(w, struct {
		Updated int64 `json:"updated"`
	}{Updated: updated})
}

func (h *NotificationHandler) markRead(w http.ResponseWriter, r *http.Request, staffID, id uuid.UUID) {
	if err := h.notifications.MarkRead(r.Context(), id, staffID); err != nil {
		api.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
