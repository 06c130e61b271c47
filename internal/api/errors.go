package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/service"
)

func BadRequest(w http.ResponseWriter, message string) {
	http.Error(w, message, http.StatusBadRequest)
}

// WriteError maps domain errors to client responses. Invalid transitions and
// stale versions are conflicts, missing entities are 404s, and anything else
// is an opaque infrastructure failure that gets logged, not leaked.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case service.IsInvalidTransition(err):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrVersionConflict):
		http.Error(w, "resource was modified concurrently, retry", http.StatusConflict)
	default:
		log.Printf("internal error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
