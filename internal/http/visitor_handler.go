package http

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/countdown"
)

// Countdown loads a visitor's promotional deadline.
type Countdown interface {
	Load(ctx context.Context, visitorID string) (countdown.Status, error)
}

type VisitorHandler struct {
	tracker   Tracker
	countdown Countdown
	timeout   time.Duration
}

func NewVisitorHandler(tracker Tracker, countdown Countdown, timeout time.Duration) *VisitorHandler {
	return &VisitorHandler{
		tracker:   tracker,
		countdown: countdown,
		timeout:   timeout,
	}
}

type IdentifyRequestDTO struct {
	Email string `json:"email"`
}

type IdentifyResponse struct {
	HashedEmail string `json:"hashed_email"`
}

// Identify caches the visitor's hashed email for later tracking events.
func (h *VisitorHandler) Identify(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req IdentifyRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		respondError(w, http.StatusBadRequest, "invalid_email", "email is required")
		return
	}

	hashed, err := h.tracker.Identify(ctx, getVisitorID(r.Context()), req.Email)
	if err != nil {
		log.Printf("[%s] identify error: %v \n", getRequestID(r.Context()), err)
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "please try again later")
		return
	}
	respondJSON(w, http.StatusOK, IdentifyResponse{HashedEmail: hashed})
}

func (h *VisitorHandler) Countdown(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status, err := h.countdown.Load(ctx, getVisitorID(r.Context()))
	if err != nil {
		log.Printf("[%s] countdown error: %v \n", getRequestID(r.Context()), err)
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "please try again later")
		return
	}
	respondJSON(w, http.StatusOK, status)
}
