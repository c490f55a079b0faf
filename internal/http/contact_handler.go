package http

import (
	"context"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/contact"
)

type ContactService interface {
	Submit(ctx context.Context, visitorID, clientIP string, msg contact.Message) error
	Subscribe(ctx context.Context, visitorID, email, source string) (bool, error)
}

type ContactHandler struct {
	service ContactService
	timeout time.Duration
}

func NewContactHandler(service ContactService, timeout time.Duration) *ContactHandler {
	return &ContactHandler{
		service: service,
		timeout: timeout,
	}
}

type ContactRequestDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type SubscribeRequestDTO struct {
	Email  string `json:"email"`
	Source string `json:"source"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *ContactHandler) Contact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ContactRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.service.Submit(ctx, getVisitorID(r.Context()), clientIP(r), contact.Message{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		handleContactError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Thanks for reaching out! We'll get back to you soon."})
}

func (h *ContactHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SubscribeRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.service.Subscribe(ctx, getVisitorID(r.Context()), req.Email, req.Source)
	if err != nil {
		handleContactError(w, r, err)
		return
	}
	if !created {
		respondJSON(w, http.StatusOK, MessageResponse{Message: "You're already subscribed."})
		return
	}
	respondJSON(w, http.StatusCreated, MessageResponse{Message: "You're subscribed!"})
}

func handleContactError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *contact.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, "invalid_"+verr.Field, verr.Message)
	case errors.Is(err, contact.ErrRateLimited):
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(err)))
		respondError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many messages. Please try again later.")
	default:
		log.Printf("[%s] contact error: %v \n", getRequestID(r.Context()), err)
		respondError(w, http.StatusInternalServerError, "internal_error", "Something went wrong. Please try again.")
	}
}

// retryAfterSeconds rounds the limiter's wait up to whole seconds, at least one.
func retryAfterSeconds(err error) int {
	var limited *contact.RateLimitError
	if !errors.As(err, &limited) {
		return 1
	}
	return max(1, int(math.Ceil(limited.RetryAfter.Seconds())))
}
