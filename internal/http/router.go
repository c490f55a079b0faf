package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	VisitorCookie      string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

type Handlers struct {
	Products *ProductHandler
	Cart     *CartHandler
	Quiz     *QuizHandler
	Visitor  *VisitorHandler
	Contact  *ContactHandler
}

func NewRouter(cfg RouterConfig, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(VisitorMiddleware(cfg.VisitorCookie))

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/products", h.Products.List)
			r.Get("/products/{product_id}", h.Products.Get)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.GetCart)
				r.Post("/items", h.Cart.AddItem)
				r.Patch("/items/{line_id}", h.Cart.UpdateQuantity)
				r.Delete("/items/{line_id}", h.Cart.RemoveItem)
				r.Post("/open", h.Cart.Open)
				r.Post("/close", h.Cart.Close)
				r.Post("/checkout", h.Cart.Checkout)
			})

			r.Post("/quiz", h.Quiz.Resolve)
			r.Post("/identify", h.Visitor.Identify)
			r.Get("/countdown", h.Visitor.Countdown)
		})

		r.Post("/api/contact", h.Contact.Contact)
		r.Post("/api/subscribe", h.Contact.Subscribe)
	})

	return r
}
