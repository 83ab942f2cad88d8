package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"marketplace-api/internal/container"
	"marketplace-api/internal/metrics"
	"marketplace-api/internal/middleware"
	apperrors "marketplace-api/pkg/errors"
)

// NewRouter configures and returns the HTTP router
func NewRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()
	guard := middleware.Auth(c.Services.Auth, c.Transport, c.Metrics, log)

	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	healthHandler := NewHealthHandler(c)
	authHandler := NewAuthHandler(c)
	productHandler := NewProductHandler(c)
	reviewHandler := NewReviewHandler(c)
	orderHandler := NewOrderHandler(c)

	r.Get("/health", healthHandler.Check)
	r.Handle("/metrics", metrics.Handler(c.Registry))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/sign-up", authHandler.SignUp)
			r.Post("/sign-in", authHandler.SignIn)

			r.Group(func(r chi.Router) {
				r.Use(guard)
				r.Post("/sign-out", authHandler.SignOut)
				r.Get("/me", authHandler.Me)
				r.Patch("/{id}", authHandler.UpdateAccount)
				r.Delete("/{id}", authHandler.DeleteAccount)
			})
		})

		r.Route("/category", func(r chi.Router) {
			r.Get("/", productHandler.ListCategories)
			r.With(guard).Post("/", productHandler.CreateCategory)
		})

		r.Route("/product", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/search", productHandler.Search)
			r.Get("/user/{id}", productHandler.ListByOwner)
			r.Get("/{id}", productHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(guard)
				r.Post("/", productHandler.Create)
				r.Put("/{id}", productHandler.Update)
				r.Put("/{id}/images", productHandler.UpdateImages)
				r.Delete("/{id}", productHandler.Delete)
			})
		})

		r.Route("/review", func(r chi.Router) {
			r.Get("/", reviewHandler.List)
			r.Get("/{reviewId}", reviewHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(guard)
				r.Post("/product/{id}", reviewHandler.Add)
				r.Put("/{reviewId}", reviewHandler.Edit)
				r.Delete("/{reviewId}", reviewHandler.Delete)
			})
		})

		r.Route("/order", func(r chi.Router) {
			r.Use(guard)
			r.Post("/product/{id}", orderHandler.PlaceOrder)
			r.Get("/mine", orderHandler.MyOrders)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = apperrors.WriteJSON(w, apperrors.NewNotFoundError("Endpoint not found"), middleware.RequestIDFromContext(r.Context()))
	})

	log.Info("Router configured successfully")
	return r
}
