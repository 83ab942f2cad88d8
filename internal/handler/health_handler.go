package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"marketplace-api/internal/container"
)

// healthCheckTimeout bounds each dependency probe
const healthCheckTimeout = 2 * time.Second

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{container: container}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
}

// Check handles GET /health. The database is required; Redis only degrades.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Service:   "marketplace-api",
		Checks:    map[string]string{},
	}
	status := http.StatusOK

	if h.container.HasDatabase() {
		if err := probe(r.Context(), h.container.DB.Health); err != nil {
			log.WithError(err).Error("Database health check failed")
			response.Checks["database"] = "unhealthy"
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		} else {
			response.Checks["database"] = "healthy"
		}
	}

	if h.container.HasRedis() {
		if err := probe(r.Context(), h.container.RedisClient.Health); err != nil {
			log.WithError(err).Warn("Redis health check failed")
			response.Checks["redis"] = "unhealthy"
			if response.Status == "healthy" {
				response.Status = "degraded"
			}
		} else {
			response.Checks["redis"] = "healthy"
		}
	} else {
		response.Checks["redis"] = "disabled"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.WithError(err).Error("Failed to encode health check response")
	}
}

func probe(ctx context.Context, check func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return check(ctx)
}
