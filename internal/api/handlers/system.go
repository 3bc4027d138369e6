package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/sightline/internal/queue"
	"github.com/your-org/sightline/internal/storage"
)

const apiVersion = "1.0.0"

type SystemHandler struct {
	store     *storage.Store
	snapshots *storage.SnapshotStore
	producer  *queue.Producer
}

func NewSystemHandler(store *storage.Store, snapshots *storage.SnapshotStore, producer *queue.Producer) *SystemHandler {
	return &SystemHandler{store: store, snapshots: snapshots, producer: producer}
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Root returns service metadata.
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Sightline Object Detection API",
		"version": apiVersion,
		"health":  "/health",
		"metrics": "/metrics",
	})
}

// Readyz reports readiness of the store and the optional backing services.
func (h *SystemHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := h.store.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if h.snapshots != nil {
		if err := h.snapshots.Ping(ctx); err != nil {
			checks["minio"] = err.Error()
			healthy = false
		} else {
			checks["minio"] = "ok"
		}
	}

	if h.producer != nil {
		if err := h.producer.Ping(); err != nil {
			checks["nats"] = err.Error()
			healthy = false
		} else {
			checks["nats"] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status": map[bool]string{true: "ready", false: "not ready"}[healthy],
		"checks": checks,
	})
}
