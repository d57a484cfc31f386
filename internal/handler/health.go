package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medscanhq/medscan-api/internal/store"
)

// HealthHandler reports liveness and store reachability.
type HealthHandler struct {
	store   store.Store
	backend string
	version string
}

func NewHealthHandler(s store.Store, backend, version string) *HealthHandler {
	return &HealthHandler{store: s, backend: backend, version: version}
}

func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if err := h.store.DB().PingContext(c.Request.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"backend": h.backend,
		"version": h.version,
	})
}
