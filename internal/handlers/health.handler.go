package handlers

import (
	"context"

	xhttp "github.com/nimasrn/bookkeeper/pkg/http"
	"github.com/nimasrn/bookkeeper/pkg/logger"
)

type HealthService interface {
	Check(ctx context.Context) error
}

type HealthHandler struct {
	svc HealthService
}

func RegisterHealthRoutes(e *xhttp.Group, h *HealthHandler) {
	e.GET("/health", h.GetHealth)
}

func NewHealthHandler(healthService HealthService) *HealthHandler {
	return &HealthHandler{
		svc: healthService,
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	if err := h.svc.Check(ctx); err != nil {
		logger.Error("[health] check failed", "error", err)
		writeJSON(ctx, xhttp.StatusServiceUnavailable, envelope{Message: "unhealthy"})
		return
	}
	writeData(ctx, xhttp.StatusOK, healthResponse{Status: "ok"})
}
