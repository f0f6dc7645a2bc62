package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo-api/api/transport"
	"github.com/fastygo/todo-api/internal/infrastructure/monitor"
	"github.com/fastygo/todo-api/pkg/httpcontext"
)

// StatusSource supplies the last probed dependency status.
type StatusSource interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
}

func NewHealthHandler(mon StatusSource, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	if status.Healthy() {
		h.respondJSON(ctx, http.StatusOK, transport.HealthResponse{Message: "ok", Status: status})
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.HealthResponse{Message: "degraded", Status: status})
}
