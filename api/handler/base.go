package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo-api/api/transport"
	"github.com/fastygo/todo-api/domain"
	"github.com/fastygo/todo-api/pkg/httpcontext"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("response encoding failed", zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"message":"internal server error"}`)
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func (h baseHandler) respondMessage(ctx *fasthttp.RequestCtx, status int, message string) {
	h.respondJSON(ctx, status, transport.NewMessage(message))
}

// respondError maps err to a status and writes {"message": err}. Unclassified
// errors are logged and reported as 500 with their raw message.
func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status := mapError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", httpcontext.RequestID(ctx)),
			zap.ByteString("path", ctx.Path()),
			zap.Error(err))
	}
	h.respondMessage(ctx, status, err.Error())
}

// decode unmarshals the body into dst. An empty body leaves dst zeroed.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	body := ctx.PostBody()
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, dst); err != nil {
		h.respondMessage(ctx, http.StatusBadRequest, domain.ErrInvalidPayload.Message)
		return false
	}
	return true
}

// userID returns the authenticated caller or writes 401.
func (h baseHandler) userID(ctx *fasthttp.RequestCtx) (string, bool) {
	userID := httpcontext.UserID(ctx)
	if userID == "" {
		h.respondMessage(ctx, http.StatusUnauthorized, domain.ErrUnauthorized.Message)
		return "", false
	}
	return userID, true
}

var statusByCode = map[domain.ErrorCode]int{
	domain.ErrCodeUnauthorized: http.StatusUnauthorized,
	domain.ErrCodeForbidden:    http.StatusForbidden,
	domain.ErrCodeInvalid:      http.StatusBadRequest,
	domain.ErrCodeNotFound:     http.StatusNotFound,
	domain.ErrCodeConflict:     http.StatusConflict,
}

func mapError(err error) int {
	if status, ok := statusByCode[domain.CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
