package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/todo-api/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeyUserID     Key = "user_id"
	KeySessionID  Key = "session_id"
)

const (
	userValueRequestID = "httpcontext.request_id"
	userValueUserID    = "httpcontext.user_id"
	userValueSessionID = "httpcontext.session_id"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches it with request metadata.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	stdCtx = appLogger.ContextWithRequestID(stdCtx, RequestID(ctx))

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}
	if userID := UserID(ctx); userID != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserID, userID)
	}
	if sessionID := SessionID(ctx); sessionID != "" {
		stdCtx = context.WithValue(stdCtx, KeySessionID, sessionID)
	}

	return stdCtx, cancel
}

// RequestID returns the request ID for ctx, taking it from the X-Request-ID
// header or generating one on first use. The ID is echoed on the response.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if reqID, ok := ctx.UserValue(userValueRequestID).(string); ok && reqID != "" {
		return reqID
	}
	reqID := strings.TrimSpace(string(ctx.Request.Header.Peek("X-Request-ID")))
	if reqID == "" {
		reqID = uuid.NewString()
	}
	ctx.SetUserValue(userValueRequestID, reqID)
	ctx.Response.Header.Set("X-Request-ID", reqID)
	return reqID
}

// SetIdentity records the authenticated caller on the request.
func SetIdentity(ctx *fasthttp.RequestCtx, userID, sessionID string) {
	ctx.SetUserValue(userValueUserID, userID)
	ctx.SetUserValue(userValueSessionID, sessionID)
}

// UserID returns the authenticated caller, or "" when the request was not
// authenticated.
func UserID(ctx *fasthttp.RequestCtx) string {
	userID, _ := ctx.UserValue(userValueUserID).(string)
	return userID
}

// SessionID returns the session backing the caller's token, if any.
func SessionID(ctx *fasthttp.RequestCtx) string {
	sessionID, _ := ctx.UserValue(userValueSessionID).(string)
	return sessionID
}
