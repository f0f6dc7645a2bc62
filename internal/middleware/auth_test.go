package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/todo-api/domain"
	"github.com/fastygo/todo-api/pkg/httpcontext"
	authUC "github.com/fastygo/todo-api/usecase/auth"
)

type verifierFunc func(ctx context.Context, sessionID, userID string) error

func (f verifierFunc) VerifySession(ctx context.Context, sessionID, userID string) error {
	return f(ctx, sessionID, userID)
}

func signed(t *testing.T, tokens *authUC.Tokens) string {
	t.Helper()
	raw, err := tokens.Sign(&domain.Session{ID: "sess-1", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	return raw
}

func run(handler fasthttp.RequestHandler, authorization string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.SetRequestURI("/tasks")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	handler(ctx)
	return ctx
}

func TestJWTAuthSetsIdentity(t *testing.T) {
	tokens := authUC.NewTokens("secret", "todo-api")

	var gotUser, gotSession string
	next := func(ctx *fasthttp.RequestCtx) {
		gotUser = httpcontext.UserID(ctx)
		gotSession = httpcontext.SessionID(ctx)
	}
	handler := JWTAuth(tokens, nil, zaptest.NewLogger(t))(next)

	ctx := run(handler, "bearer "+signed(t, tokens))
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "user-1", gotUser)
	assert.Equal(t, "sess-1", gotSession)
}

func TestJWTAuthRejects(t *testing.T) {
	tokens := authUC.NewTokens("secret", "todo-api")
	valid := signed(t, tokens)

	cases := map[string]struct {
		header   string
		verifier SessionVerifier
	}{
		"missing header":  {header: ""},
		"wrong scheme":    {header: "Basic " + valid},
		"garbage token":   {header: "Bearer abc.def.ghi"},
		"extra parts":     {header: "Bearer " + valid + " extra"},
		"revoked session": {
			header: "Bearer " + valid,
			verifier: verifierFunc(func(ctx context.Context, sessionID, userID string) error {
				return domain.ErrSessionNotFound
			}),
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			called := false
			handler := JWTAuth(tokens, tc.verifier, zaptest.NewLogger(t))(func(ctx *fasthttp.RequestCtx) {
				called = true
			})

			ctx := run(handler, tc.header)
			assert.False(t, called)
			assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
			assert.Equal(t, "Bearer", string(ctx.Response.Header.Peek("WWW-Authenticate")))

			var body map[string]string
			require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestJWTAuthSessionStoreFailureIsServerError(t *testing.T) {
	tokens := authUC.NewTokens("secret", "todo-api")
	core, logs := observer.New(zapcore.InfoLevel)

	verifier := verifierFunc(func(ctx context.Context, sessionID, userID string) error {
		return errors.New("redis down")
	})
	called := false
	handler := JWTAuth(tokens, verifier, zap.New(core))(func(ctx *fasthttp.RequestCtx) {
		called = true
	})

	ctx := run(handler, "Bearer "+signed(t, tokens))
	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
	assert.Empty(t, ctx.Response.Header.Peek("WWW-Authenticate"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	assert.Equal(t, "redis down", body["message"])

	entries := logs.FilterMessage("session lookup failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestJWTAuthPassesSessionToVerifier(t *testing.T) {
	tokens := authUC.NewTokens("secret", "todo-api")

	var seen [2]string
	verifier := verifierFunc(func(ctx context.Context, sessionID, userID string) error {
		seen = [2]string{sessionID, userID}
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no deadline")
		}
		return nil
	})
	handler := JWTAuth(tokens, verifier, zaptest.NewLogger(t))(func(ctx *fasthttp.RequestCtx) {})

	ctx := run(handler, "Bearer "+signed(t, tokens))
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, [2]string{"sess-1", "user-1"}, seen)
}

func TestAccessLogAssignsRequestID(t *testing.T) {
	handler := AccessLog(zaptest.NewLogger(t))(func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusTeapot)
	})

	var req fasthttp.Request
	req.SetRequestURI("/health")
	req.Header.Set("X-Request-ID", "req-42")
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	handler(ctx)

	assert.Equal(t, "req-42", string(ctx.Response.Header.Peek("X-Request-ID")))
	assert.Equal(t, fasthttp.StatusTeapot, ctx.Response.StatusCode())
}
