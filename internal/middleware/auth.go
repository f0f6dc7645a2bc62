package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo-api/api/transport"
	"github.com/fastygo/todo-api/domain"
	"github.com/fastygo/todo-api/pkg/httpcontext"
	authUC "github.com/fastygo/todo-api/usecase/auth"
)

// SessionVerifier confirms a token's session is still live.
type SessionVerifier interface {
	VerifySession(ctx context.Context, sessionID, userID string) error
}

// JWTAuth resolves the caller from a Bearer token and rejects the request
// with 401 before the handler runs when that fails. A verifier error that is
// not an authorization failure answers 500. verifier may be nil.
func JWTAuth(tokens *authUC.Tokens, verifier SessionVerifier, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx, "missing or invalid authorization header")
				return
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				logger.Warn("invalid jwt token",
					zap.String("request_id", httpcontext.RequestID(ctx)),
					zap.Error(err))
				unauthorized(ctx, "invalid token")
				return
			}

			if verifier != nil {
				verifyCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				err := verifier.VerifySession(verifyCtx, claims.ID, claims.UserID)
				cancel()
				if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					logger.Info("session rejected",
						zap.String("request_id", httpcontext.RequestID(ctx)),
						zap.String("user_id", claims.UserID),
						zap.Error(err))
					unauthorized(ctx, "session expired or revoked")
					return
				}
				if err != nil {
					logger.Error("session lookup failed",
						zap.String("request_id", httpcontext.RequestID(ctx)),
						zap.String("user_id", claims.UserID),
						zap.Error(err))
					writeJSON(ctx, fasthttp.StatusInternalServerError, err.Error())
					return
				}
			}

			httpcontext.SetIdentity(ctx, claims.UserID, claims.ID)
			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	ctx.Response.Header.Add("WWW-Authenticate", "Bearer")
	writeJSON(ctx, fasthttp.StatusUnauthorized, message)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, message string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(transport.NewMessage(message))
	ctx.SetBody(body)
}
