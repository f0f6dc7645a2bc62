package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	apiHandler "github.com/fastygo/todo-api/api/handler"
	"github.com/fastygo/todo-api/internal/infrastructure/monitor"
	"github.com/fastygo/todo-api/internal/middleware"
	"github.com/fastygo/todo-api/internal/router"
	"github.com/fastygo/todo-api/pkg/httpcontext"
	"github.com/fastygo/todo-api/repository"
	"github.com/fastygo/todo-api/repository/memory"
	authUC "github.com/fastygo/todo-api/usecase/auth"
	profileUC "github.com/fastygo/todo-api/usecase/profile"
	taskUC "github.com/fastygo/todo-api/usecase/task"
)

type staticStatus monitor.Status

func (s staticStatus) GetStatus() monitor.Status { return monitor.Status(s) }

type testServer struct {
	t       *testing.T
	handler fasthttp.RequestHandler
	users   repository.UserRepository
}

func newServer(t *testing.T) *testServer {
	return newServerWith(t, memory.NewUserRepository(), staticStatus{Storage: true, StorageDriver: "memory"})
}

func newServerWith(t *testing.T, users repository.UserRepository, status apiHandler.StatusSource) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	adapter := httpcontext.NewAdapter(time.Second)
	tokens := authUC.NewTokens("test-secret", "todo-api")

	auth := authUC.New(users, memory.NewSessionRepository(time.Hour), tokens, authUC.Config{
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, logger)

	r := router.New(router.Handlers{
		Auth:    apiHandler.NewAuthHandler(auth, adapter, logger),
		Profile: apiHandler.NewProfileHandler(profileUC.New(users, logger), adapter, logger),
		Task:    apiHandler.NewTaskHandler(taskUC.New(users, logger), adapter, logger),
		Health:  apiHandler.NewHealthHandler(status, adapter, logger),
	}, middleware.JWTAuth(tokens, auth, logger))

	return &testServer{
		t:       t,
		handler: middleware.AccessLog(logger)(r.Handler),
		users:   users,
	}
}

type response struct {
	status int
	body   map[string]interface{}
	header *fasthttp.ResponseHeader
}

func (s *testServer) do(method, uri, token, body string) response {
	s.t.Helper()
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.SetContentType("application/json")
		req.SetBodyString(body)
	}

	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	s.handler(&ctx)

	out := response{status: ctx.Response.StatusCode(), header: &ctx.Response.Header}
	require.NoError(s.t, json.Unmarshal(ctx.Response.Body(), &out.body), string(ctx.Response.Body()))
	return out
}

// login registers a fresh account and returns its bearer token.
func (s *testServer) login(email string) string {
	s.t.Helper()
	creds := `{"email":"` + email + `","password":"password123"}`
	res := s.do(http.MethodPost, "/auth/register", "", creds)
	require.Equal(s.t, http.StatusCreated, res.status, res.body)

	res = s.do(http.MethodPost, "/auth/login", "", creds)
	require.Equal(s.t, http.StatusOK, res.status, res.body)
	token, _ := res.body["token"].(string)
	require.NotEmpty(s.t, token)
	return token
}
