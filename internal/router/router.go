package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/todo-api/api/handler"
)

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
}

// New registers every route. authMiddleware guards everything except health,
// register and login.
func New(handlers Handlers, authMiddleware Middleware) *router.Router {
	r := router.New()
	r.RedirectTrailingSlash = false

	if handlers.Health != nil {
		r.GET("/health", handlers.Health.Check)
	}

	if handlers.Auth != nil {
		r.POST("/auth/register", handlers.Auth.Register)
		r.POST("/auth/login", handlers.Auth.Login)
		r.POST("/auth/logout", authMiddleware(handlers.Auth.Logout))
	}

	if handlers.Profile != nil {
		r.GET("/profile", authMiddleware(handlers.Profile.GetProfile))
		r.PUT("/profile", authMiddleware(handlers.Profile.UpdateProfile))
	}

	if handlers.Task != nil {
		t := handlers.Task
		r.POST("/tasks", authMiddleware(t.CreateTask))
		r.GET("/tasks", authMiddleware(t.GetTasks))
		r.GET("/tasks/remaining", authMiddleware(t.GetRemainingTasks))
		r.GET("/tasks/completed", authMiddleware(t.GetCompletedTasks))
		r.GET("/tasks/{taskId}", authMiddleware(t.GetTask))
		r.PUT("/tasks/edit/{taskId}", authMiddleware(t.UpdateTask))
		r.PUT("/tasks/status", authMiddleware(t.ToggleStatus))
		r.POST("/tasks/delete", authMiddleware(t.DeleteTask))
	}

	return r
}
