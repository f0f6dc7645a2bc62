package transport

import "github.com/fastygo/todo-api/domain"

// Every response body is a JSON object with a message.

type MessageResponse struct {
	Message string `json:"message"`
}

type TaskResponse struct {
	Message string       `json:"message"`
	Task    *domain.Task `json:"task"`
}

type TaskListResponse struct {
	Message string        `json:"message"`
	Tasks   []domain.Task `json:"tasks"`
}

// StatusResponse carries the new status under the task key.
type StatusResponse struct {
	Message string            `json:"message"`
	Task    domain.TaskStatus `json:"task"`
}

type UserResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type LoginResponse struct {
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Session *domain.Session `json:"session"`
}

type HealthResponse struct {
	Message string      `json:"message"`
	Status  interface{} `json:"status"`
}

func NewMessage(message string) MessageResponse {
	return MessageResponse{Message: message}
}
