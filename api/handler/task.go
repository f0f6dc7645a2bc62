package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo-api/api/transport"
	"github.com/fastygo/todo-api/domain"
	"github.com/fastygo/todo-api/pkg/httpcontext"
	taskUC "github.com/fastygo/todo-api/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Create task
// @Tags tasks
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Create(stdCtx, userID, req.Fields())
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, transport.TaskResponse{Message: "Task created successfully", Task: task})
}

// @Summary List tasks
// @Tags tasks
// @Router /tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListAll(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.TaskListResponse{Message: "Tasks fetched successfully", Tasks: tasks})
}

// @Summary List remaining tasks
// @Tags tasks
// @Router /tasks/remaining [get]
func (h *TaskHandler) GetRemainingTasks(ctx *fasthttp.RequestCtx) {
	h.tasksByStatus(ctx, domain.TaskStatusRemaining)
}

// @Summary List completed tasks
// @Tags tasks
// @Router /tasks/completed [get]
func (h *TaskHandler) GetCompletedTasks(ctx *fasthttp.RequestCtx) {
	h.tasksByStatus(ctx, domain.TaskStatusCompleted)
}

// @Summary Get task
// @Tags tasks
// @Router /tasks/{taskId} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	taskID, _ := ctx.UserValue("taskId").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Get(stdCtx, userID, taskID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.TaskResponse{Message: "Task found successfully", Task: task})
}

// @Summary Edit task
// @Tags tasks
// @Router /tasks/edit/{taskId} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	taskID, _ := ctx.UserValue("taskId").(string)

	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Update(stdCtx, userID, taskID, req.Fields())
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.TaskResponse{Message: "Task updated successfully", Task: task})
}

// @Summary Toggle task status
// @Tags tasks
// @Router /tasks/status [put]
func (h *TaskHandler) ToggleStatus(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	var req transport.TaskIDRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	status, err := h.uc.ToggleStatus(stdCtx, userID, req.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.StatusResponse{Message: "Task updated successfully", Task: status})
}

// @Summary Delete task
// @Tags tasks
// @Router /tasks/delete [post]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	var req transport.TaskIDRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, userID, req.ID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondMessage(ctx, http.StatusOK, "Task deleted successfully")
}

func (h *TaskHandler) tasksByStatus(ctx *fasthttp.RequestCtx, status domain.TaskStatus) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListByStatus(stdCtx, userID, status)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.TaskListResponse{
		Message: string(status) + " tasks fetched successfully",
		Tasks:   tasks,
	})
}
