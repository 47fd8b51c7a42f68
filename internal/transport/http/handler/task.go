package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/domain"
	"taskboard/internal/metrics"
	"taskboard/internal/usecase"
)

// taskUsecaser is the subset of TaskUsecase the handler needs.
type taskUsecaser interface {
	Create(ctx context.Context, input usecase.CreateTaskInput) (*domain.Task, error)
	GetByID(ctx context.Context, taskID, userID string) (*domain.Task, error)
	List(ctx context.Context, input usecase.ListTasksInput) (*usecase.TaskPage, error)
	Update(ctx context.Context, input usecase.UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, taskID, userID string) error
	Stats(ctx context.Context, userID string) (*domain.TaskStats, error)
}

type TaskHandler struct {
	taskUsecase taskUsecaser
	logger      *slog.Logger
}

func NewTaskHandler(taskUsecase taskUsecaser, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{taskUsecase: taskUsecase, logger: logger.With("component", "task_handler")}
}

type taskResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      domain.Status   `json:"status"`
	Priority    domain.Priority `json:"priority"`
	Tags        []string        `json:"tags"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Tags:        t.Tags,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type createTaskRequest struct {
	Title       string          `json:"title"       binding:"required"`
	Description string          `json:"description"`
	Status      domain.Status   `json:"status"      binding:"omitempty,oneof=pending in-progress completed"`
	Priority    domain.Priority `json:"priority"    binding:"omitempty,oneof=low medium high"`
	Tags        []string        `json:"tags"`
	DueDate     *time.Time      `json:"dueDate"`
}

// POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	task, err := h.taskUsecase.Create(c.Request.Context(), usecase.CreateTaskInput{
		UserID:      c.GetString("userID"),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Tags:        req.Tags,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.respondTaskError(c, err, "create task")
		return
	}

	metrics.TasksMutatedTotal.WithLabelValues("create").Inc()
	respondOK(c, http.StatusCreated, gin.H{"task": toTaskResponse(task)})
}

// GET /api/tasks
func (h *TaskHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	pageResult, err := h.taskUsecase.List(c.Request.Context(), usecase.ListTasksInput{
		UserID:   c.GetString("userID"),
		Status:   domain.Status(c.Query("status")),
		Priority: domain.Priority(c.Query("priority")),
		Tags:     c.QueryArray("tags"),
		Search:   c.Query("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.respondTaskError(c, err, "list tasks")
		return
	}

	tasks := make([]taskResponse, 0, len(pageResult.Tasks))
	for _, t := range pageResult.Tasks {
		tasks = append(tasks, toTaskResponse(t))
	}

	respondOK(c, http.StatusOK, gin.H{
		"tasks":      tasks,
		"pagination": pageResult.Pagination,
	})
}

// GET /api/tasks/stats/overview
func (h *TaskHandler) Stats(c *gin.Context) {
	stats, err := h.taskUsecase.Stats(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.respondTaskError(c, err, "task stats")
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"totalTasks":   stats.TotalTasks,
		"statusCounts": stats.StatusCounts,
	})
}

// GET /api/tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	task, err := h.taskUsecase.GetByID(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		h.respondTaskError(c, err, "get task")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"task": toTaskResponse(task)})
}

type updateTaskRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Status      *domain.Status   `json:"status"   binding:"omitempty,oneof=pending in-progress completed"`
	Priority    *domain.Priority `json:"priority" binding:"omitempty,oneof=low medium high"`
	Tags        []string         `json:"tags"`
	DueDate     *time.Time       `json:"dueDate"`
}

// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	task, err := h.taskUsecase.Update(c.Request.Context(), usecase.UpdateTaskInput{
		TaskID:      c.Param("id"),
		UserID:      c.GetString("userID"),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Tags:        req.Tags,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.respondTaskError(c, err, "update task")
		return
	}

	metrics.TasksMutatedTotal.WithLabelValues("update").Inc()
	respondOK(c, http.StatusOK, gin.H{"task": toTaskResponse(task)})
}

// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	err := h.taskUsecase.Delete(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		h.respondTaskError(c, err, "delete task")
		return
	}

	metrics.TasksMutatedTotal.WithLabelValues("delete").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// respondTaskError maps usecase errors onto the HTTP taxonomy. A task
// owned by someone else surfaces as 404, never 403.
func (h *TaskHandler) respondTaskError(c *gin.Context, err error, op string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(c, http.StatusBadRequest, ve.Message)
	case errors.Is(err, domain.ErrTaskNotFound):
		respondError(c, http.StatusNotFound, errTaskNotFound)
	default:
		h.logger.ErrorContext(c.Request.Context(), op, "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
	}
}
