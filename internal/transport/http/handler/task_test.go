package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"log/slog"
	"os"

	"taskboard/internal/domain"
	"taskboard/internal/transport/http/handler"
	"taskboard/internal/usecase"
)

// fakeTaskUsecase implements the unexported taskUsecaser interface via method matching.
type fakeTaskUsecase struct {
	create  func(ctx context.Context, input usecase.CreateTaskInput) (*domain.Task, error)
	getByID func(ctx context.Context, taskID, userID string) (*domain.Task, error)
	list    func(ctx context.Context, input usecase.ListTasksInput) (*usecase.TaskPage, error)
	update  func(ctx context.Context, input usecase.UpdateTaskInput) (*domain.Task, error)
	delete  func(ctx context.Context, taskID, userID string) error
	stats   func(ctx context.Context, userID string) (*domain.TaskStats, error)
}

func (f *fakeTaskUsecase) Create(ctx context.Context, input usecase.CreateTaskInput) (*domain.Task, error) {
	return f.create(ctx, input)
}

func (f *fakeTaskUsecase) GetByID(ctx context.Context, taskID, userID string) (*domain.Task, error) {
	return f.getByID(ctx, taskID, userID)
}

func (f *fakeTaskUsecase) List(ctx context.Context, input usecase.ListTasksInput) (*usecase.TaskPage, error) {
	return f.list(ctx, input)
}

func (f *fakeTaskUsecase) Update(ctx context.Context, input usecase.UpdateTaskInput) (*domain.Task, error) {
	return f.update(ctx, input)
}

func (f *fakeTaskUsecase) Delete(ctx context.Context, taskID, userID string) error {
	return f.delete(ctx, taskID, userID)
}

func (f *fakeTaskUsecase) Stats(ctx context.Context, userID string) (*domain.TaskStats, error) {
	return f.stats(ctx, userID)
}

// newTaskEngine wires the handler behind a stand-in auth middleware that
// pins the caller to user-1.
func newTaskEngine(uc *fakeTaskUsecase) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := handler.NewTaskHandler(uc, logger)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userID", "user-1") })

	tasks := r.Group("/api/tasks")
	tasks.POST("", h.Create)
	tasks.GET("", h.List)
	tasks.GET("/stats/overview", h.Stats)
	tasks.GET("/:id", h.GetByID)
	tasks.PUT("/:id", h.Update)
	tasks.DELETE("/:id", h.Delete)
	return r
}

func sampleTask() *domain.Task {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	return &domain.Task{
		ID:          "task-1",
		UserID:      "user-1",
		Title:       "Buy groceries",
		Description: "Milk and eggs",
		Status:      domain.StatusPending,
		Priority:    domain.PriorityMedium,
		Tags:        []string{"shopping"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ---- Create ----

func TestCreateTask_MissingTitle_Returns400(t *testing.T) {
	w := postJSON(t, newTaskEngine(&fakeTaskUsecase{}), "/api/tasks", `{"description":"no title"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateTask_BadStatusEnum_Returns400(t *testing.T) {
	w := postJSON(t, newTaskEngine(&fakeTaskUsecase{}), "/api/tasks",
		`{"title":"x","status":"archived"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateTask_Success_Returns201AndScopesToCaller(t *testing.T) {
	var gotInput usecase.CreateTaskInput
	uc := &fakeTaskUsecase{
		create: func(_ context.Context, input usecase.CreateTaskInput) (*domain.Task, error) {
			gotInput = input
			return sampleTask(), nil
		},
	}
	w := postJSON(t, newTaskEngine(uc), "/api/tasks",
		`{"title":"Buy groceries","description":"Milk and eggs","priority":"medium","tags":["shopping"]}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if gotInput.UserID != "user-1" {
		t.Errorf("usecase called with UserID %q, want user-1", gotInput.UserID)
	}
	if gotInput.Title != "Buy groceries" {
		t.Errorf("title = %q", gotInput.Title)
	}

	env := decodeEnvelope(t, w)
	var data struct {
		Task struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"task"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Task.ID != "task-1" || data.Task.Status != "pending" {
		t.Errorf("task = %+v", data.Task)
	}
}

// ---- List ----

func TestListTasks_ForwardsQueryFilters(t *testing.T) {
	var gotInput usecase.ListTasksInput
	uc := &fakeTaskUsecase{
		list: func(_ context.Context, input usecase.ListTasksInput) (*usecase.TaskPage, error) {
			gotInput = input
			return &usecase.TaskPage{Tasks: []*domain.Task{}}, nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/tasks?page=2&limit=5&status=pending&priority=high&tags=work&tags=urgent&search=milk", nil)
	newTaskEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotInput.Page != 2 || gotInput.Limit != 5 {
		t.Errorf("page/limit = %d/%d, want 2/5", gotInput.Page, gotInput.Limit)
	}
	if gotInput.Status != domain.StatusPending || gotInput.Priority != domain.PriorityHigh {
		t.Errorf("status/priority = %q/%q", gotInput.Status, gotInput.Priority)
	}
	if len(gotInput.Tags) != 2 || gotInput.Tags[0] != "work" || gotInput.Tags[1] != "urgent" {
		t.Errorf("tags = %v, want [work urgent]", gotInput.Tags)
	}
	if gotInput.Search != "milk" {
		t.Errorf("search = %q", gotInput.Search)
	}
	if gotInput.UserID != "user-1" {
		t.Errorf("userID = %q, want user-1", gotInput.UserID)
	}
}

func TestListTasks_EmptyPage_EncodesEmptyArray(t *testing.T) {
	uc := &fakeTaskUsecase{
		list: func(_ context.Context, _ usecase.ListTasksInput) (*usecase.TaskPage, error) {
			return &usecase.TaskPage{
				Tasks:      []*domain.Task{},
				Pagination: usecase.Pagination{CurrentPage: 1},
			}, nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	newTaskEngine(uc).ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), `"tasks":[]`) {
		t.Errorf("tasks should encode as [], body: %s", w.Body.String())
	}
}

func TestListTasks_IncludesPaginationMetadata(t *testing.T) {
	uc := &fakeTaskUsecase{
		list: func(_ context.Context, _ usecase.ListTasksInput) (*usecase.TaskPage, error) {
			return &usecase.TaskPage{
				Tasks:      []*domain.Task{sampleTask()},
				Pagination: usecase.Pagination{CurrentPage: 2, TotalPages: 4, TotalTasks: 37},
			}, nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks?page=2", nil)
	newTaskEngine(uc).ServeHTTP(w, req)

	env := decodeEnvelope(t, w)
	var data struct {
		Pagination usecase.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	want := usecase.Pagination{CurrentPage: 2, TotalPages: 4, TotalTasks: 37}
	if data.Pagination != want {
		t.Errorf("pagination = %+v, want %+v", data.Pagination, want)
	}
}

// ---- Stats ----

func TestStats_RouteNotShadowedByIDParam(t *testing.T) {
	uc := &fakeTaskUsecase{
		stats: func(_ context.Context, userID string) (*domain.TaskStats, error) {
			return &domain.TaskStats{
				TotalTasks: 3,
				StatusCounts: map[domain.Status]int{
					domain.StatusPending:    2,
					domain.StatusInProgress: 1,
					domain.StatusCompleted:  0,
				},
			}, nil
		},
		getByID: func(_ context.Context, taskID, _ string) (*domain.Task, error) {
			t.Fatalf("GetByID called with %q, stats route was shadowed", taskID)
			return nil, nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks/stats/overview", nil)
	newTaskEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	env := decodeEnvelope(t, w)
	var data struct {
		TotalTasks   int            `json:"totalTasks"`
		StatusCounts map[string]int `json:"statusCounts"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.TotalTasks != 3 {
		t.Errorf("totalTasks = %d, want 3", data.TotalTasks)
	}
	if n, ok := data.StatusCounts["completed"]; !ok || n != 0 {
		t.Errorf("completed count missing or nonzero: %v", data.StatusCounts)
	}
}

// ---- GetByID ----

func TestGetTask_NotFound_Returns404(t *testing.T) {
	uc := &fakeTaskUsecase{
		getByID: func(_ context.Context, _, _ string) (*domain.Task, error) {
			return nil, domain.ErrTaskNotFound
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks/nope", nil)
	newTaskEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetTask_PassesCallerID(t *testing.T) {
	uc := &fakeTaskUsecase{
		getByID: func(_ context.Context, taskID, userID string) (*domain.Task, error) {
			if taskID != "task-1" || userID != "user-1" {
				t.Errorf("called with (%q, %q), want (task-1, user-1)", taskID, userID)
			}
			return sampleTask(), nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks/task-1", nil)
	newTaskEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

// ---- Update ----

func TestUpdateTask_ValidationError_Returns400(t *testing.T) {
	uc := &fakeTaskUsecase{
		update: func(_ context.Context, _ usecase.UpdateTaskInput) (*domain.Task, error) {
			return nil, domain.NewValidationError("Title is required")
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/tasks/task-1", strings.NewReader(`{"title":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	newTaskEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Title is required") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestUpdateTask_ForwardsOnlyProvidedFields(t *testing.T) {
	var gotInput usecase.UpdateTaskInput
	uc := &fakeTaskUsecase{
		update: func(_ context.Context, input usecase.UpdateTaskInput) (*domain.Task, error) {
			gotInput = input
			task := sampleTask()
			task.Status = domain.StatusCompleted
			return task, nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/tasks/task-1",
		strings.NewReader(`{"status":"completed"}`))
	req.Header.Set("Content-Type", "application/json")
	newTaskEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotInput.Status == nil || *gotInput.Status != domain.StatusCompleted {
		t.Errorf("status pointer not forwarded: %+v", gotInput)
	}
	if gotInput.Title != nil || gotInput.Description != nil || gotInput.Priority != nil {
		t.Errorf("absent fields should stay nil: %+v", gotInput)
	}
}

func TestUpdateTask_NotFound_Returns404(t *testing.T) {
	uc := &fakeTaskUsecase{
		update: func(_ context.Context, _ usecase.UpdateTaskInput) (*domain.Task, error) {
			return nil, domain.ErrTaskNotFound
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/tasks/other-users-task",
		strings.NewReader(`{"title":"mine now"}`))
	req.Header.Set("Content-Type", "application/json")
	newTaskEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// ---- Delete ----

func TestDeleteTask_Success_Returns200(t *testing.T) {
	uc := &fakeTaskUsecase{
		delete: func(_ context.Context, taskID, userID string) error {
			if taskID != "task-1" || userID != "user-1" {
				t.Errorf("called with (%q, %q)", taskID, userID)
			}
			return nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/tasks/task-1", nil)
	newTaskEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"success":true`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestDeleteTask_NotFound_Returns404(t *testing.T) {
	uc := &fakeTaskUsecase{
		delete: func(_ context.Context, _, _ string) error {
			return domain.ErrTaskNotFound
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/tasks/gone", nil)
	newTaskEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
