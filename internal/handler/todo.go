package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/StevenOyar/vibe-code/internal/model"
	"github.com/StevenOyar/vibe-code/internal/repository"
)

// TodoHandler serves the study todo list.
type TodoHandler struct {
	Todos *repository.TodoRepo
	Study *repository.StudyRepo
}

func NewTodoHandler(todos *repository.TodoRepo, study *repository.StudyRepo) *TodoHandler {
	return &TodoHandler{Todos: todos, Study: study}
}

type todoReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
	Subject     string `json:"subject"`
}

type updateTodoReq struct {
	Completed *bool `json:"completed"`
}

func (h *TodoHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req todoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	switch req.Priority {
	case "low", "medium", "high":
	default:
		req.Priority = "medium"
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Todos.Create(ctx, &model.Todo{
		UserID:      uid,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Subject:     req.Subject,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create todo failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "message": "todo created"})
}

func (h *TodoHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	todos, err := h.Todos.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list todos failed"})
	}
	if todos == nil {
		todos = []*model.Todo{}
	}
	return c.JSON(http.StatusOK, echo.Map{"todos": todos})
}

// Update toggles completion.  Completing a todo counts as study activity
// and advances the streak.
func (h *TodoHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateTodoReq
	if err := c.Bind(&req); err != nil || req.Completed == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "completed field is required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Todos.SetCompleted(ctx, id, uid, *req.Completed); err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "todo not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update todo failed"})
	}

	if *req.Completed {
		if _, err := h.Study.TouchStreak(ctx, uid); err != nil {
			log.Printf("todos: streak update failed for user %d: %v", uid, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "todo updated"})
}

func (h *TodoHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Todos.Delete(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "todo not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete todo failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "todo deleted"})
}
