package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/StevenOyar/vibe-code/internal/model"
	"github.com/StevenOyar/vibe-code/internal/repository"
)

// TimetableHandler serves the weekly study schedule.
type TimetableHandler struct {
	Entries *repository.TimetableRepo
}

func NewTimetableHandler(entries *repository.TimetableRepo) *TimetableHandler {
	return &TimetableHandler{Entries: entries}
}

var validDays = map[string]bool{
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
}

type timetableReq struct {
	Subject   string `json:"subject"`
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Notes     string `json:"notes"`
}

func (h *TimetableHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req timetableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Subject == "" || req.StartTime == "" || req.EndTime == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject, start_time and end_time are required"})
	}
	if !validDays[req.DayOfWeek] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid day_of_week"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Entries.Create(ctx, &model.TimetableEntry{
		UserID:    uid,
		Subject:   req.Subject,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create entry failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "message": "entry created"})
}

// List returns the schedule in weekday order.
func (h *TimetableHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	entries, err := h.Entries.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list timetable failed"})
	}
	if entries == nil {
		entries = []*model.TimetableEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"timetable": entries})
}

func (h *TimetableHandler) Delete(c echo.Context) error {
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

	if err := h.Entries.Delete(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete entry failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "entry deleted"})
}
