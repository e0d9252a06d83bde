package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/StevenOyar/vibe-code/internal/repository"
)

// ProfileHandler serves the user profile and XP endpoints.
type ProfileHandler struct {
	Users *repository.UserRepo
	Stats *repository.StatsRepo
}

func NewProfileHandler(users *repository.UserRepo, stats *repository.StatsRepo) *ProfileHandler {
	return &ProfileHandler{Users: users, Stats: stats}
}

// Profile returns the user record with per-subject card counts and the
// latest activity, enough to render the dashboard in one request.
func (h *ProfileHandler) Profile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}

	subjects, err := h.Stats.SubjectCounts(ctx, uid)
	if err != nil {
		log.Printf("profile: subject counts failed for user %d: %v", uid, err)
	}
	recent, err := h.Stats.RecentActivity(ctx, uid, 10)
	if err != nil {
		log.Printf("profile: recent activity failed for user %d: %v", uid, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":            u,
		"subjects":        subjects,
		"recent_activity": recent,
	})
}

type addXPReq struct {
	XP     int    `json:"xp"`
	Reason string `json:"reason"`
}

// AddXP awards XP and reports whether the user leveled up.
func (h *ProfileHandler) AddXP(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req addXPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.XP <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "xp must be positive"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	newXP, newLevel, err := h.Users.AddXP(ctx, uid, req.XP, req.Reason)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update xp failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"xp":        newXP,
		"level":     newLevel,
		"level_up":  newLevel > u.Level,
		"xp_gained": req.XP,
	})
}
