package handler

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/StevenOyar/vibe-code/internal/repository"
)

// StatsHandler serves the per-user study statistics and the admin
// aggregates.
type StatsHandler struct {
	Stats  *repository.StatsRepo
	Cards  *repository.FlashcardRepo
	Tokens *repository.TokenRepo
}

func NewStatsHandler(stats *repository.StatsRepo, cards *repository.FlashcardRepo, tokens *repository.TokenRepo) *StatsHandler {
	return &StatsHandler{Stats: stats, Cards: cards, Tokens: tokens}
}

// UserStats aggregates the signed-in user's study numbers.  The route is
// wrapped by the Redis response cache so repeated dashboard polls do not
// hammer the aggregate queries.
func (h *StatsHandler) UserStats(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	total, err := h.Cards.CountByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load stats failed"})
	}
	subjects, err := h.Stats.SubjectCounts(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load stats failed"})
	}
	reviewedToday, err := h.Stats.ReviewedToday(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load stats failed"})
	}
	streak, err := h.Stats.ReviewStreak(ctx, uid)
	if err != nil {
		log.Printf("stats: review streak failed for user %d: %v", uid, err)
	}
	mostReviewed, err := h.Stats.MostReviewedSubject(ctx, uid)
	if err != nil {
		log.Printf("stats: most reviewed subject failed for user %d: %v", uid, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_flashcards":      total,
		"subjects":              subjects,
		"reviewed_today":        reviewedToday,
		"review_streak":         streak,
		"most_reviewed_subject": mostReviewed,
	})
}

// AdminStats reports system-wide counters.
func (h *StatsHandler) AdminStats(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	stats, err := h.Stats.Admin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load admin stats failed"})
	}
	return c.JSON(http.StatusOK, stats)
}

// AdminCleanup sweeps expired or revoked refresh tokens and orphaned
// guest cards.
func (h *StatsHandler) AdminCleanup(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	tokens, err := h.Tokens.DeleteExpired(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token cleanup failed"})
	}
	cards, err := h.Cards.DeleteOrphanedGuestCards(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "card cleanup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"tokens_deleted": tokens,
		"cards_deleted":  cards,
	})
}
