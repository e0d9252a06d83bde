package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/StevenOyar/vibe-code/internal/ai"
	"github.com/StevenOyar/vibe-code/internal/model"
	"github.com/StevenOyar/vibe-code/internal/queue"
	"github.com/StevenOyar/vibe-code/internal/repository"
	queue_publisher "github.com/StevenOyar/vibe-code/internal/service"
)

// XP awarded per card by difficulty.
var xpByDifficulty = map[string]int{
	"easy":   3,
	"medium": 5,
	"hard":   8,
}

// milestoneThreshold is the number of cards created today in one subject
// that earns the congratulatory story.
const milestoneThreshold = 15

// FlashcardHandler bundles everything the card endpoints touch: the card
// store, the gamification counters and the AI client for milestone
// stories.
type FlashcardHandler struct {
	Cards *repository.FlashcardRepo
	Users *repository.UserRepo
	Study *repository.StudyRepo
	AI    *ai.Client
}

func NewFlashcardHandler(cards *repository.FlashcardRepo, users *repository.UserRepo, study *repository.StudyRepo, aiClient *ai.Client) *FlashcardHandler {
	return &FlashcardHandler{Cards: cards, Users: users, Study: study, AI: aiClient}
}

type saveCardsReq struct {
	Subject    string `json:"subject"`
	Notes      string `json:"notes"`
	Flashcards []struct {
		Question   string `json:"question"`
		Answer     string `json:"answer"`
		Difficulty string `json:"difficulty"`
	} `json:"flashcards"`
}

// Save stores a batch of cards and applies the gamification side
// effects: XP by difficulty, today's streak and the lifetime card count.
func (h *FlashcardHandler) Save(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req saveCardsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Subject == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject is required"})
	}
	if len(req.Flashcards) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "flashcards array is required"})
	}

	cards := make([]*model.Flashcard, 0, len(req.Flashcards))
	xpGained := 0
	for i, fc := range req.Flashcards {
		q, a := strings.TrimSpace(fc.Question), strings.TrimSpace(fc.Answer)
		if q == "" || a == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "flashcard " + strconv.Itoa(i+1) + ": question and answer are required",
			})
		}
		diff := fc.Difficulty
		if _, ok := xpByDifficulty[diff]; !ok {
			diff = "medium"
		}
		xpGained += xpByDifficulty[diff]
		cards = append(cards, &model.Flashcard{
			Question:   q,
			Answer:     a,
			Difficulty: diff,
		})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Cards.CreateBatch(ctx, uid, req.Subject, req.Notes, cards); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save flashcards failed"})
	}

	newXP, newLevel, err := h.Users.AddXP(ctx, uid, xpGained, "flashcards_created")
	if err != nil {
		log.Printf("flashcards: award xp failed for user %d: %v", uid, err)
	}
	streak, err := h.Study.TouchStreak(ctx, uid)
	if err != nil {
		log.Printf("flashcards: streak update failed for user %d: %v", uid, err)
	}
	total, err := h.Cards.CountByUser(ctx, uid)
	if err == nil {
		if err := h.Users.SetTotalCards(ctx, uid, total); err != nil {
			log.Printf("flashcards: total_cards update failed for user %d: %v", uid, err)
		}
	}

	// Broker failures must not fail the save.
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = queue_publisher.PublishStudyActivity(pubCtx, queue.StudyActivityEvent{
			UserID:     uid,
			Activity:   "flashcards_saved",
			Subject:    req.Subject,
			CardCount:  len(cards),
			XPGained:   xpGained,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, echo.Map{
		"message":        "flashcards saved",
		"saved_count":    len(cards),
		"xp_gained":      xpGained,
		"xp":             newXP,
		"level":          newLevel,
		"current_streak": streak,
	})
}

// List returns the user's cards newest first, optionally filtered by
// subject, with offset pagination.
func (h *FlashcardHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cards, total, err := h.Cards.ListByUser(ctx, uid, c.QueryParam("subject"), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list flashcards failed"})
	}
	if cards == nil {
		cards = []*model.Flashcard{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"flashcards": cards,
		"total":      total,
		"limit":      limit,
		"offset":     offset,
	})
}

// Delete removes one owned card.
func (h *FlashcardHandler) Delete(c echo.Context) error {
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

	if err := h.Cards.Delete(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrFlashcardNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flashcard not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete flashcard failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "flashcard deleted"})
}

// Review bumps a card's review counters.
func (h *FlashcardHandler) Review(c echo.Context) error {
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

	if err := h.Cards.MarkReviewed(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrFlashcardNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flashcard not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "review flashcard failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "review recorded"})
}

// StudySession deals 10 random cards for a review round.
func (h *FlashcardHandler) StudySession(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cards, err := h.Cards.Random(ctx, uid, 10)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "study session failed"})
	}
	if cards == nil {
		cards = []*model.Flashcard{}
	}
	return c.JSON(http.StatusOK, echo.Map{"flashcards": cards})
}

type logSessionReq struct {
	Subject         string `json:"subject"`
	FlashcardsCount int    `json:"flashcards_studied"`
	DurationMinutes int    `json:"session_duration_minutes"`
}

// LogSession records a finished review sitting and advances the streak.
func (h *FlashcardHandler) LogSession(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req logSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Subject) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject is required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Study.LogSession(ctx, &model.StudySession{
		UserID:          uid,
		Subject:         strings.TrimSpace(req.Subject),
		FlashcardsCount: req.FlashcardsCount,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "log session failed"})
	}
	streak, err := h.Study.TouchStreak(ctx, uid)
	if err != nil {
		log.Printf("sessions: streak update failed for user %d: %v", uid, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"session_id":     id,
		"current_streak": streak,
	})
}

// Milestone reports how many cards the user created today in a subject
// and, at the threshold, returns a congratulatory story.  Story
// generation goes through the AI client with a canned fallback.
func (h *FlashcardHandler) Milestone(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	subject := strings.TrimSpace(c.QueryParam("subject"))
	if subject == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject is required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	count, err := h.Cards.CountTodayBySubject(ctx, uid, subject)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "milestone check failed"})
	}
	if count < milestoneThreshold {
		return c.JSON(http.StatusOK, echo.Map{
			"milestone_reached": false,
			"card_count":        count,
			"cards_remaining":   milestoneThreshold - count,
		})
	}

	storyCtx, storyCancel := context.WithTimeout(c.Request().Context(), 25*time.Second)
	defer storyCancel()
	story, err := h.AI.GenerateStory(storyCtx, subject, count)
	if err != nil || strings.TrimSpace(story) == "" {
		story = ai.FallbackStory(subject, count)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"milestone_reached": true,
		"card_count":        count,
		"story":             story,
	})
}
