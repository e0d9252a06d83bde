package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/StevenOyar/vibe-code/internal/ai"
	"github.com/StevenOyar/vibe-code/internal/model"
)

// maxGeneratedCards caps one generation request.
const maxGeneratedCards = 5

// GenerateHandler turns study notes into flashcards via the AI client.
type GenerateHandler struct {
	AI *ai.Client
}

func NewGenerateHandler(aiClient *ai.Client) *GenerateHandler {
	return &GenerateHandler{AI: aiClient}
}

type generateReq struct {
	Notes      string `json:"notes"`
	Subject    string `json:"subject"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

// Generate produces up to five cards from the submitted notes.  Each
// card falls back to the rule-based generator independently, so a flaky
// model still yields a full batch.
func (h *GenerateHandler) Generate(c echo.Context) error {
	var req generateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Notes = strings.TrimSpace(req.Notes)
	if req.Notes == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "notes are required"})
	}
	if req.Subject == "" {
		req.Subject = "general"
	}
	switch req.Difficulty {
	case "easy", "medium", "hard":
	default:
		req.Difficulty = "medium"
	}
	count := req.Count
	if count <= 0 {
		count = 3
	}
	if count > maxGeneratedCards {
		count = maxGeneratedCards
	}

	cards := make([]*model.Flashcard, 0, count)
	for i := 0; i < count; i++ {
		card, err := h.AI.GenerateCard(c.Request().Context(), req.Notes, req.Subject, req.Difficulty)
		if err != nil || card == nil {
			card = ai.FallbackCard(req.Notes, req.Subject, req.Difficulty, i)
		}
		cards = append(cards, card)
	}

	return c.JSON(http.StatusOK, echo.Map{"flashcards": cards})
}
