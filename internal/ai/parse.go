package ai

import (
	"fmt"
	"strings"

	"github.com/StevenOyar/vibe-code/internal/model"
)

// ParseCard turns raw model output into a flashcard.  The model does not
// reliably honor the requested format, so parsing tries progressively
// looser strategies: an explicit Question/Answer split, the short Q/A
// form, a first-line/rest split, and finally treating the whole text as
// an answer under a generic question.  Returns nil only when the text is
// blank.
func ParseCard(text, subject, difficulty string) *model.Flashcard {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var question, answer string
	switch {
	case strings.Contains(text, "Answer:"):
		parts := strings.SplitN(text, "Answer:", 2)
		question = strings.TrimSpace(strings.ReplaceAll(parts[0], "Question:", ""))
		answer = strings.TrimSpace(parts[1])
	case strings.Contains(text, "A:"):
		parts := strings.SplitN(text, "A:", 2)
		question = strings.TrimSpace(strings.ReplaceAll(parts[0], "Q:", ""))
		answer = strings.TrimSpace(parts[1])
	case strings.Contains(text, "\n"):
		parts := strings.SplitN(text, "\n", 2)
		question = strings.TrimSpace(parts[0])
		answer = strings.TrimSpace(parts[1])
	}
	if question == "" || answer == "" {
		question = fmt.Sprintf("What can you tell me about this %s concept?", subject)
		answer = text
	}

	return &model.Flashcard{
		Question:   clip(question, 500),
		Answer:     clip(answer, 1000),
		Subject:    subject,
		Difficulty: difficulty,
	}
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
