package ai

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/StevenOyar/vibe-code/internal/model"
)

// Question template banks for the rule-based generator, keyed by
// difficulty.  %s is the subject.
var fallbackQuestions = map[string][]string{
	"easy": {
		"What is the main topic discussed in these %s notes?",
		"Define the key concept mentioned in these %s notes.",
		"What can you learn from these %s notes?",
	},
	"medium": {
		"How do the concepts in these %s notes relate to each other?",
		"Explain the significance of the main concept in these %s notes.",
		"What are the practical applications of these %s concepts?",
	},
	"hard": {
		"Analyze the implications of the concepts discussed in these %s notes.",
		"How might these %s concepts be applied to solve complex problems?",
		"What are the potential limitations or criticisms of these %s ideas?",
	},
}

// FallbackCard builds a card without any model call.  The question is
// picked deterministically from the template bank, seeded by the input
// so the same notes always yield the same cards; index varies the pick
// across a multi-card request.
func FallbackCard(notes, subject, difficulty string, index int) *model.Flashcard {
	bank, ok := fallbackQuestions[difficulty]
	if !ok {
		bank = fallbackQuestions["medium"]
	}

	h := fnv.New32a()
	h.Write([]byte(notes))
	h.Write([]byte(subject))
	h.Write([]byte(difficulty))
	question := bank[(int(h.Sum32())+index)%len(bank)]

	answer := "Based on the provided notes: " + clip(strings.TrimSpace(notes), 200)
	if len(notes) > 200 {
		answer += "... [Key concepts to review from your complete notes]"
	}

	return &model.Flashcard{
		Question:   fmt.Sprintf(question, subject),
		Answer:     answer,
		Subject:    subject,
		Difficulty: difficulty,
	}
}

// FallbackStory is the canned milestone message used when the model is
// unavailable.
func FallbackStory(subject string, cardCount int) string {
	return fmt.Sprintf(
		"Amazing work! You've created %d flashcards for %s. Your dedication to mastering %s is inspiring. Keep up the fantastic momentum!",
		cardCount, subject, subject)
}
