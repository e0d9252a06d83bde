// Package ai talks to the HuggingFace inference API to turn study notes
// into flashcards.  Every entry point degrades to a deterministic
// rule-based generator so card generation keeps working when the model
// is cold, rate limited or unconfigured.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/StevenOyar/vibe-code/internal/model"
)

const inferenceBase = "https://api-inference.huggingface.co/models/"

// Client wraps the hosted inference endpoint for a single text model.
type Client struct {
	token string
	model string
	http  *http.Client
}

// NewClient builds a Client.  An empty token disables remote calls;
// Generate then goes straight to the fallback generator.
func NewClient(token, model string) *Client {
	return &Client{
		token: token,
		model: model,
		http:  &http.Client{Timeout: 30 * time.Second},
	}
}

type inferenceRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type inferenceResult struct {
	GeneratedText string `json:"generated_text"`
}

// complete runs one text generation round trip and returns the raw
// generated text.  Non-200 statuses come back as errors so callers can
// fall back.
func (c *Client) complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if c.token == "" {
		return "", fmt.Errorf("inference token not configured")
	}
	body, err := json.Marshal(inferenceRequest{
		Inputs: prompt,
		Parameters: map[string]any{
			"max_new_tokens": maxTokens,
			"temperature":    temperature,
			"do_sample":      true,
		},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, inferenceBase+c.model, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// 503 means the model is still loading; treat it like any
		// other failure and let the caller fall back.
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("inference API returned %d", resp.StatusCode)
	}

	var results []inferenceResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", fmt.Errorf("inference API returned no candidates")
	}
	return results[0].GeneratedText, nil
}

// difficulty-specific framing for the generation prompt.
var difficultyPrompts = map[string]string{
	"easy":   "Create a simple, basic question and answer about %s from these notes. Make it suitable for beginners:",
	"medium": "Create a moderately challenging question about %s that requires understanding. Based on these notes:",
	"hard":   "Create a complex, analytical question about %s that requires critical thinking. From these notes:",
}

// GenerateCard asks the model for one question/answer pair.  Notes are
// truncated to keep the prompt within the model's input window.
func (c *Client) GenerateCard(ctx context.Context, notes, subject, difficulty string) (*model.Flashcard, error) {
	framing, ok := difficultyPrompts[difficulty]
	if !ok {
		framing = difficultyPrompts["medium"]
	}
	prompt := fmt.Sprintf(framing, subject) + " " + truncate(notes, 800) + "\n\nQuestion:"

	text, err := c.complete(ctx, prompt, 200, 0.7)
	if err != nil {
		return nil, err
	}
	card := ParseCard(text, subject, difficulty)
	if card == nil {
		return nil, fmt.Errorf("unparseable model output")
	}
	return card, nil
}

// GenerateStory writes the short congratulatory blurb shown when a user
// passes a card creation milestone in one subject.  Errors are returned
// so the handler can substitute a canned message.
func (c *Client) GenerateStory(ctx context.Context, subject string, cardCount int) (string, error) {
	prompt := fmt.Sprintf(
		"Write a short, encouraging story (2-3 sentences) congratulating a student who just created %d flashcards about %s. Make it motivational and subject-specific.",
		cardCount, subject)
	return c.complete(ctx, prompt, 150, 0.8)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
