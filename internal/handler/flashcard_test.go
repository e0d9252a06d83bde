package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StevenOyar/vibe-code/internal/ai"
	"github.com/StevenOyar/vibe-code/internal/handler"
	"github.com/StevenOyar/vibe-code/internal/middleware"
	"github.com/StevenOyar/vibe-code/internal/repository"
	"github.com/StevenOyar/vibe-code/internal/utils"
)

// newCardServer mounts the flashcard routes behind the access guard and
// returns a valid bearer for user 5.
func newCardServer(t *testing.T) (*echo.Echo, sqlmock.Sqlmock, string) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := handler.NewFlashcardHandler(
		repository.NewFlashcardRepo(db),
		repository.NewUserRepo(db),
		repository.NewStudyRepo(db),
		ai.NewClient("", "test-model"), // no token, fallback only
	)

	e := echo.New()
	g := e.Group("/v1")
	g.Use(middleware.AccessGuard(testCfg.JWTSecret))
	g.GET("/flashcards", h.List)
	g.DELETE("/flashcards/:id", h.Delete)
	g.POST("/flashcards/:id/review", h.Review)
	g.POST("/flashcards", h.Save)
	g.GET("/milestone", h.Milestone)

	access, err := utils.NewAccessToken(testCfg.JWTSecret, 5, 60)
	require.NoError(t, err)
	return e, mock, access.Token
}

func doAuthed(e *echo.Echo, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer "+bearer)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestListFlashcards(t *testing.T) {
	e, mock, bearer := newCardServer(t)
	now := time.Now()

	mock.ExpectQuery("(?s)SELECT .+ FROM flashcards WHERE user_id = \\?").
		WithArgs(uint64(5), 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "subject", "notes", "question", "answer", "difficulty",
			"times_reviewed", "last_reviewed", "created_at", "updated_at",
		}).AddRow(1, "math", nil, "What is 2+2?", "4", "easy", 0, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM flashcards WHERE user_id = ?")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rec := doAuthed(e, http.MethodGet, "/v1/flashcards", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total      int `json:"total"`
		Flashcards []struct {
			Question string `json:"question"`
		} `json:"flashcards"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Flashcards, 1)
	assert.Equal(t, "What is 2+2?", resp.Flashcards[0].Question)
}

func TestListFlashcardsRequiresAuth(t *testing.T) {
	e, _, _ := newCardServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/flashcards", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteFlashcardNotOwned(t *testing.T) {
	e, mock, bearer := newCardServer(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE FROM flashcards WHERE id=? AND user_id=?")).
		WithArgs(uint64(99), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := doAuthed(e, http.MethodDelete, "/v1/flashcards/99", "", bearer)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewFlashcard(t *testing.T) {
	e, mock, bearer := newCardServer(t)

	mock.ExpectExec("(?s)UPDATE flashcards").
		WithArgs(uint64(3), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doAuthed(e, http.MethodPost, "/v1/flashcards/3/review", "", bearer)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSaveFlashcardsValidation(t *testing.T) {
	e, _, bearer := newCardServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing subject", `{"flashcards":[{"question":"q","answer":"a"}]}`},
		{"empty batch", `{"subject":"math","flashcards":[]}`},
		{"blank question", `{"subject":"math","flashcards":[{"question":" ","answer":"a"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doAuthed(e, http.MethodPost, "/v1/flashcards", tc.body, bearer)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestMilestoneBelowThreshold(t *testing.T) {
	e, mock, bearer := newCardServer(t)

	mock.ExpectQuery("(?s)SELECT COUNT\\(\\*\\) FROM flashcards").
		WithArgs(uint64(5), "math").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))

	rec := doAuthed(e, http.MethodGet, "/v1/milestone?subject=math", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Reached   bool `json:"milestone_reached"`
		Count     int  `json:"card_count"`
		Remaining int  `json:"cards_remaining"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Reached)
	assert.Equal(t, 10, resp.Count)
	assert.Equal(t, 5, resp.Remaining)
}

func TestMilestoneReachedUsesFallbackStory(t *testing.T) {
	e, mock, bearer := newCardServer(t)

	mock.ExpectQuery("(?s)SELECT COUNT\\(\\*\\) FROM flashcards").
		WithArgs(uint64(5), "math").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(16))

	rec := doAuthed(e, http.MethodGet, "/v1/milestone?subject=math", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Reached bool   `json:"milestone_reached"`
		Story   string `json:"story"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Reached)
	assert.Contains(t, resp.Story, "math")
}
