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

	"github.com/StevenOyar/vibe-code/internal/config"
	"github.com/StevenOyar/vibe-code/internal/handler"
	"github.com/StevenOyar/vibe-code/internal/middleware"
	"github.com/StevenOyar/vibe-code/internal/repository"
	"github.com/StevenOyar/vibe-code/internal/utils"
)

var testCfg = config.Config{
	JWTSecret:      "handler-test-secret",
	AccessTTLMin:   60,
	RefreshTTLDays: 30,
	BcryptCost:     4,
}

// newAuthServer wires the auth routes the same way the router does.
func newAuthServer(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	a := handler.NewAuthHandler(testCfg, users, tokens)

	e := echo.New()
	e.POST("/signup", a.Signup)
	e.POST("/login", a.Login)
	e.POST("/refresh", a.Refresh, middleware.RefreshGuard(testCfg.JWTSecret, tokens))
	e.POST("/logout", a.Logout, middleware.LogoutGuard(testCfg.JWTSecret, tokens))
	return e, mock
}

func postJSON(e *echo.Echo, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func userRow(t *testing.T, id uint64, username, email, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(password, testCfg.BcryptCost)
	require.NoError(t, err)
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "xp", "level",
		"current_streak", "best_streak", "total_cards", "last_activity",
		"last_streak_date", "created_at", "updated_at",
	}).AddRow(id, username, email, hash, 0, 1, 0, 0, 0, nil, nil, now, now)
}

func TestSignupSuccess(t *testing.T) {
	e, mock := newAuthServer(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO users (username, email, password_hash) VALUES (?,?,?)")).
		WithArgs("alice", "alice@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := postJSON(e, "/signup",
		`{"username":"alice","email":"alice@example.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupValidation(t *testing.T) {
	e, _ := newAuthServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing fields", `{"username":"alice"}`},
		{"short password", `{"username":"alice","email":"a@b.com","password":"12345"}`},
		{"short username", `{"username":"al","email":"a@b.com","password":"secret1"}`},
		{"bad email", `{"username":"alice","email":"nodots","password":"secret1"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(e, "/signup", tc.body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSignupDuplicate(t *testing.T) {
	e, mock := newAuthServer(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(assertableErr("Error 1062 (23000): Duplicate entry 'alice@example.com' for key 'users.email'"))

	rec := postJSON(e, "/signup",
		`{"username":"alice","email":"alice@example.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already exists")
}

func TestLoginSuccess(t *testing.T) {
	e, mock := newAuthServer(t)

	mock.ExpectQuery("(?s)SELECT .+ FROM users WHERE username=\\? OR email=\\? LIMIT 1").
		WithArgs("alice", "alice").
		WillReturnRows(userRow(t, 5, "alice", "alice@example.com", "secret1"))
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO refresh_tokens (jti, user_id, expires_at) VALUES (?,?,?)")).
		WithArgs(sqlmock.AnyArg(), uint64(5), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := postJSON(e, "/login", `{"username":"alice","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
		User         struct {
			ID       uint64 `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, uint64(5), resp.User.ID)

	// Both tokens verify and carry the right type markers.
	_, err := utils.ParseAccessToken(testCfg.JWTSecret, resp.AccessToken)
	assert.NoError(t, err)
	claims, err := utils.ParseRefreshToken(testCfg.JWTSecret, resp.RefreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUniform401(t *testing.T) {
	e, mock := newAuthServer(t)

	// Unknown user.
	mock.ExpectQuery("(?s)SELECT .+ FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	recUnknown := postJSON(e, "/login", `{"username":"ghost","password":"whatever"}`, "")

	// Known user, wrong password.
	mock.ExpectQuery("(?s)SELECT .+ FROM users").
		WillReturnRows(userRow(t, 5, "alice", "alice@example.com", "secret1"))
	recWrongPass := postJSON(e, "/login", `{"username":"alice","password":"wrong"}`, "")

	assert.Equal(t, http.StatusUnauthorized, recUnknown.Code)
	assert.Equal(t, http.StatusUnauthorized, recWrongPass.Code)
	// The two failures are indistinguishable to the client.
	assert.JSONEq(t, recUnknown.Body.String(), recWrongPass.Body.String())
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	e, mock := newAuthServer(t)

	refresh, err := utils.NewRefreshToken(testCfg.JWTSecret, 5, 30)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT revoked FROM refresh_tokens WHERE jti=? LIMIT 1")).
		WithArgs(refresh.JTI).
		WillReturnRows(sqlmock.NewRows([]string{"revoked"}).AddRow(false))

	rec := postJSON(e, "/refresh", "", refresh.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3600, resp.ExpiresIn)

	claims, err := utils.ParseAccessToken(testCfg.JWTSecret, resp.AccessToken)
	require.NoError(t, err)
	uid, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), uid)
}

func TestRefreshRejectedAfterLogout(t *testing.T) {
	e, mock := newAuthServer(t)

	refresh, err := utils.NewRefreshToken(testCfg.JWTSecret, 5, 30)
	require.NoError(t, err)

	// Logout revokes the jti.
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT revoked FROM refresh_tokens WHERE jti=? LIMIT 1")).
		WithArgs(refresh.JTI).
		WillReturnRows(sqlmock.NewRows([]string{"revoked"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE refresh_tokens SET revoked=TRUE WHERE jti=?")).
		WithArgs(refresh.JTI).
		WillReturnResult(sqlmock.NewResult(0, 1))

	recLogout := postJSON(e, "/logout", "", refresh.Token)
	assert.Equal(t, http.StatusOK, recLogout.Code)

	// The same token is now refused at refresh.
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT revoked FROM refresh_tokens WHERE jti=? LIMIT 1")).
		WithArgs(refresh.JTI).
		WillReturnRows(sqlmock.NewRows([]string{"revoked"}).AddRow(true))

	recRefresh := postJSON(e, "/refresh", "", refresh.Token)
	assert.Equal(t, http.StatusUnauthorized, recRefresh.Code)
}

func TestLogoutIdempotent(t *testing.T) {
	e, mock := newAuthServer(t)

	refresh, err := utils.NewRefreshToken(testCfg.JWTSecret, 5, 30)
	require.NoError(t, err)

	// First logout revokes; the second sees a revoked jti and is still a
	// successful no-op.
	for i := 0; i < 2; i++ {
		mock.ExpectQuery(regexp.QuoteMeta(
			"SELECT revoked FROM refresh_tokens WHERE jti=? LIMIT 1")).
			WithArgs(refresh.JTI).
			WillReturnRows(sqlmock.NewRows([]string{"revoked"}).AddRow(i > 0))
		mock.ExpectExec(regexp.QuoteMeta(
			"UPDATE refresh_tokens SET revoked=TRUE WHERE jti=?")).
			WithArgs(refresh.JTI).
			WillReturnResult(sqlmock.NewResult(0, int64(1-i)))

		rec := postJSON(e, "/logout", "", refresh.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRefreshWithAccessTokenRejected(t *testing.T) {
	e, _ := newAuthServer(t)

	access, err := utils.NewAccessToken(testCfg.JWTSecret, 5, 60)
	require.NoError(t, err)

	rec := postJSON(e, "/refresh", "", access.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// assertableErr builds an error from a driver-style message.
type assertableErr string

func (e assertableErr) Error() string { return string(e) }
