package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StevenOyar/vibe-code/internal/middleware"
	"github.com/StevenOyar/vibe-code/internal/repository"
	"github.com/StevenOyar/vibe-code/internal/utils"
)

const testSecret = "guard-secret"

func echoWithGuard(mw echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		uid, _ := c.Get(middleware.CtxUserID).(uint64)
		return c.JSON(http.StatusOK, echo.Map{"user_id": uid})
	}, mw)
	return e
}

func doReq(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAccessGuardAllowsValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, 60)
	require.NoError(t, err)

	rec := doReq(echoWithGuard(middleware.AccessGuard(testSecret)), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "42")
}

func TestAccessGuardRejectsMissingHeader(t *testing.T) {
	rec := doReq(echoWithGuard(middleware.AccessGuard(testSecret)), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAccessGuardRejectsNonBearer(t *testing.T) {
	rec := doReq(echoWithGuard(middleware.AccessGuard(testSecret)), "Basic abc123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAccessGuardRejectsRefreshToken(t *testing.T) {
	tok, err := utils.NewRefreshToken(testSecret, 42, 30)
	require.NoError(t, err)

	rec := doReq(echoWithGuard(middleware.AccessGuard(testSecret)), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAccessGuardRejectsExpiredToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, -1)
	require.NoError(t, err)

	rec := doReq(echoWithGuard(middleware.AccessGuard(testSecret)), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshGuardAllowsLiveToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	tokens := repository.NewTokenRepo(db)

	tok, err := utils.NewRefreshToken(testSecret, 7, 30)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT revoked FROM refresh_tokens WHERE jti=? LIMIT 1")).
		WithArgs(tok.JTI).
		WillReturnRows(sqlmock.NewRows([]string{"revoked"}).AddRow(false))

	rec := doReq(echoWithGuard(middleware.RefreshGuard(testSecret, tokens)), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshGuardRejectsRevokedJTI(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	tokens := repository.NewTokenRepo(db)

	tok, err := utils.NewRefreshToken(testSecret, 7, 30)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT revoked FROM refresh_tokens WHERE jti=? LIMIT 1")).
		WithArgs(tok.JTI).
		WillReturnRows(sqlmock.NewRows([]string{"revoked"}).AddRow(true))

	rec := doReq(echoWithGuard(middleware.RefreshGuard(testSecret, tokens)), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshGuardRejectsUnknownJTI(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	tokens := repository.NewTokenRepo(db)

	tok, err := utils.NewRefreshToken(testSecret, 7, 30)
	require.NoError(t, err)

	// No ledger row: the signature still verifies but the guard fails
	// closed.
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT revoked FROM refresh_tokens WHERE jti=? LIMIT 1")).
		WithArgs(tok.JTI).
		WillReturnRows(sqlmock.NewRows([]string{"revoked"}))

	rec := doReq(echoWithGuard(middleware.RefreshGuard(testSecret, tokens)), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshGuardRejectsAccessToken(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	tokens := repository.NewTokenRepo(db)

	tok, err := utils.NewAccessToken(testSecret, 7, 60)
	require.NoError(t, err)

	rec := doReq(echoWithGuard(middleware.RefreshGuard(testSecret, tokens)), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
