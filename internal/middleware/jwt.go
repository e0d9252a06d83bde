package middleware // contains reusable HTTP middleware functions

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/StevenOyar/vibe-code/internal/repository"
	"github.com/StevenOyar/vibe-code/internal/utils"
)

// Context keys under which the guards store the authenticated identity.
// Handlers read these back via c.Get().
const (
	CtxUserID  = "user_id"
	CtxJTI     = "jti"
	CtxRevoked = "jti_revoked"
)

// bearer extracts the raw token from the Authorization header, or ""
// when the header is absent or not a Bearer scheme.
func bearer(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

// AccessGuard returns an Echo middleware that validates a Bearer access
// token and injects the numeric user id into the request context.  Access
// tokens are validated statelessly; no database lookup happens here.  The
// provided secret must match the one used when issuing tokens.
func AccessGuard(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearer(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			userID, err := claims.UserID()
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(CtxUserID, userID)
			return next(c)
		}
	}
}

// RefreshGuard returns an Echo middleware for the token refresh and
// logout routes.  It requires a valid Bearer refresh token and then
// consults the revocation ledger: a token whose jti is unknown or marked
// revoked is rejected even though its signature still verifies.  The
// ledger check fails closed, so a database error also yields 401.
func RefreshGuard(secret string, tokens *repository.TokenRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearer(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseRefreshToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			userID, err := claims.UserID()
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			if tokens.IsRevoked(ctx, claims.ID) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token revoked"})
			}

			c.Set(CtxUserID, userID)
			c.Set(CtxJTI, claims.ID)
			return next(c)
		}
	}
}

// LogoutGuard is the lenient variant used only on the logout route.
// Signature, expiry and the refresh type marker are enforced exactly
// like RefreshGuard, and the ledger is consulted, but an already-revoked
// token still passes: revoking twice is a no-op, so a repeated logout
// answers 200 instead of 401.
func LogoutGuard(secret string, tokens *repository.TokenRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearer(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseRefreshToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			userID, err := claims.UserID()
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			revoked := tokens.IsRevoked(ctx, claims.ID)

			c.Set(CtxUserID, userID)
			c.Set(CtxJTI, claims.ID)
			c.Set(CtxRevoked, revoked)
			return next(c)
		}
	}
}
