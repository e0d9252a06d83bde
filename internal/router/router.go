// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/StevenOyar/vibe-code/internal/config"
	"github.com/StevenOyar/vibe-code/internal/handler"
	"github.com/StevenOyar/vibe-code/internal/middleware"
	"github.com/StevenOyar/vibe-code/internal/repository"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Cards     *handler.FlashcardHandler
	Todos     *handler.TodoHandler
	Timetable *handler.TimetableHandler
	Profile   *handler.ProfileHandler
	Stats     *handler.StatsHandler
	Generate  *handler.GenerateHandler
	Payments  *handler.PaymentHandler
}

// Register mounts all routes.  The auth endpoints sit behind the Redis
// rate limiter; everything under /v1 (except the session routes) is
// guarded by a valid access token.  The payment webhook stays public
// because the provider calls it unauthenticated.
func Register(e *echo.Echo, h Handlers, cfg config.Config, tokens *repository.TokenRepo, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Session lifecycle.  /refresh and /logout take a refresh-scoped
	// bearer; the guard also consults the revocation ledger.
	e.POST("/signup", h.Auth.Signup, limiter)
	e.POST("/login", h.Auth.Login, limiter)
	e.POST("/refresh", h.Auth.Refresh, limiter, middleware.RefreshGuard(cfg.JWTSecret, tokens))
	e.POST("/logout", h.Auth.Logout, limiter, middleware.LogoutGuard(cfg.JWTSecret, tokens))

	// Provider webhook; authenticated by payment reference, not by user.
	e.POST("/payment-callback", h.Payments.Callback)

	v1 := e.Group("/v1")
	v1.Use(middleware.AccessGuard(cfg.JWTSecret))

	v1.GET("/profile", h.Profile.Profile)
	v1.POST("/xp", h.Profile.AddXP)

	v1.POST("/flashcards", h.Cards.Save)
	v1.GET("/flashcards", h.Cards.List)
	v1.DELETE("/flashcards/:id", h.Cards.Delete)
	v1.POST("/flashcards/:id/review", h.Cards.Review)
	v1.GET("/study-session", h.Cards.StudySession)
	v1.POST("/study-sessions", h.Cards.LogSession)
	v1.GET("/milestone", h.Cards.Milestone)

	v1.POST("/generate", h.Generate.Generate)

	v1.GET("/todos", h.Todos.List)
	v1.POST("/todos", h.Todos.Create)
	v1.PUT("/todos/:id", h.Todos.Update)
	v1.DELETE("/todos/:id", h.Todos.Delete)

	v1.GET("/timetable", h.Timetable.List)
	v1.POST("/timetable", h.Timetable.Create)
	v1.DELETE("/timetable/:id", h.Timetable.Delete)

	v1.GET("/stats", h.Stats.UserStats, middleware.NewStatsCache(rdb, time.Minute))
	v1.GET("/admin/stats", h.Stats.AdminStats)
	v1.POST("/admin/cleanup", h.Stats.AdminCleanup)

	v1.POST("/pay", h.Payments.Pay)
	v1.GET("/payments", h.Payments.History)
}
