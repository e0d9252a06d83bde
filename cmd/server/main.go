package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/StevenOyar/vibe-code/internal/ai"
	"github.com/StevenOyar/vibe-code/internal/config"
	"github.com/StevenOyar/vibe-code/internal/database"
	"github.com/StevenOyar/vibe-code/internal/handler"
	"github.com/StevenOyar/vibe-code/internal/payment"
	"github.com/StevenOyar/vibe-code/internal/queue"
	"github.com/StevenOyar/vibe-code/internal/repository"
	"github.com/StevenOyar/vibe-code/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database open: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("ensure schema: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient() // nil when Redis is unreachable

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	cards := repository.NewFlashcardRepo(db)
	todos := repository.NewTodoRepo(db)
	timetable := repository.NewTimetableRepo(db)
	study := repository.NewStudyRepo(db)
	stats := repository.NewStatsRepo(db)
	payments := repository.NewPaymentRepo(db)

	aiClient := ai.NewClient(cfg.HFToken, cfg.HFModel)
	checkout := payment.NewClient(cfg.IntaSendSecret, cfg.IntaSendPublishable, cfg.IntaSendTest)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, tokens),
		Cards:     handler.NewFlashcardHandler(cards, users, study, aiClient),
		Todos:     handler.NewTodoHandler(todos, study),
		Timetable: handler.NewTimetableHandler(timetable),
		Profile:   handler.NewProfileHandler(users, stats),
		Stats:     handler.NewStatsHandler(stats, cards, tokens),
		Generate:  handler.NewGenerateHandler(aiClient),
		Payments:  handler.NewPaymentHandler(checkout, payments),
	}, cfg, tokens, rdb)

	// Activity consumer runs for the life of the process and reconnects
	// on broker failures.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
