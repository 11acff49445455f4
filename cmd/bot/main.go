package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ansemenov/remindbot/internal/bot"
	"github.com/ansemenov/remindbot/internal/clock"
	"github.com/ansemenov/remindbot/internal/config"
	"github.com/ansemenov/remindbot/internal/database"
	"github.com/ansemenov/remindbot/internal/repository"
	"github.com/ansemenov/remindbot/internal/scheduler"
	"github.com/ansemenov/remindbot/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().Level(level)

	if cfg.DatabaseURI == "" {
		log.Fatal().Msg("DATABASE_URI is required")
	}
	if cfg.TelegramToken == "" {
		log.Fatal().Msg("TELEGRAM_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("connected to database")

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	reminderRepo := repository.NewReminderRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	clk := clock.System()
	svc := service.New(reminderRepo, clk)

	// Separate API client for the scheduler so delivery never contends
	// with the update loop.
	tgAPI, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create telegram api")
	}

	sched := scheduler.New(reminderRepo, statsRepo, bot.NewNotifier(tgAPI), clk, cfg.PollInterval)

	b, err := bot.New(cfg.TelegramToken, svc, sched.Notify)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sched.Start(ctx)
		return nil
	})
	g.Go(func() error {
		return b.Start(ctx)
	})

	log.Info().Msg("starting bot")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("bot error")
	}
	log.Info().Msg("shutdown complete")
}
