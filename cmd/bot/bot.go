package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/abelzeko/angler-bot/internal/api"
	"github.com/abelzeko/angler-bot/internal/app"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := app.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Starting Angler Bot...")

	if cfg.Telegram.Token == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer a.Close()

	telegramBot, err := api.NewTelegramBot(cfg.Telegram.Token, a.UseCase)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}

	c := cron.New()
	if err := telegramBot.Schedule(c, cfg.Telegram.DigestSchedule, cfg.Telegram.AlertSchedule); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up notification jobs")
	}
	c.Start()
	defer c.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the bot
	telegramBot.Start(ctx)
	log.Info().Msg("Angler Bot stopped")
}
