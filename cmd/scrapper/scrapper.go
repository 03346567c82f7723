package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abelzeko/angler-bot/internal/app"
	"github.com/abelzeko/angler-bot/internal/usecases"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// refreshTimeout bounds a single pass over all locations
const refreshTimeout = 10 * time.Minute

func main() {
	cfg, err := app.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Starting Angler conditions refresher...")

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer a.Close()

	// Run immediately on startup
	refresh(a.UseCase, "Initial")

	c := cron.New()
	if err := schedule(c, cfg.Refresher.Schedule, a.UseCase); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up cron job")
	}

	log.Info().Str("schedule", cfg.Refresher.Schedule).Msg("Refresher has been scheduled")
	c.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	<-c.Stop().Done()
	log.Info().Msg("Refresher stopped")
}

// refresher is the part of the use case the cron job drives
type refresher interface {
	RefreshAll(ctx context.Context) error
}

func schedule(c *cron.Cron, spec string, uc refresher) error {
	_, err := c.AddFunc(spec, func() { refresh(uc, "Scheduled") })
	return err
}

func refresh(uc refresher, kind string) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := uc.RefreshAll(ctx); err != nil {
		log.Warn().Err(err).Msgf("%s data refresh finished with errors", kind)
	}
}

var _ refresher = (*usecases.AnglerUseCase)(nil)
