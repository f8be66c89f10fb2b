package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"recruitbot/internal/adapters/discord"
	"recruitbot/internal/adapters/web"
	"recruitbot/internal/application"
	"recruitbot/internal/config"
	"recruitbot/internal/infrastructure/i18n"
	"recruitbot/internal/reminder"
	pkgdiscord "recruitbot/pkg/discord"
	"recruitbot/pkg/logger"
	"recruitbot/pkg/tz"
)

const shutdownTimeout = 15 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot",
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)
	log := logger.For("Main")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	loc := tz.Load(cfg.Timezone)
	translator := i18n.NewTranslator(cfg.Locale)

	bot, err := discord.NewBot(cfg.Token, cfg.GuildID)
	if err != nil {
		return err
	}
	messenger := discord.NewMessenger(bot.Session())
	registry := reminder.NewRegistry(messenger, translator, reminder.WithRegistryLocale(cfg.Locale))
	dispatcher := reminder.NewDispatcher(messenger, translator, registry, reminder.WithDispatcherLocale(cfg.Locale))
	scanner := reminder.NewScanner(repo, dispatcher)

	service := application.NewEventService(repo, registry, func(s string, now time.Time) (time.Time, bool) {
		return pkgdiscord.NormalizeStartTime(s, loc, now)
	})
	bot.Bind(discord.NewHandler(service, translator, cfg.Locale))

	if err := bot.Open(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := scanner.Start(gctx, bot.Ready())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if cfg.OpsAddr != "" {
		ops := web.NewServer(cfg.OpsAddr, bot, registry)
		g.Go(func() error { return ops.Start(gctx) })
	}

	log.Info("🤖 bot running, press CTRL+C to quit")
	<-gctx.Done()
	log.Info("shutting down")

	scanner.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("dispatcher shutdown incomplete")
	}
	if err := registry.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("escalation shutdown incomplete")
	}
	runErr := g.Wait()
	if err := bot.Close(); err != nil {
		log.WithError(err).Warn("close discord session failed")
	}
	return runErr
}
