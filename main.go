package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Black-And-White-Club/discord-osu-bot/app/accounts/linkstore"
	"github.com/Black-And-White-Club/discord-osu-bot/app/bot"
	discord "github.com/Black-And-White-Club/discord-osu-bot/app/discordgo"
	"github.com/Black-And-White-Club/discord-osu-bot/app/health"
	"github.com/Black-And-White-Club/discord-osu-bot/app/jobs"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/api"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/scores"
	"github.com/Black-And-White-Club/discord-osu-bot/app/settings"
	"github.com/Black-And-White-Club/discord-osu-bot/app/shared/redaction"
	cache "github.com/Black-And-White-Club/discord-osu-bot/bigcache"
	"github.com/Black-And-White-Club/discord-osu-bot/config"
	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Load configuration.
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger.
	logger, stopLogger, err := observability.NewLogger(observability.LoggerOptions{
		ServiceName: cfg.Service.Name,
		Level:       cfg.Observability.SlogLevel(),
		LokiURL:     cfg.Loki.URL,
		TenantID:    cfg.Loki.TenantID,
		Username:    cfg.Loki.Username,
		Password:    cfg.Loki.Password,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer stopLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.InfoContext(ctx, "Starting osu! bot",
		attr.String("version", cfg.Service.Version),
		attr.String("discord_token", redaction.RedactSecret(cfg.Discord.Token)),
		attr.String("osu_client_secret", redaction.RedactSecret(cfg.Osu.ClientSecret)),
		attr.String("osu_api_url", cfg.Osu.BaseURL),
		attr.String("loki_url", redaction.RedactURLCredentials(cfg.Loki.URL)),
		attr.String("linked_accounts_path", cfg.Storage.LinkedAccountsPath),
		attr.String("settings_path", cfg.Storage.SettingsPath),
	)

	// Initialize OpenTelemetry/Tempo tracing.
	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingOptions{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		TempoEndpoint:  cfg.Tempo.Endpoint,
		Insecure:       cfg.Tempo.Insecure,
		SampleRate:     cfg.Tempo.SampleRate,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize tracing", attr.Error(err))
		return
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("Failed to flush traces", attr.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	starCache, err := cache.NewCache(ctx, cache.Options{
		LifeWindow: cfg.TopPlays.StarRatingCacheTTL,
		MaxSizeMB:  cfg.TopPlays.StarRatingCacheMaxMB,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create star rating cache", attr.Error(err))
		return
	}
	defer starCache.Close()

	emojis, err := scores.LoadEmojis(cfg.Storage.EmojisPath)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load emojis", attr.Error(err))
		return
	}

	settingsStore, err := settings.Load(cfg.Storage.SettingsPath, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load settings", attr.Error(err))
		return
	}
	links := linkstore.NewFileStore(cfg.Storage.LinkedAccountsPath, logger)

	client := api.NewClient(ctx, api.Config{
		BaseURL:      cfg.Osu.BaseURL,
		TokenURL:     cfg.Osu.TokenURL,
		ClientID:     cfg.Osu.ClientID,
		ClientSecret: cfg.Osu.ClientSecret,
		Timeout:      cfg.Osu.Timeout,
		MaxRetries:   cfg.Osu.MaxRetries,
	}, logger, metrics)

	healthHandler := health.NewHandler(cfg.Service.Version, registry)
	go func() {
		if err := healthHandler.StartServer(cfg.Observability.HealthAddr); err != nil {
			logger.Error("Health server stopped", attr.Error(err))
		}
	}()

	scheduler, err := jobs.NewScheduler(links, starCache, logger, metrics)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create job scheduler", attr.Error(err))
		return
	}
	if err := scheduler.Start(ctx, jobs.DefaultLinkedAccountsInterval, jobs.DefaultCacheStatsInterval); err != nil {
		logger.ErrorContext(ctx, "Failed to start job scheduler", attr.Error(err))
		return
	}

	// Create Discord session.
	discordSession, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create Discord session", attr.Error(err))
		return
	}

	discordBot, err := bot.NewDiscordBot(discord.NewDiscordSession(discordSession, logger), cfg, logger, bot.Deps{
		Client:    client,
		Links:     links,
		Settings:  settingsStore,
		StarCache: starCache,
		Emojis:    emojis,
		Metrics:   metrics,
		Health:    healthHandler,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create Discord bot", attr.Error(err))
		return
	}

	if err := discordBot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorContext(ctx, "Discord bot error", attr.Error(err))
		stop()
	}

	<-ctx.Done()
	logger.Info("Shutting down gracefully...")

	discordBot.Close()

	if err := scheduler.Shutdown(); err != nil {
		logger.Error("Failed to stop job scheduler", attr.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := healthHandler.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to stop health server", attr.Error(err))
	}

	logger.Info("Shutdown complete.")
}
