package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"server/internal/adapter/counter"
	"server/internal/adapter/repo"
	"server/internal/domain"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/infra/google"
	"server/internal/providers/aimodel"
	"server/internal/providers/gsearch"
	"server/internal/providers/reddit"
	"server/internal/summarize"
	"server/internal/usage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()
	sqlRunner := infra.NewSQLRunner(dbpool, logger)

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}

	counters := counter.NewPostgres(sqlRunner)
	if err := counters.DeleteExpired(ctx); err != nil {
		logger.Warn().Err(err).Msg("expired counter sweep failed")
	}

	// Signed-in tiers stay unlimited; only the anonymous cap is tunable.
	gate := usage.NewGate(
		usage.WithLimits(usage.Limits{
			domain.TierAnonymous: cfg.AnonSearchLimit,
			domain.TierFree:      domain.UnlimitedSearches,
			domain.TierPaid:      domain.UnlimitedSearches,
		}),
		usage.WithAnonymousWindow(cfg.AnonWindow),
	)

	searcher := &summarize.Service{
		Reddit: reddit.New(reddit.Options{UserAgent: cfg.RedditUserAgent}),
		Search: gsearch.New(gsearch.Options{
			APIKey:   cfg.GoogleSearchAPIKey,
			EngineID: cfg.GoogleSearchEngineID,
			BaseURL:  cfg.GoogleSearchBaseURL,
		}),
		AI: aimodel.New(aimodel.Options{
			GeminiAPIKey:     cfg.GeminiAPIKey,
			GeminiBaseURL:    cfg.GeminiBaseURL,
			AnthropicAPIKey:  cfg.AnthropicAPIKey,
			AnthropicBaseURL: cfg.AnthropicBaseURL,
		}),
		Logger: logger,
		Now:    time.Now,
	}

	app := &handlers.App{
		Config:    cfg,
		Logger:    logger,
		JWTSecret: cfg.JWTSecret,
		Verifier:  google.NewVerifier(cfg.GoogleIssuer, cfg.GoogleClientID),
		Users:     repo.NewUserRepository(sqlRunner),
		History:   repo.NewHistoryRepository(sqlRunner),
		Gate:      gate,
		Counters:  counters,
		Searcher:  searcher,
	}

	router := httpapi.NewRouter(app, resolver)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != os.ErrClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
