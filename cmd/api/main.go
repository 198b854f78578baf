// Command api serves the infrastructure project dashboard.
//
// @title                       Infrastructure Project Dashboard API
// @version                     1.0
// @description                 Project catalog, analytics and proximity-verified ratings.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/projectwatch/dashboard-api/internal/api"
	"github.com/projectwatch/dashboard-api/internal/api/handler"
	"github.com/projectwatch/dashboard-api/internal/api/metrics"
	"github.com/projectwatch/dashboard-api/internal/core/ports"
	"github.com/projectwatch/dashboard-api/internal/core/service"
	"github.com/projectwatch/dashboard-api/internal/infrastructure/config"
	"github.com/projectwatch/dashboard-api/internal/infrastructure/db/mongo"
	"github.com/projectwatch/dashboard-api/internal/infrastructure/db/redis"
	"github.com/projectwatch/dashboard-api/internal/infrastructure/oauth"
	"github.com/projectwatch/dashboard-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("load config")
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "dashboard-api",
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()

	projectRepo := mongo.NewProjectRepository(db)
	reactionRepo := mongo.NewReactionRepository(db)
	userRepo := mongo.NewUserRepository(db)
	locationRepo := mongo.NewLocationRepository(db)
	settingRepo := mongo.NewSettingRepository(db)
	if err := mongo.EnsureIndexes(ctx, projectRepo, reactionRepo, userRepo, locationRepo); err != nil {
		return err
	}

	checks := map[string]handler.Check{
		"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
	}

	var cache ports.AnalyticsCache
	if cfg.Cache.Enabled {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		cache = redis.NewAnalyticsCache(rdb, cfg.Cache.TTL)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Cache.TTL).Msg("analytics cache enabled")
	}

	providers := identityProviders(cfg)
	available := make([]string, len(providers))
	for i, p := range providers {
		available[i] = p.Name()
	}
	if len(providers) == 0 {
		log.Warn().Msg("no oauth providers configured; only operator login is available")
	}

	policy := service.NewProximityPolicy(logger.Component("proximity"))
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, cfg.AdminEmails, logger.Component("auth"))
	analytics := service.NewAnalyticsService(projectRepo, reactionRepo, userRepo, cache, logger.Component("analytics"),
		service.WithCacheObserver(func(result string) {
			metrics.AnalyticsCacheTotal.WithLabelValues(result).Inc()
		}),
	)

	e := api.NewRouter(api.Deps{
		Projects:          service.NewProjectService(projectRepo, reactionRepo, cache, logger.Component("projects")),
		Reactions:         service.NewReactionService(projectRepo, reactionRepo, userRepo, locationRepo, cache, policy, logger.Component("reactions")),
		Analytics:         analytics,
		Users:             service.NewUserService(userRepo, locationRepo, logger.Component("users")),
		Auth:              authService,
		ProviderSettings:  service.NewProviderSettings(settingRepo, available),
		IdentityProviders: providers,
		Checks:            checks,
		JWTSecret:         cfg.JWTSecret,
		RateLimitRPS:      cfg.RateLimitRPS,
		SecureCookies:     cfg.IsProduction(),
		Log:               logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func identityProviders(cfg *config.Config) []ports.IdentityProvider {
	var out []ports.IdentityProvider
	if g := cfg.OAuth.Google; g.Configured() {
		out = append(out, oauth.NewGoogle(oauth.Credentials{ClientID: g.ClientID, ClientSecret: g.ClientSecret, RedirectURL: g.RedirectURL}))
	}
	if gh := cfg.OAuth.GitHub; gh.Configured() {
		out = append(out, oauth.NewGitHub(oauth.Credentials{ClientID: gh.ClientID, ClientSecret: gh.ClientSecret, RedirectURL: gh.RedirectURL}))
	}
	return out
}
