package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	adapthttp "macrolens/internal/adapter/http"
	"macrolens/internal/adapter/memory"
	"macrolens/internal/adapter/postgres"
	"macrolens/internal/adapter/s3store"
	"macrolens/internal/adapter/vision"
	"macrolens/internal/app"
	"macrolens/internal/config"
	"macrolens/internal/domain"
	"macrolens/internal/ratelimit"
)

// ServeCmd runs the HTTP API.
type ServeCmd struct {
	Memory bool `help:"Use in-memory storage instead of PostgreSQL and S3."`
}

type stores struct {
	profiles domain.ProfileRepository
	foods    domain.FoodRepository
	streaks  domain.StreakRepository
	photos   domain.PhotoStore
	close    func()
}

// Run serves the API until SIGINT or SIGTERM, then shuts down gracefully.
func (c *ServeCmd) Run(cctx *Context) error {
	cfg, log := cctx.Config, cctx.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := c.openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	limits := config.DefaultRateLimits()
	if cfg.RateLimitsFile != "" {
		if limits, err = config.LoadRateLimits(cfg.RateLimitsFile); err != nil {
			return err
		}
	}
	limiter, closeLimiter, err := openLimiter(ctx, cfg.RedisURL, log)
	if err != nil {
		return err
	}
	defer closeLimiter()

	auth := app.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.Audience)
	if cfg.Auth.JWKSURL != "" {
		auth = auth.WithJWKS(ctx, cfg.Auth.JWKSURL, cfg.Auth.Issuer)
	}
	if cfg.Auth.JWTSecret == "" && cfg.Auth.JWKSURL == "" {
		log.Warn("no token verification configured; every authenticated route will reject requests")
	}

	analyzer := vision.New(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model)
	svc := adapthttp.Services{
		Auth:     auth,
		Profiles: app.NewProfileService(st.profiles),
		Foods: app.NewFoodService(st.foods, st.photos, analyzer, log.Named("food"), app.FoodConfig{
			MaxUploadBytes: cfg.MaxUploadBytes,
			PhotoURLTTL:    cfg.Storage.URLTTL,
		}),
		Summary: app.NewSummaryService(st.foods, st.profiles),
		Streaks: app.NewStreakService(st.profiles, st.streaks, log.Named("streak")),
	}
	h := adapthttp.New(svc, adapthttp.Options{
		Logger:      log.Named("http"),
		Limiter:     limiter,
		RateLimits:  limits,
		CORSOrigins: cfg.CORSOrigins,
		TrustProxy:  cfg.TrustProxy,
	}).Handler()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.Bool("memory", c.Memory))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (c *ServeCmd) openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	if c.Memory {
		db := memory.New()
		return &stores{profiles: db, foods: db, streaks: db, photos: memory.NewPhotos(), close: func() {}}, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	photos, err := s3store.Open(ctx, cfg.Storage)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}
	log.Info("storage ready", zap.String("bucket", cfg.Storage.Bucket), zap.String("endpoint", cfg.Storage.Endpoint))
	return &stores{
		profiles: db, foods: db, streaks: db, photos: photos,
		close: func() { _ = db.Close() },
	}, nil
}

// openLimiter returns a Redis limiter when redisURL is set and an in-memory
// one otherwise.
func openLimiter(ctx context.Context, redisURL string, log *zap.Logger) (ratelimit.Limiter, func(), error) {
	if redisURL == "" {
		mem := ratelimit.NewMemory()
		go func() {
			t := time.NewTicker(time.Minute)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					mem.Sweep()
				}
			}
		}()
		return mem, func() {}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable; rate limiting will fail open", zap.Error(err))
	}
	return ratelimit.NewRedis(rdb, "macrolens:ratelimit"), func() { _ = rdb.Close() }, nil
}
