package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/avdeev/authgate/internal/application/auth"
	"github.com/avdeev/authgate/internal/application/ports"
	"github.com/avdeev/authgate/internal/config"
	infraauth "github.com/avdeev/authgate/internal/infrastructure/auth"
	httprouter "github.com/avdeev/authgate/internal/infrastructure/http"
	"github.com/avdeev/authgate/internal/infrastructure/http/handlers"
	"github.com/avdeev/authgate/internal/infrastructure/http/middleware"
	"github.com/avdeev/authgate/internal/infrastructure/lockout"
	memstore "github.com/avdeev/authgate/internal/infrastructure/persistence/memory"
	"github.com/avdeev/authgate/internal/infrastructure/persistence/migrations"
	"github.com/avdeev/authgate/internal/infrastructure/persistence/postgres"
	"github.com/avdeev/authgate/internal/infrastructure/security"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "run schema migrations and exit")
	devMode := flag.Bool("dev", false, "run with the in-memory store (no database)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()

	if *migrateOnly {
		if err := migrations.Run(ctx, cfg.Database.URL); err != nil {
			log.Fatal().Err(err).Msg("run migrations")
		}
		log.Info().Msg("migrations applied")
		return
	}

	var (
		pool  *pgxpool.Pool
		users ports.UserRepository
	)
	if *devMode {
		users = memstore.NewUserRepository()
		log.Warn().Msg("running with in-memory store; data is not persisted")
	} else {
		pool, err = pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to database")
		}
		defer pool.Close()
		// Store connectivity is fatal at startup, after a short bounded retry
		// to ride out container orchestration races.
		backoff := retry.WithMaxRetries(5, retry.NewFibonacci(500*time.Millisecond))
		if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			return retry.RetryableError(pool.Ping(ctx))
		}); err != nil {
			log.Fatal().Err(err).Msg("ping database")
		}
		users = postgres.NewUserRepository(pool)
	}

	hasher := security.NewBcryptHasher(cfg.Bcrypt.Cost, cfg.Bcrypt.MaxConcurrent)
	issuer := infraauth.NewTokenIssuer([]byte(cfg.JWT.Secret), cfg.JWT.Issuer, cfg.JWT.Expiry)
	failures := lockout.NewMemoryStore(cfg.Lockout.MaxAttempts, cfg.Lockout.Cooldown)

	registerUC := auth.NewRegister(users, hasher, issuer)
	loginUC := auth.NewLogin(users, hasher, issuer, failures)
	getProfileUC := auth.NewGetProfile(users)
	updateProfileUC := auth.NewUpdateProfile(users)

	authHandler := handlers.NewAuthHandler(registerUC, loginUC, getProfileUC, updateProfileUC, log)
	healthHandler := handlers.NewHealthHandler(pool)

	rateLimit, err := middleware.NewIPRateLimiter(cfg.RateLimit.RatePerIP)
	if err != nil {
		log.Fatal().Err(err).Msg("create rate limiter")
	}
	requireJWT := middleware.NewAuthValidator(issuer).Handler
	secureMiddleware := middleware.NewSecure(middleware.SecureOptions(cfg.Secure.IsDevelopment))
	corsMiddleware := middleware.CORS(cfg.CORS.AllowedOrigins, nil, nil)

	router := httprouter.NewRouter(httprouter.RouterConfig{
		AuthHandler:   authHandler,
		HealthHandler: healthHandler,
		RequireJWT:    requireJWT,
		Log:           log,
		Secure:        secureMiddleware,
		CORS:          corsMiddleware,
		AuthRateLimit: rateLimit,
		Metrics:       true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}
