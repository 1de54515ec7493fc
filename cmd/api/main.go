package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-matchmaker/internal/config"
	"github.com/go-matchmaker/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-matchmaker/internal/infrastructure/jwt"
	"github.com/go-matchmaker/internal/infrastructure/smtp"
	"github.com/go-matchmaker/internal/infrastructure/sqlstore"
	"github.com/go-matchmaker/internal/logger"
	transporthttp "github.com/go-matchmaker/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		l := logger.NewLogger("api", "info", false)
		l.Fatal().Err(err).Msg("error loading config")
	}

	log := logger.NewLogger("api", cfg.LogLevel, cfg.IsDevelopment())
	if envErr != nil {
		log.Debug().Msg("no .env file found, reading from environment")
	}
	if cfg.UsesFallbackSecret() {
		log.Warn().Msg("SESSION_SECRET not set, using the development fallback secret")
	}

	ctx := context.Background()

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating session provider")
	}

	userRepo, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("error opening user store")
	}
	defer closeStore()

	deps := &transporthttp.Deps{
		UserRepo:    userRepo,
		Mailer:      smtp.NewMailer(cfg),
		JWTProvider: jwtProvider,
		Logger:      log,
	}

	router, err := transporthttp.NewRouter(cfg, deps)
	if err != nil {
		log.Error().Err(err).Msg("error building router")
		return
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		// returning runs the deferred store close
		log.Error().Err(err).Msg("server error")
		return
	case <-quit:
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
		return
	}
	log.Info().Msg("server stopped")
}

// openStore connects the user store selected by STORE_DRIVER and prepares its
// schema. The returned func releases the connection.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (transporthttp.UserRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := dynamo.Bootstrap(ctx, client, cfg.AWS.UsersTable, log); err != nil {
			return nil, nil, err
		}
		return dynamo.NewUserRepo(client, cfg.AWS.UsersTable), func() {}, nil
	default:
		db, err := sqlstore.Open(ctx, cfg.Store, log)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlstore.NewUserRepo(db), func() { db.Close() }, nil
	}
}
