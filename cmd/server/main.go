// Command server runs the legal-backend HTTP API.
//
// Startup order matters: configuration, logging, database (migrations and
// optional admin seeding), tracing, routes, background jobs, then the HTTP
// listener with graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	_ "github.com/goyo-ia/legal-backend/docs"
	"github.com/goyo-ia/legal-backend/internal/config"
	httpapi "github.com/goyo-ia/legal-backend/internal/http"
	"github.com/goyo-ia/legal-backend/internal/jobs"
	"github.com/goyo-ia/legal-backend/internal/observability"
	"github.com/goyo-ia/legal-backend/internal/repo"
	"github.com/goyo-ia/legal-backend/internal/services"
	"github.com/goyo-ia/legal-backend/internal/sysutil"
)

const version = "1.0.0"

// @title        GOYO IA Legal Backend API
// @version      1.0
// @description  Case management, jurisprudence search, outcome predictions, and document templates for legal teams.
// @BasePath     /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("open database")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			log.Fatal().Err(err).Msg("enable gorm tracing")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate schema")
	}
	if err := repo.EnsureANNIndexes(db); err != nil {
		log.Fatal().Err(err).Msg("create vector indexes")
	}
	if err := seedAdmin(ctx, db, cfg.Auth); err != nil {
		log.Fatal().Err(err).Msg("seed admin user")
	}

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	r := gin.New()
	httpapi.RegisterRoutes(r, db, httpapi.Collaborators{}, cfg)

	// Session reaper keeps the sessions table bounded.
	authSvc := services.NewAuthService(db, cfg.Auth.SessionTTL, cfg.Auth.BcryptCost)
	reaper := jobs.NewReaper(authSvc, cfg.Auth.SweepInterval, log.Logger)
	reaper.Start()
	defer reaper.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

// openDB dispatches on the configured driver. Config validation guarantees
// the required DSN or path is present.
func openDB(cfg config.Config) (*gorm.DB, error) {
	if cfg.DB.Driver == "postgres" {
		return repo.OpenPostgres(cfg.DB.URL)
	}
	return repo.OpenSQLite(cfg.DB.Path)
}

// seedAdmin creates the bootstrap admin account when configured. Re-running
// against an existing account is a no-op.
func seedAdmin(ctx context.Context, db *gorm.DB, auth config.AuthConfig) error {
	if auth.SeedAdminEmail == "" {
		return nil
	}
	cost := auth.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(auth.SeedAdminPass), cost)
	if err != nil {
		return err
	}
	u, created, err := repo.EnsureAdminUser(ctx, db, auth.SeedAdminEmail, auth.SeedAdminName, string(hash))
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("email", u.Email).Msg("admin user created")
	}
	return nil
}
