package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/rolodex/db"
	"github.com/monocle-dev/rolodex/internal/auth"
	"github.com/monocle-dev/rolodex/internal/config"
	"github.com/monocle-dev/rolodex/internal/logging"
	"github.com/monocle-dev/rolodex/internal/middleware"
	"github.com/monocle-dev/rolodex/internal/router"
	"github.com/monocle-dev/rolodex/internal/scheduler"
	"github.com/monocle-dev/rolodex/internal/services"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		logging.New("info", "text").Fatalf("Error loading config: %v", err)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	gdb, err := db.Connect(cfg.DatabaseURL)

	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err = db.MigrateDatabase(gdb); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Info("DB connecting successful")

	var mailer services.Mailer = services.NewLogMailer(log)

	if cfg.SendGridAPIKey != "" {
		mailer = services.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom)
	} else {
		log.Warn("SENDGRID_API_KEY not set, emails will be logged")
	}

	authService := services.NewAuthService(gdb, auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), mailer, log, services.AuthOptions{
		BaseURL:    cfg.BaseURL,
		BcryptCost: cfg.BcryptCost,
		AvatarDir:  filepath.Join(cfg.PublicDir, "avatars"),
	})

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)

	jobs := scheduler.NewScheduler(log)
	defer jobs.Stop()

	jobs.AddJob("staging-sweep", cfg.UploadStagingTTL, func(context.Context) error {
		removed, err := services.SweepStaged(cfg.TempDir, cfg.UploadStagingTTL, time.Now())
		if removed > 0 {
			log.WithField("removed", removed).Info("Swept stale uploads")
		}
		return err
	})

	jobs.AddJob("ratelimit-cleanup", 10*time.Minute, func(context.Context) error {
		limiter.Cleanup(10 * time.Minute)
		return nil
	})

	r := router.NewRouter(router.Dependencies{
		Config:      cfg,
		Log:         log,
		DB:          gdb,
		Auth:        authService,
		Contacts:    services.NewContactService(gdb),
		RateLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server running on port %s", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
	}
}
