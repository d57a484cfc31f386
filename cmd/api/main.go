package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medscanhq/medscan-api/config"
	"github.com/medscanhq/medscan-api/internal/handler"
	adminhandler "github.com/medscanhq/medscan-api/internal/handler/admin"
	appointmenthandler "github.com/medscanhq/medscan-api/internal/handler/appointment"
	patienthandler "github.com/medscanhq/medscan-api/internal/handler/patient"
	recordhandler "github.com/medscanhq/medscan-api/internal/handler/record"
	"github.com/medscanhq/medscan-api/internal/router"
	adminservice "github.com/medscanhq/medscan-api/internal/service/admin"
	appointmentservice "github.com/medscanhq/medscan-api/internal/service/appointment"
	medicalservice "github.com/medscanhq/medscan-api/internal/service/medical"
	patientservice "github.com/medscanhq/medscan-api/internal/service/patient"
	"github.com/medscanhq/medscan-api/internal/store"
	"github.com/medscanhq/medscan-api/pkg/auth"
	"github.com/medscanhq/medscan-api/pkg/cache"
	"github.com/medscanhq/medscan-api/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:      parseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal(err, "server exited")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.WithMetrics(cfg.Database.Type, store.New(cfg.Database))
	if err := st.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	defer st.Close()

	if err := st.CreateSchema(ctx); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	log.WithFields(map[string]interface{}{"backend": cfg.Database.Type}).Info("store ready")

	tokens := auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	appCache := cache.New(cfg.Cache.RedisURL, cfg.Cache.TTL)
	adminStore := store.NewAdminStore(st)

	patientSvc := patientservice.NewService(st, log)
	medicalSvc := medicalservice.NewService(st, log, cfg.Uploads.Dir)
	appointmentSvc := appointmentservice.NewService(st, log)
	adminSvc := adminservice.NewService(adminStore, appCache, tokens, log, cfg.Database.Type)

	engine := router.New(cfg, log, tokens, router.Handlers{
		Health:      handler.NewHealthHandler(st, cfg.Database.Type, version),
		Patient:     patienthandler.NewHandler(patientSvc),
		Record:      recordhandler.NewHandler(medicalSvc),
		Appointment: appointmenthandler.NewHandler(appointmentSvc),
		Admin:       adminhandler.NewHandler(adminSvc),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(map[string]interface{}{"addr": srv.Addr}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func parseLevel(level string) logger.Level {
	switch level {
	case "debug":
		return logger.DebugLevel
	case "warn", "warning":
		return logger.WarnLevel
	case "error":
		return logger.ErrorLevel
	default:
		return logger.InfoLevel
	}
}
