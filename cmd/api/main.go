package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/goldaccess/ga-core/internal/app"
	"github.com/goldaccess/ga-core/internal/clock"
	"github.com/goldaccess/ga-core/internal/config"
	"github.com/goldaccess/ga-core/internal/storage/postgres"
	transporthttp "github.com/goldaccess/ga-core/internal/transport/http"
	"github.com/goldaccess/ga-core/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load(log)

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	clk := clock.NewSystem()
	cardRepo := postgres.NewCardRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	tapRepo := postgres.NewTapRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)

	readRepo := postgres.NewReadRepository(pool)

	router := transporthttp.NewRouter(transporthttp.Services{
		Fare:      app.NewFareService(cardRepo, productRepo, tapRepo, clk, log),
		Purchase:  app.NewPurchaseService(productRepo, cardRepo, clk),
		Summary:   app.NewSummaryService(readRepo),
		Support:   app.NewSupportService(readRepo),
		Auth:      app.NewAuthService(userRepo),
		Analytics: app.NewAnalyticsService(analyticsRepo),
	}, cfg.CORSOrigins, log)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	log.Infof("api listening on :%s", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("server shutdown error: %v", err)
	}
	log.Info("server stopped")
}
