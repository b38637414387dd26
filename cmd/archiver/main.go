package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/goldaccess/ga-core/internal/app"
	"github.com/goldaccess/ga-core/internal/clock"
	"github.com/goldaccess/ga-core/internal/config"
	"github.com/goldaccess/ga-core/internal/storage/postgres"
)

// dirSink writes archive files into a local cold-storage directory.
type dirSink struct {
	dir string
}

func (s dirSink) Create(name string) (io.WriteCloser, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}
	return os.Create(filepath.Join(s.dir, name))
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load(log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("db ping: %v", err)
	}

	svc := app.NewArchiveService(
		postgres.NewTapRepository(pool),
		dirSink{dir: cfg.ArchiveDir},
		clock.NewSystem(),
		cfg.ArchiveRetention,
		log,
	)

	result, err := svc.Run(ctx)
	if err != nil {
		log.Fatalf("archive pass failed: %v", err)
	}
	if result.Exported == 0 {
		return
	}
	log.WithFields(logrus.Fields{
		"file":     result.FileName,
		"exported": result.Exported,
		"deleted":  result.Deleted,
	}).Info("ledger archive written")
}
