package app

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"

	"github.com/goldaccess/ga-core/internal/clock"
	"github.com/goldaccess/ga-core/internal/domain"
)

// ArchiveRepository gives the archiver its extract and purge operations.
// Deleting receipts is safe by design: the fare core never reads historical
// ledger rows when authorizing a tap.
type ArchiveRepository interface {
	TapsBefore(ctx context.Context, cutoff time.Time) ([]domain.TapRecord, error)
	DeleteTapsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ArchiveSink receives the exported file. The filename carries the export
// date, e.g. "ledger_archive_2026-08-28.csv.gz".
type ArchiveSink interface {
	Create(name string) (io.WriteCloser, error)
}

// ArchiveService is the nightly cold-storage job: extract ledger rows older
// than the retention window, write them out as gzip-compressed CSV, then
// delete them from the live database.
type ArchiveService struct {
	repo      ArchiveRepository
	sink      ArchiveSink
	clock     clock.Clock
	retention time.Duration
	log       *logrus.Logger
}

const defaultRetention = 30 * 24 * time.Hour

func NewArchiveService(repo ArchiveRepository, sink ArchiveSink, clk clock.Clock, retention time.Duration, log *logrus.Logger) *ArchiveService {
	if retention <= 0 {
		retention = defaultRetention
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ArchiveService{
		repo:      repo,
		sink:      sink,
		clock:     clk,
		retention: retention,
		log:       log,
	}
}

type ArchiveResult struct {
	FileName string
	Exported int
	Deleted  int64
}

// Run performs one archive pass. A pass with nothing to archive writes no
// file and deletes nothing.
func (s *ArchiveService) Run(ctx context.Context) (ArchiveResult, error) {
	now := s.clock.Now()
	cutoff := now.Add(-s.retention)

	records, err := s.repo.TapsBefore(ctx, cutoff)
	if err != nil {
		return ArchiveResult{}, fmt.Errorf("extract ledger rows: %w", err)
	}
	if len(records) == 0 {
		s.log.Info("archiver: no records older than retention window")
		return ArchiveResult{}, nil
	}

	name := fmt.Sprintf("ledger_archive_%s.csv.gz", now.Format("2006-01-02"))
	if err := s.export(name, records); err != nil {
		return ArchiveResult{}, err
	}

	// Delete only after the export landed. Re-running after a failed delete
	// re-exports the same rows, which the sink overwrites harmlessly.
	deleted, err := s.repo.DeleteTapsBefore(ctx, cutoff)
	if err != nil {
		return ArchiveResult{}, fmt.Errorf("purge archived rows: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"file":     name,
		"exported": len(records),
		"deleted":  deleted,
	}).Info("archiver: pass complete")

	return ArchiveResult{
		FileName: name,
		Exported: len(records),
		Deleted:  deleted,
	}, nil
}

func (s *ArchiveService) export(name string, records []domain.TapRecord) (err error) {
	out, err := s.sink.Create(name)
	if err != nil {
		return fmt.Errorf("create archive %s: %w", name, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close archive %s: %w", name, cerr)
		}
	}()

	zw := gzip.NewWriter(out)
	cw := csv.NewWriter(zw)

	if err := cw.Write([]string{"card_number", "location", "timestamp"}); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{rec.CardNumber, rec.Location, rec.Timestamp.UTC().Format(time.RFC3339)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return zw.Close()
}
