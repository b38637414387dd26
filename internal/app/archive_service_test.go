package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldaccess/ga-core/internal/clock"
	"github.com/goldaccess/ga-core/internal/domain"
)

type fakeArchiveRepo struct {
	records []domain.TapRecord
	deleted *time.Time
}

func (f *fakeArchiveRepo) TapsBefore(_ context.Context, cutoff time.Time) ([]domain.TapRecord, error) {
	var out []domain.TapRecord
	for _, rec := range f.records {
		if rec.Timestamp.Before(cutoff) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeArchiveRepo) DeleteTapsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.deleted = &cutoff
	var kept []domain.TapRecord
	var n int64
	for _, rec := range f.records {
		if rec.Timestamp.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, rec)
	}
	f.records = kept
	return n, nil
}

type memorySink struct {
	files map[string]*bytes.Buffer
}

type nopCloseBuffer struct{ *bytes.Buffer }

func (nopCloseBuffer) Close() error { return nil }

func (s *memorySink) Create(name string) (io.WriteCloser, error) {
	if s.files == nil {
		s.files = make(map[string]*bytes.Buffer)
	}
	buf := &bytes.Buffer{}
	s.files[name] = buf
	return nopCloseBuffer{buf}, nil
}

func TestArchiveService_Run(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 2, 0, 0, 0, time.UTC)
	retention := 30 * 24 * time.Hour

	t.Run("exports and purges rows older than retention", func(t *testing.T) {
		old1 := domain.TapRecord{ID: "t1", CardNumber: "GA-00011", Location: "Belhar", Timestamp: now.AddDate(0, 0, -45)}
		old2 := domain.TapRecord{ID: "t2", CardNumber: "GA-00012", Location: "Maitland", Timestamp: now.AddDate(0, 0, -31)}
		fresh := domain.TapRecord{ID: "t3", CardNumber: "GA-00011", Location: "Woodstock", Timestamp: now.AddDate(0, 0, -1)}

		repo := &fakeArchiveRepo{records: []domain.TapRecord{old1, old2, fresh}}
		sink := &memorySink{}
		svc := NewArchiveService(repo, sink, clock.NewFake(now), retention, nil)

		result, err := svc.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "ledger_archive_2026-08-28.csv.gz", result.FileName)
		assert.Equal(t, 2, result.Exported)
		assert.Equal(t, int64(2), result.Deleted)

		require.Contains(t, sink.files, result.FileName)
		zr, err := gzip.NewReader(bytes.NewReader(sink.files[result.FileName].Bytes()))
		require.NoError(t, err)
		rows, err := csv.NewReader(zr).ReadAll()
		require.NoError(t, err)

		require.Len(t, rows, 3)
		assert.Equal(t, []string{"card_number", "location", "timestamp"}, rows[0])
		assert.Equal(t, []string{"GA-00011", "Belhar", old1.Timestamp.Format(time.RFC3339)}, rows[1])
		assert.Equal(t, []string{"GA-00012", "Maitland", old2.Timestamp.Format(time.RFC3339)}, rows[2])

		// Fresh rows survive the purge.
		require.Len(t, repo.records, 1)
		assert.Equal(t, "t3", repo.records[0].ID)
	})

	t.Run("no-op when nothing is old enough", func(t *testing.T) {
		repo := &fakeArchiveRepo{records: []domain.TapRecord{
			{ID: "t1", CardNumber: "GA-00011", Location: "Belhar", Timestamp: now.AddDate(0, 0, -2)},
		}}
		sink := &memorySink{}
		svc := NewArchiveService(repo, sink, clock.NewFake(now), retention, nil)

		result, err := svc.Run(context.Background())
		require.NoError(t, err)
		assert.Zero(t, result.Exported)
		assert.Empty(t, sink.files)
		assert.Nil(t, repo.deleted, "delete must not run when nothing was exported")
	})
}
