package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goldaccess/ga-core/internal/domain"
	"github.com/goldaccess/ga-core/internal/testutil"
)

func TestProductRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewProductRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("FindActive returns the active product or nil", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		card := testutil.InsertCard(t, ctx, pool, "GA-10001", domain.CardStatusActive)

		p, err := repo.FindActive(ctx, card)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p != nil {
			t.Fatalf("expected nil for empty card, got %+v", p)
		}

		id := testutil.InsertProduct(t, ctx, pool, domain.Product{
			CardNumber:     card,
			Type:           "Weekly (10 Rides)",
			RidesRemaining: 10,
			Status:         domain.ProductStatusActive,
		})

		p, err = repo.FindActive(ctx, card)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p == nil || p.ID != id || p.RidesRemaining != 10 || p.Status != domain.ProductStatusActive {
			t.Fatalf("unexpected product: %+v", p)
		}
	})

	t.Run("FindOldestQueued returns the queued product", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		card := testutil.InsertCard(t, ctx, pool, "GA-10002", domain.CardStatusActive)
		base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

		// The one-queued index allows a single QUEUED row per card, so the
		// surrounding rows here are exhausted history.
		testutil.InsertProduct(t, ctx, pool, domain.Product{
			ID:             "zzzzzzzz-0000-0000-0000-000000000001",
			CardNumber:     card,
			Type:           "Weekly (10 Rides)",
			RidesRemaining: 0,
			Status:         domain.ProductStatusExhausted,
			PurchaseDate:   base,
		})
		queuedID := testutil.InsertProduct(t, ctx, pool, domain.Product{
			ID:             "aaaaaaaa-0000-0000-0000-000000000002",
			CardNumber:     card,
			Type:           "Monthly (48 Rides)",
			RidesRemaining: 48,
			Status:         domain.ProductStatusQueued,
			PurchaseDate:   base.Add(time.Hour),
		})

		p, err := repo.FindOldestQueued(ctx, card)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p == nil || p.ID != queuedID {
			t.Fatalf("expected queued product %s, got %+v", queuedID, p)
		}

		p, err = repo.FindOldestQueued(ctx, "GA-99999")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p != nil {
			t.Fatalf("expected nil for unknown card, got %+v", p)
		}
	})

	t.Run("Promote flips QUEUED to ACTIVE exactly once", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		card := testutil.InsertCard(t, ctx, pool, "GA-10003", domain.CardStatusActive)
		id := testutil.InsertProduct(t, ctx, pool, domain.Product{
			CardNumber:     card,
			Type:           "Weekly (10 Rides)",
			RidesRemaining: 10,
			Status:         domain.ProductStatusQueued,
		})

		if err := repo.Promote(ctx, id); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		p, err := repo.FindActive(ctx, card)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p == nil || p.ID != id {
			t.Fatalf("expected promoted product active, got %+v", p)
		}

		if err := repo.Promote(ctx, id); err != domain.ErrAlreadyPromoted {
			t.Fatalf("expected ErrAlreadyPromoted on repeat, got %v", err)
		}
	})

	t.Run("Promote refuses when the active slot is taken", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		card := testutil.InsertCard(t, ctx, pool, "GA-10004", domain.CardStatusActive)
		testutil.InsertProduct(t, ctx, pool, domain.Product{
			CardNumber:     card,
			Type:           "Weekly (10 Rides)",
			RidesRemaining: 3,
			Status:         domain.ProductStatusActive,
		})
		queuedID := testutil.InsertProduct(t, ctx, pool, domain.Product{
			CardNumber:     card,
			Type:           "Monthly (48 Rides)",
			RidesRemaining: 48,
			Status:         domain.ProductStatusQueued,
		})

		if err := repo.Promote(ctx, queuedID); err != domain.ErrAlreadyPromoted {
			t.Fatalf("expected ErrAlreadyPromoted, got %v", err)
		}

		p, err := repo.FindOldestQueued(ctx, card)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p == nil || p.ID != queuedID {
			t.Fatalf("expected product still queued, got %+v", p)
		}
	})

	t.Run("Debit spends one ride when the token matches", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		card := testutil.InsertCard(t, ctx, pool, "GA-10005", domain.CardStatusActive)
		id := testutil.InsertProduct(t, ctx, pool, domain.Product{
			CardNumber:     card,
			Type:           "Weekly (10 Rides)",
			RidesRemaining: 10,
			Status:         domain.ProductStatusActive,
		})

		remaining, status, err := repo.Debit(ctx, id, 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if remaining != 9 || status != domain.ProductStatusActive {
			t.Fatalf("expected 9 ACTIVE, got %d %s", remaining, status)
		}

		_, _, err = repo.Debit(ctx, id, 10)
		if err != domain.ErrStaleProduct {
			t.Fatalf("expected ErrStaleProduct on stale token, got %v", err)
		}
	})

	t.Run("Debit of the last ride exhausts the product", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		card := testutil.InsertCard(t, ctx, pool, "GA-10006", domain.CardStatusActive)
		id := testutil.InsertProduct(t, ctx, pool, domain.Product{
			CardNumber:     card,
			Type:           "Weekly (10 Rides)",
			RidesRemaining: 1,
			Status:         domain.ProductStatusActive,
		})

		remaining, status, err := repo.Debit(ctx, id, 1)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if remaining != 0 || status != domain.ProductStatusExhausted {
			t.Fatalf("expected 0 EXHAUSTED, got %d %s", remaining, status)
		}

		_, _, err = repo.Debit(ctx, id, 0)
		if err != domain.ErrStaleProduct {
			t.Fatalf("expected ErrStaleProduct on exhausted product, got %v", err)
		}

		p, err := repo.FindActive(ctx, card)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p != nil {
			t.Fatalf("expected no active product, got %+v", p)
		}
	})

	t.Run("concurrent debits with the same token spend one ride", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		card := testutil.InsertCard(t, ctx, pool, "GA-10007", domain.CardStatusActive)
		id := testutil.InsertProduct(t, ctx, pool, domain.Product{
			CardNumber:     card,
			Type:           "Weekly (10 Rides)",
			RidesRemaining: 5,
			Status:         domain.ProductStatusActive,
		})

		const racers = 6
		var wg sync.WaitGroup
		results := make([]error, racers)
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _, results[i] = repo.Debit(ctx, id, 5)
			}(i)
		}
		wg.Wait()

		wins, stale := 0, 0
		for _, err := range results {
			switch err {
			case nil:
				wins++
			case domain.ErrStaleProduct:
				stale++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if wins != 1 || stale != racers-1 {
			t.Fatalf("expected 1 win and %d stale, got %d/%d", racers-1, wins, stale)
		}

		p, err := repo.FindActive(ctx, card)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p == nil || p.RidesRemaining != 4 {
			t.Fatalf("expected 4 rides remaining, got %+v", p)
		}
	})

	t.Run("InsertProduct maps slot violations", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		card := testutil.InsertCard(t, ctx, pool, "GA-10008", domain.CardStatusActive)
		now := time.Now().UTC()

		active := domain.Product{
			ID:             "11111111-0000-0000-0000-000000000001",
			CardNumber:     card,
			Type:           "Weekly (10 Rides)",
			RidesRemaining: 10,
			Status:         domain.ProductStatusActive,
			PurchaseDate:   now,
			ExpiryDate:     now.AddDate(0, 0, 14),
		}
		if err := repo.InsertProduct(ctx, active); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		rivalActive := active
		rivalActive.ID = "11111111-0000-0000-0000-000000000002"
		if err := repo.InsertProduct(ctx, rivalActive); err != domain.ErrStaleProduct {
			t.Fatalf("expected ErrStaleProduct on second active, got %v", err)
		}

		queued := active
		queued.ID = "11111111-0000-0000-0000-000000000003"
		queued.Status = domain.ProductStatusQueued
		if err := repo.InsertProduct(ctx, queued); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		rivalQueued := queued
		rivalQueued.ID = "11111111-0000-0000-0000-000000000004"
		if err := repo.InsertProduct(ctx, rivalQueued); err != domain.ErrQueueFull {
			t.Fatalf("expected ErrQueueFull on second queued, got %v", err)
		}
	})

	t.Run("ListCurrentStatuses skips exhausted products", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		card := testutil.InsertCard(t, ctx, pool, "GA-10009", domain.CardStatusActive)

		testutil.InsertProduct(t, ctx, pool, domain.Product{
			CardNumber: card, Type: "Weekly (10 Rides)", RidesRemaining: 0, Status: domain.ProductStatusExhausted,
		})
		testutil.InsertProduct(t, ctx, pool, domain.Product{
			CardNumber: card, Type: "Weekly (10 Rides)", RidesRemaining: 4, Status: domain.ProductStatusActive,
		})
		testutil.InsertProduct(t, ctx, pool, domain.Product{
			CardNumber: card, Type: "Monthly (48 Rides)", RidesRemaining: 48, Status: domain.ProductStatusQueued,
		})

		statuses, err := repo.ListCurrentStatuses(ctx, card)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(statuses) != 2 {
			t.Fatalf("expected 2 statuses, got %v", statuses)
		}
	})

	t.Run("ProductHistory lists newest first", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		card := testutil.InsertCard(t, ctx, pool, "GA-10010", domain.CardStatusActive)
		base := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

		oldID := testutil.InsertProduct(t, ctx, pool, domain.Product{
			CardNumber: card, Type: "Weekly (10 Rides)", RidesRemaining: 0,
			Status: domain.ProductStatusExhausted, PurchaseDate: base,
		})
		newID := testutil.InsertProduct(t, ctx, pool, domain.Product{
			CardNumber: card, Type: "Monthly (48 Rides)", RidesRemaining: 40,
			Status: domain.ProductStatusActive, PurchaseDate: base.AddDate(0, 0, 20),
		})

		history, err := repo.ProductHistory(ctx, card)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(history) != 2 || history[0].ID != newID || history[1].ID != oldID {
			t.Fatalf("unexpected history order: %+v", history)
		}
	})
}
