package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/goldaccess/ga-core/internal/config"
	"github.com/goldaccess/ga-core/migrations"
)

// Commuter archetypes drive plausible tap times and routes.
type archetype struct {
	name          string
	morning       float64 // decimal hour of first tap
	evening       float64
	route         [2]string
	variance      float64 // ± hours of jitter
	weekendTravel bool
}

var archetypes = []archetype{
	{"Corporate", 6.5, 17.5, [2]string{"Belhar", "Cape Town CBD"}, 0.5, false},
	{"Student", 8.0, 14.5, [2]string{"Cape Town CBD", "Bellville"}, 0.75, false},
	{"ShiftWorker", 13.5, 22.25, [2]string{"Maitland", "Woodstock"}, 0.25, true},
	{"Casual", 10.0, 16.0, [2]string{"Bellville", "Maitland"}, 2.0, true},
}

const (
	cardCount   = 100
	historyDays = 60
	seedPass    = "password123"
)

func main() {
	log := logrus.New()
	cfg := config.Load(log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	log.Info("seeding cards and portal users")
	if err := seedCardsAndUsers(ctx, pool, log); err != nil {
		log.Fatalf("seed cards: %v", err)
	}

	log.Infof("seeding %d days of ride history", historyDays)
	taps, err := seedHistory(ctx, pool, rng)
	if err != nil {
		log.Fatalf("seed history: %v", err)
	}
	log.Infof("seed complete: %d historical taps", taps)
}

func seedCardsAndUsers(ctx context.Context, pool *pgxpool.Pool, log *logrus.Logger) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	for i := 1; i <= cardCount; i++ {
		card := fmt.Sprintf("GA-%05d", i)
		if _, err := pool.Exec(ctx, `
INSERT INTO ga_cards (card_number, status) VALUES ($1, 'ACTIVE')
ON CONFLICT (card_number) DO NOTHING`, card); err != nil {
			return fmt.Errorf("insert card %s: %w", card, err)
		}

		// Cards 1-10 are kept unregistered for support-desk demos.
		if i <= 10 {
			continue
		}
		if _, err := pool.Exec(ctx, `
INSERT INTO portal_users (id, full_name, email, password_hash, linked_ga_card)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (email) DO NOTHING`,
			uuid.NewString(),
			fmt.Sprintf("Virtual Commuter %d", i),
			fmt.Sprintf("user%d@commuter.co.za", i),
			string(hash),
			card,
		); err != nil {
			return fmt.Errorf("insert portal user %d: %w", i, err)
		}
	}
	log.Infof("seeded %d cards", cardCount)
	return nil
}

type rider struct {
	card      string
	profile   archetype
	ridesLeft int
	expiry    time.Time
}

func seedHistory(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand) (int, error) {
	riders := make([]*rider, 0, cardCount-10)
	for i := 11; i <= cardCount; i++ {
		riders = append(riders, &rider{
			card:    fmt.Sprintf("GA-%05d", i),
			profile: archetypes[rng.Intn(len(archetypes))],
		})
	}

	start := time.Now().UTC().AddDate(0, 0, -historyDays)
	totalTaps := 0
	batch := &pgx.Batch{}

	for day := 0; day <= historyDays; day++ {
		date := start.AddDate(0, 0, day)
		weekend := date.Weekday() == time.Saturday || date.Weekday() == time.Sunday

		for _, r := range riders {
			if rng.Float64() < 0.10 { // stayed home
				continue
			}
			if weekend && !r.profile.weekendTravel {
				continue
			}

			trips := []struct {
				base float64
				loc  string
			}{
				{r.profile.morning, r.profile.route[0]},
				{r.profile.evening, r.profile.route[1]},
			}
			for _, trip := range trips {
				shift := (rng.Float64()*2 - 1) * r.profile.variance
				at := date.Add(time.Duration((trip.base + shift) * float64(time.Hour)))

				if r.ridesLeft <= 0 || (!r.expiry.IsZero() && at.After(r.expiry)) {
					if err := queueProduct(batch, r, rng, at); err != nil {
						return totalTaps, err
					}
				}

				r.ridesLeft--
				batch.Queue(`INSERT INTO ga_tap_ledger (id, card_number, location, timestamp) VALUES ($1, $2, $3, $4)`,
					uuid.NewString(), r.card, trip.loc, at)
				totalTaps++
			}
		}
	}

	res := pool.SendBatch(ctx, batch)
	if err := res.Close(); err != nil {
		return totalTaps, fmt.Errorf("send seed batch: %w", err)
	}
	return totalTaps, nil
}

// queueProduct records a historical purchase. Historical products are
// inserted EXHAUSTED so the live slot invariants stay clean for demos.
func queueProduct(batch *pgx.Batch, r *rider, rng *rand.Rand, at time.Time) error {
	monthly := rng.Float64() > 0.7
	rides, validDays, label := 10, 14, "Weekly (10 Rides)"
	if monthly {
		rides, validDays, label = 48, 37, "Monthly (48 Rides)"
	}

	r.ridesLeft = rides
	r.expiry = at.AddDate(0, 0, validDays)

	batch.Queue(`
INSERT INTO ga_card_products (product_id, card_number, product_type, rides_remaining, status, purchase_date, expiry_date)
VALUES ($1, $2, $3, $4, 'EXHAUSTED', $5, $6)`,
		uuid.NewString(), r.card, label, rides, at, r.expiry)
	return nil
}
