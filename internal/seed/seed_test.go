package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trustedapp/site/internal/db"
	"github.com/trustedapp/site/internal/estimates"
	"github.com/trustedapp/site/internal/migrations"
	"github.com/trustedapp/site/internal/pricing"
)

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(ctx, database.DB); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	repo := estimates.NewRepository(database)
	want := len(Samples())

	for i := 0; i < 10; i++ {
		stats, err := Run(ctx, database, repo)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != want {
				t.Fatalf("expected %d inserts in first run, got %d", want, stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %d", i, stats.Inserts)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM saved_estimates WHERE is_sample`, want)
	assertCount(t, database, `SELECT COUNT(*) FROM saved_estimates WHERE NOT is_sample`, 0)

	samples, err := repo.Samples(ctx)
	if err != nil {
		t.Fatalf("list samples: %v", err)
	}
	if samples[0].Title != "IC discovery call" {
		t.Fatalf("expected baseline sample first, got %q", samples[0].Title)
	}
}

func TestSamplesAllDerive(t *testing.T) {
	matrix := pricing.DefaultTables().Matrix()
	for _, s := range Samples() {
		if _, err := pricing.Derive(s.Input, matrix); err != nil {
			t.Fatalf("sample %q does not derive: %v", s.Title, err)
		}
	}
}

func assertCount(t *testing.T, database *sqlx.DB, query string, expected int) {
	t.Helper()

	var count int
	if err := database.Get(&count, query); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
