package seed

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/trustedapp/site/internal/estimates"
	"github.com/trustedapp/site/internal/pricing"
)

// Sample is a named calculator scenario shown as a preset.
type Sample struct {
	Title string
	Input pricing.Input
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Samples returns the preset scenarios, all variations of the default input.
func Samples() []Sample {
	base := pricing.DefaultInput()

	rush := base
	rush.Rush = true

	addOns := base
	addOns.AddOns = []pricing.AddOn{pricing.Transcript, pricing.Memo}

	enterprise := base
	enterprise.Stage = pricing.Enterprise

	sharing := base
	sharing.AllowShare = true
	sharing.ShareRevPct = 0.05
	sharing.ConversionsPerMonth = 2
	sharing.AvgDealSize = 2000

	return []Sample{
		{Title: "IC discovery call", Input: base},
		{Title: "IC discovery call, rush", Input: rush},
		{Title: "IC discovery call with transcript and memo", Input: addOns},
		{Title: "IC discovery call for an enterprise", Input: enterprise},
		{Title: "IC discovery call with content sharing", Input: sharing},
	}
}

// Run inserts missing sample scenarios in a single transaction. It is
// idempotent: samples are matched by title.
func Run(ctx context.Context, db *sqlx.DB, repo *estimates.Repository) (Stats, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}
	for _, s := range Samples() {
		if err := ensureSample(ctx, tx, repo, s, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureSample(ctx context.Context, tx *sqlx.Tx, repo *estimates.Repository, s Sample, stats *Stats) error {
	exists, err := repo.SampleExists(ctx, tx, s.Title)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if _, err := repo.SaveSample(ctx, tx, s.Title, s.Input); err != nil {
		return fmt.Errorf("insert sample %q: %w", s.Title, err)
	}
	stats.Inserts++
	return nil
}
