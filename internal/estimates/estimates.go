// Package estimates stores advanced-calculator inputs under shareable IDs.
// Only inputs are persisted; results are derived again on every read.
package estimates

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/trustedapp/site/internal/pricing"
)

// ErrNotFound is returned when no estimate has the requested ID.
var ErrNotFound = errors.New("estimate not found")

const maxTitleLength = 120

// Estimate is a saved calculator input.
type Estimate struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	InputJSON string    `db:"input_json"`
	IsSample  bool      `db:"is_sample"`
	CreatedAt time.Time `db:"created_at"`
}

// Input decodes the saved calculator input.
func (e Estimate) Input() (pricing.Input, error) {
	var in pricing.Input
	if err := json.Unmarshal([]byte(e.InputJSON), &in); err != nil {
		return pricing.Input{}, fmt.Errorf("decode estimate %s input: %w", e.ID, err)
	}
	return in, nil
}

// Repository reads and writes saved estimates.
type Repository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewRepository returns a Repository backed by db.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Save stores in under a new random ID.
func (r *Repository) Save(ctx context.Context, title string, in pricing.Input) (Estimate, error) {
	return r.insert(ctx, r.db, title, in, false)
}

// SaveSample stores a named sample scenario inside tx.
func (r *Repository) SaveSample(ctx context.Context, tx *sqlx.Tx, title string, in pricing.Input) (Estimate, error) {
	return r.insert(ctx, tx, title, in, true)
}

// SampleExists reports whether a sample titled title is already stored.
func (r *Repository) SampleExists(ctx context.Context, tx *sqlx.Tx, title string) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM saved_estimates WHERE is_sample AND title = ? LIMIT 1)`, title)
	if err != nil {
		return false, fmt.Errorf("check sample estimate existence: %w", err)
	}
	return exists, nil
}

func (r *Repository) insert(ctx context.Context, exec sqlx.ExtContext, title string, in pricing.Input, sample bool) (Estimate, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return Estimate{}, fmt.Errorf("encode estimate input: %w", err)
	}

	e := Estimate{
		ID:        uuid.NewString(),
		Title:     normalizeTitle(title),
		InputJSON: string(payload),
		IsSample:  sample,
		CreatedAt: r.now().UTC(),
	}

	_, err = sqlx.NamedExecContext(ctx, exec, `
		INSERT INTO saved_estimates (id, title, input_json, is_sample, created_at)
		VALUES (:id, :title, :input_json, :is_sample, :created_at)
	`, e)
	if err != nil {
		return Estimate{}, fmt.Errorf("insert estimate: %w", err)
	}
	return e, nil
}

// Get returns the estimate with the given ID.
func (r *Repository) Get(ctx context.Context, id string) (Estimate, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Estimate{}, ErrNotFound
	}

	var e Estimate
	err := r.db.GetContext(ctx, &e, `
		SELECT id, title, input_json, is_sample, created_at
		FROM saved_estimates
		WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Estimate{}, ErrNotFound
	}
	if err != nil {
		return Estimate{}, fmt.Errorf("query estimate: %w", err)
	}
	return e, nil
}

// List returns user-saved estimates newest first, optionally filtered by a
// case-insensitive title substring.
func (r *Repository) List(ctx context.Context, query string, limit int) ([]Estimate, error) {
	query = strings.TrimSpace(query)
	search := "%" + query + "%"

	out := make([]Estimate, 0)
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, title, input_json, is_sample, created_at
		FROM saved_estimates
		WHERE NOT is_sample AND (? = '' OR title LIKE ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, query, search, limit)
	if err != nil {
		return nil, fmt.Errorf("query estimates: %w", err)
	}
	return out, nil
}

// Samples returns the seeded sample scenarios in insertion order.
func (r *Repository) Samples(ctx context.Context) ([]Estimate, error) {
	out := make([]Estimate, 0)
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, title, input_json, is_sample, created_at
		FROM saved_estimates
		WHERE is_sample
		ORDER BY created_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sample estimates: %w", err)
	}
	return out, nil
}

func normalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if r := []rune(title); len(r) > maxTitleLength {
		title = string(r[:maxTitleLength])
	}
	return title
}
