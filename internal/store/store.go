// Package store keeps the history of localization runs in SQLite: one row
// per run, one per marketplace bundle, and the ordered debug trace.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/listran/internal/listing"
	"github.com/valpere/listran/internal/orchestrator"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("run not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to migrate")
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		product_title TEXT NOT NULL,
		brand TEXT,
		source_lang TEXT,
		backend TEXT,
		translations_applied BOOLEAN DEFAULT FALSE,
		succeeded INTEGER DEFAULT 0,
		fallbacks INTEGER DEFAULT 0,
		duration_ms INTEGER DEFAULT 0,
		started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS run_bundles (
		run_id TEXT NOT NULL,
		marketplace TEXT NOT NULL,
		language TEXT NOT NULL,
		state TEXT NOT NULL,
		translated BOOLEAN DEFAULT FALSE,
		fallback_used BOOLEAN DEFAULT FALSE,
		skipped BOOLEAN DEFAULT FALSE,
		retries INTEGER DEFAULT 0,
		reason TEXT,
		title TEXT,
		bullets TEXT,
		description TEXT,
		duration_ms INTEGER DEFAULT 0,
		PRIMARY KEY (run_id, marketplace),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	-- run_debug keeps the advisory trace in its original order
	CREATE TABLE IF NOT EXISTS run_debug (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		line TEXT NOT NULL,
		PRIMARY KEY (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_title ON runs(product_title);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Run is one stored localization run.
type Run struct {
	ID                  string
	ProductTitle        string
	Brand               string
	SourceLang          string
	Backend             string
	TranslationsApplied bool
	Succeeded           int
	Fallbacks           int
	Duration            time.Duration
	StartedAt           time.Time
	Bundles             []BundleRow
	Debug               []string
}

// BundleRow is one marketplace of a stored run.
type BundleRow struct {
	Marketplace  string
	Language     string
	State        string
	Translated   bool
	FallbackUsed bool
	Skipped      bool
	Retries      int
	Reason       string
	Title        string
	Bullets      []string
	Description  string
	Duration     time.Duration
}

// NewRun builds a Run from a finished record and its result. The id is
// generated.
func NewRun(rec *listing.Record, res *orchestrator.OrchestratorResult, backend string) *Run {
	run := &Run{
		ID:                  uuid.New().String(),
		ProductTitle:        rec.Title,
		Brand:               rec.Brand,
		SourceLang:          res.SourceLanguage,
		Backend:             backend,
		TranslationsApplied: rec.TranslationsApplied,
		Succeeded:           res.Succeeded(),
		Fallbacks:           res.Failed(),
		Duration:            res.Duration,
		StartedAt:           res.Started,
		Debug:               append([]string(nil), rec.Debug...),
	}
	for _, o := range res.Outcomes {
		row := BundleRow{
			Marketplace:  o.Marketplace,
			Language:     o.Language,
			State:        string(o.State),
			Translated:   o.Translated,
			FallbackUsed: o.FallbackUsed,
			Skipped:      o.Skipped,
			Retries:      o.Retries,
			Reason:       o.Reason,
			Duration:     o.Duration,
		}
		if b := rec.Listings[o.Marketplace]; b != nil {
			row.Title = b.Title
			row.Bullets = append([]string(nil), b.Bullets...)
			row.Description = b.Description
		}
		run.Bundles = append(run.Bundles, row)
	}
	return run
}

// SaveRun stores run with its bundles and debug trace in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, product_title, brand, source_lang, backend, translations_applied, succeeded, fallbacks, duration_ms, started_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, normalizeText(run.ProductTitle), run.Brand, run.SourceLang, run.Backend,
		run.TranslationsApplied, run.Succeeded, run.Fallbacks, run.Duration.Milliseconds(), run.StartedAt)
	if err != nil {
		return errors.Wrap(err, "insert run")
	}

	for _, b := range run.Bundles {
		bullets, err := json.Marshal(b.Bullets)
		if err != nil {
			return errors.Wrap(err, "encode bullets")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_bundles (run_id, marketplace, language, state, translated, fallback_used, skipped, retries, reason, title, bullets, description, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, b.Marketplace, b.Language, b.State, b.Translated, b.FallbackUsed, b.Skipped,
			b.Retries, b.Reason, b.Title, string(bullets), b.Description, b.Duration.Milliseconds())
		if err != nil {
			return errors.Wrapf(err, "insert bundle %s", b.Marketplace)
		}
	}

	for i, line := range run.Debug {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_debug (run_id, seq, line) VALUES (?, ?, ?)`, run.ID, i, line); err != nil {
			return errors.Wrap(err, "insert debug line")
		}
	}

	return errors.Wrap(tx.Commit(), "commit run")
}

// ListRuns returns run headers, newest first. A non-empty title restricts
// the list to runs of that product; limit ≤ 0 returns everything.
func (s *Store) ListRuns(ctx context.Context, title string, limit int) ([]Run, error) {
	query := `SELECT id, product_title, brand, source_lang, backend, translations_applied, succeeded, fallbacks, duration_ms, started_at FROM runs`
	var args []interface{}
	if title != "" {
		query += ` WHERE product_title = ?`
		args = append(args, normalizeText(title))
	}
	query += ` ORDER BY started_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var brand, source, backend sql.NullString
	var durationMs int64
	if err := row.Scan(&r.ID, &r.ProductTitle, &brand, &source, &backend,
		&r.TranslationsApplied, &r.Succeeded, &r.Fallbacks, &durationMs, &r.StartedAt); err != nil {
		return nil, err
	}
	r.Brand, r.SourceLang, r.Backend = brand.String, source.String, backend.String
	r.Duration = time.Duration(durationMs) * time.Millisecond
	return &r, nil
}

// GetRun loads a run with its bundles and trace.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT id, product_title, brand, source_lang, backend, translations_applied, succeeded, fallbacks, duration_ms, started_at FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "run %s", id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT marketplace, language, state, translated, fallback_used, skipped, retries, reason, title, bullets, description, duration_ms FROM run_bundles WHERE run_id = ? ORDER BY marketplace`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var b BundleRow
		var reason, title, bullets, description sql.NullString
		var durationMs int64
		if err := rows.Scan(&b.Marketplace, &b.Language, &b.State, &b.Translated, &b.FallbackUsed, &b.Skipped,
			&b.Retries, &reason, &title, &bullets, &description, &durationMs); err != nil {
			return nil, err
		}
		b.Reason, b.Title, b.Description = reason.String, title.String, description.String
		b.Duration = time.Duration(durationMs) * time.Millisecond
		if bullets.String != "" {
			if err := json.Unmarshal([]byte(bullets.String), &b.Bullets); err != nil {
				return nil, errors.Wrapf(err, "decode bullets of %s", b.Marketplace)
			}
		}
		run.Bundles = append(run.Bundles, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	debug, err := s.db.QueryContext(ctx, `SELECT line FROM run_debug WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer debug.Close()
	for debug.Next() {
		var line string
		if err := debug.Scan(&line); err != nil {
			return nil, err
		}
		run.Debug = append(run.Debug, line)
	}
	return run, debug.Err()
}

// DeleteRun permanently removes a run and everything attached to it.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM run_debug WHERE run_id = ?`,
		`DELETE FROM run_bundles WHERE run_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(ErrNotFound, "run %s", id)
	}
	return tx.Commit()
}

// Stats summarises the stored history.
type Stats struct {
	Runs         int
	Bundles      int
	Translated   int
	Fallbacks    int
	Skipped      int
	Retries      int
	FallbackRate float64
	// FallbacksByLanguage counts fallbacks per target language.
	FallbacksByLanguage map[string]int
}

// Stats returns summary statistics over every stored run.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{FallbacksByLanguage: make(map[string]int)}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&stats.Runs); err != nil {
		return nil, err
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN translated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN fallback_used THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN skipped THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(retries), 0)
		FROM run_bundles`).Scan(
		&stats.Bundles,
		&stats.Translated,
		&stats.Fallbacks,
		&stats.Skipped,
		&stats.Retries,
	)
	if err != nil {
		return nil, err
	}
	if attempted := stats.Translated + stats.Fallbacks; attempted > 0 {
		stats.FallbackRate = float64(stats.Fallbacks) / float64(attempted)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT language, COUNT(*) FROM run_bundles WHERE fallback_used GROUP BY language`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var lang string
		var n int
		if err := rows.Scan(&lang, &n); err != nil {
			return nil, err
		}
		stats.FallbacksByLanguage[lang] = n
	}
	return stats, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization so
// titles typed on different systems match.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
