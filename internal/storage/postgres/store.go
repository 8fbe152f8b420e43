// Package postgres provides the Postgres-backed seo.Store implementation.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pagewatch/internal/seo"
)

//go:embed schema.sql
var schemaSQL string

// Postgres error codes classified into the domain taxonomy.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Store persists URLs and checks in Postgres. The latest-check projection
// is computed at read time with a DISTINCT ON subquery, never written back
// onto the urls table.
type Store struct {
	pool  pgxPool
	clock seo.Clock
}

// NewStore creates a Postgres-backed Store using the provided config.
func NewStore(ctx context.Context, cfg Config, clock seo.Clock) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool, clock: clock}, nil
}

// NewStoreWithPool constructs a Store from an existing pool (primarily for testing).
func NewStoreWithPool(pool pgxPool, clock seo.Clock) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool, clock: clock}, nil
}

// InitSchema creates the urls and url_checks tables if they do not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// CreateURL inserts a URL row. The unique constraint on name is the
// authority for duplicates: a concurrent insert of the same name surfaces
// here as seo.ErrConflict.
func (s *Store) CreateURL(ctx context.Context, name string) (seo.URL, error) {
	now := s.clock.Now()
	rec := seo.URL{Name: name, CreatedAt: now}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO urls (name, created_at) VALUES ($1, $2) RETURNING id`,
		name, now,
	).Scan(&rec.ID)
	if err != nil {
		if isPgError(err, uniqueViolation) {
			return seo.URL{}, fmt.Errorf("url %q: %w", name, seo.ErrConflict)
		}
		return seo.URL{}, fmt.Errorf("insert url: %w", err)
	}
	return rec, nil
}

// GetURL returns the URL with the given id.
func (s *Store) GetURL(ctx context.Context, id int64) (seo.URL, error) {
	return s.getURL(ctx, `SELECT id, name, created_at FROM urls WHERE id = $1`, id)
}

// GetURLByName returns the URL with the given canonical name.
func (s *Store) GetURLByName(ctx context.Context, name string) (seo.URL, error) {
	return s.getURL(ctx, `SELECT id, name, created_at FROM urls WHERE name = $1`, name)
}

func (s *Store) getURL(ctx context.Context, query string, arg any) (seo.URL, error) {
	var rec seo.URL
	err := s.pool.QueryRow(ctx, query, arg).Scan(&rec.ID, &rec.Name, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return seo.URL{}, seo.ErrNotFound
	}
	if err != nil {
		return seo.URL{}, fmt.Errorf("select url: %w", err)
	}
	return rec, nil
}

// ListURLs returns all URLs ordered by id, each joined against its most
// recent check in a single query.
func (s *Store) ListURLs(ctx context.Context) ([]seo.URL, error) {
	rows, err := s.pool.Query(ctx, `
SELECT u.id, u.name, u.created_at,
	c.id, c.status_code, c.title, c.h1, c.description, c.created_at
FROM urls u
LEFT JOIN (
	SELECT DISTINCT ON (url_id) id, url_id, status_code, title, h1, description, created_at
	FROM url_checks
	ORDER BY url_id, id DESC
) c ON c.url_id = u.id
ORDER BY u.id`)
	if err != nil {
		return nil, fmt.Errorf("list urls: %w", err)
	}
	defer rows.Close()

	var urls []seo.URL
	for rows.Next() {
		var (
			rec         seo.URL
			checkID     *int64
			statusCode  *int
			title       *string
			h1          *string
			description *string
			checkedAt   *time.Time
		)
		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.CreatedAt,
			&checkID, &statusCode, &title, &h1, &description, &checkedAt,
		); err != nil {
			return nil, fmt.Errorf("scan url row: %w", err)
		}
		if checkID != nil {
			rec.LastCheck = &seo.Check{
				ID:          *checkID,
				URLID:       rec.ID,
				StatusCode:  *statusCode,
				Title:       *title,
				H1:          *h1,
				Description: *description,
				CreatedAt:   *checkedAt,
			}
		}
		urls = append(urls, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate url rows: %w", err)
	}
	return urls, nil
}

// CreateCheck inserts a check row for an existing URL. A missing URL
// surfaces as seo.ErrNotFound via the foreign key constraint.
func (s *Store) CreateCheck(ctx context.Context, check seo.Check) (seo.Check, error) {
	check.CreatedAt = s.clock.Now()
	err := s.pool.QueryRow(ctx, `
INSERT INTO url_checks (url_id, status_code, title, h1, description, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`,
		check.URLID, check.StatusCode, check.Title, check.H1, check.Description, check.CreatedAt,
	).Scan(&check.ID)
	if err != nil {
		if isPgError(err, foreignKeyViolation) {
			return seo.Check{}, fmt.Errorf("url id %d: %w", check.URLID, seo.ErrNotFound)
		}
		return seo.Check{}, fmt.Errorf("insert check: %w", err)
	}
	return check, nil
}

// ListChecks returns all checks for a URL, newest first.
func (s *Store) ListChecks(ctx context.Context, urlID int64) ([]seo.Check, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, url_id, status_code, title, h1, description, created_at
FROM url_checks
WHERE url_id = $1
ORDER BY id DESC`, urlID)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	defer rows.Close()
	return scanChecks(rows)
}

// LatestCheck returns the most recent check for a URL.
func (s *Store) LatestCheck(ctx context.Context, urlID int64) (seo.Check, error) {
	var check seo.Check
	err := s.pool.QueryRow(ctx, `
SELECT id, url_id, status_code, title, h1, description, created_at
FROM url_checks
WHERE url_id = $1
ORDER BY id DESC
LIMIT 1`, urlID).Scan(
		&check.ID, &check.URLID, &check.StatusCode,
		&check.Title, &check.H1, &check.Description, &check.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return seo.Check{}, seo.ErrNotFound
	}
	if err != nil {
		return seo.Check{}, fmt.Errorf("select latest check: %w", err)
	}
	return check, nil
}

// LatestChecks returns the most recent check per URL in one bulk query.
func (s *Store) LatestChecks(ctx context.Context) (map[int64]seo.Check, error) {
	rows, err := s.pool.Query(ctx, `
SELECT DISTINCT ON (url_id) id, url_id, status_code, title, h1, description, created_at
FROM url_checks
ORDER BY url_id, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list latest checks: %w", err)
	}
	defer rows.Close()

	checks, err := scanChecks(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]seo.Check, len(checks))
	for _, check := range checks {
		out[check.URLID] = check
	}
	return out, nil
}

func scanChecks(rows pgx.Rows) ([]seo.Check, error) {
	var checks []seo.Check
	for rows.Next() {
		var check seo.Check
		if err := rows.Scan(
			&check.ID, &check.URLID, &check.StatusCode,
			&check.Title, &check.H1, &check.Description, &check.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan check row: %w", err)
		}
		checks = append(checks, check)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate check rows: %w", err)
	}
	return checks, nil
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
