package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/tinyurl-go/internal/shortener"
)

const uniqueViolationCode = "23505"

const linkColumns = "id, short_code, long_url, qr_code, clicks, created_at, updated_at"

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed link store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the short_links table and its indexes if missing.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS short_links (
			id BIGSERIAL PRIMARY KEY,
			short_code VARCHAR(20) NOT NULL UNIQUE,
			long_url TEXT NOT NULL,
			qr_code TEXT,
			clicks BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_short_links_long_url ON short_links (long_url);
		CREATE INDEX IF NOT EXISTS idx_short_links_created_at ON short_links (created_at);
	`

	_, err := p.pool.Exec(ctx, query)

	return err
}

func (p *PostgresStore) Create(ctx context.Context, link *shortener.ShortLink) (*shortener.ShortLink, error) {
	query := `
		INSERT INTO short_links (short_code, long_url, qr_code)
		VALUES ($1, $2, $3)
		RETURNING ` + linkColumns

	saved, err := scanLink(p.pool.QueryRow(ctx, query, link.ShortCode, link.LongURL, link.QRCode))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, shortener.ErrCodeTaken
		}

		return nil, err
	}

	return saved, nil
}

func (p *PostgresStore) FindByShortCode(ctx context.Context, code string) (*shortener.ShortLink, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM short_links
		WHERE short_code = $1
	`

	return p.queryLink(ctx, query, code)
}

func (p *PostgresStore) FindByLongURL(ctx context.Context, longURL string) (*shortener.ShortLink, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM short_links
		WHERE long_url = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	return p.queryLink(ctx, query, longURL)
}

func (p *PostgresStore) Update(ctx context.Context, link *shortener.ShortLink) (*shortener.ShortLink, error) {
	query := `
		UPDATE short_links
		SET long_url = $2, qr_code = $3, clicks = $4, updated_at = NOW()
		WHERE short_code = $1
		RETURNING ` + linkColumns

	updated, err := scanLink(p.pool.QueryRow(ctx, query,
		link.ShortCode,
		link.LongURL,
		link.QRCode,
		link.Clicks,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return updated, nil
}

func (p *PostgresStore) DeleteByShortCode(ctx context.Context, code string) (bool, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM short_links WHERE short_code = $1`, code)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (p *PostgresStore) GetStats(ctx context.Context, code string) (*shortener.ShortLink, error) {
	return p.FindByShortCode(ctx, code)
}

func (p *PostgresStore) Exists(ctx context.Context, code string) (bool, error) {
	var exists bool

	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM short_links WHERE short_code = $1)`, code,
	).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (p *PostgresStore) queryLink(ctx context.Context, query string, arg any) (*shortener.ShortLink, error) {
	link, err := scanLink(p.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return link, nil
}

func scanLink(row pgx.Row) (*shortener.ShortLink, error) {
	var link shortener.ShortLink

	err := row.Scan(
		&link.ID,
		&link.ShortCode,
		&link.LongURL,
		&link.QRCode,
		&link.Clicks,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &link, nil
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
