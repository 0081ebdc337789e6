package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"postdigest/internal/domain"

	sq "github.com/Masterminds/squirrel"
)

const (
	newslettersTable       = "newsletters"
	defaultNewslettersPage = 20
)

var ErrNotFound = errors.New("newsletter not found")

var newsletterColumns = []string{"id", "created_at", "post_count", "context", "body"}

func (d *Database) SaveNewsletter(ctx context.Context, n domain.Newsletter) error {
	id := strings.TrimSpace(n.ID)
	if id == "" {
		return errors.New("newsletter ID is empty")
	}

	query, args, err := sq.Insert(newslettersTable).
		Columns(newsletterColumns...).
		Values(id, n.CreatedAt.UTC().UnixMilli(), n.PostCount, n.Context, n.Body).
		Suffix("on conflict (id) do update set " +
			"post_count = excluded.post_count, " +
			"context = excluded.context, " +
			"body = excluded.body").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err = d.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert newsletter: %w", err)
	}

	return nil
}

func (d *Database) GetNewsletter(ctx context.Context, id string) (domain.Newsletter, error) {
	query, args, err := sq.Select(newsletterColumns...).
		From(newslettersTable).
		Where(sq.Eq{"id": strings.TrimSpace(id)}).
		ToSql()
	if err != nil {
		return domain.Newsletter{}, fmt.Errorf("build query: %w", err)
	}

	return d.scanOne(ctx, query, args)
}

func (d *Database) LatestNewsletter(ctx context.Context) (domain.Newsletter, error) {
	query, args, err := sq.Select(newsletterColumns...).
		From(newslettersTable).
		OrderBy("created_at desc", "id desc").
		Limit(1).
		ToSql()
	if err != nil {
		return domain.Newsletter{}, fmt.Errorf("build query: %w", err)
	}

	return d.scanOne(ctx, query, args)
}

// ListNewsletters returns the newest newsletters first.
func (d *Database) ListNewsletters(ctx context.Context, limit int) ([]domain.Newsletter, error) {
	if limit <= 0 {
		limit = defaultNewslettersPage
	}

	query, args, err := sq.Select(newsletterColumns...).
		From(newslettersTable).
		OrderBy("created_at desc", "id desc").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"limit", limit,
				"operation", "ListNewsletters")
		}
	}()

	var newsletters []domain.Newsletter
	for rows.Next() {
		n, err := scanNewsletter(rows)
		if err != nil {
			return nil, err
		}

		newsletters = append(newsletters, n)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return newsletters, nil
}

func (d *Database) scanOne(ctx context.Context, query string, args []any) (domain.Newsletter, error) {
	n, err := scanNewsletter(d.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Newsletter{}, ErrNotFound
	}

	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNewsletter(row scanner) (domain.Newsletter, error) {
	var (
		n         domain.Newsletter
		createdAt int64
	)

	if err := row.Scan(&n.ID, &createdAt, &n.PostCount, &n.Context, &n.Body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Newsletter{}, err
		}
		return domain.Newsletter{}, fmt.Errorf("scan row: %w", err)
	}

	n.CreatedAt = time.UnixMilli(createdAt).UTC()

	return n, nil
}
