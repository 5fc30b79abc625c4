package content

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 30 * time.Second

const schemaSQL = `
CREATE TABLE IF NOT EXISTS course_documents (
	course_id    TEXT        NOT NULL,
	section_id   TEXT        NOT NULL,
	locale       TEXT        NOT NULL,
	position     INTEGER     NOT NULL DEFAULT 0,
	title        TEXT        NOT NULL DEFAULT '',
	body         BYTEA       NOT NULL,
	digest       TEXT        NOT NULL,
	published_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (course_id, section_id, locale)
);
CREATE TABLE IF NOT EXISTS course_order (
	course_id TEXT    PRIMARY KEY,
	position  INTEGER NOT NULL
);`

// PostgresStore publishes document sets to PostgreSQL and loads them back.
// Each Publish replaces the whole set so readers never see a partial update.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a pool.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate content schema: %w", err)
	}
	return nil
}

// Publish replaces the stored documents with set in one transaction.
func (s *PostgresStore) Publish(ctx context.Context, set *Set) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin publish: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM course_documents`); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM course_order`); err != nil {
		return fmt.Errorf("clear course order: %w", err)
	}

	docs := set.All()
	rows := make([][]any, len(docs))
	for i, d := range docs {
		rows[i] = []any{d.Path.Course, d.Path.Section, d.Path.Locale, d.Position, d.Title, d.Body, d.Digest()}
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"course_documents"},
		[]string{"course_id", "section_id", "locale", "position", "title", "body", "digest"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copy documents: %w", err)
	}

	for i, c := range set.CourseOrder() {
		if _, err := tx.Exec(ctx,
			`INSERT INTO course_order (course_id, position) VALUES ($1, $2)`,
			c, i+1,
		); err != nil {
			return fmt.Errorf("insert course order: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit publish: %w", err)
	}
	slog.Info("content published", "documents", len(docs))
	return nil
}

// Load reads the stored documents into a new Set.
func (s *PostgresStore) Load(ctx context.Context) (*Set, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	orderRows, err := s.pool.Query(ctx, `SELECT course_id FROM course_order ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query course order: %w", err)
	}
	order, err := pgx.CollectRows(orderRows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan course order: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT course_id, section_id, locale, position, title, body
		 FROM course_documents
		 ORDER BY course_id, position, section_id, locale`,
	)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Document, error) {
		var d Document
		err := row.Scan(&d.Path.Course, &d.Path.Section, &d.Path.Locale, &d.Position, &d.Title, &d.Body)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}

	set, err := NewOrderedSet(order, docs...)
	if err != nil {
		return nil, err
	}
	slog.Info("content loaded", "source", "postgres", "documents", set.Len())
	return set, nil
}
