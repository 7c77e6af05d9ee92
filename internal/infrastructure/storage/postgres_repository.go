package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"BrewPress/internal/domain"
	"BrewPress/internal/ports"
)

// PostgresRepository records enriched posts so reruns skip them.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.EnrichmentRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// AlreadyEnriched returns a map with the post ids that exist in storage.
func (r *PostgresRepository) AlreadyEnriched(ctx context.Context, ids []int) (map[int]bool, error) {
	if r.db == nil || len(ids) == 0 {
		return map[int]bool{}, nil
	}

	query, args, err := r.builder.
		Select("post_id").
		From("enriched_posts").
		Where(sq.Expr("post_id = ANY(?)", pq.Array(ids))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query enriched: %w", err)
	}
	defer rows.Close()

	result := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		result[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// SaveEnriched upserts the enrichment record for one post.
func (r *PostgresRepository) SaveEnriched(ctx context.Context, record domain.EnrichmentRecord) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("enriched_posts").
		Columns("post_id", "status", "enriched_at").
		Values(record.PostID, string(record.Status), record.EnrichedAt).
		Suffix("ON CONFLICT (post_id) DO UPDATE SET status = EXCLUDED.status, enriched_at = EXCLUDED.enriched_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert enriched: %w", err)
	}
	return nil
}
