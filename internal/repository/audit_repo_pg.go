package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGAuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) AuditRepository {
	return &PGAuditRepository{db: db}
}

func (r *PGAuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	return insertAudit(ctx, r.db, entry)
}

// List returns entries in insertion order so the trail can be replayed.
func (r *PGAuditRepository) List(ctx context.Context, filter AuditFilter) ([]domain.AuditEntry, error) {
	var (
		where []string
		args  []any
	)
	if filter.TargetType != "" {
		args = append(args, filter.TargetType)
		where = append(where, fmt.Sprintf("target_type = $%d", len(args)))
	}
	if filter.TargetID != "" {
		args = append(args, filter.TargetID)
		where = append(where, fmt.Sprintf("target_id = $%d", len(args)))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, actor_id, action, target_type, target_id, details, created_at FROM audit_log`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY id LIMIT $%d`, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.AuditEntry, 0)
	for rows.Next() {
		var (
			e       domain.AuditEntry
			details []byte
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.TargetType, &e.TargetID, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("decode audit details %d: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ AuditRepository = (*PGAuditRepository)(nil)
