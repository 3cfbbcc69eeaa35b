package repo

import (
	"context"
	"encoding/json"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// HistoryRepositoryPG implements search history persistence using PostgreSQL.
type HistoryRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewHistoryRepository constructs the repository.
func NewHistoryRepository(sql infra.SQLExecutor) *HistoryRepositoryPG {
	return &HistoryRepositoryPG{sql: sql}
}

// Insert persists one search and fills in the generated ID and timestamp.
func (r *HistoryRepositoryPG) Insert(ctx context.Context, entry *domain.HistoryEntry) error {
	sources, err := json.Marshal(entry.Sources)
	if err != nil {
		return err
	}
	return r.sql.QueryRow(ctx, sqlinline.QInsertSearchHistory,
		entry.UserID, entry.Query, entry.Model, entry.Summary, sources,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListByUser returns the most recent searches, newest first.
func (r *HistoryRepositoryPG) ListByUser(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectSearchHistory, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		var sources []byte
		if err := rows.Scan(&entry.ID, &entry.Query, &entry.Model, &entry.Summary, &sources, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.UserID = userID
		if len(sources) > 0 {
			if err := json.Unmarshal(sources, &entry.Sources); err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DeleteEntry removes one entry, scoped to its owner.
func (r *HistoryRepositoryPG) DeleteEntry(ctx context.Context, id, userID string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteSearchHistoryEntry, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteForUser removes all of a user's history.
func (r *HistoryRepositoryPG) DeleteForUser(ctx context.Context, userID string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QDeleteSearchHistoryForUser, userID)
	return err
}
