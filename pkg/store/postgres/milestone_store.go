package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vaanilabs/vaani/pkg/store"
	"github.com/vaanilabs/vaani/pkg/types"
)

// AppendMilestone implements [store.MilestoneStore].
func (s *Store) AppendMilestone(ctx context.Context, rec *types.MilestoneRecord) error {
	const q = `
		INSERT INTO milestone_records
		    (user_id, session_id, sub_session_id, language, level, sub_level, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, q,
		rec.UserID,
		rec.SessionID,
		rec.SubSessionID,
		rec.Language,
		rec.Level,
		rec.SubLevel,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("milestone store: append: %w", err)
	}
	return nil
}

// LatestMilestone implements [store.MilestoneStore].
func (s *Store) LatestMilestone(ctx context.Context, userID, language string) (*types.MilestoneRecord, error) {
	const q = `
		SELECT user_id, session_id, sub_session_id, language, level, sub_level, created_at
		FROM   milestone_records
		WHERE  user_id = $1 AND language = $2
		ORDER  BY created_at DESC
		LIMIT  1`

	rec := &types.MilestoneRecord{}
	err := s.pool.QueryRow(ctx, q, userID, language).Scan(
		&rec.UserID,
		&rec.SessionID,
		&rec.SubSessionID,
		&rec.Language,
		&rec.Level,
		&rec.SubLevel,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("milestone store: latest: %w", err)
	}
	return rec, nil
}
