package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vaanilabs/vaani/pkg/types"
)

const sessionColumns = `
	id, user_id, session_id, sub_session_id, content_id, content_type,
	language, original_text, response_text, construct_text,
	confidence_scores, missing_token_scores, anomaly_scores,
	error_rate, count_diff, edit_distance,
	fluency_score, silence_pause, repetition_count, prosody_fluency,
	is_retry, mode, created_at`

// AppendSession implements [store.SessionStore]. The single-statement INSERT
// makes concurrent appends for the same user safe without any engine-side
// locking.
func (s *Store) AppendSession(ctx context.Context, rec *types.SessionRecord) error {
	const q = `
		INSERT INTO session_records (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		        $21, $22, $23)`

	_, err := s.pool.Exec(ctx, q,
		rec.ID,
		rec.UserID,
		rec.SessionID,
		rec.SubSessionID,
		rec.ContentID,
		rec.ContentType,
		rec.Language,
		rec.OriginalText,
		rec.ResponseText,
		rec.ConstructText,
		rec.ConfidenceScores,
		rec.MissingTokenScores,
		rec.AnomalyScores,
		rec.ErrorRate,
		rec.CountDiff,
		rec.EditDistance,
		rec.FluencyScore,
		rec.SilencePause,
		rec.RepetitionCount,
		rec.Prosody,
		rec.IsRetry,
		rec.Mode,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("session store: append: %w", err)
	}
	return nil
}

// ListBySubSession implements [store.SessionStore].
func (s *Store) ListBySubSession(ctx context.Context, userID, subSessionID string) ([]*types.SessionRecord, error) {
	const q = `
		SELECT ` + sessionColumns + `
		FROM   session_records
		WHERE  user_id = $1 AND sub_session_id = $2
		ORDER  BY created_at`

	rows, err := s.pool.Query(ctx, q, userID, subSessionID)
	if err != nil {
		return nil, fmt.Errorf("session store: list by sub-session: %w", err)
	}
	return collectSessions(rows)
}

// ListByUser implements [store.SessionStore].
func (s *Store) ListByUser(ctx context.Context, userID, language string, limit int) ([]*types.SessionRecord, error) {
	// The inner query keeps the most recent records when a limit is set; the
	// outer one restores oldest-first order.
	q := `
		SELECT ` + sessionColumns + `
		FROM   session_records
		WHERE  user_id = $1 AND language = $2
		ORDER  BY created_at`
	args := []any{userID, language}

	if limit > 0 {
		q = `
		SELECT ` + sessionColumns + `
		FROM (
			SELECT ` + sessionColumns + `
			FROM   session_records
			WHERE  user_id = $1 AND language = $2
			ORDER  BY created_at DESC
			LIMIT  $3
		) recent
		ORDER BY created_at`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("session store: list by user: %w", err)
	}
	return collectSessions(rows)
}

// collectSessions scans pgx rows into session records.
func collectSessions(rows pgx.Rows) ([]*types.SessionRecord, error) {
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*types.SessionRecord, error) {
		rec := &types.SessionRecord{}
		if err := row.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.SessionID,
			&rec.SubSessionID,
			&rec.ContentID,
			&rec.ContentType,
			&rec.Language,
			&rec.OriginalText,
			&rec.ResponseText,
			&rec.ConstructText,
			&rec.ConfidenceScores,
			&rec.MissingTokenScores,
			&rec.AnomalyScores,
			&rec.ErrorRate,
			&rec.CountDiff,
			&rec.EditDistance,
			&rec.FluencyScore,
			&rec.SilencePause,
			&rec.RepetitionCount,
			&rec.Prosody,
			&rec.IsRetry,
			&rec.Mode,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		return rec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("session store: scan rows: %w", err)
	}
	if records == nil {
		records = []*types.SessionRecord{}
	}
	return records, nil
}
