package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vaanilabs/vaani/pkg/types"
)

// Hexcodes implements [store.HexcodeStore].
func (s *Store) Hexcodes(ctx context.Context, language string) ([]types.HexcodeEntry, error) {
	const q = `
		SELECT token, hexcode, language, is_common, index_no, graphemes
		FROM   hexcodes
		WHERE  language = $1
		ORDER  BY index_no`

	rows, err := s.pool.Query(ctx, q, language)
	if err != nil {
		return nil, fmt.Errorf("hexcode store: query: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.HexcodeEntry, error) {
		var e types.HexcodeEntry
		err := row.Scan(&e.Token, &e.Hexcode, &e.Language, &e.IsCommon, &e.IndexNo, &e.Graphemes)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("hexcode store: scan rows: %w", err)
	}
	if entries == nil {
		entries = []types.HexcodeEntry{}
	}
	return entries, nil
}

// SeedHexcodes upserts reference entries, for bootstrap and data refresh
// tooling. Existing (language, token) rows are overwritten.
func (s *Store) SeedHexcodes(ctx context.Context, entries []types.HexcodeEntry) error {
	const q = `
		INSERT INTO hexcodes (language, token, hexcode, is_common, index_no, graphemes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (language, token) DO UPDATE
		SET hexcode = EXCLUDED.hexcode,
		    is_common = EXCLUDED.is_common,
		    index_no = EXCLUDED.index_no,
		    graphemes = EXCLUDED.graphemes`

	for _, e := range entries {
		graphemes := e.Graphemes
		if graphemes == nil {
			graphemes = []string{}
		}
		if _, err := s.pool.Exec(ctx, q, e.Language, e.Token, e.Hexcode, e.IsCommon, e.IndexNo, graphemes); err != nil {
			return fmt.Errorf("hexcode store: seed %q/%q: %w", e.Language, e.Token, err)
		}
	}
	return nil
}
