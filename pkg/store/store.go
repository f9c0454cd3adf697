// Package store defines the persistence contracts of the assessment engine:
// an append-only session-record log per user, an append-only milestone log per
// (user, language), and the immutable hexcode reference table.
//
// Session and milestone writes are append-only; the storage layer must make
// concurrent appends for the same user atomic so no record is lost. The
// current milestone for a (user, language) is the most recently created
// record; duplicated milestone writes are safe because latest-by-timestamp
// wins.
package store

import (
	"context"
	"errors"

	"github.com/vaanilabs/vaani/pkg/types"
)

// ErrNotFound is returned by lookups that match nothing. Callers treat a
// missing milestone as level m0.
var ErrNotFound = errors.New("store: not found")

// SessionStore is the append-only learner-attempt log.
type SessionStore interface {
	// AppendSession appends one record. The record's ID must be unique.
	AppendSession(ctx context.Context, rec *types.SessionRecord) error

	// ListBySubSession returns the user's records for one sub-session,
	// ordered oldest first.
	ListBySubSession(ctx context.Context, userID, subSessionID string) ([]*types.SessionRecord, error)

	// ListByUser returns the user's records for one language, ordered oldest
	// first. A limit of 0 means no limit; a positive limit keeps the most
	// recent records.
	ListByUser(ctx context.Context, userID, language string, limit int) ([]*types.SessionRecord, error)
}

// MilestoneStore is the append-only milestone log.
type MilestoneStore interface {
	// AppendMilestone appends one record.
	AppendMilestone(ctx context.Context, rec *types.MilestoneRecord) error

	// LatestMilestone returns the most recently created record for
	// (userID, language), or ErrNotFound when the user has none.
	LatestMilestone(ctx context.Context, userID, language string) (*types.MilestoneRecord, error)
}

// HexcodeStore serves the per-language hexcode reference data.
type HexcodeStore interface {
	// Hexcodes returns every entry for language, ordered by index number.
	Hexcodes(ctx context.Context, language string) ([]types.HexcodeEntry, error)
}

// Store bundles all persistence concerns behind one handle.
type Store interface {
	SessionStore
	MilestoneStore
	HexcodeStore
}
