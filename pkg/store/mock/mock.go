// Package mock provides an in-memory implementation of the store interfaces
// for tests. Appends are serialized by a single mutex, lists return copies in
// insertion order, and the hexcode table is pre-populated by the test.
package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/vaanilabs/vaani/pkg/store"
	"github.com/vaanilabs/vaani/pkg/types"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is an in-memory store.Store implementation.
type Store struct {
	mu sync.Mutex

	// Sessions and Milestones hold every appended record in order.
	Sessions   []*types.SessionRecord
	Milestones []*types.MilestoneRecord

	// HexcodeTable maps language → entries returned by Hexcodes.
	HexcodeTable map[string][]types.HexcodeEntry

	// AppendSessionErr, AppendMilestoneErr and HexcodesErr force failures.
	AppendSessionErr   error
	AppendMilestoneErr error
	HexcodesErr        error
}

// AppendSession implements [store.SessionStore].
func (s *Store) AppendSession(_ context.Context, rec *types.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AppendSessionErr != nil {
		return s.AppendSessionErr
	}
	s.Sessions = append(s.Sessions, rec)
	return nil
}

// ListBySubSession implements [store.SessionStore].
func (s *Store) ListBySubSession(_ context.Context, userID, subSessionID string) ([]*types.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.SessionRecord
	for _, rec := range s.Sessions {
		if rec.UserID == userID && rec.SubSessionID == subSessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ListByUser implements [store.SessionStore].
func (s *Store) ListByUser(_ context.Context, userID, language string, limit int) ([]*types.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.SessionRecord
	for _, rec := range s.Sessions {
		if rec.UserID == userID && rec.Language == language {
			out = append(out, rec)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// AppendMilestone implements [store.MilestoneStore].
func (s *Store) AppendMilestone(_ context.Context, rec *types.MilestoneRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AppendMilestoneErr != nil {
		return s.AppendMilestoneErr
	}
	s.Milestones = append(s.Milestones, rec)
	return nil
}

// LatestMilestone implements [store.MilestoneStore].
func (s *Store) LatestMilestone(_ context.Context, userID, language string) (*types.MilestoneRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []*types.MilestoneRecord
	for _, rec := range s.Milestones {
		if rec.UserID == userID && rec.Language == language {
			matches = append(matches, rec)
		}
	}
	if len(matches) == 0 {
		return nil, store.ErrNotFound
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches[len(matches)-1], nil
}

// Hexcodes implements [store.HexcodeStore].
func (s *Store) Hexcodes(_ context.Context, language string) ([]types.HexcodeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.HexcodesErr != nil {
		return nil, s.HexcodesErr
	}
	return s.HexcodeTable[language], nil
}
