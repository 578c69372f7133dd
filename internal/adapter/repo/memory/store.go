package memory

import (
	"context"
	"maps"
	"sync"

	"rescuesim/internal/app/ports"
)

type Store struct {
	mu       sync.Mutex
	users    map[string]ports.UserRecord
	emails   map[string]string
	sessions map[string]ports.SessionResultRecord
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]ports.UserRecord),
		emails:   make(map[string]string),
		sessions: make(map[string]ports.SessionResultRecord),
	}
}

type txKey struct{}

// lock takes the store mutex unless ctx already runs inside one of this
// store's transactions.
func (s *Store) lock(ctx context.Context) func() {
	if owner, _ := ctx.Value(txKey{}).(*Store); owner == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type snapshot struct {
	users    map[string]ports.UserRecord
	emails   map[string]string
	sessions map[string]ports.SessionResultRecord
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		users:    maps.Clone(s.users),
		emails:   maps.Clone(s.emails),
		sessions: maps.Clone(s.sessions),
	}
}

func (s *Store) restore(snap snapshot) {
	s.users = snap.users
	s.emails = snap.emails
	s.sessions = snap.sessions
}

func cloneSession(rec ports.SessionResultRecord) ports.SessionResultRecord {
	rec.Saved = cloneInt(rec.Saved)
	rec.Lost = cloneInt(rec.Lost)
	rec.TimeRemainingSeconds = cloneInt(rec.TimeRemainingSeconds)
	rec.GameDurationSeconds = cloneInt(rec.GameDurationSeconds)
	rec.TimeSpentSeconds = cloneInt(rec.TimeSpentSeconds)
	rec.EndedReason = cloneString(rec.EndedReason)
	rec.Feedback = cloneString(rec.Feedback)
	rec.Scenario = cloneString(rec.Scenario)
	if rec.Metadata != nil {
		rec.Metadata = append([]byte(nil), rec.Metadata...)
	}
	return rec
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
