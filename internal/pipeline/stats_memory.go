package pipeline

import (
	"context"
	"sync"
)

// MemoryStatsStore keeps counters in process memory. Default store; contents
// do not survive restarts.
type MemoryStatsStore struct {
	mu           sync.Mutex
	allowed      int64
	denied       int64
	translations int64
	byScope      map[string]int64
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{byScope: make(map[string]int64)}
}

func (s *MemoryStatsStore) RecordAdmission(_ context.Context, ev AdmissionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Allowed {
		s.allowed++
	} else {
		s.denied++
	}
	return nil
}

func (s *MemoryStatsStore) RecordTranslation(_ context.Context, scopeKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.translations++
	if scopeKey != "" {
		s.byScope[scopeKey]++
	}
	return nil
}

func (s *MemoryStatsStore) Read(_ context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byScope := make(map[string]int64, len(s.byScope))
	for scope, count := range s.byScope {
		byScope[scope] = count
	}
	return Snapshot{
		Allowed:             s.allowed,
		Denied:              s.denied,
		Translations:        s.translations,
		TranslationsByScope: byScope,
	}, nil
}
