package pipeline

import (
	"context"
	"time"
)

// AdmissionEvent records one admission decision.
type AdmissionEvent struct {
	RequesterKey string
	ScopeKey     string
	Allowed      bool
	Level        string // denied level, empty when allowed
	At           time.Time
}

// Snapshot is an aggregate view for the stats endpoint.
type Snapshot struct {
	Allowed             int64            `json:"allowed"`
	Denied              int64            `json:"denied"`
	Translations        int64            `json:"translations"`
	TranslationsByScope map[string]int64 `json:"translations_by_scope,omitempty"`
}

// StatsStore is a best-effort sink for pipeline counters: recording errors
// must never fail a request.
type StatsStore interface {
	RecordAdmission(ctx context.Context, ev AdmissionEvent) error
	RecordTranslation(ctx context.Context, scopeKey string) error
	Read(ctx context.Context) (Snapshot, error)
}
