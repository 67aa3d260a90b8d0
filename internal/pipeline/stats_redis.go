package pipeline

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"horse.fit/polyglot/internal/globaltime"
)

// RedisStatsStore shares counters across replicas. Totals are cumulative;
// per-scope translation counters expire after the configured TTL.
type RedisStatsStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.prefix = strings.Trim(prefix, ":") }
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "polyglot:stats",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) RecordAdmission(ctx context.Context, ev AdmissionEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = globaltime.Now()
	}

	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":admission", field, 1)

	bucketKey := s.prefix + ":admission:minute:" + at.UTC().Format("200601021504")
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, bucketKey, s.ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStatsStore) RecordTranslation(ctx context.Context, scopeKey string) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	pipe := s.rdb.Pipeline()
	pipe.Incr(ctx, s.prefix+":translations")

	scope := strings.TrimSpace(scopeKey)
	if scope != "" {
		key := s.prefix + ":translations:scope"
		pipe.HIncrBy(ctx, key, scope, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStatsStore) Read(ctx context.Context) (Snapshot, error) {
	if s == nil || s.rdb == nil {
		return Snapshot{}, nil
	}

	var snap Snapshot

	admission, err := s.rdb.HGetAll(ctx, s.prefix+":admission").Result()
	if err != nil {
		return Snapshot{}, err
	}
	snap.Allowed = parseCounter(admission["allowed"])
	snap.Denied = parseCounter(admission["denied"])

	total, err := s.rdb.Get(ctx, s.prefix+":translations").Result()
	if err != nil && err != redis.Nil {
		return Snapshot{}, err
	}
	snap.Translations = parseCounter(total)

	byScope, err := s.rdb.HGetAll(ctx, s.prefix+":translations:scope").Result()
	if err != nil {
		return Snapshot{}, err
	}
	snap.TranslationsByScope = make(map[string]int64, len(byScope))
	for scope, raw := range byScope {
		snap.TranslationsByScope[scope] = parseCounter(raw)
	}

	return snap, nil
}

func parseCounter(raw string) int64 {
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return value
}
