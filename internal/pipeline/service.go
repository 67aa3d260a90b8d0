package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"horse.fit/polyglot/internal/debounce"
	"horse.fit/polyglot/internal/globaltime"
	"horse.fit/polyglot/internal/language"
	"horse.fit/polyglot/internal/ratelimit"
	"horse.fit/polyglot/internal/resultcache"
	"horse.fit/polyglot/internal/translation"
)

// Request is one translation submission.
type Request struct {
	Text       string
	TargetLang string
	SourceLang string

	// RequesterKey and ScopeKey select the admission buckets (for example
	// user id and guild id). Blank keys skip their level.
	RequesterKey string
	ScopeKey     string

	// DebounceKey, when set, routes the request through the debouncer:
	// rapid repeats for the same key collapse into the latest one.
	DebounceKey string
}

// Outcome is the terminal result delivered through the sink channel.
type Outcome struct {
	Result *translation.TranslateResponse
	Err    error
}

type task struct {
	req  Request
	sink chan Outcome
}

type Options struct {
	QueueDepth    int
	Workers       int
	SubmitWait    time.Duration
	MaxTextLength int
	DebounceDelay time.Duration
	Logger        zerolog.Logger
}

// Service is the process-wide translation pipeline: debounce → admission →
// cache → bounded queue → workers → dispatcher. Construct with New, call
// Start once, and Close to drain the workers.
type Service struct {
	opts       Options
	logger     zerolog.Logger
	gate       *ratelimit.Gate
	cache      *resultcache.Cache
	dispatcher *translation.Dispatcher
	debouncer  *debounce.Debouncer
	stats      StatsStore

	tasks   chan task
	group   *errgroup.Group
	workCtx context.Context
	cancel  context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

func New(opts Options, gate *ratelimit.Gate, cache *resultcache.Cache, dispatcher *translation.Dispatcher, stats StatsStore) *Service {
	if opts.QueueDepth < 1 {
		opts.QueueDepth = 64
	}
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = 1500 * time.Millisecond
	}
	if stats == nil {
		stats = NewMemoryStatsStore()
	}

	return &Service{
		opts:       opts,
		logger:     opts.Logger,
		gate:       gate,
		cache:      cache,
		dispatcher: dispatcher,
		debouncer:  debounce.New(opts.DebounceDelay),
		stats:      stats,
		tasks:      make(chan task, opts.QueueDepth),
	}
}

// Start launches the worker pool. Workers keep serving queued tasks until
// Close drains the queue.
func (s *Service) Start(ctx context.Context) {
	workCtx, cancel := context.WithCancel(ctx)
	s.workCtx = workCtx
	s.cancel = cancel

	group, groupCtx := errgroup.WithContext(workCtx)
	s.group = group
	for i := 0; i < s.opts.Workers; i++ {
		id := i
		group.Go(func() error {
			return s.worker(groupCtx, id)
		})
	}

	s.logger.Info().
		Int("workers", s.opts.Workers).
		Int("queue_depth", s.opts.QueueDepth).
		Msg("translation pipeline started")
}

// Close stops accepting submissions, cancels pending debounced actions,
// drains queued tasks and waits for the workers.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.debouncer.Close()
	close(s.tasks)

	var err error
	if s.group != nil {
		err = s.group.Wait()
	}
	if s.cancel != nil {
		s.cancel()
	}

	s.logger.Info().Msg("translation pipeline stopped")
	return err
}

func (s *Service) queued() int {
	return len(s.tasks)
}

// Stats exposes the pipeline counters for the HTTP API.
func (s *Service) Stats() StatsStore {
	if s == nil {
		return nil
	}
	return s.stats
}

// Submit runs the request through the pipeline and returns a sink that
// resolves exactly once. Admission denial and backpressure surface as
// immediate errors for direct submissions; debounced submissions deliver all
// outcomes through the sink.
func (s *Service) Submit(ctx context.Context, req Request) (<-chan Outcome, error) {
	if s == nil || s.group == nil {
		return nil, fmt.Errorf("pipeline is not started")
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return nil, ErrEmptyText
	}
	if s.opts.MaxTextLength > 0 && utf8.RuneCountInString(req.Text) > s.opts.MaxTextLength {
		return nil, ErrTextTooLong
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	s.mu.RUnlock()

	sink := make(chan Outcome, 1)

	if req.DebounceKey != "" {
		s.debouncer.Schedule(req.DebounceKey,
			func() {
				if err := s.admitAndEnqueue(s.workCtx, req, sink); err != nil {
					sink <- Outcome{Err: err}
				}
			},
			func() {
				sink <- Outcome{Err: ErrSuperseded}
			},
		)
		return sink, nil
	}

	if err := s.admitAndEnqueue(ctx, req, sink); err != nil {
		return nil, err
	}
	return sink, nil
}

func (s *Service) admitAndEnqueue(ctx context.Context, req Request, sink chan Outcome) error {
	dec := s.gate.Admit(req.RequesterKey, req.ScopeKey)
	if recErr := s.stats.RecordAdmission(ctx, AdmissionEvent{
		RequesterKey: req.RequesterKey,
		ScopeKey:     req.ScopeKey,
		Allowed:      dec.Allowed,
		Level:        dec.Level,
		At:           globaltime.Now(),
	}); recErr != nil {
		s.logger.Debug().Err(recErr).Msg("stats record failed")
	}
	if !dec.Allowed {
		return &RateLimitedError{Level: dec.Level, RetryAfter: dec.RetryAfter}
	}

	// Queue-level cache check: a hit resolves without occupying a worker.
	if s.cache != nil {
		targetLang := language.NormalizeCode(req.TargetLang)
		if hit, ok := s.cache.Get(req.Text, targetLang); ok {
			sink <- Outcome{Result: &translation.TranslateResponse{
				Text:         hit.Text,
				SourceLang:   hit.SourceLang,
				TargetLang:   targetLang,
				ProviderName: hit.Provider,
				Cached:       true,
			}}
			return nil
		}
	}

	return s.enqueue(ctx, task{req: req, sink: sink})
}

func (s *Service) enqueue(ctx context.Context, t task) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	select {
	case s.tasks <- t:
		return nil
	default:
	}

	if s.opts.SubmitWait <= 0 {
		return ErrQueueFull
	}

	timer := time.NewTimer(s.opts.SubmitWait)
	defer timer.Stop()

	select {
	case s.tasks <- t:
		return nil
	case <-timer.C:
		return ErrQueueFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) worker(ctx context.Context, id int) error {
	for t := range s.tasks {
		s.runTask(ctx, t, id)
	}
	return nil
}

func (s *Service) runTask(ctx context.Context, t task, workerID int) {
	// A single task's failure must never terminate the worker.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Int("worker", workerID).
				Str("target_lang", t.req.TargetLang).
				Msg("translation task panicked")
			t.sink <- Outcome{Err: fmt.Errorf("internal dispatch failure")}
		}
	}()

	resp, err := s.dispatcher.Dispatch(ctx, translation.TranslateRequest{
		Text:       t.req.Text,
		SourceLang: t.req.SourceLang,
		TargetLang: t.req.TargetLang,
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Int("worker", workerID).
			Str("target_lang", t.req.TargetLang).
			Msg("translation dispatch failed")
		t.sink <- Outcome{Err: err}
		return
	}

	if !resp.Cached {
		if recErr := s.stats.RecordTranslation(ctx, t.req.ScopeKey); recErr != nil {
			s.logger.Debug().Err(recErr).Msg("stats record failed")
		}
	}
	t.sink <- Outcome{Result: resp}
}
