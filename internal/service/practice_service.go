package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/config"
	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/practice"
)

// Practice registry errors.
var (
	ErrPracticeNotFound = errors.New("practice session not found")
	ErrTooManySessions  = errors.New("practice session limit reached")
)

// ResultPublisher receives every completed practice attempt.
type ResultPublisher interface {
	Publish(ctx context.Context, rec model.PracticeResultRecord) error
}

type hostedSession struct {
	session  *practice.Session
	lastSeen time.Time // guarded by PracticeService.mu
}

// PracticeService hosts practice sessions for HTTP and websocket clients, keyed
// by a random id. Sessions nobody touches for the idle TTL are disposed.
type PracticeService struct {
	source    practice.QuestionSource
	publisher ResultPublisher
	cfg       *config.Config
	opts      []practice.Option
	log       zerolog.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*hostedSession
}

// NewPracticeService creates a new PracticeService. opts are applied to every
// session it creates.
func NewPracticeService(cfg *config.Config, source practice.QuestionSource, publisher ResultPublisher, log zerolog.Logger, opts ...practice.Option) *PracticeService {
	return &PracticeService{
		source:    source,
		publisher: publisher,
		cfg:       cfg,
		opts:      opts,
		log:       log.With().Str("component", "practice_service").Logger(),
		now:       time.Now,
		sessions:  make(map[string]*hostedSession),
	}
}

// Create registers a session and starts it. A failed fetch is not an error:
// the session is kept in FAILED so the client can retry with Restart.
func (s *PracticeService) Create(ctx context.Context, cfg practice.Config) (string, practice.Snapshot, error) {
	id := uuid.New().String()
	log := s.log.With().Str("session_id", id).Logger()

	var sess *practice.Session
	opts := append([]practice.Option{
		practice.WithLogger(log),
		practice.WithCompletionHook(s.completionHook(id, log, func() practice.Config {
			return sess.State().Config
		})),
	}, s.opts...)
	sess = practice.New(s.source, opts...)

	s.mu.Lock()
	if s.cfg.MaxPracticeCount > 0 && len(s.sessions) >= s.cfg.MaxPracticeCount {
		s.mu.Unlock()
		sess.Dispose()
		return "", practice.Snapshot{}, ErrTooManySessions
	}
	s.sessions[id] = &hostedSession{session: sess, lastSeen: s.now()}
	s.mu.Unlock()

	if err := s.start(ctx, sess, cfg); err != nil {
		s.remove(id)
		return "", practice.Snapshot{}, err
	}
	log.Info().Str("type", string(cfg.SelectionType)).Str("value", cfg.Value).Msg("Practice session created")
	return id, sess.State(), nil
}

// Restart re-runs the session's start with its original config.
func (s *PracticeService) Restart(ctx context.Context, id string) (practice.Snapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return practice.Snapshot{}, err
	}
	if err := s.start(ctx, sess, sess.State().Config); err != nil {
		return practice.Snapshot{}, err
	}
	return sess.State(), nil
}

func (s *PracticeService) start(ctx context.Context, sess *practice.Session, cfg practice.Config) error {
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}
	err := sess.Start(ctx, cfg)
	if errors.Is(err, practice.ErrFetchFailed) {
		return nil
	}
	return err
}

// State returns the current snapshot of a session.
func (s *PracticeService) State(id string) (practice.Snapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return practice.Snapshot{}, err
	}
	return sess.State(), nil
}

// Answer records an answer on the current question.
func (s *PracticeService) Answer(id, option string) (bool, practice.Snapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return false, practice.Snapshot{}, err
	}
	correct, err := sess.Answer(option)
	return correct, sess.State(), err
}

// Next advances past the current question.
func (s *PracticeService) Next(id string) (practice.Snapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return practice.Snapshot{}, err
	}
	err = sess.Next()
	return sess.State(), err
}

// Previous steps back one question.
func (s *PracticeService) Previous(id string) (practice.Snapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return practice.Snapshot{}, err
	}
	err = sess.Previous()
	return sess.State(), err
}

// Result returns the summary of a completed session.
func (s *PracticeService) Result(id string) (practice.Result, error) {
	sess, err := s.get(id)
	if err != nil {
		return practice.Result{}, err
	}
	return sess.Result()
}

// Subscribe streams snapshots of a session until cancel is called or the
// session is disposed.
func (s *PracticeService) Subscribe(id string) (<-chan practice.Snapshot, func(), error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := sess.Subscribe()
	return ch, cancel, nil
}

// Touch marks a session as in use without changing it.
func (s *PracticeService) Touch(id string) error {
	_, err := s.get(id)
	return err
}

// Dispose tears a session down and forgets it.
func (s *PracticeService) Dispose(id string) error {
	h := s.remove(id)
	if h == nil {
		return ErrPracticeNotFound
	}
	h.session.Dispose()
	return nil
}

// Len reports how many sessions are hosted.
func (s *PracticeService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep disposes sessions idle for longer than the configured TTL and returns
// how many were removed.
func (s *PracticeService) Sweep() int {
	cutoff := s.now().Add(-s.cfg.PracticeIdleTTL)

	s.mu.Lock()
	var expired []*hostedSession
	for id, h := range s.sessions {
		if h.lastSeen.Before(cutoff) {
			expired = append(expired, h)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, h := range expired {
		h.session.Dispose()
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (s *PracticeService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.Info().Int("disposed", n).Int("remaining", s.Len()).Msg("Idle practice sessions swept")
			}
		}
	}
}

// Shutdown disposes every hosted session.
func (s *PracticeService) Shutdown() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*hostedSession)
	s.mu.Unlock()

	for _, h := range all {
		h.session.Dispose()
	}
}

func (s *PracticeService) get(id string) (*practice.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.sessions[id]
	if !ok {
		return nil, ErrPracticeNotFound
	}
	h.lastSeen = s.now()
	return h.session, nil
}

func (s *PracticeService) remove(id string) *hostedSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.sessions[id]
	if !ok {
		return nil
	}
	delete(s.sessions, id)
	return h
}

func (s *PracticeService) completionHook(id string, log zerolog.Logger, configOf func() practice.Config) func(practice.Result) {
	return func(res practice.Result) {
		if s.publisher == nil {
			return
		}
		cfg := configOf()

		rec := model.PracticeResultRecord{
			AttemptID:     uuid.New().String(),
			SessionID:     id,
			SelectionType: string(cfg.SelectionType),
			Selection:     cfg.Value,
			Subject:       cfg.Subject,
			Chapter:       cfg.Chapter,
			Difficulty:    cfg.Difficulty,
			Total:         res.Total,
			Correct:       res.Correct,
			Wrong:         res.Wrong,
			Skipped:       res.Skipped,
			Accuracy:      res.Accuracy,
			TimedOut:      res.TimedOut,
			CompletedAt:   s.now().UTC(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.Publish(ctx, rec); err != nil {
			log.Error().Err(fmt.Errorf("publish result: %w", err)).Msg("Practice result dropped")
			return
		}
		log.Debug().Int("accuracy", res.Accuracy).Bool("timed_out", res.TimedOut).Msg("Practice result queued")
	}
}
