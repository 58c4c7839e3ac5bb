// Package practice implements the practice-session state machine shared by every
// host: the HTTP session registry, the websocket stream and the terminal client.
package practice

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/model"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusIdle       Status = "IDLE"
	StatusLoading    Status = "LOADING"
	StatusReady      Status = "READY" // loaded, zero questions matched
	StatusInProgress Status = "IN_PROGRESS"
	StatusFailed     Status = "FAILED"
	StatusCompleted  Status = "COMPLETED"
	StatusDisposed   Status = "DISPOSED"
)

// Mark records how a question was resolved.
type Mark string

const (
	MarkNone    Mark = ""
	MarkCorrect Mark = "correct"
	MarkWrong   Mark = "wrong"
	MarkSkipped Mark = "skipped"
)

// Snapshot is a read-only copy of the session state. Questions is shared with
// the session and must not be modified.
type Snapshot struct {
	Status           Status           `json:"status"`
	Config           Config           `json:"config"`
	Questions        []model.Question `json:"questions"`
	CurrentIndex     int              `json:"current_index"`
	IsAnswered       bool             `json:"is_answered"`
	Scores           Scores           `json:"scores"`
	Marks            []Mark           `json:"marks"`
	Selections       []string         `json:"selections"`
	RemainingSeconds *int             `json:"remaining_seconds,omitempty"`
	IsCompleted      bool             `json:"is_completed"`
	TimedOut         bool             `json:"timed_out"`
	NoContent        bool             `json:"no_content"`
	LoadError        string           `json:"load_error,omitempty"`
	Version          uint64           `json:"version"`
}

// CurrentQuestion returns the question at the current index, if any.
func (s Snapshot) CurrentQuestion() (model.Question, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return model.Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

type state struct {
	status     Status
	config     Config
	questions  []model.Question
	index      int
	marks      []Mark
	selections []string
	scores     Scores
	hasLimit   bool
	remaining  int
	timedOut   bool
	loadError  string
	version    uint64
}

// Session owns one practice attempt. All transitions are serialized; the
// question fetch and the countdown run on their own goroutines and only touch
// state while holding the session lock.
type Session struct {
	source     QuestionSource
	newTicker  TickerFunc
	onComplete func(Result)
	log        zerolog.Logger

	mu          sync.Mutex
	st          state
	gen         uint64
	cancelFetch context.CancelFunc
	timer       *countdown
	subs        map[uint64]chan Snapshot
	nextSub     uint64
}

// Option configures a Session.
type Option func(*Session)

// WithTicker replaces the countdown clock.
func WithTicker(f TickerFunc) Option {
	return func(s *Session) { s.newTicker = f }
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithCompletionHook registers fn to run, on its own goroutine, each time an
// attempt completes.
func WithCompletionHook(fn func(Result)) Option {
	return func(s *Session) { s.onComplete = fn }
}

// New creates an idle session reading questions from source.
func New(source QuestionSource, opts ...Option) *Session {
	s := &Session{
		source:    source,
		newTicker: NewRealTicker,
		log:       zerolog.Nop(),
		st:        state{status: StatusIdle},
		subs:      make(map[uint64]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates cfg, resets the session and fetches the question set. It
// blocks until the fetch resolves. A later Start supersedes an in-flight one:
// the earlier fetch is cancelled, its result discarded and ErrSuperseded
// returned to its caller.
func (s *Session) Start(ctx context.Context, cfg Config) error {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.st.status == StatusDisposed {
		s.mu.Unlock()
		return ErrDisposed
	}
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	s.stopCountdownLocked()
	s.gen++
	gen := s.gen
	s.cancelFetch = cancel
	s.st = state{status: StatusLoading, config: cfg, version: s.st.version}
	s.publishLocked()
	s.mu.Unlock()

	questions, err := s.source.FetchQuestions(fetchCtx, cfg.Filter())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.status == StatusDisposed {
		return ErrDisposed
	}
	if gen != s.gen {
		return ErrSuperseded
	}
	s.cancelFetch = nil

	if err != nil {
		s.log.Warn().Err(err).Msg("Question fetch failed")
		s.st.status = StatusFailed
		s.st.loadError = loadErrorMessage
		s.publishLocked()
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	s.st.questions = questions
	s.st.marks = make([]Mark, len(questions))
	s.st.selections = make([]string, len(questions))
	if len(questions) == 0 {
		s.st.status = StatusReady
		s.publishLocked()
		return nil
	}

	s.st.status = StatusInProgress
	if cfg.TimeLimit > 0 {
		s.st.hasLimit = true
		s.st.remaining = cfg.TimeLimit * 60
		s.startCountdownLocked()
	}
	s.log.Debug().
		Int("questions", len(questions)).
		Int("time_limit", cfg.TimeLimit).
		Msg("Practice started")
	s.publishLocked()
	return nil
}

// Answer records the selected option for the current question and reports
// whether it was correct. A question can be answered at most once.
func (s *Session) Answer(option string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgressLocked(); err != nil {
		return false, err
	}
	if s.st.marks[s.st.index] != MarkNone {
		return false, ErrAlreadyAnswered
	}
	if !model.ValidOption(option) {
		return false, ErrInvalidOption
	}

	q := &s.st.questions[s.st.index]
	correct := q.IsCorrect(option)
	if correct {
		s.st.marks[s.st.index] = MarkCorrect
		s.st.scores.Correct++
	} else {
		s.st.marks[s.st.index] = MarkWrong
		s.st.scores.Wrong++
	}
	s.st.selections[s.st.index] = model.NormalizeOption(option)
	s.publishLocked()
	return correct, nil
}

// Next leaves the current question, counting it as skipped if it was never
// answered, and advances. Leaving the last question completes the session.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgressLocked(); err != nil {
		return err
	}

	if s.st.marks[s.st.index] == MarkNone {
		s.st.marks[s.st.index] = MarkSkipped
		s.st.scores.Skipped++
	}

	if s.st.index == len(s.st.questions)-1 {
		s.completeLocked()
		return nil
	}
	s.st.index++
	s.publishLocked()
	return nil
}

// Previous steps back one question. Revisited questions are always resolved and
// cannot be rescored.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgressLocked(); err != nil {
		return err
	}
	if s.st.index == 0 {
		return ErrAtFirstQuestion
	}
	s.st.index--
	s.publishLocked()
	return nil
}

// Tick advances the countdown by one second. Reaching zero completes the
// session; the unanswered current question is not counted.
func (s *Session) Tick() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickLocked()
}

func (s *Session) tickLocked() error {
	if err := s.requireInProgressLocked(); err != nil {
		return err
	}
	if !s.st.hasLimit || s.st.remaining <= 0 {
		return ErrNoTimeLimit
	}

	s.st.remaining--
	if s.st.remaining == 0 {
		s.st.timedOut = true
		s.completeLocked()
		return nil
	}
	s.publishLocked()
	return nil
}

// State returns a snapshot of the current state.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Result returns the summary of a completed session.
func (s *Session) Result() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.status != StatusCompleted {
		return Result{}, ErrNotCompleted
	}
	return s.resultLocked(), nil
}

// Subscribe returns a channel receiving a snapshot after every transition,
// starting with the current state. Delivery is latest-wins: a slow reader sees
// the newest snapshot, not every intermediate one. The channel is closed by the
// returned cancel func or by Dispose.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.status == StatusDisposed {
		ch <- s.snapshotLocked()
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Dispose cancels any in-flight fetch and the countdown and closes all
// subscriptions. Further transitions return ErrDisposed.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.status == StatusDisposed {
		return
	}
	if s.cancelFetch != nil {
		s.cancelFetch()
		s.cancelFetch = nil
	}
	s.stopCountdownLocked()
	s.st.status = StatusDisposed
	s.publishLocked()

	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Session) requireInProgressLocked() error {
	switch s.st.status {
	case StatusInProgress:
		return nil
	case StatusDisposed:
		return ErrDisposed
	default:
		return ErrNotInProgress
	}
}

func (s *Session) completeLocked() {
	s.st.status = StatusCompleted
	s.stopCountdownLocked()
	s.publishLocked()

	if s.onComplete != nil {
		res := s.resultLocked()
		go s.onComplete(res)
	}
}

func (s *Session) resultLocked() Result {
	sc := s.st.scores
	return Result{
		Total:    len(s.st.questions),
		Correct:  sc.Correct,
		Wrong:    sc.Wrong,
		Skipped:  sc.Skipped,
		Accuracy: Accuracy(sc.Correct, sc.Wrong),
		TimedOut: s.st.timedOut,
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Status:       s.st.status,
		Config:       s.st.config,
		Questions:    s.st.questions,
		CurrentIndex: s.st.index,
		Scores:       s.st.scores,
		Marks:        append([]Mark(nil), s.st.marks...),
		Selections:   append([]string(nil), s.st.selections...),
		IsCompleted:  s.st.status == StatusCompleted,
		TimedOut:     s.st.timedOut,
		NoContent:    s.st.status == StatusReady,
		LoadError:    s.st.loadError,
		Version:      s.st.version,
	}
	if s.st.index < len(s.st.marks) {
		snap.IsAnswered = s.st.marks[s.st.index] != MarkNone
	}
	if s.st.hasLimit {
		remaining := s.st.remaining
		snap.RemainingSeconds = &remaining
	}
	return snap
}

// publishLocked bumps the version and pushes the new snapshot to subscribers.
func (s *Session) publishLocked() {
	s.st.version++
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
