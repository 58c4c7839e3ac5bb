package practice

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eduin/eduin-backend/internal/model"
)

func makeQuestions(correct ...string) []model.Question {
	qs := make([]model.Question, len(correct))
	for i, c := range correct {
		qs[i] = model.Question{
			ID:            int64(i + 1),
			QuestionText:  "question",
			OptionA:       "a",
			OptionB:       "b",
			OptionC:       "c",
			OptionD:       "d",
			CorrectOption: c,
		}
	}
	return qs
}

func staticSource(qs []model.Question) QuestionSource {
	return SourceFunc(func(ctx context.Context, f model.QuestionFilter) ([]model.Question, error) {
		return qs, nil
	})
}

// fakeTicker never fires unless the test sends on ch.
type fakeTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.once.Do(func() { close(f.stopped) }) }

func idleTicker(time.Duration) Ticker { return newFakeTicker() }

func examConfig(count, timeLimit int) Config {
	return Config{
		SelectionType: SelectionExam,
		Value:         "JEE",
		QuestionCount: count,
		TimeLimit:     timeLimit,
	}
}

func startSession(t *testing.T, qs []model.Question, timeLimit int, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithTicker(idleTicker)}, opts...)
	s := New(staticSource(qs), opts...)
	if err := s.Start(context.Background(), examConfig(5, timeLimit)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartInitialState(t *testing.T) {
	s := startSession(t, makeQuestions("A", "B", "C"), 0)
	st := s.State()

	if st.Status != StatusInProgress {
		t.Fatalf("status = %s, want %s", st.Status, StatusInProgress)
	}
	if st.CurrentIndex != 0 || st.IsAnswered {
		t.Errorf("index = %d answered = %v, want 0 false", st.CurrentIndex, st.IsAnswered)
	}
	if st.Scores != (Scores{}) {
		t.Errorf("scores = %+v, want zero", st.Scores)
	}
	if st.RemainingSeconds != nil {
		t.Errorf("remaining = %d, want absent", *st.RemainingSeconds)
	}
	if len(st.Questions) != 3 {
		t.Errorf("questions = %d, want 3", len(st.Questions))
	}
}

func TestStartWithTimeLimit(t *testing.T) {
	s := startSession(t, makeQuestions("A"), 15)
	st := s.State()
	if st.RemainingSeconds == nil || *st.RemainingSeconds != 900 {
		t.Fatalf("remaining = %v, want 900", st.RemainingSeconds)
	}
}

func TestStartTranslatesFilter(t *testing.T) {
	var got model.QuestionFilter
	src := SourceFunc(func(ctx context.Context, f model.QuestionFilter) ([]model.Question, error) {
		got = f
		return makeQuestions("A"), nil
	})
	s := New(src, WithTicker(idleTicker))
	cfg := Config{
		SelectionType: SelectionClass,
		Value:         "11",
		Difficulty:    model.DifficultyMixed,
		QuestionCount: 20,
		Subject:       "Physics",
		Chapter:       model.AllChapters,
	}
	if err := s.Start(context.Background(), cfg); err != nil {
		t.Fatalf("Start: %v", err)
	}
	want := model.QuestionFilter{Standard: "11", Subject: "Physics", Limit: 20}
	if got != want {
		t.Fatalf("filter = %+v, want %+v", got, want)
	}
}

func TestStartEmptyIsNoContent(t *testing.T) {
	s := startSession(t, nil, 30)
	st := s.State()
	if st.Status != StatusReady || !st.NoContent {
		t.Fatalf("status = %s no_content = %v, want READY true", st.Status, st.NoContent)
	}
	if st.LoadError != "" {
		t.Errorf("load error = %q, want empty", st.LoadError)
	}
	if st.RemainingSeconds != nil {
		t.Error("countdown should not run without questions")
	}
	if _, err := s.Answer("A"); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("Answer err = %v, want ErrNotInProgress", err)
	}
}

func TestStartFetchFailure(t *testing.T) {
	boom := errors.New("connection refused")
	calls := 0
	src := SourceFunc(func(ctx context.Context, f model.QuestionFilter) ([]model.Question, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return makeQuestions("A"), nil
	})
	s := New(src, WithTicker(idleTicker))

	err := s.Start(context.Background(), examConfig(5, 0))
	if !errors.Is(err, ErrFetchFailed) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want ErrFetchFailed wrapping cause", err)
	}
	st := s.State()
	if st.Status != StatusFailed || st.LoadError != loadErrorMessage {
		t.Fatalf("status = %s load_error = %q", st.Status, st.LoadError)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, fetch must not retry", calls)
	}

	if err := s.Start(context.Background(), examConfig(5, 0)); err != nil {
		t.Fatalf("retry Start: %v", err)
	}
	if st := s.State(); st.Status != StatusInProgress || st.LoadError != "" {
		t.Fatalf("after retry status = %s load_error = %q", st.Status, st.LoadError)
	}
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	s := New(staticSource(makeQuestions("A")))
	err := s.Start(context.Background(), examConfig(7, 0))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
	if st := s.State(); st.Status != StatusIdle {
		t.Fatalf("status = %s, want IDLE", st.Status)
	}
}

func TestMonotonicTally(t *testing.T) {
	s := startSession(t, makeQuestions("A", "B", "C", "D"), 0)
	prev := 0
	check := func() {
		t.Helper()
		st := s.State()
		n := st.Scores.Tally()
		if n < prev {
			t.Fatalf("tally decreased from %d to %d", prev, n)
		}
		if n > len(st.Questions) {
			t.Fatalf("tally %d exceeds %d questions", n, len(st.Questions))
		}
		prev = n
	}

	steps := []func(){
		func() { _, _ = s.Answer("A") },
		func() { _ = s.Next() },
		func() { _ = s.Previous() },
		func() { _, _ = s.Answer("B") },
		func() { _ = s.Next() },
		func() { _ = s.Next() },
		func() { _ = s.Previous() },
		func() { _ = s.Previous() },
		func() { _ = s.Next() },
		func() { _ = s.Next() },
		func() { _, _ = s.Answer("D") },
		func() { _ = s.Next() },
		func() { _ = s.Next() },
	}
	for _, step := range steps {
		step()
		check()
	}
	if st := s.State(); !st.IsCompleted || st.Scores.Tally() != 4 {
		t.Fatalf("completed = %v tally = %d, want true 4", st.IsCompleted, st.Scores.Tally())
	}
}

func TestAnswerIsIdempotent(t *testing.T) {
	s := startSession(t, makeQuestions("A", "B"), 0)

	correct, err := s.Answer("A")
	if err != nil || !correct {
		t.Fatalf("Answer = %v, %v", correct, err)
	}
	before := s.State()

	if _, err := s.Answer("B"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("second Answer err = %v, want ErrAlreadyAnswered", err)
	}
	after := s.State()
	if after.Scores != before.Scores || after.Version != before.Version {
		t.Fatalf("second answer changed state: %+v -> %+v", before.Scores, after.Scores)
	}
	if !errors.Is(ErrAlreadyAnswered, ErrInvalidTransition) {
		t.Fatal("ErrAlreadyAnswered should be an invalid transition")
	}
}

func TestAnswerNormalizesAndValidatesOption(t *testing.T) {
	s := startSession(t, makeQuestions("C"), 0)

	if _, err := s.Answer("E"); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("err = %v, want ErrInvalidOption", err)
	}
	if st := s.State(); st.IsAnswered {
		t.Fatal("invalid option must not resolve the question")
	}

	correct, err := s.Answer(" c ")
	if err != nil || !correct {
		t.Fatalf("Answer = %v, %v", correct, err)
	}
	if st := s.State(); st.Selections[0] != "C" || st.Marks[0] != MarkCorrect {
		t.Fatalf("selection = %q mark = %q", st.Selections[0], st.Marks[0])
	}
}

func TestRevisitDoesNotRescore(t *testing.T) {
	qs := makeQuestions("A", "B", "C")

	plain := startSession(t, qs, 0)
	_ = plain.Next()
	_ = plain.Next()

	revisit := startSession(t, qs, 0)
	_ = revisit.Next()
	if err := revisit.Previous(); err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if st := revisit.State(); !st.IsAnswered || st.CurrentIndex != 0 {
		t.Fatalf("after Previous index = %d answered = %v", st.CurrentIndex, st.IsAnswered)
	}
	if _, err := revisit.Answer("A"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("re-answer err = %v, want ErrAlreadyAnswered", err)
	}
	_ = revisit.Next()
	_ = revisit.Next()

	if a, b := plain.State().Scores, revisit.State().Scores; a != b {
		t.Fatalf("scores differ: %+v vs %+v", a, b)
	}
	if got := revisit.State().Scores.Skipped; got != 2 {
		t.Fatalf("skipped = %d, want 2", got)
	}
}

func TestForwardOntoResolvedQuestion(t *testing.T) {
	s := startSession(t, makeQuestions("A", "B", "C"), 0)
	_, _ = s.Answer("A")
	_ = s.Next()
	_, _ = s.Answer("A")
	_ = s.Previous()
	_ = s.Next()

	st := s.State()
	if st.CurrentIndex != 1 || !st.IsAnswered {
		t.Fatalf("index = %d answered = %v, want 1 true", st.CurrentIndex, st.IsAnswered)
	}
	if _, err := s.Answer("B"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("err = %v, want ErrAlreadyAnswered", err)
	}
	if st.Scores != (Scores{Correct: 1, Wrong: 1}) {
		t.Fatalf("scores = %+v", st.Scores)
	}
}

func TestPreviousAtFirstQuestion(t *testing.T) {
	s := startSession(t, makeQuestions("A", "B"), 0)
	before := s.State().Version
	if err := s.Previous(); !errors.Is(err, ErrAtFirstQuestion) {
		t.Fatalf("err = %v, want ErrAtFirstQuestion", err)
	}
	if s.State().Version != before {
		t.Fatal("rejected transition changed state")
	}
}

func TestTimeoutTruncation(t *testing.T) {
	s := startSession(t, makeQuestions("A", "B", "C"), 1)

	s.mu.Lock()
	s.st.remaining = 1
	s.mu.Unlock()

	if err := s.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	st := s.State()
	if !st.IsCompleted || !st.TimedOut {
		t.Fatalf("completed = %v timed_out = %v", st.IsCompleted, st.TimedOut)
	}
	res, err := s.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	want := Result{Total: 3, TimedOut: true}
	if res != want {
		t.Fatalf("result = %+v, want %+v", res, want)
	}
	if err := s.Tick(); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("Tick after completion err = %v", err)
	}
}

func TestTickWithoutTimeLimit(t *testing.T) {
	s := startSession(t, makeQuestions("A"), 0)
	if err := s.Tick(); !errors.Is(err, ErrNoTimeLimit) {
		t.Fatalf("err = %v, want ErrNoTimeLimit", err)
	}
}

func TestSkipAccounting(t *testing.T) {
	s := startSession(t, makeQuestions("A", "B"), 0)
	_ = s.Next()
	_ = s.Next()

	st := s.State()
	if st.Scores.Skipped != 2 || !st.IsCompleted {
		t.Fatalf("skipped = %d completed = %v, want 2 true", st.Scores.Skipped, st.IsCompleted)
	}
	if err := s.Next(); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("Next after completion err = %v", err)
	}
}

func TestEndToEnd(t *testing.T) {
	s := New(staticSource(makeQuestions("A", "C")), WithTicker(idleTicker))
	if err := s.Start(context.Background(), examConfig(5, 0)); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if ok, _ := s.Answer("A"); !ok {
		t.Fatal("A should be correct")
	}
	if got := s.State().Scores.Correct; got != 1 {
		t.Fatalf("correct = %d", got)
	}
	if _, err := s.Result(); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("Result before completion err = %v", err)
	}

	_ = s.Next()
	if got := s.State().CurrentIndex; got != 1 {
		t.Fatalf("index = %d, want 1", got)
	}
	if ok, _ := s.Answer("B"); ok {
		t.Fatal("B should be wrong")
	}
	if got := s.State().Scores.Wrong; got != 1 {
		t.Fatalf("wrong = %d", got)
	}
	_ = s.Next()
	if !s.State().IsCompleted {
		t.Fatal("session should be completed")
	}

	res, err := s.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	want := Result{Total: 2, Correct: 1, Wrong: 1, Skipped: 0, Accuracy: 50}
	if res != want {
		t.Fatalf("result = %+v, want %+v", res, want)
	}
}

func TestCountdownGoroutine(t *testing.T) {
	ft := newFakeTicker()
	done := make(chan Result, 1)
	s := startSession(t, makeQuestions("A", "B"), 1,
		WithTicker(func(time.Duration) Ticker { return ft }),
		WithCompletionHook(func(r Result) { done <- r }),
	)

	ft.ch <- time.Now()
	waitFor(t, func() bool {
		r := s.State().RemainingSeconds
		return r != nil && *r == 59
	})

	s.mu.Lock()
	s.st.remaining = 1
	s.mu.Unlock()
	ft.ch <- time.Now()

	select {
	case res := <-done:
		if !res.TimedOut || res.Total != 2 {
			t.Fatalf("result = %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("completion hook not called")
	}
	select {
	case <-ft.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker not stopped after timeout")
	}
}

func TestCountdownStopsOnManualCompletion(t *testing.T) {
	ft := newFakeTicker()
	s := startSession(t, makeQuestions("A"), 5,
		WithTicker(func(time.Duration) Ticker { return ft }))

	_ = s.Next()
	select {
	case <-ft.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker not stopped after completion")
	}
	if r := s.State().RemainingSeconds; r == nil || *r != 300 {
		t.Fatalf("remaining = %v, want 300", r)
	}
}

func TestCompletionHookOncePerAttempt(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{}, 4)
	s := startSession(t, makeQuestions("A"), 0, WithCompletionHook(func(Result) {
		calls.Add(1)
		done <- struct{}{}
	}))
	_ = s.Next()
	_ = s.Next()
	_ = s.Previous()

	<-done
	time.Sleep(20 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("hook calls = %d, want 1", got)
	}
}

func TestSecondStartSupersedes(t *testing.T) {
	var calls atomic.Int32
	firstStarted := make(chan struct{})
	src := SourceFunc(func(ctx context.Context, f model.QuestionFilter) ([]model.Question, error) {
		if calls.Add(1) == 1 {
			close(firstStarted)
			<-ctx.Done()
			return makeQuestions("A", "A", "A"), nil
		}
		return makeQuestions("B"), nil
	})
	s := New(src, WithTicker(idleTicker))

	firstErr := make(chan error, 1)
	go func() { firstErr <- s.Start(context.Background(), examConfig(5, 0)) }()
	<-firstStarted

	if err := s.Start(context.Background(), examConfig(10, 0)); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if err := <-firstErr; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("first Start err = %v, want ErrSuperseded", err)
	}

	st := s.State()
	if len(st.Questions) != 1 || st.Questions[0].CorrectOption != "B" {
		t.Fatalf("stale fetch result applied: %+v", st.Questions)
	}
	if st.Config.QuestionCount != 10 {
		t.Fatalf("config count = %d, want 10", st.Config.QuestionCount)
	}
}

func TestDisposeCancelsFetch(t *testing.T) {
	started := make(chan struct{})
	src := SourceFunc(func(ctx context.Context, f model.QuestionFilter) ([]model.Question, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	s := New(src)

	errc := make(chan error, 1)
	go func() { errc <- s.Start(context.Background(), examConfig(5, 0)) }()
	<-started
	s.Dispose()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrDisposed) {
			t.Fatalf("Start err = %v, want ErrDisposed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fetch not cancelled by Dispose")
	}
	if st := s.State(); st.Status != StatusDisposed || st.LoadError != "" {
		t.Fatalf("status = %s load_error = %q", st.Status, st.LoadError)
	}
	if err := s.Start(context.Background(), examConfig(5, 0)); !errors.Is(err, ErrDisposed) {
		t.Fatalf("Start after Dispose err = %v", err)
	}
}

func TestDisposeStopsCountdown(t *testing.T) {
	ft := newFakeTicker()
	s := startSession(t, makeQuestions("A"), 1,
		WithTicker(func(time.Duration) Ticker { return ft }))
	s.Dispose()
	s.Dispose()

	select {
	case <-ft.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker not stopped by Dispose")
	}
	if _, err := s.Answer("A"); !errors.Is(err, ErrDisposed) {
		t.Fatalf("Answer after Dispose err = %v", err)
	}
}

func TestSubscribe(t *testing.T) {
	s := startSession(t, makeQuestions("A", "B"), 0)
	ch, cancel := s.Subscribe()
	defer cancel()

	first := <-ch
	if first.Status != StatusInProgress {
		t.Fatalf("initial snapshot status = %s", first.Status)
	}

	_, _ = s.Answer("A")
	_ = s.Next()

	latest := <-ch
	if latest.CurrentIndex != 1 || latest.Version <= first.Version {
		t.Fatalf("latest snapshot index = %d version = %d", latest.CurrentIndex, latest.Version)
	}

	s.Dispose()
	var last Snapshot
	for snap := range ch {
		last = snap
	}
	if last.Status != StatusDisposed {
		t.Fatalf("final snapshot status = %s, want DISPOSED", last.Status)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s := startSession(t, makeQuestions("A"), 0)
	ch, cancel := s.Subscribe()
	<-ch
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after cancel")
	}
	_ = s.Next()
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		correct, wrong, want int
	}{
		{0, 0, 0},
		{1, 1, 50},
		{2, 1, 67},
		{1, 2, 33},
		{1, 7, 13}, // 12.5 rounds up
		{3, 0, 100},
		{0, 4, 0},
	}
	for _, tt := range tests {
		if got := Accuracy(tt.correct, tt.wrong); got != tt.want {
			t.Errorf("Accuracy(%d, %d) = %d, want %d", tt.correct, tt.wrong, got, tt.want)
		}
	}
}
