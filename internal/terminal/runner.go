// Package terminal hosts a practice session on a line-oriented console.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/practice"
)

var (
	ErrQuit        = errors.New("practice abandoned")
	ErrInputClosed = errors.New("input closed")
	ErrNoQuestions = errors.New("no questions match the selection")
)

// Runner drives one practice session from text commands:
// a-d answers, n moves on, p goes back, t shows the clock, q quits.
type Runner struct {
	session *practice.Session
	out     io.Writer
	log     zerolog.Logger

	in    io.Reader
	lines chan string
}

// NewRunner creates a Runner reading commands from in and printing to out.
func NewRunner(session *practice.Session, in io.Reader, out io.Writer, log zerolog.Logger) *Runner {
	return &Runner{
		session: session,
		in:      in,
		out:     out,
		log:     log.With().Str("component", "terminal").Logger(),
	}
}

func (r *Runner) readLines() <-chan string {
	if r.lines != nil {
		return r.lines
	}
	r.lines = make(chan string)
	go func() {
		defer close(r.lines)
		sc := bufio.NewScanner(r.in)
		for sc.Scan() {
			r.lines <- strings.TrimSpace(sc.Text())
		}
	}()
	return r.lines
}

func (r *Runner) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-r.readLines():
		if !ok {
			return "", ErrInputClosed
		}
		return line, nil
	}
}

// ChooseSubject fills in cfg's subject and chapter from the category config
// when they are empty. An empty category leaves cfg untouched.
func (r *Runner) ChooseSubject(ctx context.Context, src practice.CategorySource, cfg practice.Config) (practice.Config, error) {
	if cfg.Subject != "" {
		return cfg, nil
	}
	typ := model.CategoryTypeExam
	if cfg.SelectionType == practice.SelectionClass {
		typ = model.CategoryTypeClass
	}
	categories, err := src.CategoryConfig(ctx, typ, cfg.Value)
	if err != nil {
		return cfg, fmt.Errorf("load subjects: %w", err)
	}
	if len(categories) == 0 {
		return cfg, nil
	}

	subject, err := r.pick(ctx, "Subject", "All subjects", categories.Subjects())
	if err != nil || subject == "" {
		return cfg, err
	}
	cfg.Subject = subject

	chapter, err := r.pick(ctx, "Chapter", model.AllChapters, categories.Chapters(subject))
	if err != nil {
		return cfg, err
	}
	if chapter == "" {
		chapter = model.AllChapters
	}
	cfg.Chapter = chapter
	return cfg, nil
}

// pick lists choices after a "0) none" entry and returns the chosen one, or ""
// for none.
func (r *Runner) pick(ctx context.Context, label, none string, choices []string) (string, error) {
	if len(choices) == 0 {
		return "", nil
	}
	fmt.Fprintf(r.out, "%s:\n  0) %s\n", label, none)
	for i, c := range choices {
		fmt.Fprintf(r.out, "  %d) %s\n", i+1, c)
	}
	for {
		fmt.Fprintf(r.out, "Choose %s [0-%d]: ", strings.ToLower(label), len(choices))
		line, err := r.readLine(ctx)
		if err != nil {
			return "", err
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 0 && n <= len(choices) {
			if n == 0 {
				return "", nil
			}
			return choices[n-1], nil
		}
		fmt.Fprintln(r.out, "Invalid choice.")
	}
}

// Run starts the session with cfg and plays it to completion. A failed load
// offers a retry.
func (r *Runner) Run(ctx context.Context, cfg practice.Config) (practice.Result, error) {
	if err := r.start(ctx, cfg); err != nil {
		return practice.Result{}, err
	}

	updates, cancel := r.session.Subscribe()
	defer cancel()

	lastIndex := -1
	lines := r.readLines()
	for {
		if snap := r.session.State(); snap.IsCompleted {
			return r.finish(snap)
		}

		select {
		case <-ctx.Done():
			return practice.Result{}, ctx.Err()

		case snap, ok := <-updates:
			if !ok {
				return practice.Result{}, practice.ErrDisposed
			}
			if snap.Status == practice.StatusInProgress && snap.CurrentIndex != lastIndex {
				lastIndex = snap.CurrentIndex
				r.render(snap)
			}

		case line, ok := <-lines:
			if !ok {
				if snap := r.session.State(); snap.IsCompleted {
					return r.finish(snap)
				}
				return practice.Result{}, ErrInputClosed
			}
			if err := r.command(line); err != nil {
				return practice.Result{}, err
			}
		}
	}
}

func (r *Runner) start(ctx context.Context, cfg practice.Config) error {
	for {
		fmt.Fprintln(r.out, "Loading questions...")
		err := r.session.Start(ctx, cfg)
		if err == nil {
			break
		}
		if !errors.Is(err, practice.ErrFetchFailed) {
			return err
		}
		r.log.Debug().Err(err).Msg("Load failed")

		fmt.Fprintf(r.out, "%s\nRetry? [y/N]: ", r.session.State().LoadError)
		line, err := r.readLine(ctx)
		if err != nil {
			return err
		}
		if !strings.EqualFold(line, "y") {
			return ErrQuit
		}
	}

	if r.session.State().NoContent {
		fmt.Fprintln(r.out, "No questions found for this selection.")
		return ErrNoQuestions
	}
	return nil
}

func (r *Runner) command(line string) error {
	switch cmd := strings.ToLower(line); cmd {
	case "a", "b", "c", "d":
		snap := r.session.State()
		q, _ := snap.CurrentQuestion()
		correct, err := r.session.Answer(cmd)
		if errors.Is(err, practice.ErrAlreadyAnswered) {
			fmt.Fprintln(r.out, "Already answered. Press n for the next question.")
			return nil
		}
		if err != nil {
			return r.transitionError(err)
		}
		if correct {
			fmt.Fprintln(r.out, "Correct!")
		} else {
			key := model.NormalizeOption(q.CorrectOption)
			fmt.Fprintf(r.out, "Wrong. The answer is %s) %s\n", key, q.OptionText(key))
		}
		if q.Explanation != nil && *q.Explanation != "" {
			fmt.Fprintf(r.out, "Explanation: %s\n", *q.Explanation)
		}
	case "n":
		return r.transitionError(r.session.Next())
	case "p":
		if err := r.session.Previous(); errors.Is(err, practice.ErrAtFirstQuestion) {
			fmt.Fprintln(r.out, "This is the first question.")
			return nil
		} else if err != nil {
			return r.transitionError(err)
		}
	case "t":
		snap := r.session.State()
		if snap.RemainingSeconds == nil {
			fmt.Fprintln(r.out, "No time limit.")
		} else {
			fmt.Fprintf(r.out, "Time left: %s\n", clock(*snap.RemainingSeconds))
		}
	case "q":
		return ErrQuit
	case "":
	default:
		fmt.Fprintln(r.out, "Commands: a-d answer, n next, p previous, t time, q quit")
	}
	return nil
}

// transitionError swallows transitions lost to the countdown finishing first.
func (r *Runner) transitionError(err error) error {
	if err == nil || errors.Is(err, practice.ErrNotInProgress) {
		return nil
	}
	return err
}

func (r *Runner) render(snap practice.Snapshot) {
	q, ok := snap.CurrentQuestion()
	if !ok {
		return
	}

	header := fmt.Sprintf("\nQuestion %d/%d", snap.CurrentIndex+1, len(snap.Questions))
	if q.Subject != nil {
		header += "  [" + *q.Subject
		if q.Chapter != nil {
			header += " / " + *q.Chapter
		}
		header += "]"
	}
	if snap.RemainingSeconds != nil {
		header += "  " + clock(*snap.RemainingSeconds)
	}
	fmt.Fprintln(r.out, header)
	fmt.Fprintln(r.out, q.QuestionText)
	for _, key := range []string{model.OptionA, model.OptionB, model.OptionC, model.OptionD} {
		fmt.Fprintf(r.out, "  %s) %s\n", key, q.OptionText(key))
	}
	if snap.IsAnswered {
		fmt.Fprintf(r.out, "(answered: %s)\n", snap.Marks[snap.CurrentIndex])
	}
	fmt.Fprint(r.out, "> ")
}

func (r *Runner) finish(snap practice.Snapshot) (practice.Result, error) {
	res, err := r.session.Result()
	if err != nil {
		return practice.Result{}, err
	}
	if snap.TimedOut {
		fmt.Fprintln(r.out, "\nTime's up!")
	}
	fmt.Fprintf(r.out, "\nPractice complete\n  Total:    %d\n  Correct:  %d\n  Wrong:    %d\n  Skipped:  %d\n  Accuracy: %d%%\n",
		res.Total, res.Correct, res.Wrong, res.Skipped, res.Accuracy)
	return res, nil
}

func clock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
