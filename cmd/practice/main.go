package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/eduin/eduin-backend/internal/client"
	"github.com/eduin/eduin-backend/internal/logger"
	"github.com/eduin/eduin-backend/internal/practice"
	"github.com/eduin/eduin-backend/internal/terminal"
)

func main() {
	_ = godotenv.Load()

	var cfg practice.Config
	var selection string
	apiURL := flag.String("api", envOr("EDUIN_API_URL", "http://localhost:5000"), "Base URL of the question API")
	timeout := flag.Duration("timeout", 15*time.Second, "Timeout for a single API request")
	logLevel := flag.String("log-level", envOr("LOG_LEVEL", "warn"), "Log level for stderr output")
	flag.StringVar(&selection, "type", "exam", "Practice by exam or class")
	flag.StringVar(&cfg.Value, "value", "", "Exam name (e.g. NEET) or class number (e.g. 10)")
	flag.StringVar(&cfg.Subject, "subject", "", "Subject; prompted from the category config when empty")
	flag.StringVar(&cfg.Chapter, "chapter", "", "Chapter (default all chapters)")
	flag.StringVar(&cfg.Difficulty, "difficulty", "", "Easy, Medium, Hard or Mixed (default Mixed)")
	flag.IntVar(&cfg.QuestionCount, "count", 20, "Number of questions (5-100, step 5)")
	flag.IntVar(&cfg.TimeLimit, "time", 0, "Time limit in minutes, 0 for none")
	flag.Parse()
	cfg.SelectionType = practice.SelectionType(selection)

	log := logger.New(os.Stderr, *logLevel, "pretty")

	if cfg.Value == "" {
		fmt.Fprintln(os.Stderr, "Error: -value is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(*apiURL, client.WithLogger(log), client.WithHTTPClient(&http.Client{Timeout: *timeout}))
	session := practice.New(api, practice.WithLogger(log))
	defer session.Dispose()

	runner := terminal.NewRunner(session, os.Stdin, os.Stdout, log)

	cfg, err := runner.ChooseSubject(ctx, api, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Could not load subjects")
		os.Exit(1)
	}

	_, err = runner.Run(ctx, cfg)
	switch {
	case err == nil:
	case errors.Is(err, terminal.ErrQuit), errors.Is(err, terminal.ErrInputClosed), errors.Is(err, context.Canceled):
		fmt.Println("\nBye.")
	case errors.Is(err, terminal.ErrNoQuestions):
		os.Exit(1)
	case errors.Is(err, practice.ErrInvalidConfig):
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	default:
		log.Error().Err(err).Msg("Practice failed")
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
