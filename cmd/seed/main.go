package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/eduin/eduin-backend/internal/config"
	"github.com/eduin/eduin-backend/internal/database"
	"github.com/eduin/eduin-backend/internal/logger"
	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/repository"
	"github.com/eduin/eduin-backend/internal/service"
	"github.com/eduin/eduin-backend/internal/validator"
)

// seedFile is the layout accepted by -file.
type seedFile struct {
	Categories []model.CreateCategoryRequest `json:"categories"`
	Questions  []model.QuestionRequest       `json:"questions"`
}

func main() {
	path := flag.String("file", "", "JSON file with categories and questions (built-in sample when empty)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	validator.Setup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	data, err := load(*path)
	if err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("Failed to read seed file")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Seeding writes straight to Postgres; the server's category cache expires on its own.
	categoryService := service.NewCategoryService(repository.NewCategoryRepository(pool), nil, 0, log)
	questionService := service.NewQuestionService(repository.NewQuestionRepository(pool), log)

	fmt.Printf("=== Seeding %d categories and %d questions ===\n", len(data.Categories), len(data.Questions))

	created := 0
	for i := range data.Categories {
		c := &data.Categories[i]
		_, err := categoryService.Create(ctx, c)
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			fmt.Printf("Category %s/%s already exists, skipped\n", c.Type, c.Value)
		case err != nil:
			log.Fatal().Err(err).Str("type", string(c.Type)).Str("value", c.Value).Msg("Failed to create category")
		default:
			created++
		}
	}

	res := questionService.BulkCreate(ctx, data.Questions)
	for _, e := range res.Errors {
		fmt.Printf("Question row %d: %s\n", e.Row, e.Error)
	}

	fmt.Printf("\nSeed completed! Categories: %d/%d, questions: %d/%d.\n",
		created, len(data.Categories), res.SuccessCount, len(data.Questions))
}

func load(path string) (*seedFile, error) {
	if path == "" {
		return sample(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f seedFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &f, nil
}

func sample() *seedFile {
	str := func(s string) *string { return &s }
	class := func(n int) *int { return &n }

	return &seedFile{
		Categories: []model.CreateCategoryRequest{
			{Type: model.CategoryTypeExam, Value: "NEET", Config: model.SubjectChapters{
				{Subject: "Physics", Chapters: []string{"Kinematics", "Laws of Motion", "Optics"}},
				{Subject: "Chemistry", Chapters: []string{"Atomic Structure", "Chemical Bonding"}},
				{Subject: "Biology", Chapters: []string{"Cell Biology", "Genetics"}},
			}},
			{Type: model.CategoryTypeExam, Value: "JEE", Config: model.SubjectChapters{
				{Subject: "Physics", Chapters: []string{"Kinematics", "Thermodynamics"}},
				{Subject: "Mathematics", Chapters: []string{"Calculus", "Algebra"}},
			}},
			{Type: model.CategoryTypeClass, Value: "10", Config: model.SubjectChapters{
				{Subject: "Mathematics", Chapters: []string{"Real Numbers", "Polynomials"}},
				{Subject: "Science", Chapters: []string{"Light", "Electricity"}},
			}},
		},
		Questions: []model.QuestionRequest{
			{
				QuestionText: "A body starts from rest with uniform acceleration 2 m/s². Its velocity after 5 s is",
				OptionA:      "5 m/s", OptionB: "10 m/s", OptionC: "20 m/s", OptionD: "2.5 m/s",
				CorrectOption: "B", Difficulty: str("Easy"),
				Explanation: str("v = u + at = 0 + 2 × 5 = 10 m/s"),
				Exam:        str("NEET"), Subject: str("Physics"), Chapter: str("Kinematics"),
			},
			{
				QuestionText: "Which law gives the relation F = ma?",
				OptionA:      "Newton's second law", OptionB: "Newton's first law",
				OptionC: "Newton's third law", OptionD: "Hooke's law",
				CorrectOption: "A", Difficulty: str("Easy"),
				Exam: str("NEET"), Subject: str("Physics"), Chapter: str("Laws of Motion"),
			},
			{
				QuestionText: "The number of unpaired electrons in a nitrogen atom is",
				OptionA:      "1", OptionB: "2", OptionC: "3", OptionD: "5",
				CorrectOption: "C", Difficulty: str("Medium"),
				Exam: str("NEET"), Subject: str("Chemistry"), Chapter: str("Atomic Structure"),
			},
			{
				QuestionText: "The derivative of sin x with respect to x is",
				OptionA:      "-cos x", OptionB: "cos x", OptionC: "tan x", OptionD: "-sin x",
				CorrectOption: "B", Difficulty: str("Easy"),
				Exam: str("JEE"), Subject: str("Mathematics"), Chapter: str("Calculus"),
			},
			{
				QuestionText: "HCF of 96 and 404 is",
				OptionA:      "2", OptionB: "4", OptionC: "8", OptionD: "12",
				CorrectOption: "B", Difficulty: str("Medium"),
				Class: class(10), Subject: str("Mathematics"), Chapter: str("Real Numbers"),
			},
			{
				QuestionText: "The SI unit of electric current is",
				OptionA:      "Volt", OptionB: "Ohm", OptionC: "Watt", OptionD: "Ampere",
				CorrectOption: "D", Difficulty: str("Easy"),
				Class: class(10), Subject: str("Science"), Chapter: str("Electricity"),
			},
		},
	}
}
