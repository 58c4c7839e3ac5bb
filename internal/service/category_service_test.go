package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/repository"
)

func TestCategoryConfig(t *testing.T) {
	ctx := context.Background()
	store := &fakeCategories{categories: []model.Category{{
		ID:    1,
		Type:  model.CategoryTypeExam,
		Value: "JEE",
		Config: model.SubjectChapters{
			{Subject: "Physics", Chapters: []string{"Kinematics", "Optics"}},
		},
	}}}
	svc := NewCategoryService(store, nil, 0, zerolog.Nop())

	cfg, err := svc.CategoryConfig(ctx, model.CategoryTypeExam, "JEE")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Has("Physics", "Optics") {
		t.Fatalf("config = %+v", cfg)
	}

	cfg, err = svc.CategoryConfig(ctx, model.CategoryTypeClass, "9")
	if err != nil {
		t.Fatalf("unknown category err = %v", err)
	}
	if cfg == nil || len(cfg) != 0 {
		t.Fatalf("unknown category config = %#v, want empty", cfg)
	}
}

func TestCategoryCreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewCategoryService(&fakeCategories{}, nil, 0, zerolog.Nop())

	req := &model.CreateCategoryRequest{
		Type:   model.CategoryTypeClass,
		Value:  "10",
		Config: model.SubjectChapters{{Subject: "Maths", Chapters: []string{"Algebra"}}},
	}
	c, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, req); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("duplicate err = %v", err)
	}

	updated, err := svc.UpdateConfig(ctx, c.ID, model.SubjectChapters{{Subject: "Science", Chapters: []string{"Light"}}})
	if err != nil {
		t.Fatal(err)
	}
	if got := updated.Config.Subjects(); len(got) != 1 || got[0] != "Science" {
		t.Fatalf("subjects = %v", got)
	}
	if _, err := svc.UpdateConfig(ctx, 42, nil); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing category err = %v", err)
	}
}
