package service

import (
	"context"
	"sort"
	"sync"

	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/repository"
)

type fakeAdmins struct {
	byName map[string]*model.Admin
}

func (f *fakeAdmins) GetByID(_ context.Context, id int) (*model.Admin, error) {
	for _, a := range f.byName {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAdmins) GetByUsername(_ context.Context, username string) (*model.Admin, error) {
	if a, ok := f.byName[username]; ok {
		return a, nil
	}
	return nil, repository.ErrNotFound
}

type fakeQuestions struct {
	mu        sync.Mutex
	questions map[int64]model.Question
	nextID    int64
	lastQuery model.QuestionFilter
}

func newFakeQuestions(qs ...model.Question) *fakeQuestions {
	f := &fakeQuestions{questions: make(map[int64]model.Question)}
	for _, q := range qs {
		_ = f.Create(context.Background(), &q)
	}
	return f
}

func (f *fakeQuestions) sorted() []model.Question {
	out := make([]model.Question, 0, len(f.questions))
	for _, q := range f.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeQuestions) ListRandom(_ context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = filter
	out := f.sorted()
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeQuestions) ListPaginated(_ context.Context, filter model.AdminQuestionFilter) ([]model.Question, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.sorted()
	_, perPage, offset := filter.Paging()
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (f *fakeQuestions) ForEach(_ context.Context, _ model.AdminQuestionFilter, fn func(model.Question) error) error {
	f.mu.Lock()
	all := f.sorted()
	f.mu.Unlock()
	for _, q := range all {
		if err := fn(q); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeQuestions) GetByID(_ context.Context, id int64) (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &q, nil
}

func (f *fakeQuestions) Create(_ context.Context, q *model.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	q.ID = f.nextID
	f.questions[q.ID] = *q
	return nil
}

func (f *fakeQuestions) Update(_ context.Context, q *model.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.questions[q.ID]; !ok {
		return repository.ErrNotFound
	}
	f.questions[q.ID] = *q
	return nil
}

func (f *fakeQuestions) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.questions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.questions, id)
	return nil
}

type fakeCategories struct {
	categories []model.Category
	lookups    int
}

func (f *fakeCategories) List(context.Context) ([]model.Category, error) {
	return f.categories, nil
}

func (f *fakeCategories) GetByTypeValue(_ context.Context, typ model.CategoryType, value string) (*model.Category, error) {
	f.lookups++
	for i := range f.categories {
		if f.categories[i].Type == typ && f.categories[i].Value == value {
			c := f.categories[i]
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCategories) Create(_ context.Context, c *model.Category) error {
	for _, existing := range f.categories {
		if existing.Type == c.Type && existing.Value == c.Value {
			return repository.ErrDuplicate
		}
	}
	c.ID = len(f.categories) + 1
	f.categories = append(f.categories, *c)
	return nil
}

func (f *fakeCategories) UpdateConfig(_ context.Context, id int, cfg model.SubjectChapters) (*model.Category, error) {
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories[i].Config = cfg
			c := f.categories[i]
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakePublisher struct {
	ch chan model.PracticeResultRecord
}

func (f *fakePublisher) Publish(_ context.Context, rec model.PracticeResultRecord) error {
	f.ch <- rec
	return nil
}
