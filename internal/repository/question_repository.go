package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduin/eduin-backend/internal/model"
)

const questionColumns = `id, question_text, question_image,
	option_a, option_a_image, option_b, option_b_image,
	option_c, option_c_image, option_d, option_d_image,
	correct_option, explanation, explanation_image,
	difficulty, exam, board, class, subject, chapter, created_at`

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// whereBuilder accumulates AND-ed conditions with positional args.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func (w *whereBuilder) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	s := " WHERE " + w.clauses[0]
	for _, c := range w.clauses[1:] {
		s += " AND " + c
	}
	return s
}

func (w *whereBuilder) next() string {
	return "$" + strconv.Itoa(len(w.args)+1)
}

// ListRandom returns up to filter.Limit questions in random order. The filter
// must already be normalized.
func (r *QuestionRepository) ListRandom(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	var w whereBuilder
	if filter.Exam != "" {
		w.add("exam = $%d", filter.Exam)
	}
	if filter.Standard != "" {
		class, err := strconv.Atoi(filter.Standard)
		if err != nil {
			return nil, fmt.Errorf("standard %q: %w", filter.Standard, err)
		}
		w.add("class = $%d", class)
	}
	if filter.Subject != "" {
		w.add("subject = $%d", filter.Subject)
	}
	if filter.Chapter != "" {
		w.add("chapter = $%d", filter.Chapter)
	}
	if filter.Difficulty != "" {
		w.add("difficulty = $%d", filter.Difficulty)
	}

	query := `SELECT ` + questionColumns + ` FROM questions` + w.sql() +
		` ORDER BY random() LIMIT ` + w.next()
	args := append(w.args, filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

// ListPaginated retrieves questions for the admin console, newest first.
func (r *QuestionRepository) ListPaginated(ctx context.Context, filter model.AdminQuestionFilter) ([]model.Question, int, error) {
	w := adminWhere(filter)
	_, perPage, offset := filter.Paging()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + questionColumns + ` FROM questions` + w.sql() +
		` ORDER BY id DESC LIMIT $` + strconv.Itoa(len(w.args)+1) + ` OFFSET $` + strconv.Itoa(len(w.args)+2)
	args := append(w.args, perPage, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	questions, err := collectQuestions(rows)
	return questions, total, err
}

// ForEach streams every question matching filter, oldest first, without paging.
func (r *QuestionRepository) ForEach(ctx context.Context, filter model.AdminQuestionFilter, fn func(model.Question) error) error {
	w := adminWhere(filter)
	rows, err := r.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions`+w.sql()+` ORDER BY id`, w.args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return err
		}
		if err := fn(q); err != nil {
			return err
		}
	}
	return rows.Err()
}

func adminWhere(filter model.AdminQuestionFilter) *whereBuilder {
	w := &whereBuilder{}
	if filter.Exam != "" {
		w.add("exam = $%d", filter.Exam)
	}
	if filter.Subject != "" {
		w.add("subject = $%d", filter.Subject)
	}
	if filter.Chapter != "" && filter.Chapter != model.AllChapters {
		w.add("chapter = $%d", filter.Chapter)
	}
	if filter.Difficulty != "" && filter.Difficulty != model.DifficultyMixed {
		w.add("difficulty = $%d", filter.Difficulty)
	}
	if filter.Search != "" {
		w.add("question_text ILIKE '%%' || $%d || '%%'", filter.Search)
	}
	return w
}

// GetByID retrieves a question by ID.
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*model.Question, error) {
	q, err := scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (question_text, question_image,
			option_a, option_a_image, option_b, option_b_image,
			option_c, option_c_image, option_d, option_d_image,
			correct_option, explanation, explanation_image,
			difficulty, exam, board, class, subject, chapter)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		 RETURNING id, created_at`,
		q.QuestionText, q.QuestionImage,
		q.OptionA, q.OptionAImage, q.OptionB, q.OptionBImage,
		q.OptionC, q.OptionCImage, q.OptionD, q.OptionDImage,
		q.CorrectOption, q.Explanation, q.ExplanationImage,
		q.Difficulty, q.Exam, q.Board, q.Class, q.Subject, q.Chapter,
	).Scan(&q.ID, &q.CreatedAt)
}

// Update replaces every editable field of a question.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE questions SET question_text = $1, question_image = $2,
			option_a = $3, option_a_image = $4, option_b = $5, option_b_image = $6,
			option_c = $7, option_c_image = $8, option_d = $9, option_d_image = $10,
			correct_option = $11, explanation = $12, explanation_image = $13,
			difficulty = $14, exam = $15, board = $16, class = $17, subject = $18, chapter = $19
		 WHERE id = $20
		 RETURNING created_at`,
		q.QuestionText, q.QuestionImage,
		q.OptionA, q.OptionAImage, q.OptionB, q.OptionBImage,
		q.OptionC, q.OptionCImage, q.OptionD, q.OptionDImage,
		q.CorrectOption, q.Explanation, q.ExplanationImage,
		q.Difficulty, q.Exam, q.Board, q.Class, q.Subject, q.Chapter,
		q.ID,
	).Scan(&q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Delete removes a question by ID.
func (r *QuestionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectQuestions(rows pgx.Rows) ([]model.Question, error) {
	defer rows.Close()

	questions := make([]model.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func scanQuestion(row pgx.Row) (model.Question, error) {
	var q model.Question
	err := row.Scan(&q.ID, &q.QuestionText, &q.QuestionImage,
		&q.OptionA, &q.OptionAImage, &q.OptionB, &q.OptionBImage,
		&q.OptionC, &q.OptionCImage, &q.OptionD, &q.OptionDImage,
		&q.CorrectOption, &q.Explanation, &q.ExplanationImage,
		&q.Difficulty, &q.Exam, &q.Board, &q.Class, &q.Subject, &q.Chapter, &q.CreatedAt)
	return q, err
}
