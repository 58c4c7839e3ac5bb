package service

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/eduin/eduin-backend/internal/model"
)

const exportSheet = "Questions"

var exportHeader = []interface{}{
	"id", "question_text", "question_image",
	"option_a", "option_a_image", "option_b", "option_b_image",
	"option_c", "option_c_image", "option_d", "option_d_image",
	"correct_option", "explanation", "explanation_image",
	"difficulty", "exam", "board", "class", "subject", "chapter",
}

// ExportService renders the question bank as a spreadsheet. Column names match
// the bulk upload payload so an export can be edited and uploaded again.
type ExportService struct {
	store QuestionStore
	log   zerolog.Logger
}

// NewExportService creates a new ExportService.
func NewExportService(store QuestionStore, log zerolog.Logger) *ExportService {
	return &ExportService{
		store: store,
		log:   log.With().Str("component", "export_service").Logger(),
	}
}

// WriteQuestionsXLSX streams every question matching filter to w as XLSX and
// returns the number of rows written.
func (s *ExportService) WriteQuestionsXLSX(ctx context.Context, filter model.AdminQuestionFilter, w io.Writer) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, err
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return 0, fmt.Errorf("stream writer: %w", err)
	}
	if err := sw.SetRow("A1", exportHeader); err != nil {
		return 0, err
	}

	rows := 0
	err = s.store.ForEach(ctx, filter, func(q model.Question) error {
		rows++
		cell, err := excelize.CoordinatesToCellName(1, rows+1)
		if err != nil {
			return err
		}
		return sw.SetRow(cell, questionRow(q))
	})
	if err != nil {
		return 0, fmt.Errorf("export questions: %w", err)
	}

	if err := sw.Flush(); err != nil {
		return 0, err
	}
	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}

	s.log.Info().Int("rows", rows).Msg("Questions exported")
	return rows, nil
}

func questionRow(q model.Question) []interface{} {
	class := ""
	if q.Class != nil {
		class = fmt.Sprint(*q.Class)
	}
	return []interface{}{
		q.ID, q.QuestionText, deref(q.QuestionImage),
		q.OptionA, deref(q.OptionAImage), q.OptionB, deref(q.OptionBImage),
		q.OptionC, deref(q.OptionCImage), q.OptionD, deref(q.OptionDImage),
		q.CorrectOption, deref(q.Explanation), deref(q.ExplanationImage),
		deref(q.Difficulty), deref(q.Exam), deref(q.Board), class, deref(q.Subject), deref(q.Chapter),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
