package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CategoryType selects whether a category describes an exam or a class.
type CategoryType string

const (
	CategoryTypeExam  CategoryType = "exam"
	CategoryTypeClass CategoryType = "class"
)

// Category holds the subject/chapter taxonomy for one exam or class.
type Category struct {
	ID        int             `json:"id"`
	Type      CategoryType    `json:"type"`
	Value     string          `json:"value"`
	Config    SubjectChapters `json:"config"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SubjectEntry is one subject with its chapters in display order.
type SubjectEntry struct {
	Subject  string
	Chapters []string
}

// SubjectChapters maps subjects to chapters, preserving the stored key order.
//
// It encodes as a JSON object. When decoding, a subject's chapters may be a JSON
// array or a single comma-separated string.
type SubjectChapters []SubjectEntry

// Subjects returns the subject names in order.
func (sc SubjectChapters) Subjects() []string {
	out := make([]string, len(sc))
	for i, e := range sc {
		out[i] = e.Subject
	}
	return out
}

// Chapters returns the chapters of subject, or nil if it is unknown.
func (sc SubjectChapters) Chapters(subject string) []string {
	for _, e := range sc {
		if e.Subject == subject {
			return e.Chapters
		}
	}
	return nil
}

// Has reports whether subject exists and, if chapter is set and not AllChapters,
// whether the subject lists that chapter.
func (sc SubjectChapters) Has(subject, chapter string) bool {
	for _, e := range sc {
		if e.Subject != subject {
			continue
		}
		if chapter == "" || chapter == AllChapters {
			return true
		}
		for _, c := range e.Chapters {
			if c == chapter {
				return true
			}
		}
		return false
	}
	return false
}

// MarshalJSON writes the entries as an object in stored order.
func (sc SubjectChapters) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range sc {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Subject)
		if err != nil {
			return nil, err
		}
		chapters := e.Chapters
		if chapters == nil {
			chapters = []string{}
		}
		val, err := json.Marshal(chapters)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keeping key order.
func (sc *SubjectChapters) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*sc = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("category config must be a JSON object")
	}

	out := SubjectChapters{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		subject, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("subject %q: %w", subject, err)
		}
		chapters, err := decodeChapters(raw)
		if err != nil {
			return fmt.Errorf("subject %q: %w", subject, err)
		}
		out = append(out, SubjectEntry{Subject: subject, Chapters: chapters})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*sc = out
	return nil
}

func decodeChapters(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var joined string
	if err := json.Unmarshal(raw, &joined); err != nil {
		return nil, errors.New("chapters must be an array or a comma-separated string")
	}
	chapters := []string{}
	for _, part := range strings.Split(joined, ",") {
		if c := strings.TrimSpace(part); c != "" {
			chapters = append(chapters, c)
		}
	}
	return chapters, nil
}

// CreateCategoryRequest is the payload for creating a category.
type CreateCategoryRequest struct {
	Type   CategoryType    `json:"type" binding:"required,oneof=exam class"`
	Value  string          `json:"value" binding:"required,min=1,max=100"`
	Config SubjectChapters `json:"config" binding:"required"`
}

// UpdateCategoryRequest is the payload for replacing a category's config.
type UpdateCategoryRequest struct {
	Config SubjectChapters `json:"config" binding:"required"`
}

// CategoryQuery is the public config lookup query.
type CategoryQuery struct {
	Type  CategoryType `form:"type" binding:"required,oneof=exam class"`
	Value string       `form:"value" binding:"required,max=100"`
}
