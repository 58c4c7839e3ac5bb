// Package client talks to the public question API. It backs practice sessions
// hosted outside the server process, such as the terminal client.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/response"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int
	Code    response.ErrCode
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

// Client is a REST client for the question and category endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log.With().Str("component", "api_client").Logger() }
}

// New creates a Client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchQuestions calls GET /api/v1/questions.
func (c *Client) FetchQuestions(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	q := url.Values{}
	setIf(q, "exam", filter.Exam)
	setIf(q, "standard", filter.Standard)
	setIf(q, "subject", filter.Subject)
	setIf(q, "chapter", filter.Chapter)
	setIf(q, "difficulty", filter.Difficulty)
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	var out struct {
		Questions []model.Question `json:"questions"`
	}
	if err := c.get(ctx, "/api/v1/questions", q, &out); err != nil {
		return nil, err
	}
	c.log.Debug().Int("count", len(out.Questions)).Msg("Questions fetched")
	return out.Questions, nil
}

// CategoryConfig calls GET /api/v1/config.
func (c *Client) CategoryConfig(ctx context.Context, typ model.CategoryType, value string) (model.SubjectChapters, error) {
	q := url.Values{}
	q.Set("type", string(typ))
	q.Set("value", value)

	var out struct {
		Config model.SubjectChapters `json:"config"`
	}
	if err := c.get(ctx, "/api/v1/config", q, &out); err != nil {
		return nil, err
	}
	return out.Config, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, data any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer res.Body.Close()

	var env struct {
		Data  json.RawMessage     `json:"data"`
		Error *response.ErrorBody `json:"error"`
	}
	decodeErr := json.NewDecoder(io.LimitReader(res.Body, 8<<20)).Decode(&env)

	if res.StatusCode/100 != 2 {
		apiErr := &APIError{Status: res.StatusCode}
		if decodeErr == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("decode %s: %w", path, decodeErr)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return errors.New("empty response data")
	}
	if err := json.Unmarshal(env.Data, data); err != nil {
		return fmt.Errorf("decode %s data: %w", path, err)
	}
	return nil
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
