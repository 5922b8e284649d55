// Package catalog is the gateway to the movie catalog REST API. Every call is
// single-shot: no retries and no caching. Failures are logged with the
// operation and id before being returned.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dharsanguruparan/cinebook/internal/model"
)

// Gateway is what the views need from the catalog. *Client implements it.
type Gateway interface {
	ListAll(ctx context.Context) ([]model.Movie, error)
	GetByID(ctx context.Context, id string) (model.Movie, error)
	Create(ctx context.Context, m model.Movie, posters []Attachment, trailer Attachment) (model.Movie, error)
	Update(ctx context.Context, id string, m model.Movie, posters []Attachment, trailer Attachment) (model.Movie, error)
	DeleteByID(ctx context.Context, id string) error
}

// Client talks to /api/v1/cinemas.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

var _ Gateway = (*Client)(nil)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the logger used for failed requests.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New returns a Client for the collection at baseURL, for example
// http://localhost:8080/api/v1/cinemas.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListAll fetches the whole collection.
func (c *Client) ListAll(ctx context.Context) ([]model.Movie, error) {
	var movies []model.Movie
	if err := c.do(ctx, "list", "", http.MethodGet, c.baseURL, nil, "", &movies); err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []model.Movie{}
	}
	return movies, nil
}

// GetByID fetches one movie.
func (c *Client) GetByID(ctx context.Context, id string) (model.Movie, error) {
	var m model.Movie
	err := c.do(ctx, "get", id, http.MethodGet, c.itemURL(id), nil, "", &m)
	return m, err
}

// Create posts a new movie with its media.
func (c *Client) Create(ctx context.Context, m model.Movie, posters []Attachment, trailer Attachment) (model.Movie, error) {
	body, contentType := streamUpload(ctx, m, posters, trailer)
	defer body.Close()
	created := m
	err := c.do(ctx, "create", "", http.MethodPost, c.baseURL, body, contentType, &created)
	return created, err
}

// Update replaces a movie. New media are optional.
func (c *Client) Update(ctx context.Context, id string, m model.Movie, posters []Attachment, trailer Attachment) (model.Movie, error) {
	body, contentType := streamUpload(ctx, m, posters, trailer)
	defer body.Close()
	updated := m
	err := c.do(ctx, "update", id, http.MethodPut, c.itemURL(id), body, contentType, &updated)
	return updated, err
}

// DeleteByID deletes a movie.
func (c *Client) DeleteByID(ctx context.Context, id string) error {
	return c.do(ctx, "delete", id, http.MethodDelete, c.itemURL(id), nil, "", nil)
}

func (c *Client) itemURL(id string) string {
	return c.baseURL + "/" + url.PathEscape(id)
}

// do performs one request and decodes a JSON response into out when out is
// non-nil and the body is not empty.
func (c *Client) do(ctx context.Context, op, id, method, target string, body io.Reader, contentType string, out any) error {
	err := c.roundTrip(ctx, op, id, method, target, body, contentType, out)
	if err != nil {
		attrs := []any{slog.String("op", op), slog.String("error", err.Error())}
		if id != "" {
			attrs = append(attrs, slog.String("id", id))
		}
		c.logger.Error("catalog request failed", attrs...)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, op, id, method, target string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound && id != "":
		return &NotFoundError{ID: id}
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		if op == "create" || op == "update" {
			return &ValidationError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
		}
		return &TransportError{Op: op, Status: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &TransportError{Op: op, Status: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorMessage pulls a human readable reason out of an error body.
func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4<<10))
	if err != nil {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
