// Package remote talks to the external NCMR record service: an opaque HTTP
// JSON endpoint protected by Basic auth. GET lists, POST creates, PUT changes a
// status. There is no delete endpoint.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ncmr/internal/ncmr/models"
	"ncmr/pkg/requestcontext"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
	maxErrorBody   = 512
	tracerName     = "ncmr/internal/ncmr/remote"
)

// Config holds the connection parameters of the record service.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// Client implements the controller's RecordService over HTTP.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
}

type Option func(c *Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the default client. Its timeout is left untouched.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient validates cfg. Missing base URL or username is a configuration
// error, reported before any request is attempted.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, &Error{Kind: KindConfig, Op: "configure", Err: ErrMissingBaseURL}
	}
	if cfg.Username == "" {
		return nil, &Error{Kind: KindConfig, Op: "configure", Err: ErrMissingCredentials}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL:    cfg.BaseURL,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.New(slog.DiscardHandler),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches every record. Accepts {"data": [...]} or a bare array.
func (c *Client) List(ctx context.Context) (_ []models.Record, err error) {
	ctx, span := c.tracer.Start(ctx, "ncmr.remote.list")
	defer func() { endSpan(span, err) }()

	body, err := c.do(ctx, "list", http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	elems, err := decodeList(body)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Op: "list", Err: err}
	}
	now := requestcontext.Now(ctx)
	records := make([]models.Record, 0, len(elems))
	for i, elem := range elems {
		raw, err := decodeRecord(elem)
		if errors.Is(err, errNotObject) {
			c.logger.WarnContext(ctx, "skipping unreadable record from record service",
				"request_id", requestcontext.RequestID(ctx),
				"index", i,
			)
			continue
		}
		if err != nil {
			c.logger.WarnContext(ctx, "record service sent unreadable fields, using defaults",
				"request_id", requestcontext.RequestID(ctx),
				"index", i,
				"id", raw.ID.value,
				"error", err,
			)
		}
		records = append(records, toRecord(raw, now))
	}
	span.SetAttributes(attribute.Int("ncmr.count", len(records)))
	return records, nil
}

// Create posts a draft. A response without a usable record yields (nil, nil).
func (c *Client) Create(ctx context.Context, draft models.Draft) (_ *models.Record, err error) {
	ctx, span := c.tracer.Start(ctx, "ncmr.remote.create")
	defer func() { endSpan(span, err) }()

	body, err := c.do(ctx, "create", http.MethodPost, newCreatePayload(draft))
	if err != nil {
		return nil, err
	}
	raw, ok := decodeOne(body)
	if !ok {
		c.logger.WarnContext(ctx, "record service returned no record on create",
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, nil
	}
	record := toRecord(raw, requestcontext.Now(ctx))
	return &record, nil
}

// UpdateStatus sends {id, status}. Any 2xx is success; the body is ignored.
func (c *Client) UpdateStatus(ctx context.Context, id string, status models.Status) (err error) {
	ctx, span := c.tracer.Start(ctx, "ncmr.remote.update_status",
		trace.WithAttributes(attribute.String("ncmr.id", id), attribute.String("ncmr.status", string(status))))
	defer func() { endSpan(span, err) }()

	_, err = c.do(ctx, "update status", http.MethodPut, statusPayload{ID: wireID(id), Status: status})
	return err
}

func (c *Client) do(ctx context.Context, op, method string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL, reqBody)
	if err != nil {
		return nil, &Error{Kind: KindConfig, Op: op, Err: err}
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	c.logger.DebugContext(ctx, "record service call",
		"request_id", requestcontext.RequestID(ctx),
		"op", op,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind:       KindService,
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       truncate(strings.TrimSpace(string(body)), maxErrorBody),
		}
	}
	return body, nil
}

type listEnvelope struct {
	Data []json.RawMessage `json:"data"`
}

// decodeList splits the body into its elements without interpreting them, so
// one bad record cannot fail the whole list.
func decodeList(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty response body")
	}
	if trimmed[0] == '[' {
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, err
		}
		return elems, nil
	}
	var env listEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

type oneEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// decodeOne extracts the created record from {"data": {...}} or
// {"data": [{...}]}. Anything without an id is not usable.
func decodeOne(body []byte) (rawRecord, bool) {
	var env oneEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return rawRecord{}, false
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return rawRecord{}, false
	}
	if data[0] == '[' {
		var elems []json.RawMessage
		if err := json.Unmarshal(data, &elems); err != nil || len(elems) == 0 {
			return rawRecord{}, false
		}
		data = elems[0]
	}
	raw, err := decodeRecord(data)
	if errors.Is(err, errNotObject) || raw.ID.value == "" {
		return rawRecord{}, false
	}
	return raw, true
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + "..."
}
