package reclaim

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"

	"github.com/teemow/reclaim/internal/instrumentation"
	"github.com/teemow/reclaim/internal/logging"
)

const (
	// DefaultBaseURL is the public Reclaim API root.
	DefaultBaseURL = "https://api.app.reclaim.ai/api"
	// DefaultTimeout bounds every request unless configured otherwise.
	DefaultTimeout = 15 * time.Second
	// MinTimeout is the smallest accepted request timeout.
	MinTimeout = time.Second
)

// API is the capability surface consumed by the CLI, the dashboard and
// the MCP server. Every call issues exactly one request.
type API interface {
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
	GetTask(ctx context.Context, taskID uint64) (*Task, error)
	CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error)
	ListEvents(ctx context.Context, query EventListQuery) ([]json.RawMessage, error)
	GetEvent(ctx context.Context, calendarID uint64, eventID string, opts EventOptions) (json.RawMessage, error)
	ApplyScheduleActions(ctx context.Context, request any) (json.RawMessage, error)
	PutTask(ctx context.Context, taskID uint64, payload map[string]any, notificationKey string) (*Task, error)
	PatchTask(ctx context.Context, taskID uint64, payload map[string]any, notificationKey string) (*Task, error)
	DeleteTask(ctx context.Context, taskID uint64, notificationKey string) (json.RawMessage, error)
}

// Config holds the constructor parameters of a Client.
type Config struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	UserAgent string

	// Transport is the innermost round tripper. Defaults to http.DefaultTransport.
	Transport http.RoundTripper

	Logger  logging.Logger
	Metrics *instrumentation.Metrics
}

// Client talks to the Reclaim REST API. It owns one authenticated HTTP
// client bound to a single credential, base URL and timeout.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	userAgent  string
	logger     logging.Logger
	metrics    *instrumentation.Metrics
}

var _ API = (*Client)(nil)

// NewClient validates the configuration and builds a Client. A blank API key
// or a malformed base URL fails here, before any request is made.
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, NewMissingAPIKeyError()
	}

	baseURL, err := NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout < MinTimeout {
		timeout = MinTimeout
	}

	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "reclaim-cli/dev"
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &oauth2.Transport{
				Source: source,
				Base:   otelhttp.NewTransport(base),
			},
		},
		baseURL:   baseURL,
		userAgent: userAgent,
		logger:    logger,
		metrics:   cfg.Metrics,
	}, nil
}

// NormalizeBaseURL parses raw and guarantees a trailing slash on its path
// so relative joins stay under the configured prefix.
func NormalizeBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, NewInvalidBaseURLError(raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, NewInvalidBaseURLError(raw, fmt.Errorf("missing scheme or host"))
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/") + "/"
		u.RawPath = ""
	}
	return u, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListTasks fetches all tasks and applies filter.
func (c *Client) ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error) {
	ex, err := c.send(ctx, instrumentation.OperationListTasks, http.MethodGet, "tasks", nil, nil)
	if err != nil {
		return nil, err
	}
	tasks, err := decodeJSON[[]Task](ex)
	if err != nil {
		return nil, err
	}
	return FilterTasks(tasks, filter), nil
}

// GetTask fetches one task.
func (c *Client) GetTask(ctx context.Context, taskID uint64) (*Task, error) {
	ex, err := c.send(ctx, instrumentation.OperationGetTask, http.MethodGet, taskPath(taskID), nil, nil)
	if err != nil {
		return nil, err
	}
	task, err := decodeJSON[Task](ex)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	ex, err := c.send(ctx, instrumentation.OperationCreateTask, http.MethodPost, "tasks", nil, req)
	if err != nil {
		return nil, err
	}
	task, err := decodeJSON[Task](ex)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListEvents fetches events matching query.
func (c *Client) ListEvents(ctx context.Context, query EventListQuery) ([]json.RawMessage, error) {
	ex, err := c.send(ctx, instrumentation.OperationListEvents, http.MethodGet, "events", query.Values(), nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[[]json.RawMessage](ex)
}

// GetEvent fetches one event.
func (c *Client) GetEvent(ctx context.Context, calendarID uint64, eventID string, opts EventOptions) (json.RawMessage, error) {
	path := fmt.Sprintf("events/%d/%s", calendarID, url.PathEscape(eventID))
	ex, err := c.send(ctx, instrumentation.OperationGetEvent, http.MethodGet, path, opts.Values(), nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[json.RawMessage](ex)
}

// ApplyScheduleActions submits an {"actionsTaken": [...]} envelope.
func (c *Client) ApplyScheduleActions(ctx context.Context, request any) (json.RawMessage, error) {
	ex, err := c.send(ctx, instrumentation.OperationApplyActions, http.MethodPost, "schedule-actions/apply-actions", nil, request)
	if err != nil {
		return nil, err
	}
	return decodeJSON[json.RawMessage](ex)
}

// PutTask replaces a task.
func (c *Client) PutTask(ctx context.Context, taskID uint64, payload map[string]any, notificationKey string) (*Task, error) {
	ex, err := c.send(ctx, instrumentation.OperationPutTask, http.MethodPut, taskPath(taskID), notificationQuery(notificationKey), payload)
	if err != nil {
		return nil, err
	}
	task, err := decodeJSON[Task](ex)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// PatchTask partially updates a task.
func (c *Client) PatchTask(ctx context.Context, taskID uint64, payload map[string]any, notificationKey string) (*Task, error) {
	ex, err := c.send(ctx, instrumentation.OperationPatchTask, http.MethodPatch, taskPath(taskID), notificationQuery(notificationKey), payload)
	if err != nil {
		return nil, err
	}
	task, err := decodeJSON[Task](ex)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask deletes a task. An empty success body yields a nil result.
func (c *Client) DeleteTask(ctx context.Context, taskID uint64, notificationKey string) (json.RawMessage, error) {
	ex, err := c.send(ctx, instrumentation.OperationDeleteTask, http.MethodDelete, taskPath(taskID), notificationQuery(notificationKey), nil)
	if err != nil {
		return nil, err
	}
	return decodeValueOrNull(ex)
}

func taskPath(taskID uint64) string {
	return fmt.Sprintf("tasks/%d", taskID)
}

// notificationQuery returns the notificationKey parameter, or nil when key is blank.
func notificationQuery(key string) url.Values {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	return url.Values{"notificationKey": []string{key}}
}

// buildRequest resolves path against the base URL and captures the snapshot.
func (c *Client) buildRequest(ctx context.Context, method, path string, query url.Values, payload any) (*http.Request, RequestSnapshot, error) {
	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, RequestSnapshot{}, NewInvalidInputError(fmt.Sprintf("Invalid request path %q: %v", path, err), "")
	}
	target := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var body []byte
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, RequestSnapshot{}, NewOutputError(fmt.Sprintf("Could not encode request payload: %v", err), err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, RequestSnapshot{}, NewTransportError(
			fmt.Sprintf("Could not build request: %v", err),
			"Check your runtime environment and try again.",
			err,
		)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	snapshot := RequestSnapshot{
		Method: method,
		URL:    target.String(),
		Body:   strings.TrimSpace(string(body)),
	}
	return req, snapshot, nil
}

// send performs one round trip and reads the full body. Only transport-level
// failures are returned as errors; HTTP status interpretation is left to the
// decode helpers.
func (c *Client) send(ctx context.Context, operation, method, path string, query url.Values, payload any) (*exchange, error) {
	ctx, span := instrumentation.StartAPISpan(ctx, operation, method)
	defer span.End()

	start := time.Now()
	ex, err := c.roundTrip(ctx, method, path, query, payload)
	duration := time.Since(start)

	statusCode := 0
	if ex != nil {
		statusCode = ex.status
		span.SetAttributes(attribute.Int(instrumentation.SpanAttrHTTPStatus, ex.status))
	}

	status := instrumentation.StatusSuccess
	switch {
	case err != nil:
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	case !ex.success():
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, fmt.Errorf("HTTP %d", ex.status))
	default:
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordAPIRequest(ctx, operation, method, statusCode, status, duration)

	if c.logger.DebugEnabled() {
		c.logRequest(operation, method, duration, ex, err)
	}
	return ex, err
}

func (c *Client) logRequest(operation, method string, duration time.Duration, ex *exchange, err error) {
	logArgs := []any{
		logging.Operation(operation),
		logging.KeyMethod, method,
		logging.KeyDuration, duration,
	}
	if ex != nil {
		logArgs = append(logArgs, logging.KeyURL, ex.request.URL, logging.KeyHTTPStatus, ex.status)
		if id := ExtractRequestID(ex.header); id != "" {
			logArgs = append(logArgs, logging.KeyRequestID, id)
		}
	}
	logArgs = append(logArgs, logging.Err(err))
	c.logger.Debug("reclaim api request", logArgs...)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, payload any) (*exchange, error) {
	req, snapshot, err := c.buildRequest(ctx, method, path, query, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, snapshot)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(
			fmt.Sprintf("Could not read Reclaim API response body: %v\n%s", err, snapshot.context()),
			"Retry the command. If this repeats, capture the output and file a bug.",
			err,
		)
	}

	responseURL := snapshot.URL
	if resp.Request != nil && resp.Request.URL != nil {
		responseURL = resp.Request.URL.String()
	}

	return &exchange{
		request:     snapshot,
		status:      resp.StatusCode,
		responseURL: responseURL,
		header:      resp.Header,
		body:        string(raw),
	}, nil
}

// classifyTransportError maps a failed Do into timeout, connect or generic.
func classifyTransportError(err error, snapshot RequestSnapshot) *Error {
	reqContext := snapshot.context()

	if isTimeout(err) {
		return NewTransportError(
			fmt.Sprintf("Request to Reclaim timed out before receiving a response. Source error: %v\n%s", err, reqContext),
			"Try again or raise --timeout-secs.",
			err,
		)
	}

	if isConnect(err) {
		return NewTransportError(
			fmt.Sprintf("Could not connect to the Reclaim API. Source error: %v\n%s", err, reqContext),
			"Check network access and confirm --base-url is correct.",
			err,
		)
	}

	return NewTransportError(
		fmt.Sprintf("Request failed before receiving a usable API response. Source error: %v\n%s", err, reqContext),
		"Retry. If this keeps happening, verify your network and API key.",
		err,
	)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnect(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
