package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/manash/imgchat/pkg/models"
)

const (
	defaultBaseURL = "http://localhost:5000"
	defaultTimeout = 120 * time.Second

	// ErrorPrefix marks backend error codes reserved for caller-side
	// localization. Anything else is a human-readable message.
	ErrorPrefix = "error_"

	// CodeServerError stands in for any response whose body could not be
	// interpreted as structured data.
	CodeServerError = "error_server_error"
)

// API is the backend surface the orchestrator drives.
type API interface {
	ListSessions(ctx context.Context) ([]*models.Session, error)
	CreateSession(ctx context.Context) (*models.Session, error)
	FetchSession(ctx context.Context, id string) (*models.Transcript, error)
	DeleteSession(ctx context.Context, id string) error
	RenameSession(ctx context.Context, id, title string) error
	Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error)
}

// NetworkError is a transport-level failure: the request never produced a
// usable HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RemoteError is a non-success response from the backend. Code is either a
// reserved error-namespace token (see ErrorPrefix) or the backend's raw
// message text.
type RemoteError struct {
	Op         string
	StatusCode int
	Code       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: remote error (status %d): %s", e.Op, e.StatusCode, e.Code)
}

// Localizable reports whether Code belongs to the reserved error namespace
// and should be translated rather than shown verbatim.
func (e *RemoteError) Localizable() bool {
	return strings.HasPrefix(e.Code, ErrorPrefix)
}

type Config struct {
	BaseURL    string
	Token      string
	TimeoutSec int
	Verbose    bool
}

// Client is the HTTP implementation of API. It performs no caching and
// mutates no client state; every call is a single request/response exchange.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	verbose    bool
}

var _ API = (*Client)(nil)

func New(cfg *Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := defaultTimeout
	if cfg.TimeoutSec > 0 {
		timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}

	return &Client{
		baseURL: baseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		verbose: cfg.Verbose,
	}
}

type errorBody struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code,omitempty"`
}

func (c *Client) ListSessions(ctx context.Context) ([]*models.Session, error) {
	var sessions []*models.Session
	if err := c.do(ctx, http.MethodGet, "/api/sessions", nil, &sessions, "list sessions"); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *Client) CreateSession(ctx context.Context) (*models.Session, error) {
	sess := &models.Session{}
	if err := c.do(ctx, http.MethodPost, "/api/sessions", nil, sess, "create session"); err != nil {
		return nil, err
	}
	return sess, nil
}

func (c *Client) FetchSession(ctx context.Context, id string) (*models.Transcript, error) {
	transcript := &models.Transcript{}
	path := "/api/sessions/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, transcript, "fetch session"); err != nil {
		return nil, err
	}
	return transcript, nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	path := "/api/sessions/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, "delete session")
}

func (c *Client) RenameSession(ctx context.Context, id, title string) error {
	path := "/api/sessions/" + url.PathEscape(id) + "/title"
	body := map[string]string{"title": title}
	return c.do(ctx, http.MethodPut, path, body, nil, "rename session")
}

func (c *Client) Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	resp := &models.GenerateResponse{}
	if err := c.do(ctx, http.MethodPost, "/api/generate", req, resp, "generate"); err != nil {
		return nil, err
	}
	return resp, nil
}

// do runs one exchange against the backend. Bodies are only parsed when the
// response declares itself as JSON; an HTML error page from a proxy or a
// crashed worker becomes a RemoteError with a generic server-error code
// instead of a decode panic.
func (c *Client) do(ctx context.Context, method, path string, in, out any, op string) error {
	var reqBody io.Reader
	var logged []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
		logged = data
	}

	endpoint := c.baseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.New().String())
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logRequest(method, endpoint, httpReq.Header, logged)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	c.logResponse(resp.StatusCode, resp.Header, body)

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return &RemoteError{Op: op, StatusCode: resp.StatusCode, Code: CodeServerError}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var eb errorBody
		code := CodeServerError
		if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
			code = eb.Error
		}
		return &RemoteError{Op: op, StatusCode: resp.StatusCode, Code: code}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return &RemoteError{Op: op, StatusCode: resp.StatusCode, Code: CodeServerError}
		}
	}

	return nil
}

func (c *Client) logRequest(method, endpoint string, headers http.Header, body []byte) {
	if !c.verbose {
		return
	}

	fmt.Fprintln(os.Stderr, "--- REQUEST ---")
	fmt.Fprintf(os.Stderr, "%s %s\n", method, endpoint)
	fmt.Fprintln(os.Stderr, "Headers:")
	for key, values := range headers {
		for _, value := range values {
			if strings.ToLower(key) == "authorization" {
				value = "[REDACTED]"
			}
			fmt.Fprintf(os.Stderr, "  %s: %s\n", key, value)
		}
	}
	if len(body) > 0 {
		fmt.Fprintln(os.Stderr, "Body:")
		truncated := truncateDataURIsInJSON(body)
		var prettyJSON bytes.Buffer
		if err := json.Indent(&prettyJSON, truncated, "  ", "  "); err == nil {
			fmt.Fprintf(os.Stderr, "  %s\n", prettyJSON.String())
		} else {
			fmt.Fprintf(os.Stderr, "  %s\n", string(truncated))
		}
	}
	fmt.Fprintln(os.Stderr, "---------------")
}

func (c *Client) logResponse(statusCode int, headers http.Header, body []byte) {
	if !c.verbose {
		return
	}

	fmt.Fprintln(os.Stderr, "--- RESPONSE ---")
	fmt.Fprintf(os.Stderr, "Status: %d\n", statusCode)
	fmt.Fprintln(os.Stderr, "Headers:")
	for key, values := range headers {
		for _, value := range values {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", key, value)
		}
	}
	if len(body) > 0 {
		fmt.Fprintln(os.Stderr, "Body:")
		truncated := truncateDataURIsInJSON(body)
		var prettyJSON bytes.Buffer
		if err := json.Indent(&prettyJSON, truncated, "  ", "  "); err == nil {
			fmt.Fprintf(os.Stderr, "  %s\n", prettyJSON.String())
		} else {
			fmt.Fprintf(os.Stderr, "  %s\n", string(truncated))
		}
	}
	fmt.Fprintln(os.Stderr, "----------------")
}

// truncateDataURIsInJSON shortens embedded base64 payloads so verbose logs
// stay readable.
func truncateDataURIsInJSON(body []byte) []byte {
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return body
	}

	truncateDataURIFields(data)

	result, err := json.Marshal(data)
	if err != nil {
		return body
	}
	return result
}

func truncateDataURIFields(data map[string]interface{}) {
	for key, value := range data {
		switch v := value.(type) {
		case string:
			if strings.HasPrefix(v, "data:") && len(v) > 100 {
				data[key] = v[:100] + "... [truncated]"
			}
		case map[string]interface{}:
			truncateDataURIFields(v)
		case []interface{}:
			for i, item := range v {
				switch it := item.(type) {
				case string:
					if strings.HasPrefix(it, "data:") && len(it) > 100 {
						v[i] = it[:100] + "... [truncated]"
					}
				case map[string]interface{}:
					truncateDataURIFields(it)
				}
			}
		}
	}
}
