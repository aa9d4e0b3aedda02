// Package generate calls a locally hosted Ollama generation endpoint.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/jsonapi"
)

// Generator sends a rendered prompt to a model and returns the raw reply text.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, forceJSON bool) (string, error)
}

const (
	DefaultURL     = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 60 * time.Second
)

// Options are the sampling options sent with every request.
type Options struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// DeterministicOptions pin sampling so that the same prompt gives the same answer.
var DeterministicOptions = Options{
	Temperature: 0,
	TopP:        0.95,
}

type Request struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Format  string   `json:"format,omitempty"`
	Options *Options `json:"options,omitempty"`
}

type Reply struct {
	Response string `json:"response"`
	// Done is always true when streaming is disabled.
	Done bool `json:"done"`
}

func NewRequest(model, prompt string, forceJSON bool) Request {
	opts := DeterministicOptions
	r := Request{
		Model:   model,
		Prompt:  prompt,
		Stream:  false,
		Options: &opts,
	}
	if forceJSON {
		r.Format = "json"
	}
	return r
}

func New(baseURL string) Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		Timeout: DefaultTimeout,
	}
}

// Client makes a single attempt per call. Wrap it with Retry to retry
// connection failures.
type Client struct {
	baseURL string
	// Timeout bounds each call. Zero disables the timeout.
	Timeout time.Duration
}

func (c Client) Generate(ctx context.Context, model, prompt string, forceJSON bool) (text string, err error) {
	reply, err := c.Do(ctx, NewRequest(model, prompt, forceJSON))
	if err != nil {
		return "", err
	}
	return reply.Response, nil
}

// Do sends req to the generate endpoint.
func (c Client) Do(ctx context.Context, req Request) (reply Reply, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("api", "generate").String()
	if err != nil {
		return reply, fmt.Errorf("invalid generation backend URL: %w", err)
	}
	buf, err := json.Marshal(req)
	if err != nil {
		return reply, fmt.Errorf("failed to marshal request: %w", err)
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return reply, fmt.Errorf("failed to create request: %w", err)
	}
	res, err := jsonapi.Raw(httpReq, jsonapi.WithRequestHeader("Content-Type", "application/json"))
	if err != nil {
		return reply, c.transportError(ctx, url, err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return reply, TimeoutError{After: c.Timeout}
		}
		return reply, MalformedResponseError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return reply, StatusError{
			Status: res.StatusCode,
			Body:   string(body),
		}
	}
	if err = json.Unmarshal(body, &reply); err != nil {
		return reply, MalformedResponseError{Err: err}
	}
	return reply, nil
}

func (c Client) transportError(ctx context.Context, url string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return TimeoutError{After: c.Timeout}
	}
	return UnreachableError{URL: url, Err: err}
}

type UnreachableError struct {
	URL string
	Err error
}

func (e UnreachableError) Error() string {
	return fmt.Sprintf("cannot reach generation backend at %s: %v", e.URL, e.Err)
}

func (e UnreachableError) Unwrap() error {
	return e.Err
}

// StatusError is returned when the backend responds with a non-2xx status.
type StatusError struct {
	Status int
	Body   string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("generation backend error %d: %s", e.Status, e.Body)
}

// MalformedResponseError is returned when the backend's response body is not
// a valid reply. Replies whose text is not JSON are not errors.
type MalformedResponseError struct {
	Err error
}

func (e MalformedResponseError) Error() string {
	return fmt.Sprintf("invalid generation backend response: %v", e.Err)
}

func (e MalformedResponseError) Unwrap() error {
	return e.Err
}

type TimeoutError struct {
	After time.Duration
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("generation backend did not respond within %v", e.After)
}
