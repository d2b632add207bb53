package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harrylevesque/chirp/internal/session"
)

// Header names sent with every call.
const (
	HeaderAPIKey    = "api-key"
	HeaderRequestID = "X-Request-Id"
)

// Call describes one backend request.
type Call struct {
	Method string
	// Path is relative to the dispatcher's base URL and may carry a query.
	Path string
	// Body is sent as JSON unless it is an io.Reader, which is sent as is
	// with ContentType.
	Body        any
	ContentType string
}

// Response is the backend's reply, unmodified.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Dispatcher is the single path every backend call goes through. It keeps
// the session's loading status and attaches the API key.
type Dispatcher struct {
	baseURL string
	client  *http.Client
	state   *session.State
	log     zerolog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) { d.client = c }
}

// WithLogger sets the call logger.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// NewDispatcher returns a dispatcher for baseURL ("/" style origins are
// fine: paths are joined, not resolved).
func NewDispatcher(baseURL string, state *session.State, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		baseURL: baseURL,
		client:  http.DefaultClient,
		state:   state,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the session the dispatcher reports to.
func (d *Dispatcher) State() *session.State {
	return d.state
}

// Do issues exactly one HTTP request. The loading status is held for the
// whole call and released before Do returns, on every path.
func (d *Dispatcher) Do(ctx context.Context, call Call) (*Response, error) {
	d.state.BeginRequest()
	defer d.state.EndRequest()

	method := strings.ToUpper(call.Method)
	reqID := uuid.NewString()
	start := time.Now()
	logger := d.log.With().Str("method", method).Str("path", call.Path).Str("request_id", reqID).Logger()

	req, err := d.newRequest(ctx, method, call)
	if err != nil {
		return nil, &RequestError{Method: method, Path: call.Path, Message: err.Error(), Err: err}
	}
	req.Header.Set(HeaderRequestID, reqID)

	resp, err := d.client.Do(req)
	if err != nil {
		logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("request failed")
		return nil, &RequestError{Method: method, Path: call.Path, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn().Err(err).Int("status", resp.StatusCode).Msg("reading response failed")
		return nil, &RequestError{Method: method, Path: call.Path, Status: resp.StatusCode, Message: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rerr := &RequestError{
			Method:  method,
			Path:    call.Path,
			Status:  resp.StatusCode,
			Body:    body,
			Message: fmt.Sprintf("request failed with status code %d", resp.StatusCode),
		}
		if env, ok := parseEnvelope(body); ok {
			rerr.ErrorType = env.ErrorType
			rerr.ErrorMessage = env.ErrorMessage
		}
		logger.Warn().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("request rejected")
		return nil, rerr
	}

	logger.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("request done")
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (d *Dispatcher) newRequest(ctx context.Context, method string, call Call) (*http.Request, error) {
	var (
		body        io.Reader
		contentType = call.ContentType
	)
	switch b := call.Body.(type) {
	case nil:
	case io.Reader:
		body = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(data)
		if contentType == "" {
			contentType = "application/json"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, joinURL(d.baseURL, call.Path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if key := d.state.APIKey(); key != "" {
		req.Header.Set(HeaderAPIKey, key)
	}
	return req, nil
}

// joinURL combines base and a relative path the way axios does.
func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
