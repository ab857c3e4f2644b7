package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/adamwoolhether/normhttp/client/throttle"
)

// Transport sends a single call. The returned error is always a [Failure].
type Transport interface {
	Send(ctx context.Context, call *Call) (*Response, error)
}

// Client is the [net/http] backed [Transport].
// It sets a default *http.Client and *http.Transport, which
// can be customized via optional funcs.
type Client struct {
	c      *http.Client
	logger *slog.Logger
}

// Build creates a [Client] from the given options.
func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		c:      &http.Client{},
		logger: slog.Default(),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.client != nil {
		client.c = opts.client
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.requestIDHeader != "" {
		transport = requestID{header: opts.requestIDHeader, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(*opts.throttle, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	if opts.tracer != nil {
		transport = tracing{tracer: opts.tracer, base: transport}
	}
	client.c.Transport = transport

	return client, nil
}

// Logger returns the logger the client was built with.
func (c *Client) Logger() *slog.Logger {
	if c == nil {
		return nil
	}

	return c.logger
}

// Send fires the call and reads the whole response body. Statuses the call
// doesn't accept are reported as a *ServerError carrying the response.
func (c *Client) Send(ctx context.Context, call *Call) (*Response, error) {
	if call.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, call.Timeout)
		defer cancel()
	}

	req, err := NewRequest(ctx, call)
	if err != nil {
		return nil, &RequestBuildError{Err: err}
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, &NetworkError{Code: NetworkCode(err), Request: req, Err: fmt.Errorf("exec http do: %w", err)}
	}

	defer func() {
		if _, err = io.Copy(io.Discard, resp.Body); err != nil {
			c.logger.Error("failed to discard unused body", "error", err)
		}
		if err = resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		code := NetworkCode(err)
		if code == CodeNetwork {
			code = CodeBadResponse
		}
		return nil, &NetworkError{Code: code, Request: req, Err: fmt.Errorf("reading body: %w", err)}
	}

	out := &Response{
		Status:     resp.StatusCode,
		StatusText: StatusText(resp.Status, resp.StatusCode),
		Header:     resp.Header,
		Body:       body,
		Method:     req.Method,
		URL:        req.URL.String(),
		Request:    req,
	}

	if !call.Accepts(resp.StatusCode) {
		return nil, NewServerError(out, ProblemMessage(resp.Header.Get("Content-Type"), body))
	}

	return out, nil
}

// NewRequest instantiates an *http.Request for the call.
// Content-Type defaults to `application/json` for encoded payloads unless
// the call sets one.
func NewRequest(ctx context.Context, call *Call) (*http.Request, error) {
	reqURL, err := ResolveURL(call.URL, call.Params)
	if err != nil {
		return nil, err
	}

	var (
		body        io.Reader
		contentType string
	)
	if call.Form != nil {
		body, contentType, err = call.Form.encode()
		if err != nil {
			return nil, fmt.Errorf("encoding multipart form: %w", err)
		}
	} else {
		body, contentType, err = encodePayload(call.Payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request payload: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	for _, cookie := range call.Cookies {
		req.AddCookie(cookie)
	}

	for k, v := range call.Header {
		for _, element := range v {
			req.Header.Add(k, element)
		}
	}

	if call.ContentType != "" && call.Form == nil {
		contentType = call.ContentType
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}

// ResolveURL merges params into the query of rawURL. rawURL is returned
// unchanged when there are no params.
func ResolveURL(rawURL string, params map[string]string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}

	if len(params) == 0 {
		return rawURL, nil
	}

	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// StatusText extracts the reason phrase from an http.Response status line
// such as "404 Not Found".
func StatusText(status string, code int) string {
	text := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
	if text == status {
		return strings.TrimSpace(status)
	}

	return text
}

// ProblemMessage returns the detail, or else the title, of an RFC 7807
// problem document. It's empty for any other content type.
func ProblemMessage(contentType string, body []byte) string {
	if !strings.HasPrefix(strings.ToLower(contentType), "application/problem+json") {
		return ""
	}

	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &problem); err != nil {
		return ""
	}

	if problem.Detail != "" {
		return problem.Detail
	}

	return problem.Title
}

func encodePayload(payload any) (io.Reader, string, error) {
	switch v := payload.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain; charset=utf-8", nil
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, "", err
	}

	return &buf, "application/json", nil
}
