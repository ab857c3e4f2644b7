// Package restytransport adapts a [resty.Client] to [client.Transport].
//
//	t, err := restytransport.New(restytransport.WithTimeout(10 * time.Second))
//	res := client.Get(ctx, t, "https://api.github.com/users")
//
// Resty reports non-2xx responses as plain responses, so the adapter applies
// the call's status check and builds the [client.ServerError] itself. Resty's
// own retries are left disabled.
package restytransport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/adamwoolhether/normhttp/client"
)

// Transport is a resty backed [client.Transport].
type Transport struct {
	rc     *resty.Client
	logger *slog.Logger
}

// Option is a functional option for configuring a [Transport] via [New].
type Option func(*options) error
type options struct {
	resty      *resty.Client
	httpClient *http.Client
	timeout    *time.Duration
	userAgent  string
	logger     *slog.Logger
}

// WithResty uses a preconfigured resty client.
func WithResty(rc *resty.Client) Option {
	return func(o *options) error {
		if rc == nil {
			return errors.New("resty client must not be nil")
		}
		o.resty = rc
		return nil
	}
}

// WithHTTPClient builds the resty client on top of hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) error {
		if hc == nil {
			return errors.New("http client must not be nil")
		}
		o.httpClient = hc
		return nil
	}
}

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		o.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(o *options) error {
		o.userAgent = header
		return nil
	}
}

// WithLogger routes both the transport's and resty's logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// New builds a [Transport].
func New(optFns ...Option) (*Transport, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying resty transport option: %w", err)
		}
	}

	t := &Transport{logger: slog.Default()}
	if opts.logger != nil {
		t.logger = opts.logger
	}

	switch {
	case opts.resty != nil:
		t.rc = opts.resty
	case opts.httpClient != nil:
		t.rc = resty.NewWithClient(opts.httpClient)
	default:
		t.rc = resty.New()
	}

	t.rc.SetLogger(slogAdapter{t.logger})

	if opts.timeout != nil {
		t.rc.SetTimeout(*opts.timeout)
	}
	if opts.userAgent != "" {
		t.rc.SetHeader("User-Agent", opts.userAgent)
	}

	return t, nil
}

// Logger returns the logger the transport was built with.
func (t *Transport) Logger() *slog.Logger {
	if t == nil {
		return nil
	}

	return t.logger
}

// Send executes the call through resty.
func (t *Transport) Send(ctx context.Context, call *client.Call) (*client.Response, error) {
	if call.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, call.Timeout)
		defer cancel()
	}

	reqURL, err := client.ResolveURL(call.URL, call.Params)
	if err != nil {
		return nil, &client.RequestBuildError{Err: err}
	}

	r := t.rc.R().SetContext(ctx)
	if len(call.Header) > 0 {
		r.SetHeaderMultiValues(call.Header)
	}
	if len(call.Cookies) > 0 {
		r.SetCookies(call.Cookies)
	}

	switch {
	case call.Form != nil:
		setMultipart(r, call.Form)
	case call.Payload != nil:
		r.SetBody(call.Payload)
		if call.ContentType != "" {
			r.SetHeader("Content-Type", call.ContentType)
		}
	}

	resp, err := r.Execute(call.Method, reqURL)
	if err != nil {
		// Resty only hands back a response once the request was built.
		if resp == nil || resp.Request == nil || resp.Request.RawRequest == nil {
			return nil, &client.RequestBuildError{Err: fmt.Errorf("resty execute: %w", err)}
		}

		return nil, &client.NetworkError{
			Code:    client.NetworkCode(err),
			Request: resp.Request.RawRequest,
			Err:     fmt.Errorf("resty execute: %w", err),
		}
	}

	out := &client.Response{
		Status:     resp.StatusCode(),
		StatusText: client.StatusText(resp.Status(), resp.StatusCode()),
		Header:     resp.Header(),
		Body:       resp.Body(),
		Method:     call.Method,
		URL:        reqURL,
		Request:    resp.Request.RawRequest,
	}
	if out.Request != nil {
		out.URL = out.Request.URL.String()
	}

	if !call.Accepts(out.Status) {
		return nil, client.NewServerError(out, client.ProblemMessage(out.Header.Get("Content-Type"), out.Body))
	}

	return out, nil
}

// setMultipart hands the form to resty's multipart API, which is the only
// way resty emits a multipart body.
func setMultipart(r *resty.Request, form *client.MultipartForm) {
	if len(form.Fields) > 0 {
		r.SetMultipartFormData(form.Fields)
	}

	for _, f := range form.Files {
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		r.SetMultipartField(f.FieldName, f.FileName, contentType, f.Content())
	}
}

// slogAdapter satisfies resty.Logger.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Errorf(format string, v ...any) {
	a.logger.Error(fmt.Sprintf(format, v...), "component", "resty")
}

func (a slogAdapter) Warnf(format string, v ...any) {
	a.logger.Warn(fmt.Sprintf(format, v...), "component", "resty")
}

func (a slogAdapter) Debugf(format string, v ...any) {
	a.logger.Debug(fmt.Sprintf(format, v...), "component", "resty")
}
