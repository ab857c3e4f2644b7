package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Execute sends call through t and normalizes the outcome. It never
// returns nil and never panics; every failure, including a panicking
// transport, ends up as a Result with OK unset.
//
// Successful GET results get Links parsed from the Link response header.
func Execute(ctx context.Context, t Transport, call *Call) (res *Result) {
	if call == nil {
		return Classify(&RequestBuildError{Err: errors.New("call must not be nil")})
	}

	logger := loggerOf(t)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("transport panicked", "method", call.Method, "url", call.URL, "panic", rec)
			res = Classify(fmt.Errorf("transport panic: %v", rec))
		}
	}()

	if t == nil {
		return Classify(&RequestBuildError{Err: errors.New("transport must not be nil")})
	}

	resp, err := t.Send(ctx, call)
	if err != nil {
		return Classify(err)
	}

	res = &Result{
		OK:         true,
		Status:     resp.Status,
		StatusText: resp.StatusText,
		Data:       decodeData(resp.Body, call.UseNumber),
		Header:     resp.Header,
		Body:       resp.Body,
		Method:     resp.Method,
		URL:        resp.URL,
		Request:    resp.Request,
	}

	if call.Method == http.MethodGet {
		links, err := ParseLinks(linkHeader(resp.Header))
		if err != nil {
			logger.Warn("skipping malformed link header segments", "url", resp.URL, "error", err)
		}
		res.Links = &links
	}

	return res
}

// Get fetches url. The result carries Links on success.
func Get(ctx context.Context, t Transport, url string, opts ...RequestOption) *Result {
	return do(ctx, t, http.MethodGet, url, nil, nil, opts)
}

// Post sends data to url.
func Post(ctx context.Context, t Transport, url string, data any, opts ...RequestOption) *Result {
	return do(ctx, t, http.MethodPost, url, data, nil, opts)
}

// Put sends data to url.
func Put(ctx context.Context, t Transport, url string, data any, opts ...RequestOption) *Result {
	return do(ctx, t, http.MethodPut, url, data, nil, opts)
}

// Delete deletes the resource at url.
func Delete(ctx context.Context, t Transport, url string, opts ...RequestOption) *Result {
	return do(ctx, t, http.MethodDelete, url, nil, nil, opts)
}

// PostMultipart posts form to url as multipart/form-data.
func PostMultipart(ctx context.Context, t Transport, url string, form *MultipartForm, opts ...RequestOption) *Result {
	if form == nil {
		form = &MultipartForm{}
	}

	return do(ctx, t, http.MethodPost, url, nil, form, opts)
}

// URI resolves url with the query params carried by opts, without
// sending anything.
func URI(url string, opts ...RequestOption) (string, error) {
	call, err := NewCall(http.MethodGet, url, nil, opts...)
	if err != nil {
		return "", err
	}

	return ResolveURL(call.URL, call.Params)
}

// NewCall applies opts to a fresh Call.
func NewCall(method, url string, payload any, opts ...RequestOption) (*Call, error) {
	call := &Call{
		Method:  method,
		URL:     url,
		Payload: payload,
		Header:  make(http.Header),
	}

	for _, opt := range opts {
		if err := opt(call); err != nil {
			return nil, err
		}
	}

	return call, nil
}

func do(ctx context.Context, t Transport, method, url string, payload any, form *MultipartForm, opts []RequestOption) *Result {
	call, err := NewCall(method, url, payload, opts...)
	if err != nil {
		return Classify(&RequestBuildError{Err: fmt.Errorf("applying request option: %w", err)})
	}
	call.Form = form

	return Execute(ctx, t, call)
}

// loggerOf returns the transport's logger when it exposes one.
func loggerOf(t Transport) *slog.Logger {
	if l, ok := t.(interface{ Logger() *slog.Logger }); ok {
		if logger := l.Logger(); logger != nil {
			return logger
		}
	}

	return slog.Default()
}
