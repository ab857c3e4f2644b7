package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnexpectedStatusCode is the sentinel error wrapped by [ServerError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
	// ErrMalformedLink is the sentinel error wrapped by [ParseError].
	ErrMalformedLink = errors.New("malformed link header segment")
)

// Failure is the closed set of errors a [Transport] reports from Send.
// Exactly one of [ServerError], [NetworkError] or [RequestBuildError].
type Failure interface {
	error
	failure()
}

// ServerError is returned when the remote endpoint answered with a status
// the call did not accept.
type ServerError struct {
	Response *Response
	// Message is a response-level message supplied by the transport,
	// e.g. the detail of an RFC 7807 problem document.
	Message string
	Err     error
}

func (e *ServerError) Error() string {
	if e.Response == nil {
		return fmt.Sprint(e.Err)
	}

	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.Response.Status, e.Response.Body)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

func (*ServerError) failure() {}

// NewServerError builds a [ServerError] for resp, joining [ErrAuthFailure]
// for 401 and 403 responses.
func NewServerError(resp *Response, message string) *ServerError {
	err := ErrUnexpectedStatusCode
	if resp.Status == http.StatusUnauthorized || resp.Status == http.StatusForbidden {
		err = errors.Join(ErrUnexpectedStatusCode, ErrAuthFailure)
	}

	return &ServerError{
		Response: resp,
		Message:  message,
		Err:      err,
	}
}

// NetworkError is returned when a request was built and handed to the
// network but no response arrived.
type NetworkError struct {
	// Code is a transport error code such as ENOTFOUND, see [NetworkCode].
	Code    string
	Request *http.Request
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error[%s]: %v", e.Code, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (*NetworkError) failure() {}

// RequestBuildError is returned when the failure happened before any
// request left the process.
type RequestBuildError struct {
	Err error
}

func (e *RequestBuildError) Error() string {
	return fmt.Sprintf("building request: %v", e.Err)
}

func (e *RequestBuildError) Unwrap() error {
	return e.Err
}

func (*RequestBuildError) failure() {}

// ParseError reports a Link header segment that could not be parsed.
type ParseError struct {
	Index   int
	Segment string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: segment[%d] %q", ErrMalformedLink, e.Index, e.Segment)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformedLink
}
