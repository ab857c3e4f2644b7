package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Call describes a single outbound request handed to a [Transport].
type Call struct {
	Method  string
	URL     string
	Params  map[string]string
	Header  http.Header
	Cookies []*http.Cookie

	// Payload is sent as the request body. An io.Reader, []byte or string
	// is sent as is, anything else is JSON encoded.
	Payload     any
	ContentType string

	// Form is set by PostMultipart. Transports encode it natively,
	// Payload is ignored when it is set.
	Form *MultipartForm

	// Timeout bounds the whole exchange when greater than zero.
	Timeout time.Duration

	// ValidateStatus reports whether a status code counts as success.
	// Nil accepts 2xx only.
	ValidateStatus func(status int) bool

	// UseNumber decodes JSON numbers in Result.Data as json.Number.
	UseNumber bool
}

// Accepts reports whether status counts as success for the call.
func (c *Call) Accepts(status int) bool {
	if c.ValidateStatus != nil {
		return c.ValidateStatus(status)
	}

	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// Response is a received HTTP response, fully read.
type Response struct {
	Status     int
	StatusText string
	Header     http.Header
	Body       []byte
	Method     string
	URL        string
	Request    *http.Request
}

// Kind identifies which branch produced a [Result].
type Kind int

const (
	// KindNone is a successful result.
	KindNone Kind = iota
	// KindServer is a result built from a [ServerError].
	KindServer
	// KindNetwork is a result built from a [NetworkError].
	KindNetwork
	// KindRequestBuild is a result built from a [RequestBuildError].
	KindRequestBuild
	// KindUnknown is a failure that matched none of the above.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	case KindRequestBuild:
		return "request_build"
	default:
		return "unknown"
	}
}

// Result is the uniform value every verb returns, on success and failure.
type Result struct {
	OK         bool   `json:"ok"`
	Status     int    `json:"status,omitempty"`
	StatusText string `json:"statusText"`
	Data       any    `json:"data"`
	// Links is set on successful GET results and on every failure.
	Links *LinkSet `json:"links,omitempty"`

	Header  http.Header   `json:"headers,omitempty"`
	Body    []byte        `json:"-"`
	Method  string        `json:"method,omitempty"`
	URL     string        `json:"url,omitempty"`
	Code    string        `json:"code,omitempty"`
	Request *http.Request `json:"-"`
	Err     error         `json:"-"`
}

// Kind reports which kind of result this is, inferred from the
// populated fields.
func (r *Result) Kind() Kind {
	switch {
	case r.OK:
		return KindNone
	case r.Status != 0:
		return KindServer
	case r.Code != "":
		return KindNetwork
	case errors.As(r.Err, new(*RequestBuildError)):
		return KindRequestBuild
	default:
		return KindUnknown
	}
}

// Decode unmarshals the raw response body into dest, which must be a pointer.
func (r *Result) Decode(dest any) error {
	if len(r.Body) == 0 {
		return errors.New("empty response body")
	}

	if err := json.Unmarshal(r.Body, dest); err != nil {
		return fmt.Errorf("decoding body: %w", err)
	}

	return nil
}

// decodeData turns a body into the loosely typed Data value: nil when
// empty, the decoded JSON document when valid, the raw text otherwise.
func decodeData(body []byte, useNumber bool) any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	d := json.NewDecoder(bytes.NewReader(body))
	if useNumber {
		d.UseNumber()
	}

	var v any
	if err := d.Decode(&v); err != nil {
		return string(body)
	}

	// Trailing garbage means the body was not a single JSON document.
	if _, err := d.Token(); !errors.Is(err, io.EOF) {
		return string(body)
	}

	return v
}
