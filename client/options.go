package client

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/normhttp/client/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	client            *http.Client
	rt                http.RoundTripper
	timeout           *time.Duration
	userAgent         string
	throttle          *throttle.Config
	noFollowRedirects bool
	logger            *slog.Logger
	tracer            trace.Tracer
	requestIDHeader   string
}

// WithClient replaces the default [http.Client] used by the [Client].
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		cfg := throttle.Config{RPS: rps, Burst: burst}
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.throttle = &cfg
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// WithTracer starts a client span per request and propagates its
// context through the request headers.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		c.tracer = tracer
		return nil
	}
}

// WithRequestID sets a random UUID on the given header of every request
// that doesn't already carry one.
func WithRequestID(header string) Option {
	return func(c *options) error {
		if header == "" {
			return errors.New("request id header must not be empty")
		}
		c.requestIDHeader = http.CanonicalHeaderKey(header)
		return nil
	}
}

// RequestOption is a functional option applied to a single [Call].
type RequestOption func(call *Call) error

// WithParams adds query parameters to the request URL.
func WithParams(params map[string]string) RequestOption {
	return func(call *Call) error {
		if call.Params == nil {
			call.Params = make(map[string]string, len(params))
		}
		for k, v := range params {
			call.Params[k] = v
		}

		return nil
	}
}

// WithHeaders adds custom headers to the outgoing request.
func WithHeaders(headers map[string][]string) RequestOption {
	return func(call *Call) error {
		if call.Header == nil {
			call.Header = make(http.Header, len(headers))
		}
		for k, v := range headers {
			for _, element := range v {
				call.Header.Add(k, element)
			}
		}

		return nil
	}
}

// WithCookies attaches the given cookies to the outgoing request.
func WithCookies(cookies ...*http.Cookie) RequestOption {
	return func(call *Call) error {
		call.Cookies = append(call.Cookies, cookies...)

		return nil
	}
}

// WithContentType overrides the Content-Type header derived from the payload.
func WithContentType(contentType string) RequestOption {
	return func(call *Call) error {
		if contentType == "" {
			return errors.New("cannot use empty content type")
		}

		call.ContentType = contentType

		return nil
	}
}

// WithRequestTimeout bounds a single exchange, on top of any client timeout.
func WithRequestTimeout(d time.Duration) RequestOption {
	return func(call *Call) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}

		call.Timeout = d

		return nil
	}
}

// WithValidateStatus replaces the 2xx success check.
func WithValidateStatus(fn func(status int) bool) RequestOption {
	return func(call *Call) error {
		if fn == nil {
			return errors.New("status validator must not be nil")
		}

		call.ValidateStatus = fn

		return nil
	}
}

// WithJSONNumber tells the JSON decoder to use [json.Decoder.UseNumber]
// for Result.Data, preserving number precision as [json.Number].
func WithJSONNumber() RequestOption {
	return func(call *Call) error {
		call.UseNumber = true

		return nil
	}
}
