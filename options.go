package normhttp

import (
	"errors"
	"log/slog"

	"github.com/adamwoolhether/normhttp/client"
)

// Option is a functional option for configuring a [Client] via [New].
type Option func(*options) error
type options struct {
	origin     OriginProvider
	transport  client.Transport
	clientOpts []client.Option
	defaults   []client.RequestOption
	logger     *slog.Logger
}

// WithOriginProvider replaces the environment lookup of the origin.
func WithOriginProvider(provider OriginProvider) Option {
	return func(o *options) error {
		if provider == nil {
			return errors.New("origin provider must not be nil")
		}
		o.origin = provider
		return nil
	}
}

// WithTransport sends every request through t instead of an owned
// [client.Client], for example a [restytransport.Transport].
//
// [restytransport.Transport]: https://pkg.go.dev/github.com/adamwoolhether/normhttp/client/restytransport#Transport
func WithTransport(t client.Transport) Option {
	return func(o *options) error {
		if t == nil {
			return errors.New("transport must not be nil")
		}
		o.transport = t
		return nil
	}
}

// WithClientOptions configures the owned [client.Client].
func WithClientOptions(opts ...client.Option) Option {
	return func(o *options) error {
		o.clientOpts = append(o.clientOpts, opts...)
		return nil
	}
}

// WithDefaults applies opts to every request before its own options,
// e.g. a shared auth header.
func WithDefaults(opts ...client.RequestOption) Option {
	return func(o *options) error {
		o.defaults = append(o.defaults, opts...)
		return nil
	}
}

// WithLogger injects a custom [slog.Logger]. It's passed on to the owned
// [client.Client].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}
