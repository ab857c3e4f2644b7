// Package normhttp binds a [client.Transport] to a base URL.
//
// Relative paths are joined to the base URL with exactly one slash, while
// scheme-prefixed URLs are passed through untouched:
//
//	api, err := normhttp.New("/api/v2")
//	res := api.Get(ctx, "users", client.WithParams(map[string]string{"page": "2"}))
//
// A base URL without a scheme is a path prefix on the origin reported by
// the [OriginProvider], [EnvOrigin] of [DefaultOriginEnv] unless overridden.
//
// The package-level verbs send through the process-wide [Default] transport.
package normhttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/adamwoolhether/normhttp/client"
	"github.com/adamwoolhether/normhttp/internal/validate"
)

// schemeRegex matches a leading URL scheme such as `https://`.
var schemeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// ClientConfig is the resolved configuration of a [Client].
type ClientConfig struct {
	BaseURL string `json:"baseURL" validate:"required,url"`
}

// Client sends requests relative to a fixed base URL.
// It is safe for concurrent use.
type Client struct {
	cfg       ClientConfig
	transport client.Transport
	defaults  []client.RequestOption
	logger    *slog.Logger
}

// New creates a [Client] for baseURL.
//
// A scheme-prefixed baseURL is used verbatim, any other non-empty value is
// appended to the origin and an empty one is the origin itself.
// Unless [WithTransport] is given, the client owns a [client.Client] built
// with the [WithClientOptions] options.
func New(baseURL string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}

	if o.transport != nil && len(o.clientOpts) > 0 {
		return nil, errors.New("client options cannot be combined with a custom transport")
	}

	logger := slog.Default()
	if o.logger != nil {
		logger = o.logger
	}

	provider := o.origin
	if provider == nil {
		provider = EnvOrigin(DefaultOriginEnv)
	}

	cfg := ClientConfig{BaseURL: buildBaseURL(baseURL, provider)}
	if err := validate.Check(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	transport := o.transport
	if transport == nil {
		clientOpts := o.clientOpts
		if o.logger != nil {
			clientOpts = append([]client.Option{client.WithLogger(o.logger)}, clientOpts...)
		}

		c, err := client.Build(clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("building transport: %w", err)
		}
		transport = c
	}

	logger.Debug("client created", "baseURL", cfg.BaseURL)

	return &Client{
		cfg:       cfg,
		transport: transport,
		defaults:  o.defaults,
		logger:    logger,
	}, nil
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Config returns a copy of the resolved configuration.
func (c *Client) Config() ClientConfig {
	return c.cfg
}

// Transport returns the transport requests are sent through.
func (c *Client) Transport() client.Transport {
	return c.transport
}

// Get fetches path. The result carries Links on success.
func (c *Client) Get(ctx context.Context, path string, opts ...client.RequestOption) *client.Result {
	return client.Get(ctx, c.transport, c.resolve(path), c.with(opts)...)
}

// Post sends data to path.
func (c *Client) Post(ctx context.Context, path string, data any, opts ...client.RequestOption) *client.Result {
	return client.Post(ctx, c.transport, c.resolve(path), data, c.with(opts)...)
}

// Put sends data to path.
func (c *Client) Put(ctx context.Context, path string, data any, opts ...client.RequestOption) *client.Result {
	return client.Put(ctx, c.transport, c.resolve(path), data, c.with(opts)...)
}

// Delete deletes the resource at path.
func (c *Client) Delete(ctx context.Context, path string, opts ...client.RequestOption) *client.Result {
	return client.Delete(ctx, c.transport, c.resolve(path), c.with(opts)...)
}

// PostMultipart posts form to path as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, path string, form *client.MultipartForm, opts ...client.RequestOption) *client.Result {
	return client.PostMultipart(ctx, c.transport, c.resolve(path), form, c.with(opts)...)
}

// URI returns the absolute URI a request to path would be sent to,
// including the query params of opts. Nothing is sent.
//
//	api.URI("bar", client.WithParams(map[string]string{"baz": "foobar"}))
//	// https://foo.com/bar?baz=foobar
func (c *Client) URI(path string, opts ...client.RequestOption) (string, error) {
	return client.URI(c.resolve(path), c.with(opts)...)
}

func (c *Client) resolve(path string) string {
	if hasScheme(path) {
		return path
	}

	return joinPath(c.cfg.BaseURL, path)
}

// with puts the client defaults ahead of the per-call options.
func (c *Client) with(opts []client.RequestOption) []client.RequestOption {
	if len(c.defaults) == 0 {
		return opts
	}

	all := make([]client.RequestOption, 0, len(c.defaults)+len(opts))
	all = append(all, c.defaults...)

	return append(all, opts...)
}

func buildBaseURL(baseURL string, provider OriginProvider) string {
	if hasScheme(baseURL) {
		return baseURL
	}

	origin := resolveOrigin(provider)
	if baseURL == "" {
		return origin
	}

	return joinPath(origin, baseURL)
}

func hasScheme(s string) bool {
	return schemeRegex.MatchString(s)
}

// joinPath concatenates base and path with exactly one slash.
func joinPath(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
