package normhttp

import (
	"context"
	"log/slog"
	"sync"

	"github.com/adamwoolhether/normhttp/client"
)

var defaultTransport = sync.OnceValues(func() (*client.Client, error) {
	return client.Build()
})

// Default returns the process-wide transport used by the package-level
// verbs. It's built on first use with the [client.Build] defaults.
func Default() client.Transport {
	t, err := defaultTransport()
	if err != nil {
		slog.Error("building default transport", "error", err)
		return nil
	}

	return t
}

// Get fetches url through the [Default] transport.
func Get(ctx context.Context, url string, opts ...client.RequestOption) *client.Result {
	return client.Get(ctx, Default(), url, opts...)
}

// Post sends data to url through the [Default] transport.
func Post(ctx context.Context, url string, data any, opts ...client.RequestOption) *client.Result {
	return client.Post(ctx, Default(), url, data, opts...)
}

// Put sends data to url through the [Default] transport.
func Put(ctx context.Context, url string, data any, opts ...client.RequestOption) *client.Result {
	return client.Put(ctx, Default(), url, data, opts...)
}

// Delete deletes the resource at url through the [Default] transport.
func Delete(ctx context.Context, url string, opts ...client.RequestOption) *client.Result {
	return client.Delete(ctx, Default(), url, opts...)
}

// PostMultipart posts form to url through the [Default] transport.
func PostMultipart(ctx context.Context, url string, form *client.MultipartForm, opts ...client.RequestOption) *client.Result {
	return client.PostMultipart(ctx, Default(), url, form, opts...)
}
