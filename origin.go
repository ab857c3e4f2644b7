package normhttp

import (
	"os"
	"strings"
)

const (
	// DefaultOriginEnv is read by the default [OriginProvider].
	DefaultOriginEnv = "NORMHTTP_ORIGIN"

	// FallbackOrigin is used when no origin can be resolved.
	FallbackOrigin = "http://localhost"
)

// OriginProvider reports the ambient origin, such as `https://example.com`,
// that base URLs without a scheme are resolved against. ok is false when
// no origin is known.
type OriginProvider func() (origin string, ok bool)

// EnvOrigin reads the origin from the environment variable key.
func EnvOrigin(key string) OriginProvider {
	return func() (string, bool) {
		v, ok := os.LookupEnv(key)
		v = strings.TrimSpace(v)

		return v, ok && v != ""
	}
}

// StaticOrigin always reports origin.
func StaticOrigin(origin string) OriginProvider {
	return func() (string, bool) {
		return origin, origin != ""
	}
}

func resolveOrigin(provider OriginProvider) string {
	if provider == nil {
		return FallbackOrigin
	}

	origin, ok := provider()
	if !ok || origin == "" {
		return FallbackOrigin
	}

	return strings.TrimRight(origin, "/")
}
