package memo

import "log/slog"

// KeyFunc derives a cache key from the call arguments. The wrapper prefixes
// it with the operation name. An error or panic falls back to the default key.
type KeyFunc[A any] func(A) (string, error)

// Option configures a wrapper.
type Option[A any] func(*options[A])

type options[A any] struct {
	key KeyFunc[A]
	log *slog.Logger
}

// WithKey sets a custom key derivation.
func WithKey[A any](fn KeyFunc[A]) Option[A] {
	return func(o *options[A]) { o.key = fn }
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger[A any](l *slog.Logger) Option[A] {
	return func(o *options[A]) { o.log = l }
}
