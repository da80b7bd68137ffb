package editor

import (
	"log/slog"

	"github.com/google/uuid"
)

type options struct {
	strict bool
	newID  func() string
	logger *slog.Logger
}

// Option configures an Editor.
type Option func(*options)

// WithStrict makes operations on missing ids return a NotFoundError instead
// of silently doing nothing.
func WithStrict() Option {
	return func(o *options) { o.strict = true }
}

// WithIDGenerator overrides the id source for inserted items.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// WithLogger sets the logger used for committed changes.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(opts []Option) options {
	o := options{newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
