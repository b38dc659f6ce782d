package container

import (
	"io"
	"log/slog"
)

// Option configures Load.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger the container writes debug records to.
// The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts []Option) config {
	c := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
