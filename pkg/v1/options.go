package v1

import "log/slog"

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	root   string
	logger *slog.Logger
}

// WithRoot sets the deployment root. Defaults to the working directory.
func WithRoot(root string) Option {
	return func(c *clientConfig) {
		c.root = root
	}
}

// WithLogger sets the diagnostic logger. Silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
