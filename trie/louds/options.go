package louds

import (
	"Lexicon/trie/basetrie"
	"io"

	"github.com/sirupsen/logrus"
)

type options struct {
	logger     logrus.FieldLogger
	duplicates basetrie.DuplicatePolicy
}

// Option configures building and loading.
type Option func(*options)

// WithLogger sets the logger used for build and load diagnostics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDuplicatePolicy sets how Builder resolves repeated keys.
func WithDuplicatePolicy(policy basetrie.DuplicatePolicy) Option {
	return func(o *options) {
		o.duplicates = policy
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:     discardLogger(),
		duplicates: basetrie.RejectDuplicates,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
