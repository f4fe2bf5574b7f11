package codec

import (
	"github.com/clamor-s/bef2/errs"
	"github.com/clamor-s/bef2/internal/options"
)

// DefaultMaxDepth is the default limit on nested sequences, for both the
// encoder's open-sequence stack and the decoder's scope stack.
const DefaultMaxDepth = 8

// maxDepthLimit bounds WithMaxDepth.
const maxDepthLimit = 255

type config struct {
	maxDepth int
}

func defaultConfig() *config {
	return &config{maxDepth: DefaultMaxDepth}
}

// Option configures an Encoder or a Decoder.
type Option = options.Option[*config]

// WithMaxDepth sets the maximum number of simultaneously open sequences.
// Exceeding it at runtime fails with errs.ErrOutOfMemory.
//
// Parameters:
//   - depth: nesting limit, between 1 and 255
//
// Returns:
//   - Option: errs.ErrInvalidMaxDepth is reported by the constructor for out-of-range values
func WithMaxDepth(depth int) Option {
	return options.New(func(c *config) error {
		if depth < 1 || depth > maxDepthLimit {
			return errs.ErrInvalidMaxDepth
		}
		c.maxDepth = depth

		return nil
	})
}

func newConfig(opts []Option) (*config, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}
