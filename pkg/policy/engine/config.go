package engine

import (
	"fmt"

	"mercator-hq/mpl-builtins/pkg/config"
	"mercator-hq/mpl-builtins/pkg/mpl/builtins"
)

// DefaultPreviewBytes is how much of a call's encoded arguments is logged at
// debug level.
const DefaultPreviewBytes = 256

// Config contains configuration for the builtin dispatcher.
type Config struct {
	// Families lists the enabled builtin families. The json family is
	// always enabled. Empty means every family.
	Families []builtins.Family

	// Strict is the default strict flag for callers that do not choose one.
	// Default: false.
	Strict bool

	// MaxArgumentBytes rejects calls whose JSON-encoded arguments are larger.
	// 0 means unlimited.
	// Default: 1MB.
	MaxArgumentBytes int

	// PreviewBytes bounds the argument preview in debug logs.
	// Default: 256.
	PreviewBytes int
}

// DefaultConfig returns the default dispatcher configuration.
func DefaultConfig() *Config {
	return &Config{
		Families:         builtins.AllFamilies(),
		MaxArgumentBytes: config.DefaultBuiltinsMaxArgumentBytes,
		PreviewBytes:     DefaultPreviewBytes,
	}
}

// FromConfig converts the builtins configuration section. Unknown family
// names are an error.
func FromConfig(cfg config.BuiltinsConfig) (*Config, error) {
	c := &Config{
		Strict:           cfg.Strict,
		MaxArgumentBytes: cfg.MaxArgumentBytes,
		PreviewBytes:     DefaultPreviewBytes,
	}

	for _, name := range cfg.Families {
		f, err := builtins.ParseFamily(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		c.Families = append(c.Families, f)
	}
	if len(c.Families) == 0 {
		c.Families = builtins.AllFamilies()
	}

	return c, c.Validate()
}

// Validate validates the dispatcher configuration.
func (c *Config) Validate() error {
	if c.MaxArgumentBytes < 0 {
		return fmt.Errorf("%w: max argument bytes must not be negative", ErrInvalidConfig)
	}
	if c.PreviewBytes < 0 {
		return fmt.Errorf("%w: preview bytes must not be negative", ErrInvalidConfig)
	}
	return nil
}

// WithFamilies sets the enabled families.
func (c *Config) WithFamilies(families ...builtins.Family) *Config {
	c.Families = families
	return c
}

// WithStrict sets the default strict flag.
func (c *Config) WithStrict(strict bool) *Config {
	c.Strict = strict
	return c
}

// WithMaxArgumentBytes sets the argument size limit.
func (c *Config) WithMaxArgumentBytes(max int) *Config {
	c.MaxArgumentBytes = max
	return c
}

func familyNames(families []builtins.Family) []string {
	out := make([]string, len(families))
	for i, f := range families {
		out[i] = string(f)
	}
	return out
}
