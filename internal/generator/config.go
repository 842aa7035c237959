package generator

import (
	"time"

	"mock-data-forge/internal/common/config"
)

// Defaults applied when a constraint is absent.
const (
	DefaultMaxLength   = 50
	DefaultIntMin      = 1
	DefaultIntMax      = 100
	DefaultPrecision   = 2
	DefaultScale       = 2
	DefaultImageWidth  = 640
	DefaultImageHeight = 480
	DefaultExtension   = "pdf"
	DefaultArrayMin    = 1
	DefaultArrayMax    = 5
	DefaultMaxDepth    = 32

	DefaultMaxStringLength = 10000
	DefaultMaxArraySize    = 10000
)

type Config struct {
	// MaxDepth bounds object/array nesting.
	MaxDepth int
	// MaxStringLength caps the max_length constraint of string fields.
	MaxStringLength int
	// MaxArraySize caps the size constraint of array fields.
	MaxArraySize int
	// Now is the clock used for date values.
	Now func() time.Time
}

func LoadConfig() *Config {
	return &Config{
		MaxDepth:        DefaultMaxDepth,
		MaxStringLength: DefaultMaxStringLength,
		MaxArraySize:    DefaultMaxArraySize,
		Now:             time.Now,
	}
}

// ConfigFrom builds generator settings from the generator section. Unset
// limits keep their defaults.
func ConfigFrom(cfg config.GeneratorConfig) *Config {
	c := LoadConfig()
	if cfg.MaxDepth > 0 {
		c.MaxDepth = cfg.MaxDepth
	}
	if cfg.MaxStringLength > 0 {
		c.MaxStringLength = cfg.MaxStringLength
	}
	if cfg.MaxArraySize > 0 {
		c.MaxArraySize = cfg.MaxArraySize
	}
	return c
}
