package summarize

const (
	DefaultTokenLimit        = 20000
	DefaultLowValueThreshold = 10
)

// Config holds the per-run budget parameters.
type Config struct {
	TokenLimit        int // Maximum token total of a chunk before it is flushed.
	LowValueThreshold int // Pages counting fewer tokens than this are skipped.
}

// DefaultConfig returns the standard run parameters.
func DefaultConfig() Config {
	return Config{
		TokenLimit:        DefaultTokenLimit,
		LowValueThreshold: DefaultLowValueThreshold,
	}
}

// withDefaults replaces unusable values. A zero threshold is valid and
// keeps every non-empty page.
func (c Config) withDefaults() Config {
	if c.TokenLimit <= 0 {
		c.TokenLimit = DefaultTokenLimit
	}
	if c.LowValueThreshold < 0 {
		c.LowValueThreshold = DefaultLowValueThreshold
	}
	return c
}
