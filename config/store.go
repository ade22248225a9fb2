package config

import "fmt"

// StoreConfig selects the unit/worker registry backend.
type StoreConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `json:"backend"`
	// Path is the SQLite database file. Ignored for the memory backend.
	Path string `json:"path"`
	// Seed optionally points at a YAML or JSON fixture loaded into the
	// registry at startup.
	Seed string `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.Backend == "sqlite" && c.Path == "" {
		c.Path = "slipway.db"
	}
}

// Validate checks mandatory fields.
func (c StoreConfig) Validate() error {
	if c.Backend != "memory" && c.Backend != "sqlite" {
		return fmt.Errorf("unknown store backend %s", c.Backend)
	}
	return nil
}
