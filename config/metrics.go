package config

import "fmt"

// MetricsConfig configures the planning metric sinks.
type MetricsConfig struct {
	Prometheus PrometheusConfig `json:"prometheus"`
	Influx     InfluxConfig     `json:"influx"`
}

// PrometheusConfig exposes board counters over HTTP.
type PrometheusConfig struct {
	Enabled bool   `json:"enabled"`
	Port    string `json:"port"`
}

// InfluxConfig forwards board events to InfluxDB.
type InfluxConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
	Token   string `json:"token"`
	Org     string `json:"org"`
	Bucket  string `json:"bucket"`
}

// SetDefaults applies sane defaults.
func (c *MetricsConfig) SetDefaults() {
	if c.Prometheus.Port == "" {
		c.Prometheus.Port = "2112"
	}
}

// Validate checks mandatory fields.
func (c MetricsConfig) Validate() error {
	if c.Influx.Enabled && c.Influx.URL == "" {
		return fmt.Errorf("influx url is required when influx is enabled")
	}
	return nil
}
