// Package config defines the configuration surface the FlashKV core
// consumes. Parsing flags is the CLI collaborator's job; this package holds
// the struct, its defaults, and the config-file and environment-variable
// overrides, in the defaulting/override shape the teacher's cmd/main.go used.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Duration wraps time.Duration so config documents can spell out intervals
// as strings ("100ms", "5s") the way the teacher's readTimeout/writeTimeout
// fields spelled them out as plain integers; time.Duration itself has no
// JSON unmarshaler, so without this wrapper every string-valued interval in
// defaultConfigJSON fails to parse.
type Duration time.Duration

// UnmarshalJSON accepts either a time.ParseDuration string or a bare
// integer number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("duration must be a string or integer nanoseconds: %w", err)
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON renders the duration in time.Duration.String() form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Dur unwraps to the standard time.Duration the rest of the codebase uses.
func (d Duration) Dur() time.Duration { return time.Duration(d) }

// Config is the full set of knobs the FlashKV core understands.
type Config struct {
	Server  ServerConfig  `json:"server"`
	Sweeper SweeperConfig `json:"sweeper"`
	Metrics MetricsConfig `json:"metrics"`
}

// ServerConfig describes the TCP listener.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`

	// ReadBufferCap is loaded from the config document (default 65536) but
	// the connection engine does not read it: connections always use the
	// fixed 64 KiB cap in internal/server (maxReadBuffer), and a value set
	// here has no effect on when a connection is closed with BufferFull.
	ReadBufferCap int `json:"readBufferCap"`
}

// SweeperConfig mirrors the expiry sweeper's construction-time parameters
// (spec §4.3). Not mutable at runtime.
type SweeperConfig struct {
	BaseInterval      Duration `json:"baseInterval"`
	MinInterval       Duration `json:"minInterval"`
	MaxInterval       Duration `json:"maxInterval"`
	SpeedupThreshold  float64  `json:"speedupThreshold"`
	SlowdownThreshold float64  `json:"slowdownThreshold"`
}

// MetricsConfig controls the supplemental Prometheus/health HTTP endpoint.
// This is additive instrumentation, never part of the RESP wire contract.
type MetricsConfig struct {
	Addr             string   `json:"addr"`
	UpdateInterval   Duration `json:"updateInterval"`
	EnablePrometheus bool     `json:"enablePrometheus"`
}

const defaultConfigJSON = `{
  "server": {
    "host": "127.0.0.1",
    "port": 6379,
    "readBufferCap": 65536
  },
  "sweeper": {
    "baseInterval": "100ms",
    "minInterval": "10ms",
    "maxInterval": "1s",
    "speedupThreshold": 0.25,
    "slowdownThreshold": 0.01
  },
  "metrics": {
    "addr": "",
    "updateInterval": "5s",
    "enablePrometheus": true
  }
}`

// Default returns the baseline configuration, equivalent to the teacher's
// defaultConfig JSON literal in cmd/main.go.
func Default() (Config, error) {
	var cfg Config
	if err := json.Unmarshal([]byte(defaultConfigJSON), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse default config: %w", err)
	}
	return cfg, nil
}

// Load reads a config document from path if non-empty, falling back to
// Default, then applies environment variable overrides the way
// applyEnvOverrides did for the teacher.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv("FLASHKV_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("FLASHKV_PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			cfg.Server.Port = p
		}
	}
	if addr := os.Getenv("FLASHKV_METRICS_ADDR"); addr != "" {
		cfg.Metrics.Addr = addr
	}
}

// Addr formats the server's listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
