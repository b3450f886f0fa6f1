// Package config holds the server's startup configuration and the
// legacy flat-file translation layer, following the same
// struct-plus-ApplyDefaults shape the teacher uses for its own
// ServerConfig (opd-ai-venture pkg/network/server.go
// DefaultServerConfig).
package config

import "time"

// Config is the full set of options the core and its components consume
// at startup, corresponding to spec.md §6's configuration table.
type Config struct {
	// Transport
	Bind       string
	Port       int
	MaxPlayers int

	// Streaming
	StreamDistance float64
	StreamRateMS   int64

	// Per-player sync cadence
	OnFootRateMS int64
	InCarRateMS  int64
	WeaponRateMS int64

	// Connection management
	PlayerTimeout time.Duration

	// Gameplay
	UseAllAnimations   bool
	ValidateAnimations bool

	// Custom-model artwork subsystem
	ArtworkEnabled    bool
	ArtworkCDN        string
	ArtworkModelsPath string

	// Operational surface
	Announce     bool
	EnableQuery  bool
	EnableRCON   bool
	RCONPassword string

	// Scripting subsystem
	PawnMainScripts   []string
	PawnSideScripts   []string
	PawnLegacyPlugins []string
}

// ApplyDefaults fills every zero-valued field with the documented
// default, following the teacher's DefaultServerConfig pattern but as an
// in-place method so a partially-populated Config (e.g. one built from a
// legacy server.cfg) is completed rather than replaced.
func (c *Config) ApplyDefaults() {
	if c.Bind == "" {
		c.Bind = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 7777
	}
	if c.MaxPlayers == 0 {
		c.MaxPlayers = 50
	}
	if c.StreamDistance == 0 {
		c.StreamDistance = 200
	}
	if c.StreamRateMS == 0 {
		c.StreamRateMS = 100
	}
	if c.OnFootRateMS == 0 {
		c.OnFootRateMS = 100
	}
	if c.InCarRateMS == 0 {
		c.InCarRateMS = 100
	}
	if c.WeaponRateMS == 0 {
		c.WeaponRateMS = 100
	}
	if c.PlayerTimeout == 0 {
		c.PlayerTimeout = 10 * time.Second
	}
	if c.ArtworkModelsPath == "" {
		c.ArtworkModelsPath = "models"
	}
}

// Default returns a fully-populated default configuration.
func Default() Config {
	var c Config
	c.ApplyDefaults()
	return c
}
