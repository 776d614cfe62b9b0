// Package config decodes the runtime tuning file (slangchain.toml) that
// sits alongside a .slangp preset: the ambient knobs spec.md doesn't
// enumerate because they belong to the runtime, not the pipeline
// description (see SPEC_FULL.md §2.3).
package config

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"github.com/retrofx/slangchain/core"
)

// RuntimeConfig mirrors the teacher's two-step TOML decode in
// engine/assets/loaders/shader.go: unmarshal into a plain struct, then
// validate/apply defaults.
type RuntimeConfig struct {
	LogLevel string `toml:"log_level"`

	// InFlightFrames is the depth of the uniform-staging ring (spec §5);
	// a submit blocks only once every slot is busy.
	InFlightFrames int `toml:"in_flight_frames"`

	// UBOAlignment is the byte alignment applied to every staged buffer
	// slice (spec §6). Must be a power of two.
	UBOAlignment uint64 `toml:"ubo_alignment"`

	// MaxShaderPasses and MaxFrameHistory bound the fixed-size semantic
	// arrays described in spec §9 Design Notes.
	MaxShaderPasses int `toml:"max_shader_passes"`
	MaxFrameHistory int `toml:"max_frame_history"`

	// DefaultLinearFilter is the decoded default_linear_filter setting.
	// Nothing in this module reads it; Chain.SetDefaultFilter is set
	// independently of it.
	DefaultLinearFilter bool `toml:"default_linear_filter"`
}

// Default returns the configuration used when no slangchain.toml is
// present: in-flight depth of 3 (spec §5's "typically 3"), 256-byte
// alignment (spec §6), and the compile-time maxima from spec §9.
func Default() *RuntimeConfig {
	return &RuntimeConfig{
		LogLevel:            "info",
		InFlightFrames:      3,
		UBOAlignment:        core.DefaultUBOAlignment,
		MaxShaderPasses:     core.MaxShaderPasses,
		MaxFrameHistory:     core.MaxFrameHistory,
		DefaultLinearFilter: false,
	}
}

// Load reads and decodes a slangchain.toml file, filling in any field left
// at its zero value from Default().
func Load(path string) (*RuntimeConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *RuntimeConfig) applyDefaults() {
	def := Default()
	if c.InFlightFrames <= 0 {
		c.InFlightFrames = def.InFlightFrames
	}
	if c.UBOAlignment == 0 {
		c.UBOAlignment = def.UBOAlignment
	}
	if c.MaxShaderPasses <= 0 {
		c.MaxShaderPasses = def.MaxShaderPasses
	}
	if c.MaxFrameHistory <= 0 {
		c.MaxFrameHistory = def.MaxFrameHistory
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// ApplyLogLevel installs this config's log level into the core logging
// singleton.
func (c *RuntimeConfig) ApplyLogLevel() {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		lvl = log.InfoLevel
	}
	core.SetLevel(lvl)
}
