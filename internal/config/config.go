package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/codec"
	"github.com/san-kum/asciimate/internal/convert"
	"github.com/san-kum/asciimate/internal/format"
	"github.com/san-kum/asciimate/internal/pipeline"
	"github.com/san-kum/asciimate/internal/ramp"
	"github.com/san-kum/asciimate/internal/raster"
)

const (
	DefaultCols   = 80
	DefaultFPS    = 12
	DefaultSpeed  = 1.0
	DefaultTopic  = "asciimate/frames"
	DefaultBroker = "tcp://localhost:1883"
)

type Config struct {
	Cols       int          `yaml:"cols" toml:"cols"`
	Ramp       string       `yaml:"ramp,omitempty" toml:"ramp"`
	RampPreset string       `yaml:"ramp_preset" toml:"ramp_preset"`
	Invert     bool         `yaml:"invert" toml:"invert"`
	ColorMode  string       `yaml:"color_mode" toml:"color_mode"`
	Palette    []string     `yaml:"palette,omitempty" toml:"palette"`
	FPS        int          `yaml:"fps" toml:"fps"`
	Threshold  float64      `yaml:"threshold" toml:"threshold"`
	CharAspect float64      `yaml:"char_aspect" toml:"char_aspect"`
	StepMedium int          `yaml:"step_medium" toml:"step_medium"`
	StepLarge  int          `yaml:"step_large" toml:"step_large"`
	Fit        FitConfig    `yaml:"fit" toml:"fit"`
	Grayscale  bool         `yaml:"grayscale" toml:"grayscale"`
	Format     string       `yaml:"format" toml:"format"`
	Player     PlayerConfig `yaml:"player" toml:"player"`
	MQTT       MQTTConfig   `yaml:"mqtt" toml:"mqtt"`
}

// FitConfig bounds source images before conversion; zero disables it.
type FitConfig struct {
	Width  int `yaml:"width" toml:"width"`
	Height int `yaml:"height" toml:"height"`
}

type PlayerConfig struct {
	Speed float64 `yaml:"speed" toml:"speed"`
	Loop  bool    `yaml:"loop" toml:"loop"`
	Theme string  `yaml:"theme" toml:"theme"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker" toml:"broker"`
	Topic    string `yaml:"topic" toml:"topic"`
	ClientID string `yaml:"client_id" toml:"client_id"`
	Username string `yaml:"username,omitempty" toml:"username"`
	Password string `yaml:"password,omitempty" toml:"password"`
	QoS      int    `yaml:"qos" toml:"qos"`
}

func DefaultConfig() *Config {
	return &Config{
		Cols:       DefaultCols,
		RampPreset: ramp.DefaultPreset,
		ColorMode:  anim.Mono.String(),
		FPS:        DefaultFPS,
		Threshold:  codec.DefaultThreshold,
		CharAspect: convert.DefaultCharAspect,
		StepMedium: convert.DefaultStepThresholds.Medium,
		StepLarge:  convert.DefaultStepThresholds.Large,
		Format:     format.Binary.String(),
		Player: PlayerConfig{
			Speed: DefaultSpeed,
			Loop:  true,
			Theme: "default",
		},
		MQTT: MQTTConfig{
			Broker:   DefaultBroker,
			Topic:    DefaultTopic,
			ClientID: "asciimate",
			QoS:      0,
		},
	}
}

// Load reads a YAML or TOML file over the defaults. TOML is chosen by the
// .toml extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return toml.NewEncoder(f).Encode(cfg)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Cols < 1 || c.Cols > math.MaxUint16 {
		return fmt.Errorf("cols must be between 1 and %d, got %d", math.MaxUint16, c.Cols)
	}
	if c.FPS < 1 || c.FPS > math.MaxUint8 {
		return fmt.Errorf("fps must be between 1 and %d, got %d", math.MaxUint8, c.FPS)
	}
	if c.Threshold <= 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in (0, 1], got %v", c.Threshold)
	}
	if c.CharAspect <= 0 {
		return fmt.Errorf("char_aspect must be positive, got %v", c.CharAspect)
	}
	if c.StepMedium < 0 || c.StepLarge < 0 || (c.StepLarge > 0 && c.StepMedium > c.StepLarge) {
		return fmt.Errorf("step thresholds must satisfy 0 <= medium <= large, got %d/%d", c.StepMedium, c.StepLarge)
	}
	if c.Fit.Width < 0 || c.Fit.Height < 0 {
		return fmt.Errorf("fit must not be negative, got %dx%d", c.Fit.Width, c.Fit.Height)
	}
	if _, err := c.RampSymbols(); err != nil {
		return err
	}
	mode, err := anim.ParseColorMode(c.ColorMode)
	if err != nil {
		return err
	}
	pal, err := c.PaletteColors()
	if err != nil {
		return err
	}
	if mode == anim.PaletteColor && len(pal) == 0 {
		return fmt.Errorf("color_mode palette needs a palette")
	}
	if _, err := format.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Player.Speed <= 0 {
		return fmt.Errorf("player speed must be positive, got %v", c.Player.Speed)
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	return nil
}

// RampSymbols returns the explicit ramp if set, otherwise the preset.
func (c *Config) RampSymbols() (ramp.Ramp, error) {
	if c.Ramp != "" {
		return ramp.Parse(c.Ramp)
	}
	return ramp.Preset(c.RampPreset)
}

func (c *Config) PaletteColors() ([]anim.RGB, error) {
	if len(c.Palette) > anim.MaxPaletteLength {
		return nil, fmt.Errorf("palette has %d colors, limit is %d", len(c.Palette), anim.MaxPaletteLength)
	}
	out := make([]anim.RGB, 0, len(c.Palette))
	for _, h := range c.Palette {
		col, err := colorful.Hex(strings.TrimSpace(h))
		if err != nil {
			return nil, fmt.Errorf("palette color %q: %w", h, err)
		}
		r, g, b := col.RGB255()
		out = append(out, anim.RGB{R: r, G: g, B: b})
	}
	return out, nil
}

// ConverterOptions builds the converter settings described by c.
func (c *Config) ConverterOptions() (convert.Options, error) {
	r, err := c.RampSymbols()
	if err != nil {
		return convert.Options{}, err
	}
	mode, err := anim.ParseColorMode(c.ColorMode)
	if err != nil {
		return convert.Options{}, err
	}
	pal, err := c.PaletteColors()
	if err != nil {
		return convert.Options{}, err
	}
	return convert.Options{
		Cols:       c.Cols,
		Ramp:       r,
		Invert:     c.Invert,
		ColorMode:  mode,
		Palette:    pal,
		CharAspect: c.CharAspect,
		Steps:      convert.StepThresholds{Medium: c.StepMedium, Large: c.StepLarge},
	}, nil
}

// Pipeline combines the converter, policy and frame rate settings.
func (c *Config) Pipeline() (pipeline.Config, error) {
	opts, err := c.ConverterOptions()
	if err != nil {
		return pipeline.Config{}, err
	}
	return pipeline.Config{Converter: opts, Policy: c.Policy(), FPS: c.FPS}, nil
}

func (c *Config) Policy() codec.Policy {
	return codec.Policy{Threshold: c.Threshold}
}

func (c *Config) LoadOptions() raster.LoadOptions {
	return raster.LoadOptions{
		FitWidth:  c.Fit.Width,
		FitHeight: c.Fit.Height,
		Grayscale: c.Grayscale,
		Filter:    imaging.Lanczos,
	}
}

func (c *Config) OutputFormat() (format.Format, error) {
	return format.ParseFormat(c.Format)
}
