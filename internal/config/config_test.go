package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/asciimate/internal/anim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Cols != DefaultCols {
		t.Errorf("expected %d cols, got %d", DefaultCols, cfg.Cols)
	}
	if cfg.Threshold != 0.4 {
		t.Errorf("expected threshold 0.4, got %f", cfg.Threshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("retro")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.ColorMode != "palette" || len(cfg.Palette) != 16 {
		t.Errorf("unexpected retro preset %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("retro preset invalid: %v", err)
	}

	cfg.Palette[0] = "#123456"
	if Presets["retro"].Palette[0] != "#000000" {
		t.Error("GetPreset returned shared palette")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero cols", func(c *Config) { c.Cols = 0 }},
		{"huge cols", func(c *Config) { c.Cols = 70000 }},
		{"zero fps", func(c *Config) { c.FPS = 0 }},
		{"fps overflow", func(c *Config) { c.FPS = 300 }},
		{"threshold", func(c *Config) { c.Threshold = 1.5 }},
		{"aspect", func(c *Config) { c.CharAspect = 0 }},
		{"steps", func(c *Config) { c.StepMedium, c.StepLarge = 300, 100 }},
		{"ramp preset", func(c *Config) { c.RampPreset = "nope" }},
		{"color mode", func(c *Config) { c.ColorMode = "cmyk" }},
		{"palette missing", func(c *Config) { c.ColorMode = "palette" }},
		{"palette hex", func(c *Config) { c.Palette = []string{"red"} }},
		{"format", func(c *Config) { c.Format = "gif" }},
		{"speed", func(c *Config) { c.Player.Speed = 0 }},
		{"qos", func(c *Config) { c.MQTT.QoS = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asciimate.yaml")
	cfg := GetPreset("retro")
	cfg.Invert = true
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Cols != cfg.Cols || !loaded.Invert || len(loaded.Palette) != 16 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asciimate.toml")
	data := `cols = 32
ramp = " ░▒▓█"
color_mode = "rgb"
fps = 20

[player]
speed = 2.0

[mqtt]
topic = "tree/frames"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cols != 32 || cfg.FPS != 20 || cfg.Player.Speed != 2 || cfg.MQTT.Topic != "tree/frames" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Threshold != 0.4 || cfg.MQTT.Broker != DefaultBroker {
		t.Error("defaults not kept for unset keys")
	}

	opts, err := cfg.ConverterOptions()
	if err != nil {
		t.Fatal(err)
	}
	if len(opts.Ramp) != 5 || opts.Ramp[4] != 0xdb || opts.ColorMode != anim.RGBColor {
		t.Errorf("unexpected converter options %+v", opts)
	}
}

func TestSaveTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	if err := Save(path, DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cols != DefaultCols {
		t.Errorf("expected %d cols, got %d", DefaultCols, cfg.Cols)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("cols: -4\n"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestPipelineConfig(t *testing.T) {
	cfg := GetPreset("hd")
	pc, err := cfg.Pipeline()
	if err != nil {
		t.Fatal(err)
	}
	if pc.FPS != 24 || pc.Converter.Cols != 200 || pc.Policy.Threshold != 0.3 {
		t.Errorf("unexpected pipeline config %+v", pc)
	}
	if pc.Converter.ColorMode != anim.RGBColor {
		t.Errorf("expected rgb, got %v", pc.Converter.ColorMode)
	}
}
