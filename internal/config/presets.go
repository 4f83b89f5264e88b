package config

import "sort"

var Presets = map[string]*Config{
	"tiny": {
		Cols: 40, RampPreset: "simple", ColorMode: "mono", FPS: 10,
		Fit: FitConfig{Width: 160, Height: 120},
	},
	"terminal": {
		Cols: 80, RampPreset: "standard", ColorMode: "rgb", FPS: 12,
		Fit: FitConfig{Width: 640, Height: 480},
	},
	"hd": {
		Cols: 200, RampPreset: "detailed", ColorMode: "rgb", FPS: 24,
		Threshold: 0.3,
	},
	"retro": {
		Cols: 40, RampPreset: "blocks", ColorMode: "palette", FPS: 15,
		Palette: []string{
			"#000000", "#ffffff", "#880000", "#aaffee", "#cc44cc", "#00cc55", "#0000aa", "#eeee77",
			"#dd8855", "#664400", "#ff7777", "#333333", "#777777", "#aaff66", "#0088ff", "#bbbbbb",
		},
	},
}

// GetPreset returns a copy of the named preset layered over the defaults,
// or nil when there is no such preset.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Cols = p.Cols
	cfg.RampPreset = p.RampPreset
	cfg.ColorMode = p.ColorMode
	cfg.FPS = p.FPS
	cfg.Fit = p.Fit
	if p.Threshold > 0 {
		cfg.Threshold = p.Threshold
	}
	if len(p.Palette) > 0 {
		cfg.Palette = append([]string(nil), p.Palette...)
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
