package camera

import (
	"fmt"
	"sort"
)

// Resolution preset names.
const (
	PresetDefault = "default"
	Preset480p    = "480p"
	Preset720p    = "720p"
	Preset1080p   = "1080p"
	Preset4K      = "4k"
)

// Presets returns every named configuration. All share the default search
// space and differ only in requested resolution.
func Presets() map[string]Config {
	return map[string]Config{
		PresetDefault: DefaultConfig(),
		Preset480p:    withResolution(640, 480),
		Preset720p:    withResolution(1280, 720),
		Preset1080p:   withResolution(1920, 1080),
		Preset4K:      withResolution(3840, 2160),
	}
}

// PresetNames returns the preset names, sorted.
func PresetNames() []string {
	presets := Presets()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the named configuration.
func Preset(name string) (Config, error) {
	if cfg, ok := Presets()[name]; ok {
		return cfg, nil
	}
	return Config{}, fmt.Errorf("camera: unknown preset %q (have %v)", name, PresetNames())
}

func withResolution(w, h int) Config {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	return cfg
}
