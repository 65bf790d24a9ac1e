// Package config loads cutroom settings from config.toml.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/roach88/cutroom/internal/geometry"
	"github.com/roach88/cutroom/internal/timeline"
)

type TimelineOptions struct {
	MinDuration  float64 `toml:"min-duration"`
	MergeEpsilon float64 `toml:"merge-epsilon"`
	AllowOverlap bool    `toml:"allow-overlap"`
}

type GeometryOptions struct {
	BaseScale float64 `toml:"base-scale"`
	MinZoom   float64 `toml:"min-zoom"`
	MaxZoom   float64 `toml:"max-zoom"`
	Zoom      float64 `toml:"zoom"`
	SnapGrid  float64 `toml:"snap-grid"`
	Snap      bool    `toml:"snap"`
}

type TrackOptions struct {
	VideoHeight   int `toml:"video-height"`
	AudioHeight   int `toml:"audio-height"`
	OverlayHeight int `toml:"overlay-height"`
}

type ServerOptions struct {
	Addr string `toml:"addr"`
}

type LogOptions struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	Timeline  TimelineOptions `toml:"timeline"`
	Geometry  GeometryOptions `toml:"geometry"`
	Tracks    TrackOptions    `toml:"tracks"`
	Server    ServerOptions   `toml:"server"`
	Log       LogOptions      `toml:"log"`
	Templates string          `toml:"templates"` // directory of *.cue track templates
	Journal   string          `toml:"journal"`   // default journal database
}

func Default() Config {
	return Config{
		Timeline: TimelineOptions{
			MinDuration:  timeline.DefaultMinDuration,
			MergeEpsilon: timeline.DefaultMergeEpsilon,
		},
		Geometry: GeometryOptions{
			BaseScale: geometry.DefaultBaseScale,
			MinZoom:   geometry.DefaultMinZoom,
			MaxZoom:   geometry.DefaultMaxZoom,
			Zoom:      1,
			SnapGrid:  geometry.DefaultGridSize,
		},
		Tracks: TrackOptions{
			VideoHeight:   60,
			AudioHeight:   40,
			OverlayHeight: 30,
		},
		Server: ServerOptions{
			Addr: "127.0.0.1:7340",
		},
		Log: LogOptions{
			Level:  "info",
			Format: "text",
		},
		Journal: "cutroom.db",
	}
}

// Load reads config.toml from ConfigDir. A missing file yields Default().
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), err
	}
	cfg, err := LoadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile reads an explicit config file and merges it over Default().
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	var userCfg Config
	md, err := toml.Decode(string(data), &userCfg)
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if userCfg.Timeline.MinDuration > 0 {
		cfg.Timeline.MinDuration = userCfg.Timeline.MinDuration
	}
	if userCfg.Timeline.MergeEpsilon > 0 {
		cfg.Timeline.MergeEpsilon = userCfg.Timeline.MergeEpsilon
	}
	if md.IsDefined("timeline", "allow-overlap") {
		cfg.Timeline.AllowOverlap = userCfg.Timeline.AllowOverlap
	}
	if userCfg.Geometry.BaseScale > 0 {
		cfg.Geometry.BaseScale = userCfg.Geometry.BaseScale
	}
	if userCfg.Geometry.MinZoom > 0 {
		cfg.Geometry.MinZoom = userCfg.Geometry.MinZoom
	}
	if userCfg.Geometry.MaxZoom > 0 {
		cfg.Geometry.MaxZoom = userCfg.Geometry.MaxZoom
	}
	if userCfg.Geometry.Zoom > 0 {
		cfg.Geometry.Zoom = userCfg.Geometry.Zoom
	}
	if userCfg.Geometry.SnapGrid > 0 {
		cfg.Geometry.SnapGrid = userCfg.Geometry.SnapGrid
	}
	if md.IsDefined("geometry", "snap") {
		cfg.Geometry.Snap = userCfg.Geometry.Snap
	}
	if userCfg.Tracks.VideoHeight > 0 {
		cfg.Tracks.VideoHeight = userCfg.Tracks.VideoHeight
	}
	if userCfg.Tracks.AudioHeight > 0 {
		cfg.Tracks.AudioHeight = userCfg.Tracks.AudioHeight
	}
	if userCfg.Tracks.OverlayHeight > 0 {
		cfg.Tracks.OverlayHeight = userCfg.Tracks.OverlayHeight
	}
	if userCfg.Server.Addr != "" {
		cfg.Server.Addr = userCfg.Server.Addr
	}
	if userCfg.Log.Level != "" {
		cfg.Log.Level = userCfg.Log.Level
	}
	if userCfg.Log.Format != "" {
		cfg.Log.Format = userCfg.Log.Format
	}
	if userCfg.Templates != "" {
		cfg.Templates = userCfg.Templates
	}
	if userCfg.Journal != "" {
		cfg.Journal = userCfg.Journal
	}

	if cfg.Geometry.MinZoom > cfg.Geometry.MaxZoom {
		return cfg, fmt.Errorf("config %s: min-zoom %g exceeds max-zoom %g", path, cfg.Geometry.MinZoom, cfg.Geometry.MaxZoom)
	}
	if _, err := cfg.LogLevel(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// TimelineOptions maps the config onto timeline edit policies.
func (c Config) TimelineOptions() timeline.Options {
	return timeline.Options{
		MinDuration:  c.Timeline.MinDuration,
		MergeEpsilon: c.Timeline.MergeEpsilon,
		AllowOverlap: c.Timeline.AllowOverlap,
		TrackHeights: map[timeline.TrackType]int{
			timeline.TrackVideo:   c.Tracks.VideoHeight,
			timeline.TrackAudio:   c.Tracks.AudioHeight,
			timeline.TrackOverlay: c.Tracks.OverlayHeight,
		},
	}
}

// MapperOptions maps the config onto geometry options.
func (c Config) MapperOptions() []geometry.Option {
	return []geometry.Option{
		geometry.WithBaseScale(c.Geometry.BaseScale),
		geometry.WithZoomBounds(c.Geometry.MinZoom, c.Geometry.MaxZoom),
		geometry.WithZoom(c.Geometry.Zoom),
		geometry.WithSnapGrid(c.Geometry.SnapGrid, c.Geometry.Snap),
	}
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", c.Log.Level, err)
	}
	return level, nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("CUTROOM_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "cutroom"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cutroom"), nil
}
