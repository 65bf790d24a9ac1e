package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cutroom/internal/geometry"
	"github.com/roach88/cutroom/internal/timeline"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestConfigDirEnv(t *testing.T) {
	t.Setenv("CUTROOM_CONFIG_HOME", "/tmp/cutroom-config")
	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cutroom-config", dir)

	t.Setenv("CUTROOM_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err = ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/cutroom", dir)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CUTROOM_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CUTROOM_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "config.toml"), `
templates = "/srv/templates"

[timeline]
min-duration = 0.25
allow-overlap = true

[geometry]
max-zoom = 8.0
snap-grid = 1.0
snap = true

[tracks]
audio-height = 50

[log]
level = "debug"
`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Timeline.MinDuration)
	assert.Equal(t, timeline.DefaultMergeEpsilon, cfg.Timeline.MergeEpsilon, "unset keys keep defaults")
	assert.True(t, cfg.Timeline.AllowOverlap)
	assert.Equal(t, 8.0, cfg.Geometry.MaxZoom)
	assert.Equal(t, geometry.DefaultMinZoom, cfg.Geometry.MinZoom)
	assert.True(t, cfg.Geometry.Snap)
	assert.Equal(t, 50, cfg.Tracks.AudioHeight)
	assert.Equal(t, 60, cfg.Tracks.VideoHeight)
	assert.Equal(t, "/srv/templates", cfg.Templates)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		contents string
		want     string
	}{
		{"syntax", "[timeline\n", "config"},
		{"unknown key", "[timeline]\nmax-duration = 3\n", "unknown keys: timeline.max-duration"},
		{"zoom bounds", "[geometry]\nmin-zoom = 6.0\n", "exceeds max-zoom"},
		{"log level", "[log]\nlevel = \"loud\"\n", "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".toml")
			writeFile(t, path, tt.contents)
			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDomainOptions(t *testing.T) {
	cfg := Default()
	cfg.Timeline.AllowOverlap = true
	cfg.Geometry.Zoom = 2
	cfg.Geometry.Snap = true

	opts := cfg.TimelineOptions()
	assert.True(t, opts.AllowOverlap)
	assert.Equal(t, 40, opts.TrackHeights[timeline.TrackAudio])

	m := geometry.NewMapper(cfg.MapperOptions()...)
	assert.Equal(t, 2.0, m.Zoom())
	assert.Equal(t, 40.0, m.PixelsPerSecond())
	assert.Equal(t, 1.0, m.SnapTime(1.2))
}
