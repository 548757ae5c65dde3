package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Render.Separator)
	assert.False(t, cfg.Render.HTML)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 200*time.Millisecond, cfg.Watch.Debounce)
}

func TestInit_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bbtemplar.yaml")
	content := "render:\n  separator: \"\\n\\n\"\n  html: true\nlog:\n  level: debug\nwatch:\n  debounce: 1s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := viper.New()
	require.NoError(t, Init(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "\n\n", cfg.Render.Separator)
	assert.True(t, cfg.Render.HTML)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
}

func TestInit_MissingExplicitFile(t *testing.T) {
	v := viper.New()
	err := Init(v, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestInit_EnvOverride(t *testing.T) {
	t.Setenv("BBTEMPLAR_LOG_FORMAT", "json")
	t.Chdir(t.TempDir())

	v := viper.New()
	require.NoError(t, Init(v, ""))
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"level", "log.level", "loud"},
		{"format", "log.format", "xml"},
		{"debounce", "watch.debounce", -time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.val)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}
