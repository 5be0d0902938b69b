package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordtimeline/internal/mapper"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	m := cfg.MapperConfig()
	assert.Equal(t, "scheduledstart", m.StartField)
	assert.Equal(t, mapper.Calendar, m.Granularity)
	assert.Equal(t, time.UTC, m.Location)

	w := cfg.WidgetOptions()
	assert.False(t, w.AllowOverlap)
	assert.Equal(t, "circle", w.Marker.Shape)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
dataset:
  path: activities.csv
  id_column: activityid
  hidden_columns: [statecode]
  delimiter: ";"
fields:
  label: title
dates:
  granularity: elapsed
  location: Europe/London
timeline:
  avoid_text_overlap: false
  refresh_on_update: true
host:
  watch: true
  debounce: 500ms
  refresh_schedule: "@every 5m"
event_marker:
  shape: diamond
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "activities.csv", cfg.Dataset.Path)
	assert.Equal(t, []string{"statecode"}, cfg.Dataset.HiddenColumns)
	assert.Equal(t, "title", cfg.Fields.Label)
	assert.Equal(t, "scheduledstart", cfg.Fields.Start, "unset keys keep defaults")
	assert.True(t, cfg.Host.Watch)
	assert.Equal(t, 500*time.Millisecond, cfg.Host.Debounce)
	assert.Equal(t, time.Second, cfg.Host.MinUpdateInterval)
	assert.True(t, cfg.Timeline.RefreshOnUpdate)

	m := cfg.MapperConfig()
	assert.Equal(t, mapper.Elapsed, m.Granularity)
	assert.Equal(t, "Europe/London", m.Location.String())

	assert.True(t, cfg.WidgetOptions().AllowOverlap)
	assert.Equal(t, "diamond", cfg.WidgetOptions().Marker.Shape)

	src := cfg.DatasetSource()
	assert.Equal(t, ';', src.Comma)
	assert.Equal(t, "activityid", src.IDColumn)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "error reading config file")

	_, err = Load(writeConfig(t, "layout: [unclosed"))
	assert.ErrorContains(t, err, "error parsing config file")

	_, err = Load(writeConfig(t, "dates:\n  granularity: weekly\n"))
	assert.ErrorContains(t, err, "granularity")

	_, err = Load(writeConfig(t, "dates:\n  location: Mars/Olympus\n"))
	assert.ErrorContains(t, err, "dates.location")

	_, err = Load(writeConfig(t, "fields:\n  start: \"\"\n"))
	assert.ErrorContains(t, err, "fields.start")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"RECORDTIMELINE_DATASET_PATH": "crm.db",
		"RECORDTIMELINE_LOG_LEVEL":    "debug",
		"RECORDTIMELINE_WATCH":        "true",
		"RECORDTIMELINE_WIDTH":        "640",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, applyEnv(&cfg, lookup))
	assert.Equal(t, "crm.db", cfg.Dataset.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Host.Watch)
	assert.Equal(t, 640, cfg.Layout.Width)

	env["RECORDTIMELINE_WATCH"] = "sometimes"
	assert.Error(t, applyEnv(&cfg, lookup))
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("RECORDTIMELINE_DATASET_DRIVER", "sqlite")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Dataset.Driver)
}
