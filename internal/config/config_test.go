package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/scenenav/internal/axis"
	"github.com/gorustyt/scenenav/internal/navmesh"
	"github.com/gorustyt/scenenav/internal/simplify"
)

const sample = `
upAxis: Z
build:
  cellSize: 0.2
  agentRadius: 0.4
  partitionType: monotone
simplify:
  percentage: 0.5
wallHeight: 3
randomPoints: 4
engine:
  url: ws://127.0.0.1:9400/engine
  readTimeout: 30s
store:
  path: /tmp/bakes.db
log:
  level: debug
  file: /tmp/scenenav.log
`

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, simplify.DefaultPercentage, cfg.Simplify.Percentage)
	assert.Equal(t, navmesh.DefaultSettings(), cfg.Settings())
	conv, err := cfg.Convention()
	require.NoError(t, err)
	assert.Nil(t, conv)
	assert.Equal(t, 10*time.Second, cfg.Engine.WriteTimeout)
}

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "scenenav.yaml")
	require.NoError(t, os.WriteFile(p, []byte(sample), 0o644))

	cfg, err := Load(p)
	require.NoError(t, err)

	conv, err := cfg.Convention()
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, axis.ZUp, *conv)

	s := cfg.Settings()
	assert.Equal(t, 0.2, s.CellSize)
	assert.Equal(t, 0.4, s.AgentRadius)
	assert.Equal(t, navmesh.PartitionMonotone, s.PartitionType)
	assert.Equal(t, navmesh.DefaultSettings().CellHeight, s.CellHeight)

	assert.Equal(t, 0.5, cfg.Simplify.Percentage)
	assert.Equal(t, 3.0, cfg.WallHeight)
	assert.Equal(t, 4, cfg.RandomPoints)
	assert.Equal(t, "ws://127.0.0.1:9400/engine", cfg.Engine.URL)
	assert.Equal(t, 30*time.Second, cfg.Engine.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Engine.WriteTimeout)
	assert.Equal(t, "/tmp/bakes.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 100, cfg.Log.MaxSizeMB)
}

func TestSchemaRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":      "bogus: 1\n",
		"unknown setting":  "build:\n  cellsize: 0.2\n",
		"negative cell":    "build:\n  cellSize: -1\n",
		"slope too steep":  "build:\n  agentMaxSlope: 90\n",
		"bad duration":     "engine:\n  readTimeout: soon\n",
		"bad level":        "log:\n  level: loud\n",
		"fractional count": "randomPoints: 1.5\n",
		"bad axis":         "upAxis: X\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			assert.Error(t, Decode([]byte(doc), &cfg))
		})
	}
}

func TestEmptyDocument(t *testing.T) {
	cfg := Default()
	require.NoError(t, Decode([]byte("# nothing\n"), &cfg))
	assert.Equal(t, Default(), cfg)
}
