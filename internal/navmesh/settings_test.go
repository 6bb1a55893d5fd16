package navmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaults(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())
	p := s.Params()
	assert.Equal(t, map[string]float64{
		"cellSize":             0.1,
		"cellHeight":           0.1,
		"agentHeight":          1.6,
		"agentRadius":          0.05,
		"agentMaxClimb":        0.2,
		"agentMaxSlope":        45.0,
		"regionMinSize":        0.5,
		"regionMergeSize":      20,
		"edgeMaxLen":           12.0,
		"edgeMaxError":         1.3,
		"vertsPerPoly":         6.0,
		"detailSampleDist":     6.0,
		"detailSampleMaxError": 1.0,
		"partitionType":        0,
	}, p)
}

func TestOverridesFromMap(t *testing.T) {
	o, err := OverridesFromMap(map[string]float64{"agentRadius": 0.4, "partitionType": 1})
	require.NoError(t, err)
	s := NewSettings(o)
	assert.Equal(t, 0.4, s.AgentRadius)
	assert.Equal(t, PartitionMonotone, s.PartitionType)
	assert.Equal(t, 0.1, s.CellSize)

	_, err = OverridesFromMap(map[string]float64{"cellsize": 1, "bogus": 2})
	assert.EqualError(t, err, "unknown build settings: bogus, cellsize")
}

func TestOverridesYAML(t *testing.T) {
	var o Overrides
	require.NoError(t, yaml.Unmarshal([]byte("agentHeight: 2\npartitionType: layers\n"), &o))
	s := NewSettings(o)
	assert.Equal(t, 2.0, s.AgentHeight)
	assert.Equal(t, PartitionLayers, s.PartitionType)
	assert.Equal(t, 45.0, s.AgentMaxSlope)
}

func TestValidate(t *testing.T) {
	for name, mut := range map[string]func(*Settings){
		"cellSize":     func(s *Settings) { s.CellSize = 0 },
		"slope":        func(s *Settings) { s.AgentMaxSlope = 90 },
		"vertsPerPoly": func(s *Settings) { s.VertsPerPoly = 2 },
		"partition":    func(s *Settings) { s.PartitionType = 7 },
	} {
		s := DefaultSettings()
		mut(&s)
		assert.Error(t, s.Validate(), name)
	}
}
