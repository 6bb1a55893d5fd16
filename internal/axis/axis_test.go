package axis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/scenenav/internal/geom"
)

var samplePoints = []geom.Vec3{
	{0, 0, 0},
	{1, 2, 3},
	{-4.5, 0.25, 1e6},
	{0.1, -0.2, 0.3},
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []Convention{YUp, ZUp} {
		n := NewNormalizer(c)
		assert.Equal(t, samplePoints, n.FromEngine(n.ToEngine(samplePoints)), c.String())
		assert.Equal(t, samplePoints, n.ToEngine(n.FromEngine(samplePoints)), c.String())
	}
}

func TestYUpIsIdentity(t *testing.T) {
	n := NewNormalizer(YUp)
	assert.Equal(t, samplePoints, n.ToEngine(samplePoints))
	assert.Equal(t, samplePoints, n.FromEngine(samplePoints))
}

func TestZUpMapping(t *testing.T) {
	n := NewNormalizer(ZUp)
	assert.Equal(t, geom.Vec3{1, 3, -2}, n.ToEnginePoint(geom.Vec3{1, 2, 3}))
	assert.Equal(t, geom.Vec3{1, -3, 2}, n.FromEnginePoint(geom.Vec3{1, 2, 3}))

	// z-up vertical becomes engine y
	up := n.ToEnginePoint(geom.Vec3{0, 0, 5})
	assert.Equal(t, geom.Vec3{0, 5, 0}, up)
}

func TestToEngineDoesNotAlias(t *testing.T) {
	in := []geom.Vec3{{1, 2, 3}}
	out := NewNormalizer(YUp).ToEngine(in)
	out[0][0] = 42
	assert.Equal(t, 1.0, in[0][0])
	assert.Nil(t, NewNormalizer(ZUp).ToEngine(nil))
}

func TestParseConvention(t *testing.T) {
	for s, want := range map[string]Convention{"Y": YUp, "z": ZUp, "Z-up": ZUp, " y_up ": YUp} {
		got, err := ParseConvention(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
	_, err := ParseConvention("X")
	assert.Error(t, err)

	var c Convention
	require.NoError(t, c.UnmarshalText([]byte("Z")))
	assert.Equal(t, ZUp, c)
}
