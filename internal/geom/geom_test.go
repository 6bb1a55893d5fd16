package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformPoint(t *testing.T) {
	m := mgl64.Translate3D(1, 2, 3).Mul4(mgl64.Scale3D(2, 2, 2))
	assert.Equal(t, Vec3{3, 4, 5}, TransformPoint(m, Vec3{1, 1, 1}))

	rot := mgl64.HomogRotate3DZ(math.Pi / 2)
	p := TransformPoint(rot, Vec3{1, 0, 0})
	assert.InDelta(t, 0, p[0], 1e-12)
	assert.InDelta(t, 1, p[1], 1e-12)
}

func TestMeshAppendOffsets(t *testing.T) {
	var m Mesh
	m.Append(Mesh{
		Vertices:  []Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}},
		Triangles: []Triangle{{0, 1, 2}},
	})
	m.Append(Mesh{
		Vertices:  []Vec3{{5, 0, 0}, {6, 0, 0}, {5, 0, 1}, {6, 0, 1}},
		Triangles: []Triangle{{0, 1, 2}, {1, 3, 2}},
	})
	require.NoError(t, m.Validate())
	assert.Equal(t, []Triangle{{0, 1, 2}, {3, 4, 5}, {4, 6, 5}}, m.Triangles)
}

func TestMeshValidate(t *testing.T) {
	m := Mesh{Vertices: []Vec3{{}, {}}, Triangles: []Triangle{{0, 1, 2}}}
	assert.Error(t, m.Validate())
	assert.True(t, Mesh{}.Empty())
}

func TestBounds(t *testing.T) {
	m := Mesh{Vertices: []Vec3{{1, -2, 3}, {-1, 5, 0}}}
	bmin, bmax := m.Bounds()
	assert.Equal(t, Vec3{-1, -2, 0}, bmin)
	assert.Equal(t, Vec3{1, 5, 3}, bmax)
}

func TestWeld(t *testing.T) {
	pts := []Vec3{{1, 0, 0}, {0, 0, 0}, {1, 0, 0}, {0, 3, 0}, {0, 0, 0}}
	unique, remap := Weld(pts)
	assert.Equal(t, []Vec3{{0, 0, 0}, {0, 3, 0}, {1, 0, 0}}, unique)
	for i, p := range pts {
		assert.Equal(t, p, unique[remap[i]])
	}
}
