package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gorustyt/scenenav/internal/axis"
	"github.com/gorustyt/scenenav/internal/engine/preview"
	"github.com/gorustyt/scenenav/internal/extract"
	"github.com/gorustyt/scenenav/internal/geom"
	"github.com/gorustyt/scenenav/internal/navmesh"
	"github.com/gorustyt/scenenav/internal/scene"
	"github.com/gorustyt/scenenav/internal/simplify"
)

const floorStage = `
upAxis: Z
selection: [/World/Floor]
prims:
  - name: World
    children:
      - name: Floor
        mesh:
          points: [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0]]
          faceVertexCounts: [4]
          faceVertexIndices: [0, 1, 2, 3]
      - name: Empty
`

func newSession(t *testing.T) (*Session, *preview.Engine) {
	t.Helper()
	st, err := scene.DecodeStage(strings.NewReader(floorStage))
	require.NoError(t, err)
	e := preview.New()
	s := New(st, e, &simplify.Clustering{Dir: t.TempDir()}, Config{TempDir: t.TempDir()}, zaptest.NewLogger(t))
	return s, e
}

func TestPipeline(t *testing.T) {
	s, e := newSession(t)
	require.NoError(t, s.AssignSelection())
	assert.Len(t, s.Result().Input.Vertices, 4)

	// the engine sees y-up data
	for _, v := range e.Mesh().Vertices {
		assert.Equal(t, 0.0, v[1])
	}

	require.NoError(t, s.Build(navmesh.Overrides{}))
	assert.True(t, s.Navmesh().Built())
	assert.Equal(t, 0.1, e.Params()["cellSize"])

	pts, err := s.RandomPoints(2)
	require.NoError(t, err)
	require.Len(t, pts, 2)
	for _, p := range pts {
		assert.InDelta(t, 0, p[2], 1e-12, "random points come back z-up")
	}

	path, err := s.SamplePath()
	require.NoError(t, err)
	assert.Equal(t, []geom.Vec3{pts[0], pts[1]}, path)

	nm, err := s.NavmeshMesh()
	require.NoError(t, err)
	assert.Len(t, nm.Triangles, 2)
	assert.Len(t, nm.Vertices, 6)

	o, err := s.Outline()
	require.NoError(t, err)
	assert.Len(t, o, 4)

	w, err := s.Walls(2)
	require.NoError(t, err)
	assert.Len(t, w.Triangles, 8)
	assert.Len(t, w.Vertices, 8)
	for _, v := range w.Vertices {
		assert.Contains(t, []float64{0, 2}, v[2])
	}

	res := s.Result()
	assert.Equal(t, w, res.Walls)
	assert.Equal(t, o, res.Outline)
	assert.Equal(t, pts, res.RandomPoints)
	assert.Equal(t, Styles{
		Navmesh: NavmeshStyle,
		Walls:   WallStyle,
		Outline: OutlineStyle,
		Path:    PathStyle,
		Points:  PointStyle,
	}, res.Styles)
}

func TestStylesFollowLayers(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.AssignSelection())
	require.NoError(t, s.Build(navmesh.Overrides{}))
	assert.Equal(t, Styles{}, s.Result().Styles)

	_, err := s.Outline()
	require.NoError(t, err)
	assert.Equal(t, Styles{Outline: OutlineStyle}, s.Result().Styles)

	require.NoError(t, s.Build(navmesh.Overrides{}))
	assert.Equal(t, Styles{}, s.Result().Styles)
}

// switchSimplifier fails while fail is set.
type switchSimplifier struct {
	simplify.Clustering
	fail bool
}

func (f *switchSimplifier) Simplify(path string, pct float64) (string, error) {
	if f.fail {
		return "", errors.New("decimator unavailable")
	}
	return f.Clustering.Simplify(path, pct)
}

func TestFailedReloadDropsCaches(t *testing.T) {
	st, err := scene.DecodeStage(strings.NewReader(floorStage))
	require.NoError(t, err)
	simp := &switchSimplifier{Clustering: simplify.Clustering{Dir: t.TempDir()}}
	s := New(st, preview.New(), simp, Config{TempDir: t.TempDir()}, zaptest.NewLogger(t))

	require.NoError(t, s.AssignSelection())
	require.NoError(t, s.Build(navmesh.Overrides{}))
	_, err = s.Outline()
	require.NoError(t, err)
	_, err = s.Walls(2)
	require.NoError(t, err)

	simp.fail = true
	err = s.AssignSelection()
	assert.ErrorIs(t, err, navmesh.ErrExternalTool)
	assert.False(t, s.Navmesh().Loaded())
	assert.False(t, s.Navmesh().Built())

	_, err = s.Walls(2)
	assert.ErrorIs(t, err, ErrNoContours)
	assert.Equal(t, Result{}, s.Result())

	simp.fail = false
	require.NoError(t, s.AssignSelection())
	assert.Len(t, s.Result().Input.Vertices, 4)
}

func TestRebuildDropsCaches(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.AssignSelection())
	require.NoError(t, s.Build(navmesh.Overrides{}))
	_, err := s.Outline()
	require.NoError(t, err)

	require.NoError(t, s.Build(navmesh.Overrides{}))
	_, err = s.Walls(1)
	assert.ErrorIs(t, err, ErrNoContours)
	assert.False(t, s.Result().Input.Empty())
}

func TestQueriesBeforeBuild(t *testing.T) {
	s, e := newSession(t)
	_, err := s.RandomPoints(3)
	assert.ErrorIs(t, err, navmesh.ErrNotBuilt)
	_, err = s.SamplePath()
	assert.ErrorIs(t, err, ErrNeedTwoPoints)
	_, err = s.Walls(3)
	assert.ErrorIs(t, err, ErrNoContours)
	assert.ErrorIs(t, s.Build(navmesh.Overrides{}), navmesh.ErrNoMesh)
	assert.Empty(t, e.Calls())
}

func TestAssignErrors(t *testing.T) {
	s, e := newSession(t)
	assert.ErrorIs(t, s.AssignPaths("/World/Empty"), extract.ErrNoMesh)
	assert.Error(t, s.AssignPaths("/Nope"))
	assert.Empty(t, e.Calls())

	require.NoError(t, s.AssignPaths())
	assert.Equal(t, []string{"load"}, e.Calls())
}

func TestUpAxisOverride(t *testing.T) {
	st, err := scene.DecodeStage(strings.NewReader(floorStage))
	require.NoError(t, err)
	st.Select()
	y := axis.YUp
	e := preview.New()
	s := New(st, e, &simplify.Clustering{Dir: t.TempDir()}, Config{UpAxis: &y}, nil)
	assert.ErrorIs(t, s.AssignSelection(), ErrNoSelection)

	require.NoError(t, s.AssignPaths("/World"))
	assert.Equal(t, geom.Vec3{1, 1, 0}, e.Mesh().Vertices[2])
}
