package objfile

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/scenenav/internal/geom"
)

var square = geom.Mesh{
	Vertices:  []geom.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
	Triangles: []geom.Triangle{{0, 1, 2}, {0, 2, 3}},
}

func TestWriteUsesOneBasedFaces(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, square))
	assert.Equal(t, "v 0 0 0\nv 1 0 0\nv 1 0 1\nv 0 0 1\nf 1 2 3\nf 1 3 4\n", buf.String())
}

func TestWriteReadRoundTrip(t *testing.T) {
	m := geom.Mesh{
		Vertices:  []geom.Vec3{{0.1, -2.25, 1e-9}, {3.3333333333333335, 4, 5}, {6, 7, 8.125}},
		Triangles: []geom.Triangle{{2, 0, 1}},
	}
	p := filepath.Join(t.TempDir(), "m.obj")
	require.NoError(t, WriteFile(p, m))
	got, err := ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestReadFacesAndComments(t *testing.T) {
	src := `# exported
o thing
v 0 0 0
v 1 0 0
v 1 0 1
v 0 0 1
vn 0 1 0
vt 0 0
f 1/1/1 2/1/1 3/1/1 4/1/1
f -4//1 -3//1 -2//1
`
	m, err := Read(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 4)
	assert.Equal(t, []geom.Triangle{{0, 1, 2}, {0, 2, 3}, {0, 1, 2}}, m.Triangles)
}

func TestReadErrors(t *testing.T) {
	for _, src := range []string{
		"v 1 2\n",
		"v a b c\n",
		"v 0 0 0\nf 1 2 3\n",
		"v 0 0 0\nf 0 1 1\n",
	} {
		_, err := Read(strings.NewReader(src))
		assert.Error(t, err, src)
	}
}

func TestWriteLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLines(&buf, [][2]geom.Vec3{{{0, 0, 0}, {1, 0, 0}}}))
	assert.Equal(t, "v 0 0 0\nv 1 0 0\nl 1 2\n", buf.String())
}
