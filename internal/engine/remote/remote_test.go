package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gorustyt/scenenav/internal/axis"
	"github.com/gorustyt/scenenav/internal/engine/preview"
	"github.com/gorustyt/scenenav/internal/geom"
	"github.com/gorustyt/scenenav/internal/navmesh"
	"github.com/gorustyt/scenenav/internal/objfile"
	"github.com/gorustyt/scenenav/internal/simplify"
)

var square = geom.Mesh{
	Vertices:  []geom.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
	Triangles: []geom.Triangle{{0, 1, 2}, {0, 2, 3}},
}

func startServer(t *testing.T) (*Client, *preview.Engine) {
	t.Helper()
	e := preview.New()
	srv := NewServer(e, t.TempDir(), zaptest.NewLogger(t))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	c, err := Dial(ctx, url, zaptest.NewLogger(t), WithTimeouts(5*time.Second, 5*time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, e
}

func TestEngineCalls(t *testing.T) {
	c, e := startServer(t)

	p := filepath.Join(t.TempDir(), "in.obj")
	require.NoError(t, objfile.WriteFile(p, square))
	require.NoError(t, c.LoadObj(p))
	assert.Equal(t, square, e.Mesh())

	ok, err := c.Build(map[string]float64{"cellSize": 0.3})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.3, e.Params()["cellSize"])
	assert.Equal(t, navmesh.DefaultSettings().Params(), withDefault(e.Params(), "cellSize"))

	pts, err := c.RandomPoints(3)
	require.NoError(t, err)
	assert.Len(t, pts, 3)

	starts := []geom.Vec3{{0, 0, 0}}
	ends := []geom.Vec3{{1, 0, 1}}
	path, err := c.FindPaths(starts, ends, geom.Vec3{2, 2, 2}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []geom.Vec3{{0, 0, 0}, {1, 0, 1}}, path)
	_, err = c.FindPathsParallel(starts, ends, geom.Vec3{2, 2, 2}, 2, 0)
	require.NoError(t, err)

	v, sizes, err := c.Contours()
	require.NoError(t, err)
	assert.Len(t, v, 8)
	assert.Equal(t, []int{8}, sizes)
	_, _, err = c.RawContours()
	require.NoError(t, err)

	soup, err := c.TrianglePolygons()
	require.NoError(t, err)
	assert.Len(t, soup, 6)

	assert.Equal(t, []string{"load", "build", "random", "paths", "pathsParallel", "contours", "rawContours", "polygons"}, e.Calls())
}

func TestRemoteErrorKeepsConnection(t *testing.T) {
	c, _ := startServer(t)

	_, err := c.Build(nil)
	assert.ErrorIs(t, err, ErrRemote)
	assert.Contains(t, err.Error(), "no input mesh")

	assert.Error(t, c.LoadObj(filepath.Join(t.TempDir(), "missing.obj")))

	pts, err := c.RandomPoints(2)
	require.NoError(t, err)
	assert.Empty(t, pts)
}

func TestClosedClient(t *testing.T) {
	c, _ := startServer(t)
	require.NoError(t, c.Close())
	_, err := c.RandomPoints(1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFacadeOverRemote(t *testing.T) {
	c, e := startServer(t)
	nav := navmesh.New(c, &simplify.Clustering{Dir: t.TempDir()}, axis.NewNormalizer(axis.ZUp),
		navmesh.WithLogger(zaptest.NewLogger(t)))

	floor := geom.Mesh{
		Vertices:  []geom.Vec3{{0, 0, 0}, {4, 0, 0}, {4, 4, 0}, {0, 4, 0}},
		Triangles: []geom.Triangle{{0, 1, 2}, {0, 2, 3}},
	}
	require.NoError(t, nav.LoadMesh(floor))
	require.NoError(t, nav.Build(navmesh.DefaultSettings()))
	assert.Equal(t, geom.Vec3{4, 0, -4}, e.Mesh().Vertices[2])

	poly, err := nav.Polygons()
	require.NoError(t, err)
	assert.Equal(t, 2, poly.TriCount())
	for _, v := range poly.Vertices {
		assert.Equal(t, 0.0, v[2])
	}
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dialWithOrigin(url, origin string) (*websocket.Conn, int, error) {
	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{origin}})
	code := 0
	if resp != nil {
		code = resp.StatusCode
	}
	return conn, code, err
}

func TestForeignOriginRejected(t *testing.T) {
	ts := httptest.NewServer(NewServer(preview.New(), t.TempDir(), zaptest.NewLogger(t)).Handler())
	defer ts.Close()

	_, code, err := dialWithOrigin(wsURL(ts), "http://attacker.example")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, code)

	conn, _, err := dialWithOrigin(wsURL(ts), ts.URL)
	require.NoError(t, err)
	conn.Close()
}

func TestAllowedOrigins(t *testing.T) {
	srv := NewServer(preview.New(), t.TempDir(), zaptest.NewLogger(t),
		WithAllowedOrigins("http://viewer.example/"))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := dialWithOrigin(wsURL(ts), "http://viewer.example")
	require.NoError(t, err)
	conn.Close()

	_, code, err := dialWithOrigin(wsURL(ts), "http://attacker.example")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestCloseAfterTransportFailure(t *testing.T) {
	up := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, wsURL(ts), zaptest.NewLogger(t), WithTimeouts(time.Second, time.Second))
	require.NoError(t, err)

	_, err = c.RandomPoints(1)
	require.Error(t, err)
	_, err = c.RandomPoints(1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, c.Close())
}

// withDefault puts the default value of key back into params.
func withDefault(params map[string]float64, key string) map[string]float64 {
	out := make(map[string]float64, len(params))
	for k, v := range params {
		out[k] = v
	}
	out[key] = navmesh.DefaultSettings().Params()[key]
	return out
}

func TestBuildRejectsUnknownSettings(t *testing.T) {
	c, e := startServer(t)
	p := filepath.Join(t.TempDir(), "in.obj")
	require.NoError(t, objfile.WriteFile(p, square))
	require.NoError(t, c.LoadObj(p))

	_, err := c.Build(map[string]float64{"cellsize": 0.3})
	assert.ErrorIs(t, err, ErrRemote)
	assert.Contains(t, err.Error(), "unknown build settings: cellsize")

	_, err = c.Build(map[string]float64{"vertsPerPoly": 2})
	assert.ErrorIs(t, err, ErrRemote)
	assert.Equal(t, []string{"load"}, e.Calls())
}
