// Package preview is an in-process navmesh engine that treats the loaded
// mesh itself as the walkable surface. It needs no native library, which
// makes it the default backend for dry runs.
package preview

import (
	"errors"
	"sort"
	"sync"

	"github.com/gorustyt/scenenav/internal/geom"
	"github.com/gorustyt/scenenav/internal/objfile"
)

var ErrNoInput = errors.New("preview: no input mesh")

type Engine struct {
	mu     sync.Mutex
	mesh   geom.Mesh
	built  bool
	params map[string]float64
	calls  []string
	// FailBuild makes Build report failure without an error.
	FailBuild bool
}

func New() *Engine { return &Engine{} }

func (e *Engine) record(op string) {
	e.calls = append(e.calls, op)
}

// Calls lists the operations received so far.
func (e *Engine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

// Params returns the parameters of the last build.
func (e *Engine) Params() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

func (e *Engine) LoadObj(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("load")
	m, err := objfile.ReadFile(path)
	if err != nil {
		return err
	}
	e.mesh, e.built = m, false
	return nil
}

func (e *Engine) Mesh() geom.Mesh {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mesh
}

func (e *Engine) Build(params map[string]float64) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("build")
	if e.mesh.Empty() {
		return false, ErrNoInput
	}
	e.params = params
	e.built = !e.FailBuild
	return e.built, nil
}

// RandomPoints cycles through triangle centroids.
func (e *Engine) RandomPoints(n int) ([]geom.Vec3, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("random")
	if !e.built || len(e.mesh.Triangles) == 0 {
		return nil, nil
	}
	pts := make([]geom.Vec3, 0, n)
	for i := 0; i < n; i++ {
		t := e.mesh.Triangles[i%len(e.mesh.Triangles)]
		c := e.mesh.Vertices[t[0]].Add(e.mesh.Vertices[t[1]]).Add(e.mesh.Vertices[t[2]]).Mul(1.0 / 3)
		pts = append(pts, c)
	}
	return pts, nil
}

// FindPaths returns start and end of every pair as a straight path.
func (e *Engine) FindPaths(starts, ends []geom.Vec3, _ geom.Vec3, _, _ int) ([]geom.Vec3, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("paths")
	return straight(starts, ends), nil
}

func (e *Engine) FindPathsParallel(starts, ends []geom.Vec3, _ geom.Vec3, _, _ int) ([]geom.Vec3, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("pathsParallel")
	return straight(starts, ends), nil
}

func straight(starts, ends []geom.Vec3) []geom.Vec3 {
	var res []geom.Vec3
	for i := range starts {
		res = append(res, starts[i], ends[i])
	}
	return res
}

// Contours emits every edge used by exactly one triangle as a segment pair.
func (e *Engine) Contours() ([]geom.Vec3, []int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("contours")
	v := e.boundary()
	return v, []int{len(v)}, nil
}

func (e *Engine) RawContours() ([]geom.Vec3, []int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("rawContours")
	v := e.boundary()
	return v, []int{len(v)}, nil
}

func (e *Engine) boundary() []geom.Vec3 {
	type key [2]int
	count := map[key]int{}
	var order []geom.Edge
	for _, t := range e.mesh.Triangles {
		for i := 0; i < 3; i++ {
			a, b := t[i], t[(i+1)%3]
			k := key{min(a, b), max(a, b)}
			if count[k] == 0 {
				order = append(order, geom.Edge{a, b})
			}
			count[k]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i][0] < order[j][0] })
	var res []geom.Vec3
	for _, ed := range order {
		if count[key{min(ed[0], ed[1]), max(ed[0], ed[1])}] == 1 {
			res = append(res, e.mesh.Vertices[ed[0]], e.mesh.Vertices[ed[1]])
		}
	}
	return res
}

func (e *Engine) TrianglePolygons() ([]geom.Vec3, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("polygons")
	var res []geom.Vec3
	for _, t := range e.mesh.Triangles {
		res = append(res, e.mesh.Vertices[t[0]], e.mesh.Vertices[t[1]], e.mesh.Vertices[t[2]])
	}
	return res, nil
}
