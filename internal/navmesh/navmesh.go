// Package navmesh owns one navmesh engine and mediates mesh ingestion,
// builds and queries, converting every point between the scene's up-axis
// convention and engine space.
package navmesh

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gorustyt/scenenav/internal/axis"
	"github.com/gorustyt/scenenav/internal/contour"
	"github.com/gorustyt/scenenav/internal/geom"
	"github.com/gorustyt/scenenav/internal/simplify"
)

var (
	ErrEmptyMesh    = errors.New("navmesh: empty input mesh")
	ErrNoMesh       = errors.New("navmesh: no mesh loaded")
	ErrNotBuilt     = errors.New("navmesh: not built")
	ErrBuildFailed  = errors.New("navmesh: build failed")
	ErrExternalTool = errors.New("navmesh: external tool failure")
)

// PathOptions are passed through to the engine path search. SearchSize is
// the query box half extent in engine space.
type PathOptions struct {
	SearchSize geom.Vec3
	Mode       int
	Style      int
}

func DefaultPathOptions() PathOptions {
	return PathOptions{SearchSize: geom.Vec3{10, 10, 10}, Mode: 2, Style: 0}
}

type Stats struct {
	InputVerts    int
	InputTris     int
	BuildDuration time.Duration
	Settings      Settings
}

// Navmesh is single owner: no method may run concurrently with another.
type Navmesh struct {
	engine   Engine
	ingestor Ingestor
	norm     axis.Normalizer
	log      *zap.Logger

	loaded bool
	built  bool
	stats  Stats
}

type Option func(*Navmesh)

func WithLogger(l *zap.Logger) Option {
	return func(n *Navmesh) { n.log = l }
}

func WithIngestor(in Ingestor) Option {
	return func(n *Navmesh) { n.ingestor = in }
}

// New wires a facade with the OBJ round-trip ingestor around s.
func New(e Engine, s simplify.Simplifier, norm axis.Normalizer, opts ...Option) *Navmesh {
	n := &Navmesh{
		engine: e,
		norm:   norm,
		log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(n)
	}
	if n.ingestor == nil {
		n.ingestor = &ObjIngestor{Simplifier: s, Percentage: simplify.DefaultPercentage, Log: n.log}
	}
	return n
}

func (n *Navmesh) Built() bool                 { return n.built }
func (n *Navmesh) Loaded() bool                { return n.loaded }
func (n *Navmesh) Stats() Stats                { return n.stats }
func (n *Navmesh) Normalizer() axis.Normalizer { return n.norm }

// LoadMesh hands m (in scene convention) to the engine. An empty mesh is a
// no-op reported as ErrEmptyMesh. Any previous build is discarded.
func (n *Navmesh) LoadMesh(m geom.Mesh) error {
	if m.Empty() {
		return ErrEmptyMesh
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("navmesh: invalid mesh: %w", err)
	}
	n.loaded, n.built = false, false

	start := time.Now()
	if err := n.ingestor.Ingest(n.engine, n.norm.MeshToEngine(m)); err != nil {
		n.log.Error("mesh load failed", zap.Error(err))
		return err
	}
	n.loaded = true
	n.stats = Stats{InputVerts: m.VertCount(), InputTris: m.TriCount()}
	n.log.Info("mesh loaded",
		zap.Int("verts", m.VertCount()),
		zap.Int("tris", m.TriCount()),
		zap.Stringer("upAxis", n.norm.Convention()),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Build runs the engine with s. built is set only when the engine reports
// success.
func (n *Navmesh) Build(s Settings) error {
	if !n.loaded {
		return ErrNoMesh
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("navmesh: %w", err)
	}
	n.built = false

	start := time.Now()
	ok, err := n.engine.Build(s.Params())
	if err != nil {
		n.log.Error("navmesh build failed", zap.Error(err))
		return fmt.Errorf("%w: build: %w", ErrExternalTool, err)
	}
	if !ok {
		n.log.Warn("navmesh build reported failure")
		return ErrBuildFailed
	}
	n.built = true
	n.stats.BuildDuration = time.Since(start)
	n.stats.Settings = s
	n.log.Info("navmesh built",
		zap.Duration("took", n.stats.BuildDuration),
		zap.Float64("cellSize", s.CellSize),
		zap.Stringer("partition", s.PartitionType))
	return nil
}

func (n *Navmesh) RandomPoints(count int) ([]geom.Vec3, error) {
	if !n.built {
		return nil, ErrNotBuilt
	}
	if count <= 0 {
		return nil, nil
	}
	pts, err := n.engine.RandomPoints(count)
	if err != nil {
		return nil, fmt.Errorf("%w: random points: %w", ErrExternalTool, err)
	}
	return n.norm.FromEngine(pts), nil
}

func (n *Navmesh) FindPaths(starts, ends []geom.Vec3, opt PathOptions) ([]geom.Vec3, error) {
	return n.findPaths(starts, ends, opt, n.engine.FindPaths)
}

// FindPathsParallel is FindPaths with the searches spread over engine
// threads.
func (n *Navmesh) FindPathsParallel(starts, ends []geom.Vec3, opt PathOptions) ([]geom.Vec3, error) {
	return n.findPaths(starts, ends, opt, n.engine.FindPathsParallel)
}

type pathFunc func(starts, ends []geom.Vec3, searchSize geom.Vec3, mode, style int) ([]geom.Vec3, error)

func (n *Navmesh) findPaths(starts, ends []geom.Vec3, opt PathOptions, find pathFunc) ([]geom.Vec3, error) {
	if !n.built {
		return nil, ErrNotBuilt
	}
	if len(starts) != len(ends) {
		return nil, fmt.Errorf("navmesh: %d starts but %d ends", len(starts), len(ends))
	}
	if len(starts) == 0 {
		return nil, nil
	}
	pts, err := find(n.norm.ToEngine(starts), n.norm.ToEngine(ends), opt.SearchSize, opt.Mode, opt.Style)
	if err != nil {
		return nil, fmt.Errorf("%w: find paths: %w", ErrExternalTool, err)
	}
	return n.norm.FromEngine(pts), nil
}

// Contours returns the simplified region contours with their boundary
// edges.
func (n *Navmesh) Contours() (contour.Contour, error) {
	return n.contours(n.engine.Contours)
}

func (n *Navmesh) RawContours() (contour.Contour, error) {
	return n.contours(n.engine.RawContours)
}

func (n *Navmesh) contours(get func() ([]geom.Vec3, []int, error)) (contour.Contour, error) {
	if !n.built {
		return contour.Contour{}, ErrNotBuilt
	}
	verts, sizes, err := get()
	if err != nil {
		return contour.Contour{}, fmt.Errorf("%w: contours: %w", ErrExternalTool, err)
	}
	c, err := contour.New(n.norm.FromEngine(verts))
	if err != nil {
		n.log.Error("engine returned malformed contours", zap.Int("verts", len(verts)), zap.Error(err))
		return contour.Contour{}, err
	}
	c.Sizes = sizes
	return c, nil
}

// Polygons returns the navmesh surface as triangle soup.
func (n *Navmesh) Polygons() (geom.Mesh, error) {
	if !n.built {
		return geom.Mesh{}, ErrNotBuilt
	}
	verts, err := n.engine.TrianglePolygons()
	if err != nil {
		return geom.Mesh{}, fmt.Errorf("%w: polygons: %w", ErrExternalTool, err)
	}
	return contour.Soup(n.norm.FromEngine(verts))
}
