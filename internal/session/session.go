// Package session drives the navmesh pipeline for one stage: it owns the
// facade and the results of the last queries so that a presentation layer
// only issues actions and renders what comes back.
package session

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gorustyt/scenenav/internal/axis"
	"github.com/gorustyt/scenenav/internal/contour"
	"github.com/gorustyt/scenenav/internal/extract"
	"github.com/gorustyt/scenenav/internal/geom"
	"github.com/gorustyt/scenenav/internal/navmesh"
	"github.com/gorustyt/scenenav/internal/scene"
	"github.com/gorustyt/scenenav/internal/simplify"
)

var (
	ErrNoSelection   = errors.New("session: nothing selected")
	ErrNoContours    = errors.New("session: no contours fetched")
	ErrNeedTwoPoints = errors.New("session: need at least two random points")
)

// Style carries display hints for the presentation layer.
type Style struct {
	Color   [3]float32
	Opacity float32
	Width   float32
}

var (
	NavmeshStyle = Style{Color: [3]float32{0.051208995, 0.774935, 0.94585985}, Opacity: 0.89}
	WallStyle    = Style{Color: [3]float32{0.30877593, 0.64968157, 0.18828352}, Opacity: 0.89}
	OutlineStyle = Style{Color: [3]float32{0.8, 0.8, 0.8}, Opacity: 1, Width: 0.2}
	PathStyle    = Style{Color: [3]float32{0, 1, 0}, Opacity: 1}
	PointStyle   = Style{Color: [3]float32{1, 0, 0}, Opacity: 1}
)

// Result is a snapshot of the last computed outputs, in scene convention.
type Result struct {
	Input        geom.Mesh
	Navmesh      geom.Mesh
	RandomPoints []geom.Vec3
	Path         []geom.Vec3
	Contour      contour.Contour
	Walls        geom.Mesh
	Outline      contour.Outline
	// Styles holds the display style of every layer computed so far; a
	// zero Style marks a layer not yet produced.
	Styles Styles
}

type Styles struct {
	Navmesh Style
	Walls   Style
	Outline Style
	Path    Style
	Points  Style
}

type Session struct {
	stage     scene.Stage
	norm      axis.Normalizer
	nav       *navmesh.Navmesh
	extractor *extract.Extractor
	log       *zap.Logger

	res Result
}

type Config struct {
	// UpAxis overrides the stage's declared convention when set.
	UpAxis     *axis.Convention
	Percentage float64
	TempDir    string
}

// New creates a session over stage using engine e and simplifier s.
func New(stage scene.Stage, e navmesh.Engine, s simplify.Simplifier, cfg Config, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	conv := stage.UpAxis()
	if cfg.UpAxis != nil {
		conv = *cfg.UpAxis
	}
	norm := axis.NewNormalizer(conv)
	pct := cfg.Percentage
	if pct == 0 {
		pct = simplify.DefaultPercentage
	}
	ing := &navmesh.ObjIngestor{Simplifier: s, Percentage: pct, TempDir: cfg.TempDir, Log: log}
	return &Session{
		stage:     stage,
		norm:      norm,
		nav:       navmesh.New(e, s, norm, navmesh.WithLogger(log), navmesh.WithIngestor(ing)),
		extractor: extract.New(log),
		log:       log,
	}
}

func (s *Session) Navmesh() *navmesh.Navmesh { return s.nav }
func (s *Session) Result() Result            { return s.res }

// AssignSelection extracts the stage selection and loads it.
func (s *Session) AssignSelection() error {
	sel := s.stage.Selection()
	if len(sel) == 0 {
		return ErrNoSelection
	}
	return s.AssignPaths(sel...)
}

// AssignPaths extracts the given prims and loads them. An empty path list
// extracts the whole stage.
func (s *Session) AssignPaths(paths ...string) error {
	var (
		m   geom.Mesh
		err error
	)
	if len(paths) == 0 {
		m, err = s.extractor.ExtractStage(s.stage)
	} else {
		nodes := make([]scene.Node, 0, len(paths))
		for _, p := range paths {
			n, ok := s.stage.Lookup(p)
			if !ok {
				return fmt.Errorf("session: no prim at %s", p)
			}
			nodes = append(nodes, n)
		}
		m, err = s.extractor.ExtractAll(nodes)
	}
	if err != nil {
		if errors.Is(err, extract.ErrNoMesh) {
			s.log.Warn("no mesh found", zap.Strings("paths", paths))
		}
		return err
	}
	s.res = Result{}
	if err := s.nav.LoadMesh(m); err != nil {
		return err
	}
	s.res.Input = m
	return nil
}

// Build merges o onto the default settings and builds. Cached query
// results are dropped.
func (s *Session) Build(o navmesh.Overrides) error {
	in := s.res.Input
	s.res = Result{Input: in}
	return s.nav.Build(navmesh.NewSettings(o))
}

func (s *Session) RandomPoints(n int) ([]geom.Vec3, error) {
	pts, err := s.nav.RandomPoints(n)
	if err != nil {
		return nil, err
	}
	s.res.RandomPoints = pts
	s.res.Styles.Points = PointStyle
	return pts, nil
}

// SamplePath finds a path between the first two cached random points.
func (s *Session) SamplePath() ([]geom.Vec3, error) {
	if len(s.res.RandomPoints) < 2 {
		return nil, ErrNeedTwoPoints
	}
	p := s.res.RandomPoints
	path, err := s.nav.FindPaths(p[:1], p[1:2], navmesh.DefaultPathOptions())
	if err != nil {
		return nil, err
	}
	s.res.Path = path
	s.res.Styles.Path = PathStyle
	return path, nil
}

func (s *Session) NavmeshMesh() (geom.Mesh, error) {
	m, err := s.nav.Polygons()
	if err != nil {
		return geom.Mesh{}, err
	}
	s.res.Navmesh = m
	s.res.Styles.Navmesh = NavmeshStyle
	return m, nil
}

// Outline fetches the contours and turns each boundary edge into its own
// segment.
func (s *Session) Outline() (contour.Outline, error) {
	c, err := s.nav.Contours()
	if err != nil {
		return nil, err
	}
	o, err := contour.BuildOutline(c.Vertices, c.Edges)
	if err != nil {
		return nil, err
	}
	s.res.Contour = c
	s.res.Outline = o
	s.res.Styles.Outline = OutlineStyle
	return o, nil
}

// Walls extrudes the cached contour edges by height along the scene's
// vertical axis.
func (s *Session) Walls(height float64) (geom.Mesh, error) {
	c := s.res.Contour
	if c.Empty() {
		return geom.Mesh{}, ErrNoContours
	}
	up := s.norm.FromEnginePoint(geom.Up).Mul(height)
	m, err := contour.ExtrudeWallsAlong(c.Vertices, c.Edges, up)
	if err != nil {
		return geom.Mesh{}, err
	}
	s.res.Walls = m
	s.res.Styles.Walls = WallStyle
	return m, nil
}
