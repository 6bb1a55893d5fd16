// Package extract turns scene sub-trees into a single world-space triangle
// mesh.
package extract

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gorustyt/scenenav/internal/geom"
	"github.com/gorustyt/scenenav/internal/scene"
)

var ErrNoMesh = errors.New("no mesh found")

// MalformedFaceError reports face buffers that disagree with each other or
// with the point array.
type MalformedFaceError struct {
	Path   string
	Face   int
	Reason string
}

func (e *MalformedFaceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("face %d: %s", e.Face, e.Reason)
	}
	return fmt.Sprintf("%s: face %d: %s", e.Path, e.Face, e.Reason)
}

type Extractor struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log}
}

// Extract converts n directly when it is a mesh, otherwise every mesh found
// below it. An empty mesh and ErrNoMesh are returned when there is none.
func (e *Extractor) Extract(n scene.Node) (geom.Mesh, error) {
	return e.ExtractAll([]scene.Node{n})
}

// ExtractAll merges the meshes of several roots into one mesh.
func (e *Extractor) ExtractAll(nodes []scene.Node) (geom.Mesh, error) {
	var prims []scene.Node
	for _, n := range nodes {
		prims = append(prims, Collect(n)...)
	}
	return e.merge(prims)
}

// ExtractStage extracts every mesh on the stage.
func (e *Extractor) ExtractStage(s scene.Stage) (geom.Mesh, error) {
	return e.Extract(s.Root())
}

// Collect returns n itself when it is a mesh, else every mesh descendant.
func Collect(n scene.Node) []scene.Node {
	if n == nil {
		return nil
	}
	if n.IsMesh() {
		return []scene.Node{n}
	}
	var res []scene.Node
	scene.Walk(n, func(c scene.Node) {
		if c.IsMesh() {
			res = append(res, c)
		}
	})
	return res
}

func (e *Extractor) merge(prims []scene.Node) (geom.Mesh, error) {
	var out geom.Mesh
	for _, p := range prims {
		m, err := Convert(p)
		if err != nil {
			return geom.Mesh{}, err
		}
		e.log.Debug("converted mesh prim",
			zap.String("path", p.Path()),
			zap.Int("points", m.VertCount()),
			zap.Int("triangles", m.TriCount()))
		out.Append(m)
	}
	if out.Empty() {
		return geom.Mesh{}, ErrNoMesh
	}
	return out, nil
}

// Convert triangulates one mesh prim and moves its points to world space.
func Convert(n scene.Node) (geom.Mesh, error) {
	md, ok := n.MeshData()
	if !ok || len(md.FaceVertexIndices) == 0 {
		return geom.Mesh{}, nil
	}
	tris, err := Triangulate(md.FaceVertexIndices, md.FaceVertexCounts)
	if err != nil {
		var mf *MalformedFaceError
		if errors.As(err, &mf) {
			mf.Path = n.Path()
		}
		return geom.Mesh{}, err
	}
	for i, t := range tris {
		for _, idx := range t {
			if idx < 0 || idx >= len(md.Points) {
				return geom.Mesh{}, &MalformedFaceError{
					Path:   n.Path(),
					Face:   i,
					Reason: fmt.Sprintf("point index %d out of range [0,%d)", idx, len(md.Points)),
				}
			}
		}
	}
	return geom.Mesh{
		Vertices:  geom.TransformPoints(n.WorldTransform(), md.Points),
		Triangles: tris,
	}, nil
}

// Triangulate fan-triangulates faces given as a flat index list and
// per-face vertex counts. Faces with fewer than three vertices are dropped.
// The counts must consume the index list exactly.
func Triangulate(indices, counts []int) ([]geom.Triangle, error) {
	var tris []geom.Triangle
	start := 0
	for f, c := range counts {
		if c < 0 {
			return nil, &MalformedFaceError{Face: f, Reason: fmt.Sprintf("negative vertex count %d", c)}
		}
		end := start + c
		if end > len(indices) {
			return nil, &MalformedFaceError{Face: f, Reason: fmt.Sprintf("needs %d indices, %d left", c, len(indices)-start)}
		}
		face := indices[start:end]
		start = end
		if len(face) < 3 {
			continue
		}
		v0 := face[0]
		for i := 1; i < len(face)-1; i++ {
			tris = append(tris, geom.Triangle{v0, face[i], face[i+1]})
		}
	}
	if start != len(indices) {
		return nil, &MalformedFaceError{Face: len(counts), Reason: fmt.Sprintf("%d indices not covered by face counts", len(indices)-start)}
	}
	return tris, nil
}
