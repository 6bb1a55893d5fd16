// Package contour post-processes navmesh engine output into renderable
// geometry: boundary edges, extruded walls, outline segments and the
// walkable surface soup.
package contour

import (
	"errors"
	"fmt"

	"github.com/gorustyt/scenenav/internal/geom"
)

var ErrOddContour = errors.New("contour: odd boundary vertex count")

// Contour vertices come in boundary segment pairs: edge k joins vertex 2k
// and vertex 2k+1.
type Contour struct {
	Vertices []geom.Vec3
	Edges    []geom.Edge
	// Sizes is the per-contour vertex count reported by the engine, if any.
	Sizes []int
}

func New(vertices []geom.Vec3) (Contour, error) {
	edges, err := Edges(vertices)
	if err != nil {
		return Contour{}, err
	}
	return Contour{Vertices: vertices, Edges: edges}, nil
}

func (c Contour) Empty() bool { return len(c.Edges) == 0 }

// Edges pairs consecutive vertices into (2k, 2k+1).
func Edges(vertices []geom.Vec3) ([]geom.Edge, error) {
	if len(vertices)%2 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrOddContour, len(vertices))
	}
	edges := make([]geom.Edge, 0, len(vertices)/2)
	for k := 0; k < len(vertices)/2; k++ {
		edges = append(edges, geom.Edge{2 * k, 2*k + 1})
	}
	return edges, nil
}

func checkEdge(vertices []geom.Vec3, k int, e geom.Edge) error {
	for _, i := range e {
		if i < 0 || i >= len(vertices) {
			return fmt.Errorf("contour: edge %d: index %d out of range [0,%d)", k, i, len(vertices))
		}
	}
	return nil
}

// Soup indexes a flat triangle vertex stream as (3k, 3k+1, 3k+2) without
// welding.
func Soup(vertices []geom.Vec3) (geom.Mesh, error) {
	if len(vertices)%3 != 0 {
		return geom.Mesh{}, fmt.Errorf("contour: triangle stream of %d vertices", len(vertices))
	}
	m := geom.Mesh{Vertices: vertices, Triangles: make([]geom.Triangle, 0, len(vertices)/3)}
	for i := 0; i < len(vertices); i += 3 {
		m.Triangles = append(m.Triangles, geom.Triangle{i, i + 1, i + 2})
	}
	return m, nil
}
