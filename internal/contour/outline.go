package contour

import "github.com/gorustyt/scenenav/internal/geom"

type Segment [2]geom.Vec3

// Outline holds one independent curve per contour edge.
type Outline []Segment

// BuildOutline emits a two point segment for every edge. Edges sharing an
// endpoint are not joined.
func BuildOutline(vertices []geom.Vec3, edges []geom.Edge) (Outline, error) {
	out := make(Outline, 0, len(edges))
	for k, e := range edges {
		if err := checkEdge(vertices, k, e); err != nil {
			return nil, err
		}
		out = append(out, Segment{vertices[e[0]], vertices[e[1]]})
	}
	return out, nil
}

func (o Outline) Segments() [][2]geom.Vec3 {
	res := make([][2]geom.Vec3, len(o))
	for i, s := range o {
		res[i] = s
	}
	return res
}
