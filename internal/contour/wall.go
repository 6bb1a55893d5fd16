package contour

import "github.com/gorustyt/scenenav/internal/geom"

// ExtrudeWalls raises every edge by height along +Y and welds the result.
func ExtrudeWalls(vertices []geom.Vec3, edges []geom.Edge, height float64) (geom.Mesh, error) {
	return ExtrudeWallsAlong(vertices, edges, geom.Up.Mul(height))
}

// ExtrudeWallsAlong emits the quads (A,B,B') and (A,B',A') with X' = X+offset
// for each edge, then merges exactly equal corners.
func ExtrudeWallsAlong(vertices []geom.Vec3, edges []geom.Edge, offset geom.Vec3) (geom.Mesh, error) {
	corners := make([]geom.Vec3, 0, len(edges)*6)
	for k, e := range edges {
		if err := checkEdge(vertices, k, e); err != nil {
			return geom.Mesh{}, err
		}
		a, b := vertices[e[0]], vertices[e[1]]
		a2, b2 := a.Add(offset), b.Add(offset)
		corners = append(corners, a, b, b2, a, b2, a2)
	}
	unique, remap := geom.Weld(corners)
	m := geom.Mesh{Vertices: unique, Triangles: make([]geom.Triangle, 0, len(edges)*2)}
	for i := 0; i < len(corners); i += 3 {
		m.Triangles = append(m.Triangles, geom.Triangle{remap[i], remap[i+1], remap[i+2]})
	}
	return m, nil
}
