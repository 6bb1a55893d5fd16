package geom

import (
	"fmt"
	"sort"
)

// Mesh is an indexed triangle mesh. Triangles only reference the mesh's own
// vertex array.
type Mesh struct {
	Vertices  []Vec3
	Triangles []Triangle
}

func (m Mesh) Empty() bool {
	return len(m.Vertices) == 0 || len(m.Triangles) == 0
}

func (m Mesh) VertCount() int { return len(m.Vertices) }
func (m Mesh) TriCount() int  { return len(m.Triangles) }

// Validate reports the first triangle that indexes outside the vertex array.
func (m Mesh) Validate() error {
	n := len(m.Vertices)
	for i, t := range m.Triangles {
		for _, idx := range t {
			if idx < 0 || idx >= n {
				return fmt.Errorf("triangle %d: index %d out of range [0,%d)", i, idx, n)
			}
		}
	}
	return nil
}

// Append merges other into m, offsetting other's indices by the current
// vertex count.
func (m *Mesh) Append(other Mesh) {
	offset := len(m.Vertices)
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, t := range other.Triangles {
		m.Triangles = append(m.Triangles, Triangle{t[0] + offset, t[1] + offset, t[2] + offset})
	}
}

// Bounds returns the axis aligned bounds of the vertices. An empty mesh has
// zero bounds.
func (m Mesh) Bounds() (bmin, bmax Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	bmin, bmax = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		bmin = Vmin(bmin, v)
		bmax = Vmax(bmax, v)
	}
	return
}

// Weld merges exactly equal points. The unique points come back sorted
// lexicographically and remap[i] is the index of points[i] in unique.
func Weld(points []Vec3) (unique []Vec3, remap []int) {
	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return Less(points[order[a]], points[order[b]])
	})
	remap = make([]int, len(points))
	for k, i := range order {
		if k == 0 || points[i] != unique[len(unique)-1] {
			unique = append(unique, points[i])
		}
		remap[i] = len(unique) - 1
	}
	return unique, remap
}
