// Package simplify decimates OBJ meshes before they are handed to the
// navmesh engine.
package simplify

import (
	"errors"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"

	"github.com/gorustyt/scenenav/internal/geom"
	"github.com/gorustyt/scenenav/internal/objfile"
)

// DefaultPercentage is the clustering cell size as a percentage of the
// bounding box diagonal.
const DefaultPercentage = 0.110017

var ErrEmptyInput = errors.New("simplify: empty mesh")

// Simplifier reads the mesh at path and returns the path of a new, decimated
// OBJ file. The caller owns the returned file.
type Simplifier interface {
	Simplify(path string, percentage float64) (string, error)
}

// Clustering snaps vertices to a uniform grid and keeps one averaged vertex
// per occupied cell.
type Clustering struct {
	// Dir receives output files; empty means os.TempDir.
	Dir string
	Log *zap.Logger
}

func (c *Clustering) Simplify(path string, percentage float64) (string, error) {
	if percentage <= 0 || math.IsNaN(percentage) {
		return "", fmt.Errorf("simplify: percentage must be positive, got %v", percentage)
	}
	in, err := objfile.ReadFile(path)
	if err != nil {
		return "", err
	}
	if in.Empty() {
		return "", fmt.Errorf("%s: %w", path, ErrEmptyInput)
	}
	out := Cluster(in, percentage)
	if out.Empty() {
		return "", fmt.Errorf("%s: everything collapsed at %v%%: %w", path, percentage, ErrEmptyInput)
	}

	f, err := os.CreateTemp(c.Dir, "simplified-*.obj")
	if err != nil {
		return "", err
	}
	if err := objfile.Write(f, out); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	if c.Log != nil {
		c.Log.Debug("mesh decimated",
			zap.String("in", path),
			zap.String("out", f.Name()),
			zap.Int("vertsBefore", in.VertCount()),
			zap.Int("vertsAfter", out.VertCount()),
			zap.Int("trisBefore", in.TriCount()),
			zap.Int("trisAfter", out.TriCount()))
	}
	return f.Name(), nil
}

type cellKey [3]int64

// Cluster decimates m with a grid whose cell edge is percentage% of the
// bounding box diagonal. Triangles that collapse or repeat are dropped.
func Cluster(m geom.Mesh, percentage float64) geom.Mesh {
	bmin, bmax := m.Bounds()
	cell := bmax.Sub(bmin).Len() * percentage / 100
	if cell <= 0 {
		return m
	}

	cells := make(map[cellKey]int)
	var sums []geom.Vec3
	var counts []int
	remap := make([]int, len(m.Vertices))
	for i, v := range m.Vertices {
		k := cellKey{
			int64(math.Floor((v[0] - bmin[0]) / cell)),
			int64(math.Floor((v[1] - bmin[1]) / cell)),
			int64(math.Floor((v[2] - bmin[2]) / cell)),
		}
		idx, ok := cells[k]
		if !ok {
			idx = len(sums)
			cells[k] = idx
			sums = append(sums, geom.Vec3{})
			counts = append(counts, 0)
		}
		sums[idx] = sums[idx].Add(v)
		counts[idx]++
		remap[i] = idx
	}

	var out geom.Mesh
	out.Vertices = make([]geom.Vec3, len(sums))
	for i, s := range sums {
		out.Vertices[i] = s.Mul(1 / float64(counts[i]))
	}
	seen := make(map[geom.Triangle]bool)
	for _, t := range m.Triangles {
		a, b, c := remap[t[0]], remap[t[1]], remap[t[2]]
		if a == b || b == c || a == c {
			continue
		}
		key := canonical(a, b, c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Triangles = append(out.Triangles, geom.Triangle{a, b, c})
	}
	return compact(out)
}

// canonical rotates the triangle so the smallest index comes first, keeping
// the winding.
func canonical(a, b, c int) geom.Triangle {
	switch {
	case a <= b && a <= c:
		return geom.Triangle{a, b, c}
	case b <= a && b <= c:
		return geom.Triangle{b, c, a}
	}
	return geom.Triangle{c, a, b}
}

// compact drops vertices that no triangle references.
func compact(m geom.Mesh) geom.Mesh {
	used := make([]int, len(m.Vertices))
	for i := range used {
		used[i] = -1
	}
	var out geom.Mesh
	for _, t := range m.Triangles {
		var nt geom.Triangle
		for j, idx := range t {
			if used[idx] < 0 {
				used[idx] = len(out.Vertices)
				out.Vertices = append(out.Vertices, m.Vertices[idx])
			}
			nt[j] = used[idx]
		}
		out.Triangles = append(out.Triangles, nt)
	}
	return out
}
