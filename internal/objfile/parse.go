package objfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gorustyt/scenenav/internal/geom"
)

func parseVertex(m *geom.Mesh, ss []string) error {
	if len(ss) < 3 {
		return fmt.Errorf("vertex needs 3 coordinates, got %d", len(ss))
	}
	var v geom.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(ss[i], 64)
		if err != nil {
			return err
		}
		v[i] = f
	}
	m.Vertices = append(m.Vertices, v)
	return nil
}

func parseFace(m *geom.Mesh, ss []string) error {
	n := len(m.Vertices)
	data := make([]int, 0, len(ss))
	for _, s := range ss {
		// v, v/vt, v//vn, v/vt/vn
		if i := strings.IndexByte(s, '/'); i >= 0 {
			s = s[:i]
		}
		vi, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		switch {
		case vi < 0:
			vi += n
		case vi > 0:
			vi--
		default:
			return fmt.Errorf("face index 0")
		}
		if vi < 0 || vi >= n {
			return fmt.Errorf("face index %s out of range (%d vertices)", s, n)
		}
		data = append(data, vi)
	}
	for i := 2; i < len(data); i++ {
		m.Triangles = append(m.Triangles, geom.Triangle{data[0], data[i-1], data[i]})
	}
	return nil
}
