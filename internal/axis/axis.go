package axis

import (
	"fmt"
	"strings"

	"github.com/gorustyt/scenenav/internal/geom"
)

// Convention names the world axis treated as vertical.
type Convention int

const (
	YUp Convention = iota
	ZUp
)

// Engine is the fixed convention of the navmesh engine.
const Engine = YUp

func (c Convention) String() string {
	switch c {
	case YUp:
		return "Y"
	case ZUp:
		return "Z"
	}
	return fmt.Sprintf("Convention(%d)", int(c))
}

// ParseConvention accepts the scene up-axis tokens "Y" and "Z" as well as
// "y-up"/"z-up" spellings.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "y-up", "yup", "y_up":
		return YUp, nil
	case "z", "z-up", "zup", "z_up":
		return ZUp, nil
	}
	return YUp, fmt.Errorf("unknown up axis %q", s)
}

func (c Convention) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Convention) UnmarshalText(b []byte) error {
	v, err := ParseConvention(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Normalizer converts points between a scene convention and engine space.
type Normalizer struct {
	conv Convention
}

func NewNormalizer(c Convention) Normalizer {
	return Normalizer{conv: c}
}

func (n Normalizer) Convention() Convention { return n.conv }

func (n Normalizer) ToEnginePoint(p geom.Vec3) geom.Vec3 {
	if n.conv == ZUp {
		return geom.Vec3{p[0], p[2], -p[1]}
	}
	return p
}

func (n Normalizer) FromEnginePoint(p geom.Vec3) geom.Vec3 {
	if n.conv == ZUp {
		return geom.Vec3{p[0], -p[2], p[1]}
	}
	return p
}

// ToEngine returns a new slice in engine space.
func (n Normalizer) ToEngine(pts []geom.Vec3) []geom.Vec3 {
	return n.mapPoints(pts, n.ToEnginePoint)
}

// FromEngine returns a new slice in the scene convention.
func (n Normalizer) FromEngine(pts []geom.Vec3) []geom.Vec3 {
	return n.mapPoints(pts, n.FromEnginePoint)
}

func (n Normalizer) mapPoints(pts []geom.Vec3, f func(geom.Vec3) geom.Vec3) []geom.Vec3 {
	if pts == nil {
		return nil
	}
	res := make([]geom.Vec3, len(pts))
	for i, p := range pts {
		res[i] = f(p)
	}
	return res
}

// MeshToEngine converts the vertices of m. Triangles are shared, not copied.
func (n Normalizer) MeshToEngine(m geom.Mesh) geom.Mesh {
	return geom.Mesh{Vertices: n.ToEngine(m.Vertices), Triangles: m.Triangles}
}
