package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Vec3 = mgl64.Vec3
type Vec4 = mgl64.Vec4
type Mat4 = mgl64.Mat4

type Triangle [3]int

type Edge [2]int

// Up is the extrusion direction in engine space.
var Up = Vec3{0, 1, 0}

// / Transforms a point by a homogeneous 4x4 matrix and drops the w component.
// / @param[in]		m	The transform (column-vector convention).
// / @param[in]		p	The point in local space. [(x, y, z)]
// / @return The transformed point. [(x, y, z)]
func TransformPoint(m Mat4, p Vec3) Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

func TransformPoints(m Mat4, pts []Vec3) []Vec3 {
	res := make([]Vec3, len(pts))
	for i, p := range pts {
		res[i] = TransformPoint(m, p)
	}
	return res
}

// / Selects the minimum value of each element from the specified vectors.
func Vmin(mn, v Vec3) Vec3 {
	return Vec3{math.Min(mn[0], v[0]), math.Min(mn[1], v[1]), math.Min(mn[2], v[2])}
}

// / Selects the maximum value of each element from the specified vectors.
func Vmax(mx, v Vec3) Vec3 {
	return Vec3{math.Max(mx[0], v[0]), math.Max(mx[1], v[1]), math.Max(mx[2], v[2])}
}

// Less orders points lexicographically by x, then y, then z.
func Less(a, b Vec3) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[2] < b[2]
}
