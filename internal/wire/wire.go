// Package wire encodes baked geometry in protobuf wire format. Points are
// packed doubles, indices packed varints.
package wire

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/gorustyt/scenenav/internal/contour"
	"github.com/gorustyt/scenenav/internal/geom"
)

// Field numbers.
const (
	fieldPoints  protowire.Number = 1
	fieldIndices protowire.Number = 2
)

var ErrCorrupt = errors.New("wire: corrupt data")

func appendPoints(b []byte, pts []geom.Vec3) []byte {
	if len(pts) == 0 {
		return b
	}
	b = protowire.AppendTag(b, fieldPoints, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(len(pts)*3*8))
	for _, p := range pts {
		for _, c := range p {
			b = protowire.AppendFixed64(b, math.Float64bits(c))
		}
	}
	return b
}

func appendIndices(b []byte, idx []int) []byte {
	if len(idx) == 0 {
		return b
	}
	var packed []byte
	for _, i := range idx {
		packed = protowire.AppendVarint(packed, uint64(i))
	}
	b = protowire.AppendTag(b, fieldIndices, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

// decode walks the top level fields.
func decode(b []byte) (pts []geom.Vec3, idx []int, err error) {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
		}
		b = b[n:]
		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case fieldPoints:
			if len(v)%24 != 0 {
				return nil, nil, fmt.Errorf("%w: point block of %d bytes", ErrCorrupt, len(v))
			}
			for len(v) > 0 {
				var p geom.Vec3
				for i := range p {
					u, m := protowire.ConsumeFixed64(v)
					if m < 0 {
						return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(m))
					}
					p[i] = math.Float64frombits(u)
					v = v[m:]
				}
				pts = append(pts, p)
			}
		case fieldIndices:
			for len(v) > 0 {
				u, m := protowire.ConsumeVarint(v)
				if m < 0 {
					return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(m))
				}
				if u > math.MaxInt32 {
					return nil, nil, fmt.Errorf("%w: index %d", ErrCorrupt, u)
				}
				idx = append(idx, int(u))
				v = v[m:]
			}
		}
	}
	return pts, idx, nil
}

func EncodeMesh(m geom.Mesh) []byte {
	idx := make([]int, 0, len(m.Triangles)*3)
	for _, t := range m.Triangles {
		idx = append(idx, t[0], t[1], t[2])
	}
	return appendIndices(appendPoints(nil, m.Vertices), idx)
}

func DecodeMesh(b []byte) (geom.Mesh, error) {
	pts, idx, err := decode(b)
	if err != nil {
		return geom.Mesh{}, err
	}
	if len(idx)%3 != 0 {
		return geom.Mesh{}, fmt.Errorf("%w: %d triangle indices", ErrCorrupt, len(idx))
	}
	m := geom.Mesh{Vertices: pts}
	for i := 0; i < len(idx); i += 3 {
		m.Triangles = append(m.Triangles, geom.Triangle{idx[i], idx[i+1], idx[i+2]})
	}
	if err := m.Validate(); err != nil {
		return geom.Mesh{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return m, nil
}

func EncodePoints(pts []geom.Vec3) []byte {
	return appendPoints(nil, pts)
}

func DecodePoints(b []byte) ([]geom.Vec3, error) {
	pts, _, err := decode(b)
	return pts, err
}

// EncodeOutline stores each segment as two consecutive points.
func EncodeOutline(o contour.Outline) []byte {
	pts := make([]geom.Vec3, 0, len(o)*2)
	for _, s := range o {
		pts = append(pts, s[0], s[1])
	}
	return appendPoints(nil, pts)
}

func DecodeOutline(b []byte) (contour.Outline, error) {
	pts, _, err := decode(b)
	if err != nil {
		return nil, err
	}
	if len(pts)%2 != 0 {
		return nil, fmt.Errorf("%w: odd outline point count %d", ErrCorrupt, len(pts))
	}
	o := make(contour.Outline, 0, len(pts)/2)
	for i := 0; i < len(pts); i += 2 {
		o = append(o, contour.Segment{pts[i], pts[i+1]})
	}
	return o, nil
}
