package scene

import (
	"path"
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gorustyt/scenenav/internal/axis"
	"github.com/gorustyt/scenenav/internal/geom"
)

const (
	TypeMesh  = "Mesh"
	TypeXform = "Xform"
)

// Xform is a local transform applied as translate * rotateXYZ * scale.
// Rotate is in degrees.
type Xform struct {
	Translate geom.Vec3
	Rotate    geom.Vec3
	Scale     geom.Vec3
}

func IdentityXform() Xform {
	return Xform{Scale: geom.Vec3{1, 1, 1}}
}

func (x Xform) Matrix() geom.Mat4 {
	r := mgl64.HomogRotate3DZ(mgl64.DegToRad(x.Rotate[2])).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(x.Rotate[1]))).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(x.Rotate[0])))
	return mgl64.Translate3D(x.Translate[0], x.Translate[1], x.Translate[2]).
		Mul4(r).
		Mul4(mgl64.Scale3D(x.Scale[0], x.Scale[1], x.Scale[2]))
}

// Prim is a node of an in-memory stage. Abstract prims are skipped by
// traversal and only serve as instance prototypes.
type Prim struct {
	Name     string
	Type     string
	Xform    Xform
	Mesh     *MeshData
	Abstract bool
	// Instance is the path of a prototype prim whose children appear as
	// instance proxies under this prim.
	Instance string

	path     string
	parent   *Prim
	children []*Prim
	stage    *MemStage
}

func (p *Prim) Path() string { return p.path }

func (p *Prim) IsMesh() bool { return p.Type == TypeMesh && p.Mesh != nil }

func (p *Prim) MeshData() (MeshData, bool) {
	if !p.IsMesh() {
		return MeshData{}, false
	}
	return *p.Mesh, true
}

func (p *Prim) WorldTransform() geom.Mat4 {
	if p.parent == nil {
		return p.Xform.Matrix()
	}
	return p.parent.WorldTransform().Mul4(p.Xform.Matrix())
}

func (p *Prim) Children() []Node {
	var res []Node
	for _, c := range p.children {
		if c.Abstract {
			continue
		}
		res = append(res, c)
	}
	return append(res, p.proxyChildren(p.path, p.WorldTransform(), nil)...)
}

// proxyChildren expands p's prototype. chain lists the prototypes already
// being expanded above p; a prototype that reappears on it is not expanded
// again.
func (p *Prim) proxyChildren(base string, world geom.Mat4, chain []string) []Node {
	if p.Instance == "" || p.stage == nil || slices.Contains(chain, p.Instance) {
		return nil
	}
	proto, ok := p.stage.prims[p.Instance]
	if !ok {
		return nil
	}
	chain = append(slices.Clip(chain), p.Instance)
	res := make([]Node, 0, len(proto.children))
	for _, c := range proto.children {
		res = append(res, &proxy{
			prim:  c,
			path:  base + "/" + c.Name,
			world: world.Mul4(c.Xform.Matrix()),
			chain: chain,
		})
	}
	return res
}

// AddChild attaches c under p and returns c.
func (p *Prim) AddChild(c *Prim) *Prim {
	c.parent = p
	p.children = append(p.children, c)
	if p.stage != nil {
		p.stage.register(c, p.path)
	}
	return c
}

// proxy is a prototype descendant seen through an instancing prim.
type proxy struct {
	prim  *Prim
	path  string
	world geom.Mat4
	chain []string
}

func (x *proxy) Path() string               { return x.path }
func (x *proxy) IsMesh() bool               { return x.prim.IsMesh() }
func (x *proxy) MeshData() (MeshData, bool) { return x.prim.MeshData() }
func (x *proxy) WorldTransform() geom.Mat4  { return x.world }

func (x *proxy) Children() []Node {
	var res []Node
	for _, c := range x.prim.children {
		if c.Abstract {
			continue
		}
		res = append(res, &proxy{
			prim:  c,
			path:  x.path + "/" + c.Name,
			world: x.world.Mul4(c.Xform.Matrix()),
			chain: x.chain,
		})
	}
	return append(res, x.prim.proxyChildren(x.path, x.world, x.chain)...)
}

// MemStage is an in-memory Stage.
type MemStage struct {
	upAxis    axis.Convention
	root      *Prim
	prims     map[string]*Prim
	selection []string
}

func NewStage(up axis.Convention) *MemStage {
	s := &MemStage{
		upAxis: up,
		prims:  map[string]*Prim{},
	}
	s.root = &Prim{Name: "", Type: TypeXform, Xform: IdentityXform(), path: "/", stage: s}
	s.prims["/"] = s.root
	return s
}

func (s *MemStage) UpAxis() axis.Convention { return s.upAxis }
func (s *MemStage) Root() Node              { return s.root }
func (s *MemStage) RootPrim() *Prim         { return s.root }
func (s *MemStage) Selection() []string     { return s.selection }

func (s *MemStage) Select(paths ...string) {
	s.selection = append(s.selection[:0], paths...)
}

// Lookup resolves prim paths, including paths that go through instance
// proxies.
func (s *MemStage) Lookup(p string) (Node, bool) {
	p = path.Clean("/" + strings.TrimPrefix(p, "/"))
	if prim, ok := s.prims[p]; ok {
		return prim, true
	}
	var found Node
	Walk(s.root, func(n Node) {
		if found == nil && n.Path() == p {
			found = n
		}
	})
	return found, found != nil
}

func (s *MemStage) register(c *Prim, parentPath string) {
	c.stage = s
	if parentPath == "/" {
		c.path = "/" + c.Name
	} else {
		c.path = parentPath + "/" + c.Name
	}
	s.prims[c.path] = c
	for _, gc := range c.children {
		s.register(gc, c.path)
	}
}
