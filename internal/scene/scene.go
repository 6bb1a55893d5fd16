// Package scene is the read-only view of the host scene graph: prim
// traversal (instance proxies included), world transforms and raw mesh
// buffers.
package scene

import (
	"github.com/gorustyt/scenenav/internal/axis"
	"github.com/gorustyt/scenenav/internal/geom"
)

// MeshData holds the raw buffers of a mesh primitive in local space.
type MeshData struct {
	Points            []geom.Vec3
	FaceVertexCounts  []int
	FaceVertexIndices []int
}

type Node interface {
	Path() string
	IsMesh() bool
	// Children lists the direct children, including instance proxies.
	Children() []Node
	WorldTransform() geom.Mat4
	MeshData() (MeshData, bool)
}

type Stage interface {
	UpAxis() axis.Convention
	Root() Node
	Lookup(path string) (Node, bool)
	Selection() []string
}

// Walk visits every descendant of n depth first, parents before children.
// The node itself is not visited.
func Walk(n Node, visit func(Node)) {
	for _, c := range n.Children() {
		visit(c)
		Walk(c, visit)
	}
}
