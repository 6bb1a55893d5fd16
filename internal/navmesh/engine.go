package navmesh

import "github.com/gorustyt/scenenav/internal/geom"

// Engine is the native navmesh build/query engine. All coordinates are in
// the engine's y-up space.
type Engine interface {
	// LoadObj replaces the input geometry with the mesh stored at path.
	LoadObj(path string) error
	Build(params map[string]float64) (bool, error)
	RandomPoints(n int) ([]geom.Vec3, error)
	FindPaths(starts, ends []geom.Vec3, searchSize geom.Vec3, mode, style int) ([]geom.Vec3, error)
	// FindPathsParallel has the contract of FindPaths; the engine spreads
	// the searches over its own threads.
	FindPathsParallel(starts, ends []geom.Vec3, searchSize geom.Vec3, mode, style int) ([]geom.Vec3, error)
	// Contours returns boundary vertices laid out as segment pairs and the
	// vertex count of each contour.
	Contours() ([]geom.Vec3, []int, error)
	RawContours() ([]geom.Vec3, []int, error)
	// TrianglePolygons returns the navmesh polygons as triangle soup.
	TrianglePolygons() ([]geom.Vec3, error)
}
