// Package remote drives a navmesh engine hosted in another process over a
// websocket. Requests and responses are JSON text frames; an OBJ upload
// follows its request header as one zstd-compressed binary frame.
package remote

import (
	"errors"

	"github.com/gorustyt/scenenav/internal/geom"
)

const (
	opLoad        = "load"
	opBuild       = "build"
	opRandom      = "random"
	opPaths       = "paths"
	opContours    = "contours"
	opRawContours = "rawContours"
	opPolygons    = "polygons"
)

const (
	maxUploadBytes = 256 << 20
	bufferSize     = 64 * 1024
)

var (
	ErrRemote   = errors.New("remote engine")
	ErrProtocol = errors.New("remote: protocol violation")
	ErrClosed   = errors.New("remote: connection closed")
)

type request struct {
	ID     uint64             `json:"id"`
	Op     string             `json:"op"`
	Size   int                `json:"size,omitempty"`
	Params map[string]float64 `json:"params,omitempty"`
	N      int                `json:"n,omitempty"`

	Starts     []geom.Vec3 `json:"starts,omitempty"`
	Ends       []geom.Vec3 `json:"ends,omitempty"`
	SearchSize geom.Vec3   `json:"searchSize"`
	Mode       int         `json:"mode,omitempty"`
	Style      int         `json:"style,omitempty"`
	Parallel   bool        `json:"parallel,omitempty"`
}

type response struct {
	ID     uint64      `json:"id"`
	OK     bool        `json:"ok"`
	Error  string      `json:"error,omitempty"`
	Built  bool        `json:"built,omitempty"`
	Points []geom.Vec3 `json:"points,omitempty"`
	Sizes  []int       `json:"sizes,omitempty"`
}
