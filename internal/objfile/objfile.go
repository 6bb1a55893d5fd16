// Package objfile reads and writes the subset of Wavefront OBJ used to hand
// meshes to the simplifier and the navmesh engine.
package objfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gorustyt/scenenav/internal/geom"
)

// Write emits one "v x y z" row per vertex and one "f i j k" row per
// triangle with 1-based indices.
func Write(w io.Writer, m geom.Mesh) error {
	bw := bufio.NewWriter(w)
	for _, v := range m.Vertices {
		bw.WriteString("v ")
		bw.WriteString(formatFloat(v[0]))
		bw.WriteByte(' ')
		bw.WriteString(formatFloat(v[1]))
		bw.WriteByte(' ')
		bw.WriteString(formatFloat(v[2]))
		bw.WriteByte('\n')
	}
	for _, t := range m.Triangles {
		fmt.Fprintf(bw, "f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1)
	}
	return bw.Flush()
}

// WriteLines emits segments as "l" elements, each with its own two vertices.
func WriteLines(w io.Writer, segs [][2]geom.Vec3) error {
	bw := bufio.NewWriter(w)
	for _, s := range segs {
		for _, v := range s {
			fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2]))
		}
	}
	for i := range segs {
		fmt.Fprintf(bw, "l %d %d\n", 2*i+1, 2*i+2)
	}
	return bw.Flush()
}

func WriteFile(p string, m geom.Mesh) error {
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if err := Write(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Read parses vertices and faces. Polygon faces are split as fans, texture
// and normal references are ignored, and negative indices count back from
// the last vertex read.
func Read(r io.Reader) (geom.Mesh, error) {
	var m geom.Mesh
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		row := strings.Fields(sc.Text())
		if len(row) == 0 || strings.HasPrefix(row[0], "#") {
			continue
		}
		var err error
		switch row[0] {
		case "v":
			err = parseVertex(&m, row[1:])
		case "f":
			err = parseFace(&m, row[1:])
		}
		if err != nil {
			return geom.Mesh{}, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return geom.Mesh{}, err
	}
	return m, nil
}

func ReadFile(p string) (geom.Mesh, error) {
	f, err := os.Open(p)
	if err != nil {
		return geom.Mesh{}, err
	}
	defer f.Close()
	m, err := Read(f)
	if err != nil {
		return geom.Mesh{}, fmt.Errorf("%s: %w", p, err)
	}
	return m, nil
}
