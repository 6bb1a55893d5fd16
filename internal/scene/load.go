package scene

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gorustyt/scenenav/internal/axis"
	"github.com/gorustyt/scenenav/internal/geom"
)

type stageFile struct {
	UpAxis    string     `yaml:"upAxis"`
	Selection []string   `yaml:"selection"`
	Prims     []primFile `yaml:"prims"`
}

type primFile struct {
	Name      string     `yaml:"name"`
	Type      string     `yaml:"type"`
	Abstract  bool       `yaml:"abstract"`
	Instance  string     `yaml:"instance"`
	Translate []float64  `yaml:"translate"`
	Rotate    []float64  `yaml:"rotate"`
	Scale     []float64  `yaml:"scale"`
	Mesh      *meshFile  `yaml:"mesh"`
	Children  []primFile `yaml:"children"`
}

type meshFile struct {
	Points            [][]float64 `yaml:"points"`
	FaceVertexCounts  []int       `yaml:"faceVertexCounts"`
	FaceVertexIndices []int       `yaml:"faceVertexIndices"`
}

// LoadStage reads a YAML scene description.
func LoadStage(p string) (*MemStage, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := DecodeStage(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return s, nil
}

func DecodeStage(r io.Reader) (*MemStage, error) {
	var sf stageFile
	if err := yaml.NewDecoder(r).Decode(&sf); err != nil {
		return nil, err
	}
	up := axis.YUp
	if sf.UpAxis != "" {
		var err error
		if up, err = axis.ParseConvention(sf.UpAxis); err != nil {
			return nil, err
		}
	}
	s := NewStage(up)
	for _, pf := range sf.Prims {
		c, err := pf.build()
		if err != nil {
			return nil, err
		}
		s.root.AddChild(c)
	}
	s.Select(sf.Selection...)
	return s, nil
}

func (pf primFile) build() (*Prim, error) {
	if pf.Name == "" {
		return nil, fmt.Errorf("prim without name")
	}
	p := &Prim{
		Name:     pf.Name,
		Type:     pf.Type,
		Abstract: pf.Abstract,
		Instance: pf.Instance,
		Xform:    IdentityXform(),
	}
	if p.Type == "" {
		p.Type = TypeXform
	}
	var err error
	if p.Xform.Translate, err = vec3(pf.Translate, p.Xform.Translate); err != nil {
		return nil, fmt.Errorf("%s translate: %w", pf.Name, err)
	}
	if p.Xform.Rotate, err = vec3(pf.Rotate, p.Xform.Rotate); err != nil {
		return nil, fmt.Errorf("%s rotate: %w", pf.Name, err)
	}
	if p.Xform.Scale, err = vec3(pf.Scale, p.Xform.Scale); err != nil {
		return nil, fmt.Errorf("%s scale: %w", pf.Name, err)
	}
	if pf.Mesh != nil {
		md := &MeshData{
			FaceVertexCounts:  pf.Mesh.FaceVertexCounts,
			FaceVertexIndices: pf.Mesh.FaceVertexIndices,
		}
		for i, pt := range pf.Mesh.Points {
			v, err := vec3(pt, geom.Vec3{})
			if err != nil {
				return nil, fmt.Errorf("%s point %d: %w", pf.Name, i, err)
			}
			md.Points = append(md.Points, v)
		}
		p.Mesh = md
		if pf.Type == "" {
			p.Type = TypeMesh
		}
	}
	for _, cf := range pf.Children {
		c, err := cf.build()
		if err != nil {
			return nil, err
		}
		c.parent = p
		p.children = append(p.children, c)
	}
	return p, nil
}

func vec3(v []float64, def geom.Vec3) (geom.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return geom.Vec3{v[0], v[1], v[2]}, nil
	}
	return def, fmt.Errorf("expected 3 components, got %d", len(v))
}
