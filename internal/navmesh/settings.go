package navmesh

import (
	"fmt"
	"sort"
	"strings"
)

type PartitionType int

const (
	PartitionWatershed PartitionType = iota
	PartitionMonotone
	PartitionLayers
)

func (p PartitionType) String() string {
	switch p {
	case PartitionWatershed:
		return "watershed"
	case PartitionMonotone:
		return "monotone"
	case PartitionLayers:
		return "layers"
	}
	return fmt.Sprintf("PartitionType(%d)", int(p))
}

func ParsePartitionType(s string) (PartitionType, error) {
	switch strings.ToLower(s) {
	case "watershed", "0":
		return PartitionWatershed, nil
	case "monotone", "1":
		return PartitionMonotone, nil
	case "layers", "2":
		return PartitionLayers, nil
	}
	return 0, fmt.Errorf("unknown partition type %q", s)
}

func (p PartitionType) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *PartitionType) UnmarshalText(b []byte) error {
	v, err := ParsePartitionType(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Settings configures one navmesh build.
type Settings struct {
	// Rasterization
	CellSize   float64 `yaml:"cellSize" json:"cellSize"`
	CellHeight float64 `yaml:"cellHeight" json:"cellHeight"`
	// Agent
	AgentHeight   float64 `yaml:"agentHeight" json:"agentHeight"`
	AgentRadius   float64 `yaml:"agentRadius" json:"agentRadius"`
	AgentMaxClimb float64 `yaml:"agentMaxClimb" json:"agentMaxClimb"`
	AgentMaxSlope float64 `yaml:"agentMaxSlope" json:"agentMaxSlope"`
	// Region
	RegionMinSize   float64 `yaml:"regionMinSize" json:"regionMinSize"`
	RegionMergeSize float64 `yaml:"regionMergeSize" json:"regionMergeSize"`
	// Polygonization
	EdgeMaxLen   float64 `yaml:"edgeMaxLen" json:"edgeMaxLen"`
	EdgeMaxError float64 `yaml:"edgeMaxError" json:"edgeMaxError"`
	VertsPerPoly float64 `yaml:"vertsPerPoly" json:"vertsPerPoly"`
	// Detail mesh
	DetailSampleDist     float64 `yaml:"detailSampleDist" json:"detailSampleDist"`
	DetailSampleMaxError float64 `yaml:"detailSampleMaxError" json:"detailSampleMaxError"`

	PartitionType PartitionType `yaml:"partitionType" json:"partitionType"`
}

func DefaultSettings() Settings {
	return Settings{
		CellSize:             0.1,
		CellHeight:           0.1,
		AgentHeight:          1.6,
		AgentRadius:          0.05,
		AgentMaxClimb:        0.2,
		AgentMaxSlope:        45.0,
		RegionMinSize:        0.5,
		RegionMergeSize:      20,
		EdgeMaxLen:           12.0,
		EdgeMaxError:         1.3,
		VertsPerPoly:         6.0,
		DetailSampleDist:     6.0,
		DetailSampleMaxError: 1.0,
		PartitionType:        PartitionWatershed,
	}
}

// Overrides holds the caller supplied subset of Settings; nil fields keep
// their defaults.
type Overrides struct {
	CellSize             *float64       `yaml:"cellSize" json:"cellSize,omitempty"`
	CellHeight           *float64       `yaml:"cellHeight" json:"cellHeight,omitempty"`
	AgentHeight          *float64       `yaml:"agentHeight" json:"agentHeight,omitempty"`
	AgentRadius          *float64       `yaml:"agentRadius" json:"agentRadius,omitempty"`
	AgentMaxClimb        *float64       `yaml:"agentMaxClimb" json:"agentMaxClimb,omitempty"`
	AgentMaxSlope        *float64       `yaml:"agentMaxSlope" json:"agentMaxSlope,omitempty"`
	RegionMinSize        *float64       `yaml:"regionMinSize" json:"regionMinSize,omitempty"`
	RegionMergeSize      *float64       `yaml:"regionMergeSize" json:"regionMergeSize,omitempty"`
	EdgeMaxLen           *float64       `yaml:"edgeMaxLen" json:"edgeMaxLen,omitempty"`
	EdgeMaxError         *float64       `yaml:"edgeMaxError" json:"edgeMaxError,omitempty"`
	VertsPerPoly         *float64       `yaml:"vertsPerPoly" json:"vertsPerPoly,omitempty"`
	DetailSampleDist     *float64       `yaml:"detailSampleDist" json:"detailSampleDist,omitempty"`
	DetailSampleMaxError *float64       `yaml:"detailSampleMaxError" json:"detailSampleMaxError,omitempty"`
	PartitionType        *PartitionType `yaml:"partitionType" json:"partitionType,omitempty"`
}

// NewSettings merges o onto DefaultSettings.
func NewSettings(o Overrides) Settings {
	return DefaultSettings().Merge(o)
}

func (s Settings) Merge(o Overrides) Settings {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&s.CellSize, o.CellSize)
	set(&s.CellHeight, o.CellHeight)
	set(&s.AgentHeight, o.AgentHeight)
	set(&s.AgentRadius, o.AgentRadius)
	set(&s.AgentMaxClimb, o.AgentMaxClimb)
	set(&s.AgentMaxSlope, o.AgentMaxSlope)
	set(&s.RegionMinSize, o.RegionMinSize)
	set(&s.RegionMergeSize, o.RegionMergeSize)
	set(&s.EdgeMaxLen, o.EdgeMaxLen)
	set(&s.EdgeMaxError, o.EdgeMaxError)
	set(&s.VertsPerPoly, o.VertsPerPoly)
	set(&s.DetailSampleDist, o.DetailSampleDist)
	set(&s.DetailSampleMaxError, o.DetailSampleMaxError)
	if o.PartitionType != nil {
		s.PartitionType = *o.PartitionType
	}
	return s
}

// OverridesFromMap reads engine style keys ("cellSize", ...). Unknown keys
// are rejected.
func OverridesFromMap(m map[string]float64) (Overrides, error) {
	var o Overrides
	var unknown []string
	for k, v := range m {
		v := v
		switch k {
		case "cellSize":
			o.CellSize = &v
		case "cellHeight":
			o.CellHeight = &v
		case "agentHeight":
			o.AgentHeight = &v
		case "agentRadius":
			o.AgentRadius = &v
		case "agentMaxClimb":
			o.AgentMaxClimb = &v
		case "agentMaxSlope":
			o.AgentMaxSlope = &v
		case "regionMinSize":
			o.RegionMinSize = &v
		case "regionMergeSize":
			o.RegionMergeSize = &v
		case "edgeMaxLen":
			o.EdgeMaxLen = &v
		case "edgeMaxError":
			o.EdgeMaxError = &v
		case "vertsPerPoly":
			o.VertsPerPoly = &v
		case "detailSampleDist":
			o.DetailSampleDist = &v
		case "detailSampleMaxError":
			o.DetailSampleMaxError = &v
		case "partitionType":
			p := PartitionType(v)
			o.PartitionType = &p
		default:
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Overrides{}, fmt.Errorf("unknown build settings: %s", strings.Join(unknown, ", "))
	}
	return o, nil
}

// Params is the mapping sent to the engine.
func (s Settings) Params() map[string]float64 {
	return map[string]float64{
		"cellSize":             s.CellSize,
		"cellHeight":           s.CellHeight,
		"agentHeight":          s.AgentHeight,
		"agentRadius":          s.AgentRadius,
		"agentMaxClimb":        s.AgentMaxClimb,
		"agentMaxSlope":        s.AgentMaxSlope,
		"regionMinSize":        s.RegionMinSize,
		"regionMergeSize":      s.RegionMergeSize,
		"edgeMaxLen":           s.EdgeMaxLen,
		"edgeMaxError":         s.EdgeMaxError,
		"vertsPerPoly":         s.VertsPerPoly,
		"detailSampleDist":     s.DetailSampleDist,
		"detailSampleMaxError": s.DetailSampleMaxError,
		"partitionType":        float64(s.PartitionType),
	}
}

func (s Settings) Validate() error {
	switch {
	case s.CellSize <= 0:
		return fmt.Errorf("cellSize must be > 0, got %v", s.CellSize)
	case s.CellHeight <= 0:
		return fmt.Errorf("cellHeight must be > 0, got %v", s.CellHeight)
	case s.AgentHeight <= 0:
		return fmt.Errorf("agentHeight must be > 0, got %v", s.AgentHeight)
	case s.AgentRadius < 0:
		return fmt.Errorf("agentRadius must be >= 0, got %v", s.AgentRadius)
	case s.AgentMaxClimb < 0:
		return fmt.Errorf("agentMaxClimb must be >= 0, got %v", s.AgentMaxClimb)
	case s.AgentMaxSlope < 0 || s.AgentMaxSlope >= 90:
		return fmt.Errorf("agentMaxSlope must be in [0,90), got %v", s.AgentMaxSlope)
	case s.RegionMinSize < 0 || s.RegionMergeSize < 0:
		return fmt.Errorf("region sizes must be >= 0")
	case s.EdgeMaxLen < 0 || s.EdgeMaxError < 0:
		return fmt.Errorf("edge limits must be >= 0")
	case s.VertsPerPoly < 3:
		return fmt.Errorf("vertsPerPoly must be >= 3, got %v", s.VertsPerPoly)
	case s.DetailSampleDist < 0 || s.DetailSampleMaxError < 0:
		return fmt.Errorf("detail sample settings must be >= 0")
	case s.PartitionType < PartitionWatershed || s.PartitionType > PartitionLayers:
		return fmt.Errorf("invalid partition type %d", s.PartitionType)
	}
	return nil
}
