// Package config loads scenenav.yaml. The raw document is checked against
// an embedded JSON schema before it is decoded over the defaults.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/gorustyt/scenenav/internal/axis"
	"github.com/gorustyt/scenenav/internal/logging"
	"github.com/gorustyt/scenenav/internal/navmesh"
	"github.com/gorustyt/scenenav/internal/simplify"
)

//go:embed schema.json
var schemaText string

const schemaURL = "scenenav://config.schema.json"

var schema = jsonschema.MustCompileString(schemaURL, schemaText)

type Config struct {
	// UpAxis overrides the stage's declared axis; empty keeps it.
	UpAxis       string            `yaml:"upAxis"`
	Build        navmesh.Overrides `yaml:"build"`
	Simplify     Simplify          `yaml:"simplify"`
	WallHeight   float64           `yaml:"wallHeight"`
	RandomPoints int               `yaml:"randomPoints"`
	Engine       Engine            `yaml:"engine"`
	Store        Store             `yaml:"store"`
	Log          logging.Config    `yaml:"log"`
}

type Simplify struct {
	Percentage float64 `yaml:"percentage"`
	TempDir    string  `yaml:"tempDir"`
}

// Engine selects the navmesh backend. An empty URL uses the in-process
// preview engine.
type Engine struct {
	URL          string        `yaml:"url"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
}

type Store struct {
	Path string `yaml:"path"`
}

func Default() Config {
	return Config{
		Simplify:     Simplify{Percentage: simplify.DefaultPercentage},
		WallHeight:   2,
		RandomPoints: 10,
		Engine: Engine{
			WriteTimeout: 10 * time.Second,
			ReadTimeout:  5 * time.Minute,
		},
		Store: Store{Path: "scenenav.db"},
		Log:   logging.DefaultConfig(),
	}
}

// Load reads path over Default. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := Decode(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode validates b and decodes it onto cfg.
func Decode(b []byte, cfg *Config) error {
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return err
	}
	if doc != nil {
		if err := validate(doc); err != nil {
			return err
		}
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// validate runs the schema over the YAML document after a JSON round trip,
// so numbers reach the validator as json.Number.
func validate(doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config is not representable as JSON: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	return schema.Validate(v)
}

// Validate checks what the schema cannot express.
func (c Config) Validate() error {
	if _, err := c.Convention(); err != nil {
		return err
	}
	if err := c.Settings().Validate(); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if c.Simplify.Percentage <= 0 {
		return fmt.Errorf("simplify.percentage must be > 0")
	}
	return nil
}

// Convention returns the up-axis override, nil when the stage decides.
func (c Config) Convention() (*axis.Convention, error) {
	if c.UpAxis == "" {
		return nil, nil
	}
	conv, err := axis.ParseConvention(c.UpAxis)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (c Config) Settings() navmesh.Settings {
	return navmesh.NewSettings(c.Build)
}
