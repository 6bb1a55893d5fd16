package navmesh

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gorustyt/scenenav/internal/geom"
	"github.com/gorustyt/scenenav/internal/objfile"
	"github.com/gorustyt/scenenav/internal/simplify"
)

// Ingestor moves an engine-space mesh into the engine.
type Ingestor interface {
	Ingest(e Engine, m geom.Mesh) error
}

// ObjIngestor serializes the mesh to a temporary OBJ file, decimates it and
// loads the decimated file. Both files are removed before Ingest returns.
type ObjIngestor struct {
	Simplifier simplify.Simplifier
	Percentage float64
	// TempDir holds the intermediate files; empty means os.TempDir.
	TempDir string
	Log     *zap.Logger
}

func (in *ObjIngestor) Ingest(e Engine, m geom.Mesh) (err error) {
	log := in.Log
	if log == nil {
		log = zap.NewNop()
	}
	dir, err := os.MkdirTemp(in.TempDir, "scenenav-ingest-")
	if err != nil {
		return err
	}
	defer func() {
		if rerr := os.RemoveAll(dir); rerr != nil {
			log.Warn("remove ingest dir", zap.String("dir", dir), zap.Error(rerr))
		}
	}()

	src := filepath.Join(dir, "input.obj")
	if err := objfile.WriteFile(src, m); err != nil {
		return fmt.Errorf("write obj: %w", err)
	}

	pct := in.Percentage
	if pct == 0 {
		pct = simplify.DefaultPercentage
	}
	simplified, err := in.Simplifier.Simplify(src, pct)
	if err != nil {
		return fmt.Errorf("%w: simplify: %w", ErrExternalTool, err)
	}
	if filepath.Dir(simplified) != dir {
		defer os.Remove(simplified)
	}
	log.Debug("loading decimated mesh", zap.String("path", simplified))
	if err := e.LoadObj(simplified); err != nil {
		return fmt.Errorf("%w: engine load: %w", ErrExternalTool, err)
	}
	return nil
}
