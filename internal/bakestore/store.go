// Package bakestore keeps baked navmesh results in a sqlite database.
package bakestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/gorustyt/scenenav/internal/axis"
	"github.com/gorustyt/scenenav/internal/contour"
	"github.com/gorustyt/scenenav/internal/geom"
	"github.com/gorustyt/scenenav/internal/navmesh"
	"github.com/gorustyt/scenenav/internal/wire"
)

var ErrNotFound = errors.New("bakestore: bake not found")

// Bake is one stored build. Geometry is in scene space.
type Bake struct {
	Name         string
	UpAxis       axis.Convention
	Settings     navmesh.Settings
	Navmesh      geom.Mesh
	Walls        geom.Mesh
	Outline      contour.Outline
	RandomPoints []geom.Vec3
	CreatedAt    time.Time
}

// Summary is a listing row.
type Summary struct {
	Name      string
	UpAxis    axis.Convention
	Vertices  int
	Triangles int
	CreatedAt time.Time
}

type Store struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithZeroFrames(true))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, enc: enc, dec: dec}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bakes (
			name TEXT PRIMARY KEY,
			up_axis TEXT NOT NULL,
			settings_json TEXT NOT NULL,
			vertices INTEGER NOT NULL,
			triangles INTEGER NOT NULL,
			navmesh BLOB NOT NULL,
			walls BLOB NOT NULL,
			outline BLOB NOT NULL,
			random_points BLOB NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_bakes_created ON bakes(created_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Save inserts or replaces the bake under its name.
func (s *Store) Save(ctx context.Context, b Bake) error {
	if b.Name == "" {
		return fmt.Errorf("bakestore: empty bake name")
	}
	settings, err := json.Marshal(b.Settings)
	if err != nil {
		return err
	}
	created := b.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO bakes
		(name, up_axis, settings_json, vertices, triangles, navmesh, walls, outline, random_points, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Name, b.UpAxis.String(), string(settings),
		b.Navmesh.VertCount(), b.Navmesh.TriCount(),
		s.pack(wire.EncodeMesh(b.Navmesh)),
		s.pack(wire.EncodeMesh(b.Walls)),
		s.pack(wire.EncodeOutline(b.Outline)),
		s.pack(wire.EncodePoints(b.RandomPoints)),
		created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("bakestore: save %q: %w", b.Name, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, name string) (Bake, error) {
	var (
		b                         Bake
		up, settings, created     string
		nav, walls, outline, rand []byte
	)
	row := s.db.QueryRowContext(ctx, `SELECT name, up_axis, settings_json, navmesh, walls, outline, random_points, created_at
		FROM bakes WHERE name = ?`, name)
	if err := row.Scan(&b.Name, &up, &settings, &nav, &walls, &outline, &rand, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Bake{}, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return Bake{}, err
	}
	var err error
	if b.UpAxis, err = axis.ParseConvention(up); err != nil {
		return Bake{}, err
	}
	if err := json.Unmarshal([]byte(settings), &b.Settings); err != nil {
		return Bake{}, fmt.Errorf("bakestore: settings of %q: %w", name, err)
	}
	if b.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Bake{}, err
	}

	raw, err := s.unpack(nav)
	if err != nil {
		return Bake{}, err
	}
	if b.Navmesh, err = wire.DecodeMesh(raw); err != nil {
		return Bake{}, err
	}
	if raw, err = s.unpack(walls); err != nil {
		return Bake{}, err
	}
	if b.Walls, err = wire.DecodeMesh(raw); err != nil {
		return Bake{}, err
	}
	if raw, err = s.unpack(outline); err != nil {
		return Bake{}, err
	}
	if b.Outline, err = wire.DecodeOutline(raw); err != nil {
		return Bake{}, err
	}
	if raw, err = s.unpack(rand); err != nil {
		return Bake{}, err
	}
	if b.RandomPoints, err = wire.DecodePoints(raw); err != nil {
		return Bake{}, err
	}
	return b, nil
}

// List returns bakes newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, up_axis, vertices, triangles, created_at
		FROM bakes ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum         Summary
			up, created string
		)
		if err := rows.Scan(&sum.Name, &up, &sum.Vertices, &sum.Triangles, &created); err != nil {
			return nil, err
		}
		if sum.UpAxis, err = axis.ParseConvention(up); err != nil {
			return nil, err
		}
		if sum.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bakes WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}

func (s *Store) Close() error {
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

func (s *Store) pack(b []byte) []byte {
	return s.enc.EncodeAll(b, make([]byte, 0, len(b)/2+16))
}

func (s *Store) unpack(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, nil
	}
	out, err := s.dec.DecodeAll(b, nil)
	if err != nil {
		return nil, fmt.Errorf("bakestore: decompress: %w", err)
	}
	return out, nil
}
