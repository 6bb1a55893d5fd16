package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gorustyt/scenenav/internal/bakestore"
	"github.com/gorustyt/scenenav/internal/engine/preview"
	"github.com/gorustyt/scenenav/internal/engine/remote"
	"github.com/gorustyt/scenenav/internal/geom"
	"github.com/gorustyt/scenenav/internal/navmesh"
	"github.com/gorustyt/scenenav/internal/objfile"
	"github.com/gorustyt/scenenav/internal/scene"
	"github.com/gorustyt/scenenav/internal/session"
	"github.com/gorustyt/scenenav/internal/simplify"
)

func runBake(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	stagePath, paths := args[0], args[1:]
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(stagePath), filepath.Ext(stagePath))
	}
	useSelection, _ := cmd.Flags().GetBool("selection")
	if url, _ := cmd.Flags().GetString("engine"); url != "" {
		e.cfg.Engine.URL = url
	}
	if up, _ := cmd.Flags().GetString("up-axis"); up != "" {
		e.cfg.UpAxis = up
	}
	if h, _ := cmd.Flags().GetFloat64("wall-height"); h > 0 {
		e.cfg.WallHeight = h
	}
	conv, err := e.cfg.Convention()
	if err != nil {
		return err
	}

	stage, err := scene.LoadStage(stagePath)
	if err != nil {
		return err
	}
	engine, closeEngine, err := openEngine(cmd.Context(), e)
	if err != nil {
		return err
	}
	defer closeEngine()

	simp := &simplify.Clustering{Dir: e.cfg.Simplify.TempDir, Log: e.log}
	sess := session.New(stage, engine, simp, session.Config{
		UpAxis:     conv,
		Percentage: e.cfg.Simplify.Percentage,
		TempDir:    e.cfg.Simplify.TempDir,
	}, e.log)

	switch {
	case len(paths) > 0:
		err = sess.AssignPaths(paths...)
	case useSelection:
		err = sess.AssignSelection()
	default:
		err = sess.AssignPaths()
	}
	if err != nil {
		return err
	}
	if err := sess.Build(e.cfg.Build); err != nil {
		return err
	}

	bake := bakestore.Bake{
		Name:      name,
		UpAxis:    sess.Navmesh().Normalizer().Convention(),
		Settings:  sess.Navmesh().Stats().Settings,
		CreatedAt: time.Now(),
	}
	if e.cfg.RandomPoints > 0 {
		if bake.RandomPoints, err = sess.RandomPoints(e.cfg.RandomPoints); err != nil {
			return err
		}
		if len(bake.RandomPoints) >= 2 {
			path, err := sess.SamplePath()
			if err != nil {
				return err
			}
			e.log.Info("sample path", zap.Int("points", len(path)))
		}
	}
	if bake.Navmesh, err = sess.NavmeshMesh(); err != nil {
		return err
	}
	if bake.Outline, err = sess.Outline(); err != nil {
		return err
	}
	bake.Walls, err = sess.Walls(e.cfg.WallHeight)
	switch {
	case errors.Is(err, session.ErrNoContours):
		e.log.Warn("navmesh has no contours, skipping walls")
	case err != nil:
		return err
	}

	store, err := bakestore.Open(e.cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Save(cmd.Context(), bake); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "baked %s: %d navmesh triangles, %d wall triangles, %d outline segments\n",
		name, bake.Navmesh.TriCount(), bake.Walls.TriCount(), len(bake.Outline))
	return nil
}

func openEngine(ctx context.Context, e *env) (navmesh.Engine, func(), error) {
	if e.cfg.Engine.URL == "" {
		return preview.New(), func() {}, nil
	}
	c, err := remote.Dial(ctx, e.cfg.Engine.URL, e.log,
		remote.WithTimeouts(e.cfg.Engine.WriteTimeout, e.cfg.Engine.ReadTimeout))
	if err != nil {
		return nil, nil, err
	}
	return c, func() { _ = c.Close() }, nil
}

func openStore(cmd *cobra.Command) (*env, *bakestore.Store, error) {
	e, err := loadEnv(cmd)
	if err != nil {
		return nil, nil, err
	}
	store, err := bakestore.Open(e.cfg.Store.Path)
	if err != nil {
		e.close()
		return nil, nil, err
	}
	return e, store, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	e, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer e.close()
	defer store.Close()

	bake, err := store.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("out")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	write := func(file string, m geom.Mesh) error {
		if m.Empty() {
			return nil
		}
		p := filepath.Join(dir, file)
		if err := objfile.WriteFile(p, m); err != nil {
			return err
		}
		fmt.Fprintln(out, p)
		return nil
	}
	if err := write(bake.Name+"_navmesh.obj", bake.Navmesh); err != nil {
		return err
	}
	if err := write(bake.Name+"_walls.obj", bake.Walls); err != nil {
		return err
	}
	if len(bake.Outline) == 0 {
		return nil
	}
	p := filepath.Join(dir, bake.Name+"_outline.obj")
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if err := objfile.WriteLines(f, bake.Outline.Segments()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintln(out, p)
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	e, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer e.close()
	defer store.Close()

	bakes, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tUP\tVERTS\tTRIS\tCREATED")
	for _, b := range bakes {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", b.Name, b.UpAxis, b.Vertices, b.Triangles, b.CreatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func runDelete(cmd *cobra.Command, args []string) error {
	e, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer e.close()
	defer store.Close()
	return store.Delete(cmd.Context(), args[0])
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	addr, _ := cmd.Flags().GetString("addr")
	path, _ := cmd.Flags().GetString("path")
	origins, _ := cmd.Flags().GetStringSlice("allow-origin")
	mux := http.NewServeMux()
	host := remote.NewServer(preview.New(), e.cfg.Simplify.TempDir, e.log, remote.WithAllowedOrigins(origins...))
	mux.Handle(path, host.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	e.log.Info("engine host listening", zap.String("addr", addr), zap.String("path", path))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
