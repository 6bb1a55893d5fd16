package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gorustyt/scenenav/internal/config"
	"github.com/gorustyt/scenenav/internal/logging"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "scenenav",
		Short:   "Bake navigation meshes from scene stages",
		Version: version,
		Long: `scenenav extracts mesh prims from a scene stage, builds a navmesh with
the configured engine and stores the navmesh, its boundary walls and
outline so they can be exported for viewers.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to scenenav.yaml")
	rootCmd.PersistentFlags().String("store", "", "Bake database (overrides store.path)")

	bakeCmd := &cobra.Command{
		Use:   "bake <stage.yaml> [prim paths...]",
		Short: "Build a navmesh from stage prims and store the result",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBake,
	}
	bakeCmd.Flags().StringP("name", "n", "", "Bake name (default: stage file name)")
	bakeCmd.Flags().Bool("selection", false, "Use the stage selection instead of the whole stage")
	bakeCmd.Flags().String("engine", "", "Engine websocket URL (overrides engine.url)")
	bakeCmd.Flags().String("up-axis", "", "Override the stage up axis: Y|Z")
	bakeCmd.Flags().Float64("wall-height", 0, "Wall extrusion height (overrides wallHeight)")

	exportCmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Write a stored bake as OBJ files",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	exportCmd.Flags().StringP("out", "o", ".", "Output directory")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored bakes",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored bake",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the preview engine for remote clients",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().String("addr", "127.0.0.1:9400", "Listen address")
	serveCmd.Flags().String("path", "/engine", "Websocket endpoint path")
	serveCmd.Flags().StringSlice("allow-origin", nil, "Browser origins allowed to connect (default: same host only)")

	rootCmd.AddCommand(bakeCmd, exportCmd, listCmd, deleteCmd, serveCmd)
	return rootCmd
}

// env is what every command needs from the config file.
type env struct {
	cfg   config.Config
	log   *zap.Logger
	close func()
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if store, _ := cmd.Flags().GetString("store"); store != "" {
		cfg.Store.Path = store
	}
	log, closeFn, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, close: closeFn}, nil
}
