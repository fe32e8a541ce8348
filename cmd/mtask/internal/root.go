package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/goplus/mtask/internal/config"
	"github.com/goplus/mtask/internal/env"
	"github.com/goplus/mtask/internal/executor"
	"github.com/goplus/mtask/internal/logging"
	"github.com/goplus/mtask/internal/platform"
	"github.com/goplus/mtask/internal/task"
	"github.com/goplus/mtask/internal/workspace"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	sourceDir  string
	configFile string
	verbose    bool
)

var (
	logger = logging.New(false)
	runner *task.Runner
)

var rootCmd = &cobra.Command{
	Use:   "mtask",
	Short: "mtask drives the CMake build of a C++ project",
	Long: `mtask configures, builds, installs and runs a CMake/vcpkg C++ project
from a per-checkout out-of-source workspace under tmp/builds.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&sourceDir, "source", "C", "", "Project source root (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Project file (default: <source>/"+config.FileName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every command before it runs")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("mtask failed")
		os.Exit(1)
	}
}

// setup resolves the project once per invocation and builds the task runner.
func setup(cmd *cobra.Command, args []string) error {
	logger = logging.New(verbose)

	src := sourceDir
	if src == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		src = wd
	}
	src, err := filepath.Abs(src)
	if err != nil {
		return fmt.Errorf("failed to resolve source dir: %w", err)
	}

	cfgPath := configFile
	if cfgPath == "" {
		cfgPath = filepath.Join(src, config.FileName)
	}
	cfg, err := config.Load(cfgPath, src)
	if err != nil {
		return err
	}
	logger.Debug().Str("path", cfgPath).Str("project", cfg.Project).Msg("loaded config")

	ws, err := workspace.New(workspace.Options{
		Project:       cfg.Project,
		SourceDir:     src,
		ToolchainRoot: env.ToolchainRoot(cfg.ToolchainEnv),
		ToolchainFile: cfg.ToolchainFile,
		WorkspaceDir:  cfg.WorkspaceDir,
		InstallDir:    cfg.InstallDir,
	})
	if err != nil {
		return fmt.Errorf("failed to resolve workspace (%s): %w", cfg.ToolchainEnv, err)
	}

	runner = newRunner(cmd, ws, cfg, logger)
	return nil
}

func newRunner(cmd *cobra.Command, ws *workspace.Context, cfg config.Config, logger zerolog.Logger) *task.Runner {
	return task.NewRunner(task.Options{
		Workspace:     ws,
		Profile:       platform.Current(),
		Exec:          executor.NewLocal(executor.WithLogger(logger)),
		Out:           cmd.OutOrStdout(),
		Logger:        logger,
		BuildType:     cfg.BuildType,
		AutoConfigure: cfg.AutoConfigure,
		BlockedWeeks:  cfg.BlockedWeeks,
		CMakeMinimum:  cfg.CMakeMinimum,
		CMake:         cfg.CMake,
		CMakeOptions:  cfg.CMakeOptions,
		Binaries:      cfg.Binaries,
	})
}

// taskCmd returns a subcommand that runs the named task.
func taskCmd(name, short, long string) *cobra.Command {
	if !slices.Contains(task.Names(), name) {
		panic("mtask: no task named " + name)
	}
	return &cobra.Command{
		Use:   name,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner.Run(cmd.Context(), name)
		},
	}
}
