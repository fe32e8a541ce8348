package task

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/goplus/mtask/internal/executor"
	"github.com/goplus/mtask/internal/platform"
	"github.com/goplus/mtask/internal/workspace"
	"github.com/goplus/mtask/pkgs/buildsys/cmake"
)

func init() {
	register(Task{Name: "config", run: (*Runner).configure})
	register(Task{Name: "build", run: (*Runner).build})
	register(Task{Name: "install", run: (*Runner).install})
	register(Task{Name: "run", run: (*Runner).runBinary})
	register(Task{Name: "clean", run: (*Runner).clean})
	register(Task{Name: "clean_all", Pre: []string{"clean"}, run: (*Runner).cleanAll})
}

// Info topics.
const (
	TopicAll         = "all"
	TopicBuildPath   = "build_path"
	TopicInstallPath = "install_path"
)

// Info prints the derived paths selected by topic. An unknown topic prints
// an error line and is not a failure.
func (r *Runner) Info(topic string) {
	switch topic {
	case TopicAll:
		r.printf("Project         =%s\n", r.ws.Project())
		r.printf("Source Path     =%s\n", r.ws.SourceDir())
		r.printf("Build path      = %s\n", r.ws.BuildPath())
		r.printf("Install path    = %s\n", r.ws.InstallPath())
	case TopicBuildPath:
		r.printf("%s\n", r.ws.BuildPath())
	case TopicInstallPath:
		r.printf("%s\n", r.ws.InstallPath())
	default:
		r.printf("Error: Valid 'topic' names are '%s'/'%s'/'%s'\n", TopicAll, TopicBuildPath, TopicInstallPath)
	}
}

func (r *Runner) cmake() *cmake.CMake {
	c := cmake.New(r.exec, r.ws.SourceDir(), r.ws.BuildPath()).
		Interactive(r.profile.Interactive())
	if r.cmakeBin != "" {
		c.Binary(r.cmakeBin)
	}
	return c
}

func (r *Runner) configure(ctx context.Context) error {
	c := r.cmake()
	if r.cmakeMinimum != "" {
		if err := c.Require(ctx, r.cmakeMinimum); err != nil {
			return err
		}
	}
	if err := platform.EnableVirtualTerminal(); err != nil {
		r.logger.Warn().Err(err).Msg("failed to enable virtual terminal processing")
	}

	for k, v := range r.cmakeOptions {
		c.DefineBool(k, v)
	}
	c.BuildType(r.buildType).
		Toolchain(r.ws.ToolchainFile()).
		Define("CMAKE_EXPORT_COMPILE_COMMANDS", "1").
		Define("CMAKE_INSTALL_PREFIX", "")
	if err := c.Configure(ctx, r.profile.ConfigureArgs()...); err != nil {
		return err
	}

	src := workspace.CompileCommands(r.ws.BuildPath())
	dst := workspace.CompileCommands(r.ws.SourceDir())
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("failed to copy compile commands: %w", err)
	}
	r.logger.Debug().Str("from", src).Str("to", dst).Msg("copied compile commands")
	return nil
}

func (r *Runner) build(ctx context.Context) error {
	if !exists(r.ws.BuildPath()) {
		if !r.autoConfigure {
			r.printf("Error: build path doesn't exist.\n")
			return nil
		}
		if err := r.Run(ctx, "config"); err != nil {
			return err
		}
	}
	return r.cmake().Build(ctx)
}

func (r *Runner) install(ctx context.Context) error {
	if !exists(r.ws.BuildPath()) {
		r.printf("Error: build path doesn't exist.\n")
		return nil
	}
	c := r.cmake()
	c.Env("DESTDIR", r.ws.InstallPath())
	return c.Install(ctx)
}

// BinaryPath returns the installed executable run looks for.
func (r *Runner) BinaryPath() string {
	name := r.profile.BinaryName(r.ws.Project(), r.binaries)
	return filepath.Join(r.ws.InstallPath(), "bin", name)
}

func (r *Runner) runBinary(ctx context.Context) error {
	bin := r.BinaryPath()
	if !exists(bin) {
		r.printf("Error: binary doesn't exist. Please build and install first.\n")
		return nil
	}
	return r.exec.Run(ctx, executor.Command{
		Name:        bin,
		Interactive: r.profile.Interactive(),
	})
}

// Blocked reports whether clean refuses to run this week, and the ISO week.
func (r *Runner) Blocked() (bool, int) {
	_, week := r.now().ISOWeek()
	return slices.Contains(r.blockedWeeks, week), week
}

func (r *Runner) clean(ctx context.Context) error {
	// no cleaning during CppCon and the weeks around it
	if blocked, week := r.Blocked(); blocked {
		r.printf("I'm sorry I can't do that Dave as the current week is %d.\n", week)
		return nil
	}
	return r.removeAll(r.ws.BuildPath(), "Build path absent. Nothing to do.")
}

func (r *Runner) cleanAll(ctx context.Context) error {
	return r.removeAll(filepath.Join(r.ws.InstallPath(), "bin"), "Install path absent. Nothing to do.")
}

func (r *Runner) removeAll(path, absent string) error {
	if !exists(path) {
		r.printf("%s\n", absent)
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return err
	}
	r.printf("Cleaned %s\n", path)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
