// Package workspace derives the per-checkout build workspace of a project.
//
// Layout under the source tree:
//
//	<source>/
//	  tmp/builds/                                  # workspace dir
//	    <project>_<basename>_<fingerprint>/
//	      build/                                   # out-of-source build dir
//	  compile_commands.json                        # copied after configure
//	  bin/                                         # install output (DESTDIR=<source>)
package workspace

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
)

const (
	// DefaultWorkspaceDir is the workspace location relative to the source root.
	DefaultWorkspaceDir = "tmp/builds"
	// DefaultToolchainFile is the vcpkg toolchain relative to the toolchain root.
	DefaultToolchainFile = "scripts/buildsystems/vcpkg.cmake"
)

// ErrToolchainRootUnset is returned when the toolchain root variable is empty.
var ErrToolchainRootUnset = errors.New("toolchain root is not set")

// Options describes the inputs a Context is derived from.
type Options struct {
	Project       string
	SourceDir     string
	ToolchainRoot string
	ToolchainFile string // relative to ToolchainRoot unless absolute
	WorkspaceDir  string // relative to SourceDir unless absolute
	InstallDir    string // empty means SourceDir
}

// Context holds every path a task needs. It is built once per invocation
// and never changes afterwards.
type Context struct {
	project       string
	sourceDir     string
	toolchainFile string
	workspaceDir  string
	fingerprint   string
	buildPath     string
	installPath   string
}

// New resolves opts into a Context.
func New(opts Options) (*Context, error) {
	if opts.ToolchainRoot == "" {
		return nil, ErrToolchainRootUnset
	}
	sourceDir, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source dir: %w", err)
	}
	toolchainRoot, err := filepath.Abs(opts.ToolchainRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve toolchain root: %w", err)
	}

	c := &Context{
		project:       opts.Project,
		sourceDir:     sourceDir,
		toolchainFile: under(toolchainRoot, opts.ToolchainFile, DefaultToolchainFile),
		workspaceDir:  under(sourceDir, opts.WorkspaceDir, DefaultWorkspaceDir),
	}
	c.fingerprint = Fingerprint(sourceDir)
	c.buildPath = filepath.Join(c.workspaceDir, c.workspaceName(), "build")
	c.installPath = sourceDir
	if opts.InstallDir != "" {
		c.installPath = under(sourceDir, opts.InstallDir, "")
	}
	return c, nil
}

// Fingerprint returns the hex MD5 of path. It only disambiguates workspace
// directories and carries no security meaning.
func Fingerprint(path string) string {
	sum := md5.Sum([]byte(path))
	return hex.EncodeToString(sum[:])
}

func under(base, rel, def string) string {
	if rel == "" {
		rel = def
	}
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(base, filepath.FromSlash(rel))
}

func (c *Context) workspaceName() string {
	return fmt.Sprintf("%s_%s_%s", c.project, filepath.Base(c.sourceDir), c.fingerprint)
}

func (c *Context) Project() string       { return c.project }
func (c *Context) SourceDir() string     { return c.sourceDir }
func (c *Context) ToolchainFile() string { return c.toolchainFile }
func (c *Context) WorkspaceDir() string  { return c.workspaceDir }

// Fingerprint returns the fingerprint of the source dir.
func (c *Context) Fingerprint() string { return c.fingerprint }

// BuildPath returns <workspace>/<project>_<basename>_<fingerprint>/build.
// The directory is created by configure, not here.
func (c *Context) BuildPath() string { return c.buildPath }

// InstallPath returns the install override, or the source dir.
func (c *Context) InstallPath() string { return c.installPath }

// CompileCommands returns the compile command database path in dir.
func CompileCommands(dir string) string {
	return filepath.Join(dir, "compile_commands.json")
}
