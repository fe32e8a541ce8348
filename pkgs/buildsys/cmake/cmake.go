// Package cmake builds and runs cmake command lines.
package cmake

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goplus/mtask/internal/executor"
	"github.com/goplus/mtask/pkgs/buildsys"
	"golang.org/x/mod/semver"
)

type defineValue struct {
	value    string
	typeName string
}

// CMake wraps the configure/build/install steps of one build tree.
type CMake struct {
	exec        executor.Executor
	bin         string
	sourceDir   string
	buildDir    string
	buildType   string
	toolchain   string
	interactive bool
	defines     map[string]defineValue
	env         map[string]string
}

var _ buildsys.BuildSystem = (*CMake)(nil)

// New creates a CMake for sourceDir configured into buildDir.
func New(exec executor.Executor, sourceDir, buildDir string) *CMake {
	return &CMake{
		exec:      exec,
		bin:       "cmake",
		sourceDir: sourceDir,
		buildDir:  buildDir,
		defines:   map[string]defineValue{},
		env:       map[string]string{},
	}
}

// Binary overrides the cmake executable.
func (c *CMake) Binary(path string) *CMake {
	c.bin = path
	return c
}

func (c *CMake) BuildType(name string) *CMake {
	c.buildType = name
	return c
}

func (c *CMake) Toolchain(path string) *CMake {
	c.toolchain = path
	return c
}

// Interactive attaches the terminal to every step.
func (c *CMake) Interactive(on bool) *CMake {
	c.interactive = on
	return c
}

// Define adds an untyped -D<key>=<value>.
func (c *CMake) Define(key, value string) *CMake {
	c.defines[key] = defineValue{value: value}
	return c
}

// DefineBool adds -D<key>:BOOL=ON/OFF.
func (c *CMake) DefineBool(key string, value bool) *CMake {
	if value {
		c.defines[key] = defineValue{value: "ON", typeName: "BOOL"}
		return c
	}
	c.defines[key] = defineValue{value: "OFF", typeName: "BOOL"}
	return c
}

func (c *CMake) Env(key, value string) {
	c.env[key] = value
}

func (c *CMake) BuildDir() string {
	return c.buildDir
}

// ConfigureArgs returns the arguments Configure passes to cmake.
func (c *CMake) ConfigureArgs(args ...string) []string {
	defines := make(map[string]defineValue, len(c.defines)+2)
	for k, v := range c.defines {
		defines[k] = v
	}
	if c.toolchain != "" {
		defines["CMAKE_TOOLCHAIN_FILE"] = defineValue{value: c.toolchain}
	}
	if c.buildType != "" {
		defines["CMAKE_BUILD_TYPE"] = defineValue{value: c.buildType}
	}
	cmakeArgs := []string{"-S", c.sourceDir, "-B", c.buildDir}
	cmakeArgs = append(cmakeArgs, definesArgs(defines)...)
	return append(cmakeArgs, args...)
}

// Configure creates the build dir and generates the build tree.
func (c *CMake) Configure(ctx context.Context, args ...string) error {
	if err := os.MkdirAll(c.buildDir, 0o755); err != nil {
		return err
	}
	return c.run(ctx, c.ConfigureArgs(args...))
}

// Build runs "cmake --build <build>".
func (c *CMake) Build(ctx context.Context, args ...string) error {
	return c.run(ctx, append([]string{"--build", c.buildDir}, args...))
}

// Install runs "cmake --install <build>". The staging root comes from the
// DESTDIR override, if any.
func (c *CMake) Install(ctx context.Context, args ...string) error {
	return c.run(ctx, append([]string{"--install", c.buildDir}, args...))
}

// Version returns the cmake version, e.g. "3.28.1".
func (c *CMake) Version(ctx context.Context) (string, error) {
	out, err := c.exec.Output(ctx, executor.Command{Name: c.bin, Args: []string{"--version"}})
	if err != nil {
		return "", err
	}
	return ParseVersion(out)
}

// Require fails unless the installed cmake is at least min.
func (c *CMake) Require(ctx context.Context, min string) error {
	have, err := c.Version(ctx)
	if err != nil {
		return err
	}
	ok, err := AtLeast(have, min)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("cmake %s is older than required %s", have, min)
	}
	return nil
}

// ParseVersion extracts the version from "cmake --version" output.
func ParseVersion(out string) (string, error) {
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		if v, ok := strings.CutPrefix(strings.TrimSpace(sc.Text()), "cmake version "); ok {
			return v, nil
		}
	}
	return "", fmt.Errorf("unrecognized cmake version output: %q", out)
}

// AtLeast reports whether version have >= min.
func AtLeast(have, min string) (bool, error) {
	h, m := "v"+have, "v"+min
	if !semver.IsValid(h) {
		return false, fmt.Errorf("invalid cmake version %q", have)
	}
	if !semver.IsValid(m) {
		return false, fmt.Errorf("invalid minimum version %q", min)
	}
	return semver.Compare(h, m) >= 0, nil
}

func (c *CMake) run(ctx context.Context, args []string) error {
	var env map[string]string
	if len(c.env) > 0 {
		env = c.env
	}
	return c.exec.Run(ctx, executor.Command{
		Name:        c.bin,
		Args:        args,
		Env:         env,
		Interactive: c.interactive,
	})
}

func definesArgs(defines map[string]defineValue) []string {
	if len(defines) == 0 {
		return nil
	}
	keys := make([]string, 0, len(defines))
	for k := range defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		def := defines[k]
		if def.typeName != "" {
			args = append(args, "-D"+k+":"+def.typeName+"="+def.value)
			continue
		}
		args = append(args, "-D"+k+"="+def.value)
	}
	return args
}
