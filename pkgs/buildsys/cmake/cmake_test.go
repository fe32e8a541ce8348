package cmake

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/goplus/mtask/internal/executor"
)

func TestConfigureArgs(t *testing.T) {
	buildDir := filepath.Join(t.TempDir(), "a", "build")
	m := &mockExecutor{}
	c := New(m, "/src", buildDir).
		BuildType("RelWithDebInfo").
		Toolchain("/vcpkg/scripts/buildsystems/vcpkg.cmake").
		Define("CMAKE_EXPORT_COMPILE_COMMANDS", "1").
		Define("CMAKE_INSTALL_PREFIX", "").
		Interactive(true)

	if err := c.Configure(context.Background(), "-G", "Ninja"); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if _, err := os.Stat(buildDir); err != nil {
		t.Fatalf("build dir not created: %v", err)
	}

	want := []string{
		"-S", "/src",
		"-B", buildDir,
		"-DCMAKE_BUILD_TYPE=RelWithDebInfo",
		"-DCMAKE_EXPORT_COMPILE_COMMANDS=1",
		"-DCMAKE_INSTALL_PREFIX=",
		"-DCMAKE_TOOLCHAIN_FILE=/vcpkg/scripts/buildsystems/vcpkg.cmake",
		"-G", "Ninja",
	}
	if len(m.cmds) != 1 {
		t.Fatalf("ran %d commands, want 1", len(m.cmds))
	}
	got := m.cmds[0]
	if got.Name != "cmake" {
		t.Errorf("Name = %q", got.Name)
	}
	if !slices.Equal(got.Args, want) {
		t.Errorf("Args =\n%q\nwant\n%q", got.Args, want)
	}
	if !got.Interactive {
		t.Error("Interactive not propagated")
	}
	if got.Env != nil {
		t.Errorf("Env = %v, want nil", got.Env)
	}
}

func TestDefineBool(t *testing.T) {
	c := New(&mockExecutor{}, "s", "b")
	c.DefineBool("ENABLE", true).DefineBool("DISABLE", false)
	got := c.ConfigureArgs()
	want := []string{"-S", "s", "-B", "b", "-DDISABLE:BOOL=OFF", "-DENABLE:BOOL=ON"}
	if !slices.Equal(got, want) {
		t.Errorf("ConfigureArgs() = %q, want %q", got, want)
	}
}

func TestConfigureArgsLeavesDefines(t *testing.T) {
	c := New(&mockExecutor{}, "s", "b").BuildType("Debug").Toolchain("/t.cmake")
	first := c.ConfigureArgs()
	if len(c.defines) != 0 {
		t.Errorf("ConfigureArgs wrote defines back: %v", c.defines)
	}
	c.Toolchain("")
	want := []string{"-S", "s", "-B", "b", "-DCMAKE_BUILD_TYPE=Debug"}
	if got := c.ConfigureArgs(); !slices.Equal(got, want) {
		t.Errorf("ConfigureArgs() after clearing toolchain = %q, want %q (first %q)", got, want, first)
	}
}

func TestBinary(t *testing.T) {
	m := &mockExecutor{output: "cmake version 3.28.1\n"}
	c := New(m, "s", "b").Binary("/opt/cmake/bin/cmake")
	if _, err := c.Version(context.Background()); err != nil {
		t.Fatalf("Version: %v", err)
	}
	if err := c.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, cmd := range m.cmds {
		if cmd.Name != "/opt/cmake/bin/cmake" {
			t.Errorf("ran %q", cmd.Name)
		}
	}
}

func TestBuildAndInstall(t *testing.T) {
	m := &mockExecutor{}
	c := New(m, "/src", "/b")
	c.Env("DESTDIR", "/stage")

	if err := c.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := c.Install(context.Background()); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !slices.Equal(m.cmds[0].Args, []string{"--build", "/b"}) {
		t.Errorf("build args = %q", m.cmds[0].Args)
	}
	if !slices.Equal(m.cmds[1].Args, []string{"--install", "/b"}) {
		t.Errorf("install args = %q", m.cmds[1].Args)
	}
	if m.cmds[1].Env["DESTDIR"] != "/stage" {
		t.Errorf("install env = %v", m.cmds[1].Env)
	}
}

func TestRunError(t *testing.T) {
	boom := errors.New("exit status 2")
	c := New(&mockExecutor{err: boom}, "/src", "/b")
	if err := c.Build(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Build error = %v, want %v", err, boom)
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		out     string
		want    string
		wantErr bool
	}{
		{"cmake version 3.28.1\n\nCMake suite maintained and supported by Kitware (kitware.com/cmake).\n", "3.28.1", false},
		{"cmake version 3.31.0-rc2\n", "3.31.0-rc2", false},
		{"garbage", "", true},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.out)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVersion(%q) err = %v", tt.out, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVersion(%q) = %q, want %q", tt.out, got, tt.want)
		}
	}
}

func TestAtLeast(t *testing.T) {
	tests := []struct {
		have, min string
		want      bool
	}{
		{"3.28.1", "3.21", true},
		{"3.21.0", "3.21", true},
		{"3.20.6", "3.21", false},
		{"3.31.0-rc2", "3.31.0", false},
		{"4.0.0", "3.21.0", true},
	}
	for _, tt := range tests {
		got, err := AtLeast(tt.have, tt.min)
		if err != nil {
			t.Fatalf("AtLeast(%q, %q): %v", tt.have, tt.min, err)
		}
		if got != tt.want {
			t.Errorf("AtLeast(%q, %q) = %v, want %v", tt.have, tt.min, got, tt.want)
		}
	}
	if _, err := AtLeast("three", "3.21"); err == nil {
		t.Error("expected error for invalid version")
	}
}

func TestRequire(t *testing.T) {
	m := &mockExecutor{output: "cmake version 3.20.0\n"}
	c := New(m, "s", "b")
	if err := c.Require(context.Background(), "3.21"); err == nil || !strings.Contains(err.Error(), "older") {
		t.Fatalf("Require error = %v", err)
	}
	if got := m.cmds[0]; got.Name != "cmake" || !slices.Equal(got.Args, []string{"--version"}) {
		t.Errorf("version probe = %v", got)
	}
	m.output = "cmake version 3.21.3\n"
	if err := c.Require(context.Background(), "3.21"); err != nil {
		t.Fatalf("Require: %v", err)
	}
}

func TestConfigureBuildInstallE2E(t *testing.T) {
	if _, err := exec.LookPath("cmake"); err != nil {
		t.Skip("cmake not found in PATH")
	}
	if _, err := exec.LookPath("make"); err != nil {
		t.Skip("make not found in PATH")
	}

	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	stage := filepath.Join(tmp, "stage")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	lists := "cmake_minimum_required(VERSION 3.10)\nproject(dummy NONE)\ninstall(FILES marker.txt DESTINATION bin)\n"
	if err := os.WriteFile(filepath.Join(src, "CMakeLists.txt"), []byte(lists), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "marker.txt"), []byte("ok"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(executor.NewLocal(), src, filepath.Join(tmp, "build")).
		Define("CMAKE_EXPORT_COMPILE_COMMANDS", "1").
		Define("CMAKE_INSTALL_PREFIX", "")
	c.Env("DESTDIR", stage)

	ctx := context.Background()
	if err := c.Configure(ctx); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if err := c.Build(ctx); err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := c.Install(ctx); err != nil {
		t.Fatalf("install: %v", err)
	}
	if _, err := os.Stat(filepath.Join(stage, "bin", "marker.txt")); err != nil {
		t.Fatalf("installed file missing: %v", err)
	}
}
