// Package config loads the optional mtask.hcl project file.
//
// Every attribute is optional; absent ones keep their defaults:
//
//	project        = "mtEngine"
//	toolchain_env  = "VCPKG_ROOT"
//	toolchain_file = "scripts/buildsystems/vcpkg.cmake"
//	workspace_dir  = "tmp/builds"
//	build_type     = "RelWithDebInfo"
//	install_dir    = "${source_dir}/stage"
//	auto_configure = true
//	blocked_weeks  = [36, 37, 38]
//	cmake_minimum  = "3.21"
//	cmake          = "/opt/cmake/bin/cmake"
//	cmake_options  = { BUILD_TESTING = false }
//
//	binary {
//	  windows = "testbed.exe"
//	  unix    = "mtEngine"
//	}
//
// Expressions can read the process environment through env (env.HOME) and
// the source root through source_dir.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goplus/mtask/internal/env"
	"github.com/goplus/mtask/internal/platform"
	"github.com/goplus/mtask/internal/workspace"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// FileName is the project file looked up in the source root.
const FileName = "mtask.hcl"

// Config is the resolved project configuration.
type Config struct {
	Project       string
	ToolchainEnv  string
	ToolchainFile string
	WorkspaceDir  string
	BuildType     string
	InstallDir    string
	AutoConfigure bool
	BlockedWeeks  []int
	CMakeMinimum  string
	CMake         string
	CMakeOptions  map[string]bool
	Binaries      platform.Binaries
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Project:       "mtEngine",
		ToolchainEnv:  env.ToolchainVar,
		ToolchainFile: workspace.DefaultToolchainFile,
		WorkspaceDir:  workspace.DefaultWorkspaceDir,
		BuildType:     "RelWithDebInfo",
		AutoConfigure: true,
		BlockedWeeks:  []int{36, 37, 38},
	}
}

type hclFile struct {
	Project       *string          `hcl:"project,optional"`
	ToolchainEnv  *string          `hcl:"toolchain_env,optional"`
	ToolchainFile *string          `hcl:"toolchain_file,optional"`
	WorkspaceDir  *string          `hcl:"workspace_dir,optional"`
	BuildType     *string          `hcl:"build_type,optional"`
	InstallDir    *string          `hcl:"install_dir,optional"`
	AutoConfigure *bool            `hcl:"auto_configure,optional"`
	BlockedWeeks  *[]int           `hcl:"blocked_weeks,optional"`
	CMakeMinimum  *string          `hcl:"cmake_minimum,optional"`
	CMake         *string          `hcl:"cmake,optional"`
	CMakeOptions  *map[string]bool `hcl:"cmake_options,optional"`
	Binary        *hclBinary       `hcl:"binary,block"`
}

type hclBinary struct {
	Windows *string `hcl:"windows,optional"`
	Unix    *string `hcl:"unix,optional"`
}

// Load reads path on top of Default. A missing file is not an error.
func Load(path, sourceDir string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, diags)
	}

	var parsed hclFile
	diags = gohcl.DecodeBody(file.Body, evalContext(sourceDir), &parsed)
	if diags.HasErrors() {
		return cfg, fmt.Errorf("failed to decode %s: %w", path, diags)
	}
	parsed.apply(&cfg)
	return cfg, nil
}

func evalContext(sourceDir string) *hcl.EvalContext {
	vars := env.Map()
	envVals := make(map[string]cty.Value, len(vars))
	for k, v := range vars {
		envVals[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":        cty.ObjectVal(envVals),
			"source_dir": cty.StringVal(sourceDir),
		},
	}
}

func (f *hclFile) apply(cfg *Config) {
	setString(&cfg.Project, f.Project)
	setString(&cfg.ToolchainEnv, f.ToolchainEnv)
	setString(&cfg.ToolchainFile, f.ToolchainFile)
	setString(&cfg.WorkspaceDir, f.WorkspaceDir)
	setString(&cfg.BuildType, f.BuildType)
	setString(&cfg.InstallDir, f.InstallDir)
	setString(&cfg.CMakeMinimum, f.CMakeMinimum)
	setString(&cfg.CMake, f.CMake)
	if f.CMakeOptions != nil {
		cfg.CMakeOptions = *f.CMakeOptions
	}
	if f.AutoConfigure != nil {
		cfg.AutoConfigure = *f.AutoConfigure
	}
	if f.BlockedWeeks != nil {
		cfg.BlockedWeeks = *f.BlockedWeeks
	}
	if f.Binary != nil {
		setString(&cfg.Binaries.Windows, f.Binary.Windows)
		setString(&cfg.Binaries.Unix, f.Binary.Unix)
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
