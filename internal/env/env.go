package env

import (
	"os"
	"strings"
)

// ToolchainVar is the variable naming the vcpkg root.
const ToolchainVar = "VCPKG_ROOT"

// ToolchainRoot returns the value of the toolchain variable name, or of
// ToolchainVar when name is empty.
func ToolchainRoot(name string) string {
	if name == "" {
		name = ToolchainVar
	}
	return os.Getenv(name)
}

// Map returns the process environment as a map. Entries without '=' are
// dropped.
func Map() map[string]string {
	environ := os.Environ()
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			m[k] = v
		}
	}
	return m
}
