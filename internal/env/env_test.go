package env

import "testing"

func TestToolchainRoot(t *testing.T) {
	t.Setenv(ToolchainVar, "/opt/vcpkg")
	t.Setenv("MY_VCPKG", "/other")

	if got := ToolchainRoot(""); got != "/opt/vcpkg" {
		t.Errorf("ToolchainRoot(\"\") = %q, want /opt/vcpkg", got)
	}
	if got := ToolchainRoot("MY_VCPKG"); got != "/other" {
		t.Errorf("ToolchainRoot(MY_VCPKG) = %q, want /other", got)
	}
}

func TestToolchainRootUnset(t *testing.T) {
	t.Setenv(ToolchainVar, "")
	if got := ToolchainRoot(""); got != "" {
		t.Errorf("ToolchainRoot(\"\") = %q, want empty", got)
	}
}

func TestMap(t *testing.T) {
	t.Setenv("MTASK_ENV_TEST", "a=b")
	m := Map()
	if got := m["MTASK_ENV_TEST"]; got != "a=b" {
		t.Errorf("Map()[MTASK_ENV_TEST] = %q, want %q", got, "a=b")
	}
}
