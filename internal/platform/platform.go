// Package platform selects the generator and toolchain flags for the host.
package platform

import "runtime"

// Profile is the host flavour a command line is built for.
type Profile int

const (
	Unix Profile = iota
	Windows
)

// Current returns the profile of the running process.
func Current() Profile {
	return For(runtime.GOOS)
}

// For maps a GOOS value to its profile.
func For(goos string) Profile {
	if goos == "windows" {
		return Windows
	}
	return Unix
}

func (p Profile) String() string {
	if p == Windows {
		return "windows"
	}
	return "unix"
}

// Generator returns the CMake generator name.
func (p Profile) Generator() string {
	if p == Windows {
		return "MinGW Makefiles"
	}
	return "Ninja"
}

// CXXCompiler returns the compiler forced through CMAKE_CXX_COMPILER, if any.
func (p Profile) CXXCompiler() string {
	if p == Windows {
		return "g++"
	}
	return ""
}

// MakeProgram returns the make program forced through CMAKE_MAKE_PROGRAM, if any.
func (p Profile) MakeProgram() string {
	if p == Windows {
		return "mingw32-make"
	}
	return ""
}

// Interactive reports whether spawned commands get the terminal attached.
func (p Profile) Interactive() bool {
	return p != Windows
}

// ConfigureArgs returns the platform-specific generator arguments.
func (p Profile) ConfigureArgs() []string {
	args := []string{"-G", p.Generator()}
	if cxx := p.CXXCompiler(); cxx != "" {
		args = append(args, "-DCMAKE_CXX_COMPILER="+cxx)
	}
	if mk := p.MakeProgram(); mk != "" {
		args = append(args, "-DCMAKE_MAKE_PROGRAM="+mk)
	}
	return args
}

// Binaries names the installed executable per profile.
type Binaries struct {
	Windows string
	Unix    string
}

// BinaryName picks the executable name for p, falling back to
// testbed.exe on Windows and project elsewhere.
func (p Profile) BinaryName(project string, bins Binaries) string {
	if p == Windows {
		if bins.Windows != "" {
			return bins.Windows
		}
		return "testbed.exe"
	}
	if bins.Unix != "" {
		return bins.Unix
	}
	return project
}
