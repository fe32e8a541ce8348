package buildsys

import "context"

// BuildSystem captures the lifecycle shared by generator front-ends (CMake
// today). Implementations add their own knobs.
type BuildSystem interface {
	// Environment override applied to every step.
	Env(key, val string)

	// Lifecycle.
	Configure(ctx context.Context, args ...string) error
	Build(ctx context.Context, args ...string) error
	Install(ctx context.Context, args ...string) error

	// Where the build tree lives.
	BuildDir() string
}
