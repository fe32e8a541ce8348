// Package task implements the named build tasks and runs them in
// prerequisite order.
package task

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goplus/mtask/internal/executor"
	"github.com/goplus/mtask/internal/platform"
	"github.com/goplus/mtask/internal/workspace"
	"github.com/rs/zerolog"
)

// Task is a named unit of work. Pre lists tasks that run before it.
type Task struct {
	Name string
	Pre  []string
	run  func(r *Runner, ctx context.Context) error
}

var registry = map[string]Task{}

func register(t Task) {
	if _, ok := registry[t.Name]; ok {
		panic("task: duplicate task " + t.Name)
	}
	registry[t.Name] = t
}

// Names returns the registered task names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Options configures a Runner.
type Options struct {
	Workspace *workspace.Context
	Profile   platform.Profile
	Exec      executor.Executor
	// Out receives the user-facing messages. Defaults to os.Stdout.
	Out    io.Writer
	Logger zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time

	BuildType     string
	AutoConfigure bool
	BlockedWeeks  []int
	CMakeMinimum  string
	// CMake overrides the cmake executable.
	CMake string
	// CMakeOptions are passed to configure as -D<key>:BOOL=ON/OFF.
	CMakeOptions map[string]bool
	Binaries     platform.Binaries
}

// Runner executes tasks for one invocation. Each task runs at most once
// per Runner.
type Runner struct {
	ws      *workspace.Context
	profile platform.Profile
	exec    executor.Executor
	out     io.Writer
	logger  zerolog.Logger
	now     func() time.Time

	buildType     string
	autoConfigure bool
	blockedWeeks  []int
	cmakeMinimum  string
	cmakeBin      string
	cmakeOptions  map[string]bool
	binaries      platform.Binaries

	state map[string]runState
}

type runState int

const (
	running runState = iota + 1
	done
)

// NewRunner creates a Runner from opts.
func NewRunner(opts Options) *Runner {
	r := &Runner{
		ws:            opts.Workspace,
		profile:       opts.Profile,
		exec:          opts.Exec,
		out:           opts.Out,
		logger:        opts.Logger,
		now:           opts.Now,
		buildType:     opts.BuildType,
		autoConfigure: opts.AutoConfigure,
		blockedWeeks:  opts.BlockedWeeks,
		cmakeMinimum:  opts.CMakeMinimum,
		cmakeBin:      opts.CMake,
		cmakeOptions:  opts.CMakeOptions,
		binaries:      opts.Binaries,
		state:         map[string]runState{},
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Run runs the named task after its prerequisites.
func (r *Runner) Run(ctx context.Context, name string) error {
	t, ok := registry[name]
	if !ok {
		return fmt.Errorf("unknown task %q, want one of %s", name, strings.Join(Names(), ", "))
	}
	switch r.state[name] {
	case done:
		return nil
	case running:
		return fmt.Errorf("task %q depends on itself", name)
	}
	r.state[name] = running
	for _, pre := range t.Pre {
		if err := r.Run(ctx, pre); err != nil {
			delete(r.state, name)
			return err
		}
	}
	r.logger.Debug().Str("task", name).Msg("running task")
	if err := t.run(r, ctx); err != nil {
		delete(r.state, name)
		return fmt.Errorf("%s: %w", name, err)
	}
	r.state[name] = done
	return nil
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
