// Package executor runs external commands on behalf of tasks.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/qiniu/x/gsh"
	"github.com/rs/zerolog"
)

// Command is one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env overrides entries of the parent environment.
	Env map[string]string
	// Interactive attaches the parent's terminal to the child when one is present.
	Interactive bool
}

// String renders the command line for logs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, s := range append([]string{c.Name}, c.Args...) {
		if s == "" || strings.ContainsAny(s, " \t\"") {
			s = fmt.Sprintf("%q", s)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// Executor runs commands, streaming their output. A non-zero exit is
// returned as an error.
type Executor interface {
	Run(ctx context.Context, cmd Command) error
	Output(ctx context.Context, cmd Command) (string, error)
}

// Runner starts a prepared process and waits for it.
type Runner interface {
	Run(cmd *exec.Cmd) error
}

// Local executes commands on the host.
type Local struct {
	os     Runner
	stdin  *os.File
	stdout io.Writer
	stderr io.Writer
	logger zerolog.Logger
}

var _ Executor = (*Local)(nil)

// Option configures Local.
type Option func(*Local)

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(l *Local) {
		l.os = r
	}
}

// WithOutput redirects child stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(l *Local) {
		l.stdout = stdout
		l.stderr = stderr
	}
}

// WithLogger sets the logger commands are traced to.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Local) {
		l.logger = logger
	}
}

// NewLocal creates a host executor backed by gsh.Sys.
func NewLocal(opts ...Option) *Local {
	l := &Local{
		os:     gsh.Sys,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Local) Run(ctx context.Context, c Command) error {
	cmd := l.prepare(ctx, c)
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr
	if c.Interactive && l.terminal() {
		cmd.Stdin = l.stdin
	}
	l.logger.Debug().Str("dir", cmd.Dir).Bool("tty", cmd.Stdin != nil).Msg(c.String())
	if err := l.os.Run(cmd); err != nil {
		return fmt.Errorf("%s: %w", c.Name, err)
	}
	return nil
}

// Output runs c and returns its standard output.
func (l *Local) Output(ctx context.Context, c Command) (string, error) {
	var buf bytes.Buffer
	cmd := l.prepare(ctx, c)
	cmd.Stdout = &buf
	cmd.Stderr = l.stderr
	l.logger.Debug().Str("dir", cmd.Dir).Msg(c.String())
	if err := l.os.Run(cmd); err != nil {
		return "", fmt.Errorf("%s: %w", c.Name, err)
	}
	return buf.String(), nil
}

func (l *Local) prepare(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = MergeEnv(os.Environ(), c.Env)
	}
	return cmd
}

func (l *Local) terminal() bool {
	if l.stdin == nil {
		return false
	}
	fd := l.stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// MergeEnv applies override on top of base ("key=value" pairs) and returns
// the result sorted by key.
func MergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}
