package task

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goplus/mtask/internal/executor"
	"github.com/goplus/mtask/internal/platform"
	"github.com/goplus/mtask/internal/workspace"
	"github.com/rs/zerolog"
)

// mockExecutor records commands. Configure runs drop a compile command
// database into the build dir unless skipCCDB is set.
type mockExecutor struct {
	cmds     []executor.Command
	skipCCDB bool
	output   string
	fail     map[string]error // keyed by first argument
}

func (m *mockExecutor) Run(ctx context.Context, cmd executor.Command) error {
	m.cmds = append(m.cmds, cmd)
	if len(cmd.Args) > 0 {
		if err := m.fail[cmd.Args[0]]; err != nil {
			return err
		}
	}
	if len(cmd.Args) > 3 && cmd.Args[0] == "-S" && !m.skipCCDB {
		return os.WriteFile(workspace.CompileCommands(cmd.Args[3]), []byte("[]"), 0o644)
	}
	return nil
}

func (m *mockExecutor) Output(ctx context.Context, cmd executor.Command) (string, error) {
	m.cmds = append(m.cmds, cmd)
	return m.output, nil
}

// steps returns the first argument of each recorded command, or the
// command name when it has none.
func (m *mockExecutor) steps() []string {
	var s []string
	for _, c := range m.cmds {
		if len(c.Args) == 0 {
			s = append(s, c.Name)
			continue
		}
		s = append(s, c.Args[0])
	}
	return s
}

type fixture struct {
	src    string
	ws     *workspace.Context
	exec   *mockExecutor
	out    *bytes.Buffer
	runner *Runner
}

func newFixture(t *testing.T, profile platform.Profile, mutate ...func(*Options)) *fixture {
	t.Helper()
	src := filepath.Join(t.TempDir(), "proj")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	ws, err := workspace.New(workspace.Options{
		Project:       "mtEngine",
		SourceDir:     src,
		ToolchainRoot: "/opt/vcpkg",
	})
	if err != nil {
		t.Fatalf("workspace.New: %v", err)
	}
	f := &fixture{src: src, ws: ws, exec: &mockExecutor{}, out: &bytes.Buffer{}}
	opts := Options{
		Workspace:     ws,
		Profile:       profile,
		Exec:          f.exec,
		Out:           f.out,
		Logger:        zerolog.Nop(),
		Now:           fixedNow("2026-10-16"),
		BuildType:     "RelWithDebInfo",
		AutoConfigure: true,
		BlockedWeeks:  []int{36, 37, 38},
	}
	for _, m := range mutate {
		m(&opts)
	}
	f.runner = NewRunner(opts)
	return f
}

func fixedNow(day string) func() time.Time {
	tm, err := time.Parse(time.DateOnly, day)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return tm }
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
}
