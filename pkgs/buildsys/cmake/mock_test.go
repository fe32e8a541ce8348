package cmake

import (
	"context"

	"github.com/goplus/mtask/internal/executor"
)

// mockExecutor records commands instead of running them.
type mockExecutor struct {
	cmds   []executor.Command
	output string
	err    error
}

func (m *mockExecutor) Run(ctx context.Context, cmd executor.Command) error {
	m.cmds = append(m.cmds, cmd)
	return m.err
}

func (m *mockExecutor) Output(ctx context.Context, cmd executor.Command) (string, error) {
	m.cmds = append(m.cmds, cmd)
	return m.output, m.err
}
