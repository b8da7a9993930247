// Where: internal/run/fake_runner_test.go
// What: Fake CommandRunner for tests.
// Why: Lifecycle tests must not spawn real processes.
package run

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// fakeRunner records executed commands and scripts their exit codes.
type fakeRunner struct {
	mu    sync.Mutex
	calls []Command
	// exits maps argv[0] to the exit code to return; unlisted programs
	// exit zero. spawnErr maps argv[0] to a spawn failure.
	exits    map[string]int
	spawnErr map[string]error
}

func (f *fakeRunner) Exec(_ context.Context, cmd Command) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)
	if err, ok := f.spawnErr[cmd.Argv[0]]; ok {
		return -1, err
	}
	return f.exits[cmd.Argv[0]], nil
}

func (f *fakeRunner) lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, cmd := range f.calls {
		out = append(out, strings.Join(cmd.Argv, " "))
	}
	return out
}

func (f *fakeRunner) envOf(program string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cmd := range f.calls {
		if cmd.Argv[0] == program {
			return cmd.Env
		}
	}
	return nil
}

func equalLines(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("got %d commands %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range got {
		if got[i] != want[i] {
			return fmt.Errorf("command[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	return nil
}
