// Where: internal/run/schedule.go
// What: Plan execution, sequential and parallel.
// Why: depends order is the contract; parallelism must not loosen it.
package run

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Execute runs the plan. parallel <= 1 runs strictly sequentially in plan
// order. parallel > 1 runs up to that many environments at once, each
// starting only after its depends have completed; output is buffered per
// environment so lines never interleave.
func (r *Runner) Execute(ctx context.Context, plan *Plan, parallel int, opts Options) *Report {
	if parallel > 1 {
		return r.executeParallel(ctx, plan, parallel, opts)
	}

	report := &Report{}
	failed := map[string]bool{}
	for _, env := range plan.Envs {
		if dep, bad := firstFailedDep(plan.After[env.Name], failed); bad {
			result := Result{
				Env:    env.Name,
				Status: StatusSkipped,
				Reason: fmt.Sprintf("depends on failed environment %q", dep),
			}
			report.Add(result)
			failed[env.Name] = true
			continue
		}
		result := r.RunEnv(ctx, env, opts)
		report.Add(result)
		if result.Status == StatusFailed || result.Status == StatusInterrupted {
			failed[env.Name] = true
		}
		if result.Status == StatusInterrupted {
			break
		}
	}
	return report
}

func (r *Runner) executeParallel(ctx context.Context, plan *Plan, parallel int, opts Options) *Report {
	var mu sync.Mutex
	done := map[string]chan struct{}{}
	failed := map[string]bool{}
	results := map[string]Result{}
	for _, env := range plan.Envs {
		done[env.Name] = make(chan struct{})
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(parallel)

	out := r.Out
	for _, env := range plan.Envs {
		group.Go(func() error {
			defer close(done[env.Name])

			for _, dep := range plan.After[env.Name] {
				select {
				case <-done[dep]:
				case <-ctx.Done():
					mu.Lock()
					results[env.Name] = Result{Env: env.Name, Status: StatusInterrupted}
					failed[env.Name] = true
					mu.Unlock()
					return nil
				}
			}

			mu.Lock()
			dep, bad := firstFailedDep(plan.After[env.Name], failed)
			mu.Unlock()
			if bad {
				mu.Lock()
				results[env.Name] = Result{
					Env:    env.Name,
					Status: StatusSkipped,
					Reason: fmt.Sprintf("depends on failed environment %q", dep),
				}
				failed[env.Name] = true
				mu.Unlock()
				return nil
			}

			var buf bytes.Buffer
			scoped := *r
			scoped.Out = &buf
			result := scoped.RunEnv(ctx, env, opts)

			mu.Lock()
			flush(out, &buf)
			results[env.Name] = result
			if result.Status == StatusFailed || result.Status == StatusInterrupted {
				failed[env.Name] = true
			}
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	report := &Report{}
	for _, env := range plan.Envs {
		if result, ok := results[env.Name]; ok {
			report.Add(result)
		}
	}
	return report
}

func firstFailedDep(deps []string, failed map[string]bool) (string, bool) {
	for _, dep := range deps {
		if failed[dep] {
			return dep, true
		}
	}
	return "", false
}

func flush(out io.Writer, buf *bytes.Buffer) {
	if buf.Len() > 0 {
		_, _ = io.Copy(out, buf)
	}
}
