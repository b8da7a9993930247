// Where: internal/run/report.go
// What: Run results and summary rendering.
// Why: One place decides what "passed" means for the exit code.
package run

import (
	"fmt"
	"io"
	"time"
)

// Status classifies the outcome of one environment.
type Status int

const (
	StatusOK Status = iota
	StatusFailed
	StatusSkipped
	StatusIgnoredFailure
	StatusInterrupted
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusIgnoredFailure:
		return "failed (ignored)"
	case StatusInterrupted:
		return "interrupted"
	}
	return "unknown"
}

// Result is the outcome of running one environment.
type Result struct {
	Env      string
	Status   Status
	ExitCode int
	Reason   string
	Duration time.Duration
}

// Report accumulates results in execution order.
type Report struct {
	Results []Result
}

// Failed reports whether any environment outcome should fail the run.
func (r *Report) Failed() bool {
	for _, result := range r.Results {
		switch result.Status {
		case StatusFailed, StatusInterrupted:
			return true
		}
	}
	return false
}

// Add appends a result.
func (r *Report) Add(result Result) {
	r.Results = append(r.Results, result)
}

// Summary writes the per-environment lines and the closing verdict.
func (r *Report) Summary(out io.Writer) {
	fmt.Fprintln(out, "_________________________________ summary _________________________________")
	for _, result := range r.Results {
		switch result.Status {
		case StatusOK:
			fmt.Fprintf(out, "  %s: ok (%s)\n", result.Env, roundDuration(result.Duration))
		case StatusFailed:
			reason := result.Reason
			if reason == "" {
				reason = fmt.Sprintf("exit code %d", result.ExitCode)
			}
			fmt.Fprintf(out, "  %s: failed, %s (%s)\n", result.Env, reason, roundDuration(result.Duration))
		case StatusSkipped:
			fmt.Fprintf(out, "  %s: skipped, %s\n", result.Env, result.Reason)
		case StatusIgnoredFailure:
			fmt.Fprintf(out, "  %s: failed but outcome ignored (%s)\n", result.Env, roundDuration(result.Duration))
		case StatusInterrupted:
			fmt.Fprintf(out, "  %s: interrupted\n", result.Env)
		}
	}
	if !r.Failed() {
		fmt.Fprintln(out, "  congratulations :)")
	}
}

func roundDuration(d time.Duration) time.Duration {
	return d.Round(10 * time.Millisecond)
}
