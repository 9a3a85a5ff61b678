// Package domain provides shared domain types for the webmend repair loop.
package domain

import "time"

// Attempt records one failed repair iteration. Attempts are immutable once
// created and owned exclusively by the history that holds them.
type Attempt struct {
	// Iteration is the 1-based loop iteration that produced this attempt.
	Iteration int `json:"iteration"`

	// ScriptText is the script that was executed during the iteration.
	ScriptText string `json:"script_text"`

	// ErrorOutput is the combined, formatted error text for the iteration.
	// Data-quality issues are prefixed distinctly from execution errors.
	ErrorOutput string `json:"error_output"`

	// Timestamp is when the attempt was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// ExecutionResult captures one script run. It is produced fresh each
// execution and not retained beyond the iteration that produced it; only the
// derived classification and raw text persist, inside an Attempt.
type ExecutionResult struct {
	// Stdout is the captured standard output.
	Stdout string `json:"stdout"`

	// Stderr is the captured standard error.
	Stderr string `json:"stderr"`

	// ExitCode is the process exit code. Nil when the process never produced
	// one (killed on timeout before exiting).
	ExitCode *int `json:"exit_code,omitempty"`

	// TimedOut reports whether the run was terminated for exceeding its
	// execution timeout.
	TimedOut bool `json:"timed_out"`

	// FailedLine is the 1-based script line that failed, parsed best-effort
	// from interpreter diagnostics ("file: line N:"). Zero when unknown.
	FailedLine int `json:"failed_line,omitempty"`
}

// Succeeded reports whether the process itself completed cleanly.
// Data-quality validation is a separate, independent verdict.
func (r *ExecutionResult) Succeeded() bool {
	return !r.TimedOut && r.ExitCode != nil && *r.ExitCode == 0
}

// ValidationOutcome is the data-quality verdict for a run, independent of
// exit code. A script can exit 0 and still fail validation.
type ValidationOutcome struct {
	// Valid reports whether the recognized output passed all hard checks.
	// Output the validator cannot recognize is deliberately treated as valid.
	Valid bool `json:"valid"`

	// Issues lists human-readable problems found in the output. Issues may
	// be present even when Valid is true (soft checks).
	Issues []string `json:"issues,omitempty"`
}

// RepairOutcome is the terminal result of one repair session.
type RepairOutcome struct {
	// Success reports whether an accepted script run occurred.
	Success bool `json:"success"`

	// Iterations is how many loop iterations ran. Always within
	// [0, maxIterations].
	Iterations int `json:"iterations"`

	// FinalScript is the current script when the session ended. On success
	// it is the accepted script; on exhaustion it is the last candidate that
	// passed syntax validation.
	FinalScript string `json:"final_script"`

	// LastError is the formatted error of the final failed iteration.
	// Empty on success.
	LastError string `json:"last_error,omitempty"`

	// SkippedStaleEndpoint reports that the connectivity probe failed before
	// any iteration ran. Iterations is 0 in that case.
	SkippedStaleEndpoint bool `json:"skipped_stale_endpoint,omitempty"`
}
