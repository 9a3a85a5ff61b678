package domain

// FixRequest contains everything the fixer collaborator needs to produce a
// replacement script for a failed iteration.
//
// Example JSON representation:
//
//	{
//	    "task": "extract the 20 top-rated laptops with prices",
//	    "script": "#!/usr/bin/env bash\n...",
//	    "error_text": "execution error: ...\ndata-quality: Only 75% ...",
//	    "failed_line": 14,
//	    "endpoint": "ws://...",
//	    "attempts": [ ... ]
//	}
type FixRequest struct {
	// Task is the natural-language task description.
	Task string `json:"task"`

	// Script is the current (failing) script text.
	Script string `json:"script"`

	// ErrorText is the combined formatted error for the iteration, including
	// quality issues prefixed distinctly from execution errors.
	ErrorText string `json:"error_text"`

	// FailedLine is the best-effort failing script line. Zero when unknown.
	FailedLine int `json:"failed_line,omitempty"`

	// Endpoint is the opaque browser endpoint the script runs against.
	// Passed through for prompt context only; never parsed.
	Endpoint string `json:"endpoint"`

	// SyntaxError carries the diagnostic from a rejected prior candidate
	// when the request is a syntax-retry. Empty on the first request of an
	// iteration.
	SyntaxError string `json:"syntax_error,omitempty"`

	// Attempts is the full prior history so the fixer can see and avoid
	// repeated dead ends.
	Attempts []Attempt `json:"attempts,omitempty"`
}

// FixResult captures the outcome of one fixer invocation, logged per
// invocation for telemetry.
type FixResult struct {
	// Script is the candidate script text. Empty means the fixer produced
	// no usable candidate this attempt.
	Script string `json:"script,omitempty"`

	// DurationMs is how long the invocation took in milliseconds.
	DurationMs int64 `json:"duration_ms"`

	// Model identifies the model that produced the candidate, when known.
	Model string `json:"model,omitempty"`
}
