// Package errors provides centralized error handling for webmend.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrEndpointUnreachable indicates the connectivity probe gave up before
	// the repair loop started. The session is skipped, never retried internally.
	ErrEndpointUnreachable = errors.New("browser endpoint unreachable")

	// ErrNoCandidate indicates the fixer produced no usable script text for
	// an attempt. Distinct from a syntax failure.
	ErrNoCandidate = errors.New("fixer produced no candidate script")

	// ErrFixerInvocation indicates the LLM CLI failed to execute or returned
	// a non-zero exit code.
	ErrFixerInvocation = errors.New("fixer invocation failed")

	// ErrIterationsExhausted indicates the repair loop ran out of budget
	// without producing an accepted script.
	ErrIterationsExhausted = errors.New("repair iterations exhausted")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidRepair indicates an invalid repair configuration value.
	ErrConfigInvalidRepair = errors.New("invalid repair configuration")

	// ErrConfigInvalidQuality indicates an invalid quality threshold value.
	ErrConfigInvalidQuality = errors.New("invalid quality configuration")

	// ErrConfigInvalidProbe indicates an invalid probe configuration value.
	ErrConfigInvalidProbe = errors.New("invalid probe configuration")

	// ErrConfigInvalidAI indicates an invalid AI configuration value.
	ErrConfigInvalidAI = errors.New("invalid AI configuration")

	// ErrScriptStageFailed indicates the per-iteration script file could not
	// be written to the session directory.
	ErrScriptStageFailed = errors.New("failed to stage script file")

	// ErrInvalidOutputFormat indicates an unsupported --output flag value.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrMissingEndpoint indicates no browser endpoint was supplied via flag
	// or environment.
	ErrMissingEndpoint = errors.New("no browser endpoint provided")

	// ErrMissingTask indicates the run command was invoked without a task
	// description.
	ErrMissingTask = errors.New("no task description provided")
)
