// Package constants provides centralized constant values used throughout webmend.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names and paths used by webmend for organizing data.
const (
	// WebmendHome is the hidden directory name where webmend stores all its data.
	// This directory is created in the user's home directory.
	WebmendHome = ".webmend"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// SessionsDir is the directory name where per-session script files are staged.
	SessionsDir = "sessions"
)

// Log file configuration for the rotating CLI log.
const (
	// CLILogFileName is the name of the global CLI log file.
	CLILogFileName = "webmend.log"

	// LogMaxSizeMB is the maximum size in megabytes before log rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to retain.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age in days before rotated logs are removed.
	LogMaxAgeDays = 30

	// LogCompress controls whether rotated log files are gzip-compressed.
	LogCompress = true
)

// Environment variable names injected into script subprocesses.
const (
	// EndpointEnvVar carries the opaque browser endpoint into scripts.
	// Scripts and the probe command treat the value as a bearer token: it is
	// passed through verbatim and never parsed.
	EndpointEnvVar = "CDP_URL"

	// TaskEnvVar carries the natural-language task hint into scripts.
	TaskEnvVar = "WEBMEND_TASK"
)

// Timeout configurations for various operations.
const (
	// DefaultExecutionTimeout is the default maximum duration for one script run.
	DefaultExecutionTimeout = 2 * time.Minute

	// DefaultFixRequestTimeout is the default maximum duration for one fix
	// request against the LLM CLI.
	DefaultFixRequestTimeout = 5 * time.Minute

	// SyntaxCheckTimeout bounds a single "parse, don't execute" pass.
	SyntaxCheckTimeout = 5 * time.Second

	// ProbeAttemptTimeout bounds a single connectivity probe attempt.
	ProbeAttemptTimeout = 10 * time.Second

	// TerminationGracePeriod is how long a timed-out subprocess gets between
	// SIGTERM and SIGKILL.
	TerminationGracePeriod = 5 * time.Second
)

// Retry configuration defaults for the repair loop and the probe.
const (
	// DefaultMaxIterations is the repair-loop budget per session.
	DefaultMaxIterations = 5

	// DefaultMaxSyntaxRetries is how many extra fix requests a single
	// iteration gets when candidates keep failing syntax validation.
	DefaultMaxSyntaxRetries = 2

	// DefaultProbeRetries is the maximum number of connectivity probe attempts.
	DefaultProbeRetries = 3

	// ProbeInitialBackoff is the delay before the first probe retry.
	// Subsequent retries double this, capped at ProbeMaxBackoff.
	ProbeInitialBackoff = 1 * time.Second

	// ProbeMaxBackoff caps the exponential probe backoff.
	ProbeMaxBackoff = 8 * time.Second
)

// Data-quality thresholds applied to extracted records.
const (
	// DefaultMinPriceRate is the minimum fraction of records that must carry
	// a real (non-placeholder) price when prices are required.
	DefaultMinPriceRate = 0.9

	// DefaultMinRatingRate is the rating counterpart of DefaultMinPriceRate.
	DefaultMinRatingRate = 0.8

	// DefaultMinItemCount is the soft lower bound on extracted record count.
	DefaultMinItemCount = 5
)
