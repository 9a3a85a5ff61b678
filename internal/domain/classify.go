package domain

// ErrorCategory identifies one member of the closed error taxonomy produced
// by the classifier. Categories rank failure causes for the repair prompt;
// they are never thresholds or guarantees.
type ErrorCategory string

// The closed set of error categories. Confidence scores attached to these are
// used only for ranking the primary error of an iteration.
const (
	// CategoryCDPConnection covers failures reaching or keeping the remote
	// browser endpoint (refused sockets, dead websockets, closed targets).
	CategoryCDPConnection ErrorCategory = "CDP_CONNECTION"

	// CategoryNavigation covers page-load and navigation failures.
	CategoryNavigation ErrorCategory = "NAVIGATION"

	// CategorySelectorEmpty covers selectors that matched nothing.
	CategorySelectorEmpty ErrorCategory = "SELECTOR_EMPTY"

	// CategorySelectorWrong covers malformed or mistargeted selectors.
	CategorySelectorWrong ErrorCategory = "SELECTOR_WRONG"

	// CategoryDataQuality covers runs that exited cleanly but produced
	// semantically bad data (placeholder prices, missing fields).
	CategoryDataQuality ErrorCategory = "DATA_QUALITY"

	// CategoryExtractionIncomplete covers partial extractions.
	CategoryExtractionIncomplete ErrorCategory = "EXTRACTION_INCOMPLETE"

	// CategoryJSONParsing covers malformed JSON in the script's own plumbing.
	CategoryJSONParsing ErrorCategory = "JSON_PARSING"

	// CategoryJavaScriptError covers JS evaluation failures inside the page.
	CategoryJavaScriptError ErrorCategory = "JAVASCRIPT_ERROR"

	// CategoryBashError covers shell-level failures in the script itself.
	CategoryBashError ErrorCategory = "BASH_ERROR"

	// CategoryTimeout covers runs terminated for exceeding the execution
	// timeout. Injected synthetically, never matched from output.
	CategoryTimeout ErrorCategory = "TIMEOUT"

	// CategoryAccessDenied covers bot walls, captchas, and 403s.
	CategoryAccessDenied ErrorCategory = "ACCESS_DENIED"

	// CategoryUnknown is the fallback when nothing matched but the exit code
	// was non-zero.
	CategoryUnknown ErrorCategory = "UNKNOWN"
)

// String returns the category name.
func (c ErrorCategory) String() string {
	return string(c)
}

// Valid reports whether the category is a member of the closed set.
func (c ErrorCategory) Valid() bool {
	switch c {
	case CategoryCDPConnection, CategoryNavigation, CategorySelectorEmpty,
		CategorySelectorWrong, CategoryDataQuality, CategoryExtractionIncomplete,
		CategoryJSONParsing, CategoryJavaScriptError, CategoryBashError,
		CategoryTimeout, CategoryAccessDenied, CategoryUnknown:
		return true
	default:
		return false
	}
}

// ClassifiedError is one categorized explanation for a failed run.
// A run may produce zero or more; the classifier deduplicates by category and
// orders the result by descending confidence.
type ClassifiedError struct {
	// Category is the taxonomy member this error belongs to.
	Category ErrorCategory `json:"category"`

	// Message is a human-readable summary suitable for the repair prompt.
	Message string `json:"message"`

	// Confidence is a [0,1] score expressing how certain the matching rule
	// is that its category explains the observed output.
	Confidence float64 `json:"confidence"`

	// SuggestedFix is an optional, rule-supplied hint for the fixer.
	SuggestedFix string `json:"suggested_fix,omitempty"`

	// Details carries rule-extracted values (selector text, line numbers,
	// observed counts) keyed by name.
	Details map[string]string `json:"details,omitempty"`
}
