package classify

import (
	"regexp"

	"github.com/webmend/webmend/internal/domain"
)

// detailExtractor pulls structured values out of matched output for the
// Details map of a ClassifiedError. match is the submatch slice of the
// pattern that fired.
type detailExtractor func(combined string, match []string) map[string]string

// rule is one entry of the ordered classification table. A rule fires at
// most once per run: the first pattern that matches wins.
type rule struct {
	category     domain.ErrorCategory
	confidence   float64
	message      string
	suggestedFix string
	patterns     []*regexp.Regexp
	details      detailExtractor
}

// defaultRules is the fixed, ordered classification table. Order only
// matters for scan cost and for ties in the final confidence sort; every
// rule owns a distinct category and output is deduplicated per category.
//
// Confidence values are declared per rule and act purely as a ranking for
// choosing the primary error of an iteration.
func defaultRules() []rule {
	return []rule{
		{
			category:   domain.CategorySelectorEmpty,
			confidence: 0.95,
			message:    "the script's selector matched no elements; nothing was extracted",
			suggestedFix: "inspect the live page structure and replace the selector " +
				"with one that matches the current markup",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`"totalExtracted"\s*:\s*0\b`),
				regexp.MustCompile(`waiting for selector ["']?(.+?)["']? failed`),
				regexp.MustCompile(`(?i)no (?:items|elements|results) (?:found|extracted)`),
				regexp.MustCompile(`matched 0 (?:elements|nodes)`),
			},
			details: extractSelector,
		},
		{
			category:   domain.CategoryCDPConnection,
			confidence: 0.95,
			message:    "the remote browser endpoint refused or dropped the connection",
			suggestedFix: "the endpoint may be stale; request a fresh browser session " +
				"before retrying",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`ECONNREFUSED`),
				regexp.MustCompile(`WebSocket is not open`),
				regexp.MustCompile(`WebSocket connection closed`),
				regexp.MustCompile(`(?:Target|browser) (?:closed|has been closed)`),
				regexp.MustCompile(`Protocol error.*Connection closed`),
				regexp.MustCompile(`(?i)could not connect to (?:the )?browser`),
			},
		},
		{
			category:   domain.CategoryAccessDenied,
			confidence: 0.9,
			message:    "the target site blocked the request (bot wall, captcha, or 403)",
			suggestedFix: "add realistic waits between actions and avoid rapid repeated " +
				"navigation to the same page",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)access denied`),
				regexp.MustCompile(`(?:HTTP |status(?: code)?[ :=])403`),
				regexp.MustCompile(`(?i)captcha`),
				regexp.MustCompile(`(?i)cloudflare`),
				regexp.MustCompile(`(?i)bot detection`),
			},
		},
		{
			category:   domain.CategoryJSONParsing,
			confidence: 0.85,
			message:    "the script produced or consumed malformed JSON",
			suggestedFix: "quote jq filters defensively and validate intermediate JSON " +
				"before piping it onward",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`Unexpected token .* in JSON`),
				regexp.MustCompile(`Unexpected end of JSON input`),
				regexp.MustCompile(`SyntaxError.*JSON`),
				regexp.MustCompile(`jq: error`),
				regexp.MustCompile(`(?i)json parse error`),
				regexp.MustCompile(`parse error: `),
			},
		},
		{
			category:   domain.CategoryNavigation,
			confidence: 0.85,
			message:    "navigation to the target page failed",
			suggestedFix: "verify the URL resolves and wait for the page load to settle " +
				"before interacting with it",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`net::ERR_[A-Z_]+`),
				regexp.MustCompile(`Navigation timeout`),
				regexp.MustCompile(`Cannot navigate to invalid URL`),
				regexp.MustCompile(`(?i)failed to (?:navigate|load page)`),
			},
		},
		{
			category:   domain.CategorySelectorWrong,
			confidence: 0.8,
			message:    "a selector in the script is syntactically invalid",
			suggestedFix: "fix the selector syntax; prefer simple class or attribute " +
				"selectors over deep pseudo-selectors",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`is not a valid selector`),
				regexp.MustCompile(`(?i)invalid selector`),
				regexp.MustCompile(`Failed to execute 'querySelector`),
			},
			details: extractSelector,
		},
		{
			category:   domain.CategoryJavaScriptError,
			confidence: 0.8,
			message:    "a JavaScript expression evaluated inside the page threw",
			suggestedFix: "guard page evaluations against null elements and check that " +
				"the function exists before calling it",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`ReferenceError:`),
				regexp.MustCompile(`TypeError:`),
				regexp.MustCompile(`RangeError:`),
				regexp.MustCompile(`is not a function`),
				regexp.MustCompile(`Cannot read propert(?:y|ies) .* of (?:null|undefined)`),
				regexp.MustCompile(`undefined is not an object`),
			},
		},
		{
			category:   domain.CategoryTimeout,
			confidence: 0.8,
			message:    "an operation inside the script timed out",
			suggestedFix: "increase per-step waits or reduce the amount of work the " +
				"script does in one run",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`ETIMEDOUT`),
				regexp.MustCompile(`(?i)timed out`),
			},
		},
		{
			category:   domain.CategoryBashError,
			confidence: 0.75,
			message:    "the shell itself failed while running the script",
			suggestedFix: "check command availability and quoting on the reported line",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`line \d+: .*: command not found`),
				regexp.MustCompile(`command not found`),
				regexp.MustCompile(`syntax error near unexpected token`),
				regexp.MustCompile(`(?i)unbound variable`),
				regexp.MustCompile(`No such file or directory`),
				regexp.MustCompile(`Permission denied`),
			},
			details: extractShellLine,
		},
		{
			category:   domain.CategoryExtractionIncomplete,
			confidence: 0.7,
			message:    "the script extracted fewer records than the page offers",
			suggestedFix: "handle pagination or lazy-loading so every record is visible " +
				"before extraction",
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)only extracted (\d+) of (\d+)`),
				regexp.MustCompile(`(?i)expected (?:at least )?\d+.*(?:got|found) \d+`),
				regexp.MustCompile(`(?i)partial(?:ly)? extract`),
			},
			details: extractCounts,
		},
	}
}

// selectorPattern re-scans combined output for the selector text when the
// firing pattern did not capture it.
var selectorPattern = regexp.MustCompile(`selector ["']([^"']+)["']`)

func extractSelector(combined string, match []string) map[string]string {
	if len(match) > 1 && match[1] != "" {
		return map[string]string{"selector": match[1]}
	}
	if m := selectorPattern.FindStringSubmatch(combined); m != nil {
		return map[string]string{"selector": m[1]}
	}
	return nil
}

var shellLinePattern = regexp.MustCompile(`: line (\d+):`)

func extractShellLine(combined string, _ []string) map[string]string {
	if m := shellLinePattern.FindStringSubmatch(combined); m != nil {
		return map[string]string{"line": m[1]}
	}
	return nil
}

func extractCounts(_ string, match []string) map[string]string {
	if len(match) > 2 && match[1] != "" && match[2] != "" {
		return map[string]string{"extracted": match[1], "expected": match[2]}
	}
	return nil
}
