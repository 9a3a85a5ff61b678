package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webmend/webmend/internal/domain"
)

func intPtr(i int) *int { return &i }

func TestClassifyZeroExtractedIsSelectorEmpty(t *testing.T) {
	c := New()

	stdout := `{"task": "laptops", "totalExtracted": 0, "items": []}`
	result := c.Classify(stdout, "", intPtr(0), false)

	require.NotEmpty(t, result)
	assert.Equal(t, domain.CategorySelectorEmpty, result[0].Category)
	assert.GreaterOrEqual(t, result[0].Confidence, 0.9)
}

func TestClassifyCategoryTable(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		stderr string
		want   domain.ErrorCategory
	}{
		{
			name:   "connection refused",
			stderr: "Error: connect ECONNREFUSED 127.0.0.1:9222",
			want:   domain.CategoryCDPConnection,
		},
		{
			name:   "target closed",
			stderr: "Protocol error (Runtime.evaluate): Target closed.",
			want:   domain.CategoryCDPConnection,
		},
		{
			name:   "access denied",
			stdout: "<h1>Access Denied</h1> you have been blocked",
			want:   domain.CategoryAccessDenied,
		},
		{
			name:   "navigation error",
			stderr: "net::ERR_NAME_NOT_RESOLVED at https://examp1e.invalid",
			want:   domain.CategoryNavigation,
		},
		{
			name:   "bad selector",
			stderr: "DOMException: Failed to execute 'querySelector' on 'Document': '.price[' is not a valid selector.",
			want:   domain.CategorySelectorWrong,
		},
		{
			name:   "json parsing",
			stderr: "jq: error (at <stdin>:1): Cannot index string with \"price\"",
			want:   domain.CategoryJSONParsing,
		},
		{
			name:   "javascript error",
			stderr: "TypeError: Cannot read properties of null (reading 'textContent')",
			want:   domain.CategoryJavaScriptError,
		},
		{
			name:   "bash error",
			stderr: "./script.sh: line 12: jqq: command not found",
			want:   domain.CategoryBashError,
		},
		{
			name:   "soft timeout in output",
			stderr: "Error: operation timed out after 30000ms",
			want:   domain.CategoryTimeout,
		},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(tt.stdout, tt.stderr, intPtr(1), false)
			require.NotEmpty(t, result)
			assert.Equal(t, tt.want, result[0].Category)
		})
	}
}

func TestClassifyUnknownFallback(t *testing.T) {
	c := New()

	result := c.Classify("some unremarkable output", "", intPtr(3), false)

	require.Len(t, result, 1)
	assert.Equal(t, domain.CategoryUnknown, result[0].Category)
	assert.InDelta(t, 0.5, result[0].Confidence, 0.0001)
}

func TestClassifyNoFallbackOnCleanExit(t *testing.T) {
	c := New()

	result := c.Classify("all good", "", intPtr(0), false)
	assert.Empty(t, result)
}

func TestClassifyNoFallbackWithoutExitCode(t *testing.T) {
	c := New()

	result := c.Classify("", "", nil, false)
	assert.Empty(t, result)
}

func TestClassifySyntheticTimeoutOutranksPatterns(t *testing.T) {
	c := New()

	// Output also matches the pattern-based timeout rule; the synthetic
	// entry must win the dedup and carry confidence 1.0.
	result := c.Classify("", "operation timed out", nil, true)

	require.NotEmpty(t, result)
	assert.Equal(t, domain.CategoryTimeout, result[0].Category)
	assert.InDelta(t, 1.0, result[0].Confidence, 0.0001)

	for _, ce := range result[1:] {
		assert.NotEqual(t, domain.CategoryTimeout, ce.Category)
	}
}

func TestClassifyDeterministicAndDeduplicated(t *testing.T) {
	c := New()

	stderr := "connect ECONNREFUSED 10.0.0.5:9222\nTypeError: x is not a function\njq: error near line 1"
	first := c.Classify("", stderr, intPtr(1), false)
	second := c.Classify("", stderr, intPtr(1), false)

	assert.Equal(t, first, second)

	seen := map[domain.ErrorCategory]bool{}
	for _, ce := range first {
		assert.False(t, seen[ce.Category], "duplicate category %s", ce.Category)
		seen[ce.Category] = true
	}
}

func TestClassifyOrderedByConfidenceDesc(t *testing.T) {
	c := New()

	stderr := "only extracted 5 of 20 items\nTypeError: boom\nECONNREFUSED"
	result := c.Classify("", stderr, intPtr(1), false)

	require.GreaterOrEqual(t, len(result), 3)
	for i := 1; i < len(result); i++ {
		assert.GreaterOrEqual(t, result[i-1].Confidence, result[i].Confidence)
	}
	assert.Equal(t, domain.CategoryCDPConnection, result[0].Category)
}

func TestClassifyExtractsDetails(t *testing.T) {
	c := New()

	t.Run("selector", func(t *testing.T) {
		result := c.Classify("", `TimeoutError: waiting for selector ".product-card" failed`, intPtr(1), false)
		require.NotEmpty(t, result)
		assert.Equal(t, domain.CategorySelectorEmpty, result[0].Category)
		assert.Equal(t, ".product-card", result[0].Details["selector"])
	})

	t.Run("shell line", func(t *testing.T) {
		result := c.Classify("", "./run.sh: line 7: curll: command not found", intPtr(127), false)
		require.NotEmpty(t, result)
		assert.Equal(t, domain.CategoryBashError, result[0].Category)
		assert.Equal(t, "7", result[0].Details["line"])
	})

	t.Run("extraction counts", func(t *testing.T) {
		result := c.Classify("only extracted 5 of 20 items", "", intPtr(1), false)
		require.NotEmpty(t, result)
		assert.Equal(t, domain.CategoryExtractionIncomplete, result[0].Category)
		assert.Equal(t, "5", result[0].Details["extracted"])
		assert.Equal(t, "20", result[0].Details["expected"])
	})
}

func TestFromValidation(t *testing.T) {
	ce := FromValidation(domain.ValidationOutcome{
		Valid:  false,
		Issues: []string{"No items extracted"},
	})

	assert.Equal(t, domain.CategoryDataQuality, ce.Category)
	assert.Contains(t, ce.Message, "No items extracted")
	assert.InDelta(t, 0.9, ce.Confidence, 0.0001)
}
