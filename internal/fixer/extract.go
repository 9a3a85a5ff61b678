package fixer

import (
	"regexp"
	"strings"
)

// fencedBlockPattern matches a fenced code block, capturing the info string
// and the body. (?s) lets the body span lines.
var fencedBlockPattern = regexp.MustCompile("(?s)```([a-zA-Z]*)[ \\t]*\\n(.*?)```")

// extractScript pulls the candidate script out of an agent response.
//
// The first fenced block tagged bash or sh wins; an untagged block is accepted
// when no tagged one exists. A response that is itself a bare script (starts
// with a shebang) is taken verbatim. Anything else yields "", meaning the
// agent produced no usable candidate.
func extractScript(response string) string {
	var untagged string

	for _, match := range fencedBlockPattern.FindAllStringSubmatch(response, -1) {
		lang := strings.ToLower(match[1])
		body := strings.TrimSpace(match[2])
		if body == "" {
			continue
		}
		switch lang {
		case "bash", "sh":
			return body
		case "":
			if untagged == "" {
				untagged = body
			}
		}
	}

	if untagged != "" {
		return untagged
	}

	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "#!") {
		return trimmed
	}

	return ""
}
