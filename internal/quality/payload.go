package quality

import (
	"encoding/json"
	"strings"
)

// payload is the recognized shape of a script's structured result: a list of
// extracted records plus optional bookkeeping fields scripts commonly emit.
type payload struct {
	records []map[string]any
}

// recordListKeys are the field names scripts use for their record array,
// checked in order.
var recordListKeys = []string{"items", "results", "products", "data", "records"} //nolint:gochecknoglobals // lookup table

// locatePayload finds the structured result inside raw stdout. It tolerates
// one extra layer of string-encoding: a JSON document embedded as a string
// inside another JSON document, which happens when a script pipes an already
// serialized result through a second serializer.
//
// Returns nil when no recognizable payload exists. Callers treat that as
// "nothing to validate", never as a failure.
func locatePayload(stdout string) *payload {
	doc, ok := decodeDocument(stdout)
	if !ok {
		return nil
	}
	return payloadFromDocument(doc)
}

// decodeDocument extracts the first parseable JSON document from stdout.
// Scripts frequently interleave progress lines with the final JSON, so the
// whole output is tried first, then each line.
func decodeDocument(stdout string) (any, bool) {
	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" {
		return nil, false
	}

	if doc, ok := tryDecode(trimmed); ok {
		return doc, true
	}

	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if line[0] != '{' && line[0] != '[' {
			continue
		}
		if doc, ok := tryDecode(line); ok {
			return doc, true
		}
	}
	return nil, false
}

// tryDecode parses a JSON document, unwrapping one level of string-encoding.
func tryDecode(s string) (any, bool) {
	var doc any
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return nil, false
	}
	if inner, isString := doc.(string); isString {
		var unwrapped any
		if err := json.Unmarshal([]byte(inner), &unwrapped); err != nil {
			return nil, false
		}
		doc = unwrapped
	}
	return doc, true
}

// payloadFromDocument extracts the record list from a decoded document.
// Accepted shapes: a top-level array of objects, or an object carrying the
// array under one of the conventional keys.
func payloadFromDocument(doc any) *payload {
	switch v := doc.(type) {
	case []any:
		return &payload{records: objectRecords(v)}
	case map[string]any:
		for _, key := range recordListKeys {
			list, ok := v[key].([]any)
			if !ok {
				continue
			}
			return &payload{records: objectRecords(list)}
		}
		// An object that declares a count but carries no recognizable list
		// still counts as a located (empty) payload when the count is zero.
		if total, ok := v["totalExtracted"].(float64); ok && total == 0 {
			return &payload{}
		}
		return nil
	default:
		return nil
	}
}

// objectRecords keeps only the object-shaped entries of a record list.
func objectRecords(list []any) []map[string]any {
	records := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		if rec, ok := entry.(map[string]any); ok {
			records = append(records, rec)
		}
	}
	return records
}
