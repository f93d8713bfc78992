// Package normalize converts the marketplace API's variable response
// envelopes into canonical shapes.
//
// The marketplace API has shipped several envelope generations: most
// collection endpoints wrap pages as {result: {data: [...]}}, a few return
// {result: [...]}, and the oldest return a bare array. Single-entity
// endpoints are similarly mixed, and the "images" field has been encoded as
// a native array, a JSON-encoded array string and a comma-separated string.
// Everything here degrades to an empty result on malformed input; nothing
// returns an error.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// imageFields are the candidate keys probed by ParseImageField when no
// explicit field list is given, in priority order.
var imageFields = []string{"images", "imgs", "thumbnails"}

// ExtractList locates the item list inside a raw response body. Shapes are
// probed most-specific first: result.data array, result array, bare array.
// Anything else yields an empty slice.
func ExtractList(raw []byte) []any {
	if !gjson.ValidBytes(raw) {
		return []any{}
	}
	body := gjson.ParseBytes(raw)

	if page := body.Get("result.data"); page.IsArray() {
		return toSlice(page)
	}
	if result := body.Get("result"); result.IsArray() {
		return toSlice(result)
	}
	if body.IsArray() {
		return toSlice(body)
	}
	return []any{}
}

// ExtractRecords is ExtractList narrowed to object items; non-object
// entries are dropped.
func ExtractRecords(raw []byte) []map[string]any {
	items := ExtractList(raw)
	records := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if record, ok := item.(map[string]any); ok {
			records = append(records, record)
		}
	}
	return records
}

// ExtractSingle locates a single entity: a non-array result object, the
// first element of result.data, or a non-array data object. Returns nil when
// no shape matches.
func ExtractSingle(raw []byte) map[string]any {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	body := gjson.ParseBytes(raw)

	if result := body.Get("result"); result.IsObject() {
		// A result object carrying a data array is the pagination wrapper,
		// not the entity itself.
		if page := result.Get("data"); page.IsArray() {
			if entries := page.Array(); len(entries) > 0 && entries[0].IsObject() {
				return toRecord(entries[0])
			}
			return nil
		}
		return toRecord(result)
	}
	if data := body.Get("data"); data.IsObject() {
		return toRecord(data)
	}
	return nil
}

// Message extracts the envelope's message field, the API's error surface.
func Message(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return ""
	}
	return gjson.GetBytes(raw, "message").String()
}

// ParseImageField reads the first present candidate field from record and
// parses it into image URL strings. Native arrays are stringified element by
// element; strings are tried as a JSON array first and split on commas
// otherwise. Absent fields and non-list values yield an empty slice.
func ParseImageField(record map[string]any, fields ...string) []string {
	if record == nil {
		return []string{}
	}
	if len(fields) == 0 {
		fields = imageFields
	}

	for _, field := range fields {
		value, ok := record[field]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case []any:
			return stringifyAll(v)
		case []string:
			out := make([]any, len(v))
			for i, s := range v {
				out[i] = s
			}
			return stringifyAll(out)
		case string:
			return parseImageString(v)
		default:
			return []string{}
		}
	}
	return []string{}
}

// ResolveImageURL turns a possibly-relative image path into a servable URL.
// Absolute URLs and root-relative paths pass through; anything else gains a
// single leading slash.
func ResolveImageURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "/") {
		return s
	}
	return "/" + strings.TrimLeft(s, "/")
}

func parseImageString(s string) []string {
	var parsed []any
	if err := json.Unmarshal([]byte(s), &parsed); err == nil {
		return stringifyAll(parsed)
	}
	// Historical CSV encoding, e.g. "a.png, b.png".
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func stringifyAll(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		switch v := item.(type) {
		case string:
			s = v
		case nil:
			continue
		case float64:
			s = trimFloat(v)
		default:
			s = fmt.Sprint(v)
		}
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(f)
}

func toSlice(result gjson.Result) []any {
	entries := result.Array()
	out := make([]any, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Value())
	}
	return out
}

func toRecord(result gjson.Result) map[string]any {
	if record, ok := result.Value().(map[string]any); ok {
		return record
	}
	return nil
}
