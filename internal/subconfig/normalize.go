package subconfig

import "strings"

// NormalizeFilterList coerces any stored filter-list value into the shape
// the rest of the system relies on: nil for "no filter", otherwise a slice
// of lowercase strings. It is total over all inputs:
//   - nil, false, "" and 0 mean no filter and yield nil
//   - a slice yields its elements lowercased, non-strings becoming ""
//   - any other truthy scalar is wrapped into a single-element slice
func NormalizeFilterList(v any) []string {
	if !truthy(v) {
		return nil
	}

	switch vals := v.(type) {
	case []string:
		out := make([]string, len(vals))
		for i, s := range vals {
			out[i] = strings.ToLower(s)
		}
		return out
	case []any:
		out := make([]string, len(vals))
		for i, e := range vals {
			out[i] = lowerString(e)
		}
		return out
	default:
		return []string{lowerString(v)}
	}
}

// lowerString lowercases string values; non-string elements become "".
func lowerString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.ToLower(s)
}

// truthy mirrors the loose presence check stored documents were written
// against: null, false, empty string and numeric zero mean "not set".
// An empty slice is still considered set.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	case int:
		return val != 0
	default:
		return true
	}
}
