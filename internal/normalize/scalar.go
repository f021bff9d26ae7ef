// Package normalize reduces loosely shaped extracted values to canonical
// strings and resolves them against the code tables. Nothing in this package
// returns an error or panics: malformed input degrades to "unresolved".
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// objectKeys are tried in order when a value arrives as an object.
var objectKeys = []string{"value", "raw", "text", "name"}

// Scalar reduces any decoded JSON value to a single string. ok is false when
// the value is null or an empty list.
//
// Strings are trimmed and numbers keep their literal text. For an object, the
// first present key among value, raw, text and name is reduced recursively;
// if none is present the whole object is rendered as canonical JSON. For a
// list, the first element is reduced.
func Scalar(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return strings.TrimSpace(x), true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case bool:
		return strconv.FormatBool(x), true
	case map[string]any:
		for _, k := range objectKeys {
			if inner, ok := x[k]; ok {
				return Scalar(inner)
			}
		}
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x), true
		}
		return string(b), true
	case []any:
		if len(x) == 0 {
			return "", false
		}
		return Scalar(x[0])
	case []string:
		if len(x) == 0 {
			return "", false
		}
		return strings.TrimSpace(x[0]), true
	default:
		return strings.TrimSpace(fmt.Sprint(x)), true
	}
}

// Present reports whether v reduces to a non-empty string.
func Present(v any) bool {
	s, ok := Scalar(v)
	return ok && s != ""
}
