package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	decimalRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
	groupedRe = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)
)

var currencyMarkers = strings.NewReplacer("US$", "", "USD", "", "$", "", " ", "")

// Amount reduces v to a plain decimal string. Currency markers and spaces are
// removed. Commas are accepted only as thousands separators ("1,234.50");
// decimal commas ("1,5", "1.234,56") are rejected rather than reinterpreted.
// Exponent literals are accepted from JSON numbers only.
func Amount(v any) (string, bool) {
	switch x := v.(type) {
	case json.Number:
		if strings.ContainsAny(x.String(), "eE") {
			f, err := x.Float64()
			if err != nil {
				return "", false
			}
			return formatFloat(f)
		}
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	}

	s, ok := Scalar(v)
	if !ok {
		return "", false
	}
	s = currencyMarkers.Replace(strings.ToUpper(s))
	if strings.Contains(s, ",") {
		if !groupedRe.MatchString(s) {
			return "", false
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	if !decimalRe.MatchString(s) {
		return "", false
	}
	return canonicalDecimal(s), true
}

func formatFloat(f float64) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// canonicalDecimal drops a leading plus sign and a dangling decimal point, and
// adds the integer zero to ".5".
func canonicalDecimal(s string) string {
	s = strings.TrimPrefix(s, "+")
	s = strings.TrimSuffix(s, ".")
	switch {
	case strings.HasPrefix(s, "-."):
		s = "-0" + s[1:]
	case strings.HasPrefix(s, "."):
		s = "0" + s
	}
	return s
}

// IsZero reports whether amount parses to zero. Unparseable input counts as
// zero.
func IsZero(amount string) bool {
	f, err := strconv.ParseFloat(amount, 64)
	return err != nil || f == 0
}
