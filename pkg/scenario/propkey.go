package scenario

import "strings"

const (
	// PropertyKeySeparator joins the segments of a scenario property key.
	PropertyKeySeparator = "::"

	keyColon        = ":"
	keyEscapedColon = `\:`
)

// MakePropertyKey builds the compound key a command records its effect under.
// Each segment has its colons escaped before the segments are joined, so
// "A:B", "C", "D" becomes `A\:B::C::D`.
//
// A segment that already contains the literal `\:`, or ends in a backslash,
// is not escaped any further and will not survive a round trip.
func MakePropertyKey(kind, name, parameter string) string {
	return escapeKeySegment(kind) + PropertyKeySeparator +
		escapeKeySegment(name) + PropertyKeySeparator +
		escapeKeySegment(parameter)
}

// ParsePropertyKey reverses MakePropertyKey. A key that does not split into
// exactly three segments yields three empty strings; callers are expected to
// reject the empty kind like any other unsupported one.
func ParsePropertyKey(key string) (kind, name, parameter string) {
	parts := splitPropertyKey(key)
	if len(parts) != 3 {
		return "", "", ""
	}
	return unescapeKeySegment(parts[0]), unescapeKeySegment(parts[1]), unescapeKeySegment(parts[2])
}

// splitPropertyKey splits on "::" separators, skipping escaped colons, so a
// segment ending in an escaped colon ("Left\:::P") still splits after it.
func splitPropertyKey(key string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(key); {
		switch {
		case strings.HasPrefix(key[i:], keyEscapedColon):
			i += len(keyEscapedColon)
		case strings.HasPrefix(key[i:], PropertyKeySeparator):
			parts = append(parts, key[start:i])
			i += len(PropertyKeySeparator)
			start = i
		default:
			i++
		}
	}
	return append(parts, key[start:])
}

func escapeKeySegment(s string) string {
	return strings.ReplaceAll(s, keyColon, keyEscapedColon)
}

func unescapeKeySegment(s string) string {
	return strings.ReplaceAll(s, keyEscapedColon, keyColon)
}
