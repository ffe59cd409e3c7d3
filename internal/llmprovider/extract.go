package llmprovider

import (
	"fmt"
	"regexp"
	"strings"
)

var fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")

// ExtractJSON pulls a JSON value out of raw model output. Models wrap
// JSON in prose and markdown fences more often than not, so this tries
// a fenced code block first and falls back to a brace-balancing scan
// for the first top-level object or array.
func ExtractJSON(raw string) (string, error) {
	if m := fencedBlockPattern.FindStringSubmatch(raw); m != nil {
		candidate := strings.TrimSpace(m[1])
		if candidate != "" {
			return candidate, nil
		}
	}

	if candidate, ok := balancedJSON(raw); ok {
		return candidate, nil
	}

	return "", fmt.Errorf("no JSON value found in model output")
}

// balancedJSON scans from the first '{' or '[' and returns the text up
// to its matching close, tracking string literals so braces inside
// quoted values don't throw off the depth count.
func balancedJSON(raw string) (string, bool) {
	start := -1
	var open, close byte
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '{':
			start, open, close = i, '{', '}'
		case '[':
			start, open, close = i, '[', ']'
		}
		if start != -1 {
			break
		}
	}
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}
