// Package normalize turns heterogeneous toolkit payloads into clean corpus text.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinContentChars is the shortest cleaned text worth storing.
const MinContentChars = 3

const dedupKeyChars = 200

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	blankRuns       = regexp.MustCompile(`\n{3,}`)

	// matched against trimmed lines so it agrees with strings.TrimSpace
	noiseLine = regexp.MustCompile(`(?i)^(id|type|created_at|updated_at)[\s\p{Z}\v]*:`)
)

// Clean normalizes raw tool output: collapses whitespace, drops API noise
// lines, drops short lines and removes duplicate lines (case-insensitive on
// the first 200 characters) keeping first occurrence order. Clean is
// idempotent.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	s := strings.ReplaceAll(text, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSpace(s)
	s = horizontalSpace.ReplaceAllString(s, " ")
	s = blankRuns.ReplaceAllString(s, "\n\n")

	seen := make(map[string]struct{})
	out := make([]string, 0, 16)
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || utf8.RuneCountInString(line) <= 2 || noiseLine.MatchString(line) {
			continue
		}
		key := dedupKey(line)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// CleanForStorage cleans text and reports whether the result is long enough
// to be stored as a corpus item.
func CleanForStorage(text string) (string, bool) {
	cleaned := Clean(text)
	if utf8.RuneCountInString(cleaned) < MinContentChars {
		return "", false
	}
	return cleaned, true
}

func dedupKey(line string) string {
	lower := strings.ToLower(line)
	if utf8.RuneCountInString(lower) <= dedupKeyChars {
		return lower
	}
	return string([]rune(lower)[:dedupKeyChars])
}
