package common

import (
	"regexp"
	"strings"
)

// ansiRegex matches ANSI escape sequences (colors, cursor movement, etc.)
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// pagerRegex matches the residue of a "--More--" pager prompt.
var pagerRegex = regexp.MustCompile(`\s*-+\s*More\s*-+\s*(\x08+\s*\x08+)?`)

// StripANSI removes ANSI escape codes from a string.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// CleanLines strips terminal escapes and pager residue from captured CLI
// lines, trims trailing blanks and drops empty lines.
func CleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = pagerRegex.ReplaceAllString(StripANSI(l), "")
		l = strings.TrimRight(l, " \t\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}
