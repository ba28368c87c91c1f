package outline

import (
	"regexp"
	"strings"
	"unicode"
)

var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// structuralLabel matches the labels used by regulatory filings that carry
// no markup headings, e.g. "PART II", "Item 7A.", "Table 3", "Section IV".
var structuralLabel = regexp.MustCompile(`(?i)^\s*(Part\s+[IVXLCDM]+\b|Item\s+\d+[A-Z]?\.|Table\s+(?:[IVXLCDM]+|\d+)\b|Section\s+(?:[IVXLCDM]+|\d+)\b)`)

// ParseHeading reports whether line is a heading line and returns its level
// and trimmed title.
func ParseHeading(line string) (level int, title string, ok bool) {
	m := headingPattern.FindStringSubmatch(strings.TrimRightFunc(line, unicode.IsSpace))
	if m == nil {
		return 0, "", false
	}
	title = strings.TrimSpace(m[2])
	if title == "" {
		return 0, "", false
	}
	return len(m[1]), title, true
}

// Render normalizes outline lines into the final outline text. Lines may
// contain embedded newlines. Trailing whitespace is trimmed from every line,
// leading and trailing blank lines are dropped and the result ends in exactly
// one newline, or is empty. When no line is a heading, lines starting with a
// structural label are promoted to level 2 headings.
func Render(lines []string) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		for part := range strings.SplitSeq(l, "\n") {
			out = append(out, strings.TrimRightFunc(part, unicode.IsSpace))
		}
	}

	if !hasHeading(out) {
		promoteLabels(out)
	}

	s := strings.Trim(strings.Join(out, "\n"), "\n")
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s + "\n"
}

// HasHeadings reports whether an outline contains at least one heading line.
func HasHeadings(text string) bool {
	return hasHeading(strings.Split(text, "\n"))
}

func hasHeading(lines []string) bool {
	for _, l := range lines {
		if _, _, ok := ParseHeading(l); ok {
			return true
		}
	}
	return false
}

func promoteLabels(lines []string) {
	for i, l := range lines {
		if structuralLabel.MatchString(l) {
			lines[i] = "## " + strings.TrimSpace(l)
		}
	}
}
