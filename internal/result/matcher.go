package result

import (
	"regexp"
	"strings"
)

// pattern is a compiled expression together with the named group its callers read.
type pattern struct {
	re    *regexp.Regexp
	group string
}

func newPattern(expr, group string) pattern {
	re := regexp.MustCompile(expr)
	if re.SubexpIndex(group) < 0 {
		panic("result: pattern " + expr + " has no group " + group)
	}

	return pattern{re: re, group: group}
}

// find returns the named group of the first match in text.
func (p pattern) find(text string) (string, bool) {
	match := p.re.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}

	return match[p.re.SubexpIndex(p.group)], true
}

// keep replaces every match with the content of the named group.
func (p pattern) keep(text string) string {
	return p.re.ReplaceAllString(text, "${"+p.group+"}")
}

// drop removes every match.
func (p pattern) drop(text string) string {
	return p.re.ReplaceAllLiteralString(text, "")
}

var (
	scorePattern = newPattern(`(?i)match\s+percentage\s*:\s*(?:\*\*)?\s*(?P<score>\d+)\s*%`, "score")

	// Only "N. " at the start of a line counts as numbering; "2.5 years" is content.
	enumPattern  = newPattern(`^\s*(?P<number>\d+)\.(?:\s+|$)`, "number")
	boldPattern  = newPattern(`\*\*(?P<inner>.*?)\*\*`, "inner")
	colonPattern = newPattern(`(?P<colon>:)\s*$`, "colon")
)

// headerPattern matches "**<label>:**" case-insensitively, tolerating any run
// of whitespace between the words of the label.
func headerPattern(label string) *regexp.Regexp {
	words := strings.Fields(label)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}

	return regexp.MustCompile(`(?i)\*\*` + strings.Join(words, `\s+`) + `:\*\*`)
}

// sectionBody returns the text that follows header up to the next line that
// opens with a bold marker, or the end of text. It is empty when the header is
// missing.
func sectionBody(text string, header *regexp.Regexp) string {
	loc := header.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	body := text[loc[1]:]
	if end := strings.Index(body, "\n**"); end >= 0 {
		body = body[:end]
	}

	return strings.TrimSpace(body)
}

// listItems turns a section body into its cleaned, non-empty lines.
func listItems(body string) []string {
	items := []string{}
	if body == "" {
		return items
	}

	for _, line := range strings.Split(body, "\n") {
		item := strings.TrimSpace(enumPattern.drop(line))
		item = boldPattern.keep(item)
		item = colonPattern.drop(item)
		item = strings.TrimSpace(item)

		if item == "" {
			continue
		}
		items = append(items, item)
	}

	return items
}
