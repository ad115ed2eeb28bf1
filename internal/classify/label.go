package classify

import (
	"regexp"
	"strings"
)

// labelRe matches the expected label shape: a leading category number,
// a period, and a category name.
var labelRe = regexp.MustCompile(`^\d+\.\s*.+$`)

// ParseLabel reduces raw classifier output to a category label. The
// first line matching the numeral-prefixed form wins; if no line
// conforms, the raw first line is used verbatim. A non-conforming
// label is not an error — downstream dispatch treats it as "no
// category" when it carries no leading digit.
func ParseLabel(raw string) string {
	combined := strings.TrimSpace(raw)
	if combined == "" {
		return ""
	}
	lines := strings.Split(combined, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if labelRe.MatchString(line) {
			return line
		}
	}
	return strings.TrimSpace(lines[0])
}
