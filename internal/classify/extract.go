package classify

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"
)

// Extraction is either a list of regex findings or a fixed sentinel
// string standing in for "nothing found" / "not applicable". Callers
// distinguish the two by value, never by emptiness: an extractor that
// matched nothing returns its sentinel, not an empty list.
type Extraction struct {
	Matches  []string
	Sentinel string
}

// MarshalJSON emits the findings as an array when present, otherwise
// the sentinel as a bare string, preserving the wire shape of the
// extracted_info field.
func (e Extraction) MarshalJSON() ([]byte, error) {
	if len(e.Matches) > 0 {
		return json.Marshal(e.Matches)
	}
	return json.Marshal(e.Sentinel)
}

// Extractor pulls category-specific fields out of document text with a
// pattern, falling back to its sentinel when nothing matches. A nil
// pattern means the category carries a fixed message and no extraction.
type Extractor struct {
	Pattern  *regexp.Regexp
	Sentinel string
}

func (x Extractor) Extract(text string) Extraction {
	if x.Pattern == nil {
		return Extraction{Sentinel: x.Sentinel}
	}
	matches := x.Pattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return Extraction{Sentinel: x.Sentinel}
	}
	return Extraction{Matches: matches}
}

// Per-category extraction table, keyed by the label's leading digit.
// Categories 2 and 6 both want shareholding percentages.
var (
	contactTimeExtractor = Extractor{
		Pattern:  regexp.MustCompile(`(เวลา\s*(?:โทร|ติดต่อ)[^\n:]*[:\s]*\d{1,2}:\d{2}-\d{1,2}:\d{2}|Contact time[^\n]*[:\s]*\d{1,2}:\d{2}-\d{1,2}:\d{2})`),
		Sentinel: "ไม่พบช่วงเวลาติดต่อ",
	}
	shareRatioExtractor = Extractor{
		Pattern:  regexp.MustCompile(`(\d{1,3}(?:\.\d+)?\s*%)`),
		Sentinel: "ไม่พบสัดส่วนผู้ถือหุ้น",
	}
	financialExtractor = Extractor{
		Sentinel: "ตรวจเลขฐานการเงิน",
	}
	licenseExtractor = Extractor{
		Pattern:  regexp.MustCompile(`(ใบอนุญาต[^\n]+|License\s*No\.\s*\S+)`),
		Sentinel: "ไม่พบ license",
	}
	noopExtractor = Extractor{
		Sentinel: "ไม่มีข้อมูลที่ต้องดึง",
	}

	extractors = map[byte]Extractor{
		'1': contactTimeExtractor,
		'2': shareRatioExtractor,
		'3': financialExtractor,
		'4': licenseExtractor,
		'6': shareRatioExtractor,
	}
)

// Dispatch routes document text to the extractor for the label's
// leading digit. Labels without a known leading digit (including the
// ungrounded verbatim fallback from ParseLabel) get the no-op sentinel.
func Dispatch(label, text string) Extraction {
	if label != "" {
		if x, ok := extractors[label[0]]; ok {
			return x.Extract(text)
		}
	}
	return noopExtractor.Extract(text)
}

// filenameTokenRe splits a base filename into candidate keywords.
var filenameTokenRe = regexp.MustCompile(`[\s._-]+`)

// FilenameKeywords derives search keywords from a filename: the base
// name without extension, split on separators, pure digits and
// single-character tokens dropped.
func FilenameKeywords(filename string) []string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var keywords []string
	for _, w := range filenameTokenRe.Split(base, -1) {
		if len([]rune(w)) <= 1 || isDigits(w) {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}

const (
	keywordMatch   = "เนื้อหาสอดคล้อง"
	keywordNoMatch = "เนื้อหาไม่สอดคล้อง"
)

// CheckFilenameKeywords reports whether any filename keyword appears
// in the document text, case-insensitively.
func CheckFilenameKeywords(text, filename string) string {
	lowered := strings.ToLower(text)
	for _, kw := range FilenameKeywords(filename) {
		if strings.Contains(lowered, strings.ToLower(kw)) {
			return keywordMatch
		}
	}
	return keywordNoMatch
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
