package orgchart

import (
	"regexp"
	"strings"
)

// BlockType labels a single line of document text.
type BlockType string

const (
	BlockPosition BlockType = "position"
	BlockName     BlockType = "name"
	BlockOther    BlockType = "other"
)

// TextBlock is one classified line of document text.
type TextBlock struct {
	Text string    `json:"text"`
	Type BlockType `json:"type"`
}

// Classifier labels lines using a keyword table and a name pattern.
// The tables are data, not control flow, so keyword sets can be
// extended without touching the dispatch logic.
type Classifier struct {
	positionKeywords []string // lowercased
	namePattern      *regexp.Regexp
}

// DefaultPositionKeywords is the bilingual role/title keyword set.
var DefaultPositionKeywords = []string{
	"Manager", "Director", "หัวหน้า", "ผู้จัดการ", "CEO", "CTO", "COO",
}

// defaultNamePattern matches two runs of 2-50 Latin or Thai letters
// separated by whitespace, anchored at the start of the line.
const defaultNamePattern = `^[A-Za-zก-๙]{2,50}\s+[A-Za-zก-๙]{2,50}`

// NewClassifier builds a line classifier from a keyword list and a
// name regular expression. Keyword matching is case-insensitive.
func NewClassifier(keywords []string, namePattern string) (*Classifier, error) {
	re, err := regexp.Compile(namePattern)
	if err != nil {
		return nil, err
	}
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}
	return &Classifier{positionKeywords: lowered, namePattern: re}, nil
}

// DefaultClassifier returns a classifier with the default bilingual
// keyword set and name pattern.
func DefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultPositionKeywords, defaultNamePattern)
	if err != nil {
		panic(err) // default pattern is a constant
	}
	return c
}

// Classify labels a single trimmed, non-empty line. Checks are ordered:
// a role keyword anywhere in the line wins, then the two-word name
// pattern, then other. Always returns a label.
func (c *Classifier) Classify(line string) BlockType {
	lowered := strings.ToLower(line)
	for _, kw := range c.positionKeywords {
		if strings.Contains(lowered, kw) {
			return BlockPosition
		}
	}
	if c.namePattern.MatchString(line) {
		return BlockName
	}
	return BlockOther
}

// ExtractBlocks splits text into lines, trims each, drops blanks, and
// classifies the rest in order. Blank lines do not become blocks and
// do not consume a position index.
func (c *Classifier) ExtractBlocks(text string) []TextBlock {
	blocks := []TextBlock{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		blocks = append(blocks, TextBlock{Text: line, Type: c.Classify(line)})
	}
	return blocks
}
