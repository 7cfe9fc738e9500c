package entry

import (
	"regexp"
	"strings"
)

var dashRe = regexp.MustCompile(`\s*(?:—|–|-)\s*`)

// Parsed is a structured entry line.
type Parsed struct {
	Word        string
	Translation string
	Example     *string
	Tag         *string
}

// NewEntry converts the parsed line into upsert input.
func (p Parsed) NewEntry() NewEntry {
	return NewEntry{Word: p.Word, Translation: p.Translation, Example: p.Example, Tag: p.Tag}
}

// Syntax is the entry line format shown to users.
const Syntax = "word — translation | ex: example | tag: tag"

// Parse reads a line of the form "word — translation | ex: example | tag: tag".
// The first dash of the head separates word and translation; the optional
// segments are matched by case-insensitive prefix. It reports false when the
// line has no dash or either side is empty.
func Parse(line string) (Parsed, bool) {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	loc := dashRe.FindStringIndex(parts[0])
	if loc == nil {
		return Parsed{}, false
	}
	word := strings.TrimSpace(parts[0][:loc[0]])
	translation := strings.TrimSpace(parts[0][loc[1]:])
	if word == "" || translation == "" {
		return Parsed{}, false
	}

	p := Parsed{Word: word, Translation: translation}
	for _, seg := range parts[1:] {
		lower := strings.ToLower(seg)
		switch {
		case strings.HasPrefix(lower, "ex:"), strings.HasPrefix(lower, "example:"):
			v := segmentValue(seg)
			p.Example = &v
		case strings.HasPrefix(lower, "tag:"), strings.HasPrefix(lower, "tags:"):
			v := segmentValue(seg)
			p.Tag = &v
		}
	}
	return p, true
}

func segmentValue(seg string) string {
	_, v, _ := strings.Cut(seg, ":")
	return strings.TrimSpace(v)
}

// Normalize prepares text for matching, ordering and uniqueness: trimmed,
// lowercased, with runs of spaces collapsed.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
