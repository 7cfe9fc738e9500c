// Package entry holds the vocabulary record model shared by the store, the
// renderer and the bot handlers.
package entry

import (
	"fmt"
	"strings"
	"time"
)

// Entry is a single word/translation pair owned by one Telegram user.
type Entry struct {
	ID              int64     `db:"id"`
	OwnerID         int64     `db:"owner_id"`
	Word            string    `db:"word"`
	WordNorm        string    `db:"word_norm"`
	Translation     string    `db:"translation"`
	TranslationNorm string    `db:"translation_norm"`
	Example         *string   `db:"example"`
	Tag             *string   `db:"tag"`
	CreatedAt       time.Time `db:"created_at"`
}

// NewEntry is the input of an upsert.
type NewEntry struct {
	Word        string
	Translation string
	Example     *string
	Tag         *string
}

// Field names an editable column of an entry.
type Field string

const (
	FieldWord        Field = "word"
	FieldTranslation Field = "translation"
	FieldExample     Field = "example"
	FieldTag         Field = "tag"
)

// Fields lists editable fields in display order.
var Fields = []Field{FieldWord, FieldTranslation, FieldExample, FieldTag}

// ParseField validates a field name coming from a callback payload.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FieldWord, FieldTranslation, FieldExample, FieldTag:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown field %q", ErrValidation, s)
}

// Optional reports whether the field may be cleared.
func (f Field) Optional() bool {
	return f == FieldExample || f == FieldTag
}

// Label is the human-readable field name.
func (f Field) Label() string {
	switch f {
	case FieldWord:
		return "Word"
	case FieldTranslation:
		return "Translation"
	case FieldExample:
		return "Example"
	case FieldTag:
		return "Tag"
	}
	return string(f)
}

// Value returns the current value of the field, empty when unset.
func (e Entry) Value(f Field) string {
	switch f {
	case FieldWord:
		return e.Word
	case FieldTranslation:
		return e.Translation
	case FieldExample:
		if e.Example != nil {
			return *e.Example
		}
	case FieldTag:
		if e.Tag != nil {
			return *e.Tag
		}
	}
	return ""
}

// Patch describes a partial update. Nil members are left untouched; a non-nil
// empty Example or Tag clears the column.
type Patch struct {
	Word        *string
	Translation *string
	Example     *string
	Tag         *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Word == nil && p.Translation == nil && p.Example == nil && p.Tag == nil
}

// ClearValue is the sentinel text that clears an optional field.
const ClearValue = "-"

// PatchFor builds a single-field patch from raw user input.
func PatchFor(f Field, raw string) (Patch, error) {
	value := strings.TrimSpace(raw)
	var p Patch
	if f.Optional() {
		if value == ClearValue {
			value = ""
		}
		switch f {
		case FieldExample:
			p.Example = &value
		case FieldTag:
			p.Tag = &value
		}
		return p, nil
	}

	if value == "" || value == ClearValue {
		return Patch{}, fmt.Errorf("%w: %s cannot be empty", ErrValidation, strings.ToLower(f.Label()))
	}
	switch f {
	case FieldWord:
		p.Word = &value
	case FieldTranslation:
		p.Translation = &value
	default:
		return Patch{}, fmt.Errorf("%w: unknown field %q", ErrValidation, f)
	}
	return p, nil
}

// Filter narrows a listing. At most one of Letter and Query is expected to be set.
type Filter struct {
	// Letter matches the first character of the normalized word.
	Letter string
	// Query matches a substring of the normalized word or translation.
	Query string
}

// Letters is the alphabet offered by the letter index.
const Letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ParseLetter upper-cases the first rune of s and checks it against Letters.
func ParseLetter(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	l := strings.ToUpper(string([]rune(s)[0]))
	if len(l) != 1 || !strings.Contains(Letters, l) {
		return "", false
	}
	return l, true
}
