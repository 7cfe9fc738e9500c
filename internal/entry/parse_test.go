package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		ok          bool
		word        string
		translation string
		example     string
		tag         string
	}{
		{name: "em dash", line: "cat — кот", ok: true, word: "cat", translation: "кот"},
		{name: "en dash", line: "cat–кот", ok: true, word: "cat", translation: "кот"},
		{name: "hyphen", line: "cat - кот", ok: true, word: "cat", translation: "кот"},
		{name: "first dash splits", line: "well-being — благополучие", ok: true, word: "well", translation: "being — благополучие"},
		{
			name: "all segments", line: "apple — яблоко | ex: an apple a day | tag: food",
			ok: true, word: "apple", translation: "яблоко", example: "an apple a day", tag: "food",
		},
		{
			name: "long prefixes any case", line: "run — бежать | Example: I run | TAGS: verbs, basic",
			ok: true, word: "run", translation: "бежать", example: "I run", tag: "verbs, basic",
		},
		{name: "unknown segment ignored", line: "sun — солнце | note: hot", ok: true, word: "sun", translation: "солнце"},
		{name: "no dash", line: "just text", ok: false},
		{name: "empty word", line: " — кот", ok: false},
		{name: "empty translation", line: "cat — ", ok: false},
		{name: "empty line", line: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := Parse(tt.line)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.word, p.Word)
			assert.Equal(t, tt.translation, p.Translation)
			if tt.example == "" {
				assert.Nil(t, p.Example)
			} else {
				require.NotNil(t, p.Example)
				assert.Equal(t, tt.example, *p.Example)
			}
			if tt.tag == "" {
				assert.Nil(t, p.Tag)
			} else {
				require.NotNil(t, p.Tag)
				assert.Equal(t, tt.tag, *p.Tag)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "cat", Normalize("  Cat "))
	assert.Equal(t, "ice cream", Normalize("Ice   Cream"))
	assert.Equal(t, "кошка", Normalize("Кошка"))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, Normalize("CAT"), Normalize("cat"))
}

func TestPatchFor(t *testing.T) {
	p, err := PatchFor(FieldExample, "-")
	require.NoError(t, err)
	require.NotNil(t, p.Example)
	assert.Equal(t, "", *p.Example)
	assert.Nil(t, p.Word)

	p, err = PatchFor(FieldTag, "  travel ")
	require.NoError(t, err)
	require.NotNil(t, p.Tag)
	assert.Equal(t, "travel", *p.Tag)

	p, err = PatchFor(FieldWord, " Dog ")
	require.NoError(t, err)
	require.NotNil(t, p.Word)
	assert.Equal(t, "Dog", *p.Word)

	_, err = PatchFor(FieldTranslation, "-")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = PatchFor(FieldWord, "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseFieldAndLetter(t *testing.T) {
	f, err := ParseField("Example")
	require.NoError(t, err)
	assert.Equal(t, FieldExample, f)
	assert.True(t, f.Optional())
	assert.False(t, FieldWord.Optional())

	_, err = ParseField("created_at")
	assert.ErrorIs(t, err, ErrValidation)

	l, ok := ParseLetter("b")
	assert.True(t, ok)
	assert.Equal(t, "B", l)

	_, ok = ParseLetter("ж")
	assert.False(t, ok)
	_, ok = ParseLetter("")
	assert.False(t, ok)
	_, ok = ParseLetter("1")
	assert.False(t, ok)
}
