package application

import (
	"testing"

	"github.com/felixgeelhaar/synapse/internal/classifier/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractClassification_EmbeddedObject(t *testing.T) {
	text := `Here is the JSON: {"category_slug":"work","entry_type":"note","metadata":{}} Hope this helps!`

	c, err := ExtractClassification(text)

	require.NoError(t, err)
	assert.Equal(t, domain.Classification{
		"category_slug": "work",
		"entry_type":    "note",
		"metadata":      map[string]any{},
	}, c)
}

func TestExtractClassification_CodeFence(t *testing.T) {
	text := "```json\n{\"category_slug\":\"home\",\"entry_type\":\"task\",\"metadata\":{\"emoji\":\"🧹\"}}\n```"

	c, err := ExtractClassification(text)

	require.NoError(t, err)
	assert.Equal(t, "home", c.CategorySlug())
	assert.Equal(t, "🧹", c.Emoji())
}

func TestExtractClassification_BracesInsideStrings(t *testing.T) {
	text := `{"category_slug":"ideas","entry_type":"note","metadata":{"summary":"use {curly} braces"}} trailing }`

	c, err := ExtractClassification(text)

	require.NoError(t, err)
	assert.Equal(t, "use {curly} braces", c.Metadata()["summary"])
}

func TestExtractClassification_FirstSpanWins(t *testing.T) {
	text := `{"category_slug":"work","entry_type":"task"} and also {"category_slug":"home","entry_type":"note"}`

	c, err := ExtractClassification(text)

	require.NoError(t, err)
	assert.Equal(t, "work", c.CategorySlug())
}

func TestExtractClassification_ObjectInsideArray(t *testing.T) {
	c, err := ExtractClassification(`[{"category_slug":"work","entry_type":"note"}]`)

	require.NoError(t, err)
	assert.Equal(t, "work", c.CategorySlug())
	assert.Equal(t, "note", c.EntryType())
}

func TestExtractClassification_PassesUnknownValuesThrough(t *testing.T) {
	c, err := ExtractClassification(`{"category_slug":"space","entry_type":"banana","extra":true}`)

	require.NoError(t, err)
	assert.Equal(t, "banana", c.EntryType())
	assert.Equal(t, true, c["extra"])
}

func TestExtractClassification_Errors(t *testing.T) {
	tests := map[string]string{
		"no braces":        "I could not classify that, sorry.",
		"empty":            "",
		"broken object":    `{"category_slug": "work", "entry_type": }`,
		"missing keys":     `{"metadata":{}}`,
		"missing category": `{"entry_type":"note"}`,
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ExtractClassification(text)
			assert.ErrorIs(t, err, domain.ErrParse)
		})
	}
}

func TestFirstObjectSpan_Unterminated(t *testing.T) {
	span, ok := firstObjectSpan(`x {"a": {"b": 1} y`)
	assert.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}`, span)

	_, ok = firstObjectSpan(`} only closing {`)
	assert.False(t, ok)
}
