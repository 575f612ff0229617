package domain_test

import (
	"testing"

	"scroll-orchestrator/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumberedList(t *testing.T) {
	t.Run("Splits numbered lines into items", func(t *testing.T) {
		raw := "1. The Eiffel Tower grows in summer.\n2. Honey never spoils.\n3. Octopuses have three hearts."
		items := domain.ParseNumberedList(raw)
		require.Len(t, items, 3)
		assert.Equal(t, "The Eiffel Tower grows in summer.", items[0].Content)
		assert.Equal(t, "Octopuses have three hearts.", items[2].Content)
	})

	t.Run("Ignores preamble and blank lines", func(t *testing.T) {
		raw := "Here are your facts:\n\n1. First fact\n\n2. Second fact\n"
		items := domain.ParseNumberedList(raw)
		require.Len(t, items, 2)
		assert.Equal(t, "First fact.", items[0].Content)
	})

	t.Run("Numbered lines inside code fences do not split items", func(t *testing.T) {
		raw := "1. Counting in Python:\n```python\nfor i in range(3):\n    print(i)\n1. not a new item\n```\n2. Second item"
		items := domain.ParseNumberedList(raw)
		require.Len(t, items, 2)
		assert.Contains(t, items[0].Content, "```python")
		assert.Contains(t, items[0].Content, "1. not a new item")
		assert.Equal(t, "Second item.", items[1].Content)
	})

	t.Run("Strips markdown emphasis and inline code", func(t *testing.T) {
		items := domain.ParseNumberedList("1. **Bold** and *italic* and `code` here")
		require.Len(t, items, 1)
		assert.Equal(t, "Bold and italic and code here.", items[0].Content)
	})

	t.Run("Extracts markdown links as sources", func(t *testing.T) {
		items := domain.ParseNumberedList("1. Rome wasn't built in a day [Wikipedia](https://en.wikipedia.org/wiki/Rome)")
		require.Len(t, items, 1)
		require.Len(t, items[0].Sources, 1)
		assert.Equal(t, "Wikipedia", items[0].Sources[0].Label)
		assert.Equal(t, "https://en.wikipedia.org/wiki/Rome", items[0].Sources[0].URL)
		assert.Equal(t, "Rome wasn't built in a day Wikipedia.", items[0].Content)
	})

	t.Run("Extracts source notes and removes them from content", func(t *testing.T) {
		items := domain.ParseNumberedList("1. Bananas are berries (Source: britannica.com)")
		require.Len(t, items, 1)
		require.Len(t, items[0].Sources, 1)
		assert.Equal(t, "britannica.com", items[0].Sources[0].Label)
		assert.Equal(t, "https://britannica.com", items[0].Sources[0].URL)
		assert.Equal(t, "Bananas are berries.", items[0].Content)
	})

	t.Run("Extracts bare parenthesized URLs", func(t *testing.T) {
		items := domain.ParseNumberedList("1. Light takes 8 minutes from the sun (https://nasa.gov/facts)")
		require.Len(t, items, 1)
		require.Len(t, items[0].Sources, 1)
		assert.Equal(t, "nasa.gov", items[0].Sources[0].Label)
	})

	t.Run("Adds terminal punctuation to bare sentences", func(t *testing.T) {
		items := domain.ParseNumberedList("1. A fact with no period")
		require.Len(t, items, 1)
		assert.Equal(t, "A fact with no period.", items[0].Content)
	})

	t.Run("Empty input yields no items", func(t *testing.T) {
		assert.Empty(t, domain.ParseNumberedList(""))
		assert.Empty(t, domain.ParseNumberedList("no numbering at all"))
	})
}
