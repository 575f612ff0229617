package domain_test

import (
	"strings"
	"testing"

	"scroll-orchestrator/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestClassifySize(t *testing.T) {
	t.Run("Short sentence is short", func(t *testing.T) {
		assert.Equal(t, domain.SizeShort, domain.ClassifySize("Honey never spoils."))
	})

	t.Run("Fenced code is detailed", func(t *testing.T) {
		assert.Equal(t, domain.SizeDetailed, domain.ClassifySize("Try this:\n```go\nfmt.Println(1)\n```"))
	})

	t.Run("Long content is detailed", func(t *testing.T) {
		assert.Equal(t, domain.SizeDetailed, domain.ClassifySize(strings.Repeat("a", 201)))
	})

	t.Run("Boundary length stays short", func(t *testing.T) {
		assert.Equal(t, domain.SizeShort, domain.ClassifySize(strings.Repeat("a", 200)))
	})
}

func TestWantsDetailed(t *testing.T) {
	assert.False(t, domain.WantsDetailed("Wikipedia facts"))
	assert.True(t, domain.WantsDetailed("Detailed history of Rome"))
	assert.True(t, domain.WantsDetailed("explain algorithms step by step"))
	assert.True(t, domain.WantsDetailed("LeetCode problems with full code"))
}
