package usecase_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"scroll-orchestrator/internal/usecase"
)

func TestFeedPromptBuilder(t *testing.T) {
	builder := usecase.NewFeedPromptBuilder()

	t.Run("renders topic and history into tagged sections", func(t *testing.T) {
		prompt := builder.Build(usecase.ItemPromptInput{
			PromptTemplate: "Fun facts about Rome",
			History:        []string{"Rome was founded in 753 BC.", "The Colosseum held 50,000 spectators."},
			Count:          20,
		})

		assert.Contains(t, prompt.User, "<topic>\nFun facts about Rome\n</topic>")
		assert.Contains(t, prompt.User, "<item>Rome was founded in 753 BC.</item>")
		assert.Contains(t, prompt.User, "<item>The Colosseum held 50,000 spectators.</item>")
		assert.Contains(t, prompt.User, "Generate 20 new items.")
		assert.Contains(t, prompt.System, "Produce exactly 20 unique items")
	})

	t.Run("omits the history section when empty", func(t *testing.T) {
		prompt := builder.Build(usecase.ItemPromptInput{
			PromptTemplate: "SAT vocabulary",
			Count:          20,
		})

		assert.NotContains(t, prompt.User, "<history>")
	})

	t.Run("escapes markup in user content", func(t *testing.T) {
		prompt := builder.Build(usecase.ItemPromptInput{
			PromptTemplate: "facts about <script> & HTML",
			History:        []string{"a < b"},
			Count:          5,
		})

		assert.Contains(t, prompt.User, "facts about &lt;script&gt; &amp; HTML")
		assert.Contains(t, prompt.User, "<item>a &lt; b</item>")
		assert.NotContains(t, prompt.User, "<script>")
	})

	t.Run("short mode asks for tweet-sized items", func(t *testing.T) {
		prompt := builder.Build(usecase.ItemPromptInput{
			PromptTemplate: "Fun facts",
			Count:          20,
			Detailed:       false,
		})

		assert.Contains(t, prompt.System, "very short")
		assert.Equal(t, 20*60, prompt.MaxTokens)
	})

	t.Run("detailed mode raises the token budget", func(t *testing.T) {
		prompt := builder.Build(usecase.ItemPromptInput{
			PromptTemplate: "Detailed Python coding challenges with full code",
			Count:          20,
			Detailed:       true,
		})

		assert.Contains(t, prompt.System, "long-form")
		assert.Equal(t, 20*400, prompt.MaxTokens)
	})

	t.Run("appends extra instructions after the defaults", func(t *testing.T) {
		b := usecase.NewFeedPromptBuilder("Write in English.")
		prompt := b.Build(usecase.ItemPromptInput{PromptTemplate: "x", Count: 1})

		assert.Contains(t, prompt.System, "Write in English.")
		assert.Greater(t, strings.Index(prompt.System, "Write in English."),
			strings.Index(prompt.System, "provided schema."))
	})
}
