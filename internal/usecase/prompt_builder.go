package usecase

import (
	"fmt"
	"strings"
)

// ItemPromptInput contains the pieces that feed into the prompt builder.
type ItemPromptInput struct {
	PromptTemplate string
	History        []string
	Count          int
	Detailed       bool
}

// ItemPrompt carries the rendered system/user pair plus a token budget.
type ItemPrompt struct {
	System    string
	User      string
	MaxTokens int
}

// ItemPromptBuilder builds the messages sent to the generator for one batch.
type ItemPromptBuilder interface {
	Build(input ItemPromptInput) ItemPrompt
}

// FeedPromptBuilder creates structured prompts that separate topic,
// recent history, and output instructions.
type FeedPromptBuilder struct {
	additionalInstructions []string
}

// NewFeedPromptBuilder creates a prompt builder with optional extra
// instructions appended.
func NewFeedPromptBuilder(additionalInstructions ...string) ItemPromptBuilder {
	return &FeedPromptBuilder{
		additionalInstructions: additionalInstructions,
	}
}

// Build renders the system and user messages for the completion API.
func (b *FeedPromptBuilder) Build(input ItemPromptInput) ItemPrompt {
	var sysSb strings.Builder
	sysSb.WriteString("You are a content generator for an infinite-scroll feed app.\n")
	sysSb.WriteString("Rules:\n")

	instructions := []string{
		fmt.Sprintf("Produce exactly %d unique items strictly about the user's topic.", input.Count),
		"Every item must differ from the others and from the recent items listed in <history>: do not repeat their themes or examples.",
		"Each item must be factual, self-contained and engaging.",
	}
	if input.Detailed {
		instructions = append(instructions,
			"The topic asks for long-form output: write detailed items, with fenced code blocks where code is requested.")
	} else {
		instructions = append(instructions,
			"Keep each item very short: one or two sentences, like a tweet.")
	}
	instructions = append(instructions,
		"When an item is backed by a real source, fill source_title and source_url; otherwise set both to null.",
		"Respond only with JSON matching the provided schema.")

	for i, inst := range append(instructions, b.additionalInstructions...) {
		sysSb.WriteString(fmt.Sprintf("%d. %s\n", i+1, inst))
	}

	var userSb strings.Builder
	userSb.WriteString("<topic>\n")
	userSb.WriteString(escape(input.PromptTemplate))
	userSb.WriteString("\n</topic>\n")

	if len(input.History) > 0 {
		userSb.WriteString("\n<history>\n")
		for _, item := range input.History {
			userSb.WriteString("  <item>")
			userSb.WriteString(escape(item))
			userSb.WriteString("</item>\n")
		}
		userSb.WriteString("</history>\n")
	}

	userSb.WriteString(fmt.Sprintf("\nGenerate %d new items.\n", input.Count))

	return ItemPrompt{
		System:    sysSb.String(),
		User:      userSb.String(),
		MaxTokens: tokenBudget(input.Count, input.Detailed),
	}
}

// tokenBudget bounds the completion: short items are tweet-sized, detailed
// ones may carry code blocks.
func tokenBudget(count int, detailed bool) int {
	perItem := 60
	if detailed {
		perItem = 400
	}
	return count * perItem
}

func escape(value string) string {
	s := strings.TrimSpace(value)
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return replacer.Replace(s)
}
