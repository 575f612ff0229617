package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Scroller is a user-defined subject driving content generation.
// Scrollers are created once and immutable thereafter.
type Scroller struct {
	ID             uuid.UUID
	Slug           string
	Title          string
	PromptTemplate string
	CreatedAt      time.Time
}

// Source attributes one content item to an external reference.
type Source struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// SizeClass scales the presentation of an item. It is fixed once per
// generation batch.
type SizeClass string

const (
	SizeShort    SizeClass = "short"
	SizeDetailed SizeClass = "detailed"
)

// detailedThreshold is the content length above which an item counts as
// long-form even without a code fence.
const detailedThreshold = 200

// ContentItem is one generated unit of feed content. Items are immutable
// and append-only; they belong to exactly one scroller.
type ContentItem struct {
	ID         uuid.UUID
	ScrollerID uuid.UUID
	Content    string
	Sources    []Source
	SizeClass  SizeClass
	CreatedAt  time.Time
	// Seq is the insertion order assigned by storage, the tie-break when
	// two items share a CreatedAt.
	Seq int64
}

// ClassifySize reports the presentation class of a single item's content.
func ClassifySize(content string) SizeClass {
	if strings.Contains(content, "```") || utf8.RuneCountInString(content) > detailedThreshold {
		return SizeDetailed
	}
	return SizeShort
}

// detailSignals are prompt phrases that ask for long-form output.
var detailSignals = []string{
	"detailed",
	"in detail",
	"step by step",
	"step-by-step",
	"full code",
	"in depth",
	"in-depth",
	"long-form",
}

// WantsDetailed reports whether a prompt template asks for long-form items
// rather than the default one-to-two sentence format.
func WantsDetailed(promptTemplate string) bool {
	lower := strings.ToLower(promptTemplate)
	for _, signal := range detailSignals {
		if strings.Contains(lower, signal) {
			return true
		}
	}
	return false
}
