package domain

import (
	"regexp"
	"strings"
)

// ParsedItem is one item recovered from free-form generator text.
type ParsedItem struct {
	Content string
	Sources []Source
}

var (
	numberedPrefixRe = regexp.MustCompile(`^\d+[.)]\s*`)
	markdownLinkRe   = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	sourceNoteRe     = regexp.MustCompile(`\(\s*[Ss]ource:\s*([^)]+)\)`)
	bareURLParenRe   = regexp.MustCompile(`\((https?://[^)\s]+)\)`)
	boldRe           = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe         = regexp.MustCompile(`\*([^*]+)\*`)
	inlineCodeRe     = regexp.MustCompile("`([^`]+)`")
	spaceRe          = regexp.MustCompile(`\s+`)
)

// ParseNumberedList recovers discrete items from a numbered-list response.
// Lines inside fenced code blocks never start a new item, so multi-line
// long-form items with code survive intact. This is the legacy path for
// generators that cannot guarantee structured output.
func ParseNumberedList(raw string) []ParsedItem {
	var items []ParsedItem
	var current []string
	inFence := false

	flush := func() {
		if len(current) == 0 {
			return
		}
		body := strings.TrimSpace(strings.Join(current, "\n"))
		current = nil
		if body == "" {
			return
		}
		if item, ok := cleanParsedItem(body); ok {
			items = append(items, item)
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		if inFence {
			current = append(current, line)
			if strings.HasPrefix(trimmed, "```") {
				inFence = false
			}
			continue
		}

		if numberedPrefixRe.MatchString(trimmed) {
			flush()
			current = append(current, numberedPrefixRe.ReplaceAllString(trimmed, ""))
			continue
		}

		if len(current) > 0 && trimmed != "" {
			current = append(current, line)
		}
		if strings.HasPrefix(trimmed, "```") && len(current) > 0 {
			inFence = true
		}
	}
	flush()

	return items
}

// cleanParsedItem strips markdown decoration, pulls attribution out of the
// text, and normalizes whitespace. Fenced blocks are left untouched.
func cleanParsedItem(body string) (ParsedItem, bool) {
	var sources []Source

	if fenceStart := strings.Index(body, "```"); fenceStart >= 0 {
		head, tail := body[:fenceStart], body[fenceStart:]
		head, sources = extractSources(head, sources)
		head = stripMarkdown(head)
		content := strings.TrimSpace(head) + "\n" + tail
		return ParsedItem{Content: strings.TrimSpace(content), Sources: sources}, true
	}

	body, sources = extractSources(body, sources)
	body = stripMarkdown(body)
	body = spaceRe.ReplaceAllString(body, " ")
	body = strings.TrimSpace(body)
	if body == "" {
		return ParsedItem{}, false
	}
	if !strings.ContainsAny(body[len(body)-1:], ".!?") {
		body += "."
	}
	return ParsedItem{Content: body, Sources: sources}, true
}

func extractSources(text string, sources []Source) (string, []Source) {
	text = markdownLinkRe.ReplaceAllStringFunc(text, func(match string) string {
		parts := markdownLinkRe.FindStringSubmatch(match)
		sources = append(sources, Source{Label: parts[1], URL: parts[2]})
		return parts[1]
	})

	text = sourceNoteRe.ReplaceAllStringFunc(text, func(match string) string {
		site := strings.TrimSpace(sourceNoteRe.FindStringSubmatch(match)[1])
		url := site
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			url = "https://" + url
		}
		sources = append(sources, Source{Label: site, URL: url})
		return ""
	})

	text = bareURLParenRe.ReplaceAllStringFunc(text, func(match string) string {
		url := bareURLParenRe.FindStringSubmatch(match)[1]
		label := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
		if slash := strings.IndexByte(label, '/'); slash >= 0 {
			label = label[:slash]
		}
		sources = append(sources, Source{Label: label, URL: url})
		return ""
	})

	return text, sources
}

func stripMarkdown(text string) string {
	text = boldRe.ReplaceAllString(text, "$1")
	text = italicRe.ReplaceAllString(text, "$1")
	text = inlineCodeRe.ReplaceAllString(text, "$1")
	return text
}
