package domain

import (
	"context"
	"fmt"
	"strings"
)

// maxSlugBaseLength leaves room for a numeric disambiguation suffix.
const maxSlugBaseLength = 40

// SlugPolicy derives a URL-safe, unique slug from a scroller title.
type SlugPolicy interface {
	// Base derives the slug base for a title: lowercase, alphanumerics and
	// hyphens only, bounded length.
	Base(title string) string

	// Unique disambiguates base against already-taken slugs by appending
	// -1, -2, ... until taken reports false.
	Unique(ctx context.Context, base string, taken func(ctx context.Context, slug string) (bool, error)) (string, error)
}

type slugPolicy struct{}

// NewSlugPolicy creates the default SlugPolicy.
func NewSlugPolicy() SlugPolicy {
	return &slugPolicy{}
}

func (p *slugPolicy) Base(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ', r == '\t':
			b.WriteRune(' ')
		}
	}

	slug := strings.Join(strings.Fields(b.String()), "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")

	if len(slug) > maxSlugBaseLength {
		slug = strings.Trim(slug[:maxSlugBaseLength], "-")
	}
	if slug == "" {
		slug = "scroller"
	}
	return slug
}

func (p *slugPolicy) Unique(ctx context.Context, base string, taken func(ctx context.Context, slug string) (bool, error)) (string, error) {
	slug := base
	for counter := 1; ; counter++ {
		inUse, err := taken(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug %q: %w", slug, err)
		}
		if !inUse {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}
