package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/projexhq/projex-server/internal/observability"
)

const (
	fallbackSlug      = "workspace"
	maxSlugBaseLength = 100
	maxSlugAttempts   = 1000
)

type SlugChecker interface {
	SlugTaken(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
}

// Slugify strips diacritics, lowercases and collapses every run of
// characters outside [a-z0-9] into one hyphen. Names with nothing left after
// normalization map to "workspace".
func Slugify(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	stripped = strings.ToLower(stripped)

	var b strings.Builder
	b.Grow(len(stripped))
	pendingHyphen := false
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	slug := b.String()
	if len(slug) > maxSlugBaseLength {
		slug = strings.TrimRight(slug[:maxSlugBaseLength], "-")
	}
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

// GenerateUniqueSlug returns the slug of name, suffixed with -1, -2, ... until
// checker reports it free. excludeID lets a renamed workspace keep its own
// slug out of the collision set. The result is only a candidate: a concurrent
// writer can still claim it before the caller persists it.
func GenerateUniqueSlug(ctx context.Context, checker SlugChecker, name string, excludeID uuid.UUID) (string, error) {
	base := Slugify(name)
	candidate := base
	for i := 1; i <= maxSlugAttempts; i++ {
		taken, err := checker.SlugTaken(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		observability.RecordSlugCollision(ctx, "lookup")
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", base, maxSlugAttempts)
}
