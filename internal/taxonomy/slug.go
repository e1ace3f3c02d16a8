package taxonomy

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var slugInvalidRunes = regexp.MustCompile(`[^a-z0-9-]+`)
var slugDashRuns = regexp.MustCompile(`-+`)

// GenerateSlug normalizes a display name into a URL-safe slug: lowercase,
// every run of characters outside [a-z0-9-] collapsed to a single dash,
// leading/trailing dashes trimmed. The result is empty only when the name
// contains no alphanumerics at all.
func GenerateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalidRunes.ReplaceAllString(slug, "-")
	slug = slugDashRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// SlugExistsFunc probes the store for a live row carrying slug, skipping
// excludeID when updating an existing row.
type SlugExistsFunc func(ctx context.Context, slug string, excludeID *int64) (bool, error)

// MakeSlugUnique resolves collisions by appending -1, -2, ... until the probe
// reports the slug free. This is a check-then-act loop: two concurrent calls
// with the same base can race; at directory scale that window is an accepted,
// documented limitation.
func MakeSlugUnique(ctx context.Context, slug string, excludeID *int64, exists SlugExistsFunc) (string, error) {
	base := slug
	for n := 1; ; n++ {
		taken, err := exists(ctx, slug, excludeID)
		if err != nil {
			return "", fmt.Errorf("probe slug %q: %w", slug, err)
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}
