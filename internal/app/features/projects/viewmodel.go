// internal/app/features/projects/viewmodel.go
//
// Pure browse helpers: category filter, ordering, and preview truncation.
// No I/O here; the handlers feed these from store reads.
package projects

import (
	"sort"
	"strings"

	"github.com/hackmatehq/hackmate/internal/domain/models"
)

// Sort orders accepted by the browse page.
const (
	SortLatest = "latest"
	SortOldest = "oldest"
)

// PreviewWordCount is how many whitespace-delimited words of a description
// appear on a listing card before the detail page takes over.
const PreviewWordCount = 25

// FilterByCategory keeps the listings whose category matches exactly,
// case-insensitively. An empty category is the identity filter.
func FilterByCategory(listings []models.Project, category string) []models.Project {
	if strings.TrimSpace(category) == "" {
		return listings
	}
	out := make([]models.Project, 0, len(listings))
	for _, p := range listings {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// SortListings orders listings by creation time: SortLatest newest first,
// SortOldest oldest first (any other order falls back to SortLatest). A
// listing whose server timestamp has not materialized yet (zero created-at)
// sorts ahead of the rest under either order, so a just-created listing shows
// up at the top immediately. The sort is stable and does not mutate its input.
func SortListings(listings []models.Project, order string) []models.Project {
	out := make([]models.Project, len(listings))
	copy(out, listings)

	newestFirst := order != SortOldest
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CreatedAt, out[j].CreatedAt
		switch {
		case a.IsZero() && b.IsZero():
			return false
		case a.IsZero():
			return true
		case b.IsZero():
			return false
		}
		if newestFirst {
			return a.After(b)
		}
		return a.Before(b)
	})
	return out
}

// Preview returns the first PreviewWordCount words of description, with a
// trailing ellipsis when the text was longer. Short descriptions pass
// through untouched.
func Preview(description string) string {
	words := strings.Fields(description)
	if len(words) <= PreviewWordCount {
		return description
	}
	return strings.Join(words[:PreviewWordCount], " ") + "…"
}
