package viewstate

import (
	"strings"

	"herohub/pkg/models"
)

// DefaultPageSize is the number of heroes shown per page.
const DefaultPageSize = 20

// TotalPages returns max(1, ceil(n/size)).
func TotalPages(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// ClampPage clamps page into [1, TotalPages(n, size)].
func ClampPage(page, n, size int) int {
	total := TotalPages(n, size)
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// Paginate returns the slice of items shown on page, with page clamped first.
func Paginate(items []models.HeroSummary, page, size int) ([]models.HeroSummary, int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	page = ClampPage(page, len(items), size)
	start := (page - 1) * size
	if start >= len(items) {
		return []models.HeroSummary{}, page
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], page
}

// NormalizeQuery trims and lower-cases a search query.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// FilterByName keeps the heroes whose name contains the query,
// case-insensitively. An empty query keeps everything.
func FilterByName(items []models.HeroSummary, query string) []models.HeroSummary {
	q := NormalizeQuery(query)
	if q == "" {
		return items
	}
	out := make([]models.HeroSummary, 0, len(items))
	for _, h := range items {
		if strings.Contains(strings.ToLower(h.Name), q) {
			out = append(out, h)
		}
	}
	return out
}
