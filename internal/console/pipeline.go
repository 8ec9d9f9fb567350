package console

import (
	"gams-bknd/internal/models"
)

// RowsPerPage is the fixed page size of both asset views.
const RowsPerPage = 10

// PageResult is one rendered page of a reconciled collection.
type PageResult struct {
	Rows          []models.ProcessedAsset
	Page          int
	TotalPages    int
	FilteredCount int
}

// Reconcile runs the display pipeline over a fetched collection:
// deduplicate by the id+name composite key keeping the first
// occurrence, filter by case-insensitive substring match across every
// field value, then slice out the requested page. Pure and
// order-preserving; the same inputs always yield the same page.
func Reconcile(assets []models.ProcessedAsset, query string, page int) PageResult {
	seen := make(map[string]bool, len(assets))
	filtered := make([]models.ProcessedAsset, 0, len(assets))
	for _, a := range assets {
		key := a.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		if a.Matches(query) {
			filtered = append(filtered, a)
		}
	}

	totalPages := (len(filtered) + RowsPerPage - 1) / RowsPerPage
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	start := (page - 1) * RowsPerPage
	end := start + RowsPerPage
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return PageResult{
		Rows:          filtered[start:end],
		Page:          page,
		TotalPages:    totalPages,
		FilteredCount: len(filtered),
	}
}
