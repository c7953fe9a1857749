// Package query is the pure search/filter/paginate engine over the
// cache's entry list. Nothing here holds state or touches I/O: for a
// fixed input list and fixed parameters the output is deterministic, and
// input order is preserved.
package query

import (
	"strings"

	"github.com/minbarcms/minbar/internal/models"
)

// KindAll passes every entry through the type filter.
const KindAll = "all"

// Params are the browse-view inputs: free-text query, kind filter, and
// 1-based pagination.
type Params struct {
	Query    string
	Kind     string
	Page     int
	PageSize int
}

// Page is one view of the filtered list.
type Page struct {
	Items      []models.Entry
	Page       int
	TotalPages int
	TotalItems int
}

// Matches reports whether the free-text query matches the entry:
// case-insensitive substring against the string form of every wire
// field, not a fixed subset. An empty query matches everything.
func Matches(e models.Entry, q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	for _, f := range e.Record().Fields() {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// MatchesKind reports whether the entry passes the type filter. KindAll
// (or an empty filter) passes everything; otherwise the match is exact
// and case-insensitive.
func MatchesKind(e models.Entry, kind string) bool {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" || kind == KindAll {
		return true
	}
	return string(e.Kind) == kind
}

// Filter applies the conjunction of the free-text and kind filters,
// preserving input order.
func Filter(entries []models.Entry, q, kind string) []models.Entry {
	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if Matches(e, q) && MatchesKind(e, kind) {
			out = append(out, e)
		}
	}
	return out
}

// Paginate slices the list into 1-based pages of the given size. Total
// pages is at least 1 even for an empty list, and a requested page
// outside [1, total] is clamped back into range.
func Paginate(entries []models.Entry, page, size int) Page {
	if size < 1 {
		size = 1
	}
	total := (len(entries) + size - 1) / size
	if total < 1 {
		total = 1
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}

	start := (page - 1) * size
	end := start + size
	if start > len(entries) {
		start = len(entries)
	}
	if end > len(entries) {
		end = len(entries)
	}

	return Page{
		Items:      entries[start:end],
		Page:       page,
		TotalPages: total,
		TotalItems: len(entries),
	}
}

// Run filters then paginates in one step.
func Run(entries []models.Entry, p Params) Page {
	return Paginate(Filter(entries, p.Query, p.Kind), p.Page, p.PageSize)
}
