package pagination

// PageResult is a read-only view over one page of a finite sequence.
// It is always self-consistent: 0 <= Start <= End <= Total, Page is
// clamped to [0, PageCount-1], and PageCount >= 1 even when Total == 0.
type PageResult[T any] struct {
	// Items holds the items of this page.
	Items []T

	// Total is the length of the full sequence.
	Total int

	// Start is the 0-based index of the first item of the page.
	Start int

	// End is the index one past the last item of the page.
	End int

	// Page is the clamped 0-based page index actually returned.
	Page int

	// PageCount is the total number of pages, at least 1.
	PageCount int
}

// Paginate slices items into one page. page is 0-based and clamped into
// the valid range; pageSize is coerced to at least 1. Out-of-range input
// is silently corrected, never an error. The function is pure: identical
// inputs yield identical results and items is not modified.
func Paginate[T any](items []T, page, pageSize int) PageResult[T] {
	total := len(items)

	if pageSize < 1 {
		pageSize = 1
	}

	pageCount := (total + pageSize - 1) / pageSize
	if pageCount < 1 {
		pageCount = 1
	}

	if page < 0 {
		page = 0
	}
	if page > pageCount-1 {
		page = pageCount - 1
	}

	start := page * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	if start > total {
		start = total
	}

	return PageResult[T]{
		Items:     items[start:end],
		Total:     total,
		Start:     start,
		End:       end,
		Page:      page,
		PageCount: pageCount,
	}
}
