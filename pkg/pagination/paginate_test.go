package pagination

import (
	"testing"
)

func makeItems(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestPaginate_PartitionsExactly(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		pageSize int
	}{
		{name: "even split", total: 100, pageSize: 10},
		{name: "ragged last page", total: 237, pageSize: 100},
		{name: "single item pages", total: 7, pageSize: 1},
		{name: "one page", total: 5, pageSize: 50},
		{name: "empty", total: 0, pageSize: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := makeItems(tt.total)

			first := Paginate(items, 0, tt.pageSize)

			var reassembled []int
			for page := 0; page < first.PageCount; page++ {
				result := Paginate(items, page, tt.pageSize)
				if result.Page != page {
					t.Errorf("Page = %d, want %d", result.Page, page)
				}
				if result.Start > result.End || result.End > result.Total {
					t.Errorf("inconsistent view: start=%d end=%d total=%d",
						result.Start, result.End, result.Total)
				}
				reassembled = append(reassembled, result.Items...)
			}

			if len(reassembled) != tt.total {
				t.Fatalf("reassembled %d items, want %d", len(reassembled), tt.total)
			}
			for i, v := range reassembled {
				if v != i {
					t.Fatalf("reassembled[%d] = %d, want %d (gap or overlap)", i, v, i)
				}
			}
		})
	}
}

func TestPaginate_PageCount(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		pageSize int
		want     int
	}{
		{name: "exact multiple", total: 100, pageSize: 10, want: 10},
		{name: "remainder adds page", total: 101, pageSize: 10, want: 11},
		{name: "empty has one page", total: 0, pageSize: 10, want: 1},
		{name: "single item", total: 1, pageSize: 10, want: 1},
		{name: "page size one", total: 3, pageSize: 1, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// PageCount must not depend on the requested page
			for _, page := range []int{-5, 0, 2, 9999} {
				result := Paginate(makeItems(tt.total), page, tt.pageSize)
				if result.PageCount != tt.want {
					t.Errorf("Paginate(page=%d).PageCount = %d, want %d",
						page, result.PageCount, tt.want)
				}
			}
		})
	}
}

func TestPaginate_ClampsPage(t *testing.T) {
	items := makeItems(25)

	tests := []struct {
		name     string
		page     int
		wantPage int
	}{
		{name: "negative clamps to zero", page: -3, wantPage: 0},
		{name: "in range untouched", page: 1, wantPage: 1},
		{name: "past end clamps to last", page: 99, wantPage: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Paginate(items, tt.page, 10)
			if result.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", result.Page, tt.wantPage)
			}
			if len(result.Items) == 0 {
				t.Error("clamped page should still return items")
			}
		})
	}
}

func TestPaginate_CoercesPageSize(t *testing.T) {
	items := makeItems(3)

	for _, pageSize := range []int{0, -10} {
		result := Paginate(items, 0, pageSize)
		if result.PageCount != 3 {
			t.Errorf("Paginate(pageSize=%d).PageCount = %d, want 3 (coerced to 1)",
				pageSize, result.PageCount)
		}
		if len(result.Items) != 1 {
			t.Errorf("Paginate(pageSize=%d) returned %d items, want 1",
				pageSize, len(result.Items))
		}
	}
}

func TestPaginate_EmptyInput(t *testing.T) {
	result := Paginate([]int{}, 5, 10)

	if result.Total != 0 {
		t.Errorf("Total = %d, want 0", result.Total)
	}
	if result.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", result.PageCount)
	}
	if result.Page != 0 {
		t.Errorf("Page = %d, want 0", result.Page)
	}
	if len(result.Items) != 0 {
		t.Errorf("Items = %v, want empty", result.Items)
	}
	if result.Start != 0 || result.End != 0 {
		t.Errorf("Start/End = %d/%d, want 0/0", result.Start, result.End)
	}
}

func TestPaginate_Deterministic(t *testing.T) {
	items := makeItems(42)

	a := Paginate(items, 2, 10)
	b := Paginate(items, 2, 10)

	if a.Start != b.Start || a.End != b.End || a.Page != b.Page || a.PageCount != b.PageCount {
		t.Errorf("identical inputs gave different views: %+v vs %+v", a, b)
	}
	for i := range a.Items {
		if a.Items[i] != b.Items[i] {
			t.Fatalf("Items[%d] differ: %d vs %d", i, a.Items[i], b.Items[i])
		}
	}
}
