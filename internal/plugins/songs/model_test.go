package songs

import (
	"reflect"
	"testing"
)

func TestNormalizeListOptions(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		wantPage   int
		wantSize   int
	}{
		{"defaults", 0, 0, 0, 5},
		{"negative page clamped", -3, 10, 0, 10},
		{"size capped", 0, 500, 0, 100},
		{"negative size defaults", 2, -1, 2, 5},
		{"valid passthrough", 3, 20, 3, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := NormalizeListOptions(tt.page, tt.size)
			if opts.Page != tt.wantPage || opts.Size != tt.wantSize {
				t.Errorf("got page=%d size=%d, want page=%d size=%d",
					opts.Page, opts.Size, tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestListOptions_Offset(t *testing.T) {
	opts := ListOptions{Page: 3, Size: 5}
	if got := opts.Offset(); got != 15 {
		t.Errorf("expected offset 15, got %d", got)
	}
}

func TestNewPage(t *testing.T) {
	page := NewPage([]int{1, 2, 3}, 0, 5, 22)
	if page.TotalPages != 5 {
		t.Errorf("expected 5 total pages for 22 elements at size 5, got %d", page.TotalPages)
	}
	if page.TotalElements != 22 {
		t.Errorf("expected 22 total elements, got %d", page.TotalElements)
	}
}

func TestNewPage_EmptyContentIsNotNil(t *testing.T) {
	page := NewPage[int](nil, 0, 5, 0)
	if page.Content == nil {
		t.Error("expected empty slice, got nil (would serialize as JSON null)")
	}
	if page.TotalPages != 0 {
		t.Errorf("expected 0 total pages, got %d", page.TotalPages)
	}
}

func TestNormalizeGenres(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"dedupes case-insensitively", []string{"Pop", "pop", "POP"}, []string{"Pop"}},
		{"preserves first-seen casing", []string{"rock", "Rock"}, []string{"rock"}},
		{"trims whitespace", []string{"  Pop  ", "Rock"}, []string{"Pop", "Rock"}},
		{"drops blanks", []string{"", "  ", "Pop"}, []string{"Pop"}},
		{"preserves order", []string{"Soul", "Pop", "soul"}, []string{"Soul", "Pop"}},
		{"empty input", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeGenres(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizeGenres(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestToSummary_NeverNilGenres(t *testing.T) {
	s := &Song{ID: 1, Title: "x", ArtistID: 2, ArtistName: "Queen"}
	summary := toSummary(s)
	if summary.Genres == nil {
		t.Error("expected empty genre slice, got nil")
	}
}
