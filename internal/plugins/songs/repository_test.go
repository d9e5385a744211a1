package songs

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// --- Catalog filter tests ---

func TestBuildCatalogFilter_NoFilters(t *testing.T) {
	clause, args := buildCatalogFilter("", nil)
	if clause != "" {
		t.Errorf("expected empty clause, got %q", clause)
	}
	if args != nil {
		t.Errorf("expected no args, got %v", args)
	}
}

func TestBuildCatalogFilter_GenreSupersetCardinality(t *testing.T) {
	clause, args := buildCatalogFilter("", []string{"Pop", "Rock"})

	// One placeholder per requested genre, and the HAVING cardinality
	// must equal the request size -- that equality is what turns the IN
	// match into "carries every requested genre".
	if !strings.Contains(clause, "IN (?, ?)") {
		t.Errorf("expected two genre placeholders, got %q", clause)
	}
	if !strings.Contains(clause, "HAVING COUNT(DISTINCT LOWER(sg.genre)) = 2") {
		t.Errorf("expected HAVING cardinality 2, got %q", clause)
	}

	// Arguments are lowered so the comparison is case-insensitive.
	want := []any{"pop", "rock"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("expected args %v, got %v", want, args)
	}
}

func TestBuildCatalogFilter_CardinalityTracksGenreCount(t *testing.T) {
	for n := 1; n <= 4; n++ {
		genres := make([]string, n)
		for i := range genres {
			genres[i] = fmt.Sprintf("genre-%d", i)
		}
		clause, args := buildCatalogFilter("", genres)

		having := fmt.Sprintf("HAVING COUNT(DISTINCT LOWER(sg.genre)) = %d", n)
		if !strings.Contains(clause, having) {
			t.Errorf("genres=%d: expected %q in clause %q", n, having, clause)
		}
		if len(args) != n {
			t.Errorf("genres=%d: expected %d args, got %v", n, n, args)
		}
	}
}

func TestBuildCatalogFilter_FreeTextMatchesTitleArtistAndGenre(t *testing.T) {
	clause, args := buildCatalogFilter("Shape", nil)

	for _, column := range []string{
		"LOWER(s.title) LIKE ?",
		"LOWER(a.name) LIKE ?",
		"LOWER(sg.genre) LIKE ?",
	} {
		if !strings.Contains(clause, column) {
			t.Errorf("expected clause to match on %q, got %q", column, clause)
		}
	}
	if strings.Count(clause, "OR ") != 2 {
		t.Errorf("expected the three matches joined with OR, got %q", clause)
	}

	// The same lowered pattern feeds all three placeholders.
	want := []any{"%shape%", "%shape%", "%shape%"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("expected args %v, got %v", want, args)
	}
}

func TestBuildCatalogFilter_ComposesTextAndGenresWithAND(t *testing.T) {
	clause, args := buildCatalogFilter("shape", []string{"Pop"})

	if !strings.HasPrefix(clause, " WHERE ") {
		t.Errorf("expected leading WHERE, got %q", clause)
	}
	textIdx := strings.Index(clause, "LOWER(s.title) LIKE ?")
	andIdx := strings.Index(clause, ") AND ")
	genreIdx := strings.Index(clause, "HAVING COUNT")
	if textIdx == -1 || andIdx == -1 || genreIdx == -1 || !(textIdx < andIdx && andIdx < genreIdx) {
		t.Errorf("expected text filter AND genre filter, got %q", clause)
	}

	// Text placeholders first, then the lowered genre.
	want := []any{"%shape%", "%shape%", "%shape%", "pop"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("expected args %v, got %v", want, args)
	}
}
