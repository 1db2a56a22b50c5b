package paint

import (
	"fmt"
	"slices"
	"testing"
	"time"
)

func TestAlignedRangePadsToWeekday(t *testing.T) {
	// 2024-03-01 is a Friday.
	dates, err := AlignedDates("2024-03-01", "2024-03-03")
	if err != nil {
		t.Fatalf("AlignedDates: %v", err)
	}
	if len(dates) != 8 {
		t.Fatalf("len=%d, want 8", len(dates))
	}
	for i := 0; i < 5; i++ {
		if dates[i] != nil {
			t.Fatalf("slot %d = %v, want filler", i, dates[i])
		}
	}
	if got := FormatDate(*dates[5]); got != "2024-03-01" {
		t.Fatalf("first date=%s", got)
	}
	if got := FormatDate(*dates[7]); got != "2024-03-03" {
		t.Fatalf("last date=%s", got)
	}
}

func TestDateRangeSwapsReversedBounds(t *testing.T) {
	a := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	got := DateRange(b, a)
	if len(got) != 3 || FormatDate(got[1]) != "2024-02-29" {
		t.Fatalf("got %v", got)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	if _, err := ParseDate("03/01/2024"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAutoColorSingleCategoryNoDays(t *testing.T) {
	got := AutoColor("2024-03-01", "2024-03-07", nil, []Category{{ID: "a"}})
	if len(got) != 1 || got[0].Color != Palette[0] {
		t.Fatalf("got %+v, want %s", got, Palette[0])
	}
}

func TestAutoColorEmptyDaysCyclesByIndex(t *testing.T) {
	var cats []Category
	for i := 0; i < 8; i++ {
		cats = append(cats, Category{ID: fmt.Sprint(i)})
	}
	got := AutoColor("2024-03-01", "2024-03-07", nil, cats)
	for i, a := range got {
		if a.Color != Palette[i%6] {
			t.Fatalf("category %d got %s, want %s", i, a.Color, Palette[i%6])
		}
	}
}

func TestAutoColorEmptyCategories(t *testing.T) {
	days := []Day{{Date: "2024-03-01", CategoryID: "a"}}
	if got := AutoColor("2024-03-01", "2024-03-07", days, nil); len(got) != 0 {
		t.Fatalf("got %+v", got)
	}
}

func TestAutoColorTopAndHalfDiffer(t *testing.T) {
	days := []Day{{Date: "2024-03-01", CategoryID: "a", HalfCategoryID: "b"}}
	got := AutoColor("2024-03-01", "2024-03-01", days, []Category{{ID: "a"}, {ID: "b"}})
	if got[0].Color == got[1].Color {
		t.Fatalf("adjacent categories share %s", got[0].Color)
	}
	if got[0].CategoryID != "a" || got[1].CategoryID != "b" {
		t.Fatalf("order not preserved: %+v", got)
	}
	if got[0].Color != Palette[0] || got[1].Color != Palette[1] {
		t.Fatalf("want first-fit colors, got %+v", got)
	}
}

func TestBuildAdjacency(t *testing.T) {
	days := []Day{
		{Date: "2024-03-01", CategoryID: "a"},
		{Date: "2024-03-02", CategoryID: "a", HalfCategoryID: "b"},
		{Date: "2024-03-03", CategoryID: "c"},
		{Date: "2024-03-04", CategoryID: "d"},
	}
	adj := BuildAdjacency("2024-03-01", "2024-03-05", days)

	tests := map[string][]string{
		"a": {"a", "b"},
		"b": {"a", "c"},
		"c": {"b", "d"},
		"d": {"c"},
	}
	for id, want := range tests {
		if got := adj.Neighbors(id); !slices.Equal(got, want) {
			t.Fatalf("neighbors(%s)=%v, want %v", id, got, want)
		}
	}
}

func TestBuildAdjacencyIgnoresDaysOutsideRange(t *testing.T) {
	days := []Day{
		{Date: "2024-02-01", CategoryID: "x"},
		{Date: "2024-03-01", CategoryID: "a"},
	}
	adj := BuildAdjacency("2024-03-01", "2024-03-02", days)
	if _, ok := adj["x"]; ok {
		t.Fatalf("day outside range contributed: %v", adj)
	}
	if _, ok := adj["a"]; !ok {
		t.Fatalf("painted category missing from map")
	}
}

func TestAutoColorTripExample(t *testing.T) {
	cats := []Category{{ID: "travel"}, {ID: "london"}, {ID: "york"}, {ID: "leeds"}, {ID: "edinburgh"}}
	days := []Day{
		{Date: "2023-05-01", CategoryID: "travel", HalfCategoryID: "london"},
		{Date: "2023-05-02", CategoryID: "london"},
		{Date: "2023-05-03", CategoryID: "london", HalfCategoryID: "york"},
		{Date: "2023-05-04", CategoryID: "york", HalfCategoryID: "leeds"},
		{Date: "2023-05-05", CategoryID: "leeds", HalfCategoryID: "edinburgh"},
		{Date: "2023-05-06", CategoryID: "edinburgh"},
	}
	adj := BuildAdjacency("2023-05-01", "2023-05-06", days)
	got := AutoColor("2023-05-01", "2023-05-06", days, cats)
	colors := make(map[string]string)
	for _, a := range got {
		if !slices.Contains(Palette, a.Color) {
			t.Fatalf("%s got non-palette color %s", a.CategoryID, a.Color)
		}
		colors[a.CategoryID] = a.Color
	}
	for id := range colors {
		for _, n := range adj.Neighbors(id) {
			if n != id && colors[n] == colors[id] {
				t.Fatalf("%s and %s both %s", id, n, colors[id])
			}
		}
	}
}

func TestAutoColorCliqueOfSixIsDistinct(t *testing.T) {
	adj := make(Adjacency)
	var cats []Category
	for i := 0; i < 6; i++ {
		cats = append(cats, Category{ID: fmt.Sprint(i)})
	}
	for _, a := range cats {
		for _, b := range cats {
			if a.ID != b.ID {
				adj.add(a.ID, b.ID)
			}
		}
	}
	got := ColorGreedy(adj, cats)
	seen := make(map[string]bool)
	for _, a := range got {
		if seen[a.Color] {
			t.Fatalf("color %s reused in clique: %+v", a.Color, got)
		}
		seen[a.Color] = true
	}
}

func TestAutoColorFallsBackCyclically(t *testing.T) {
	adj := make(Adjacency)
	var cats []Category
	for i := 0; i < 7; i++ {
		cats = append(cats, Category{ID: fmt.Sprint(i)})
	}
	for _, a := range cats {
		for _, b := range cats {
			if a.ID != b.ID {
				adj.add(a.ID, b.ID)
			}
		}
	}
	got := ColorGreedy(adj, cats)
	if got[6].Color != Palette[0] {
		t.Fatalf("seventh category got %s, want fallback %s", got[6].Color, Palette[0])
	}
}

func TestFillColorsAvoidsKnownNeighbors(t *testing.T) {
	days := []Day{
		{Date: "2024-03-01", CategoryID: "a"},
		{Date: "2024-03-02", CategoryID: "b"},
		{Date: "2024-03-03", CategoryID: "c"},
	}
	adj := BuildAdjacency("2024-03-01", "2024-03-03", days)
	cats := []Category{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	tests := []struct {
		name  string
		known map[string]string
		want  []string
	}{
		{"none known", nil, []string{Palette[0], Palette[1], Palette[0]}},
		{"first known", map[string]string{"a": Palette[1]}, []string{Palette[1], Palette[0], Palette[1]}},
		{"later known", map[string]string{"c": Palette[0]}, []string{Palette[0], Palette[1], Palette[0]}},
		{"middle known", map[string]string{"b": Palette[0]}, []string{Palette[1], Palette[0], Palette[1]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FillColors(adj, cats, tt.known)
			for i, want := range tt.want {
				if got[i].Color != want {
					t.Fatalf("%s=%s, want %s", cats[i].ID, got[i].Color, want)
				}
			}
		})
	}
}

func TestAutoColorDeterministic(t *testing.T) {
	days := []Day{
		{Date: "2024-03-01", CategoryID: "a", HalfCategoryID: "b"},
		{Date: "2024-03-02", CategoryID: "b"},
		{Date: "2024-03-03", CategoryID: "c"},
	}
	cats := []Category{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	first := AutoColor("2024-03-01", "2024-03-03", days, cats)
	for i := 0; i < 20; i++ {
		if again := AutoColor("2024-03-01", "2024-03-03", days, cats); !slices.Equal(first, again) {
			t.Fatalf("run %d: %+v != %+v", i, again, first)
		}
	}
}

func TestNextColorWraps(t *testing.T) {
	if got := NextColor(Palette[5]); got != Palette[0] {
		t.Fatalf("got %s", got)
	}
	if got := NextColor(""); got != Palette[0] {
		t.Fatalf("got %s", got)
	}
	if got := NextColor(Palette[1]); got != Palette[2] {
		t.Fatalf("got %s", got)
	}
}

func TestSortCategoriesByFirstAppearance(t *testing.T) {
	cats := []Category{{ID: "unused"}, {ID: "half-only"}, {ID: "late"}, {ID: "early"}}
	days := []Day{
		{Date: "2024-03-01", CategoryID: "early", HalfCategoryID: "half-only"},
		{Date: "2024-03-02", CategoryID: "late"},
	}
	got := SortCategories(cats, days)
	var ids []string
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	want := []string{"early", "late", "half-only", "unused"}
	if !slices.Equal(ids, want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
}

func TestCountByCategory(t *testing.T) {
	counts := CountByCategory([]Day{
		{CategoryID: "a"}, {CategoryID: "a", HalfCategoryID: "b"}, {HalfCategoryID: "b"},
	})
	if counts["a"] != 2 || counts["b"] != 0 {
		t.Fatalf("counts=%v", counts)
	}
}
