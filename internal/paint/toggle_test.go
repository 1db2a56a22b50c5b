package paint

import "testing"

func TestToggleCreatesMissingDay(t *testing.T) {
	w := Toggle(nil, "C", true, "2024-03-01")
	if w.Op != OpCreate {
		t.Fatalf("op=%v, want create", w.Op)
	}
	got := w.Apply(Day{})
	want := Day{Date: "2024-03-01", CategoryID: "C"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if !w.HalfCategoryID.Set || w.HalfCategoryID.ID != "" {
		t.Fatalf("half field=%+v, want explicit null", w.HalfCategoryID)
	}
}

func TestToggleCaseTable(t *testing.T) {
	const sel = "S"
	tops := map[match]string{empty: "", same: sel, different: "A"}
	halves := map[match]string{empty: "", same: sel, different: "B"}

	type result struct{ top, half string }
	tests := []struct {
		top, half  match
		topLeft    result
		notTopLeft result
	}{
		{same, same, result{"", ""}, result{"", ""}},
		{same, empty, result{"", ""}, result{"", ""}},
		{empty, same, result{"", ""}, result{"", ""}},
		{empty, empty, result{sel, ""}, result{sel, ""}},
		{empty, different, result{sel, "B"}, result{sel, "B"}},
		{same, different, result{sel, ""}, result{sel, ""}},
		{different, same, result{sel, ""}, result{sel, ""}},
		{different, empty, result{sel, "A"}, result{"A", sel}},
		{different, different, result{sel, "B"}, result{"A", sel}},
	}

	seen := 0
	for _, tt := range tests {
		for _, isTopLeft := range []bool{true, false} {
			name := tt.top.String() + "/" + tt.half.String()
			if isTopLeft {
				name += "/top-left"
			}
			t.Run(name, func(t *testing.T) {
				day := Day{ID: "d1", Date: "2024-03-01", CategoryID: tops[tt.top], HalfCategoryID: halves[tt.half]}
				w := Toggle(&day, sel, isTopLeft, day.Date)
				if w.Op != OpUpdate || w.DayID != "d1" {
					t.Fatalf("write=%+v, want update of d1", w)
				}
				want := tt.notTopLeft
				if isTopLeft {
					want = tt.topLeft
				}
				got := w.Apply(day)
				if got.CategoryID != want.top || got.HalfCategoryID != want.half {
					t.Fatalf("got top=%q half=%q, want top=%q half=%q", got.CategoryID, got.HalfCategoryID, want.top, want.half)
				}
			})
			seen++
		}
	}
	if seen != 18 {
		t.Fatalf("covered %d combinations, want 18", seen)
	}
}

func TestToggleClickSideOnlyMattersForDifferentTop(t *testing.T) {
	for _, day := range []Day{
		{ID: "d", CategoryID: "S"},
		{ID: "d", CategoryID: "S", HalfCategoryID: "B"},
		{ID: "d", HalfCategoryID: "B"},
		{ID: "d"},
		{ID: "d", CategoryID: "A", HalfCategoryID: "S"},
	} {
		a := Toggle(&day, "S", true, "")
		b := Toggle(&day, "S", false, "")
		if a != b {
			t.Fatalf("day %+v: top-left %+v differs from other side %+v", day, a, b)
		}
	}
}

func TestTogglePartialWrites(t *testing.T) {
	day := Day{ID: "d", CategoryID: "A"}
	w := Toggle(&day, "B", false, "")
	if w.CategoryID.Set {
		t.Fatalf("top should be untouched, got %+v", w.CategoryID)
	}
	if w.HalfCategoryID != To("B") {
		t.Fatalf("half=%+v, want B", w.HalfCategoryID)
	}

	day = Day{ID: "d", CategoryID: "S", HalfCategoryID: "B"}
	w = Toggle(&day, "S", true, "")
	if w.CategoryID.Set {
		t.Fatalf("top should be untouched, got %+v", w.CategoryID)
	}
	if w.HalfCategoryID != To("") {
		t.Fatalf("half=%+v, want cleared", w.HalfCategoryID)
	}
}

func TestTogglePushesTopIntoHalf(t *testing.T) {
	day := Day{ID: "d", CategoryID: "A"}
	got := Toggle(&day, "B", true, "").Apply(day)
	if got.CategoryID != "B" || got.HalfCategoryID != "A" {
		t.Fatalf("got %+v, want top B half A", got)
	}
}

func TestToggleEraseThenRepaint(t *testing.T) {
	day := Day{ID: "d", CategoryID: "A"}
	w := Toggle(&day, "A", false, "")
	if !w.Clears(day) {
		t.Fatalf("first click should clear, got %+v", w.Apply(day))
	}
	if again := Toggle(&day, "A", true, ""); again != w {
		t.Fatalf("same input gave %+v then %+v", w, again)
	}

	cleared := w.Apply(day)
	w2 := Toggle(&cleared, "A", false, "")
	if w2.Op != OpUpdate {
		t.Fatalf("op=%v, want update of the kept record", w2.Op)
	}
	if got := w2.Apply(cleared); got.CategoryID != "A" || got.HalfCategoryID != "" {
		t.Fatalf("second click got %+v, want top A", got)
	}
}

func TestToggleEraseWithNoSelection(t *testing.T) {
	day := Day{ID: "d"}
	if got := Toggle(&day, "", true, "").Apply(day); got.CategoryID != "" || got.HalfCategoryID != "" {
		t.Fatalf("got %+v, want empty day", got)
	}
	fresh := Toggle(nil, "", true, "2024-01-01")
	if !fresh.Clears(Day{}) {
		t.Fatalf("create with no selection should be empty, got %+v", fresh)
	}
}

func TestForeignCategoryIsDifferent(t *testing.T) {
	day := Day{ID: "d", CategoryID: "A"}
	got := Toggle(&day, "not-in-calendar", true, "").Apply(day)
	if got.CategoryID != "not-in-calendar" || got.HalfCategoryID != "A" {
		t.Fatalf("got %+v", got)
	}
}
