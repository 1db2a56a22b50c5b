package calendars

import (
	"context"
	"errors"
	"testing"
	"time"

	"colorcal/internal/db"
	"colorcal/internal/paint"
)

const (
	alice = "alice"
	bob   = "bob"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	sqlDB, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	store, err := NewSQLiteStore(sqlDB)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close(context.Background()) })
	return store
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(newTestStore(t))
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

// seedTrip creates alice's calendar for 2024-03-01..2024-03-14 with the
// given categories.
func seedTrip(t *testing.T, svc *Service, names ...string) (*Calendar, []*Category) {
	t.Helper()
	ctx := context.Background()
	cal, err := svc.CreateCalendar(ctx, alice, CreateCalendarInput{
		Title:     "Trip",
		StartDate: "2024-03-01",
		EndDate:   "2024-03-14",
	})
	if err != nil {
		t.Fatalf("CreateCalendar: %v", err)
	}
	var cats []*Category
	for _, n := range names {
		c, err := svc.AddCategory(ctx, alice, cal.ID, n)
		if err != nil {
			t.Fatalf("AddCategory(%s): %v", n, err)
		}
		cats = append(cats, c)
	}
	return cal, cats
}

func paintDay(t *testing.T, svc *Service, calID, date, catID string, topLeft bool) *Day {
	t.Helper()
	d, err := svc.ToggleDay(context.Background(), alice, calID, ToggleInput{
		Date:               date,
		SelectedCategoryID: catID,
		IsTopLeft:          topLeft,
	})
	if err != nil {
		t.Fatalf("ToggleDay(%s, %s): %v", date, catID, err)
	}
	return d
}

func TestCreateCalendarDefaults(t *testing.T) {
	svc := newTestService(t)
	cal, err := svc.CreateCalendar(context.Background(), alice, CreateCalendarInput{Title: "  Summer  "})
	if err != nil {
		t.Fatalf("CreateCalendar: %v", err)
	}
	if cal.Title != "Summer" {
		t.Fatalf("Title=%q, want trimmed", cal.Title)
	}
	if cal.StartDate != "2024-03-01" || cal.EndDate != "2024-03-08" {
		t.Fatalf("range=%s..%s, want 2024-03-01..2024-03-08", cal.StartDate, cal.EndDate)
	}
	if cal.ID == "" {
		t.Fatal("expected an id")
	}
}

func TestCreateCalendarValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var verr *ValidationError
	if _, err := svc.CreateCalendar(ctx, "", CreateCalendarInput{}); !errors.As(err, &verr) {
		t.Fatalf("missing owner err=%v, want ValidationError", err)
	}
	if _, err := svc.CreateCalendar(ctx, alice, CreateCalendarInput{StartDate: "March 1"}); !errors.As(err, &verr) {
		t.Fatalf("bad date err=%v, want ValidationError", err)
	}
}

func TestToggleFlow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	cal, cats := seedTrip(t, svc, "Paris", "Rome")
	paris, rome := cats[0].ID, cats[1].ID

	// Paint an empty day.
	d := paintDay(t, svc, cal.ID, "2024-03-02", paris, true)
	if d.CategoryID != paris || d.HalfCategoryID != "" {
		t.Fatalf("after paint: %+v", d)
	}

	// Top-left click with a different category pushes Paris into the half.
	d = paintDay(t, svc, cal.ID, "2024-03-02", rome, true)
	if d.CategoryID != rome || d.HalfCategoryID != paris {
		t.Fatalf("after split: top=%s half=%s, want %s/%s", d.CategoryID, d.HalfCategoryID, rome, paris)
	}

	// Clicking with the half category promotes it and clears the half.
	d = paintDay(t, svc, cal.ID, "2024-03-02", paris, false)
	if d.CategoryID != paris || d.HalfCategoryID != "" {
		t.Fatalf("after promote: top=%s half=%s", d.CategoryID, d.HalfCategoryID)
	}

	// Same category again erases.
	d = paintDay(t, svc, cal.ID, "2024-03-02", paris, true)
	if d.CategoryID != "" || d.HalfCategoryID != "" {
		t.Fatalf("after erase: %+v", d)
	}

	// The record survives the erase; the next click repaints it.
	again := paintDay(t, svc, cal.ID, "2024-03-02", paris, true)
	if again.ID != d.ID || again.CategoryID != paris {
		t.Fatalf("repaint=%+v, want same record painted %s", again, paris)
	}

	days, err := svc.store.ListDays(ctx, cal.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 1 {
		t.Fatalf("len(days)=%d, want 1", len(days))
	}
}

func TestToggleBottomRightAddsHalf(t *testing.T) {
	svc := newTestService(t)
	cal, cats := seedTrip(t, svc, "Paris", "Rome")

	paintDay(t, svc, cal.ID, "2024-03-03", cats[0].ID, true)
	d := paintDay(t, svc, cal.ID, "2024-03-03", cats[1].ID, false)
	if d.CategoryID != cats[0].ID || d.HalfCategoryID != cats[1].ID {
		t.Fatalf("top=%s half=%s, want Paris/Rome", d.CategoryID, d.HalfCategoryID)
	}
}

func TestToggleRejects(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	cal, cats := seedTrip(t, svc, "Paris")
	other, otherCats := seedTrip(t, svc, "Oslo")
	_ = other

	var verr *ValidationError
	tests := []struct {
		name  string
		input ToggleInput
	}{
		{"before range", ToggleInput{Date: "2024-02-29", SelectedCategoryID: cats[0].ID}},
		{"after range", ToggleInput{Date: "2024-03-15", SelectedCategoryID: cats[0].ID}},
		{"bad date", ToggleInput{Date: "tomorrow", SelectedCategoryID: cats[0].ID}},
		{"unknown category", ToggleInput{Date: "2024-03-02", SelectedCategoryID: "nope"}},
		{"category of another calendar", ToggleInput{Date: "2024-03-02", SelectedCategoryID: otherCats[0].ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ToggleDay(ctx, alice, cal.ID, tt.input)
			if !errors.As(err, &verr) {
				t.Fatalf("err=%v, want ValidationError", err)
			}
		})
	}
}

func TestToggleOwnership(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	cal, cats := seedTrip(t, svc, "Paris")
	in := ToggleInput{Date: "2024-03-02", SelectedCategoryID: cats[0].ID}

	if _, err := svc.ToggleDay(ctx, bob, cal.ID, in); !errors.Is(err, ErrCalendarNotFound) {
		t.Fatalf("hidden calendar err=%v, want not found", err)
	}

	public := true
	if _, err := svc.UpdateCalendar(ctx, alice, cal.ID, CalendarPatch{IsPubliclyVisible: &public}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ToggleDay(ctx, bob, cal.ID, in); !errors.Is(err, ErrForbidden) {
		t.Fatalf("public calendar err=%v, want ErrForbidden", err)
	}

	ro := true
	if _, err := svc.UpdateCalendar(ctx, alice, cal.ID, CalendarPatch{IsReadOnly: &ro}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ToggleDay(ctx, alice, cal.ID, in); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("read-only err=%v, want ErrReadOnly", err)
	}
}

func TestGetCalendarVisibility(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	cal, _ := seedTrip(t, svc)

	if _, err := svc.GetCalendar(ctx, bob, cal.ID); !errors.Is(err, ErrCalendarNotFound) {
		t.Fatalf("err=%v, want not found for hidden calendar", err)
	}
	public := true
	if _, err := svc.UpdateCalendar(ctx, alice, cal.ID, CalendarPatch{IsPubliclyVisible: &public}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetCalendar(ctx, bob, cal.ID); err != nil {
		t.Fatalf("public calendar: %v", err)
	}
}

func TestRecolorKeepsNeighborsApart(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	cal, cats := seedTrip(t, svc, "Paris", "Rome", "Oslo")

	// Paris, Rome, Oslo on consecutive days: neighbors must differ.
	paintDay(t, svc, cal.ID, "2024-03-02", cats[0].ID, true)
	paintDay(t, svc, cal.ID, "2024-03-03", cats[1].ID, true)
	paintDay(t, svc, cal.ID, "2024-03-04", cats[2].ID, true)

	snap, err := svc.GetSnapshot(ctx, alice, cal.ID)
	if err != nil {
		t.Fatal(err)
	}
	color := map[string]string{}
	for _, c := range snap.Categories {
		if c.Color == "" {
			t.Fatalf("category %s has no color", c.Name)
		}
		color[c.ID] = c.Color
	}
	if color[cats[0].ID] == color[cats[1].ID] || color[cats[1].ID] == color[cats[2].ID] {
		t.Fatalf("neighbors share a color: %v", color)
	}
	if color[cats[0].ID] != paint.Palette[0] {
		t.Fatalf("first category=%s, want %s", color[cats[0].ID], paint.Palette[0])
	}
	if snap.Counts[cats[1].ID] != 1 {
		t.Fatalf("count(Rome)=%d, want 1", snap.Counts[cats[1].ID])
	}
}

func TestSnapshotOrdersCategoriesByFirstUse(t *testing.T) {
	svc := newTestService(t)
	cal, cats := seedTrip(t, svc, "Paris", "Rome", "Unused")

	paintDay(t, svc, cal.ID, "2024-03-02", cats[1].ID, true)
	paintDay(t, svc, cal.ID, "2024-03-05", cats[0].ID, true)

	snap, err := svc.GetSnapshot(context.Background(), alice, cal.ID)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, c := range snap.Categories {
		got = append(got, c.Name)
	}
	want := []string{"Rome", "Paris", "Unused"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order=%v, want %v", got, want)
		}
	}
}

func TestRotateCategoryColor(t *testing.T) {
	svc := newTestService(t)
	_, cats := seedTrip(t, svc, "Paris")
	if cats[0].Color != paint.Palette[0] {
		t.Fatalf("initial color=%s, want %s", cats[0].Color, paint.Palette[0])
	}

	c, err := svc.RotateCategoryColor(context.Background(), alice, cats[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if c.Color != paint.Palette[1] {
		t.Fatalf("rotated=%s, want %s", c.Color, paint.Palette[1])
	}
	stored, _ := svc.store.GetCategory(context.Background(), c.ID)
	if stored.Color != paint.Palette[1] {
		t.Fatalf("stored=%s, want %s", stored.Color, paint.Palette[1])
	}
}

func TestDeleteCategoryClearsDays(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	cal, cats := seedTrip(t, svc, "Paris", "Rome")

	paintDay(t, svc, cal.ID, "2024-03-02", cats[0].ID, true)
	paintDay(t, svc, cal.ID, "2024-03-02", cats[1].ID, false)

	if err := svc.DeleteCategory(ctx, alice, cats[1].ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	d, err := svc.store.GetDayByDate(ctx, cal.ID, "2024-03-02")
	if err != nil {
		t.Fatal(err)
	}
	if d.CategoryID != cats[0].ID || d.HalfCategoryID != "" {
		t.Fatalf("day=%+v, want Rome cleared from half", d)
	}
	if _, err := svc.store.GetCategory(ctx, cats[1].ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("err=%v, want category gone", err)
	}
}

func TestDeleteCalendarCascades(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	cal, cats := seedTrip(t, svc, "Paris")
	d := paintDay(t, svc, cal.ID, "2024-03-02", cats[0].ID, true)

	if err := svc.DeleteCalendar(ctx, bob, cal.ID); !errors.Is(err, ErrCalendarNotFound) {
		t.Fatalf("non-owner delete err=%v, want not found", err)
	}
	if err := svc.DeleteCalendar(ctx, alice, cal.ID); err != nil {
		t.Fatalf("DeleteCalendar: %v", err)
	}
	if _, err := svc.store.GetCategory(ctx, cats[0].ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("category err=%v, want not found", err)
	}
	if _, err := svc.store.GetDay(ctx, d.ID); !errors.Is(err, ErrDayNotFound) {
		t.Fatalf("day err=%v, want not found", err)
	}
}

func TestUpdateDayDetails(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	cal, cats := seedTrip(t, svc, "Paris")
	d := paintDay(t, svc, cal.ID, "2024-03-02", cats[0].ID, true)

	icon, note := "🚆", "Night train"
	got, err := svc.UpdateDayDetails(ctx, alice, d.ID, DayDetailsPatch{Icon: &icon, Note: &note})
	if err != nil {
		t.Fatalf("UpdateDayDetails: %v", err)
	}
	if got.Icon != icon || got.Note != note || got.CategoryID != cats[0].ID {
		t.Fatalf("day=%+v", got)
	}

	bad := "🚀"
	var verr *ValidationError
	if _, err := svc.UpdateDayDetails(ctx, alice, d.ID, DayDetailsPatch{Icon: &bad}); !errors.As(err, &verr) {
		t.Fatalf("err=%v, want ValidationError", err)
	}
	if _, err := svc.UpdateDayDetails(ctx, bob, d.ID, DayDetailsPatch{Note: &note}); !errors.Is(err, ErrCalendarNotFound) {
		t.Fatalf("err=%v, want not found for other owner", err)
	}
}

func TestSweepOrphansKeepsErasedDays(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store)
	ctx := context.Background()
	cal, cats := seedTrip(t, svc, "Paris")

	erased := paintDay(t, svc, cal.ID, "2024-03-02", cats[0].ID, true)
	paintDay(t, svc, cal.ID, "2024-03-02", cats[0].ID, true)
	writeSQLiteOrphans(t, store, "gone")

	n, err := svc.SweepOrphans(ctx)
	if err != nil {
		t.Fatalf("SweepOrphans: %v", err)
	}
	if n != 2 {
		t.Fatalf("swept=%d, want 2", n)
	}

	note := "still here"
	d, err := svc.UpdateDayDetails(ctx, alice, erased.ID, DayDetailsPatch{Note: &note})
	if err != nil {
		t.Fatalf("UpdateDayDetails on erased day: %v", err)
	}
	if d.Note != note || d.CategoryID != "" {
		t.Fatalf("day=%+v", d)
	}
}

func TestSnapshotFillsMissingColorAroundStoredOnes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	cal, cats := seedTrip(t, svc, "Paris", "Rome")
	paris, rome := cats[0], cats[1]
	paintDay(t, svc, cal.ID, "2024-03-02", paris.ID, true)
	paintDay(t, svc, cal.ID, "2024-03-03", rome.ID, true)

	// Paris keeps a rotated color, Rome has none stored.
	if err := svc.store.SetCategoryColors(ctx, []paint.ColorAssignment{
		{CategoryID: paris.ID, Color: paint.Palette[1]},
		{CategoryID: rome.ID, Color: ""},
	}); err != nil {
		t.Fatal(err)
	}

	snap, err := svc.GetSnapshot(ctx, alice, cal.ID)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	got := map[string]string{}
	for _, c := range snap.Categories {
		got[c.ID] = c.Color
	}
	if got[paris.ID] != paint.Palette[1] {
		t.Fatalf("paris=%s, want stored %s", got[paris.ID], paint.Palette[1])
	}
	if got[rome.ID] != paint.Palette[0] {
		t.Fatalf("rome=%s, want %s next to paris", got[rome.ID], paint.Palette[0])
	}
}

func TestUpdateCalendarRangeRecolors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	cal, cats := seedTrip(t, svc, "Paris", "Rome")

	paintDay(t, svc, cal.ID, "2024-03-10", cats[0].ID, true)
	paintDay(t, svc, cal.ID, "2024-03-11", cats[1].ID, true)

	// Shrinking the range hides both days, so colors fall back to the
	// cyclic default.
	end := "2024-03-05"
	updated, err := svc.UpdateCalendar(ctx, alice, cal.ID, CalendarPatch{EndDate: &end})
	if err != nil {
		t.Fatalf("UpdateCalendar: %v", err)
	}
	if updated.EndDate != end {
		t.Fatalf("EndDate=%s, want %s", updated.EndDate, end)
	}

	bad := "soon"
	var verr *ValidationError
	if _, err := svc.UpdateCalendar(ctx, alice, cal.ID, CalendarPatch{StartDate: &bad}); !errors.As(err, &verr) {
		t.Fatalf("err=%v, want ValidationError", err)
	}
}

func TestPublicSnapshot(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	cal, _ := seedTrip(t, svc, "Paris")
	slug := ShareSlug(cal.ID)

	if _, err := svc.PublicSnapshot(ctx, slug); !errors.Is(err, ErrCalendarNotFound) {
		t.Fatalf("hidden err=%v, want not found", err)
	}
	public := true
	if _, err := svc.UpdateCalendar(ctx, alice, cal.ID, CalendarPatch{IsPubliclyVisible: &public}); err != nil {
		t.Fatal(err)
	}
	snap, err := svc.PublicSnapshot(ctx, slug)
	if err != nil {
		t.Fatalf("PublicSnapshot: %v", err)
	}
	if snap.Calendar.ID != cal.ID || len(snap.Categories) != 1 {
		t.Fatalf("snap=%+v", snap)
	}
	if _, err := svc.PublicSnapshot(ctx, "!!!"); !errors.Is(err, ErrCalendarNotFound) {
		t.Fatalf("garbage slug err=%v, want not found", err)
	}
}

func TestListCalendarsMostRecentFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	first, cats := seedTrip(t, svc, "Paris")
	second, _ := seedTrip(t, svc)
	if _, err := svc.CreateCalendar(ctx, bob, CreateCalendarInput{Title: "Bob's"}); err != nil {
		t.Fatal(err)
	}

	// Painting touches the first calendar.
	paintDay(t, svc, first.ID, "2024-03-02", cats[0].ID, true)

	cals, err := svc.ListCalendars(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if len(cals) != 2 {
		t.Fatalf("len=%d, want 2", len(cals))
	}
	if cals[0].ID != first.ID || cals[1].ID != second.ID {
		t.Fatalf("order=%s,%s want touched calendar first", cals[0].ID, cals[1].ID)
	}
}

func TestCategoryOutline(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	cal, cats := seedTrip(t, svc, "Italy - Rome")
	d := paintDay(t, svc, cal.ID, "2024-03-04", cats[0].ID, true)
	note := "Colosseum"
	if _, err := svc.UpdateDayDetails(ctx, alice, d.ID, DayDetailsPatch{Note: &note}); err != nil {
		t.Fatal(err)
	}

	out, err := svc.CategoryOutline(ctx, alice, cats[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	want := "<h2>Rome</h2>\n<br />\n<h3>Mar 4 - Mon</h3>\n<ul>\n<li>Colosseum</li>\n</ul>\n<br />\n"
	if out != want {
		t.Fatalf("outline=%q, want %q", out, want)
	}
}
