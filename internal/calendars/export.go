package calendars

import (
	"fmt"
	"html"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"colorcal/internal/paint"
)

// Stay is a run of consecutive dates on which a category appears, either as
// top or as half category.
type Stay struct {
	Category *Category
	First    time.Time
	Last     time.Time
}

// Nights is the number of days the stay spans minus one.
func (s Stay) Nights() int {
	return int(s.Last.Sub(s.First).Hours() / 24)
}

// Stays groups the snapshot's days into per-category runs, ordered by first
// date and then by category order. Days with unknown dates or categories are
// skipped.
func Stays(snap *Snapshot) []Stay {
	var stays []Stay
	open := make(map[string]int)

	for _, d := range snap.Days {
		date, err := paint.ParseDate(d.Date)
		if err != nil {
			continue
		}
		for _, id := range []string{d.CategoryID, d.HalfCategoryID} {
			cat := snap.CategoryByID(id)
			if cat == nil {
				continue
			}
			if i, ok := open[id]; ok && stays[i].Last.AddDate(0, 0, 1).Equal(date) {
				stays[i].Last = date
				continue
			} else if ok && stays[i].Last.Equal(date) {
				continue
			}
			open[id] = len(stays)
			stays = append(stays, Stay{Category: cat, First: date, Last: date})
		}
	}
	return stays
}

// ExportICS renders a calendar as an iCalendar feed with one all-day event
// per stay.
func ExportICS(snap *Snapshot, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//colorcal//Color Calendar//EN")
	cal.SetXWRCalName(snap.Calendar.Title)
	if snap.Calendar.Notes != "" {
		cal.SetXWRCalDesc(snap.Calendar.Notes)
	}

	for _, st := range Stays(snap) {
		uid := fmt.Sprintf("%s-%s-%s@colorcal", snap.Calendar.ID, st.Category.ID, paint.FormatDate(st.First))
		ev := cal.AddEvent(uid)
		ev.SetDtStampTime(now.UTC())
		ev.SetAllDayStartAt(st.First)
		ev.SetAllDayEndAt(st.Last.AddDate(0, 0, 1))
		name := st.Category.Name
		if name == "" {
			name = "Untitled"
		}
		ev.SetSummary(name)
		if st.Category.Color != "" {
			ev.SetProperty(ics.ComponentPropertyColor, st.Category.Color)
		}

		var notes []string
		for _, d := range snap.Days {
			if d.Note == "" && d.Icon == "" {
				continue
			}
			if d.Date < paint.FormatDate(st.First) || d.Date > paint.FormatDate(st.Last) {
				continue
			}
			notes = append(notes, strings.TrimSpace(d.Date+" "+d.Icon+" "+d.Note))
		}
		if len(notes) > 0 {
			ev.SetDescription(strings.Join(notes, "\n"))
		}
	}
	return cal.Serialize()
}

// CategoryOutlineHTML is a printable outline of the days a category is the
// visible bottom color of: a heading with the last " - " part of its name
// and one entry per day.
func CategoryOutlineHTML(snap *Snapshot, cat *Category) string {
	parts := strings.Split(cat.Name, " - ")
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2>\n<br />\n", html.EscapeString(parts[len(parts)-1]))
	for _, d := range snap.Days {
		if toPaintDay(d).Bottom() != cat.ID {
			continue
		}
		date, err := paint.ParseDate(d.Date)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "<h3>%s %d - %s</h3>\n<ul>\n<li>%s</li>\n</ul>\n<br />\n",
			date.Month().String()[:3], date.Day(), date.Weekday().String()[:3], html.EscapeString(d.Note))
	}
	return b.String()
}
