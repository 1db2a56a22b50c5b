package calendars

import (
	"time"

	"colorcal/internal/paint"
)

// Cell is one square of the rendered week grid.
type Cell struct {
	Filler bool

	Date       string
	DayOfMonth int
	// MonthLabel is set on the first date of the calendar and on the 1st of
	// every month.
	MonthLabel string

	Day  *Day
	Top  *Category
	Half *Category

	// HideLabel suppresses the top name when the previous cell continues it.
	HideLabel bool
	// HideHalfLabel suppresses the half name when the next cell continues it.
	HideHalfLabel bool
	// NoBorderRight joins this cell to the next one in the same week row.
	NoBorderRight bool
}

// Header is a weekday column heading, tinted with the first row's top color.
type Header struct {
	Name  string
	Color string
}

// Grid is a calendar laid out in 7-column weeks starting on Sunday.
type Grid struct {
	Headers []Header
	Cells   []Cell
}

// BuildGrid lays out a snapshot for rendering. Days outside the range are
// not shown.
func BuildGrid(snap *Snapshot) Grid {
	dates, err := paint.AlignedDates(snap.Calendar.StartDate, snap.Calendar.EndDate)
	if err != nil {
		return Grid{}
	}

	byDate := make(map[string]*Day, len(snap.Days))
	for _, d := range snap.Days {
		byDate[d.Date] = d
	}
	seq := make([]*Day, len(dates))
	for i, d := range dates {
		if d != nil {
			seq[i] = byDate[paint.FormatDate(*d)]
		}
	}
	at := func(i int) *Day {
		if i < 0 || i >= len(seq) {
			return nil
		}
		return seq[i]
	}

	g := Grid{Cells: make([]Cell, len(dates))}
	for i := 0; i < 7; i++ {
		h := Header{Name: time.Weekday(i).String()[:3]}
		if d := at(i); d != nil {
			if c := snap.CategoryByID(d.CategoryID); c != nil {
				h.Color = c.Color
			}
		}
		g.Headers = append(g.Headers, h)
	}

	for i, date := range dates {
		if date == nil {
			g.Cells[i] = Cell{Filler: true}
			continue
		}
		iso := paint.FormatDate(*date)
		cell := Cell{
			Date:       iso,
			DayOfMonth: date.Day(),
			Day:        seq[i],
		}
		if iso == snap.Calendar.StartDate || date.Day() == 1 {
			cell.MonthLabel = date.Month().String()[:3]
		}

		var top, half, prevTop, nextTop string
		if d := seq[i]; d != nil {
			top, half = d.CategoryID, d.HalfCategoryID
		}
		if p := at(i - 1); p != nil {
			prevTop = p.CategoryID
		}
		if n := at(i + 1); n != nil {
			nextTop = n.CategoryID
		}

		cell.Top = snap.CategoryByID(top)
		cell.Half = snap.CategoryByID(half)
		cell.HideLabel = top != "" && prevTop == top
		cell.HideHalfLabel = half != "" && nextTop == half

		bottom := half
		if bottom == "" {
			bottom = top
		}
		cell.NoBorderRight = i%7 != 6 && bottom != "" && nextTop == bottom

		g.Cells[i] = cell
	}
	return g
}
