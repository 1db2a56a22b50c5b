package models

import "time"

// CalendarView represents a calendar for template rendering
type CalendarView struct {
	ID                string
	Title             string
	StartDate         string
	EndDate           string
	IsPubliclyVisible bool
	IsReadOnly        bool
	ShareURL          string
	NotesHTML         string // rendered markdown
	UpdatedAt         time.Time
}

// CategoryView represents a category row in the legend
type CategoryView struct {
	ID    string
	Name  string
	Color string
	Count int
}

// CellView is one square of the week grid
type CellView struct {
	Filler        bool
	Date          string
	DayOfMonth    int
	MonthLabel    string
	DayID         string
	TopName       string
	TopColor      string
	HalfName      string
	HalfColor     string
	Icon          string
	Note          string
	HideLabel     bool
	HideHalfLabel bool
	NoBorderRight bool
}

// HeaderView is a weekday column heading
type HeaderView struct {
	Name  string
	Color string
}

// GridView is the whole week grid of one calendar
type GridView struct {
	CalendarID string
	Editable   bool
	Headers    []HeaderView
	Cells      []CellView
}

// CalendarPageView bundles everything the calendar pages render
type CalendarPageView struct {
	Calendar   CalendarView
	Categories []CategoryView
	Grid       GridView
}
