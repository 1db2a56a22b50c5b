package calendars

import "colorcal/internal/paint"

// ExampleSnapshot is a three-week UK trip rendered read-only on the home
// page. It is never stored.
func ExampleSnapshot() *Snapshot {
	cal := &Calendar{ID: "example", Title: "UK Travels", StartDate: "2023-05-01", EndDate: "2023-05-22"}

	cats := []*Category{
		{ID: "travel", Name: "Travel", Color: "#8da0cb"},
		{ID: "london", Name: "London", Color: "#66c2a5"},
		{ID: "york", Name: "York", Color: "#fc8d62"},
		{ID: "edinburgh", Name: "Edinburgh", Color: "#a6d854"},
		{ID: "leeds", Name: "Leeds", Color: "#ffd92f"},
		{ID: "inverness", Name: "Inverness", Color: "#e78ac3"},
		{ID: "glasgow", Name: "Glasgow", Color: "#ffd92f"},
		{ID: "liverpool", Name: "Liverpool", Color: "#fc8d62"},
	}

	// On travel days the half holds the next stop.
	stops := []struct{ date, top, half string }{
		{"2023-05-01", "travel", "london"},
		{"2023-05-02", "london", ""},
		{"2023-05-03", "london", ""},
		{"2023-05-04", "london", ""},
		{"2023-05-05", "london", "york"},
		{"2023-05-06", "york", ""},
		{"2023-05-07", "york", ""},
		{"2023-05-08", "york", "leeds"},
		{"2023-05-09", "leeds", "edinburgh"},
		{"2023-05-10", "edinburgh", ""},
		{"2023-05-11", "edinburgh", ""},
		{"2023-05-12", "edinburgh", ""},
		{"2023-05-13", "edinburgh", "inverness"},
		{"2023-05-14", "inverness", ""},
		{"2023-05-15", "inverness", ""},
		{"2023-05-16", "inverness", "glasgow"},
		{"2023-05-17", "glasgow", ""},
		{"2023-05-18", "glasgow", "liverpool"},
		{"2023-05-19", "liverpool", ""},
		{"2023-05-20", "liverpool", ""},
		{"2023-05-21", "liverpool", "london"},
		{"2023-05-22", "london", "travel"},
	}
	days := make([]*Day, len(stops))
	for i, s := range stops {
		days[i] = &Day{CalendarID: cal.ID, Date: s.date, CategoryID: s.top, HalfCategoryID: s.half}
	}

	return &Snapshot{
		Calendar:   cal,
		Categories: cats,
		Days:       days,
		Counts:     paint.CountByCategory(toPaintDays(days)),
	}
}
