package paint

// Day is the slice of a day record that painting cares about.
// An empty id means no category.
type Day struct {
	ID             string
	Date           string
	CategoryID     string
	HalfCategoryID string
}

// Category is the slice of a category record needed for coloring.
type Category struct {
	ID   string
	Name string
}

// Op tells the caller how to persist a DayWrite.
type Op int

const (
	// OpCreate inserts a new day linked to the calendar.
	OpCreate Op = iota
	// OpUpdate patches the fields of an existing day.
	OpUpdate
)

func (o Op) String() string {
	if o == OpCreate {
		return "create"
	}
	return "update"
}

// Field is an optional write to a category reference.
// Set=false leaves the stored value alone; Set=true with an empty ID clears it.
type Field struct {
	Set bool
	ID  string
}

// To returns a field that writes id ("" clears).
func To(id string) Field { return Field{Set: true, ID: id} }

// DayWrite is the write intent produced by a click on a day cell.
type DayWrite struct {
	Op             Op
	DayID          string
	Date           string
	CategoryID     Field
	HalfCategoryID Field
}

// Apply projects w onto d and returns the resulting day.
func (w DayWrite) Apply(d Day) Day {
	if w.Op == OpCreate {
		d = Day{Date: w.Date}
	}
	if w.CategoryID.Set {
		d.CategoryID = w.CategoryID.ID
	}
	if w.HalfCategoryID.Set {
		d.HalfCategoryID = w.HalfCategoryID.ID
	}
	return d
}

// Clears reports whether the write leaves the day with no category at all
// when applied to d.
func (w DayWrite) Clears(d Day) bool {
	out := w.Apply(d)
	return out.CategoryID == "" && out.HalfCategoryID == ""
}

type match int

const (
	empty match = iota
	same
	different
)

func (m match) String() string {
	switch m {
	case empty:
		return "empty"
	case same:
		return "same"
	default:
		return "different"
	}
}

func classify(id, selected string) match {
	switch {
	case id == "":
		return empty
	case id == selected:
		return same
	default:
		return different
	}
}

// Toggle computes the next category assignment for the day at date when its
// cell is clicked with selected armed. existing is nil when the date has no
// record yet. isTopLeft is the diagonal half of the cell that was clicked; it
// only matters when the day already holds a different top category.
func Toggle(existing *Day, selected string, isTopLeft bool, date string) DayWrite {
	if existing == nil {
		return DayWrite{
			Op:             OpCreate,
			Date:           date,
			CategoryID:     To(selected),
			HalfCategoryID: To(""),
		}
	}

	w := DayWrite{Op: OpUpdate, DayID: existing.ID, Date: existing.Date}
	top := classify(existing.CategoryID, selected)
	half := classify(existing.HalfCategoryID, selected)

	switch {
	case top == same && half != different, top == empty && half == same:
		w.CategoryID = To("")
		w.HalfCategoryID = To("")
	case top == empty:
		w.CategoryID = To(selected)
	case top == same:
		w.HalfCategoryID = To("")
	case half == same:
		w.CategoryID = To(selected)
		w.HalfCategoryID = To("")
	case isTopLeft:
		w.CategoryID = To(selected)
		if half == empty {
			w.HalfCategoryID = To(existing.CategoryID)
		} else {
			w.HalfCategoryID = To(existing.HalfCategoryID)
		}
	default:
		w.HalfCategoryID = To(selected)
	}
	return w
}
