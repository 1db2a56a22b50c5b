package calendars

import (
	"slices"
	"time"

	"colorcal/internal/paint"
)

// Calendar is a painted date range owned by one user
type Calendar struct {
	ID                string    `bson:"_id" json:"id" db:"id"`
	OwnerID           string    `bson:"owner_id" json:"ownerId" db:"owner_id"`
	Title             string    `bson:"title" json:"title" db:"title"`
	StartDate         string    `bson:"start_date" json:"startDate" db:"start_date"`
	EndDate           string    `bson:"end_date" json:"endDate" db:"end_date"`
	IsPubliclyVisible bool      `bson:"is_publicly_visible" json:"isPubliclyVisible" db:"is_publicly_visible"`
	IsReadOnly        bool      `bson:"is_read_only" json:"isReadOnly" db:"is_read_only"`
	Notes             string    `bson:"notes" json:"notes" db:"notes"` // markdown
	CreatedAt         time.Time `bson:"created_at" json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updatedAt" db:"updated_at"`
}

// Category is a named, colored label scoped to one calendar
type Category struct {
	ID         string    `bson:"_id" json:"id" db:"id"`
	CalendarID string    `bson:"calendar_id" json:"calendarId" db:"calendar_id"`
	OwnerID    string    `bson:"owner_id" json:"ownerId" db:"owner_id"`
	Name       string    `bson:"name" json:"name" db:"name"`
	Color      string    `bson:"color,omitempty" json:"color,omitempty" db:"color"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt" db:"created_at"`
}

// Day is one painted date. Empty category ids mean unassigned.
type Day struct {
	ID             string `bson:"_id" json:"id" db:"id"`
	CalendarID     string `bson:"calendar_id" json:"calendarId" db:"calendar_id"`
	OwnerID        string `bson:"owner_id" json:"ownerId" db:"owner_id"`
	Date           string `bson:"date" json:"date" db:"date"`
	CategoryID     string `bson:"category_id,omitempty" json:"categoryId,omitempty" db:"category_id"`
	HalfCategoryID string `bson:"half_category_id,omitempty" json:"halfCategoryId,omitempty" db:"half_category_id"`
	Icon           string `bson:"icon,omitempty" json:"icon,omitempty" db:"icon"`
	Note           string `bson:"note,omitempty" json:"note,omitempty" db:"note"`
}

// Icons are the travel markers a day can carry.
var Icons = []string{"✈️", "🚆", "🚙", "🚍"}

// ValidIcon reports whether icon may be stored on a day ("" clears it).
func ValidIcon(icon string) bool {
	return icon == "" || slices.Contains(Icons, icon)
}

// Snapshot is everything needed to render or recolor one calendar.
// Days are sorted by date; categories are in display order with colors.
type Snapshot struct {
	Calendar   *Calendar      `json:"calendar"`
	Categories []*Category    `json:"categories"`
	Days       []*Day         `json:"days"`
	Counts     map[string]int `json:"countByCategory"`
}

// CategoryByID finds a category in the snapshot.
func (s *Snapshot) CategoryByID(id string) *Category {
	for _, c := range s.Categories {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// CreateCalendarInput is the input for creating a calendar
type CreateCalendarInput struct {
	Title     string `json:"title"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// CalendarPatch is a partial calendar update; nil fields are left alone.
type CalendarPatch struct {
	Title             *string `json:"title,omitempty"`
	StartDate         *string `json:"startDate,omitempty"`
	EndDate           *string `json:"endDate,omitempty"`
	Notes             *string `json:"notes,omitempty"`
	IsPubliclyVisible *bool   `json:"isPubliclyVisible,omitempty"`
	IsReadOnly        *bool   `json:"isReadOnly,omitempty"`
}

// Apply writes the set fields of p onto c.
func (p CalendarPatch) Apply(c *Calendar) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.StartDate != nil {
		c.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		c.EndDate = *p.EndDate
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.IsPubliclyVisible != nil {
		c.IsPubliclyVisible = *p.IsPubliclyVisible
	}
	if p.IsReadOnly != nil {
		c.IsReadOnly = *p.IsReadOnly
	}
}

// ToggleInput describes one click on a day cell
type ToggleInput struct {
	Date               string `json:"date"`
	SelectedCategoryID string `json:"selectedCategoryId"`
	IsTopLeft          bool   `json:"isTopLeft"`
}

// DayDetailsPatch edits the icon and note of a day; nil fields are left alone.
type DayDetailsPatch struct {
	Icon *string `json:"icon,omitempty"`
	Note *string `json:"note,omitempty"`
}

func toPaintDay(d *Day) paint.Day {
	return paint.Day{ID: d.ID, Date: d.Date, CategoryID: d.CategoryID, HalfCategoryID: d.HalfCategoryID}
}

func toPaintDays(days []*Day) []paint.Day {
	out := make([]paint.Day, len(days))
	for i, d := range days {
		out[i] = toPaintDay(d)
	}
	return out
}

func toPaintCategories(cats []*Category) []paint.Category {
	out := make([]paint.Category, len(cats))
	for i, c := range cats {
		out[i] = paint.Category{ID: c.ID, Name: c.Name}
	}
	return out
}
