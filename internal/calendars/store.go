package calendars

import (
	"context"
	"errors"

	"colorcal/internal/paint"
)

var (
	ErrCalendarNotFound = errors.New("calendar not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrDayNotFound      = errors.New("day not found")
)

// Store is the persistence boundary for calendars, their categories and
// their days. Deleting a calendar removes its categories and days; deleting a
// category clears it from every day that referenced it.
type Store interface {
	EnsureIndexes(ctx context.Context) error
	Close(ctx context.Context) error

	// === Calendars ===

	CreateCalendar(ctx context.Context, c *Calendar) error
	GetCalendar(ctx context.Context, id string) (*Calendar, error)
	ListCalendars(ctx context.Context, ownerID string) ([]*Calendar, error)
	UpdateCalendar(ctx context.Context, id string, p CalendarPatch) error
	TouchCalendar(ctx context.Context, id string) error
	DeleteCalendar(ctx context.Context, id string) error

	// === Categories ===

	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context, calendarID string) ([]*Category, error)
	RenameCategory(ctx context.Context, id, name string) error
	DeleteCategory(ctx context.Context, id string) error
	SetCategoryColors(ctx context.Context, colors []paint.ColorAssignment) error

	// === Days ===

	ListDays(ctx context.Context, calendarID string) ([]*Day, error)
	GetDay(ctx context.Context, id string) (*Day, error)
	GetDayByDate(ctx context.Context, calendarID, date string) (*Day, error)
	// ApplyDayWrite persists w: a create is linked to calendarID and owned by
	// ownerID, an update only touches the fields w sets. It returns the
	// stored day.
	ApplyDayWrite(ctx context.Context, calendarID, ownerID string, w paint.DayWrite) (*Day, error)
	UpdateDayDetails(ctx context.Context, id string, p DayDetailsPatch) error

	// SweepOrphans deletes categories and days whose calendar no longer
	// exists and reports how many records went.
	SweepOrphans(ctx context.Context) (int64, error)
}
