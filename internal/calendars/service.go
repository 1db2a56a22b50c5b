package calendars

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"colorcal/internal/paint"
)

// DefaultSpan is how far past its start a new calendar runs when no end
// date is given.
const DefaultSpan = 7 * 24 * time.Hour

type Service struct {
	store Store
	md    goldmark.Markdown
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		md:    goldmark.New(),
		now:   time.Now,
	}
}

// --- Calendars ---

// CreateCalendar creates a calendar for owner. Missing dates default to
// today through today+7.
func (s *Service) CreateCalendar(ctx context.Context, owner string, input CreateCalendarInput) (*Calendar, error) {
	if owner == "" {
		return nil, invalid("owner", "is required")
	}
	today := s.now().UTC()
	if input.StartDate == "" {
		input.StartDate = paint.FormatDate(today)
	}
	if input.EndDate == "" {
		start, err := paint.ParseDate(input.StartDate)
		if err != nil {
			return nil, invalid("startDate", err.Error())
		}
		input.EndDate = paint.FormatDate(start.Add(DefaultSpan))
	}
	if err := validateRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	cal := &Calendar{
		OwnerID:   owner,
		Title:     strings.TrimSpace(input.Title),
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if err := s.store.CreateCalendar(ctx, cal); err != nil {
		return nil, err
	}
	return cal, nil
}

// ListCalendars returns the owner's calendars, most recently updated first
func (s *Service) ListCalendars(ctx context.Context, owner string) ([]*Calendar, error) {
	return s.store.ListCalendars(ctx, owner)
}

// GetCalendar returns a calendar the caller may view: its owner, or anyone
// when it is publicly visible. Hidden calendars look missing.
func (s *Service) GetCalendar(ctx context.Context, owner, id string) (*Calendar, error) {
	cal, err := s.store.GetCalendar(ctx, id)
	if err != nil {
		return nil, err
	}
	if cal.OwnerID != owner && !cal.IsPubliclyVisible {
		return nil, ErrCalendarNotFound
	}
	return cal, nil
}

// GetSnapshot loads a viewable calendar with its days and colored categories.
func (s *Service) GetSnapshot(ctx context.Context, owner, id string) (*Snapshot, error) {
	cal, err := s.GetCalendar(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, cal)
}

// UpdateCalendar applies a partial update to an owned calendar.
func (s *Service) UpdateCalendar(ctx context.Context, owner, id string, p CalendarPatch) (*Calendar, error) {
	cal, err := s.ownedCalendar(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		p.Title = &t
	}

	next := *cal
	p.Apply(&next)
	if err := validateRange(next.StartDate, next.EndDate); err != nil {
		return nil, err
	}
	if err := s.store.UpdateCalendar(ctx, id, p); err != nil {
		return nil, err
	}

	if p.StartDate != nil || p.EndDate != nil {
		if _, err := s.recolor(ctx, &next); err != nil {
			return nil, err
		}
	}
	return s.store.GetCalendar(ctx, id)
}

// DeleteCalendar removes an owned calendar with its categories and days
func (s *Service) DeleteCalendar(ctx context.Context, owner, id string) error {
	if _, err := s.ownedCalendar(ctx, owner, id); err != nil {
		return err
	}
	return s.store.DeleteCalendar(ctx, id)
}

// --- Categories ---

// AddCategory adds a category to an owned calendar and recolors it.
func (s *Service) AddCategory(ctx context.Context, owner, calendarID, name string) (*Category, error) {
	cal, err := s.ownedCalendar(ctx, owner, calendarID)
	if err != nil {
		return nil, err
	}

	cat := &Category{
		CalendarID: calendarID,
		OwnerID:    owner,
		Name:       strings.TrimSpace(name),
	}
	if err := s.store.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}

	colors, err := s.recolor(ctx, cal)
	if err != nil {
		return nil, err
	}
	for _, c := range colors {
		if c.CategoryID == cat.ID {
			cat.Color = c.Color
		}
	}
	return cat, nil
}

// RenameCategory sets the display name of a category
func (s *Service) RenameCategory(ctx context.Context, owner, categoryID, name string) (*Category, error) {
	cat, err := s.ownedCategory(ctx, owner, categoryID)
	if err != nil {
		return nil, err
	}
	cat.Name = strings.TrimSpace(name)
	if err := s.store.RenameCategory(ctx, categoryID, cat.Name); err != nil {
		return nil, err
	}
	return cat, nil
}

// DeleteCategory removes a category, clears it from its days and recolors
// the rest.
func (s *Service) DeleteCategory(ctx context.Context, owner, categoryID string) error {
	cat, err := s.ownedCategory(ctx, owner, categoryID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, categoryID); err != nil {
		return err
	}

	cal, err := s.store.GetCalendar(ctx, cat.CalendarID)
	if err != nil {
		return err
	}
	_, err = s.recolor(ctx, cal)
	return err
}

// RotateCategoryColor moves a category to the next palette color. The
// choice holds until the calendar is recolored.
func (s *Service) RotateCategoryColor(ctx context.Context, owner, categoryID string) (*Category, error) {
	cat, err := s.ownedCategory(ctx, owner, categoryID)
	if err != nil {
		return nil, err
	}
	cat.Color = paint.NextColor(cat.Color)
	if err := s.store.SetCategoryColors(ctx, []paint.ColorAssignment{
		{CategoryID: cat.ID, Color: cat.Color},
	}); err != nil {
		return nil, err
	}
	return cat, nil
}

// AutoColor recolors every category of an owned calendar and persists the
// assignments as one batch.
func (s *Service) AutoColor(ctx context.Context, owner, calendarID string) ([]paint.ColorAssignment, error) {
	cal, err := s.ownedCalendar(ctx, owner, calendarID)
	if err != nil {
		return nil, err
	}
	return s.recolor(ctx, cal)
}

// --- Days ---

// ToggleDay paints the cell for input.Date with the selected category, as
// a click on the given half of the cell would.
func (s *Service) ToggleDay(ctx context.Context, owner, calendarID string, input ToggleInput) (*Day, error) {
	cal, err := s.ownedCalendar(ctx, owner, calendarID)
	if err != nil {
		return nil, err
	}
	if cal.IsReadOnly {
		return nil, ErrReadOnly
	}
	if err := checkInRange(cal, input.Date); err != nil {
		return nil, err
	}

	if input.SelectedCategoryID != "" {
		cat, err := s.store.GetCategory(ctx, input.SelectedCategoryID)
		if errors.Is(err, ErrCategoryNotFound) || (err == nil && cat.CalendarID != calendarID) {
			return nil, invalid("selectedCategoryId", "is not a category of this calendar")
		}
		if err != nil {
			return nil, err
		}
	}

	var existing *paint.Day
	stored, err := s.store.GetDayByDate(ctx, calendarID, input.Date)
	switch {
	case errors.Is(err, ErrDayNotFound):
	case err != nil:
		return nil, err
	default:
		d := toPaintDay(stored)
		existing = &d
	}

	w := paint.Toggle(existing, input.SelectedCategoryID, input.IsTopLeft, input.Date)
	day, err := s.store.ApplyDayWrite(ctx, calendarID, owner, w)
	if err != nil {
		return nil, err
	}

	if err := s.store.TouchCalendar(ctx, calendarID); err != nil {
		return nil, err
	}
	if _, err := s.recolor(ctx, cal); err != nil {
		return nil, err
	}
	return day, nil
}

// UpdateDayDetails sets the icon and/or note of an owned day
func (s *Service) UpdateDayDetails(ctx context.Context, owner, dayID string, p DayDetailsPatch) (*Day, error) {
	day, err := s.store.GetDay(ctx, dayID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedCalendar(ctx, owner, day.CalendarID); err != nil {
		return nil, err
	}
	if p.Icon != nil && !ValidIcon(*p.Icon) {
		return nil, invalid("icon", fmt.Sprintf("must be one of %s", strings.Join(Icons, " ")))
	}
	if err := s.store.UpdateDayDetails(ctx, dayID, p); err != nil {
		return nil, err
	}
	return s.store.GetDay(ctx, dayID)
}

// SweepOrphans deletes categories and days left behind by a calendar
// delete that did not finish.
func (s *Service) SweepOrphans(ctx context.Context) (int64, error) {
	return s.store.SweepOrphans(ctx)
}

// RenderMarkdown converts markdown content to HTML
func (s *Service) RenderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(content), &buf); err != nil {
		return content // Return raw content on error
	}
	return buf.String()
}

// --- Export ---

// ExportICS renders a viewable calendar as an iCalendar feed
func (s *Service) ExportICS(ctx context.Context, owner, calendarID string) (string, error) {
	snap, err := s.GetSnapshot(ctx, owner, calendarID)
	if err != nil {
		return "", err
	}
	return ExportICS(snap, s.now()), nil
}

// CategoryOutline renders the printable day outline of one category
func (s *Service) CategoryOutline(ctx context.Context, owner, categoryID string) (string, error) {
	cat, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return "", err
	}
	snap, err := s.GetSnapshot(ctx, owner, cat.CalendarID)
	if err != nil {
		return "", err
	}
	if c := snap.CategoryByID(categoryID); c != nil {
		cat = c
	}
	return CategoryOutlineHTML(snap, cat), nil
}

// PublicSnapshot resolves a share slug to a publicly visible calendar.
func (s *Service) PublicSnapshot(ctx context.Context, slug string) (*Snapshot, error) {
	id, err := ParseShareSlug(slug)
	if err != nil {
		return nil, ErrCalendarNotFound
	}
	cal, err := s.store.GetCalendar(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cal.IsPubliclyVisible {
		return nil, ErrCalendarNotFound
	}
	return s.snapshot(ctx, cal)
}

// --- internals ---

func (s *Service) ownedCalendar(ctx context.Context, owner, id string) (*Calendar, error) {
	cal, err := s.store.GetCalendar(ctx, id)
	if err != nil {
		return nil, err
	}
	if cal.OwnerID != owner {
		if cal.IsPubliclyVisible {
			return nil, ErrForbidden
		}
		return nil, ErrCalendarNotFound
	}
	return cal, nil
}

func (s *Service) ownedCategory(ctx context.Context, owner, id string) (*Category, error) {
	cat, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedCalendar(ctx, owner, cat.CalendarID); err != nil {
		return nil, err
	}
	return cat, nil
}

// snapshot loads days and categories, orders categories by first use and
// fills in any color that was never assigned without clashing with the
// stored ones.
func (s *Service) snapshot(ctx context.Context, cal *Calendar) (*Snapshot, error) {
	days, err := s.store.ListDays(ctx, cal.ID)
	if err != nil {
		return nil, err
	}
	cats, err := s.store.ListCategories(ctx, cal.ID)
	if err != nil {
		return nil, err
	}

	pdays := toPaintDays(days)
	sorted := orderCategories(cats, pdays)
	missing := false
	for _, c := range sorted {
		if c.Color == "" {
			missing = true
		}
	}
	if missing {
		known := make(map[string]string, len(sorted))
		for _, c := range sorted {
			known[c.ID] = c.Color
		}
		adj := paint.BuildAdjacency(cal.StartDate, cal.EndDate, pdays)
		colors := paint.FillColors(adj, toPaintCategories(sorted), known)
		for i, c := range sorted {
			c.Color = colors[i].Color
		}
	}

	return &Snapshot{
		Calendar:   cal,
		Categories: sorted,
		Days:       days,
		Counts:     paint.CountByCategory(pdays),
	}, nil
}

// recolor runs the greedy colorer over the calendar's current state and
// stores the result in one batch.
func (s *Service) recolor(ctx context.Context, cal *Calendar) ([]paint.ColorAssignment, error) {
	days, err := s.store.ListDays(ctx, cal.ID)
	if err != nil {
		return nil, err
	}
	cats, err := s.store.ListCategories(ctx, cal.ID)
	if err != nil {
		return nil, err
	}

	pdays := toPaintDays(days)
	sorted := orderCategories(cats, pdays)
	colors := paint.AutoColor(cal.StartDate, cal.EndDate, pdays, toPaintCategories(sorted))
	if err := s.store.SetCategoryColors(ctx, colors); err != nil {
		return nil, err
	}
	return colors, nil
}

func orderCategories(cats []*Category, days []paint.Day) []*Category {
	byID := make(map[string]*Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	sorted := paint.SortCategories(toPaintCategories(cats), days)
	out := make([]*Category, len(sorted))
	for i, c := range sorted {
		out[i] = byID[c.ID]
	}
	return out
}

func validateRange(start, end string) error {
	if _, err := paint.ParseDate(start); err != nil {
		return invalid("startDate", err.Error())
	}
	if _, err := paint.ParseDate(end); err != nil {
		return invalid("endDate", err.Error())
	}
	return nil
}

func checkInRange(cal *Calendar, date string) error {
	if _, err := paint.ParseDate(date); err != nil {
		return invalid("date", err.Error())
	}
	lo, hi := cal.StartDate, cal.EndDate
	if hi < lo {
		lo, hi = hi, lo
	}
	if date < lo || date > hi {
		return invalid("date", fmt.Sprintf("%s is outside %s..%s", date, lo, hi))
	}
	return nil
}
