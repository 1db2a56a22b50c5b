package calendars

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"colorcal/internal/paint"
)

// SQLiteStore implements Store on an embedded SQLite database. It backs local
// runs and the tests.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore wraps an open database and applies pending migrations.
func NewSQLiteStore(db *sqlx.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}
	return nil
}

// EnsureIndexes is a no-op; indexes ship with the migrations.
func (s *SQLiteStore) EnsureIndexes(ctx context.Context) error { return nil }

// Close closes the underlying database connection.
func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

// === Calendars ===

func (s *SQLiteStore) CreateCalendar(ctx context.Context, c *Calendar) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO calendars (
			id, owner_id, title, start_date, end_date,
			is_publicly_visible, is_read_only, notes, created_at, updated_at
		) VALUES (
			:id, :owner_id, :title, :start_date, :end_date,
			:is_publicly_visible, :is_read_only, :notes, :created_at, :updated_at
		)`, c)
	if err != nil {
		return fmt.Errorf("creating calendar: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetCalendar(ctx context.Context, id string) (*Calendar, error) {
	var c Calendar
	err := s.db.GetContext(ctx, &c, "SELECT * FROM calendars WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCalendarNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying calendar %s: %w", id, err)
	}
	return &c, nil
}

func (s *SQLiteStore) ListCalendars(ctx context.Context, ownerID string) ([]*Calendar, error) {
	var cals []*Calendar
	err := s.db.SelectContext(ctx, &cals,
		"SELECT * FROM calendars WHERE owner_id = ? ORDER BY updated_at DESC, rowid DESC", ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying calendars: %w", err)
	}
	return cals, nil
}

func (s *SQLiteStore) UpdateCalendar(ctx context.Context, id string, p CalendarPatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.StartDate != nil {
		add("start_date", *p.StartDate)
	}
	if p.EndDate != nil {
		add("end_date", *p.EndDate)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}
	if p.IsPubliclyVisible != nil {
		add("is_publicly_visible", *p.IsPubliclyVisible)
	}
	if p.IsReadOnly != nil {
		add("is_read_only", *p.IsReadOnly)
	}
	args = append(args, id)

	result, err := s.db.ExecContext(ctx,
		"UPDATE calendars SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating calendar %s: %w", id, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrCalendarNotFound
	}
	return nil
}

func (s *SQLiteStore) TouchCalendar(ctx context.Context, id string) error {
	return s.UpdateCalendar(ctx, id, CalendarPatch{})
}

// DeleteCalendar removes a calendar. CASCADE removes its categories and days.
func (s *SQLiteStore) DeleteCalendar(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM calendars WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting calendar %s: %w", id, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrCalendarNotFound
	}
	return nil
}

// === Categories ===

func (s *SQLiteStore) CreateCategory(ctx context.Context, c *Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO categories (id, calendar_id, owner_id, name, color, created_at)
		VALUES (:id, :calendar_id, :owner_id, :name, :color, :created_at)`, c)
	if err != nil {
		return fmt.Errorf("creating category: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*Category, error) {
	var c Category
	err := s.db.GetContext(ctx, &c, "SELECT * FROM categories WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying category %s: %w", id, err)
	}
	return &c, nil
}

func (s *SQLiteStore) ListCategories(ctx context.Context, calendarID string) ([]*Category, error) {
	var cats []*Category
	err := s.db.SelectContext(ctx, &cats,
		"SELECT * FROM categories WHERE calendar_id = ? ORDER BY created_at, rowid", calendarID)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	return cats, nil
}

func (s *SQLiteStore) RenameCategory(ctx context.Context, id, name string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE categories SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return fmt.Errorf("renaming category %s: %w", id, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes a category and clears it from every day.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting category %s: %w", id, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrCategoryNotFound
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE days SET category_id = '' WHERE category_id = ?", id); err != nil {
		return fmt.Errorf("clearing category %s from days: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE days SET half_category_id = '' WHERE half_category_id = ?", id); err != nil {
		return fmt.Errorf("clearing half category %s from days: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing category delete: %w", err)
	}
	return nil
}

// SetCategoryColors writes every assignment in a single transaction.
func (s *SQLiteStore) SetCategoryColors(ctx context.Context, colors []paint.ColorAssignment) error {
	if len(colors) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, "UPDATE categories SET color = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("preparing color statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range colors {
		if _, err := stmt.ExecContext(ctx, c.Color, c.CategoryID); err != nil {
			return fmt.Errorf("setting color of %s: %w", c.CategoryID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing colors: %w", err)
	}
	return nil
}

// === Days ===

func (s *SQLiteStore) ListDays(ctx context.Context, calendarID string) ([]*Day, error) {
	var days []*Day
	err := s.db.SelectContext(ctx, &days,
		"SELECT * FROM days WHERE calendar_id = ? ORDER BY date", calendarID)
	if err != nil {
		return nil, fmt.Errorf("querying days: %w", err)
	}
	return days, nil
}

func (s *SQLiteStore) GetDay(ctx context.Context, id string) (*Day, error) {
	return s.getDay(ctx, "SELECT * FROM days WHERE id = ?", id)
}

func (s *SQLiteStore) GetDayByDate(ctx context.Context, calendarID, date string) (*Day, error) {
	return s.getDay(ctx, "SELECT * FROM days WHERE calendar_id = ? AND date = ?", calendarID, date)
}

func (s *SQLiteStore) getDay(ctx context.Context, query string, args ...any) (*Day, error) {
	var d Day
	err := s.db.GetContext(ctx, &d, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying day: %w", err)
	}
	return &d, nil
}

func (s *SQLiteStore) ApplyDayWrite(ctx context.Context, calendarID, ownerID string, w paint.DayWrite) (*Day, error) {
	if w.Op == paint.OpCreate {
		applied := w.Apply(paint.Day{})
		day := &Day{
			ID:             uuid.NewString(),
			CalendarID:     calendarID,
			OwnerID:        ownerID,
			Date:           applied.Date,
			CategoryID:     applied.CategoryID,
			HalfCategoryID: applied.HalfCategoryID,
		}
		_, err := s.db.NamedExecContext(ctx, `
			INSERT INTO days (id, calendar_id, owner_id, date, category_id, half_category_id, icon, note)
			VALUES (:id, :calendar_id, :owner_id, :date, :category_id, :half_category_id, :icon, :note)`, day)
		if err != nil {
			return nil, fmt.Errorf("creating day %s: %w", day.Date, err)
		}
		return day, nil
	}

	var sets []string
	var args []any
	if w.CategoryID.Set {
		sets = append(sets, "category_id = ?")
		args = append(args, w.CategoryID.ID)
	}
	if w.HalfCategoryID.Set {
		sets = append(sets, "half_category_id = ?")
		args = append(args, w.HalfCategoryID.ID)
	}
	if len(sets) > 0 {
		args = append(args, w.DayID, calendarID)
		result, err := s.db.ExecContext(ctx,
			"UPDATE days SET "+strings.Join(sets, ", ")+" WHERE id = ? AND calendar_id = ?", args...)
		if err != nil {
			return nil, fmt.Errorf("updating day %s: %w", w.DayID, err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return nil, ErrDayNotFound
		}
	}
	return s.GetDay(ctx, w.DayID)
}

func (s *SQLiteStore) UpdateDayDetails(ctx context.Context, id string, p DayDetailsPatch) error {
	var sets []string
	var args []any
	if p.Icon != nil {
		sets = append(sets, "icon = ?")
		args = append(args, *p.Icon)
	}
	if p.Note != nil {
		sets = append(sets, "note = ?")
		args = append(args, *p.Note)
	}
	if len(sets) == 0 {
		_, err := s.GetDay(ctx, id)
		return err
	}
	args = append(args, id)

	result, err := s.db.ExecContext(ctx,
		"UPDATE days SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating day %s: %w", id, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrDayNotFound
	}
	return nil
}

// SweepOrphans only finds rows written while foreign_keys was off; deletes
// otherwise cascade.
func (s *SQLiteStore) SweepOrphans(ctx context.Context) (int64, error) {
	var total int64
	for _, table := range []string{"days", "categories"} {
		result, err := s.db.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE calendar_id NOT IN (SELECT id FROM calendars)")
		if err != nil {
			return total, fmt.Errorf("sweeping orphan %s: %w", table, err)
		}
		n, _ := result.RowsAffected()
		total += n
	}
	return total, nil
}
