package calendars

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"colorcal/internal/paint"
)

// MongoStore keeps calendars, categories and days in three collections.
// Categories and days point back to their calendar through calendar_id.
type MongoStore struct {
	calendars  *mongo.Collection
	categories *mongo.Collection
	days       *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		calendars:  db.Collection("calendars"),
		categories: db.Collection("categories"),
		days:       db.Collection("days"),
	}
}

// EnsureIndexes creates necessary indexes for the three collections
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.calendars.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "owner_id", Value: 1},
				{Key: "updated_at", Value: -1},
			},
		},
	}); err != nil {
		return fmt.Errorf("create calendar indexes: %w", err)
	}

	if _, err := s.categories.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "calendar_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
		},
	}); err != nil {
		return fmt.Errorf("create category indexes: %w", err)
	}

	if _, err := s.days.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "calendar_id", Value: 1},
				{Key: "date", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "category_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "half_category_id", Value: 1}},
		},
	}); err != nil {
		return fmt.Errorf("create day indexes: %w", err)
	}
	return nil
}

// Close disconnects the client the store was built on
func (s *MongoStore) Close(ctx context.Context) error {
	return s.calendars.Database().Client().Disconnect(ctx)
}

// --- Calendars ---

func (s *MongoStore) CreateCalendar(ctx context.Context, c *Calendar) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt

	if _, err := s.calendars.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert calendar: %w", err)
	}
	return nil
}

func (s *MongoStore) GetCalendar(ctx context.Context, id string) (*Calendar, error) {
	var cal Calendar
	err := s.calendars.FindOne(ctx, bson.M{"_id": id}).Decode(&cal)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCalendarNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find calendar %s: %w", id, err)
	}
	return &cal, nil
}

// ListCalendars returns the owner's calendars, most recently updated first
func (s *MongoStore) ListCalendars(ctx context.Context, ownerID string) ([]*Calendar, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := s.calendars.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	defer cursor.Close(ctx)

	var cals []*Calendar
	if err := cursor.All(ctx, &cals); err != nil {
		return nil, fmt.Errorf("decode calendars: %w", err)
	}
	return cals, nil
}

func (s *MongoStore) UpdateCalendar(ctx context.Context, id string, p CalendarPatch) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.StartDate != nil {
		set["start_date"] = *p.StartDate
	}
	if p.EndDate != nil {
		set["end_date"] = *p.EndDate
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}
	if p.IsPubliclyVisible != nil {
		set["is_publicly_visible"] = *p.IsPubliclyVisible
	}
	if p.IsReadOnly != nil {
		set["is_read_only"] = *p.IsReadOnly
	}

	result, err := s.calendars.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update calendar %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrCalendarNotFound
	}
	return nil
}

func (s *MongoStore) TouchCalendar(ctx context.Context, id string) error {
	return s.UpdateCalendar(ctx, id, CalendarPatch{})
}

// DeleteCalendar removes the calendar, then its categories and days. A
// failure after the first delete leaves orphans for SweepOrphans.
func (s *MongoStore) DeleteCalendar(ctx context.Context, id string) error {
	result, err := s.calendars.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete calendar: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrCalendarNotFound
	}

	if _, err := s.categories.DeleteMany(ctx, bson.M{"calendar_id": id}); err != nil {
		return fmt.Errorf("delete categories of %s: %w", id, err)
	}
	if _, err := s.days.DeleteMany(ctx, bson.M{"calendar_id": id}); err != nil {
		return fmt.Errorf("delete days of %s: %w", id, err)
	}
	return nil
}

// --- Categories ---

func (s *MongoStore) CreateCategory(ctx context.Context, c *Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()

	if _, err := s.categories.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (s *MongoStore) GetCategory(ctx context.Context, id string) (*Category, error) {
	var cat Category
	err := s.categories.FindOne(ctx, bson.M{"_id": id}).Decode(&cat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find category %s: %w", id, err)
	}
	return &cat, nil
}

// ListCategories returns a calendar's categories in creation order
func (s *MongoStore) ListCategories(ctx context.Context, calendarID string) ([]*Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.categories.Find(ctx, bson.M{"calendar_id": calendarID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer cursor.Close(ctx)

	var cats []*Category
	if err := cursor.All(ctx, &cats); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return cats, nil
}

func (s *MongoStore) RenameCategory(ctx context.Context, id, name string) error {
	result, err := s.categories.UpdateByID(ctx, id, bson.M{"$set": bson.M{"name": name}})
	if err != nil {
		return fmt.Errorf("rename category %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes the category and unsets it on every day using it
func (s *MongoStore) DeleteCategory(ctx context.Context, id string) error {
	result, err := s.categories.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrCategoryNotFound
	}

	for _, field := range []string{"category_id", "half_category_id"} {
		if _, err := s.days.UpdateMany(ctx,
			bson.M{field: id},
			bson.M{"$unset": bson.M{field: ""}},
		); err != nil {
			return fmt.Errorf("clear %s=%s on days: %w", field, id, err)
		}
	}
	return nil
}

// SetCategoryColors writes all assignments in one unordered bulk write
func (s *MongoStore) SetCategoryColors(ctx context.Context, colors []paint.ColorAssignment) error {
	if len(colors) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, len(colors))
	for i, c := range colors {
		models[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": c.CategoryID}).
			SetUpdate(bson.M{"$set": bson.M{"color": c.Color}})
	}

	if _, err := s.categories.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("write category colors: %w", err)
	}
	return nil
}

// --- Days ---

// ListDays returns a calendar's days sorted by date
func (s *MongoStore) ListDays(ctx context.Context, calendarID string) ([]*Day, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := s.days.Find(ctx, bson.M{"calendar_id": calendarID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	defer cursor.Close(ctx)

	var days []*Day
	if err := cursor.All(ctx, &days); err != nil {
		return nil, fmt.Errorf("decode days: %w", err)
	}
	return days, nil
}

func (s *MongoStore) GetDay(ctx context.Context, id string) (*Day, error) {
	return s.findDay(ctx, bson.M{"_id": id})
}

func (s *MongoStore) GetDayByDate(ctx context.Context, calendarID, date string) (*Day, error) {
	return s.findDay(ctx, bson.M{"calendar_id": calendarID, "date": date})
}

func (s *MongoStore) findDay(ctx context.Context, filter bson.M) (*Day, error) {
	var day Day
	err := s.days.FindOne(ctx, filter).Decode(&day)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrDayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find day: %w", err)
	}
	return &day, nil
}

func (s *MongoStore) ApplyDayWrite(ctx context.Context, calendarID, ownerID string, w paint.DayWrite) (*Day, error) {
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
		if _, err := s.days.InsertOne(ctx, day); err != nil {
			return nil, fmt.Errorf("insert day %s: %w", day.Date, err)
		}
		return day, nil
	}

	set, unset := bson.M{}, bson.M{}
	for field, f := range map[string]paint.Field{
		"category_id":      w.CategoryID,
		"half_category_id": w.HalfCategoryID,
	} {
		switch {
		case !f.Set:
		case f.ID == "":
			unset[field] = ""
		default:
			set[field] = f.ID
		}
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		return s.GetDay(ctx, w.DayID)
	}

	var day Day
	err := s.days.FindOneAndUpdate(ctx,
		bson.M{"_id": w.DayID, "calendar_id": calendarID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&day)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrDayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update day %s: %w", w.DayID, err)
	}
	return &day, nil
}

func (s *MongoStore) UpdateDayDetails(ctx context.Context, id string, p DayDetailsPatch) error {
	set, unset := bson.M{}, bson.M{}
	for field, v := range map[string]*string{"icon": p.Icon, "note": p.Note} {
		switch {
		case v == nil:
		case *v == "":
			unset[field] = ""
		default:
			set[field] = *v
		}
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		_, err := s.GetDay(ctx, id)
		return err
	}

	result, err := s.days.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("update day %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrDayNotFound
	}
	return nil
}

// SweepOrphans finishes cascades that DeleteCalendar left half done.
func (s *MongoStore) SweepOrphans(ctx context.Context) (int64, error) {
	ids, err := s.calendars.Distinct(ctx, "_id", bson.M{})
	if err != nil {
		return 0, fmt.Errorf("list calendar ids: %w", err)
	}
	orphan := bson.M{"calendar_id": bson.M{"$nin": ids}}

	var total int64
	for _, coll := range []*mongo.Collection{s.days, s.categories} {
		result, err := coll.DeleteMany(ctx, orphan)
		if err != nil {
			return total, fmt.Errorf("sweep orphan %s: %w", coll.Name(), err)
		}
		total += result.DeletedCount
	}
	return total, nil
}
