package calendars

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"colorcal/views/components"
	"colorcal/views/models"
	"colorcal/views/pages"
)

// OwnerHeader carries the caller's owner id. Authentication happens in
// front of this service.
const OwnerHeader = "X-Owner-ID"

type Handler struct {
	svc          *Service
	log          *slog.Logger
	defaultOwner string
	baseURL      string
}

func NewHandler(svc *Service, log *slog.Logger, defaultOwner, baseURL string) *Handler {
	return &Handler{
		svc:          svc,
		log:          log,
		defaultOwner: defaultOwner,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
	}
}

// --- REST API Handlers ---

// CreateCalendar handles POST /api/calendars
func (h *Handler) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	var input CreateCalendarInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	cal, err := h.svc.CreateCalendar(r.Context(), h.owner(r), input)
	if err != nil {
		h.fail(w, err, "failed to create calendar")
		return
	}
	h.jsonResponse(w, cal, http.StatusCreated)
}

// ListCalendars handles GET /api/calendars
func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	cals, err := h.svc.ListCalendars(r.Context(), h.owner(r))
	if err != nil {
		h.fail(w, err, "failed to list calendars")
		return
	}
	if cals == nil {
		cals = []*Calendar{}
	}
	h.jsonResponse(w, cals, http.StatusOK)
}

// GetCalendar handles GET /api/calendars/{id}
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.GetSnapshot(r.Context(), h.owner(r), r.PathValue("id"))
	if err != nil {
		h.fail(w, err, "failed to get calendar")
		return
	}
	h.jsonResponse(w, snap, http.StatusOK)
}

// UpdateCalendar handles PATCH /api/calendars/{id}
func (h *Handler) UpdateCalendar(w http.ResponseWriter, r *http.Request) {
	var p CalendarPatch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	cal, err := h.svc.UpdateCalendar(r.Context(), h.owner(r), r.PathValue("id"), p)
	if err != nil {
		h.fail(w, err, "failed to update calendar")
		return
	}
	h.jsonResponse(w, cal, http.StatusOK)
}

// DeleteCalendar handles DELETE /api/calendars/{id}
func (h *Handler) DeleteCalendar(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCalendar(r.Context(), h.owner(r), r.PathValue("id")); err != nil {
		h.fail(w, err, "failed to delete calendar")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportICS handles GET /api/calendars/{id}/export.ics
func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	body, err := h.svc.ExportICS(r.Context(), h.owner(r), r.PathValue("id"))
	if err != nil {
		h.fail(w, err, "failed to export calendar")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.Write([]byte(body))
}

type categoryInput struct {
	Name string `json:"name"`
}

// AddCategory handles POST /api/calendars/{id}/categories
func (h *Handler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var input categoryInput
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
	}

	cat, err := h.svc.AddCategory(r.Context(), h.owner(r), r.PathValue("id"), input.Name)
	if err != nil {
		h.fail(w, err, "failed to add category")
		return
	}
	h.jsonResponse(w, cat, http.StatusCreated)
}

// RenameCategory handles PATCH /api/categories/{id}
func (h *Handler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	var input categoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	cat, err := h.svc.RenameCategory(r.Context(), h.owner(r), r.PathValue("id"), input.Name)
	if err != nil {
		h.fail(w, err, "failed to rename category")
		return
	}
	h.jsonResponse(w, cat, http.StatusOK)
}

// DeleteCategory handles DELETE /api/categories/{id}
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCategory(r.Context(), h.owner(r), r.PathValue("id")); err != nil {
		h.fail(w, err, "failed to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RotateCategoryColor handles POST /api/categories/{id}/rotate
func (h *Handler) RotateCategoryColor(w http.ResponseWriter, r *http.Request) {
	cat, err := h.svc.RotateCategoryColor(r.Context(), h.owner(r), r.PathValue("id"))
	if err != nil {
		h.fail(w, err, "failed to rotate category color")
		return
	}
	h.jsonResponse(w, cat, http.StatusOK)
}

// CategoryOutline handles GET /api/categories/{id}/outline
func (h *Handler) CategoryOutline(w http.ResponseWriter, r *http.Request) {
	body, err := h.svc.CategoryOutline(r.Context(), h.owner(r), r.PathValue("id"))
	if err != nil {
		h.fail(w, err, "failed to build category outline")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(body))
}

// AutoColor handles POST /api/calendars/{id}/autocolor
func (h *Handler) AutoColor(w http.ResponseWriter, r *http.Request) {
	colors, err := h.svc.AutoColor(r.Context(), h.owner(r), r.PathValue("id"))
	if err != nil {
		h.fail(w, err, "failed to color categories")
		return
	}
	h.jsonResponse(w, colors, http.StatusOK)
}

// ToggleDay handles POST /api/calendars/{id}/days/toggle
func (h *Handler) ToggleDay(w http.ResponseWriter, r *http.Request) {
	var input ToggleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	day, err := h.svc.ToggleDay(r.Context(), h.owner(r), r.PathValue("id"), input)
	if err != nil {
		h.fail(w, err, "failed to toggle day")
		return
	}
	h.jsonResponse(w, day, http.StatusOK)
}

// UpdateDay handles PATCH /api/days/{id}
func (h *Handler) UpdateDay(w http.ResponseWriter, r *http.Request) {
	var p DayDetailsPatch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	day, err := h.svc.UpdateDayDetails(r.Context(), h.owner(r), r.PathValue("id"), p)
	if err != nil {
		h.fail(w, err, "failed to update day")
		return
	}
	h.jsonResponse(w, day, http.StatusOK)
}

// --- Helper methods ---

func (h *Handler) owner(r *http.Request) string {
	if o := strings.TrimSpace(r.Header.Get(OwnerHeader)); o != "" {
		return o
	}
	return h.defaultOwner
}

// fail maps service errors onto status codes; unexpected errors are logged
// and hidden behind a generic message.
func (h *Handler) fail(w http.ResponseWriter, err error, msg string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		h.jsonError(w, verr.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		h.jsonError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrReadOnly):
		h.jsonError(w, err.Error(), http.StatusConflict)
	case IsNotFound(err):
		h.jsonError(w, err.Error(), http.StatusNotFound)
	default:
		h.log.Error(msg, "error", err)
		h.jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// --- View model converters ---

func (h *Handler) calendarToView(c *Calendar) models.CalendarView {
	return models.CalendarView{
		ID:                c.ID,
		Title:             c.Title,
		StartDate:         c.StartDate,
		EndDate:           c.EndDate,
		IsPubliclyVisible: c.IsPubliclyVisible,
		IsReadOnly:        c.IsReadOnly,
		ShareURL:          h.baseURL + "/p/" + ShareSlug(c.ID),
		UpdatedAt:         c.UpdatedAt,
	}
}

func (h *Handler) snapshotToView(snap *Snapshot, editable bool) models.CalendarPageView {
	cal := h.calendarToView(snap.Calendar)
	cal.NotesHTML = h.svc.RenderMarkdown(snap.Calendar.Notes)

	cats := make([]models.CategoryView, len(snap.Categories))
	for i, c := range snap.Categories {
		cats[i] = models.CategoryView{ID: c.ID, Name: c.Name, Color: c.Color, Count: snap.Counts[c.ID]}
	}

	return models.CalendarPageView{
		Calendar:   cal,
		Categories: cats,
		Grid:       gridToView(snap.Calendar.ID, BuildGrid(snap), editable),
	}
}

func gridToView(calendarID string, g Grid, editable bool) models.GridView {
	v := models.GridView{
		CalendarID: calendarID,
		Editable:   editable,
		Headers:    make([]models.HeaderView, len(g.Headers)),
		Cells:      make([]models.CellView, len(g.Cells)),
	}
	for i, hd := range g.Headers {
		v.Headers[i] = models.HeaderView{Name: hd.Name, Color: hd.Color}
	}
	for i, c := range g.Cells {
		cv := models.CellView{
			Filler:        c.Filler,
			Date:          c.Date,
			DayOfMonth:    c.DayOfMonth,
			MonthLabel:    c.MonthLabel,
			HideLabel:     c.HideLabel,
			HideHalfLabel: c.HideHalfLabel,
			NoBorderRight: c.NoBorderRight,
		}
		if c.Day != nil {
			cv.DayID = c.Day.ID
			cv.Icon = c.Day.Icon
			cv.Note = c.Day.Note
		}
		if c.Top != nil {
			cv.TopName, cv.TopColor = c.Top.Name, c.Top.Color
		}
		if c.Half != nil {
			cv.HalfName, cv.HalfColor = c.Half.Name, c.Half.Color
		}
		v.Cells[i] = cv
	}
	return v
}

// --- Web Handlers ---

// HomePage handles GET /
func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	cals, err := h.svc.ListCalendars(r.Context(), h.owner(r))
	if err != nil {
		h.log.Error("failed to list calendars", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	views := make([]models.CalendarView, len(cals))
	for i, c := range cals {
		views[i] = h.calendarToView(c)
	}
	pages.HomePage(views, h.snapshotToView(ExampleSnapshot(), false)).Render(r.Context(), w)
}

// CreateCalendarForm handles POST /c from the home page form
func (h *Handler) CreateCalendarForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	cal, err := h.svc.CreateCalendar(r.Context(), h.owner(r), CreateCalendarInput{Title: r.FormValue("title")})
	if err != nil {
		h.log.Error("failed to create calendar", "error", err)
		http.Error(w, "could not create calendar", http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/c/"+cal.ID, http.StatusSeeOther)
}

// EditorPage handles GET /c/{id}
func (h *Handler) EditorPage(w http.ResponseWriter, r *http.Request) {
	owner := h.owner(r)
	snap, err := h.svc.GetSnapshot(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	editable := snap.Calendar.OwnerID == owner && !snap.Calendar.IsReadOnly
	pages.EditorPage(h.snapshotToView(snap, editable)).Render(r.Context(), w)
}

// PublicPage handles GET /p/{slug}
func (h *Handler) PublicPage(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.PublicSnapshot(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	pages.PublicPage(h.snapshotToView(snap, false)).Render(r.Context(), w)
}

// GridFragment handles GET /fragments/grid/{id} (partial re-render after a click)
func (h *Handler) GridFragment(w http.ResponseWriter, r *http.Request) {
	owner := h.owner(r)
	snap, err := h.svc.GetSnapshot(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	editable := snap.Calendar.OwnerID == owner && !snap.Calendar.IsReadOnly
	components.CalendarGrid(gridToView(snap.Calendar.ID, BuildGrid(snap), editable)).Render(r.Context(), w)
}

func (h *Handler) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if IsNotFound(err) {
		w.WriteHeader(http.StatusNotFound)
		pages.NotFoundPage().Render(r.Context(), w)
		return
	}
	h.log.Error("failed to load calendar page", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
