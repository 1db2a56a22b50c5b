package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"colorcal/internal/calendars"
	"colorcal/internal/db"

	"github.com/mark3labs/mcp-go/mcp"
)

func newTestTools(t *testing.T) *tools {
	t.Helper()
	sqlDB, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	store, err := calendars.NewSQLiteStore(sqlDB)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close(context.Background()) })
	return &tools{svc: calendars.NewService(store), defaultOwner: "alice"}
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content=%T, want TextContent", res.Content[0])
	}
	return text.Text
}

func TestToolsPaintAndExport(t *testing.T) {
	tl := newTestTools(t)
	ctx := context.Background()

	cal, err := tl.svc.CreateCalendar(ctx, "alice", calendars.CreateCalendarInput{
		Title: "Trip", StartDate: "2024-03-01", EndDate: "2024-03-05",
	})
	if err != nil {
		t.Fatal(err)
	}

	res, _ := tl.addCategory(ctx, call(map[string]any{"calendar_id": cal.ID, "name": "Paris"}))
	if res.IsError {
		t.Fatalf("add_category: %s", resultText(t, res))
	}
	var cat calendars.Category
	if err := json.Unmarshal([]byte(resultText(t, res)), &cat); err != nil {
		t.Fatal(err)
	}

	res, _ = tl.toggleDay(ctx, call(map[string]any{
		"calendar_id": cal.ID,
		"date":        "2024-03-02",
		"category_id": cat.ID,
	}))
	if res.IsError {
		t.Fatalf("toggle_day: %s", resultText(t, res))
	}
	var day calendars.Day
	if err := json.Unmarshal([]byte(resultText(t, res)), &day); err != nil {
		t.Fatal(err)
	}
	if day.CategoryID != cat.ID {
		t.Fatalf("day=%+v", day)
	}

	res, _ = tl.setDayDetails(ctx, call(map[string]any{"day_id": day.ID, "note": "Louvre"}))
	if res.IsError || !strings.Contains(resultText(t, res), "Louvre") {
		t.Fatalf("set_day_details: %s", resultText(t, res))
	}

	res, _ = tl.exportICS(ctx, call(map[string]any{"calendar_id": cal.ID}))
	if res.IsError || !strings.Contains(resultText(t, res), "SUMMARY:Paris") {
		t.Fatalf("export_ics: %s", resultText(t, res))
	}

	res, _ = tl.listCalendars(ctx, call(nil))
	if res.IsError || !strings.Contains(resultText(t, res), cal.ID) {
		t.Fatalf("list_calendars: %s", resultText(t, res))
	}
}

func TestToolsErrors(t *testing.T) {
	tl := newTestTools(t)
	ctx := context.Background()

	res, _ := tl.getCalendar(ctx, call(map[string]any{}))
	if !res.IsError {
		t.Fatal("get_calendar without id should fail")
	}
	res, _ = tl.getCalendar(ctx, call(map[string]any{"calendar_id": "missing"}))
	if !res.IsError {
		t.Fatal("get_calendar for unknown id should fail")
	}
	res, _ = tl.listCalendars(ctx, call(map[string]any{"owner": "nobody"}))
	if res.IsError || strings.TrimSpace(resultText(t, res)) != "[]" {
		t.Fatalf("list_calendars=%s, want []", resultText(t, res))
	}
}
