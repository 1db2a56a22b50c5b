package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"colorcal/internal/calendars"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server with tools for color calendar operations.
// Tools act on behalf of defaultOwner unless the call names another owner.
func NewServer(svc *calendars.Service, defaultOwner string) *server.MCPServer {
	s := server.NewMCPServer(
		"Color Calendar",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	t := &tools{svc: svc, defaultOwner: defaultOwner}

	ownerOpt := mcp.WithString("owner",
		mcp.Description("Optional: owner id to act as (defaults to the server's owner)"),
	)
	calendarOpt := mcp.WithString("calendar_id",
		mcp.Required(),
		mcp.Description("The calendar ID (UUID)"),
	)

	// Tool: list_calendars - List the owner's calendars
	s.AddTool(
		mcp.NewTool("list_calendars",
			mcp.WithDescription("List the owner's color calendars, most recently edited first."),
			ownerOpt,
		),
		t.listCalendars,
	)

	// Tool: get_calendar - Full snapshot of one calendar
	s.AddTool(
		mcp.NewTool("get_calendar",
			mcp.WithDescription("Get a calendar with its categories (name, color, day count) and painted days. Use this before painting to learn category IDs."),
			calendarOpt,
			ownerOpt,
		),
		t.getCalendar,
	)

	// Tool: add_category - Add a category to paint with
	s.AddTool(
		mcp.NewTool("add_category",
			mcp.WithDescription("Add a named category (e.g. a city on a trip) to a calendar. Colors are assigned automatically."),
			calendarOpt,
			mcp.WithString("name",
				mcp.Description("Category name"),
			),
			ownerOpt,
		),
		t.addCategory,
	)

	// Tool: toggle_day - Click a day cell
	s.AddTool(
		mcp.NewTool("toggle_day",
			mcp.WithDescription("Paint a day as if its cell were clicked with a category selected. Clicking a day already painted with the category erases it; clicking a day painted with another category splits it into top and half."),
			calendarOpt,
			mcp.WithString("date",
				mcp.Required(),
				mcp.Description("Day to paint (YYYY-MM-DD), inside the calendar's range"),
			),
			mcp.WithString("category_id",
				mcp.Description("Category to paint with; empty erases"),
			),
			mcp.WithBoolean("top_left",
				mcp.Description("Click the upper-left half of the cell (default: true). Only matters when the day holds a different category: top-left pushes the old category into the half."),
			),
			ownerOpt,
		),
		t.toggleDay,
	)

	// Tool: set_day_details - Icon and note on a day
	s.AddTool(
		mcp.NewTool("set_day_details",
			mcp.WithDescription("Set the travel icon and/or note of an existing day."),
			mcp.WithString("day_id",
				mcp.Required(),
				mcp.Description("The day ID"),
			),
			mcp.WithString("icon",
				mcp.Description("One of ✈️ 🚆 🚙 🚍, or empty to clear"),
			),
			mcp.WithString("note",
				mcp.Description("Free text note"),
			),
			ownerOpt,
		),
		t.setDayDetails,
	)

	// Tool: auto_color - Recolor categories
	s.AddTool(
		mcp.NewTool("auto_color",
			mcp.WithDescription("Recompute category colors so that categories on touching days differ."),
			calendarOpt,
			ownerOpt,
		),
		t.autoColor,
	)

	// Tool: export_ics - iCalendar export
	s.AddTool(
		mcp.NewTool("export_ics",
			mcp.WithDescription("Export a calendar as iCalendar text with one all-day event per category stay."),
			calendarOpt,
			ownerOpt,
		),
		t.exportICS,
	)

	return s
}

type tools struct {
	svc          *calendars.Service
	defaultOwner string
}

func (t *tools) owner(req mcp.CallToolRequest) string {
	return req.GetString("owner", t.defaultOwner)
}

func (t *tools) listCalendars(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cals, err := t.svc.ListCalendars(ctx, t.owner(req))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list calendars: %v", err)), nil
	}
	if cals == nil {
		cals = []*calendars.Calendar{}
	}
	return jsonResult(cals)
}

func (t *tools) getCalendar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("calendar_id")
	if err != nil {
		return mcp.NewToolResultError("calendar_id is required"), nil
	}

	snap, err := t.svc.GetSnapshot(ctx, t.owner(req), id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get calendar: %v", err)), nil
	}
	return jsonResult(snap)
}

func (t *tools) addCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("calendar_id")
	if err != nil {
		return mcp.NewToolResultError("calendar_id is required"), nil
	}

	cat, err := t.svc.AddCategory(ctx, t.owner(req), id, req.GetString("name", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add category: %v", err)), nil
	}
	return jsonResult(cat)
}

func (t *tools) toggleDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("calendar_id")
	if err != nil {
		return mcp.NewToolResultError("calendar_id is required"), nil
	}
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("date is required"), nil
	}

	day, err := t.svc.ToggleDay(ctx, t.owner(req), id, calendars.ToggleInput{
		Date:               date,
		SelectedCategoryID: req.GetString("category_id", ""),
		IsTopLeft:          req.GetBool("top_left", true),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to toggle day: %v", err)), nil
	}
	return jsonResult(day)
}

func (t *tools) setDayDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("day_id")
	if err != nil {
		return mcp.NewToolResultError("day_id is required"), nil
	}

	var p calendars.DayDetailsPatch
	args := req.GetArguments()
	if _, ok := args["icon"]; ok {
		icon := req.GetString("icon", "")
		p.Icon = &icon
	}
	if _, ok := args["note"]; ok {
		note := req.GetString("note", "")
		p.Note = &note
	}

	day, err := t.svc.UpdateDayDetails(ctx, t.owner(req), id, p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update day: %v", err)), nil
	}
	return jsonResult(day)
}

func (t *tools) autoColor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("calendar_id")
	if err != nil {
		return mcp.NewToolResultError("calendar_id is required"), nil
	}

	colors, err := t.svc.AutoColor(ctx, t.owner(req), id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to color categories: %v", err)), nil
	}
	return jsonResult(colors)
}

func (t *tools) exportICS(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("calendar_id")
	if err != nil {
		return mcp.NewToolResultError("calendar_id is required"), nil
	}

	body, err := t.svc.ExportICS(ctx, t.owner(req), id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to export calendar: %v", err)), nil
	}
	return mcp.NewToolResultText(body), nil
}

// Helper functions

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}
