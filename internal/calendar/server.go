package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "calendar"
	serverVersion = "1.0.0"
)

// Server is the MCP server exposing the calendar backend as tools, so agent
// frontends can create and inspect reminders without going through Telegram.
type Server struct {
	mcpServer *server.MCPServer
	backend   Backend
}

// NewServer creates a new Calendar MCP server on top of the given backend.
func NewServer(backend Backend) *Server {
	s := &Server{
		backend: backend,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	// create_event
	s.mcpServer.AddTool(
		mcp.NewTool("create_event",
			mcp.WithDescription("Create a calendar event with a title, start and end timestamps, optional location and description"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Event title")),
			mcp.WithString("start", mcp.Required(), mcp.Description("Start timestamp, local time (e.g. 2025-12-25T10:00:00)")),
			mcp.WithString("end", mcp.Required(), mcp.Description("End timestamp, local time (e.g. 2025-12-25T11:00:00)")),
			mcp.WithString("location", mcp.Description("Optional location")),
			mcp.WithString("description", mcp.Description("Optional description")),
		),
		s.handleCreateEvent,
	)

	// list_upcoming_events
	s.mcpServer.AddTool(
		mcp.NewTool("list_upcoming_events",
			mcp.WithDescription("List upcoming calendar events, future-only and ordered by start time"),
		),
		s.handleListUpcomingEvents,
	)
}

func (s *Server) handleCreateEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	start := req.GetString("start", "")
	end := req.GetString("end", "")

	if title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}
	if start == "" {
		return mcp.NewToolResultError("start is required"), nil
	}
	if end == "" {
		return mcp.NewToolResultError("end is required"), nil
	}

	if _, err := time.Parse(localTimestampLayout, start); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid start timestamp: %v (use YYYY-MM-DDTHH:MM:SS)", err)), nil
	}
	if _, err := time.Parse(localTimestampLayout, end); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid end timestamp: %v (use YYYY-MM-DDTHH:MM:SS)", err)), nil
	}

	id, err := s.backend.CreateEvent(ctx, CreateEventRequest{
		Title:       title,
		Start:       start,
		End:         end,
		Location:    req.GetString("location", ""),
		Description: req.GetString("description", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create event: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Event created. ID: %s", id)), nil
}

func (s *Server) handleListUpcomingEvents(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	events, err := s.backend.ListUpcoming(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list events: %v", err)), nil
	}

	if len(events) == 0 {
		return mcp.NewToolResultText("No upcoming events."), nil
	}

	output, _ := json.MarshalIndent(events, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}
