// Command mcp-calendar provides an MCP server for the calendar backend.
//
// This server exposes the same Google Calendar operations the Telegram bot
// uses, so agent frontends can create and list reminders over MCP.
//
// Usage:
//
//	./mcp-calendar          # Start MCP server (stdio)
//	./mcp-calendar --help   # Show help
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/CamiFraga/CaliBotUADE/internal/calendar"
	"github.com/CamiFraga/CaliBotUADE/internal/config"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	backend, err := calendar.NewGoogle(context.Background(), cfg.Calendar)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up calendar backend: %v\n", err)
		os.Exit(1)
	}

	s := calendar.NewServer(backend)

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Calendar Server - Google Calendar access via MCP protocol

USAGE:
    mcp-calendar                  Start MCP server (communicates via stdio)
    mcp-calendar -config FILE     Use a custom config file
    mcp-calendar --help           Show this help

TOOLS:
    create_event          Create a calendar event (title, start, end,
                          optional location and description)
    list_upcoming_events  List upcoming events, ordered by start time

CONFIGURATION:
    Reads the calendar section of ~/.calibot/config.yaml:
    credentials_file, token_file, calendar_id, time_zone, max_results`)
}
