// ABOUTME: MCP tool implementations for diary entry operations.
// ABOUTME: Registers list_entries, write_entry, delete_entry.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/diary/internal/diary"
	"github.com/2389-research/diary/internal/models"
)

func (s *Server) registerEntryTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "list_entries",
		Description: "List diary entries, newest first.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"limit": {"type": "number", "description": "Maximum number of entries to return (default: all)"}
			}
		}`),
	}, s.handleListEntries)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "write_entry",
		Description: "Write a new diary entry. Title, mood, and content are all required.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Short title for the day"},
				"mood": {"type": "string", "description": "How the author is feeling"},
				"content": {"type": "string", "description": "The entry text"}
			},
			"required": ["title", "mood", "content"]
		}`),
	}, s.handleWriteEntry)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "delete_entry",
		Description: "Permanently delete a diary entry by id. Only call with confirm=true after the user has agreed.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Id of the entry to delete"},
				"confirm": {"type": "boolean", "description": "Must be true; the user has confirmed the deletion"}
			},
			"required": ["id", "confirm"]
		}`),
	}, s.handleDeleteEntry)
}

func (s *Server) handleListEntries(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Limit int `json:"limit"`
	}
	if err := unmarshalArgs(req, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	if outcome := s.ctrl.Refresh(ctx); !outcome.OK() {
		return toolError("failed to list entries: %v", outcome.Err), nil
	}

	entries := s.ctrl.Snapshot().Entries
	if args.Limit > 0 && len(entries) > args.Limit {
		entries = entries[:args.Limit]
	}

	if len(entries) == 0 {
		return &gomcp.CallToolResult{
			Content: []gomcp.Content{&gomcp.TextContent{Text: "No entries yet."}},
		}, nil
	}

	var sb strings.Builder
	for i, entry := range entries {
		if i > 0 {
			sb.WriteString("\n---\n")
		}
		sb.WriteString(formatEntry(entry))
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: sb.String()}},
	}, nil
}

func (s *Server) handleWriteEntry(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Title   string `json:"title"`
		Mood    string `json:"mood"`
		Content string `json:"content"`
	}
	if err := unmarshalArgs(req, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	var missing []string
	if strings.TrimSpace(args.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(args.Mood) == "" {
		missing = append(missing, "mood")
	}
	if strings.TrimSpace(args.Content) == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return toolError("missing required field(s): %s", strings.Join(missing, ", ")), nil
	}

	s.writeMu.Lock()
	s.ctrl.SetForm(diary.Form{Title: args.Title, Mood: args.Mood, Content: args.Content})
	outcome := s.ctrl.Submit(ctx)
	s.writeMu.Unlock()

	if !outcome.OK() {
		return toolError("failed to write entry: %v", outcome.Err), nil
	}

	s.log.Debug(ctx, "entry written", "title", args.Title)
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{
			Text: fmt.Sprintf("Entry written: %s (%s)", args.Title, args.Mood),
		}},
	}, nil
}

func (s *Server) handleDeleteEntry(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		ID      string `json:"id"`
		Confirm bool   `json:"confirm"`
	}
	if err := unmarshalArgs(req, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.ID == "" {
		return toolError("id is required"), nil
	}

	outcome := s.ctrl.RequestDelete(ctx, args.ID, func(string) bool { return args.Confirm })
	switch outcome.Status {
	case diary.StatusDeclined:
		return toolError("deletion not confirmed: ask the user, then call again with confirm=true"), nil
	case diary.StatusFailed:
		return toolError("failed to delete entry: %v", outcome.Err), nil
	}

	s.log.Debug(ctx, "entry deleted", "id", args.ID)
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf("Entry %s deleted.", args.ID)}},
	}, nil
}

// formatEntry renders one entry for tool output.
func formatEntry(e *models.DiaryEntry) string {
	return fmt.Sprintf("Id: %s\nDate: %s\nTitle: %s\nMood: %s\n\n%s\n",
		e.ID, models.FormatDate(e.CreatedAt), e.Title, e.Mood, e.Content)
}

// unmarshalArgs decodes tool arguments, treating absent arguments as an empty object.
func unmarshalArgs(req *gomcp.CallToolRequest, v any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	return json.Unmarshal(req.Params.Arguments, v)
}

// toolError creates an error result for MCP tool responses.
func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
