// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes Checker tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/checkerhq/checker/internal/apperr"
	"github.com/checkerhq/checker/internal/auth"
	"github.com/checkerhq/checker/internal/boardservice"
	"github.com/checkerhq/checker/internal/models"
)

// Server wraps the MCP server with Checker tools. All tools act on behalf
// of the principal resolved from the configured API key.
type Server struct {
	mcp  *server.MCPServer
	svc  *boardservice.Service
	user *models.User
	key  *models.APIKey
}

// New creates an MCP server with all Checker tools registered. The raw API
// key is resolved once; its scopes gate the write tools at call time.
func New(ctx context.Context, svc *boardservice.Service, authSvc *auth.Service, rawKey string) (*Server, error) {
	user, key, err := authSvc.Resolve(ctx, rawKey)
	if err != nil {
		return nil, fmt.Errorf("resolve api key: %w", err)
	}

	s := &Server{svc: svc, user: user, key: key}

	s.mcp = server.NewMCPServer(
		"Checker",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_boards",
		mcp.WithDescription("List the user's habit boards with their current streaks and totals."),
		mcp.WithString("includeArchived", mcp.Description("Set to \"true\" to include archived boards")),
	), s.listBoards)

	s.mcp.AddTool(mcp.NewTool("get_board_stats",
		mcp.WithDescription("Get derived statistics for one board: current streak, longest streak, total check-ins, last check-in date and 30-day completion rate."),
		mcp.WithString("boardId", mcp.Required(), mcp.Description("Board id")),
	), s.getBoardStats)

	s.mcp.AddTool(mcp.NewTool("get_heatmap",
		mcp.WithDescription("Get a board's per-day activity heatmap for one year."),
		mcp.WithString("boardId", mcp.Required(), mcp.Description("Board id")),
		mcp.WithString("year", mcp.Description("Four-digit year (default: current year in the user's timezone)")),
	), s.getHeatmap)

	s.mcp.AddTool(mcp.NewTool("quick_check_in",
		mcp.WithDescription("Record a check-in for today against a board identified by name or id."),
		mcp.WithString("board", mcp.Required(), mcp.Description("Board display name or id")),
		mcp.WithString("amount", mcp.Description("Optional amount for quantity or duration boards")),
		mcp.WithString("note", mcp.Description("Optional note")),
	), s.quickCheckIn)

	s.mcp.AddTool(mcp.NewTool("today_status",
		mcp.WithDescription("Show which active boards are done for today and which are still pending."),
	), s.todayStatus)

	s.mcp.AddTool(mcp.NewTool("create_board",
		mcp.WithDescription("Create a new habit board."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Board name")),
		mcp.WithString("unitType", mcp.Required(), mcp.Description("One of boolean, quantity, duration")),
		mcp.WithString("description", mcp.Description("Optional description")),
		mcp.WithString("targetAmount", mcp.Description("Optional daily target amount")),
	), s.createBoard)

	return s, nil
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) requireScope(scope string) error {
	if !s.key.HasScope(scope) {
		return fmt.Errorf("api key lacks the %q scope", scope)
	}
	return nil
}

func (s *Server) listBoards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	includeArchived := false
	if v, err := req.RequireString("includeArchived"); err == nil {
		includeArchived = v == "true"
	}

	boards, err := s.svc.ListBoards(ctx, s.user, includeArchived)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(boards, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getBoardStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := req.RequireString("boardId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	st, err := s.svc.Stats(ctx, s.user, boardID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(st, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getHeatmap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := req.RequireString("boardId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	year := s.svc.CurrentYear(s.user)
	if v, err := req.RequireString("year"); err == nil && v != "" {
		parsed, perr := strconv.Atoi(v)
		if perr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid year: %q", v)), nil
		}
		year = parsed
	}

	start := fmt.Sprintf("%04d-01-01", year)
	end := fmt.Sprintf("%04d-12-31", year)
	_, days, err := s.svc.Heatmap(ctx, s.user, boardID, start, end)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(days, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) quickCheckIn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.requireScope(models.ScopeWrite); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	board, err := req.RequireString("board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var amount *float64
	if v, err := req.RequireString("amount"); err == nil && v != "" {
		parsed, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid amount: %q", v)), nil
		}
		amount = &parsed
	}
	var note *string
	if v, err := req.RequireString("note"); err == nil && v != "" {
		note = &v
	}

	// Try by name first; fall back to id for callers that pass one.
	checkIn, b, err := s.svc.QuickCheckIn(ctx, s.user, "", board, amount, note)
	if errors.Is(err, apperr.ErrNotFound) {
		checkIn, b, err = s.svc.QuickCheckIn(ctx, s.user, board, "", amount, note)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"checked in to %q (session %d on %s, current streak %d)",
		b.Name, checkIn.SessionNumber, checkIn.Date, b.CurrentStreak)), nil
}

func (s *Server) todayStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	statuses, err := s.svc.QuickStatus(ctx, s.user)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(statuses, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.requireScope(models.ScopeWrite); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	unitType, err := req.RequireString("unitType")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	switch unitType {
	case models.UnitBoolean, models.UnitQuantity, models.UnitDuration:
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid unitType: %q", unitType)), nil
	}

	p := boardservice.BoardParams{Name: name, UnitType: unitType}
	if v, err := req.RequireString("description"); err == nil && v != "" {
		p.Description = &v
	}
	if v, err := req.RequireString("targetAmount"); err == nil && v != "" {
		parsed, perr := strconv.ParseFloat(v, 64)
		if perr != nil || parsed < 0 {
			return mcp.NewToolResultError(fmt.Sprintf("invalid targetAmount: %q", v)), nil
		}
		p.TargetAmount = &parsed
	}

	board, err := s.svc.CreateBoard(ctx, s.user, p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(board, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
