// Package mcp exposes read-only recruiting views as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/pipeline"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
)

// Recruiting is the slice of the service the tools read from.
type Recruiting interface {
	RankCandidates(ctx context.Context, programID string, limit int) ([]model.MatchResult, error)
	Board(ctx context.Context, programID string, filter model.Status) (pipeline.Board, error)
	ListUpcoming(ctx context.Context, programID string, today model.Date, days int) ([]model.CalendarEvent, error)
}

// RankArgs is the input schema for rank_candidates.
type RankArgs struct {
	ProgramID string `json:"program_id" jsonschema:"Program id (required)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum results (0 = server maximum)"`
}

// BoardArgs is the input schema for pipeline_board.
type BoardArgs struct {
	ProgramID string `json:"program_id" jsonschema:"Program id (required)"`
	Status    string `json:"status,omitempty" jsonschema:"Status filter: watchlist|high_priority|offer_extended|committed|uninterested|all (default all)"`
}

// UpcomingArgs is the input schema for upcoming_events.
type UpcomingArgs struct {
	ProgramID string `json:"program_id" jsonschema:"Program id (required)"`
	Days      int    `json:"days,omitempty" jsonschema:"Look-ahead in days (0 = server default)"`
	Today     string `json:"today,omitempty" jsonschema:"First day of the window as YYYY-MM-DD (default server date)"`
}

// ToolInfo describes a registered tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Server owns the MCP server and its tool registry.
type Server struct {
	svc     Recruiting
	server  *gomcp.Server
	tools   []ToolInfo
	name    string
	version string
	logger  logger.Logger
}

// New registers every tool against svc.
func New(svc Recruiting, opts ...Option) *Server {
	s := &Server{
		svc:     svc,
		name:    "helm-recruiting",
		version: "0.1.0",
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.server = gomcp.NewServer(&gomcp.Implementation{Name: s.name, Version: s.version}, nil)

	addTool(s, &gomcp.Tool{
		Name:        "rank_candidates",
		Description: "Rank the program's visible candidates against its need profile",
	}, s.rankCandidates)
	addTool(s, &gomcp.Tool{
		Name:        "pipeline_board",
		Description: "Pipeline entries grouped by diamond position",
	}, s.pipelineBoard)
	addTool(s, &gomcp.Tool{
		Name:        "upcoming_events",
		Description: "Calendar events in the next N days, soonest first",
	}, s.upcomingEvents)
	return s
}

// Handler serves the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return gomcp.NewStreamableHTTPHandler(func(*http.Request) *gomcp.Server {
		return s.server
	}, &gomcp.StreamableHTTPOptions{JSONResponse: true})
}

// Tools lists the registered tools in registration order.
func (s *Server) Tools() []ToolInfo { return s.tools }

func addTool[T any](s *Server, tool *gomcp.Tool, handler func(context.Context, *gomcp.CallToolRequest, T) (*gomcp.CallToolResult, any, error)) {
	s.tools = append(s.tools, ToolInfo{Name: tool.Name, Description: tool.Description})
	gomcp.AddTool(s.server, tool, handler)
}

func (s *Server) rankCandidates(ctx context.Context, _ *gomcp.CallToolRequest, args RankArgs) (*gomcp.CallToolResult, any, error) {
	if args.ProgramID == "" {
		return toolError(fmt.Errorf("program_id is required")), nil, nil
	}
	res, err := s.svc.RankCandidates(ctx, args.ProgramID, args.Limit)
	if err != nil {
		return s.fail(ctx, "rank_candidates", err), nil, nil
	}
	return toolJSON(map[string]any{"program_id": args.ProgramID, "results": res})
}

func (s *Server) pipelineBoard(ctx context.Context, _ *gomcp.CallToolRequest, args BoardArgs) (*gomcp.CallToolResult, any, error) {
	if args.ProgramID == "" {
		return toolError(fmt.Errorf("program_id is required")), nil, nil
	}
	filter, err := model.ParseStatusFilter(args.Status)
	if err != nil {
		return toolError(err), nil, nil
	}
	board, err := s.svc.Board(ctx, args.ProgramID, filter)
	if err != nil {
		return s.fail(ctx, "pipeline_board", err), nil, nil
	}
	return toolJSON(board)
}

func (s *Server) upcomingEvents(ctx context.Context, _ *gomcp.CallToolRequest, args UpcomingArgs) (*gomcp.CallToolResult, any, error) {
	if args.ProgramID == "" {
		return toolError(fmt.Errorf("program_id is required")), nil, nil
	}
	if args.Days < 0 {
		return toolError(fmt.Errorf("days must not be negative")), nil, nil
	}
	var today model.Date
	if args.Today != "" {
		d, err := model.ParseDate(args.Today)
		if err != nil {
			return toolError(err), nil, nil
		}
		today = d
	}
	evs, err := s.svc.ListUpcoming(ctx, args.ProgramID, today, args.Days)
	if err != nil {
		return s.fail(ctx, "upcoming_events", err), nil, nil
	}
	return toolJSON(map[string]any{"program_id": args.ProgramID, "events": evs})
}

func (s *Server) fail(ctx context.Context, tool string, err error) *gomcp.CallToolResult {
	s.logger.Warn(ctx, "tool call failed", logger.String("tool", tool), logger.Error(err))
	return toolError(err)
}

func toolJSON(v any) (*gomcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err), nil, nil
	}
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{
			&gomcp.TextContent{Text: string(b)},
		},
	}, nil, nil
}

func toolError(err error) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		IsError: true,
		Content: []gomcp.Content{
			&gomcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
