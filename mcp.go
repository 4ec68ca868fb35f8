package beewatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers all monitor tools on an MCP server.
func (m *Monitor) RegisterMCP(srv *mcp.Server) {
	m.registerStartRun(srv)
	m.registerStopRun(srv)
	m.registerStatus(srv)
	m.registerListProfiles(srv)
	m.registerHistory(srv)
	m.registerStats(srv)
	m.registerDailyStats(srv)
	m.registerClear(srv)
	m.registerSaveSession(srv)
	m.registerDeleteSession(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// registerTool wires an endpoint as an MCP tool: decode arguments, run,
// marshal the response as JSON text.
func registerTool(srv *mcp.Server, tool *mcp.Tool, endpoint func(ctx context.Context, args json.RawMessage) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp, err := endpoint(ctx, req.Params.Arguments)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(errors.New(err.Error()))
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

func (m *Monitor) registerStartRun(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "beewatch_start_run",
		Description: "Start a monitoring run against the attached browser session",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	registerTool(srv, tool, func(ctx context.Context, _ json.RawMessage) (any, error) {
		if err := m.StartRun(ctx); err != nil {
			return nil, err
		}
		return m.Status(), nil
	})
}

func (m *Monitor) registerStopRun(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "beewatch_stop_run",
		Description: "Stop the active monitoring run",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	registerTool(srv, tool, func(ctx context.Context, _ json.RawMessage) (any, error) {
		if err := m.StopRun(ctx); err != nil {
			return nil, err
		}
		return m.Status(), nil
	})
}

func (m *Monitor) registerStatus(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "beewatch_status",
		Description: "Report whether a run is active and its counters",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	registerTool(srv, tool, func(_ context.Context, _ json.RawMessage) (any, error) {
		return m.Status(), nil
	})
}

func (m *Monitor) registerListProfiles(srv *mcp.Server) {
	type req struct {
		Filter string `json:"filter"`
	}
	tool := &mcp.Tool{
		Name:        "beewatch_list_profiles",
		Description: "List discovered profiles, optionally filtered by vote state",
		InputSchema: inputSchema(map[string]any{
			"filter": map[string]any{
				"type":        "string",
				"description": "all (default), matches, or likes",
			},
		}, nil),
	}
	registerTool(srv, tool, func(ctx context.Context, args json.RawMessage) (any, error) {
		var p req
		if len(args) > 0 {
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
		}
		switch p.Filter {
		case "matches":
			return m.Matches(ctx)
		case "likes":
			return m.NewLikes(ctx)
		default:
			return m.Profiles(ctx)
		}
	})
}

func (m *Monitor) registerHistory(srv *mcp.Server) {
	type req struct {
		Limit int `json:"limit"`
	}
	tool := &mcp.Tool{
		Name:        "beewatch_history",
		Description: "List recent activity entries, newest first",
		InputSchema: inputSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Max entries, default 100"},
		}, nil),
	}
	registerTool(srv, tool, func(ctx context.Context, args json.RawMessage) (any, error) {
		var p req
		if len(args) > 0 {
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
		}
		return m.History(ctx, p.Limit)
	})
}

func (m *Monitor) registerStats(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "beewatch_stats",
		Description: "Aggregate profile counters",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	registerTool(srv, tool, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return m.Stats(ctx)
	})
}

func (m *Monitor) registerDailyStats(srv *mcp.Server) {
	type req struct {
		Days int `json:"days"`
	}
	tool := &mcp.Tool{
		Name:        "beewatch_daily_stats",
		Description: "Per-day like/match/autolike counters",
		InputSchema: inputSchema(map[string]any{
			"days": map[string]any{"type": "integer", "description": "How many days back, default 7"},
		}, nil),
	}
	registerTool(srv, tool, func(ctx context.Context, args json.RawMessage) (any, error) {
		var p req
		if len(args) > 0 {
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
		}
		return m.DailyStats(ctx, p.Days)
	})
}

func (m *Monitor) registerClear(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "beewatch_clear",
		Description: "Delete all stored profiles and reset the run's seen set",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	registerTool(srv, tool, func(ctx context.Context, _ json.RawMessage) (any, error) {
		if err := m.Clear(ctx); err != nil {
			return nil, err
		}
		return map[string]string{"status": "cleared"}, nil
	})
}

func (m *Monitor) registerSaveSession(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "beewatch_save_session",
		Description: "Persist the active run's browser cookies for later restore",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	registerTool(srv, tool, func(ctx context.Context, _ json.RawMessage) (any, error) {
		if err := m.SaveSession(ctx); err != nil {
			return nil, err
		}
		return map[string]string{"status": "saved"}, nil
	})
}

func (m *Monitor) registerDeleteSession(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "beewatch_delete_session",
		Description: "Discard the stored browser session cookies",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	registerTool(srv, tool, func(ctx context.Context, _ json.RawMessage) (any, error) {
		if err := m.DeleteSession(ctx); err != nil {
			return nil, err
		}
		return map[string]string{"status": "deleted"}, nil
	})
}
