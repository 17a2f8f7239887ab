package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
	"github.com/maximaximal/ShadeChange-Level-Generator/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"ShadeChange Level Generator",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`ShadeChange Level Generator - MCP Interface

This is a thin client that proxies all requests to the REST API server.

PUZZLE RULES:
The board has two overlaid tile fields, white and black, but only the
active field is solid. The player slides in a direction until a block
stops them or they leave the board. Leaving the board through the exit
cell solves the level; leaving anywhere else does nothing. The "change"
move switches the active field in place.

AVAILABLE TOOLS:
- generate_level: Generate a new level from a preset
- validate_level: Replay a move sequence against a level
- solve_level: Exhaustively search a level for a solution
- list_presets: List available generation presets
- create_session: Start an interactive playtest session
- game_state: Get current playtest state
- move: Single move (up/down/left/right/change)
- bulk_move: Multiple moves at once
- reset_game: Reset the session to the start cell
- move_history: View past moves`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Level operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "generate_level",
		Description: "Generate a new level from a preset, returning the board, the construction plan and the validation verdict",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"preset": map[string]interface{}{
					"type":        "string",
					"description": "Name of the preset to use (optional, default preset when omitted)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Seed for deterministic generation (optional)",
				},
			},
		},
	}, c.handleGenerateLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "validate_level",
		Description: "Replay a move sequence against a level and report the verdict (solved, unsolvable or undetermined)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "object",
					"description": "Level JSON as returned by generate_level",
				},
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
					},
					"description": "Move sequence, long names or the letter notation (U/D/L/R/C)",
				},
				"budget": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of applied moves (optional)",
				},
			},
			Required: []string{"level", "moves"},
		},
	}, c.handleValidateLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_level",
		Description: "Exhaustively search a level for a shortest solution up to a depth limit",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "object",
					"description": "Level JSON as returned by generate_level",
				},
				"max_depth": map[string]interface{}{
					"type":        "integer",
					"description": "Search depth limit (optional)",
				},
			},
			Required: []string{"level"},
		},
	}, c.handleSolveLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_presets",
		Description: "List available generation presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPresets)

	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new playtest session with an optional preset selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"preset": map[string]interface{}{
					"type":        "string",
					"description": "Name of the preset to use (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active playtest sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	// Playtest operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current playtest state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Apply a single move to the session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"move": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right", "change"},
					"description": "Move to apply",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "move"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: "Apply multiple moves in sequence",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"up", "down", "left", "right", "change"},
					},
					"description": "Array of moves",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the session to its start cell and start field",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleGenerateLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	preset, _ := args["preset"].(string)

	body := map[string]interface{}{}
	if preset != "" {
		body["preset"] = preset
	}
	if seed, ok := args["seed"].(float64); ok {
		body["seed"] = int64(seed)
	}

	var out struct {
		ID      string          `json:"id"`
		Level   json.RawMessage `json:"level"`
		Verdict string          `json:"verdict"`
		Plan    string          `json:"plan"`
		Report  string          `json:"report"`
	}
	if err := c.apiCall("POST", "/api/levels/generate", body, &out); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Generated level %s\nVerdict: %s\nPlan: %s\n%s\nLevel JSON:\n%s\n",
		out.ID, out.Verdict, out.Plan, out.Report, out.Level)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleValidateLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})

	body := map[string]interface{}{
		"level": args["level"],
		"moves": args["moves"],
	}
	if budget, ok := args["budget"].(float64); ok {
		body["budget"] = int(budget)
	}

	var out service.ValidationResult
	if err := c.apiCall("POST", "/api/levels/validate", body, &out); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Verdict: %s\nMoves applied: %d\nFinal status: %s\nLast outcome: %s\n",
		out.Verdict, out.Result.MovesApplied, out.Result.Status, out.Result.LastOutcome)
	if out.Result.LimitExceeded {
		result += "The move budget ran out before the run finished.\n"
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSolveLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})

	body := map[string]interface{}{
		"level": args["level"],
	}
	if depth, ok := args["max_depth"].(float64); ok {
		body["max_depth"] = int(depth)
	}

	var out struct {
		Verdict  engine.Verdict `json:"verdict"`
		Moves    []engine.Move  `json:"moves"`
		Explored int            `json:"explored"`
		MaxDepth int            `json:"max_depth"`
	}
	if err := c.apiCall("POST", "/api/levels/solve", body, &out); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Verdict: %s\nExplored states: %d (depth limit %d)\n",
		out.Verdict, out.Explored, out.MaxDepth)
	if len(out.Moves) > 0 {
		names := make([]string, len(out.Moves))
		for i, m := range out.Moves {
			names[i] = string(m)
		}
		result += fmt.Sprintf("Solution (%d moves): %s\n", len(out.Moves), strings.Join(names, ", "))
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListPresets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var presets []struct {
		PresetID    string `json:"preset_id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		Steps       int    `json:"steps"`
	}
	if err := c.apiCall("GET", "/api/presets", nil, &presets); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Presets:\n\n"
	for _, p := range presets {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Grid: %dx%d, Steps: %d\n\n",
			p.PresetID, p.Name, p.Description, p.Width, p.Height, p.Steps)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	preset, _ := args["preset"].(string)

	body := map[string]string{}
	if preset != "" {
		body["preset"] = preset
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nPreset: %s\n\n%s",
		session.ID, session.PresetName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Preset: %s, Created: %s)\n",
			s.ID, s.PresetName, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.LevelState
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	move, _ := args["move"].(string)
	reset, _ := args["reset"].(bool)

	body := map[string]interface{}{
		"move":  move,
		"reset": reset,
	}

	var result service.MoveResult
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/move", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	movesRaw, _ := args["moves"].([]interface{})
	reset, _ := args["reset"].(bool)

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}

	body := map[string]interface{}{
		"moves": moves,
		"reset": reset,
	}

	var result service.BulkMoveResult
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/bulk-move", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string             `json:"message"`
		State   *engine.LevelState `json:"state"`
	}
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	params := "?"
	if page, ok := args["page"].(float64); ok {
		params += fmt.Sprintf("page=%d&", int(page))
	}
	if limit, ok := args["limit"].(float64); ok {
		params += fmt.Sprintf("limit=%d&", int(limit))
	}

	var history service.HistoryResponse
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/history%s", sessionID, params), nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

// Formatting helpers

func formatGameState(state *engine.LevelState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Position: (%d,%d) | Field: %s | Status: %s | Moves: %d\n",
		state.Player.X, state.Player.Y, state.Active, state.Status, state.TotalMoves))
	if state.Message != "" {
		b.WriteString(state.Message + "\n")
	}
	b.WriteString("\n")

	if state.Level != nil {
		b.WriteString(fmt.Sprintf("Active field (%s), P marks the player, exit at (%d,%d):\n",
			state.Active, state.Level.Exit.X, state.Level.Exit.Y))
		b.WriteString(renderActiveLayer(state))
	}

	return b.String()
}

// renderActiveLayer draws the active field with the player overlaid.
func renderActiveLayer(state *engine.LevelState) string {
	var b strings.Builder
	layer := state.Level.Layer(state.Active)
	for y := 0; y < state.Level.Height; y++ {
		for x := 0; x < state.Level.Width; x++ {
			if state.Player.X == x && state.Player.Y == y {
				b.WriteByte('P')
				continue
			}
			switch layer[y][x] {
			case engine.Block:
				b.WriteByte('#')
			case engine.Spiral:
				b.WriteByte('@')
			case engine.Enemy:
				b.WriteByte('!')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	status := "✓ Move successful"
	if !result.Success {
		status = "✗ Move failed"
	}

	out := fmt.Sprintf("%s\nOutcome: %s\n", status, result.Outcome)
	if result.Message != "" {
		out += result.Message + "\n"
	}
	if len(result.PossibleMoves) > 0 {
		names := make([]string, len(result.PossibleMoves))
		for i, m := range result.PossibleMoves {
			names[i] = string(m)
		}
		out += fmt.Sprintf("Possible moves: %s\n", strings.Join(names, ", "))
	}
	out += "\n" + formatGameState(result.GameState)
	return out
}

func formatBulkMoveResult(result *service.BulkMoveResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Executed %d of %d moves: (%d,%d) -> (%d,%d)\n",
		result.MovesExecuted, result.RequestedMoves,
		result.StartPos.X, result.StartPos.Y, result.EndPos.X, result.EndPos.Y))

	if result.Truncated {
		b.WriteString(fmt.Sprintf("Request truncated to the limit of %d moves.\n", result.Limit))
	}
	if result.StoppedReason != "" {
		b.WriteString(fmt.Sprintf("Stopped on move %d: %s\n", result.StoppedOnMove, result.StoppedReason))
	}

	for _, step := range result.Steps {
		b.WriteString(fmt.Sprintf("%d. %s (%d,%d) -> (%d,%d) [%s] %s\n",
			step.Idx, step.Move, step.From.X, step.From.Y, step.To.X, step.To.Y,
			step.Field, step.Outcome))
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Move History (Page %d/%d) — Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for i, move := range history.Moves {
		num := (history.Page-1)*history.PageSize + i + 1
		result += fmt.Sprintf("%d. %s (%d,%d) -> (%d,%d) [%s] %s\n",
			num, move.Move, move.From.X, move.From.Y, move.To.X, move.To.Y,
			move.Field, move.Outcome)
	}

	return result
}
