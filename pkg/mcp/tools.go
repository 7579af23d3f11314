package mcp

import (
	"context"
	"encoding/json"

	"github.com/reelgate/reelgate/pkg/ledger"
	"github.com/reelgate/reelgate/pkg/models"
)

// toolHandler handles one tool call.
type toolHandler func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult

// toolHandlers maps tool names to their handlers.
var toolHandlers = map[string]toolHandler{
	"reelgate_estimate": handleEstimate,
	"reelgate_budget":   handleBudget,
	"reelgate_ledger":   handleLedger,
}

// allTools is the list of tool definitions exposed via tools/list.
var allTools = []ToolDefinition{
	{
		Name:        "reelgate_estimate",
		Description: "Estimate the cost of a video generation and whether the current budget would approve it. Does not spend anything.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"duration_seconds", "tier"},
			"properties": map[string]any{
				"duration_seconds": map[string]any{
					"type":        "number",
					"description": "Requested video length in seconds",
				},
				"tier": map[string]any{
					"type":        "string",
					"description": "Quality tier: low, medium or high",
				},
			},
		},
	},
	{
		Name:        "reelgate_budget",
		Description: "Show the current budget period: limit, spent, remaining and attempt counts.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "reelgate_ledger",
		Description: "List recent generation attempts from the spend ledger, optionally filtered by status.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"status": map[string]any{
					"type":        "string",
					"description": "Filter by entry status: approved, rejected, submitted, completed, failed (optional)",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Max entries to return (default 20)",
				},
			},
		},
	},
}

func textResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

func errorResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: true,
	}
}

type estimateArgs struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Tier            string  `json:"tier"`
}

func handleEstimate(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args estimateArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	req := models.GenerationRequest{
		// The prompt does not affect cost; a placeholder keeps the request valid.
		Prompt:          "(estimate)",
		DurationSeconds: args.DurationSeconds,
		Tier:            models.Tier(args.Tier),
	}
	decision, err := s.guard.Preview(ctx, req)
	if err != nil {
		return errorResult("Error estimating cost: " + err.Error())
	}
	return textResult(formatDecision(decision))
}

func handleBudget(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	summary, err := s.guard.Summary(ctx)
	if err != nil {
		return errorResult("Error fetching budget status: " + err.Error())
	}
	return textResult(formatSummary(summary))
}

type ledgerArgs struct {
	Status string `json:"status"`
	Limit  int    `json:"limit"`
}

func handleLedger(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args ledgerArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	if args.Limit <= 0 {
		args.Limit = 20
	}
	entries, err := s.ledger.List(ctx, ledger.ListOpts{
		Status: models.EntryStatus(args.Status),
		Limit:  args.Limit,
	})
	if err != nil {
		return errorResult("Error listing ledger: " + err.Error())
	}
	return textResult(formatEntries(entries))
}
