package mcp

import (
	"context"
	"encoding/json"
)

type toolHandler func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult

var toolHandlers = map[string]toolHandler{
	"answercache_analytics": handleAnalytics,
	"answercache_query":     handleQuery,
}

var allTools = []ToolDefinition{
	{
		Name:        "answercache_analytics",
		Description: "Show answer cache analytics: hit and miss rates, request counts, resident entries and estimated cost savings.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "answercache_query",
		Description: "Answer a query through the cache. Queries that differ only in case or surrounding whitespace share one answer.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"query"},
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The query text",
				},
			},
		},
	},
}

func handleAnalytics(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	rep, err := s.source.Analytics(ctx)
	if err != nil {
		return errorResult("Error fetching analytics: " + err.Error())
	}
	return textResult(formatAnalytics(rep))
}

type queryArgs struct {
	Query *string `json:"query"`
}

func handleQuery(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args queryArgs
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return errorResult("query must be a string")
		}
	}
	if args.Query == nil {
		return errorResult("query is required")
	}
	res, err := s.source.Answer(ctx, *args.Query)
	if err != nil {
		return errorResult("Error answering query: " + err.Error())
	}
	return textResult(formatQueryResult(res))
}
