// ABOUTME: MCP tool handler implementations for the filing Q&A server
// ABOUTME: Handlers return tool errors rather than Go errors so the session survives bad input
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/finrag/finrag/internal/agent"
	"github.com/finrag/finrag/internal/index"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	agent *agent.Agent
	index *index.Index
}

// AnswerQuery handles the answer_query tool
func (h *Handlers) AnswerQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	response := h.agent.AnswerQuery(ctx, query)

	data, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// SearchFilings handles the search_filings tool
func (h *Handlers) SearchFilings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	topK := request.GetInt("top_k", 3)
	if topK <= 0 {
		return mcp.NewToolResultError("top_k must be positive"), nil
	}

	vector, err := h.index.EncodeQuery(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding query: %v", err)), nil
	}
	results := h.index.Search(vector, topK)

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// CorpusStats handles the corpus_stats tool
func (h *Handlers) CorpusStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(h.index.Stats(), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding stats: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
