// ABOUTME: MCP tool definitions and registration for the filing Q&A server
// ABOUTME: Exposes answer_query, search_filings, and corpus_stats over stdio
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/finrag/finrag/internal/agent"
	"github.com/finrag/finrag/internal/index"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, qa *agent.Agent, ix *index.Index) *Handlers {
	handlers := &Handlers{agent: qa, index: ix}

	// 1. answer_query - full agent pipeline: decompose, retrieve, synthesize
	server.AddTool(mcp.Tool{
		Name:        "answer_query",
		Description: "Answer a natural-language financial question over the SEC filing corpus. Returns the structured response record with answer, reasoning, sub-queries, and cited sources.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Financial question to answer",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.AnswerQuery)

	// 2. search_filings - raw similarity search without synthesis
	server.AddTool(mcp.Tool{
		Name:        "search_filings",
		Description: "Run semantic similarity search over filing chunks and return the top matches with scores, without answer synthesis.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search text",
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of chunks to return (default: 3)",
					"default":     3,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchFilings)

	// 3. corpus_stats - indexed corpus summary
	server.AddTool(mcp.Tool{
		Name:        "corpus_stats",
		Description: "Report statistics for the indexed filing corpus: chunk count, companies, years, sections, and embedding model.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.CorpusStats)

	return handlers
}
