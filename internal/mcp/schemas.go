package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func searchDocumentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_documents",
		Description: "Search across all indexed documents by keyword",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Search query (keywords)",
				},
				"doc_id": map[string]any{
					"type":        "string",
					"description": "Optional document ID to restrict search to a single document",
				},
			},
			Required: []string{"query"},
		},
	}
}

func getDocumentSectionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_document_section",
		Description: "Get the full text of a specific section/node in a document",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"doc_id": map[string]any{
					"type":        "string",
					"description": "The document ID",
				},
				"node_id": map[string]any{
					"type":        "string",
					"description": `The node ID (e.g. "0001", "0005")`,
				},
			},
			Required: []string{"doc_id", "node_id"},
		},
	}
}

func getDocumentOverviewTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_document_overview",
		Description: "Get a table-of-contents overview of a document",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"doc_id": map[string]any{
					"type":        "string",
					"description": "The document ID",
				},
			},
			Required: []string{"doc_id"},
		},
	}
}

func listDocumentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_documents",
		Description: "List all indexed documents",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}
}

func ingestDropFolderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ingest_drop_folder",
		Description: "Process and index any supported files in the drop folder",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}
}

func removeDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "remove_document",
		Description: "Remove an indexed document",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"doc_id": map[string]any{
					"type":        "string",
					"description": "The document ID to remove",
				},
			},
			Required: []string{"doc_id"},
		},
	}
}
