package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dgallion1/treerag/internal/doctree"
	"github.com/dgallion1/treerag/internal/pipeline"
	"github.com/dgallion1/treerag/internal/search"
)

func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	docID, _ := args["doc_id"].(string)

	hits, err := s.engine.Search(ctx, query, docID, s.cfg.SearchMaxResults)
	if err != nil {
		s.log.Error("search failed", "error", err)
		return mcp.NewToolResultError("search failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText(FormatHits(hits)), nil
}

func (s *Server) handleGetDocumentSection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	docID, _ := args["doc_id"].(string)
	nodeID, _ := args["node_id"].(string)
	if docID == "" || nodeID == "" {
		return mcp.NewToolResultError("doc_id and node_id parameters are required"), nil
	}

	sec, err := s.engine.Section(ctx, docID, nodeID)
	switch {
	case errors.Is(err, search.ErrDocumentNotFound):
		return mcp.NewToolResultText(fmt.Sprintf("Document '%s' not found.", docID)), nil
	case errors.Is(err, search.ErrNodeNotFound):
		return mcp.NewToolResultText(fmt.Sprintf("Node '%s' not found in document '%s'.", nodeID, docID)), nil
	case err != nil:
		s.log.Error("load section failed", "doc_id", docID, "node_id", nodeID, "error", err)
		return mcp.NewToolResultError("failed to load section: " + err.Error()), nil
	}
	return mcp.NewToolResultText(FormatSection(sec)), nil
}

func (s *Server) handleGetDocumentOverview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, _ := arguments(request)["doc_id"].(string)
	if docID == "" {
		return mcp.NewToolResultError("doc_id parameter is required"), nil
	}

	text, found, err := s.engine.Overview(ctx, docID)
	if err != nil {
		s.log.Error("overview failed", "doc_id", docID, "error", err)
		return mcp.NewToolResultError("failed to render overview: " + err.Error()), nil
	}
	if !found {
		return mcp.NewToolResultText(fmt.Sprintf("Document '%s' not found.", docID)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.store.List(ctx)
	if err != nil {
		s.log.Error("list documents failed", "error", err)
		return mcp.NewToolResultError("failed to list documents: " + err.Error()), nil
	}
	return mcp.NewToolResultText(FormatDocumentList(docs, s.cfg.DropDir)), nil
}

func (s *Server) handleIngestDropFolder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := s.indexer.IngestDir(ctx, s.cfg.DropDir, s.cfg.ProcessedDir, s.cfg.MaxConcurrentIngest)
	if err != nil {
		s.log.Error("ingest drop folder failed", "error", err)
		return mcp.NewToolResultError("ingest failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText(FormatIngestResults(results)), nil
}

func (s *Server) handleRemoveDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, _ := arguments(request)["doc_id"].(string)
	if docID == "" {
		return mcp.NewToolResultError("doc_id parameter is required"), nil
	}
	deleted, err := s.store.Delete(ctx, docID)
	if err != nil {
		s.log.Error("remove document failed", "doc_id", docID, "error", err)
		return mcp.NewToolResultError("failed to remove document: " + err.Error()), nil
	}
	if !deleted {
		return mcp.NewToolResultText(fmt.Sprintf("Document '%s' not found.", docID)), nil
	}
	s.log.Info("document removed", "doc_id", docID)
	return mcp.NewToolResultText(fmt.Sprintf("Removed document '%s'.", docID)), nil
}

func arguments(request mcp.CallToolRequest) map[string]any {
	if args, ok := request.Params.Arguments.(map[string]any); ok {
		return args
	}
	return map[string]any{}
}

// FormatHits renders search hits as text blocks separated by rules.
func FormatHits(hits []doctree.Hit) string {
	if len(hits) == 0 {
		return "No matching results found."
	}
	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		lines := []string{fmt.Sprintf("[%s] %s (score: %d)", h.DocName, h.NodePath, h.Score)}
		if h.Summary != "" {
			lines = append(lines, "Summary: "+h.Summary)
		}
		if h.TextSnippet != "" {
			lines = append(lines, "Snippet: "+h.TextSnippet)
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// FormatSection renders one node as a markdown section.
func FormatSection(sec *search.Section) string {
	title := sec.Title
	if title == "" {
		title = "Untitled"
	}
	parts := []string{"# " + title}
	if sec.Summary != "" {
		parts = append(parts, "\n**Summary:** "+sec.Summary)
	}
	if sec.Text != "" {
		parts = append(parts, "\n"+sec.Text)
	} else {
		parts = append(parts, "\n(No text content available for this node)")
	}
	return strings.Join(parts, "\n")
}

// FormatDocumentList renders the document listing.
func FormatDocumentList(docs []doctree.Summary, dropDir string) string {
	if len(docs) == 0 {
		return fmt.Sprintf("No documents indexed yet. Drop files in %s and run ingest.", dropDir)
	}
	lines := []string{fmt.Sprintf("**%d document(s) indexed:**\n", len(docs))}
	for _, d := range docs {
		line := fmt.Sprintf("- **%s** (id: `%s`, %d nodes)", d.DocName, d.DocID, d.NodeCount)
		if d.DocDescription != "" {
			line += " - " + d.DocDescription
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatIngestResults renders one OK or FAIL line per file.
func FormatIngestResults(results []pipeline.FileResult) string {
	if len(results) == 0 {
		return "No supported files found in the drop folder."
	}
	lines := []string{fmt.Sprintf("Processed %d file(s):", len(results))}
	for _, r := range results {
		if r.Error != "" && r.DocID == "" {
			lines = append(lines, fmt.Sprintf("FAIL %s - %s", r.File, r.Error))
			continue
		}
		line := fmt.Sprintf("OK %s -> doc_id: %s", r.File, r.DocID)
		if r.Error != "" {
			line += " (" + r.Error + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
