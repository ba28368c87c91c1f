// Package mcp exposes the document store to assistants over the Model
// Context Protocol on stdio.
package mcp

import (
	"context"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dgallion1/treerag/internal/config"
	"github.com/dgallion1/treerag/internal/pipeline"
	"github.com/dgallion1/treerag/internal/search"
	"github.com/dgallion1/treerag/internal/store"
	"github.com/dgallion1/treerag/internal/version"
)

// ServerName is the MCP server name
const ServerName = "treerag"

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	store   store.Store
	engine  *search.Engine
	indexer *pipeline.Indexer
	cfg     config.Config
	log     *slog.Logger
}

// NewServer registers every tool. The store is not closed by the server.
func NewServer(st store.Store, engine *search.Engine, ix *pipeline.Indexer, cfg config.Config, log *slog.Logger) *Server {
	s := &Server{
		mcp:     server.NewMCPServer(ServerName, version.Version),
		store:   st,
		engine:  engine,
		indexer: ix,
		cfg:     cfg,
		log:     log,
	}
	s.registerTools()
	return s
}

// Serve speaks the protocol over in and out until ctx is done or in closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.log.Handler(), slog.LevelError))
	s.log.Info("mcp server listening on stdio", "backend", s.cfg.StoreBackend)
	return stdio.Listen(ctx, in, out)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchDocumentsTool(), s.handleSearchDocuments)
	s.mcp.AddTool(getDocumentSectionTool(), s.handleGetDocumentSection)
	s.mcp.AddTool(getDocumentOverviewTool(), s.handleGetDocumentOverview)
	s.mcp.AddTool(listDocumentsTool(), s.handleListDocuments)
	s.mcp.AddTool(ingestDropFolderTool(), s.handleIngestDropFolder)
	s.mcp.AddTool(removeDocumentTool(), s.handleRemoveDocument)
}
