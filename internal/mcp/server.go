package mcp

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/formlab/annotate/internal/bind"
	"github.com/formlab/annotate/internal/config"
	"github.com/formlab/annotate/internal/descriptions"
	"github.com/formlab/annotate/internal/engine"
	"github.com/formlab/annotate/internal/validate"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *engine.Service
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, svc *engine.Service) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:    cfg,
		service:   svc,
		mcpServer: mcpServer,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// Register document validation tool
	formValidateFileTool := mcp.NewTool(
		"form_validate_file",
		mcp.WithDescription("Validate a form annotation document for structural and geometric consistency"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the annotation document JSON file"),
		),
	)
	s.mcpServer.AddTool(formValidateFileTool, s.handleFormValidateFile)

	// Register data binding tool
	formBindFileTool := mcp.NewTool(
		"form_bind_file",
		mcp.WithDescription("Bind a data tree into a form annotation document, resolving field values and positions"),
		mcp.WithString("document_path",
			mcp.Required(),
			mcp.Description("Full path to the annotation document JSON file"),
		),
		mcp.WithString("data_path",
			mcp.Required(),
			mcp.Description("Full path to the data tree JSON file"),
		),
	)
	s.mcpServer.AddTool(formBindFileTool, s.handleFormBindFile)

	// Register PDF cross-check tool
	formInspectPDFTool := mcp.NewTool(
		"form_inspect_pdf",
		mcp.WithDescription("Cross-check a form annotation document's declared page geometry against a source PDF"),
		mcp.WithString("document_path",
			mcp.Required(),
			mcp.Description("Full path to the annotation document JSON file"),
		),
		mcp.WithString("pdf_path",
			mcp.Required(),
			mcp.Description("Full path to the source PDF file"),
		),
	)
	s.mcpServer.AddTool(formInspectPDFTool, s.handleFormInspectPDF)

	// Register server info tool
	formServerInfoTool := mcp.NewTool(
		"form_server_info",
		mcp.WithDescription("Get server information, available tools, and usage guidance"),
	)
	s.mcpServer.AddTool(formServerInfoTool, s.handleFormServerInfo)
}

// Handler functions
func (s *Server) handleFormValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := engine.FormValidateFileRequest{Path: path}
	result, err := s.service.FormValidateFile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatFormValidateFileResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormBindFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentPath, err := request.RequireString("document_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dataPath, err := request.RequireString("data_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := engine.FormBindFileRequest{
		DocumentPath: documentPath,
		DataPath:     dataPath,
	}
	result, err := s.service.FormBindFile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatFormBindFileResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormInspectPDF(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentPath, err := request.RequireString("document_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pdfPath, err := request.RequireString("pdf_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := engine.FormInspectPDFRequest{
		DocumentPath: documentPath,
		PDFPath:      pdfPath,
	}
	result, err := s.service.FormInspectPDF(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatFormInspectPDFResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info := s.service.Info()
	responseText := s.formatServerInfoResult(info)
	return mcp.NewToolResultText(responseText), nil
}

// Formatting methods
func (s *Server) formatFormValidateFileResult(result *engine.FormValidateFileResult) string {
	text := fmt.Sprintf("Validation of %s\n", result.Path)
	if result.FormID != "" {
		text += fmt.Sprintf("Form: %s", result.FormID)
		if result.FormName != "" {
			text += fmt.Sprintf(" (%s)", result.FormName)
		}
		if result.FormYear != 0 {
			text += fmt.Sprintf(", year %d", result.FormYear)
		}
		text += "\n"
	}
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Fields: %d\n", result.Fields)

	if result.Valid {
		text += "Result: VALID\n"
	} else {
		text += "Result: INVALID\n"
	}

	text += formatFindings(result.Findings)
	return text
}

func (s *Server) formatFormBindFileResult(result *engine.FormBindFileResult) string {
	text := fmt.Sprintf("Bind of %s with data %s\n", result.DocumentPath, result.DataPath)
	text += fmt.Sprintf("Resolved instances: %d\n", len(result.Instances))

	if result.Report != nil && result.Report.StructurallyInvalid {
		text += "NOTE: document is structurally invalid, positions are best-effort\n"
	}

	// Stable status summary
	statuses := make([]string, 0, len(result.StatusCounts))
	for st := range result.StatusCounts {
		statuses = append(statuses, string(st))
	}
	sort.Strings(statuses)
	for _, st := range statuses {
		text += fmt.Sprintf("  %s: %d\n", st, result.StatusCounts[bind.Status(st)])
	}

	text += "\nInstances:\n"
	for i := range result.Instances {
		inst := &result.Instances[i]
		text += fmt.Sprintf("• %s [%s] page %d at (%.4g, %.4g)\n",
			inst.FieldID, inst.Status, inst.PageNumber, inst.Position.StartX, inst.Position.StartY)
		if inst.HasValue {
			text += fmt.Sprintf("  value: %v\n", inst.Value)
		}
		for _, seg := range inst.Segments {
			text += fmt.Sprintf("  segment %d: %q at (%.4g, %.4g)\n",
				seg.SegmentIndex, seg.Value, seg.Position.StartX, seg.Position.StartY)
		}
	}

	if result.Report != nil {
		text += formatFindings(result.Report.Findings)
	}
	return text
}

func (s *Server) formatFormInspectPDFResult(result *engine.FormInspectPDFResult) string {
	text := fmt.Sprintf("Inspection of %s against %s\n", result.DocumentPath, result.PDFPath)
	text += fmt.Sprintf("PDF pages: %d\n", result.PDFPages)
	for i, dim := range result.PageDims {
		text += fmt.Sprintf("  page %d: %.2f x %.2f pts\n", i+1, dim.WidthPts, dim.HeightPts)
	}

	if result.Matches {
		text += "Result: declared geometry matches the PDF\n"
	} else {
		text += "Result: MISMATCH\n"
	}
	text += formatFindings(result.Findings)
	return text
}

func (s *Server) formatServerInfoResult(info *engine.ServiceInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", info.Name, info.Version)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", info.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("📄 PDF Backend: %s\n\n", info.PDFBackend)

	text += "🛠️  Available Tools:\n"
	for _, tool := range info.Tools {
		text += fmt.Sprintf("\n• %s\n", tool)
		text += fmt.Sprintf("  %s\n", descriptions.GetToolDescription(tool))
	}

	return text
}

func formatFindings(findings []validate.Finding) string {
	if len(findings) == 0 {
		return ""
	}
	text := fmt.Sprintf("\nFindings (%d):\n", len(findings))
	for _, f := range findings {
		text += fmt.Sprintf("  %s\n", f.String())
	}
	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting form annotation MCP server in stdio mode")
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// For now, we'll just use stdio mode since the mark3labs library
	// handles the transport differently
	log.Printf("Server mode not yet implemented with mark3labs/mcp-go")
	log.Printf("Falling back to stdio mode")
	return s.runStdioMode(ctx)
}
