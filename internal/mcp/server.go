package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/insightdelivered/card-statement-parser/internal/extractor"
	"github.com/insightdelivered/card-statement-parser/internal/parser"
	"github.com/insightdelivered/card-statement-parser/internal/writer"
)

// ToolName is the single tool exposed by the server.
const ToolName = "statement_parse"

// Server represents the MCP server instance
type Server struct {
	dispatcher  *parser.Dispatcher
	logger      *log.Logger
	maxFileSize int64
	mcpServer   *server.MCPServer
}

// NewServer creates a new MCP server instance. Logs must never go to
// stdout, which carries the protocol.
func NewServer(name, version string, dispatcher *parser.Dispatcher, logger *log.Logger, maxFileSize int64) (*Server, error) {
	if dispatcher == nil {
		return nil, errors.New("dispatcher cannot be nil")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Server{
		dispatcher:  dispatcher,
		logger:      logger,
		maxFileSize: maxFileSize,
		mcpServer:   server.NewMCPServer(name, version, server.WithToolCapabilities(false)),
	}
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	tool := mcp.NewTool(
		ToolName,
		mcp.WithDescription("Identify the issuer of an Indian credit card statement and extract "+
			"card last 4, variant, billing cycle, statement period, payment due date, total balance "+
			"and transaction count. Pass either a PDF path or already-extracted text."),
		mcp.WithString("path",
			mcp.Description("Full path to the statement PDF"),
		),
		mcp.WithString("password",
			mcp.Description("Password for encrypted PDFs"),
		),
		mcp.WithString("text",
			mcp.Description("Statement text, used instead of path"),
		),
		mcp.WithString("format",
			mcp.Description("Result format: json (default), yaml, csv or pretty"),
			mcp.Enum("json", "yaml", "csv", "pretty"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleParse)
}

func (s *Server) handleParse(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, err := writer.ParseFormat(request.GetString("format", string(writer.FormatJSON)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := request.GetString("text", "")
	if text == "" {
		path := request.GetString("path", "")
		if path == "" {
			return mcp.NewToolResultError("either path or text is required"), nil
		}
		if text, err = s.readPDF(path, request.GetString("password", "")); err != nil {
			s.logger.Warn("extraction failed", "path", path, "err", err)
			if errors.Is(err, extractor.ErrCredential) {
				return mcp.NewToolResultError("the PDF is encrypted; supply the correct password: " + err.Error()), nil
			}
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	fields := s.dispatcher.ClassifyAndExtract(text)
	s.logger.Info("parsed statement", "issuer", fields.Issuer)

	var out bytes.Buffer
	if err := writer.Render(&out, fields, format); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out.String()), nil
}

func (s *Server) readPDF(path, password string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("cannot access %s: %w", path, err)
	}
	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		return "", fmt.Errorf("%s is %d bytes; the limit is %d", path, info.Size(), s.maxFileSize)
	}
	return extractor.ExtractFile(path, password)
}

// Run serves the protocol over stdin and stdout until the client disconnects.
func (s *Server) Run(_ context.Context) error {
	s.logger.Info("serving MCP over stdio", "tool", ToolName)
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
