// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package implements an MCP-compliant server that exposes the
// code-execution engine as tools. It uses the mark3labs/mcp-go library to
// handle the protocol details; execute_code is the primary tool, with
// validate_code, detect_language, get_language_info and get_service_status
// alongside it for validation and diagnostics.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/bfforex/EvolveUI/config"
	"github.com/bfforex/EvolveUI/executor"
)

// ExecutionService is the facade surface the server needs. Satisfied
// by *executor.Service; narrowed to an interface so tests can stub it.
type ExecutionService interface {
	Execute(ctx context.Context, req executor.Request) executor.Result
	Validate(ctx context.Context, code, language string) executor.ValidationResult
	DetectLanguage(code string) string
	LanguageInfo(ctx context.Context, language string) (executor.LanguageInfo, error)
	Status(ctx context.Context) executor.Status
}

// MCPServer represents the MCP server
type MCPServer struct {
	config    *config.Config
	logger    *zap.Logger
	exec      ExecutionService
	mcpServer *server.MCPServer
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger, exec ExecutionService) (*MCPServer, error) {
	s := &MCPServer{
		config: cfg,
		logger: logger,
		exec:   exec,
	}

	// Log configuration parameters on startup
	logger.Info("configuration loaded",
		zap.String("server.transport", cfg.Server.Transport),
		zap.Int("server.http_port", cfg.Server.HTTPPort),
		zap.Int("executor.workers", cfg.Executor.Workers),
		zap.Int("executor.max_output_length", cfg.Executor.MaxOutputLength),
		zap.Int("executor.max_code_bytes", cfg.Executor.MaxCodeBytes),
		zap.Int("languages", len(cfg.Languages)),
	)

	s.mcpServer = server.NewMCPServer("evolveui-executor", "A sandboxed code execution server")

	s.registerExecuteCodeTool()
	s.registerValidateCodeTool()
	s.registerDetectLanguageTool()
	s.registerLanguageInfoTool()
	s.registerServiceStatusTool()

	return s, nil
}

// executeResponse is the wire shape of an execute_code result.
type executeResponse struct {
	Success         bool                 `json:"success"`
	Language        string               `json:"language"`
	Stdout          string               `json:"stdout"`
	Stderr          string               `json:"stderr"`
	ReturnCode      int                  `json:"return_code"`
	ExecutionTime   float64              `json:"execution_time"`
	StdoutTruncated bool                 `json:"stdout_truncated,omitempty"`
	StderrTruncated bool                 `json:"stderr_truncated,omitempty"`
	TimeoutSec      float64              `json:"timeout,omitempty"`
	Error           string               `json:"error,omitempty"`
	ErrorKind       string               `json:"error_kind,omitempty"`
	Violations      []executor.Violation `json:"violations,omitempty"`
}

func (s *MCPServer) registerExecuteCodeTool() {
	tool := mcp.Tool{
		Name:        "execute_code",
		Description: "Execute a code snippet in a sandboxed subprocess and return its captured output. Security screening is best-effort pattern filtering, not hardened isolation.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "Source code to execute",
				},
				"language": map[string]any{
					"type":        "string",
					"description": "Language identifier; omit to auto-detect",
					"enum":        []string{"python", "javascript", "bash"},
				},
				"stdin": map[string]any{
					"type":        "string",
					"description": "Text piped to the program's standard input (optional)",
				},
				"timeout_sec": map[string]any{
					"type":        "number",
					"description": "Requested wall-clock timeout in seconds; clamped to the language's ceiling (optional)",
				},
			},
			Required: []string{"code"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleExecuteCode)
}

func (s *MCPServer) handleExecuteCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return nil, fmt.Errorf("code parameter is required: %w", err)
	}

	language := request.GetString("language", "")
	stdin := request.GetString("stdin", "")
	timeoutSec := request.GetFloat("timeout_sec", 0)

	s.logger.Info("code execution requested",
		zap.String("language", language),
		zap.Int("code_len", len(code)),
		zap.Bool("has_stdin", stdin != ""))

	result := s.exec.Execute(ctx, executor.Request{
		Code:     code,
		Language: language,
		Stdin:    stdin,
		Timeout:  time.Duration(timeoutSec * float64(time.Second)),
	})

	s.logger.Info("code execution completed",
		zap.String("language", result.Language),
		zap.Bool("success", result.Success),
		zap.String("error_kind", string(result.ErrorKind)),
		zap.Int("return_code", result.ReturnCode),
		zap.Duration("execution_time", result.ExecutionTime))

	resp := executeResponse{
		Success:         result.Success,
		Language:        result.Language,
		Stdout:          result.Stdout,
		Stderr:          result.Stderr,
		ReturnCode:      result.ReturnCode,
		ExecutionTime:   result.ExecutionTime.Seconds(),
		StdoutTruncated: result.StdoutTruncated,
		StderrTruncated: result.StderrTruncated,
		TimeoutSec:      result.Timeout.Seconds(),
		Error:           result.ErrorMessage,
		ErrorKind:       string(result.ErrorKind),
		Violations:      result.Violations,
	}

	return jsonToolResult(resp)
}

func (s *MCPServer) registerValidateCodeTool() {
	tool := mcp.Tool{
		Name:        "validate_code",
		Description: "Validate a code snippet without executing it: security screening plus a syntax-only parse where available.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "Source code to validate",
				},
				"language": map[string]any{
					"type":        "string",
					"description": "Language identifier",
					"enum":        []string{"python", "javascript", "bash"},
				},
			},
			Required: []string{"code", "language"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleValidateCode)
}

func (s *MCPServer) handleValidateCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return nil, fmt.Errorf("code parameter is required: %w", err)
	}
	language, err := request.RequireString("language")
	if err != nil {
		return nil, fmt.Errorf("language parameter is required: %w", err)
	}

	s.logger.Info("code validation requested", zap.String("language", language))

	return jsonToolResult(s.exec.Validate(ctx, code, language))
}

func (s *MCPServer) registerDetectLanguageTool() {
	tool := mcp.Tool{
		Name:        "detect_language",
		Description: "Heuristically detect the language of a code snippet.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "Source code to classify",
				},
			},
			Required: []string{"code"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleDetectLanguage)
}

func (s *MCPServer) handleDetectLanguage(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return nil, fmt.Errorf("code parameter is required: %w", err)
	}

	return jsonToolResult(map[string]string{"language": s.exec.DetectLanguage(code)})
}

func (s *MCPServer) registerLanguageInfoTool() {
	tool := mcp.Tool{
		Name:        "get_language_info",
		Description: "Describe one supported language: launch command, file extension, timeouts, and runtime availability.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"language": map[string]any{
					"type":        "string",
					"description": "Language identifier",
				},
			},
			Required: []string{"language"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleLanguageInfo)
}

// languageInfoResponse flattens durations into seconds for the wire.
type languageInfoResponse struct {
	Language      string   `json:"language"`
	Command       []string `json:"command"`
	FileExtension string   `json:"file_extension"`
	TimeoutSec    float64  `json:"timeout"`
	MaxTimeoutSec float64  `json:"max_timeout"`
	Available     bool     `json:"available"`
}

func (s *MCPServer) handleLanguageInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	language, err := request.RequireString("language")
	if err != nil {
		return nil, fmt.Errorf("language parameter is required: %w", err)
	}

	info, err := s.exec.LanguageInfo(ctx, language)
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{Type: "text", Text: err.Error()},
			},
			IsError: true,
		}, nil
	}

	return jsonToolResult(languageInfoResponse{
		Language:      info.Language,
		Command:       info.Command,
		FileExtension: info.FileExtension,
		TimeoutSec:    info.Timeout.Seconds(),
		MaxTimeoutSec: info.MaxTimeout.Seconds(),
		Available:     info.Available,
	})
}

func (s *MCPServer) registerServiceStatusTool() {
	tool := mcp.Tool{
		Name:        "get_service_status",
		Description: "Report supported languages, runtime availability, and engine configuration.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}

	s.mcpServer.AddTool(tool, s.handleServiceStatus)
}

func (s *MCPServer) handleServiceStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonToolResult(s.exec.Status(ctx))
}

// jsonToolResult marshals v into a single text content block.
func jsonToolResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: string(data)},
		},
	}, nil
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP starts the server on HTTP
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.HTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port))

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	return httpServer.Start(fmt.Sprintf(":%d", port))
}

// GetMCPServer returns the underlying MCP server for fx
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
