// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package implements an MCP-compliant server that exposes tools
// backed by the code-execution engine. It uses the mark3labs/mcp-go library to
// handle the protocol details and provides the execute_code tool as the primary
// interface, plus validate_code, detect_language, get_language_info and
// get_service_status for validation and diagnostics.
//
// The server supports both stdio and HTTP transports as configured by the
// application configuration.
//
// Usage:
//
//	server, err := mcpserver.New(config, logger, executionService)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = server.ServeStdio() // or server.ServeHTTP()
package mcpserver
