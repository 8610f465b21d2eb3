// Package main is the entry point for the EvolveUI execution server.
//
// The server executes untrusted user code (Python, JavaScript, Bash) in
// supervised subprocesses over the Model Context Protocol (MCP). It
// supports both stdio and HTTP transports and applies best-effort
// security screening, wall-clock timeouts with process-group
// termination, and output truncation. It is not a hardened sandbox.
//
// The application uses Uber's fx framework for dependency injection and
// lifecycle management, with zap for structured logging and viper for
// configuration.
package main
