// Package main is the entry point for the EvolveUI execution server.
//
// The server exposes a sandboxed code-execution engine over the Model
// Context Protocol (MCP): snippets in Python, JavaScript or Bash are
// screened, run in supervised subprocesses with hard timeouts, and
// their captured output returned. Both stdio and HTTP transports are
// supported.
//
// The application uses Uber's fx framework for dependency injection and
// lifecycle management, with zap for structured logging and viper for
// configuration.
package main

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/bfforex/EvolveUI/config"
	"github.com/bfforex/EvolveUI/executor"
	"github.com/bfforex/EvolveUI/logger"
	"github.com/bfforex/EvolveUI/mcpserver"
)

// newExecutionService maps the application config onto the engine's
// own Config and constructs the facade. Temp-dir creation failure
// surfaces here and aborts startup.
func newExecutionService(cfg *config.Config, log *zap.Logger) (*executor.Service, error) {
	profiles := make(map[string]executor.Profile, len(cfg.Languages))
	for name, lang := range cfg.Languages {
		profiles[name] = executor.Profile{
			Language:       name,
			Command:        lang.Command,
			Inline:         lang.Inline,
			Extension:      lang.Extension,
			DefaultTimeout: lang.Timeout(),
			MaxTimeout:     lang.MaxTimeout(),
			CheckCommand:   lang.CheckCommand,
		}
	}

	return executor.NewService(log, executor.Config{
		Workers:         cfg.Executor.Workers,
		MaxOutputLength: cfg.Executor.MaxOutputLength,
		MaxCodeBytes:    cfg.Executor.MaxCodeBytes,
		TempDir:         cfg.Executor.TempDir,
		Profiles:        profiles,
	})
}

func main() {
	app := fx.New(
		// Provide dependencies
		fx.Provide(
			config.New,
			logger.NewFromConfig,
			newExecutionService,
			func(s *executor.Service) mcpserver.ExecutionService { return s },
			mcpserver.New,
		),

		// Tie the worker pool and temp dir to the fx lifecycle
		fx.Invoke(
			func(lc fx.Lifecycle, svc *executor.Service) {
				lc.Append(fx.Hook{
					OnStart: func(context.Context) error {
						svc.Start()
						return nil
					},
					OnStop: func(context.Context) error {
						return svc.Close()
					},
				})
			},
		),

		// Start the appropriate transport based on config
		fx.Invoke(
			func(cfg *config.Config, server *mcpserver.MCPServer) {
				switch cfg.Server.Transport {
				case "stdio":
					go func() {
						if err := server.ServeStdio(); err != nil {
							panic(err)
						}
					}()
				case "http":
					go func() {
						if err := server.ServeHTTP(); err != nil {
							panic(err)
						}
					}()
				default:
					panic("unsupported transport: " + cfg.Server.Transport)
				}
			},
		),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	app.Run()
}
