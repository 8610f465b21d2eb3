package mcpserver

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bfforex/EvolveUI/config"
	"github.com/bfforex/EvolveUI/executor"
)

// MockExecutionService implements ExecutionService for testing
type MockExecutionService struct {
	executeResult  executor.Result
	validateResult executor.ValidationResult
	detected       string
	languageInfo   executor.LanguageInfo
	languageErr    error
	status         executor.Status

	lastRequest executor.Request
}

func (m *MockExecutionService) Execute(_ context.Context, req executor.Request) executor.Result {
	m.lastRequest = req
	return m.executeResult
}

func (m *MockExecutionService) Validate(_ context.Context, _, _ string) executor.ValidationResult {
	return m.validateResult
}

func (m *MockExecutionService) DetectLanguage(_ string) string {
	return m.detected
}

func (m *MockExecutionService) LanguageInfo(_ context.Context, _ string) (executor.LanguageInfo, error) {
	return m.languageInfo, m.languageErr
}

func (m *MockExecutionService) Status(_ context.Context) executor.Status {
	return m.status
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Transport: "stdio",
			HTTPPort:  8080,
		},
		Logging: config.LoggingConfig{
			Mode:  "production",
			Level: "info",
		},
		Executor: config.ExecutorConfig{
			Workers:         2,
			MaxOutputLength: 10000,
			MaxCodeBytes:    10240,
		},
		Languages: map[string]config.Language{
			"python": {
				Command:       []string{"python3", "-c"},
				Extension:     ".py",
				Inline:        true,
				TimeoutSec:    30,
				MaxTimeoutSec: 60,
			},
		},
	}
}

func TestNewMCPServer(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := testConfig()
	mockExec := &MockExecutionService{}

	server, err := New(cfg, logger, mockExec)
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, cfg, server.config)
	assert.Equal(t, logger, server.logger)
	assert.Equal(t, mockExec, server.exec)
	assert.NotNil(t, server.GetMCPServer())
}

func TestExecuteResponseShape(t *testing.T) {
	mockExec := &MockExecutionService{
		executeResult: executor.Result{
			Success:       true,
			Language:      "python",
			Stdout:        "hi\n",
			ReturnCode:    0,
			ExecutionTime: 125 * time.Millisecond,
		},
	}
	server, err := New(testConfig(), zaptest.NewLogger(t), mockExec)
	require.NoError(t, err)
	require.NotNil(t, server)

	resp := executeResponse{
		Success:       mockExec.executeResult.Success,
		Language:      mockExec.executeResult.Language,
		Stdout:        mockExec.executeResult.Stdout,
		ReturnCode:    mockExec.executeResult.ReturnCode,
		ExecutionTime: mockExec.executeResult.ExecutionTime.Seconds(),
	}

	result, err := jsonToolResult(resp)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "text", tc.Type)
	assert.Contains(t, tc.Text, `"success":true`)
	assert.Contains(t, tc.Text, `"stdout":"hi\n"`)
	assert.Contains(t, tc.Text, `"execution_time":0.125`)
}

func TestJSONToolResult(t *testing.T) {
	result, err := jsonToolResult(map[string]string{"language": "python"})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	assert.False(t, result.IsError)
}
