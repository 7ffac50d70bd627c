package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/formlab/annotate/internal/config"
	"github.com/formlab/annotate/internal/engine"
)

// TestServerIntegration walks the authoring workflow end to end through
// the handlers: validate a document, then bind data into it.
func TestServerIntegration(t *testing.T) {
	docPath := writeTestFile(t, "f1040.json", testDocument)
	dataPath := writeTestFile(t, "taxpayer.json", testDataTree)

	cfg := testConfig()
	cfg.ServerName = "integration-test-server"
	server := newTestServer(t, cfg)

	// Validate first
	validateReq := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"path": docPath,
			},
		},
	}
	validateResult, err := server.handleFormValidateFile(context.Background(), validateReq)
	if err != nil {
		t.Fatalf("validate handler failed: %v", err)
	}
	if text := extractTextFromResult(validateResult); !strings.Contains(text, "Result: VALID") {
		t.Fatalf("expected valid document before binding, got: %s", text)
	}

	// Then bind
	bindReq := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"document_path": docPath,
				"data_path":     dataPath,
			},
		},
	}
	bindResult, err := server.handleFormBindFile(context.Background(), bindReq)
	if err != nil {
		t.Fatalf("bind handler failed: %v", err)
	}
	text := extractTextFromResult(bindResult)
	if !strings.Contains(text, "ok: 1") {
		t.Errorf("expected one ok instance in status summary, got: %s", text)
	}
}

func TestServerToolsRegistration(t *testing.T) {
	server := newTestServer(t, testConfig())

	// Test that tools are properly registered by checking the MCP server
	if server.mcpServer == nil {
		t.Fatal("MCP server should be initialized")
	}

	// The mark3labs library doesn't expose registered tools directly,
	// but we can verify the server was created successfully
	// which means tools were registered without errors
}

func TestServerConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		config *config.Config
	}{
		{
			name:   "valid stdio config",
			config: testConfig(),
		},
		{
			name: "valid server config",
			config: &config.Config{
				Mode:        "server",
				Host:        "127.0.0.1",
				Port:        8080,
				Workers:     2,
				PDFBackend:  "pdfcpu",
				Version:     "1.0.0",
				ServerName:  "test-server",
				LogLevel:    "info",
				MaxFileSize: 1024 * 1024,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, tt.config)
			if server == nil {
				t.Error("expected server to be created for valid config")
			}
		})
	}
}

func TestServerErrorHandling(t *testing.T) {
	// Test with nil engine service (should not panic)
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Server creation with nil service caused panic: %v", r)
		}
	}()

	_, err := NewServer(testConfig(), nil)
	if err == nil {
		t.Error("expected error with nil service")
	}

	// An engine with a broken configuration must not produce a server either.
	_, err = engine.NewService(engine.Options{MaxFileSize: 0})
	if err == nil {
		t.Error("expected error for non-positive max file size")
	}
}
