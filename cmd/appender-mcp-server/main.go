package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"file-appender/internal/app"
	"file-appender/internal/config"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to build agents: %v", err)
	}
	defer a.Close()

	log.Printf("🚀 Starting file appender MCP server with %d agent(s)", len(a.Runner.IDs()))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "file-appender-mcp",
		Version: "1.0.0",
	}, nil)
	registerTools(server, &AppenderTools{runner: a.Runner})

	log.Printf("📋 Registered MCP tools: append_text, agent_status")
	log.Printf("🔗 Starting MCP server on stdin/stdout...")

	transport := mcp.NewStdioTransport()
	if err := server.Run(ctx, transport); err != nil {
		log.Fatalf("❌ MCP Server failed: %v", err)
	}
}
