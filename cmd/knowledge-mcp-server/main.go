// Command knowledge-mcp-server serves the knowledge base and the lead count
// over MCP on stdin/stdout.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"lead-assistant/internal/kbmcp"
	"lead-assistant/internal/knowledge"
	"lead-assistant/internal/logging"
	"lead-assistant/internal/storage"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load(".env")

	// production zap writes to stderr; stdout carries the MCP stream
	log, err := logging.New(envOr("LOG_LEVEL", "info"))
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	dir := envOr("KNOWLEDGE_DIR", "knowledge_base")
	kb, err := knowledge.Load(dir)
	if err != nil {
		log.Warn("knowledge base loaded partially", zap.String("dir", dir), zap.Error(err))
	}
	contacts, err := storage.NewContactStore(
		envOr("CONTACTS_JSON_PATH", "data/contacts.json"),
		envOr("CONTACTS_CSV_PATH", "data/contacts.csv"),
		log.Named("contacts"),
	)
	if err != nil {
		log.Fatal("failed to open contact store", zap.Error(err))
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "lead-assistant-knowledge",
		Version: "1.0.0",
	}, nil)
	kbmcp.New(kb, contacts).Register(server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("knowledge MCP server starting on stdio")
	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
