package config

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	Mode         string
	GatewayURL   string
	Token        string
	UserID       string
	UserName     string
	UserEmail    string
	Offline      bool
	DatabasePath string
	MCPAddress   string
	LogLevel     string
}

func Load() *Config {
	// A .env next to the binary is a convenience for local runs; missing is fine.
	_ = godotenv.Load()

	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".gigstage-chat")

	cfg := &Config{}

	flag.StringVar(&cfg.Mode, "mode", "interactive", "Run mode: interactive, headless, or serve")
	flag.StringVar(&cfg.GatewayURL, "gateway", getEnv("CHAT_GATEWAY_URL", "http://localhost:8080"), "Chat gateway base URL")
	flag.StringVar(&cfg.Token, "token", getEnv("CHAT_TOKEN", ""), "Bearer token for the gateway")
	flag.StringVar(&cfg.UserID, "user-id", getEnv("CHAT_USER_ID", ""), "Console user id")
	flag.StringVar(&cfg.UserName, "user-name", getEnv("CHAT_USER_NAME", "Admin"), "Console user display name")
	flag.StringVar(&cfg.UserEmail, "user-email", getEnv("CHAT_USER_EMAIL", "admin@gigstage.io"), "Console user email")
	flag.BoolVar(&cfg.Offline, "offline", getEnv("CHAT_OFFLINE", "") != "", "Use the local demo gateway instead of the remote one")
	flag.StringVar(&cfg.DatabasePath, "db", getEnv("CHAT_DEMO_DB", filepath.Join(dataDir, "demo.db")), "Demo gateway database path")
	flag.StringVar(&cfg.MCPAddress, "mcp-addr", getEnv("CHAT_MCP_ADDRESS", "127.0.0.1:8090"), "MCP SSE server address")
	flag.StringVar(&cfg.LogLevel, "log-level", getEnv("CHAT_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")

	flag.Parse()

	if cfg.Offline {
		os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755)
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
