package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gigstage/console/chat-bridge/internal/chat"
	"github.com/gigstage/console/chat-bridge/internal/cli"
	"github.com/gigstage/console/chat-bridge/internal/config"
	"github.com/gigstage/console/chat-bridge/internal/domain"
	"github.com/gigstage/console/chat-bridge/internal/gateway"
	"github.com/gigstage/console/chat-bridge/internal/gateway/demo"
	"github.com/gigstage/console/chat-bridge/internal/logger"
	mcpTransport "github.com/gigstage/console/chat-bridge/internal/transport/mcp"
)

// RunMode defines how the application runs
type RunMode string

const (
	RunModeInteractive RunMode = "interactive"
	RunModeHeadless    RunMode = "headless"
	RunModeServe       RunMode = "serve"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.LogLevel)
	log := logger.Module("main")

	user := domain.Identity{
		ID:    cfg.UserID,
		Name:  cfg.UserName,
		Email: cfg.UserEmail,
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	gw, err := buildGateway(cfg, user)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize gateway")
	}

	eventBus := domain.NewEventBus()
	ctrl := chat.NewController(gw, user, eventBus, logger.Module("chat"))

	ctx := context.Background()

	switch RunMode(cfg.Mode) {
	case RunModeServe:
		runServeMode(cfg, ctrl, log)
	case RunModeHeadless:
		runHeadlessMode(ctx, ctrl, eventBus, log)
	default:
		runInteractiveMode(ctx, ctrl, eventBus, log)
	}
}

func buildGateway(cfg *config.Config, user domain.Identity) (gateway.Gateway, error) {
	if cfg.Offline {
		db, err := demo.Open(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open demo database: %w", err)
		}
		return demo.NewGateway(db, user), nil
	}
	return gateway.NewRESTGateway(cfg.GatewayURL, cfg.Token), nil
}

func runServeMode(cfg *config.Config, ctrl *chat.Controller, log zerolog.Logger) {
	log.Info().
		Str("mcp_addr", cfg.MCPAddress).
		Bool("offline", cfg.Offline).
		Msg("chat bridge starting")

	mcpServer := mcpTransport.NewServer(ctrl, mcpTransport.ServerConfig{
		Address: cfg.MCPAddress,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := mcpServer.Start(); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	// Print ready message for subprocess coordination
	fmt.Println("ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := mcpServer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("MCP server stop error")
	}
	log.Info().Msg("shutdown complete")
}

func runInteractiveMode(ctx context.Context, ctrl *chat.Controller, bus domain.EventBus, log zerolog.Logger) {
	handler := cli.NewCommandHandler(ctrl, bus)
	interactiveCLI := cli.NewInteractiveCLI(handler)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	if err := interactiveCLI.Run(ctx); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("CLI error")
	}
}

func runHeadlessMode(ctx context.Context, ctrl *chat.Controller, bus domain.EventBus, log zerolog.Logger) {
	handler := cli.NewCommandHandler(ctrl, bus)
	headlessCLI := cli.NewHeadlessCLI(handler)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	if err := headlessCLI.Run(ctx); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("CLI error")
	}
}
