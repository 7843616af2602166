// Package cmd provides the meshctl CLI commands.
//
// Commands:
//   - fetch: guarded HTTP request through the outbound gateway
//   - health: availability probe against an endpoint
//   - check-url: offline SSRF verdict for a URL (no network)
//
// Every outbound call funnels through internal/netguard; the commands here
// are thin orchestration around it.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/meshops/meshctl/internal/audit"
	"github.com/meshops/meshctl/internal/config"
	"github.com/meshops/meshctl/internal/correlation"
	"github.com/meshops/meshctl/internal/log"
	"github.com/meshops/meshctl/internal/netguard"
)

// Execute is the main entry point for the meshctl CLI application.
func Execute() error {
	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "fetch":
		return runFetch(os.Args[2:])
	case "health":
		return runHealth(os.Args[2:])
	case "check-url":
		return runCheckURL(os.Args[2:])
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// newRuntime loads configuration and assembles the gateway client with its
// collaborators. Each invocation gets a fresh correlation ID so every log
// line and audit event of this run lines up.
func newRuntime() (*config.Config, *netguard.Client, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger := log.New(log.Config{Level: cfg.SlogLevel(), JSON: cfg.LogJSON})
	slog.SetDefault(logger)

	correlation.SetAmbient(correlation.NewID())

	var sink audit.Sink = audit.NewSlogSink(logger.With("component", "audit"))
	cleanup := func() {}
	if cfg.Audit.LogPath != "" {
		jsonl, err := audit.NewJSONLSink(cfg.Audit.LogPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening audit log: %w", err)
		}
		sink = jsonl
		cleanup = func() {
			if err := jsonl.Close(); err != nil {
				logger.Warn("closing audit log", "error", err)
			}
		}
	}

	client := netguard.New(netguard.Options{
		Logger:          logger.With("component", "netguard"),
		Auditor:         audit.NewEmitter(sink, logger),
		Timeout:         cfg.RequestTimeout,
		MaxResponseSize: cfg.MaxResponseSize,
		MaxRedirects:    cfg.MaxRedirects,
		UserAgent:       cfg.UserAgent,
	})

	return cfg, client, cleanup, nil
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("meshctl - CLI companion for operating the Mesh platform")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  meshctl fetch <url>       Issue a guarded HTTP request")
	fmt.Println("  meshctl health <url>      Probe endpoint availability")
	fmt.Println("  meshctl check-url <url>   Validate a URL without touching the network")
	fmt.Println("  meshctl version           Show version information")
	fmt.Println("  meshctl help              Show this help")
	fmt.Println()
	fmt.Println("fetch flags:")
	fmt.Println("  --method <verb>           HTTP method (default GET)")
	fmt.Println("  --timeout <duration>      Per-call timeout, clamped to 1s..60s")
	fmt.Println("  --header k=v              Request header (repeatable)")
	fmt.Println("  --audit                   Audit this call's outcome")
	fmt.Println("  --allow-private           Permit private/internal targets (schemes")
	fmt.Println("                            like file: stay blocked regardless)")
	fmt.Println()
	fmt.Println("Configuration: ~/.meshctl/config.yaml, MESHCTL_* environment variables")
}
