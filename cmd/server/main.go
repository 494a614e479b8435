package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quickedit/internal/app"
	"quickedit/internal/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file (default: app.yaml)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		log.Fatal(err)
	}
}

// run serves until ctx is cancelled or the listener fails. The app is always
// closed before it returns.
func run(ctx context.Context, configPath string) error {
	// 1. Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log.Printf("Config loaded (port: %d, db: %s, metadata: %s)", cfg.Server.Port, cfg.Database.Driver, cfg.Metadata.Source)

	// 2. Connect, bootstrap system tables, load metadata
	a, err := app.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer a.Close()
	log.Printf("Registry ready (%d entities)", a.Registry.Len())

	// 3. Create Fiber app with routes
	server := app.NewServer(a)

	// 4. Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)

	errc := make(chan error, 1)
	go func() { errc <- server.Listen(addr) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Printf("Shutting down")
	if err := server.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errc
}
