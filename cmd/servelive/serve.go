package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/aellingwood/servelive/internal/config"
	"github.com/aellingwood/servelive/internal/server"
	"github.com/spf13/cobra"
)

// runServe implements the root command: resolve the directory to serve,
// load configuration, apply flag overrides, and run the server until a
// termination signal arrives.
func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load config.
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// 2. Apply CLI flag overrides on top of the file values.
	overrides := map[string]any{}
	if cmd.Flags().Changed("address") {
		v, _ := cmd.Flags().GetString("address")
		overrides["address"] = v
	}
	if cmd.Flags().Changed("event-path") {
		v, _ := cmd.Flags().GetString("event-path")
		overrides["eventPath"] = v
	}
	if cmd.Flags().Changed("debounce") {
		v, _ := cmd.Flags().GetDuration("debounce")
		overrides["debounce"] = v
	}
	if v, _ := cmd.Flags().GetBool("no-live-reload"); v {
		overrides["livereload"] = false
	}
	if v, _ := cmd.Flags().GetBool("no-preview"); v {
		overrides["preview"] = false
	}
	cfg.WithOverrides(overrides)

	if err := cfg.Validate(); err != nil {
		return err
	}

	// 3. Resolve the directory to serve.
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")

	// 4. Create the server.
	srv, err := server.New(server.Options{
		Address:      cfg.Address,
		Root:         root,
		EventPath:    cfg.EventPath,
		Debounce:     cfg.Debounce,
		LiveReload:   cfg.LiveReload,
		Preview:      cfg.Preview.Enabled,
		PreviewStyle: cfg.Preview.Style,
		Verbose:      verbose,
	})
	if err != nil {
		return err
	}

	// 5. Handle graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	// 6. Run (blocks until shutdown).
	return srv.Start(ctx)
}

// resolveRoot turns the optional positional argument into an absolute
// directory path, defaulting to the current directory.
func resolveRoot(args []string) (string, error) {
	var root string
	if len(args) == 1 {
		root = args[0]
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("determining current directory: %w", err)
		}
		root = wd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("serve root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}

	return abs, nil
}
