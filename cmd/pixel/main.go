package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/pixel/internal/app"
	"github.com/vk/pixel/internal/cli"
	"github.com/vk/pixel/internal/config"
)

// main is the entrypoint for the pixel application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	inv, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	pixelApp, err := app.NewApp(outW, errW, inv.Config, config.NewHCLLoader())
	if err != nil {
		return err
	}

	switch inv.Command {
	case cli.CmdPalette:
		return pixelApp.ListPalettes(ctx)
	case cli.CmdCheck:
		return pixelApp.CheckPalette(ctx, inv.Args[0])
	case cli.CmdRun:
		return pixelApp.Run(ctx, inv.Args[0], inv.Args[1], inv.Options)
	case cli.CmdBatch:
		_, err := pixelApp.Batch(ctx, inv.Args[0], inv.Args[1], inv.Options)
		return err
	default:
		return fmt.Errorf("unhandled command: %s", inv.Command)
	}
}
