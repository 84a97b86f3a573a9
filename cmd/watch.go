package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/litmus/driver"
	"github.com/gnoswap-labs/litmus/internal"
	tt "github.com/gnoswap-labs/litmus/internal/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Re-check litmus tests whenever they are saved",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			args = []string{"."}
		}

		engine, err := driver.New(loadConfig(), driver.EngineOptions{}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize engine", zap.Error(err))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := engine.StartWatching(ctx, args, printWatchResult(logger, os.Stdout)); err != nil {
			logger.Fatal("Failed to start watching", zap.Error(err))
		}
		fmt.Printf("Watching %v for changes to *%s files\n", args, internal.TestExtension)

		<-ctx.Done()
		if err := engine.StopWatching(); err != nil {
			logger.Error("Error stopping watcher", zap.Error(err))
		}
	},
}

// printWatchResult renders each re-check as it completes. Handlers may
// run concurrently, so output is serialized.
func printWatchResult(logger *zap.Logger, out io.Writer) internal.WatchHandler {
	var mu sync.Mutex
	return func(filename string, outcomes []tt.Outcome, err error) {
		mu.Lock()
		defer mu.Unlock()

		result := &driver.Result{Outcomes: outcomes}
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, internal.Diagnose(filename, err))
		}
		fmt.Fprintf(out, "--- %s\n", filename)
		printResult(logger, result, out)
	}
}
