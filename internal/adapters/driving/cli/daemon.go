package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/notera-io/notera-cli/internal/core/services"
	"github.com/notera-io/notera-cli/internal/logger"
)

var daemonInterval time.Duration

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background sync loop",
	Long: `Keeps the index continuously in sync: an incremental pass runs on
startup, then on a fixed interval, and immediately whenever the export
file changes on disk.

Stop with Ctrl-C.`,
	RunE: runDaemon,
}

func init() {
	daemonCmd.Flags().DurationVar(&daemonInterval, "interval", 0,
		"sync interval (default 10m, or daemon.interval from config)")
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if err := initServices(cmd); err != nil {
		return err
	}

	cfg := services.DefaultSchedulerConfig()
	if daemonInterval > 0 {
		cfg.Interval = daemonInterval
	} else if minutes := configStore.GetInt("daemon.interval"); minutes > 0 {
		cfg.Interval = time.Duration(minutes) * time.Minute
	}

	scheduler := services.NewScheduler(cfg, syncRunner)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Kick the scheduler when the export file is rewritten.
	if pather, ok := noteExporter.(interface{ Path() string }); ok {
		closeWatch, err := watchExport(ctx, pather.Path(), scheduler)
		if err != nil {
			logger.Warn("Export watch disabled: %v", err)
		} else {
			defer closeWatch()
		}
	}

	cmd.Printf("Daemon running (interval %s). Press Ctrl-C to stop.\n", cfg.Interval)

	err := scheduler.Start(ctx)
	if err == context.Canceled {
		cmd.Println("Daemon stopped.")
		return nil
	}
	return err
}

// watchExport watches the export file's directory and kicks the scheduler
// whenever the file is written. The directory is watched rather than the
// file because exporters replace the file atomically.
func watchExport(ctx context.Context, exportPath string, scheduler *services.Scheduler) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	logger.Info("Watching %s for export changes", dir)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != exportPath {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					logger.Debug("Export changed (%s), kicking sync", event.Op)
					scheduler.Kick()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error: %v", err)
			}
		}
	}()

	return func() { _ = watcher.Close() }, nil
}
