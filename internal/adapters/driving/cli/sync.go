package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/notera-io/notera-cli/internal/core/domain"
	"github.com/notera-io/notera-cli/internal/core/ports/driving"
)

var (
	syncFull bool
	syncJSON bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the index with the latest notes export",
	Long: `Compares the current notes export against the index and applies the
difference: new notes are embedded and added, edited notes re-embedded,
and notes removed from the source deleted from the index.

With --full every note is re-embedded regardless of its change state,
which is useful after switching embedding models.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncFull, "full", false, "re-embed every note")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "output the sync report as JSON")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if err := initServices(cmd); err != nil {
		return err
	}

	mode := domain.SyncModeIncremental
	if syncFull {
		mode = domain.SyncModeFull
	}

	if !syncJSON {
		cmd.Printf("Syncing notes (%s)...\n", mode)
	}

	report, err := syncWithProgress(cmd, mode)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if syncJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Sync complete: %d added, %d updated, %d deleted, %d unchanged\n",
		report.Added, report.Updated, report.Deleted, report.Unchanged)
	if report.Failed > 0 {
		cmd.Printf("%s\n", styled(styleNotice, fmt.Sprintf("%d notes failed:", report.Failed)))
		for _, msg := range report.Errors {
			cmd.Printf("  %s\n", msg)
		}
	}
	return nil
}

// syncWithProgress runs the sync pass while printing progress updates.
func syncWithProgress(cmd *cobra.Command, mode domain.SyncMode) (*driving.SyncReport, error) {
	type outcome struct {
		report *driving.SyncReport
		err    error
	}
	resultCh := make(chan outcome, 1)
	go func() {
		report, err := syncRunner.Sync(cmd.Context(), mode)
		resultCh <- outcome{report, err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case result := <-resultCh:
			if lastCount > 0 && !syncJSON {
				cmd.Printf("\r")
			}
			return result.report, result.err
		case <-ticker.C:
			status := syncRunner.Status()
			if !syncJSON && status.NotesProcessed > lastCount {
				cmd.Printf("\rProcessing... %d notes", status.NotesProcessed)
				lastCount = status.NotesProcessed
			}
		}
	}
}
