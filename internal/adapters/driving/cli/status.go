package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index statistics",
	Long:  `Prints the number of indexed notes, per-folder counts and the last sync time.`,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := initServices(cmd); err != nil {
		return err
	}

	stats, err := vectorStore.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading index stats: %w", err)
	}

	if statusJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Indexed notes: %d\n", stats.TotalNotes)

	if len(stats.Folders) > 0 {
		folders := make([]string, 0, len(stats.Folders))
		for f := range stats.Folders {
			folders = append(folders, f)
		}
		sort.Strings(folders)

		cmd.Println("Folders:")
		for _, f := range folders {
			name := f
			if name == "" {
				name = "(none)"
			}
			cmd.Printf("  %-20s %d\n", name, stats.Folders[f])
		}
	}

	if stats.LastSync.IsZero() {
		cmd.Println("Last sync: never")
	} else {
		cmd.Printf("Last sync: %s (%s ago)\n",
			stats.LastSync.Format(time.RFC3339),
			time.Since(stats.LastSync).Round(time.Second))
	}
	return nil
}
