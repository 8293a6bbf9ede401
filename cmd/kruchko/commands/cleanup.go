package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/db"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	cleanupAll       bool
	cleanupTool      string
	cleanupOlderThan time.Duration
	cleanupDownloads bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Prune invocation history and downloaded results",
	Long: `Prune local state:
  --all                 Delete every history row
  --tool <name>         Delete history rows for one tool
  --older-than <dur>    Delete history rows older than a duration (e.g. 720h)
  --downloads           Remove files from the download directory`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().BoolVar(&cleanupAll, "all", false, "Delete all history")
	cleanupCmd.Flags().StringVar(&cleanupTool, "tool", "", "Delete history for one tool")
	cleanupCmd.Flags().DurationVar(&cleanupOlderThan, "older-than", 0, "Delete history older than this")
	cleanupCmd.Flags().BoolVar(&cleanupDownloads, "downloads", false, "Remove downloaded results")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	if !cleanupAll && cleanupTool == "" && cleanupOlderThan <= 0 && !cleanupDownloads {
		return fmt.Errorf("must specify --all, --tool, --older-than, or --downloads")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cleanupDownloads {
		removed, err := removeDownloads(cfg.DownloadDir)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d downloaded files from %s\n", removed, cfg.DownloadDir)
	}

	if !cleanupAll && cleanupTool == "" && cleanupOlderThan <= 0 {
		return nil
	}

	repo, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	n, err := pruneHistory(context.Background(), repo)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d history rows\n", n)
	return nil
}

func pruneHistory(ctx context.Context, repo *db.Repository) (int64, error) {
	switch {
	case cleanupAll:
		return repo.DeleteAll(ctx)
	case cleanupTool != "":
		return repo.DeleteByTool(ctx, cleanupTool)
	default:
		return repo.DeleteOlderThan(ctx, time.Now().Add(-cleanupOlderThan))
	}
}

// removeDownloads deletes regular files directly inside dir.
func removeDownloads(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to read download directory")
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			fmt.Printf("Failed to remove %s: %v\n", entry.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}
