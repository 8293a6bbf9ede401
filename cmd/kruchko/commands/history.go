package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/db"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	historyTool    string
	historyStatus  string
	historyLimit   int
	historySummary bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded proxy invocations",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyTool, "tool", "", "Only this tool")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "Only this status (succeeded, failed)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum rows")
	historyCmd.Flags().BoolVar(&historySummary, "summary", false, "Show counts per tool and status")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	repo, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx := context.Background()

	if historySummary {
		rows, err := repo.Summary(ctx)
		if err != nil {
			return errors.Wrap(err, "summary failed")
		}
		fmt.Printf("%-24s %-10s %8s %12s\n", "TOOL", "STATUS", "COUNT", "AVG MS")
		fmt.Println("-----------------------------------------------------------")
		for _, r := range rows {
			fmt.Printf("%-24s %-10s %8d %12.0f\n", r.Tool, r.Status, r.Count, r.AvgDurationMS)
		}
		return nil
	}

	invocations, err := repo.List(ctx, historyFilter())
	if err != nil {
		return errors.Wrap(err, "list failed")
	}

	if len(invocations) == 0 {
		fmt.Println("No invocations found")
		return nil
	}

	fmt.Printf("%-20s %-24s %-10s %-6s %8s %-40s\n", "TIME", "TOOL", "STATUS", "HTTP", "MS", "OUTPUT / ERROR")
	fmt.Println("----------------------------------------------------------------------------------------------------------------")

	for _, inv := range invocations {
		detail := inv.Output
		if inv.ErrorMessage != "" {
			detail = inv.ErrorMessage
		}
		fmt.Printf("%-20s %-24s %-10s %-6d %8d %-40s\n",
			time.UnixMilli(inv.CreatedAt).Format("2006-01-02 15:04:05"),
			inv.Tool, inv.Status, inv.HTTPStatus, inv.DurationMS, truncate(detail, 40))
	}

	return nil
}

func historyFilter() db.ListFilter {
	return db.ListFilter{
		Tool:   historyTool,
		Status: historyStatus,
		Limit:  historyLimit,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
