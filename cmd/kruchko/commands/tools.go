package commands

import (
	"fmt"
	"strings"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/catalog"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List available tools",
	RunE:  runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Default()
	if err != nil {
		return errors.Wrap(err, "catalog load failed")
	}

	fmt.Printf("%-24s %-10s %-14s %-9s %s\n", "TOOL", "BACKEND", "REQUIRES", "RESULT", "MODEL")
	fmt.Println("--------------------------------------------------------------------------------------------")

	for _, t := range cat.All() {
		fields := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = string(f)
		}
		fmt.Printf("%-24s %-10s %-14s %-9s %s\n",
			t.Name, t.Backend, strings.Join(fields, ","), t.Result, modelName(t.Model))
	}

	return nil
}

// modelName drops the version hash from "owner/name:version".
func modelName(model string) string {
	name, _, _ := strings.Cut(model, ":")
	return name
}
