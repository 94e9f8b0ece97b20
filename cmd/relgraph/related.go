package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"relgraph/internal/engine"
)

var relatedCmd = &cobra.Command{
	Use:   "related <file>",
	Short: "List files related to <file>, sorted by descending score",
	Args:  cobra.ExactArgs(1),
	RunE:  runRelated,
}

func init() {
	rootCmd.AddCommand(relatedCmd)
}

func runRelated(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	res, err := engine.Build(context.Background(), cfg, newLogger(cfg))
	if err != nil {
		return err
	}

	related := res.Graph.RelatedFiles(args[0])
	if outputFormat == "json" {
		data, err := json.MarshalIndent(related, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(related) == 0 {
		fmt.Println("no related files")
		return nil
	}
	for _, r := range related {
		fmt.Printf("%-6d %s  %v\n", r.Score, r.Name, r.RelatedSymbols)
	}
	return nil
}
