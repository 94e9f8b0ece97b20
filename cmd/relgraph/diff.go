package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"relgraph/internal/diffexport"
)

var diffCmd = &cobra.Command{
	Use:   "diff <revA> <revB>",
	Short: "Diff the reference graph between two git revisions",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	diffs, err := diffexport.Diff(context.Background(), cfg, args[0], args[1], newLogger(cfg))
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(diffs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, d := range diffs {
		fmt.Printf("%s:\n", d.File)
		for _, a := range d.Added {
			fmt.Printf("  + %s\n", a)
		}
		for _, r := range d.Deleted {
			fmt.Printf("  - %s\n", r)
		}
	}
	return nil
}
