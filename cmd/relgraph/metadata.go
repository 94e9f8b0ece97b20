package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"relgraph/internal/engine"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata <file>",
	Short: "Show every DEF/REF symbol site in <file> and its resolved counterparts",
	Args:  cobra.ExactArgs(1),
	RunE:  runMetadata,
}

func init() {
	rootCmd.AddCommand(metadataCmd)
}

func runMetadata(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	res, err := engine.Build(context.Background(), cfg, newLogger(cfg))
	if err != nil {
		return err
	}

	meta := res.Graph.FileMetadata(args[0])
	if outputFormat == "json" {
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, s := range meta.Symbols {
		fmt.Printf("%-5s L%-5d %s (%d resolved)\n", s.Kind, s.Line, s.Name, len(s.Resolved))
	}
	return nil
}
