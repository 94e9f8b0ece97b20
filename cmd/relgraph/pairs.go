package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"relgraph/internal/engine"
)

var pairsCmd = &cobra.Command{
	Use:   "pairs <a> <b>",
	Short: "List resolves_to witnesses linking files a and b",
	Args:  cobra.ExactArgs(2),
	RunE:  runPairs,
}

func init() {
	rootCmd.AddCommand(pairsCmd)
}

func runPairs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	res, err := engine.Build(context.Background(), cfg, newLogger(cfg))
	if err != nil {
		return err
	}

	pairs := res.Graph.PairsBetweenFiles(args[0], args[1])
	if outputFormat == "json" {
		data, err := json.MarshalIndent(pairs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, p := range pairs {
		fmt.Printf("%s:%d -> %s:%d  %s\n", p.FromSite.File, p.FromSite.Line, p.ToSite.File, p.ToSite.Line, p.Name)
	}
	return nil
}
