package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"relgraph/internal/engine"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run a build and print error-kind counts and cache hit ratio",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	res, err := engine.Build(context.Background(), cfg, newLogger(cfg))
	if err != nil {
		return err
	}

	fmt.Printf("files:  %d\n", len(res.Graph.Files()))
	fmt.Printf("edges:  %d\n", len(res.Graph.Edges()))

	total := res.CacheStats.Hits + res.CacheStats.Misses
	ratio := 0.0
	if total > 0 {
		ratio = float64(res.CacheStats.Hits) / float64(total)
	}
	fmt.Printf("cache:  %d hits, %d misses (%.1f%% hit ratio)\n", res.CacheStats.Hits, res.CacheStats.Misses, ratio*100)

	fmt.Println("errors:")
	any := false
	for kind, n := range res.Graph.ErrorCounts() {
		if n > 0 {
			any = true
			fmt.Printf("  %-16s %d\n", kind, n)
		}
	}
	if !any {
		fmt.Println("  none")
	}
	return nil
}
