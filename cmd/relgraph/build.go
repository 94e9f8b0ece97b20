package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"relgraph/internal/engine"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Construct the reference graph and print a summary",
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.RunE = runBuild
}

type buildSummary struct {
	Files  int              `json:"files"`
	Edges  int              `json:"edges"`
	Cache  cacheSummary     `json:"cache"`
	Errors map[string]int64 `json:"errors"`
}

type cacheSummary struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	res, err := engine.Build(context.Background(), cfg, log)
	if err != nil {
		return err
	}

	summary := buildSummary{
		Files:  len(res.Graph.Files()),
		Edges:  len(res.Graph.Edges()),
		Cache:  cacheSummary{Hits: res.CacheStats.Hits, Misses: res.CacheStats.Misses},
		Errors: res.Graph.ErrorCounts(),
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("analyzed %d files, %d edges\n", summary.Files, summary.Edges)
	fmt.Printf("cache: %d hits, %d misses\n", summary.Cache.Hits, summary.Cache.Misses)
	for kind, n := range summary.Errors {
		if n > 0 {
			fmt.Printf("%s: %d\n", kind, n)
		}
	}
	return nil
}
