package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"relgraph/internal/csvexport"
	"relgraph/internal/engine"
	"relgraph/internal/obsidian"
)

var exportOutDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the reference graph in a third-party-friendly format",
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Write scores.csv and symbols.csv",
	RunE:  runExportCSV,
}

var exportObsidianCmd = &cobra.Command{
	Use:   "obsidian",
	Short: "Write an Obsidian vault, one note per analyzed file",
	RunE:  runExportObsidian,
}

func init() {
	exportCmd.PersistentFlags().StringVar(&exportOutDir, "out", ".", "output directory")
	exportCmd.AddCommand(exportCSVCmd)
	exportCmd.AddCommand(exportObsidianCmd)
	rootCmd.AddCommand(exportCmd)
}

func runExportCSV(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	res, err := engine.Build(context.Background(), cfg, newLogger(cfg))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(exportOutDir, 0o755); err != nil {
		return err
	}

	scores, err := os.Create(filepath.Join(exportOutDir, "scores.csv"))
	if err != nil {
		return err
	}
	defer scores.Close()
	if err := csvexport.WriteScores(scores, res.Graph); err != nil {
		return fmt.Errorf("writing scores.csv: %w", err)
	}

	symbols, err := os.Create(filepath.Join(exportOutDir, "symbols.csv"))
	if err != nil {
		return err
	}
	defer symbols.Close()
	if err := csvexport.WriteSymbols(symbols, res.Graph); err != nil {
		return fmt.Errorf("writing symbols.csv: %w", err)
	}

	fmt.Printf("wrote %s and %s\n", filepath.Join(exportOutDir, "scores.csv"), filepath.Join(exportOutDir, "symbols.csv"))
	return nil
}

func runExportObsidian(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	res, err := engine.Build(context.Background(), cfg, newLogger(cfg))
	if err != nil {
		return err
	}

	if err := obsidian.Export(exportOutDir, res.Graph); err != nil {
		return err
	}
	fmt.Printf("wrote %d notes to %s\n", len(res.Graph.Files()), exportOutDir)
	return nil
}
