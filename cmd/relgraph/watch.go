package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"relgraph/internal/engine"
	"relgraph/internal/rlog"
	"relgraph/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the reference graph as files change",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	w, err := watch.New(cfg, log)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("watching %s for changes (ctrl-c to stop)\n", cfg.RepoPath)
	err = w.Run(ctx, func(res *engine.Result, buildErr error) {
		if buildErr != nil {
			log.Error("rebuild failed", rlog.F("error", buildErr.Error()))
			return
		}
		fmt.Printf("rebuilt: %d files, %d edges\n", len(res.Graph.Files()), len(res.Graph.Edges()))
	})
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}
