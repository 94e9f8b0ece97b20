package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"relgraph/internal/engine"
	"relgraph/internal/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reference graph over HTTP (spec.md §6 query surface)",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	res, err := engine.Build(context.Background(), cfg, log)
	if err != nil {
		return err
	}

	server := httpapi.New(res, log)
	fmt.Printf("serving on %s\n", serveAddr)
	return http.ListenAndServe(serveAddr, server.Router())
}
