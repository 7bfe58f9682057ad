// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/geoform/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the geocoding form",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		gin.SetMode(cfg.Server.Mode)

		client, err := newGeocoder(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		repo, closeRepo, err := openHistory(ctx, cfg.History.DBPath)
		if err != nil {
			return err
		}
		defer closeRepo()

		server := web.NewServer(client, repo, web.Options{
			Addr:        cfg.Server.Addr,
			SessionTTL:  cfg.Server.SessionTTL,
			CORSOrigins: cfg.Server.CORSOrigins,
		})

		return server.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default localhost:8080)")
	serveCmd.Flags().String("db", "", "DuckDB file where searches are recorded")
}
