// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/geoform/config"
	"github.com/jcodagnone/geoform/geocode"
	"github.com/jcodagnone/geoform/history"
	"github.com/jcodagnone/geoform/reference"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "geoform",
	Short: "city geocoding form and command line client",
	Long: `
geoform looks up cities through a geocoding service. It serves a small web form
where only the city is required and the state only applies to the U.S., and it
offers the same search from the command line.
`,
	SilenceUsage: true,
}

var Version = "dev"

var configPath string

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file (default ./geoform.yaml)")
	rootCmd.PersistentFlags().Bool("trace-http", false, "Dump outbound HTTP requests and responses to stderr")
	rootCmd.PersistentFlags().Bool("trace-http-body", false, "Include bodies in the HTTP dump")
	rootCmd.PersistentFlags().String("endpoint", "", "Geocoding service URL")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Timeout of each geocoding request")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	return cfg, nil
}

func newGeocoder(cfg *config.Config) (*geocode.Client, error) {
	opts := cfg.GeocoderOptions()
	if opts.UserAgent == "" {
		opts.UserAgent = fmt.Sprintf("geoform/%s (+https://github.com/jcodagnone/geoform)", Version)
	}

	client, err := geocode.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("creating geocoding client: %w", err)
	}

	return client, nil
}

// openHistory opens the history database. It returns a nil repository when
// history is disabled.
func openHistory(ctx context.Context, path string) (history.Repository, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := history.NewRepository(db)
	if err := repo.CreateSchema(ctx); err != nil {
		_ = db.Close()

		return nil, nil, fmt.Errorf("creating table: %w", err)
	}

	return repo, func() { _ = db.Close() }, nil
}

// resolveFilters turns user supplied country and state names or codes into
// codes.
func resolveFilters(country, state string) (string, string, error) {
	if country != "" {
		c, err := reference.FindCountry(country)
		if err != nil {
			return "", "", fmt.Errorf("country %q: %w", country, err)
		}

		country = c.Code
	}

	if state != "" {
		s, err := reference.FindState(state)
		if err != nil {
			return "", "", fmt.Errorf("state %q: %w", state, err)
		}

		state = s.Code
	}

	return country, state, nil
}
