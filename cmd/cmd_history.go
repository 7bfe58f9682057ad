// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jcodagnone/geoform/history"
	"github.com/spf13/cobra"
)

var historyOptions struct {
	Limit int
}

func formatFilters(s *history.Search) string {
	parts := []string{s.Query.City}
	if s.Query.State != "" {
		parts = append(parts, s.Query.State)
	}

	if s.Query.Country != "" {
		parts = append(parts, s.Query.Country)
	}

	return strings.Join(parts, ", ")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Lists recorded searches",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if cfg.History.DBPath == "" {
			return errors.New("history is disabled: set --db or history.db_path")
		}

		repo, closeRepo, err := openHistory(cmd.Context(), cfg.History.DBPath)
		if err != nil {
			return err
		}
		defer closeRepo()

		total, err := repo.Count(cmd.Context())
		if err != nil {
			return err
		}

		searches, err := repo.List(cmd.Context(), historyOptions.Limit)
		if err != nil {
			return err
		}

		fmt.Printf("%d searches recorded, showing %d\n", total, len(searches))

		for _, s := range searches {
			top := "-"
			if s.Top != nil {
				top = fmt.Sprintf("%.5f,%.5f %s", s.Top.Lat, s.Top.Lng, s.Cell)
			}

			fmt.Printf("%s  %-8s %3d  %-40s %s\n",
				s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				s.Outcome,
				s.ResultCount,
				formatFilters(s),
				top,
			)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyOptions.Limit, "limit", "n", 20, "Number of searches to show")
	historyCmd.Flags().String("db", "", "DuckDB file where searches are recorded")
}
