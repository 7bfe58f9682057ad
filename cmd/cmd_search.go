// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jcodagnone/geoform/form"
	"github.com/jcodagnone/geoform/geocode"
	"github.com/jcodagnone/geoform/history"
	"github.com/jcodagnone/geoform/view"
	"github.com/spf13/cobra"
)

var searchOptions struct {
	Country    string
	State      string
	JSON       bool
	LocalNames bool
}

var searchCmd = &cobra.Command{
	Use:   "search <city>",
	Short: "Looks up a city",
	Long: `
Looks up a city. Country and state accept a code or a name ("uruguay", "UY").
The state only applies when the country is the U.S.
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		country, state, err := resolveFilters(searchOptions.Country, searchOptions.State)
		if err != nil {
			return err
		}

		client, err := newGeocoder(cfg)
		if err != nil {
			return err
		}

		manager := form.NewManager()
		manager.Dispatch(
			form.CityChanged{City: strings.Join(args, " ")},
			form.CountryChanged{Code: country},
			form.StateChanged{Code: state},
		)

		if state != "" && !manager.Snapshot().StateSelectable {
			return fmt.Errorf("state %s: only applicable for the U.S. (use --country US)", state)
		}

		s, _ := manager.Search(cmd.Context(), client)

		repo, closeRepo, err := openHistory(cmd.Context(), cfg.History.DBPath)
		if err != nil {
			return err
		}
		defer closeRepo()

		if repo != nil {
			if search, err := history.NewSearch("", s.Query(), s.Outcome); err == nil {
				if err := repo.Record(cmd.Context(), search); err != nil {
					log.Printf("Error recording search: %v", err)
				}
			}
		}

		if s.Outcome.Kind == geocode.OutcomeFailure {
			if s.Outcome.Err != nil && !geocode.IsValidationError(s.Outcome.Err) {
				log.Printf("Search failed: %v", s.Outcome.Err)
			}

			return fmt.Errorf("%s", s.Outcome.Message)
		}

		if searchOptions.JSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")

			return enc.Encode(s.Outcome)
		}

		if searchOptions.LocalNames {
			for i := range s.Results() {
				s = form.Update(s, form.ExpansionToggled{Row: i})
			}
		}

		return view.WriteText(os.Stdout, view.Render(s))
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchOptions.Country, "country", "", "Country code or name")
	searchCmd.Flags().StringVar(&searchOptions.State, "state", "", "U.S. state code or name")
	searchCmd.Flags().BoolVar(&searchOptions.JSON, "json", false, "Print the raw outcome as JSON")
	searchCmd.Flags().BoolVarP(&searchOptions.LocalNames, "local-names", "l", false, "Show the local names of every result")
	searchCmd.Flags().String("db", "", "DuckDB file where searches are recorded")
}
