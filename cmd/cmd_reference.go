// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/jcodagnone/geoform/reference"
	"github.com/spf13/cobra"
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "Lists the country codes accepted as filter",
	RunE: func(_ *cobra.Command, _ []string) error {
		a, b := strings.Repeat("─", 4), strings.Repeat("─", 50)
		fmt.Printf("╭─%-4s─┬─%-50s╮\n", a, b)
		fmt.Printf("│ %-4s │ %-50s│\n", "Code", "Name")
		fmt.Printf("├─%-4s─┼─%-50s┤\n", a, b)
		err := reference.EachCountry(func(c reference.Country) error {
			fmt.Printf("│ %-4s │ %-50s│\n", c.Code, c.Name)

			return nil
		})
		fmt.Printf("╰─%-4s─┴─%-50s╯\n", a, b)

		return err
	},
}

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "Lists the U.S. state codes accepted as filter",
	RunE: func(_ *cobra.Command, _ []string) error {
		a, b := strings.Repeat("─", 4), strings.Repeat("─", 24)
		fmt.Printf("╭─%-4s─┬─%-24s╮\n", a, b)
		fmt.Printf("│ %-4s │ %-24s│\n", "Code", "Name")
		fmt.Printf("├─%-4s─┼─%-24s┤\n", a, b)
		err := reference.EachState(func(s reference.State) error {
			fmt.Printf("│ %-4s │ %-24s│\n", s.Code, s.Name)

			return nil
		})
		fmt.Printf("╰─%-4s─┴─%-24s╯\n", a, b)

		return err
	},
}

func init() {
	rootCmd.AddCommand(countriesCmd)
	rootCmd.AddCommand(statesCmd)
}
