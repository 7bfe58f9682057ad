// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/jcodagnone/geoform/geocode"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var batchOptions struct {
	Workers int
}

// batchLine is one output record of the batch command.
type batchLine struct {
	Line    int                 `json:"line"`
	Query   geocode.Query       `json:"query"`
	Kind    geocode.OutcomeKind `json:"kind"`
	Message string              `json:"message,omitempty"`
	Results []geocode.Result    `json:"results,omitempty"`
}

// batchQuery builds the query of one "city[,state[,country]]" record. Records
// with only blank fields are skipped.
func batchQuery(fields []string) (geocode.Query, bool) {
	var q geocode.Query

	if len(fields) > 0 {
		q.City = fields[0]
	}

	if len(fields) > 1 {
		q.State = fields[1]
	}

	if len(fields) > 2 {
		q.Country = fields[2]
	}

	q = q.Normalize()

	return q, q != geocode.Query{}
}

// readBatch parses comma separated records; a city holding a comma must be
// quoted. Lines starting with # are comments.
func readBatch(r io.Reader) ([]int, []geocode.Query, error) {
	var (
		lines   []int
		queries []geocode.Query
	)

	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, nil, fmt.Errorf("reading input: %w", err)
		}

		line, _ := reader.FieldPos(0)

		if len(fields) > 3 {
			return nil, nil, fmt.Errorf("line %d: expected city[,state[,country]], got %d fields", line, len(fields))
		}

		if q, ok := batchQuery(fields); ok {
			lines = append(lines, line)
			queries = append(queries, q)
		}
	}

	return lines, queries, nil
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Looks up one city per line read from stdin",
	Long: `
Reads "city[,state[,country]]" lines from stdin and writes one JSON outcome
per line to stdout, in input order.
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		client, err := newGeocoder(cfg)
		if err != nil {
			return err
		}

		lines, queries, err := readBatch(os.Stdin)
		if err != nil {
			return err
		}

		n := len(queries)

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(n,
				progressbar.OptionSetDescription("Geocoding"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		out := make([]batchLine, n)
		semaphore := make(chan struct{}, max(batchOptions.Workers, 1))

		var (
			wg       sync.WaitGroup
			failures int
			mu       sync.Mutex
		)

		for i, q := range queries {
			wg.Add(1)

			go func(i int, q geocode.Query) {
				defer wg.Done()
				semaphore <- struct{}{}

				defer func() { <-semaphore }()

				outcome := client.Search(cmd.Context(), q)
				out[i] = batchLine{
					Line:    lines[i],
					Query:   q,
					Kind:    outcome.Kind,
					Message: outcome.Message,
					Results: outcome.Results,
				}

				if outcome.Kind == geocode.OutcomeFailure {
					mu.Lock()
					failures++
					mu.Unlock()
				}

				if bar == nil {
					log.Printf("Geocoded %q: %s", q.City, outcome.Kind)
				} else if err := bar.Add(1); err != nil {
					log.Printf("Updating progress bar: %v", err)
				}
			}(i, q)
		}

		wg.Wait()

		enc := json.NewEncoder(os.Stdout)
		for _, line := range out {
			if err := enc.Encode(line); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
		}

		log.Printf("Batch complete - %d queries, %d failed", n, failures)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntVarP(&batchOptions.Workers, "workers", "w", 4, "Concurrent lookups")
}
