package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scribe/internal/params"
	"scribe/internal/reading"
)

func newParseCommand() *cobra.Command {
	var introPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "parse <capture-file>",
		Short:       "Parse a saved capture and show the ledger row it would produce",
		Args:        cobra.ExactArgs(1),
		Annotations: skipConfigAnnotation(),
		RunE: func(cmd *cobra.Command, args []string) error {
			primary, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read capture: %w", err)
			}
			var intro []byte
			if strings.TrimSpace(introPath) != "" {
				intro, err = os.ReadFile(introPath)
				if err != nil {
					return fmt.Errorf("read intro: %w", err)
				}
			}
			rec, err := reading.Assemble(string(primary), string(intro), time.Now())
			if err != nil {
				return err
			}

			cells := rec.Cells()
			if asJSON {
				out := make(map[string]any, len(cells)+1)
				for _, c := range cells {
					out[c.Column] = c.Value
				}
				out["lookup_key"] = params.Normalize(rec.Name())
				return writeJSON(cmd, out)
			}

			rows := make([][]string, 0, len(cells)+1)
			for _, c := range cells {
				rows = append(rows, []string{c.Column, fmt.Sprint(c.Value)})
			}
			rows = append(rows, []string{"查询键", params.Normalize(rec.Name())})
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(tableSpec{
				headers:  []string{"列", "值"},
				rows:     rows,
				maxWidth: maxCellWidth,
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&introPath, "intro", "", "Intro panel text file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as JSON")
	return cmd
}
