package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/ledger"
	"scribe/internal/reading"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the ledger workbook",
	}
	ledgerCmd.AddCommand(newLedgerTailCommand(ctx))
	return ledgerCmd
}

// tailColumns are shown by default; the full text column is too wide for a
// terminal.
var tailColumns = []string{
	reading.ColSequence,
	reading.ColWrittenAt,
	reading.ColName,
	reading.ColStemYear,
	reading.ColStemMonth,
	reading.ColStemDay,
	reading.ColStemTime,
}

func newLedgerTailCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var path string
	var all bool

	cmd := &cobra.Command{
		Use:         "tail",
		Short:       "Show the most recent ledger rows",
		Annotations: skipConfigAnnotation(),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := ctx.pathOrConfig(path, func(c *config.Config) string { return c.Paths.Ledger })
			if err != nil {
				return err
			}
			header, rows, err := ledger.ReadRows(target, limit)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("ledger %s does not exist yet; run `scribe run` to create it", target)
				}
				return err
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintf(out, "Ledger %s has no rows\n", target)
				return nil
			}
			headers, picked := selectColumns(header, rows, all)
			aligns := make([]columnAlignment, len(headers))
			if len(headers) > 0 && headers[0] == reading.ColSequence {
				aligns[0] = alignRight
			}
			fmt.Fprintln(out, renderTable(tableSpec{headers: headers, rows: picked, aligns: aligns, maxWidth: maxCellWidth}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of rows to show (0 for all)")
	cmd.Flags().StringVar(&path, "path", "", "Ledger workbook (defaults to paths.ledger)")
	cmd.Flags().BoolVar(&all, "all-columns", false, "Show every column")
	return cmd
}

// selectColumns narrows rows to tailColumns plus any parameter columns,
// keeping the ledger's column order.
func selectColumns(header []string, rows [][]string, all bool) ([]string, [][]string) {
	if all {
		return header, rows
	}
	wanted := make(map[string]bool, len(tailColumns))
	for _, c := range tailColumns {
		wanted[c] = true
	}
	var keep []int
	var headers []string
	for i, name := range header {
		if wanted[name] || isParamColumn(name) {
			keep = append(keep, i)
			headers = append(headers, name)
		}
	}
	picked := make([][]string, 0, len(rows))
	for _, row := range rows {
		out := make([]string, len(keep))
		for j, idx := range keep {
			if idx < len(row) {
				out[j] = row[idx]
			}
		}
		picked = append(picked, out)
	}
	return headers, picked
}

func isParamColumn(name string) bool {
	rest, ok := strings.CutPrefix(name, "参数")
	if !ok {
		return false
	}
	n, err := strconv.Atoi(rest)
	return err == nil && n > 0 && ledger.ParamColumn(n) == name
}
