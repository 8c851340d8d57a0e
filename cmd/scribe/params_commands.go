package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/ledger"
	"scribe/internal/params"
)

func newParamsCommand(ctx *commandContext) *cobra.Command {
	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "Query and load the parameter store",
	}
	paramsCmd.AddCommand(newParamsLookupCommand(ctx))
	paramsCmd.AddCommand(newParamsImportCommand(ctx))
	return paramsCmd
}

func storePath(ctx *commandContext, flagValue string) (string, error) {
	path, err := ctx.pathOrConfig(flagValue, func(c *config.Config) string { return c.Paths.Store })
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", errors.New("no parameter store configured; set paths.store or pass --db")
	}
	return path, nil
}

func newParamsLookupCommand(ctx *commandContext) *cobra.Command {
	var dbPath string
	var fallback string

	cmd := &cobra.Command{
		Use:         "lookup <hexagram-name>",
		Short:       "Show the parameter values stored for a hexagram",
		Args:        cobra.ExactArgs(1),
		Annotations: skipConfigAnnotation(),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := storePath(ctx, dbPath)
			if err != nil {
				return err
			}
			values, err := params.Resolver{Path: path}.Resolve(cmd.Context(), args[0], fallback)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(values) == 0 {
				fmt.Fprintf(out, "No parameters for %s\n", params.Normalize(args[0]))
				return nil
			}
			rows := make([][]string, 0, len(values))
			for i, v := range values {
				rows = append(rows, []string{strconv.Itoa(i + 1), ledger.ParamColumn(i + 1), v})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				headers: []string{"#", "列", "值"},
				rows:    rows,
				aligns:  []columnAlignment{alignRight},
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Parameter store (defaults to paths.store)")
	cmd.Flags().StringVar(&fallback, "fallback", "", "Key to try when the name has no rows")
	return cmd
}

func newParamsImportCommand(ctx *commandContext) *cobra.Command {
	var dbPath string
	var opts params.ImportOptions

	cmd := &cobra.Command{
		Use:         "import <workbook.xlsx>",
		Short:       "Replace the parameter store contents from a spreadsheet",
		Args:        cobra.ExactArgs(1),
		Annotations: skipConfigAnnotation(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(opts.KeyColumn) == "" {
				return errors.New("--key is required")
			}
			if len(opts.ParamColumns) == 0 {
				return errors.New("at least one --param column is required")
			}
			path, err := storePath(ctx, dbPath)
			if err != nil {
				return err
			}
			source, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve workbook path: %w", err)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("create store directory: %w", err)
			}
			res, err := params.Import(cmd.Context(), path, source, opts)
			if err != nil {
				return fmt.Errorf("import parameters: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d hexagrams (%d values, %d empty) into %s; skipped %d rows without a name\n",
				res.Names, res.Rows, res.Nulls, path, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Parameter store (defaults to paths.store)")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "Worksheet to read (defaults to the active sheet)")
	cmd.Flags().StringVar(&opts.KeyColumn, "key", "", "Header of the hexagram name column")
	cmd.Flags().StringArrayVar(&opts.ParamColumns, "param", nil, "Header of a parameter column, in order (repeatable)")
	return cmd
}
