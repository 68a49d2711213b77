package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vegasq/jsql/internal/config"
	"github.com/vegasq/jsql/internal/logger"
	"github.com/vegasq/jsql/output"
	"github.com/vegasq/jsql/query"
	"github.com/vegasq/jsql/reader"
)

// app carries state shared by every command once configuration is loaded.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	log        *slog.Logger
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New(), stdout: stdout, stderr: stderr, log: logger.Discard()}
	var queryText string

	rootCmd := &cobra.Command{
		Use:   "jsql [flags] <file>...",
		Short: "Query JSON and Parquet records with SQL",
		Long: `jsql runs a single SELECT statement over tables loaded from JSON and
Parquet files.

A JSON file holds either an object mapping table names to arrays of records,
or a bare array of records named after the file. A Parquet file is one table
named after the file.`,
		Example: `  jsql -q "SELECT * FROM data WHERE a IN (2,3,4) AND c LIKE '%oo'" data.json
  jsql -f table -q "SELECT profile.lastName FROM oktaUsers ORDER BY lastName" users.json
  jsql users.parquet`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing input file")
			}
			return a.runQuery(queryText, args)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Config file (default .jsql.{yaml,toml,json} in . or $HOME)")
	flags.StringP("format", "f", "jsonl", "Output format: jsonl, json, csv, table, markdown, html")
	flags.Int("limit", 0, "Limit number of rows printed (0 = unlimited)")
	flags.String("log-level", "warn", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text, json")
	rootCmd.Flags().StringVarP(&queryText, "query", "q", "", "SQL query (default: SELECT * from the only table)")

	for key, name := range map[string]string{
		config.KeyFormat:    "format",
		config.KeyLimit:     "limit",
		config.KeyLogLevel:  "log-level",
		config.KeyLogFormat: "log-format",
	} {
		// Lookup cannot fail for flags registered above.
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	rootCmd.AddCommand(newTablesCmd(a), newSchemaCmd(a))
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, a.stderr)
	return nil
}

func (a *app) load(patterns []string) (query.Dataset, error) {
	start := time.Now()
	ds, err := reader.LoadFiles(patterns...)
	if err != nil {
		a.log.Error("failed to load input", "files", patterns, "error", err)
		return nil, err
	}
	for name, rows := range ds {
		a.log.Debug("loaded table", "table", name, "rows", len(rows))
	}
	a.log.Debug("dataset ready", "tables", len(ds), "elapsed", time.Since(start))
	return ds, nil
}

func (a *app) runQuery(queryText string, files []string) error {
	ds, err := a.load(files)
	if err != nil {
		return err
	}

	if queryText == "" {
		if len(ds) != 1 {
			return fmt.Errorf("-q is required when the input holds %d tables", len(ds))
		}
		for name := range ds {
			queryText = "SELECT * FROM `" + name + "`"
		}
	}

	start := time.Now()
	rows, err := query.Select(queryText, ds)
	if err != nil {
		a.log.Error("query failed", "query", queryText, "error", err)
		return err
	}
	a.log.Debug("query executed", "query", queryText, "rows", len(rows), "elapsed", time.Since(start))

	if a.cfg.Limit > 0 && len(rows) > a.cfg.Limit {
		rows = rows[:a.cfg.Limit]
	}
	return a.print(rows)
}

func (a *app) print(rows []query.Row) error {
	formatter, err := output.New(a.cfg.Format, a.stdout)
	if err != nil {
		return err
	}
	if err := formatter.Format(rows); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func sortedTableNames(ds query.Dataset) []string {
	names := make([]string, 0, len(ds))
	for name := range ds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
