package main

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vegasq/jsql/query"
	"github.com/vegasq/jsql/reader"
)

func newTablesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tables <file>...",
		Short: "List the tables the input files provide",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.load(args)
			if err != nil {
				return err
			}

			out := make([]query.Row, 0, len(ds))
			for _, name := range sortedTableNames(ds) {
				rows := ds[name]
				var columns []string
				if len(rows) > 0 {
					columns = rows[0].Keys()
				}

				r := query.NewRow()
				r.Set("table", query.String(name))
				r.Set("rows", query.Number(float64(len(rows))))
				r.Set("columns", query.String(strings.Join(columns, ",")))
				out = append(out, r)
			}
			return a.print(out)
		},
	}
}

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <file>...",
		Short: "Describe the columns of every table",
		Long: `Describe the queryable columns of every table. Parquet columns come from
the file schema; JSON columns are inferred from the records. Nested columns
are shown in the dot notation used to address them in a query.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out []query.Row
			for _, path := range args {
				tables, err := reader.DescribeFile(path)
				if err != nil {
					a.log.Error("failed to describe file", "file", path, "error", err)
					return err
				}

				names := make([]string, 0, len(tables))
				for name := range tables {
					names = append(names, name)
				}
				sort.Strings(names)

				for _, name := range names {
					for _, col := range tables[name] {
						r := query.NewRow()
						r.Set("table", query.String(name))
						r.Set("column", query.String(col.Name))
						r.Set("type", query.String(col.Type))
						r.Set("optional", query.Bool(col.Optional))
						r.Set("repeated", query.Bool(col.Repeated))
						out = append(out, r)
					}
				}
			}
			return a.print(out)
		},
	}
}
