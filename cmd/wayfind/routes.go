package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wayfind-go/wayfind/internal/routefile"
	"github.com/wayfind-go/wayfind/pkg/history"
	"github.com/wayfind-go/wayfind/pkg/router"
)

func routesCmd() *cobra.Command {
	var (
		file   string
		byName bool
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Compile a route file and print the table",
		Long: `Compile a YAML route file and print the resulting route table.

Compilation surfaces the same errors router.New would report: malformed
patterns, conflicting parameter names, and duplicate route names.

Examples:
  wayfind routes -f routes.yaml
  wayfind routes -f routes.yaml --by-name`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(file, byName)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "routes.yaml", "Route file to compile")
	cmd.Flags().BoolVar(&byName, "by-name", false, "Sort by route name instead of registration order")

	return cmd
}

func runRoutes(file string, byName bool) error {
	records, err := routefile.Load(file)
	if err != nil {
		return err
	}

	r, err := router.New(
		router.WithHistory(history.NewMemory("/")),
		router.WithRoutes(records...),
	)
	if err != nil {
		return fmt.Errorf("compile %s: %w", file, err)
	}
	defer r.Close()

	flat := r.GetRoutes()
	if byName {
		sort.Slice(flat, func(i, j int) bool { return flat[i].Name < flat[j].Name })
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tNAME\tREDIRECT")
	for _, rec := range flat {
		fmt.Fprintf(w, "%s\t%s\t%s\n", rec.FullPath(), rec.Name, rec.Redirect)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	info("%d routes", len(flat))
	return nil
}
