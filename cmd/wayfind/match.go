package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wayfind-go/wayfind/internal/routefile"
	"github.com/wayfind-go/wayfind/pkg/history"
	"github.com/wayfind-go/wayfind/pkg/router"
)

func matchCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "match [paths...]",
		Short: "Resolve paths against a route file",
		Long: `Resolve one or more paths against a compiled route file and print
the matched route, captured parameters, and merged meta.

Paths may carry query strings and hashes; they are parsed the same way
the router parses navigation targets.

Examples:
  wayfind match -f routes.yaml /users/42
  wayfind match -f routes.yaml "/search?q=go#results" /missing`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(file, args)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "routes.yaml", "Route file to match against")

	return cmd
}

func runMatch(file string, paths []string) error {
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

	misses := 0
	for _, path := range paths {
		loc, err := r.Resolve(router.To(path))
		if err != nil {
			if errors.Is(err, router.ErrNoMatch) {
				errorMsg("%s: no match", path)
				misses++
				continue
			}
			return fmt.Errorf("resolve %s: %w", path, err)
		}
		printLocation(loc)
	}

	if misses > 0 {
		return fmt.Errorf("%d of %d paths did not match", misses, len(paths))
	}
	return nil
}

func printLocation(loc *router.Location) {
	name := loc.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Printf("%s → %s\n", loc.FullPath, name)

	chain := make([]string, 0, len(loc.Matched))
	for _, rec := range loc.Matched {
		chain = append(chain, rec.FullPath())
	}
	info("chain:  %s", strings.Join(chain, " › "))

	if len(loc.Params) > 0 {
		keys := make([]string, 0, len(loc.Params))
		for k := range loc.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			info("param:  %s = %s", k, strings.Join(loc.Params[k], "/"))
		}
	}
	if len(loc.Query) > 0 {
		info("query:  %s", loc.Query.Encode())
	}
	if loc.Hash != "" {
		info("hash:   %s", loc.Hash)
	}
	if len(loc.Meta) > 0 {
		info("meta:   %v", loc.Meta)
	}
}
