package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"freequilt/internal/app/catalog"
	"freequilt/internal/app/dashboard"
)

func newCatalogCmd() *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the pattern catalog",
	}

	var category string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List patterns, optionally of one category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := catalog.Load()
			if err != nil {
				return err
			}

			patterns := index.All()
			if category != "" {
				patterns = index.FilterByCategory(category)
			}
			return printPatterns(cmd.OutOrStdout(), patterns)
		},
	}
	listCmd.Flags().StringVarP(&category, "category", "c", "", "Category id, e.g. quilts")

	searchCmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search pattern titles and descriptions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := catalog.Load()
			if err != nil {
				return err
			}
			return printPatterns(cmd.OutOrStdout(), index.Search(args[0]))
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one pattern with its instructions and materials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := catalog.Load()
			if err != nil {
				return err
			}

			p, ok := index.Get(args[0])
			if !ok {
				return fmt.Errorf("pattern %q not found", args[0])
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n", p.Title)
			fmt.Fprintf(w, "Category:   %s\n", p.Category)
			fmt.Fprintf(w, "Difficulty: %s\n", dashboard.FormatDifficulty(string(p.Difficulty)))
			fmt.Fprintf(w, "\n%s\n", p.Description)

			fmt.Fprintln(w, "\nInstructions:")
			for i, step := range index.Instructions() {
				fmt.Fprintf(w, "  %d. %s\n", i+1, step)
			}

			fmt.Fprintln(w, "\nMaterials:")
			for _, m := range index.Materials() {
				fmt.Fprintf(w, "  - %s\n", m)
			}
			return nil
		},
	}

	catalogCmd.AddCommand(listCmd, searchCmd, showCmd)
	return catalogCmd
}

func printPatterns(w io.Writer, patterns []catalog.Pattern) error {
	if len(patterns) == 0 {
		_, err := fmt.Fprintln(w, "No patterns found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tDIFFICULTY")
	for _, p := range patterns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Category, p.Difficulty)
	}
	return tw.Flush()
}
