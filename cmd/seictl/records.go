package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/I2Cprogramacion/SEI-sub000/internal/schema"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
)

var incompleteFlags struct {
	table string
	json  bool
}

var incompleteCmd = &cobra.Command{
	Use:   "incomplete",
	Short: "List records with a missing natural key",
	Long: `List rows whose natural key (the CURP for researchers) is empty or
holds the "NO DETECTADO" placeholder.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(st store.Store) error {
			rows, err := st.ListIncomplete(cmd.Context(), incompleteFlags.table)
			if err != nil {
				return err
			}
			for i := range rows {
				rows[i] = rows[i].Without(schema.ColPassword)
			}
			if incompleteFlags.json {
				return writeJSON(cmd, rows)
			}

			t, _ := schema.Lookup(incompleteFlags.table)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\t%s\t%s\n", t.DisplayColumn, t.NaturalKey)
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Text("id"), r.Text(t.DisplayColumn), r.Text(t.NaturalKey))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d incomplete\n", len(rows))
			return nil
		})
	},
}

var searchFlags struct {
	limit int
	json  bool
}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search researchers by name, email, institution or area",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(st store.Store) error {
			hits, err := st.SearchEntities(cmd.Context(), args[0], searchFlags.limit)
			if err != nil {
				return err
			}
			if searchFlags.json {
				return writeJSON(cmd, hits)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNOMBRE\tCORREO\tINSTITUCION")
			for _, h := range hits {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", h.ID, h.Name, h.Email, h.Institution)
			}
			return tw.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(incompleteCmd, searchCmd)

	incompleteCmd.Flags().StringVar(&incompleteFlags.table, "table", schema.Researchers, "table to inspect")
	incompleteCmd.Flags().BoolVar(&incompleteFlags.json, "json", false, "print JSON")

	searchCmd.Flags().IntVar(&searchFlags.limit, "limit", 20, "maximum results (capped at 100)")
	searchCmd.Flags().BoolVar(&searchFlags.json, "json", false, "print JSON")
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
