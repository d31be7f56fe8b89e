package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or upgrade the schema",
	Long: `Create every registry table that does not exist, add missing columns
and create indexes. Running it again is harmless.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(st store.Store) error {
			if err := st.InitializeSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema initialized (%s)\n", st.Kind())
			return nil
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate <sql>",
	Short: "Run one migration statement",
	Long: `Run an administrator supplied statement against the current backend.
All arguments are joined with spaces.

Examples:
  seictl migrate "ALTER TABLE investigadores ADD COLUMN notas TEXT"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stmt := strings.Join(args, " ")
		return withStore(cmd.Context(), func(st store.Store) error {
			if err := st.RunMigration(cmd.Context(), stmt); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration applied")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd, migrateCmd)
}
