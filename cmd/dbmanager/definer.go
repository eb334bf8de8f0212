package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagarc03/dbmanager"
)

var definerCmd = &cobra.Command{
	Use:   "definer",
	Short: "Inspect schema support",
	Long: `Inspect schema support for database protocols.

Examples:
  # Is there schema support for mysql?
  dbmanager definer check mysql

  # Show the columns of a table through the main connection
  dbmanager definer describe main users`,
}

var definerCheckCmd = &cobra.Command{
	Use:   "check <protocol>",
	Short: "Report whether a definer exists for a protocol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(ctx context.Context, b backend) error {
			info, err := b.Definer(ctx, args[0])
			if err != nil {
				return err
			}
			return getFormatter().FormatDefiner(cmd.OutOrStdout(), info)
		})
	},
}

var definerDescribeCmd = &cobra.Command{
	Use:   "describe <connection> <table>",
	Short: "Show the columns of a table",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, table := args[0], args[1]

		return withApp(cmd, func(ctx context.Context, a *app) error {
			dsn, ok := a.manager.Connections()[name]
			if !ok {
				return fmt.Errorf("connection %s: %w", name, dbmanager.ErrNotFound)
			}

			d, err := a.manager.Definer(dsn.Protocol)
			if err != nil {
				return err
			}

			db, err := a.open(ctx, name)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			exists, err := d.TableExists(ctx, db, table)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("table %s: %w", table, dbmanager.ErrNotFound)
			}

			columns, err := d.Columns(ctx, db, table)
			if err != nil {
				return err
			}
			return getFormatter().FormatColumns(cmd.OutOrStdout(), table, columns)
		})
	},
}

func init() {
	definerCmd.AddCommand(definerCheckCmd)
	definerCmd.AddCommand(definerDescribeCmd)
}
