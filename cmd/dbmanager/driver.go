package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var driverCmd = &cobra.Command{
	Use:   "driver",
	Short: "Manage protocol to driver mappings",
	Long: `Manage which database/sql driver serves each DSN protocol.

Examples:
  # List mappings
  dbmanager driver list

  # Serve postgres:// DSNs with pgx
  dbmanager driver add postgres pgx

  # Remove the mapping
  dbmanager driver remove postgres`,
}

var driverListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered drivers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(ctx context.Context, b backend) error {
			drivers, err := b.Drivers(ctx)
			if err != nil {
				return err
			}
			return getFormatter().FormatDrivers(cmd.OutOrStdout(), drivers)
		})
	},
}

var driverAddCmd = &cobra.Command{
	Use:   "add <protocol> <driver>",
	Short: "Map a protocol to a driver",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		protocol, driver := args[0], args[1]
		return withBackend(cmd, func(ctx context.Context, b backend) error {
			if err := b.RegisterDriver(ctx, protocol, driver); err != nil {
				return err
			}
			return getFormatter().FormatMessage(cmd.OutOrStdout(), fmt.Sprintf("Driver %s registered for %s", driver, protocol))
		})
	},
}

var driverRemoveCmd = &cobra.Command{
	Use:     "remove <protocol>",
	Aliases: []string{"rm"},
	Short:   "Remove the driver of a protocol",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		protocol := args[0]
		return withBackend(cmd, func(ctx context.Context, b backend) error {
			if err := b.UnregisterDriver(ctx, protocol); err != nil {
				return err
			}
			return getFormatter().FormatMessage(cmd.OutOrStdout(), "Driver removed for "+protocol)
		})
	},
}

func init() {
	driverCmd.AddCommand(driverListCmd)
	driverCmd.AddCommand(driverAddCmd)
	driverCmd.AddCommand(driverRemoveCmd)
}
