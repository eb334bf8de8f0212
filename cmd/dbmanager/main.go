package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/dbmanager/config"
)

var version = "dev"

var (
	cfgFile    string
	server     string
	token      string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "dbmanager",
	Short:   "Manage database drivers and named connections",
	Long: `dbmanager keeps a registry of database drivers and named connections
in a config store (YAML file, SQLite, PostgreSQL) and serves it over an
admin HTTP API.

Commands operate on the local store by default. With --server (or
DBMANAGER_SERVER) they talk to a running 'dbmanager serve' instead.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if cfgFile != "" {
			files = []string{cfgFile}
		}

		cfg, err := config.Load(files, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: ./dbmanager.yaml)")
	rootCmd.PersistentFlags().String("store-type", "", "config store type: file, sqlite, postgres, memory (env: DBMANAGER_STORE_TYPE)")
	rootCmd.PersistentFlags().String("store-path", "", "YAML file for the file store (default: database.yaml, env: DBMANAGER_STORE_PATH)")
	rootCmd.PersistentFlags().String("store-dsn", "", "DSN of the sqlite or postgres store (env: DBMANAGER_STORE_DSN)")
	rootCmd.PersistentFlags().String("store-table", "", "settings table of the sqlite or postgres store (env: DBMANAGER_STORE_TABLE)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: DBMANAGER_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVarP(&server, "server", "s", "", "admin API URL, selects remote mode (env: DBMANAGER_SERVER)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "admin API bearer token (env: DBMANAGER_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(driverCmd)
	rootCmd.AddCommand(connectionCmd)
	rootCmd.AddCommand(definerCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_ = getFormatter().FormatError(os.Stderr, err)
		os.Exit(1)
	}
}
