// Package clientcli provides a client for the dbmanager admin API and the
// output formatters used by the dbmanager command.
//
// # Basic Usage
//
//	cfg := &clientcli.Config{
//		Endpoint: "http://localhost:5709",
//		Token:    "admin-token",
//	}
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	err = client.RegisterConnection(ctx, "main", "postgres://app:secret@db:5432/shop")
//
// Errors returned by the server are *APIError values. Use errors.Is with
// ErrNotFound, ErrConflict or ErrUnauthorized to classify them.
//
// # Configuration
//
// ConfigFromEnv reads DBMANAGER_SERVER and DBMANAGER_TOKEN. MergeConfig lets
// later sources override earlier ones, so flags can be layered over the
// environment.
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatConnections(os.Stdout, list)
package clientcli
