// Package http provides the admin API for a dbmanager registry.
//
// The API lists and edits drivers, connections and the default connection.
// Every successful mutation is followed by a call to the configured Saver, so
// the backing store is persisted before the response is written.
//
// # Routes
//
//	GET    /drivers               protocol to driver mapping
//	PUT    /drivers/{protocol}    {"driver": "pgx"}
//	DELETE /drivers/{protocol}
//	GET    /connections           default name and redacted DSNs
//	PUT    /connections/{name}    {"dsn": "postgres://..."}
//	DELETE /connections/{name}
//	GET    /default
//	PUT    /default               {"name": "main"}
//	GET    /definers/{protocol}   schema support for a protocol
//
// Errors are JSON objects with "error" and "message" fields. Passwords never
// appear in responses.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    Token: cfg.Server.Token, // empty disables authentication
//	    CORS:  cfg.CORS,
//	    Saver: store,
//	}
//	handler := http.NewHandler(&handlerCfg, manager)
//	http.ListenAndServe(":5709", handler.Router())
//
// Requests are serialized by the Handler, so a *dbmanager.Manager can be
// served directly.
//
// # Middleware
//
// RequestIDMiddleware tags each request with an X-Request-ID, LoggingMiddleware
// writes one slog line per request and AuthMiddleware checks the bearer token.
package http
