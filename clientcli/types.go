package clientcli

// ConnectionList is the connection listing returned by the server.
// DSN passwords are redacted.
type ConnectionList struct {
	Default     string            `json:"default"`
	Connections map[string]string `json:"connections"`
}

// DefinerInfo reports whether schema support exists for a protocol.
type DefinerInfo struct {
	Protocol  string `json:"protocol"`
	Available bool   `json:"available"`
}

// PingResult is the outcome of opening and pinging one connection.
type PingResult struct {
	Name     string `json:"name"`
	DSN      string `json:"dsn"`
	Duration string `json:"duration,omitempty"`
	Err      error  `json:"-"`
}

// serverError mirrors the JSON error body written by the server.
type serverError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type driversBody struct {
	Drivers map[string]string `json:"drivers"`
}

type driverBody struct {
	Driver string `json:"driver"`
}

type connectionBody struct {
	DSN string `json:"dsn"`
}

type defaultBody struct {
	Name string `json:"name"`
}
