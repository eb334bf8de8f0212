package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/sagarc03/dbmanager"
)

// Formatter formats results for output.
type Formatter interface {
	FormatDrivers(w io.Writer, drivers map[string]string) error
	FormatConnections(w io.Writer, list *ConnectionList) error
	FormatDefault(w io.Writer, name string) error
	FormatDefiner(w io.Writer, info *DefinerInfo) error
	FormatColumns(w io.Writer, table string, columns []dbmanager.Column) error
	FormatPing(w io.Writer, results []PingResult) error
	FormatMessage(w io.Writer, msg string) error
	FormatError(w io.Writer, err error) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HasPingErrors reports whether any ping failed.
func HasPingErrors(results []PingResult) bool {
	for i := range results {
		if results[i].Err != nil {
			return true
		}
	}
	return false
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatDrivers formats the driver mapping as a table sorted by protocol.
func (f *HumanFormatter) FormatDrivers(w io.Writer, drivers map[string]string) error {
	if len(drivers) == 0 {
		_, _ = fmt.Fprintln(w, "No drivers registered")
		return nil
	}

	protocols := slices.Sorted(maps.Keys(drivers))
	width := columnWidth("PROTOCOL", protocols, 30)

	_, _ = fmt.Fprintf(w, "%-*s  %s\n", width, "PROTOCOL", "DRIVER")
	_, _ = fmt.Fprintf(w, "%s  %s\n", strings.Repeat("-", width), strings.Repeat("-", 10))
	for _, p := range protocols {
		_, _ = fmt.Fprintf(w, "%-*s  %s\n", width, truncate(p, width), drivers[p])
	}
	return nil
}

// FormatConnections formats connections as a table, marking the default
// with "*".
func (f *HumanFormatter) FormatConnections(w io.Writer, list *ConnectionList) error {
	if len(list.Connections) == 0 {
		_, _ = fmt.Fprintln(w, "No connections registered")
		return nil
	}

	names := slices.Sorted(maps.Keys(list.Connections))
	width := columnWidth("NAME", names, 30)

	_, _ = fmt.Fprintf(w, "  %-*s  %s\n", width, "NAME", "DSN")
	_, _ = fmt.Fprintf(w, "  %s  %s\n", strings.Repeat("-", width), strings.Repeat("-", 40))
	for _, name := range names {
		marker := " "
		if name == list.Default {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s %-*s  %s\n", marker, width, truncate(name, width), list.Connections[name])
	}

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "\n%d connection(s)\n", len(names))
	}
	return nil
}

// FormatDefault formats the default connection name.
func (f *HumanFormatter) FormatDefault(w io.Writer, name string) error {
	if name == "" {
		_, _ = fmt.Fprintln(w, "No default connection")
		return nil
	}
	_, _ = fmt.Fprintln(w, name)
	return nil
}

// FormatDefiner formats definer availability.
func (f *HumanFormatter) FormatDefiner(w io.Writer, info *DefinerInfo) error {
	if info.Available {
		_, _ = fmt.Fprintf(w, "%s: schema support available\n", info.Protocol)
	} else {
		_, _ = fmt.Fprintf(w, "%s: no schema support\n", info.Protocol)
	}
	return nil
}

// FormatColumns formats the columns of a table.
func (f *HumanFormatter) FormatColumns(w io.Writer, table string, columns []dbmanager.Column) error {
	names := make([]string, len(columns))
	for i := range columns {
		names[i] = columns[i].Name
	}
	width := columnWidth("COLUMN", names, 40)

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "Table: %s\n\n", table)
	}
	_, _ = fmt.Fprintf(w, "%-*s  %-20s  %-8s  %s\n", width, "COLUMN", "TYPE", "NULL", "KEY")
	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n", strings.Repeat("-", width), strings.Repeat("-", 20), strings.Repeat("-", 8), strings.Repeat("-", 6))
	for i := range columns {
		c := &columns[i]
		null := "NOT NULL"
		if c.Nullable {
			null = "NULL"
		}
		key := ""
		switch {
		case c.PrimaryKey:
			key = "PK"
		case c.Unique:
			key = "UNIQUE"
		}
		_, _ = fmt.Fprintf(w, "%-*s  %-20s  %-8s  %s\n", width, truncate(c.Name, width), c.Type, null, key)
	}
	return nil
}

// FormatPing formats ping results.
func (f *HumanFormatter) FormatPing(w io.Writer, results []PingResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.Name, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "OK: %s (%s)\n", r.Name, r.Duration)
		}
	}
	return nil
}

// FormatMessage prints msg unless quiet.
func (f *HumanFormatter) FormatMessage(w io.Writer, msg string) error {
	if !f.Quiet {
		_, _ = fmt.Fprintln(w, msg)
	}
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatDrivers formats the driver mapping as JSON.
func (f *JSONFormatter) FormatDrivers(w io.Writer, drivers map[string]string) error {
	if drivers == nil {
		drivers = map[string]string{}
	}
	return writeJSON(w, driversBody{Drivers: drivers})
}

// FormatConnections formats connections as JSON.
func (f *JSONFormatter) FormatConnections(w io.Writer, list *ConnectionList) error {
	return writeJSON(w, list)
}

// FormatDefault formats the default connection name as JSON.
func (f *JSONFormatter) FormatDefault(w io.Writer, name string) error {
	return writeJSON(w, defaultBody{Name: name})
}

// FormatDefiner formats definer availability as JSON.
func (f *JSONFormatter) FormatDefiner(w io.Writer, info *DefinerInfo) error {
	return writeJSON(w, info)
}

// FormatColumns formats table columns as JSON.
func (f *JSONFormatter) FormatColumns(w io.Writer, table string, columns []dbmanager.Column) error {
	output := struct {
		Table   string             `json:"table"`
		Columns []dbmanager.Column `json:"columns"`
	}{
		Table:   table,
		Columns: columns,
	}
	return writeJSON(w, output)
}

// FormatPing formats ping results as JSON.
func (f *JSONFormatter) FormatPing(w io.Writer, results []PingResult) error {
	// Convert errors to strings for JSON output
	type jsonResult struct {
		Name     string `json:"name"`
		DSN      string `json:"dsn"`
		OK       bool   `json:"ok"`
		Duration string `json:"duration,omitempty"`
		Error    string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i := range results {
		r := &results[i]
		jr := jsonResult{
			Name:     r.Name,
			DSN:      r.DSN,
			OK:       r.Err == nil,
			Duration: r.Duration,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

// FormatMessage formats a status message as JSON.
func (f *JSONFormatter) FormatMessage(w io.Writer, msg string) error {
	output := struct {
		Message string `json:"message"`
	}{
		Message: msg,
	}
	return writeJSON(w, output)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// columnWidth returns the width of the widest value or header, capped at max.
func columnWidth(header string, values []string, limit int) int {
	width := len(header)
	for _, v := range values {
		width = max(width, len(v))
	}
	return min(width, limit)
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
