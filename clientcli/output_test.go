package clientcli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/dbmanager"
	"github.com/sagarc03/dbmanager/clientcli"
)

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &clientcli.JSONFormatter{}, clientcli.NewFormatter(true, false))
	assert.IsType(t, &clientcli.HumanFormatter{}, clientcli.NewFormatter(false, false))
	assert.True(t, clientcli.NewFormatter(false, true).(*clientcli.HumanFormatter).Quiet)
}

func TestHumanFormatter_FormatDrivers(t *testing.T) {
	var buf bytes.Buffer
	f := &clientcli.HumanFormatter{}

	require.NoError(t, f.FormatDrivers(&buf, map[string]string{"sqlite": "sqlite", "postgres": "pgx"}))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Contains(t, string(lines[0]), "PROTOCOL")
	assert.Contains(t, string(lines[2]), "postgres")
	assert.Contains(t, string(lines[3]), "sqlite")

	buf.Reset()
	require.NoError(t, f.FormatDrivers(&buf, nil))
	assert.Equal(t, "No drivers registered\n", buf.String())
}

func TestHumanFormatter_FormatConnections(t *testing.T) {
	var buf bytes.Buffer
	f := &clientcli.HumanFormatter{}

	list := &clientcli.ConnectionList{
		Default: "main",
		Connections: map[string]string{
			"main":  "postgres://app:xxxxx@db:5432/shop",
			"cache": "sqlite:///cache.db",
		},
	}
	require.NoError(t, f.FormatConnections(&buf, list))

	out := buf.String()
	assert.Contains(t, out, "* main   postgres://app:xxxxx@db:5432/shop")
	assert.Contains(t, out, "  cache  sqlite:///cache.db")
	assert.Contains(t, out, "2 connection(s)")

	buf.Reset()
	quiet := &clientcli.HumanFormatter{Quiet: true}
	require.NoError(t, quiet.FormatConnections(&buf, list))
	assert.NotContains(t, buf.String(), "connection(s)")
}

func TestHumanFormatter_FormatColumns(t *testing.T) {
	var buf bytes.Buffer
	f := &clientcli.HumanFormatter{}

	require.NoError(t, f.FormatColumns(&buf, "users", []dbmanager.Column{
		{Name: "id", Type: "integer", PrimaryKey: true},
		{Name: "email", Type: "text", Unique: true},
		{Name: "nickname", Type: "text", Nullable: true},
	}))

	out := buf.String()
	assert.Contains(t, out, "Table: users")
	assert.Regexp(t, `id\s+integer\s+NOT NULL\s+PK`, out)
	assert.Regexp(t, `email\s+text\s+NOT NULL\s+UNIQUE`, out)
	assert.Regexp(t, `nickname\s+text\s+NULL`, out)
}

func TestHumanFormatter_FormatPing(t *testing.T) {
	var buf bytes.Buffer
	f := &clientcli.HumanFormatter{Quiet: true}

	results := []clientcli.PingResult{
		{Name: "main", Duration: "2ms"},
		{Name: "broken", Err: errors.New("connection refused")},
	}
	require.NoError(t, f.FormatPing(&buf, results))

	assert.Equal(t, "Error: broken - connection refused\n", buf.String())
	assert.True(t, clientcli.HasPingErrors(results))
	assert.False(t, clientcli.HasPingErrors(results[:1]))
}

func TestHumanFormatter_Misc(t *testing.T) {
	var buf bytes.Buffer
	f := &clientcli.HumanFormatter{}

	require.NoError(t, f.FormatDefault(&buf, ""))
	require.NoError(t, f.FormatDefault(&buf, "main"))
	require.NoError(t, f.FormatDefiner(&buf, &clientcli.DefinerInfo{Protocol: "postgres", Available: true}))
	require.NoError(t, f.FormatDefiner(&buf, &clientcli.DefinerInfo{Protocol: "oracle"}))
	require.NoError(t, f.FormatError(&buf, errors.New("boom")))

	assert.Equal(t, "No default connection\nmain\npostgres: schema support available\noracle: no schema support\nError: boom\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	f := &clientcli.JSONFormatter{}

	t.Run("drivers", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatDrivers(&buf, nil))
		assert.JSONEq(t, `{"drivers":{}}`, buf.String())
	})

	t.Run("connections", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatConnections(&buf, &clientcli.ConnectionList{
			Default:     "main",
			Connections: map[string]string{"main": "sqlite:///app.db"},
		}))
		assert.JSONEq(t, `{"default":"main","connections":{"main":"sqlite:///app.db"}}`, buf.String())
	})

	t.Run("columns", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatColumns(&buf, "users", []dbmanager.Column{{Name: "id", Type: "integer", PrimaryKey: true}}))
		assert.JSONEq(t, `{"table":"users","columns":[{"name":"id","type":"integer","nullable":false,"primary_key":true}]}`, buf.String())
	})

	t.Run("ping", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatPing(&buf, []clientcli.PingResult{
			{Name: "main", DSN: "sqlite:///app.db", Duration: "1ms"},
			{Name: "broken", DSN: "postgres://db/x", Err: errors.New("refused")},
		}))

		var out struct {
			Results []map[string]any `json:"results"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		require.Len(t, out.Results, 2)
		assert.Equal(t, true, out.Results[0]["ok"])
		assert.Equal(t, "refused", out.Results[1]["error"])
	})

	t.Run("error and message", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatError(&buf, errors.New("boom")))
		assert.JSONEq(t, `{"error":"boom"}`, buf.String())

		buf.Reset()
		require.NoError(t, f.FormatMessage(&buf, "saved"))
		assert.JSONEq(t, `{"message":"saved"}`, buf.String())
	})
}
