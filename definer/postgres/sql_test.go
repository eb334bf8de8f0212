package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagarc03/dbmanager"
)

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	table := dbmanager.Table{
		Name: "events",
		Columns: []dbmanager.Column{
			{Name: "id", Type: "uuid", PrimaryKey: true, Default: "gen_random_uuid()"},
			{Name: "kind", Type: "text"},
			{Name: "payload", Type: "jsonb", Nullable: true},
			{Name: "slug", Type: "text", Unique: true},
		},
	}

	want := "CREATE TABLE IF NOT EXISTS \"events\" (\n" +
		"\t\"id\" UUID DEFAULT gen_random_uuid(),\n" +
		"\t\"kind\" TEXT NOT NULL,\n" +
		"\t\"payload\" JSONB,\n" +
		"\t\"slug\" TEXT NOT NULL UNIQUE,\n" +
		"\tPRIMARY KEY (\"id\")\n" +
		")"

	assert.Equal(t, want, createTableSQL(table))
}

func TestCreateIndexSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		idx  dbmanager.Index
		want string
	}{
		{
			name: "plain",
			idx:  dbmanager.Index{Name: "idx_events_kind", Columns: []string{"kind"}},
			want: `CREATE INDEX IF NOT EXISTS "idx_events_kind" ON "events" ("kind")`,
		},
		{
			name: "unique composite",
			idx:  dbmanager.Index{Name: "idx_events_kind_slug", Columns: []string{"kind", "slug"}, Unique: true},
			want: `CREATE UNIQUE INDEX IF NOT EXISTS "idx_events_kind_slug" ON "events" ("kind", "slug")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, createIndexSQL("events", tt.idx))
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"users"`, quoteIdentifier("users"))
	assert.Equal(t, `"we""ird"`, quoteIdentifier(`we"ird`))
}
