package database

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_badArguments(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tests := []struct {
		command string
		args    []string
		errMsg  string
	}{
		{command: "sideways", errMsg: `"sideways": no such command`},
		{command: "up-to", errMsg: "up-to must be of form: migrate up-to VERSION"},
		{command: "down-to", args: []string{"one"}, errMsg: "version must be a number (got 'one')"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			err := Migrate(db, tt.command, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir(migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "00001_create_tenant.sql", entries[0].Name())
}

// Tenant ids are opaque strings issued by the backend, not necessarily UUIDs.
func TestMigrations_tenantIDIsText(t *testing.T) {
	body, err := migrationsFS.ReadFile(migrationsDir + "/00001_create_tenant.sql")
	require.NoError(t, err)

	idColumn := regexp.MustCompile(`(?m)^\s*id\s+(\w+)`).FindSubmatch(body)
	require.NotNil(t, idColumn)
	assert.Equal(t, "TEXT", string(idColumn[1]))
}
