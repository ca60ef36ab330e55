package db

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"postgres", "postgres://u:p@localhost:5432/db", "pgx5://u:p@localhost:5432/db"},
		{"postgresql", "postgresql://u@h/db?sslmode=disable", "pgx5://u@h/db?sslmode=disable"},
		{"already pgx5", "pgx5://u@h/db", "pgx5://u@h/db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, migrateURL(tt.in))
		})
	}
}

func TestMigrations_Embedded(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.Contains(t, names, "migrations/000001_create_notes.up.sql")
	require.Contains(t, names, "migrations/000001_create_notes.down.sql")
}
