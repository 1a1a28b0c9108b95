package migration

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "Add Cart Lines")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(mf.UpPath, "_add_cart_lines.up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, "_add_cart_lines.down.sql"))
	assert.Len(t, mf.Version, 14)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: Add Cart Lines")

	_, err = os.Stat(mf.DownPath)
	assert.NoError(t, err)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Add Cart Lines", "add_cart_lines"},
		{"weird--name__here", "weird_name_here"},
		{"Trailing space ", "trailing_space"},
		{"UPPER123", "upper123"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.in), tt.in)
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	_, err := CreateMigration(dir, "first")
	require.NoError(t, err)

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migrations, 1)
	assert.Contains(t, migrations[0], "_first")
}

func TestListMigrations_MissingDirIsEmpty(t *testing.T) {
	migrations, err := ListMigrations("/nonexistent/migrations/dir")
	require.NoError(t, err)
	assert.Empty(t, migrations)
}
