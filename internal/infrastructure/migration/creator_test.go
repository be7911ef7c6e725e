package migration

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add payment index", "add_payment_index"},
		{"Add-Payment-Index", "add_payment_index"},
		{"ADD_PAYMENT_INDEX", "add_payment_index"},
		{"add__payment__index", "add_payment_index"},
		{"Add Ledger 2", "add_ledger_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 9, 14, 8, 30, 5, 0, time.UTC)

	mf, err := CreateMigration(dir, "add refund status", "Allow refunded transactions", now)
	require.NoError(t, err)

	assert.Equal(t, "20260914083005", mf.Version)
	assert.Equal(t, filepath.Join(dir, "20260914083005_add_refund_status.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "20260914083005_add_refund_status.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add refund status")
	assert.Contains(t, string(up), "Allow refunded transactions")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "test", "", time.Now())
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateMigration_RefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	_, err := CreateMigration(dir, "same", "", now)
	require.NoError(t, err)

	_, err = CreateMigration(dir, "same", "", now)
	assert.Error(t, err)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "", time.Now())
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"0003_add_index.up.sql":   {Data: []byte("--")},
		"0003_add_index.down.sql": {Data: []byte("--")},
		"0001_init.up.sql":        {Data: []byte("--")},
		"0001_init.down.sql":      {Data: []byte("--")},
		"0002_more.up.sql":        {Data: []byte("--")},
		"0002_more.down.sql":      {Data: []byte("--")},
		"README.md":               {Data: []byte("docs")},
		"embed.go":                {Data: []byte("package x")},
		"nested.up.sql/x.sql":     {Data: []byte("--")},
	}

	names, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init", "0002_more", "0003_add_index"}, names)
}

func TestListMigrations_Empty(t *testing.T) {
	names, err := ListMigrations(fstest.MapFS{})
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := ListMigrations(Embedded())
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		_, err := Embedded().Open(name + ".down.sql")
		assert.NoError(t, err, "missing rollback for %s", name)
	}

	var schema strings.Builder
	for _, name := range names {
		b, err := fs.ReadFile(Embedded(), name+".up.sql")
		require.NoError(t, err)
		schema.Write(b)
	}
	for _, table := range []string{"payment_transactions", "credit_balances", "credit_entries", "notifications"} {
		assert.Contains(t, schema.String(), "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, schema.String(), "uq_payment_transactions_order_id")
}
