// Package kvtest builds real store files for tests.
package kvtest

import (
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// Schema is the table layout the target application uses.
const Schema = `CREATE TABLE IF NOT EXISTS ItemTable (key TEXT UNIQUE ON CONFLICT REPLACE, value BLOB)`

// CreateStore writes a store file at path holding rows.
func CreateStore(t *testing.T, path string, rows map[string]string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	_, err = db.Exec(Schema)
	require.NoError(t, err)
	for k, v := range rows {
		_, err := db.Exec(`INSERT INTO ItemTable (key, value) VALUES (?, ?)`, k, []byte(v))
		require.NoError(t, err)
	}
}

// Keys returns the sorted keys stored at path.
func Keys(t *testing.T, path string) []string {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	rows, err := db.Query(`SELECT key FROM ItemTable`)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	keys := []string{}
	for rows.Next() {
		var k string
		require.NoError(t, rows.Scan(&k))
		keys = append(keys, k)
	}
	require.NoError(t, rows.Err())
	sort.Strings(keys)
	return keys
}

// Fixture is the key set most engine tests start from.
func Fixture() map[string]string {
	return map[string]string{
		"augment.login.token":          `"x"`,
		"augment.usage.count":          `42`,
		"augment.panel.width":          `300`,
		"workbench.colorTheme":         `"dark"`,
		"workbench.auth.sessions":      `[]`,
		"editor.fontSize":              `14`,
		"trial.expired":                `true`,
		"github.license.accepted":      `true`,
		"terminal.integrated.shell":    `"bash"`,
		"memento/customEditors":        `{}`,
		"extensions.activation.events": `[]`,
	}
}
