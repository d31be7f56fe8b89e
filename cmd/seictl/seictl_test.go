package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes seictl against a fresh flag state and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--env-file", ""}, args...))

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func newDB(t *testing.T) string {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_URL", "")

	path := filepath.Join(t.TempDir(), "sei.db")
	_, err := run(t, "--db-file", path, "init")
	require.NoError(t, err)

	for _, stmt := range []string{
		`INSERT INTO investigadores (nombre_completo, correo, curp, institucion, password) VALUES ('Ana Ruiz', 'ana@example.mx', 'RUAA800101MCHZNN01', 'UACH', 'secret-hash')`,
		`INSERT INTO investigadores (nombre_completo, correo, curp, institucion, password) VALUES ('Luis Pérez', 'luis@example.mx', 'NO DETECTADO', 'CIMAV', 'secret-hash')`,
	} {
		_, err := run(t, "--db-file", path, "migrate", stmt)
		require.NoError(t, err)
	}
	return path
}

func TestInit_Idempotent(t *testing.T) {
	path := newDB(t)

	out, err := run(t, "--db-file", path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "schema initialized (sqlite)")
}

func TestMigrate_ReportsFailure(t *testing.T) {
	path := newDB(t)

	_, err := run(t, "--db-file", path, "migrate", "ALTER TABLE nope ADD COLUMN x TEXT")
	assert.Error(t, err)
}

func TestExport_CSVToStdout(t *testing.T) {
	path := newDB(t)

	out, err := run(t, "--db-file", path, "export", "--type", "investigadores", "--fields", "nombre,correo")
	require.NoError(t, err)
	assert.Equal(t, "\uFEFFNombre,Correo Electrónico\nLuis Pérez,luis@example.mx\nAna Ruiz,ana@example.mx\n", out)
}

func TestExport_ToFile(t *testing.T) {
	path := newDB(t)
	dest := filepath.Join(t.TempDir(), "out.xls")

	out, err := run(t, "--db-file", path, "export",
		"--type", "investigadores", "--fields", "nombre", "--format", "excel", "--out", dest)
	require.NoError(t, err)
	assert.Empty(t, out)

	body, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<td>Ana Ruiz</td>")
}

func TestExport_MaxRows(t *testing.T) {
	path := newDB(t)

	t.Setenv("EXPORT_MAX_ROWS", "1")
	out, err := run(t, "--db-file", path, "export", "--type", "investigadores", "--fields", "nombre")
	require.NoError(t, err)
	assert.Equal(t, "\uFEFFNombre\nLuis Pérez\n", out)

	out, err = run(t, "--db-file", path, "export", "--type", "investigadores", "--fields", "nombre", "--max-rows", "0")
	require.NoError(t, err)
	assert.Equal(t, "\uFEFFNombre\nLuis Pérez\nAna Ruiz\n", out)
}

func TestExport_OutputDirMissing(t *testing.T) {
	path := newDB(t)
	dest := filepath.Join(t.TempDir(), "missing", "out.csv")

	_, err := run(t, "--db-file", path, "export", "--type", "investigadores", "--fields", "nombre", "--out", dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create output")
}

func TestExport_Rejections(t *testing.T) {
	path := newDB(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown dataset", []string{"--type", "nope", "--fields", "nombre"}, "nope"},
		{"no valid fields", []string{"--type", "investigadores", "--fields", "bogus"}, "field"},
		{"bad format", []string{"--type", "investigadores", "--fields", "nombre", "--format", "docx"}, "docx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--db-file", path, "export"}, tt.args...)
			_, err := run(t, args...)
			require.Error(t, err)
			assert.Contains(t, strings.ToLower(err.Error()), tt.want)
		})
	}
}

func TestIncomplete(t *testing.T) {
	path := newDB(t)

	out, err := run(t, "--db-file", path, "incomplete")
	require.NoError(t, err)
	assert.Contains(t, out, "Luis Pérez")
	assert.NotContains(t, out, "Ana Ruiz")
	assert.Contains(t, out, "1 incomplete")

	out, err = run(t, "--db-file", path, "incomplete", "--json")
	require.NoError(t, err)
	assert.NotContains(t, out, "secret-hash")

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "luis@example.mx", rows[0]["correo"])
}

func TestIncomplete_UnknownTable(t *testing.T) {
	path := newDB(t)

	_, err := run(t, "--db-file", path, "incomplete", "--table", "nope")
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	path := newDB(t)

	out, err := run(t, "--db-file", path, "search", "cimav")
	require.NoError(t, err)
	assert.Contains(t, out, "Luis Pérez")
	assert.NotContains(t, out, "Ana Ruiz")

	out, err = run(t, "--db-file", path, "search", "example.mx", "--json", "--limit", "1")
	require.NoError(t, err)

	var hits []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &hits))
	assert.Len(t, hits, 1)
}
