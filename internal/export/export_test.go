package export_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/I2Cprogramacion/SEI-sub000/internal/export"
	"github.com/I2Cprogramacion/SEI-sub000/internal/metrics"
	"github.com/I2Cprogramacion/SEI-sub000/internal/schema"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store/sqlite"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// recordingQuerier returns canned rows and remembers the last statement.
type recordingQuerier struct {
	rows  []store.Record
	err   error
	sql   string
	calls int
}

func (q *recordingQuerier) RawQuery(_ context.Context, sql string, _ ...any) ([]store.Record, error) {
	q.calls++
	q.sql = sql
	return q.rows, q.err
}

func newEngine(q export.Querier) *export.Engine {
	e := export.NewEngine(q, 0)
	e.Metrics = nil
	e.Now = func() time.Time { return fixedNow }
	return e
}

func TestPlan_FieldFiltering(t *testing.T) {
	proj, err := export.Plan(export.Job{
		Dataset: schema.Researchers,
		Fields:  []string{"nombre", "unknownfield"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"nombre"}, proj.Keys())
	assert.Equal(t, []string{"Nombre"}, proj.Headers())
	assert.Equal(t, export.FormatCSV, proj.Format)
}

func TestPlan_KeepsRequestOrder(t *testing.T) {
	proj, err := export.Plan(export.Job{
		Dataset: schema.Publications,
		Fields:  []string{"doi", "titulo", "doi", "año_creacion"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"doi", "titulo", "año_creacion"}, proj.Keys())
	assert.Equal(t, []string{"DOI", "Título", "Año"}, proj.Headers())
}

func TestPlan_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		job   export.Job
		param string
	}{
		{"unknown dataset", export.Job{Dataset: "usuarios", Fields: []string{"nombre"}}, "type"},
		{"no fields", export.Job{Dataset: schema.Researchers}, "fields"},
		{"only unknown fields", export.Job{Dataset: schema.Researchers, Fields: []string{"unknownfield"}}, "fields"},
		{"bad format", export.Job{Dataset: schema.Researchers, Fields: []string{"nombre"}, Format: "docx"}, "format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := export.Plan(tt.job)
			require.Error(t, err)

			var ve *export.ValidationError
			require.True(t, errors.As(err, &ve), "got %T", err)
			assert.Equal(t, tt.param, ve.Param)
			assert.True(t, export.IsValidation(err))
		})
	}
}

func TestProjectionSQL(t *testing.T) {
	proj, err := export.Plan(export.Job{
		Dataset: schema.Researchers,
		Fields:  []string{"curp", "nombre"},
	})
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT COALESCE(CAST("curp" AS TEXT), '') AS "curp", COALESCE(CAST("nombre_completo" AS TEXT), '') AS "nombre" FROM "investigadores" ORDER BY id DESC`,
		proj.SQL(0))
	assert.True(t, strings.HasSuffix(proj.SQL(50), " LIMIT 50"))
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, f)

	f, err = export.ParseFormat("EXCEL")
	require.NoError(t, err)
	assert.Equal(t, export.FormatExcel, f)

	_, err = export.ParseFormat("xml")
	assert.True(t, export.IsValidation(err))
}

func TestParseFields(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, export.ParseFields(" a,,b , "))
	assert.Nil(t, export.ParseFields(""))
}

func TestRun_ValidationSkipsQuery(t *testing.T) {
	q := &recordingQuerier{}
	_, err := newEngine(q).Run(context.Background(), export.Job{
		Dataset: schema.Researchers,
		Fields:  []string{"unknownfield"},
	})
	require.True(t, export.IsValidation(err))
	assert.Zero(t, q.calls)
}

func TestRun_QueryFailure(t *testing.T) {
	q := &recordingQuerier{err: errors.New("relation does not exist")}
	_, err := newEngine(q).Run(context.Background(), export.Job{
		Dataset: schema.Projects,
		Fields:  []string{"titulo"},
	})
	require.Error(t, err)
	assert.False(t, export.IsValidation(err))
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestRun_MaxRows(t *testing.T) {
	q := &recordingQuerier{}
	e := newEngine(q)
	e.MaxRows = 10

	_, err := e.Run(context.Background(), export.Job{Dataset: schema.Institutions, Fields: []string{"nombre"}})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(q.sql, "LIMIT 10"), q.sql)
}

func TestRun_AgainstSQLite(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(store.Config{Kind: store.KindSQLite, Filename: sqlite.Memory})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Disconnect(ctx) })
	require.NoError(t, s.InitializeSchema(ctx))

	for _, r := range []store.Record{
		{{Column: "nombre_completo", Value: "Ana Ruiz"}, {Column: "correo", Value: "ana@example.mx"}, {Column: "curp", Value: "RUAA900101MCHZNN01"}},
		{{Column: "nombre_completo", Value: "Luis Soto"}, {Column: "correo", Value: "luis@example.mx"}},
	} {
		res := s.InsertEntity(ctx, schema.Researchers, r)
		require.True(t, res.Success, res.Message)
	}

	res, err := newEngine(s).Run(ctx, export.Job{
		Dataset: schema.Researchers,
		Fields:  []string{"nombre", "curp"},
		Format:  export.FormatCSV,
	})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.NotEmpty(t, res.ID)

	// Newest first; null curp becomes "".
	assert.Equal(t, []string{"Luis Soto", ""}, res.Cells(0))
	assert.Equal(t, []string{"Ana Ruiz", "RUAA900101MCHZNN01"}, res.Cells(1))
}

func sampleResult(format export.Format) *export.Result {
	return &export.Result{
		ID:      "test",
		Dataset: schema.Researchers,
		Format:  format,
		Headers: []string{"Nombre", "Institución"},
		Fields:  []string{"nombre", "institucion"},
		Rows: []store.Record{
			{{Column: "nombre", Value: "Ruiz, Ana"}, {Column: "institucion", Value: `Centro "CIMAV"`}},
			{{Column: "nombre", Value: "<b>Luis</b>"}, {Column: "institucion", Value: "UACH & Co"}},
			{{Column: "nombre", Value: "Eva"}, {Column: "institucion", Value: "line\nbreak"}},
		},
		GeneratedAt: fixedNow,
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, sampleResult(export.FormatCSV)))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\uFEFF"), "missing BOM")

	want := "\uFEFF" +
		"Nombre,Institución\n" +
		`"Ruiz, Ana","Centro ""CIMAV"""` + "\n" +
		"<b>Luis</b>,UACH & Co\n" +
		"Eva,\"line\nbreak\"\n"
	assert.Equal(t, want, out)
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteWorkbook(context.Background(), &buf, sampleResult(export.FormatExcel)))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\uFEFF<html"))
	assert.Contains(t, out, `xmlns:x="urn:schemas-microsoft-com:office:excel"`)
	assert.Contains(t, out, "<x:ExcelWorkbook>")
	assert.Contains(t, out, "background-color: #1e40af")
	assert.Contains(t, out, "tr:nth-child(even)")
	assert.Contains(t, out, "<th>Nombre</th><th>Institución</th>")
	assert.Contains(t, out, "<td>&lt;b&gt;Luis&lt;/b&gt;</td>")
	assert.Contains(t, out, "<td>UACH &amp; Co</td>")
	assert.Contains(t, out, "<td>Centro &#34;CIMAV&#34;</td>")
	assert.NotContains(t, out, "<b>Luis</b>")
}

func TestWriteStructured(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteStructured(&buf, sampleResult(export.FormatPDF)))

	var env struct {
		Success     bool                `json:"success"`
		Data        []map[string]string `json:"data"`
		Headers     []string            `json:"headers"`
		Fields      []string            `json:"fields"`
		DataType    string              `json:"dataType"`
		GeneratedAt time.Time           `json:"generatedAt"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))

	assert.True(t, env.Success)
	assert.Equal(t, schema.Researchers, env.DataType)
	assert.Equal(t, []string{"nombre", "institucion"}, env.Fields)
	assert.Equal(t, []string{"Nombre", "Institución"}, env.Headers)
	require.Len(t, env.Data, 3)
	assert.Equal(t, "Ruiz, Ana", env.Data[0]["nombre"])
	assert.True(t, env.GeneratedAt.Equal(fixedNow))
}

func TestWriteStructured_EmptyData(t *testing.T) {
	res := sampleResult(export.FormatPDF)
	res.Rows = nil

	var buf bytes.Buffer
	require.NoError(t, export.WriteStructured(&buf, res))
	assert.Contains(t, buf.String(), `"data":[]`)
}

func TestPlan_UnknownDatasetListsAvailable(t *testing.T) {
	_, err := export.Plan(export.Job{Dataset: "usuarios", Fields: []string{"nombre"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: instituciones, investigadores, proyectos, publicaciones")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "investigadores_export_2025-03-14.csv", export.Filename(schema.Researchers, export.FormatCSV, fixedNow))
	assert.Equal(t, "proyectos_export_2025-03-14.xls", export.Filename(schema.Projects, export.FormatExcel, fixedNow))
}

func TestRun_Metrics(t *testing.T) {
	c := metrics.NewCollector(prometheus.NewRegistry())
	e := newEngine(&recordingQuerier{rows: []store.Record{{{Column: "titulo", Value: "x"}}}})
	e.Metrics = c

	_, err := e.Run(context.Background(), export.Job{Dataset: schema.Projects, Fields: []string{"titulo"}, Format: export.FormatExcel})
	require.NoError(t, err)
	for _, job := range []export.Job{
		{Dataset: schema.Projects, Fields: []string{"nope"}, Format: export.FormatExcel},
		{Dataset: "typo-1", Fields: []string{"titulo"}, Format: export.FormatCSV},
		{Dataset: "typo-2", Fields: []string{"titulo"}, Format: export.Format("docx")},
	} {
		_, err := e.Run(context.Background(), job)
		require.Error(t, err)
	}

	want := `
# HELP sei_exports_total Export jobs by dataset, format and outcome.
# TYPE sei_exports_total counter
sei_exports_total{dataset="invalid",format="invalid",outcome="failure"} 3
sei_exports_total{dataset="proyectos",format="excel",outcome="ok"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(c.Registry(), strings.NewReader(want), "sei_exports_total"))
}
