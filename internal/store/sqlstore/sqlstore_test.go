package sqlstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/I2Cprogramacion/SEI-sub000/internal/auth"
	"github.com/I2Cprogramacion/SEI-sub000/internal/schema"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store/sqlite"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store/sqlstore"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.Open(store.Config{Kind: store.KindSQLite, Filename: sqlite.Memory})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Disconnect(context.Background()) })
	require.NoError(t, s.InitializeSchema(context.Background()))
	return s
}

func researcher(curp, name, email string) store.Record {
	return store.Record{
		{Column: "curp", Value: curp},
		{Column: "nombre_completo", Value: name},
		{Column: "correo", Value: email},
	}
}

func tableColumns(t *testing.T, s store.Store, table string) []string {
	t.Helper()
	rows, err := s.RawQuery(context.Background(), "SELECT name FROM pragma_table_info(?1) ORDER BY cid", table)
	require.NoError(t, err)
	cols := make([]string, len(rows))
	for i, r := range rows {
		cols[i] = r.Text("name")
	}
	return cols
}

func TestInsertFetchRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	in := store.Record{
		{Column: "nombre_completo", Value: "Jesus Alvarez"},
		{Column: "correo", Value: "jesus@example.mx"},
		{Column: "curp", Value: "AAJJ800101HCHLSS01"},
		{Column: "telefono", Value: nil},
		{Column: "institucion", Value: "UACH"},
		{Column: "anio_sni", Value: int64(2019)},
	}

	res := s.InsertEntity(ctx, schema.Researchers, in)
	require.True(t, res.Success, res.Message)
	require.NotZero(t, res.ID)

	got, err := s.FetchByID(ctx, schema.Researchers, res.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	for _, f := range in.Defined() {
		v, ok := got.Get(f.Column)
		assert.True(t, ok, "column %s missing", f.Column)
		assert.Equal(t, f.Value, v, "column %s", f.Column)
	}
	_, ok := got.Get("telefono")
	assert.False(t, ok, "absent field was written")
}

func TestInsertFetchRoundTrip_TypedColumns(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	seen := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	in := store.Record{
		{Column: "nombre_completo", Value: "Ana Ruiz"},
		{Column: "correo", Value: "ana@example.mx"},
		{Column: "fecha_nacimiento", Value: "1990-01-02"},
		{Column: "orcid_verificado", Value: true},
		{Column: "es_admin", Value: false},
		{Column: "ultima_actividad", Value: seen},
	}
	res := s.InsertEntity(ctx, schema.Researchers, in)
	require.True(t, res.Success, res.Message)

	got, err := s.FetchByID(ctx, schema.Researchers, res.ID)
	require.NoError(t, err)

	for _, col := range []string{"fecha_nacimiento", "orcid_verificado", "es_admin"} {
		want, _ := in.Get(col)
		v, _ := got.Get(col)
		assert.Equal(t, want, v, "column %s", col)
	}
	v, _ := got.Get("ultima_actividad")
	ts, ok := v.(time.Time)
	require.True(t, ok, "ultima_actividad is %T", v)
	assert.True(t, seen.Equal(ts), "ultima_actividad = %v", ts)
	assert.Equal(t, time.UTC, ts.Location())

	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"fractional", 150000.5, 150000.5},
		{"whole", float64(1000), 1000},
		{"currency string", "$1,500.25", 1500.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.InsertEntity(ctx, schema.Projects, store.Record{
				{Column: "titulo", Value: tt.name},
				{Column: "fecha_inicio", Value: "2024-02-29"},
				{Column: "presupuesto", Value: tt.in},
			})
			require.True(t, res.Success, res.Message)

			got, err := s.FetchByID(ctx, schema.Projects, res.ID)
			require.NoError(t, err)
			v, _ := got.Get("presupuesto")
			assert.Equal(t, tt.want, v)
			d, _ := got.Get("fecha_inicio")
			assert.Equal(t, "2024-02-29", d)
		})
	}
}

func TestFetchByID_Missing(t *testing.T) {
	s := newStore(t)
	got, err := s.FetchByID(context.Background(), schema.Researchers, 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFetchAll_OrderedByID(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, r := range []store.Record{
		researcher("C1", "Zoe", "z@example.mx"),
		researcher("C2", "Ana", "a@example.mx"),
	} {
		require.True(t, s.InsertEntity(ctx, schema.Researchers, r).Success)
	}

	rows, err := s.FetchAll(ctx, schema.Researchers)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Zoe", rows[0].Text("nombre_completo"))
	assert.Equal(t, "Ana", rows[1].Text("nombre_completo"))
}

func TestInsert_DuplicateNaturalKey(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	first := s.InsertEntity(ctx, schema.Researchers, researcher("CURP123", "Ana Ruiz", "ana@example.mx"))
	require.True(t, first.Success, first.Message)

	second := s.InsertEntity(ctx, schema.Researchers, researcher("CURP123", "Otra Persona", "otra@example.mx"))
	assert.False(t, second.Success)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.ID, second.ID)
	assert.Contains(t, second.Message, "already exists")
	assert.Contains(t, second.Message, "CURP123")

	rows, err := s.FetchAll(ctx, schema.Researchers)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestInsert_NaturalKeyIsTrimmed(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	in := researcher(" CURPX ", "Ana Ruiz", "ana@example.mx")
	first := s.InsertEntity(ctx, schema.Researchers, in)
	require.True(t, first.Success, first.Message)
	assert.Equal(t, " CURPX ", in.Text("curp"), "caller record was modified")

	tests := []struct {
		name string
		curp string
	}{
		{"padded again", " CURPX "},
		{"trimmed", "CURPX"},
		{"tab padded", "\tCURPX\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.InsertEntity(ctx, schema.Researchers, researcher(tt.curp, "Otra", tt.name+"@example.mx"))
			assert.False(t, res.Success)
			assert.True(t, res.Duplicate)
			assert.Equal(t, first.ID, res.ID)
		})
	}

	rows, err := s.FetchAll(ctx, schema.Researchers)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "CURPX", rows[0].Text("curp"))
}

func TestInsert_PlaceholderKeyIsNotChecked(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := s.InsertEntity(ctx, schema.Researchers, researcher(schema.NotDetected, "Uno", "uno@example.mx"))
	b := s.InsertEntity(ctx, schema.Researchers, researcher(schema.NotDetected, "Dos", "dos@example.mx"))
	assert.True(t, a.Success, a.Message)
	assert.True(t, b.Success, b.Message)
}

func TestInsert_UniqueEmailSurfacedAsResult(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.True(t, s.InsertEntity(ctx, schema.Researchers, researcher("", "Uno", "same@example.mx")).Success)

	res := s.InsertEntity(ctx, schema.Researchers, researcher("", "Dos", "same@example.mx"))
	assert.False(t, res.Success)
	assert.True(t, res.Duplicate)
	assert.Error(t, res.Err)
}

func TestInsert_Failures(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	tests := []struct {
		name  string
		table string
		rec   store.Record
	}{
		{"unknown table", "nope", researcher("X", "Y", "z@example.mx")},
		{"no defined fields", schema.Researchers, store.Record{{Column: "curp", Value: nil}}},
		{"unknown column", schema.Researchers, store.Record{{Column: "bogus", Value: "x"}}},
		{"invalid integer", schema.Researchers, store.Record{
			{Column: "nombre_completo", Value: "A"},
			{Column: "correo", Value: "a@example.mx"},
			{Column: "anio_sni", Value: "dos mil"},
		}},
		{"not null violated", schema.Researchers, store.Record{{Column: "curp", Value: "ONLYCURP"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.InsertEntity(ctx, tt.table, tt.rec)
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Message)
		})
	}
}

func TestVerifyCredentials(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	hash, err := auth.HashPassword("s3creta")
	require.NoError(t, err)

	local := researcher("C1", "Local User", "local@example.mx")
	local.Set("password", hash)
	require.True(t, s.InsertEntity(ctx, schema.Researchers, local).Success)

	external := researcher("C2", "Clerk User", "clerk@example.mx")
	external.Set("clerk_user_id", "user_2abc")
	require.True(t, s.InsertEntity(ctx, schema.Researchers, external).Success)

	tests := []struct {
		name       string
		identifier string
		password   string
		wantOK     bool
		wantReason store.CredentialReason
	}{
		{"correct password by email", "local@example.mx", "s3creta", true, store.ReasonOK},
		{"wrong password", "local@example.mx", "nope", false, store.ReasonBadPassword},
		{"unknown identifier", "ghost@example.mx", "s3creta", false, store.ReasonNotFound},
		{"external account by id has no hash", "user_2abc", "x", false, store.ReasonNoHash},
		{"empty identifier", "", "x", false, store.ReasonNotFound},
	}

	messages := map[store.CredentialReason]string{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.VerifyCredentials(ctx, tt.identifier, tt.password)
			assert.Equal(t, tt.wantOK, res.Success)
			assert.Equal(t, tt.wantReason, res.Reason)
			messages[res.Reason] = res.Message
			if tt.wantOK {
				require.NotNil(t, res.User)
				assert.Equal(t, "local@example.mx", res.User.Email)
			}
		})
	}

	assert.NotEqual(t, messages[store.ReasonOK], messages[store.ReasonBadPassword])
	assert.NotEqual(t, messages[store.ReasonBadPassword], messages[store.ReasonNotFound])
	assert.NotEqual(t, messages[store.ReasonNotFound], messages[store.ReasonNoHash])
}

func TestSearch_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	rec := researcher("C1", "Jesus Alvarez", "jalvarez@example.mx")
	rec.Set("linea_investigacion", "Materiales")
	require.True(t, s.InsertEntity(ctx, schema.Researchers, rec).Success)
	require.True(t, s.InsertEntity(ctx, schema.Researchers, researcher("C2", "Maria Lopez", "mlopez@example.mx")).Success)

	for _, term := range []string{"jesus", "JESUS", "Alvarez", "materiales"} {
		t.Run(term, func(t *testing.T) {
			hits, err := s.SearchEntities(ctx, term, 10)
			require.NoError(t, err)
			require.Len(t, hits, 1)
			assert.Equal(t, "Jesus Alvarez", hits[0].Name)
		})
	}
}

func TestSearch_AccentedNames(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	rec := researcher("C1", "Jesús Álvarez", "jalvarez@example.mx")
	rec.Set("institucion", "Centro de Investigación en Materiales Avanzados")
	require.True(t, s.InsertEntity(ctx, schema.Researchers, rec).Success)
	require.True(t, s.InsertEntity(ctx, schema.Researchers, researcher("C2", "María López", "mlopez@example.mx")).Success)

	tests := []struct {
		term string
		want string
	}{
		{"jesús", "Jesús Álvarez"},
		{"JESÚS", "Jesús Álvarez"},
		{"álvarez", "Jesús Álvarez"},
		{"ÁLVAREZ", "Jesús Álvarez"},
		{"InvestigaCIÓN", "Jesús Álvarez"},
		{"MARÍA", "María López"},
		{"lópez", "María López"},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			hits, err := s.SearchEntities(ctx, tt.term, 10)
			require.NoError(t, err)
			require.Len(t, hits, 1)
			assert.Equal(t, tt.want, hits[0].Name)
		})
	}
}

func TestSearch_OrderAndLimit(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for i, name := range []string{"Carla Ruiz", "Ana Ruiz", "Beto Ruiz"} {
		rec := researcher("", name, string(rune('a'+i))+"@example.mx")
		require.True(t, s.InsertEntity(ctx, schema.Researchers, rec).Success)
	}

	hits, err := s.SearchEntities(ctx, "ruiz", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Ana Ruiz", hits[0].Name)
	assert.Equal(t, "Beto Ruiz", hits[1].Name)

	hits, err = s.SearchEntities(ctx, "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestListIncomplete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, r := range []store.Record{
		researcher("FULLCURP", "Completo", "c@example.mx"),
		researcher("", "Vacio", "v@example.mx"),
		researcher(schema.NotDetected, "No Detectado", "n@example.mx"),
		{{Column: "nombre_completo", Value: "Nulo"}, {Column: "correo", Value: "nulo@example.mx"}},
	} {
		require.True(t, s.InsertEntity(ctx, schema.Researchers, r).Success)
	}

	rows, err := s.ListIncomplete(ctx, schema.Researchers)
	require.NoError(t, err)

	var names []string
	for _, r := range rows {
		names = append(names, r.Text("nombre_completo"))
	}
	assert.Equal(t, []string{"Vacio", "No Detectado", "Nulo"}, names)

	_, err = s.ListIncomplete(ctx, schema.Publications)
	assert.Error(t, err)
}

func TestInitializeSchema_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	before := tableColumns(t, s, schema.Researchers)
	require.NoError(t, s.InitializeSchema(ctx))
	after := tableColumns(t, s, schema.Researchers)

	assert.Equal(t, before, after)
	assert.Contains(t, after, "clerk_user_id")
	assert.Contains(t, after, "es_admin")

	tbl, _ := schema.Lookup(schema.Researchers)
	assert.Len(t, after, len(tbl.AllColumns())+1)
}

func TestRunMigration(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.RunMigration(ctx, `ALTER TABLE "publicaciones" ADD COLUMN "isbn" TEXT`))
	assert.Contains(t, tableColumns(t, s, schema.Publications), "isbn")

	err := s.RunMigration(ctx, "ALTER TABLE no_such_table ADD COLUMN x TEXT")
	var qe *store.QueryError
	assert.True(t, errors.As(err, &qe), "error %v is not a QueryError", err)

	assert.Error(t, s.RunMigration(ctx, "  "))
}

func TestRawQuery(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.True(t, s.InsertEntity(ctx, schema.Publications, store.Record{
		{Column: "titulo", Value: "Catálisis"},
		{Column: "autor", Value: "Ana Ruiz"},
		{Column: "año_creacion", Value: "2021"},
	}).Success)

	rows, err := s.RawQuery(ctx, `SELECT titulo, "año_creacion" AS anio FROM publicaciones WHERE autor = ?1`, "Ana Ruiz")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Catálisis", rows[0].Text("titulo"))
	assert.Equal(t, int64(2021), mustGet(t, rows[0], "anio"))

	_, err = s.RawQuery(ctx, "SELECT * FROM missing_table")
	var qe *store.QueryError
	assert.True(t, errors.As(err, &qe))
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(store.Config{Kind: store.KindSQLite, Filename: sqlite.Memory})
	require.NoError(t, err)

	require.NoError(t, s.Disconnect(ctx), "disconnect before connect")
	require.NoError(t, s.Connect(ctx))
	require.NoError(t, s.Connect(ctx), "second connect")
	require.NoError(t, s.Disconnect(ctx))
	require.NoError(t, s.Disconnect(ctx), "second disconnect")

	// Operations connect lazily after a disconnect.
	rows, err := s.RawQuery(ctx, "SELECT 1 AS one")
	require.NoError(t, err)
	assert.Equal(t, int64(1), mustGet(t, rows[0], "one"))
	require.NoError(t, s.Disconnect(ctx))
}

func TestLazyConnectFailure(t *testing.T) {
	s := sqlstore.New("fake", sqlite.Dialect{}, func(context.Context) (sqlstore.Conn, error) {
		return nil, errors.New("dial tcp: connection refused")
	})

	_, err := s.FetchAll(context.Background(), schema.Researchers)
	assert.True(t, store.IsConnection(err), "error = %v", err)

	res := s.InsertEntity(context.Background(), schema.Researchers, researcher("X", "Y", "z@example.mx"))
	assert.False(t, res.Success)
	assert.True(t, store.IsConnection(res.Err))
}

func mustGet(t *testing.T, r store.Record, col string) any {
	t.Helper()
	v, ok := r.Get(col)
	require.True(t, ok, "column %s missing", col)
	return v
}
