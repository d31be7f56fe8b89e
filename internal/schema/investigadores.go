package schema

// Table names.
const (
	Researchers  = "investigadores"
	Publications = "publicaciones"
	Projects     = "proyectos"
	Institutions = "instituciones"
)

// Researcher column names used outside of DDL.
const (
	ColCURP         = "curp"
	ColFullName     = "nombre_completo"
	ColEmail        = "correo"
	ColExternalID   = "clerk_user_id"
	ColPassword     = "password"
	ColGivenNames   = "nombres"
	ColFamilyNames  = "apellidos"
	ColRegisteredAt = "fecha_registro"
)

// NotDetected is the placeholder the document extraction service writes
// when it could not read a CURP.
const NotDetected = "NO DETECTADO"

func init() {
	register(Table{
		Name: Researchers,
		Columns: []Column{
			{Name: "curp", Type: ColumnText},
			{Name: "nombre_completo", Type: ColumnText, NotNull: true},
			{Name: "rfc", Type: ColumnText},
			{Name: "correo", Type: ColumnText, NotNull: true, Unique: true},
			{Name: "telefono", Type: ColumnText},
			{Name: "no_cvu", Type: ColumnText},
			{Name: "orcid", Type: ColumnText},
			{Name: "nivel", Type: ColumnText},
			{Name: "area", Type: ColumnText},
			{Name: "institucion", Type: ColumnText},
			{Name: "nacionalidad", Type: ColumnText},
			{Name: "fecha_nacimiento", Type: ColumnDate},
			{Name: "grado_maximo_estudios", Type: ColumnText},
			{Name: "disciplina", Type: ColumnText},
			{Name: "especialidad", Type: ColumnText},
			{Name: "linea_investigacion", Type: ColumnText},
			{Name: "sni", Type: ColumnText},
			{Name: "anio_sni", Type: ColumnInteger},
			{Name: "experiencia_docente", Type: ColumnText},
			{Name: "experiencia_laboral", Type: ColumnText},
			{Name: "proyectos_investigacion", Type: ColumnText},
			{Name: "articulos", Type: ColumnText},
			{Name: "libros", Type: ColumnText},
			{Name: "premios_distinciones", Type: ColumnText},
			{Name: "idiomas", Type: ColumnText},
			{Name: "genero", Type: ColumnText},
			{Name: "estado_nacimiento", Type: ColumnText},
			{Name: "municipio", Type: ColumnText},
			{Name: "domicilio", Type: ColumnText},
			{Name: "cp", Type: ColumnText},
			{Name: "entidad_federativa", Type: ColumnText},
			{Name: "orcid_verificado", Type: ColumnBool, Default: "FALSE"},
			{Name: "fecha_registro", Type: ColumnTimestamp, Default: "CURRENT_TIMESTAMP"},
		},
		Migrations: []Column{
			{Name: "clerk_user_id", Type: ColumnText},
			{Name: "password", Type: ColumnText},
			{Name: "nombres", Type: ColumnText},
			{Name: "apellidos", Type: ColumnText},
			{Name: "empleo_actual", Type: ColumnText},
			{Name: "area_investigacion", Type: ColumnText},
			{Name: "nivel_investigador", Type: ColumnText},
			{Name: "ultimo_grado_estudios", Type: ColumnText},
			{Name: "fotografia_url", Type: ColumnText},
			{Name: "slug", Type: ColumnText},
			{Name: "ultima_actividad", Type: ColumnTimestamp},
			{Name: "es_admin", Type: ColumnBool, Default: "FALSE"},
		},
		NaturalKey:       ColCURP,
		MissingKeyValues: []string{NotDetected},
		DisplayColumn:    ColFullName,
		SearchColumns: []string{
			"nombre_completo",
			"nombres",
			"apellidos",
			"correo",
			"clerk_user_id",
			"institucion",
			"empleo_actual",
			"area",
			"area_investigacion",
			"linea_investigacion",
		},
		Indexes: []Index{
			{Name: "idx_investigadores_clerk_user_id", Columns: []string{"clerk_user_id"}},
			{Name: "idx_investigadores_slug", Columns: []string{"slug"}},
		},
	})
}
