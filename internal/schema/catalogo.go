package schema

func init() {
	register(Table{
		Name: Publications,
		Columns: []Column{
			{Name: "titulo", Type: ColumnText, NotNull: true},
			{Name: "autor", Type: ColumnText, NotNull: true},
			{Name: "institucion", Type: ColumnText},
			{Name: "editorial", Type: ColumnText},
			{Name: "año_creacion", Type: ColumnInteger},
			{Name: "doi", Type: ColumnText},
			{Name: "resumen", Type: ColumnText},
			{Name: "palabras_clave", Type: ColumnText},
			{Name: "categoria", Type: ColumnText},
			{Name: "tipo", Type: ColumnText},
			{Name: "acceso", Type: ColumnText},
			{Name: "volumen", Type: ColumnText},
			{Name: "numero", Type: ColumnText},
			{Name: "paginas", Type: ColumnText},
			{Name: "archivo_url", Type: ColumnText},
			{Name: "fecha_creacion", Type: ColumnTimestamp, Default: "CURRENT_TIMESTAMP"},
		},
		Migrations: []Column{
			{Name: "clerk_user_id", Type: ColumnText},
		},
		DisplayColumn: "titulo",
		Indexes: []Index{
			{Name: "idx_publicaciones_autor", Columns: []string{"autor"}},
		},
	})

	register(Table{
		Name: Projects,
		Columns: []Column{
			{Name: "titulo", Type: ColumnText, NotNull: true},
			{Name: "descripcion", Type: ColumnText},
			{Name: "investigador_principal", Type: ColumnText},
			{Name: "institucion", Type: ColumnText},
			{Name: "fecha_inicio", Type: ColumnDate},
			{Name: "fecha_fin", Type: ColumnDate},
			{Name: "estado", Type: ColumnText},
			{Name: "categoria", Type: ColumnText},
			{Name: "area_investigacion", Type: ColumnText},
			{Name: "presupuesto", Type: ColumnNumeric},
			{Name: "fecha_creacion", Type: ColumnTimestamp, Default: "CURRENT_TIMESTAMP"},
		},
		DisplayColumn: "titulo",
	})

	register(Table{
		Name: Institutions,
		Columns: []Column{
			{Name: "nombre", Type: ColumnText, NotNull: true},
			{Name: "siglas", Type: ColumnText},
			{Name: "tipo", Type: ColumnText},
			{Name: "estado", Type: ColumnText},
			{Name: "sitio_web", Type: ColumnText},
			{Name: "direccion", Type: ColumnText},
			{Name: "telefono", Type: ColumnText},
			{Name: "activo", Type: ColumnBool, Default: "TRUE"},
		},
		DisplayColumn: "nombre",
	})
}
