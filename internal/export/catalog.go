// Package export turns catalog-constrained projections of a table into
// downloadable reports.
//
// A Job names a dataset, the fields to include and an output format. Plan
// intersects the requested fields with the dataset's catalog entry and
// builds the projection; Engine.Run executes it; the Write* functions render
// the result. Every cell is projected as text, so the renderers never see
// typed values.
package export

import (
	"sort"

	"github.com/I2Cprogramacion/SEI-sub000/internal/schema"
)

// Field is one exportable column: the public key clients request, the
// header label, and the underlying column.
type Field struct {
	Key    string
	Label  string
	Column string
}

// Dataset is the catalog entry for one exportable table.
type Dataset struct {
	Key    string
	Table  string
	Fields []Field
}

// Field returns the catalog field with the given key.
func (d Dataset) Field(key string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Catalog maps dataset keys to their exportable fields.
type Catalog map[string]Dataset

// Lookup returns the dataset for key.
func (c Catalog) Lookup(key string) (Dataset, bool) {
	d, ok := c[key]
	return d, ok
}

// Keys returns the dataset keys in sorted order.
func (c Catalog) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultCatalog is the whitelist served by the admin export endpoint.
var DefaultCatalog = Catalog{
	schema.Researchers: {
		Key:   schema.Researchers,
		Table: schema.Researchers,
		Fields: []Field{
			{"nombre", "Nombre", schema.ColFullName},
			{"nombre_completo", "Nombre Completo", schema.ColFullName},
			{"curp", "CURP", schema.ColCURP},
			{"rfc", "RFC", "rfc"},
			{"correo", "Correo Electrónico", schema.ColEmail},
			{"telefono", "Teléfono", "telefono"},
			{"institucion", "Institución", "institucion"},
			{"area_investigacion", "Área de Investigación", "area_investigacion"},
			{"linea_investigacion", "Línea de Investigación", "linea_investigacion"},
			{"nivel_investigador", "Nivel Investigador", "nivel_investigador"},
			{"ultimo_grado_estudios", "Último Grado de Estudios", "ultimo_grado_estudios"},
			{"municipio", "Municipio", "municipio"},
			{"nacionalidad", "Nacionalidad", "nacionalidad"},
			{"genero", "Género", "genero"},
			{"fecha_registro", "Fecha de Registro", schema.ColRegisteredAt},
		},
	},
	schema.Projects: {
		Key:   schema.Projects,
		Table: schema.Projects,
		Fields: []Field{
			{"titulo", "Título", "titulo"},
			{"descripcion", "Descripción", "descripcion"},
			{"investigador_principal", "Investigador Principal", "investigador_principal"},
			{"institucion", "Institución", "institucion"},
			{"fecha_inicio", "Fecha de Inicio", "fecha_inicio"},
			{"fecha_fin", "Fecha de Fin", "fecha_fin"},
			{"estado", "Estado", "estado"},
			{"categoria", "Categoría", "categoria"},
			{"area_investigacion", "Área de Investigación", "area_investigacion"},
			{"presupuesto", "Presupuesto", "presupuesto"},
		},
	},
	schema.Institutions: {
		Key:   schema.Institutions,
		Table: schema.Institutions,
		Fields: []Field{
			{"nombre", "Nombre", "nombre"},
			{"siglas", "Siglas", "siglas"},
			{"tipo", "Tipo", "tipo"},
			{"estado", "Estado", "estado"},
			{"sitio_web", "Sitio Web", "sitio_web"},
			{"direccion", "Dirección", "direccion"},
			{"telefono", "Teléfono", "telefono"},
			{"activo", "Activo", "activo"},
		},
	},
	schema.Publications: {
		Key:   schema.Publications,
		Table: schema.Publications,
		Fields: []Field{
			{"titulo", "Título", "titulo"},
			{"autor", "Autor(es)", "autor"},
			{"editorial", "Editorial/Revista", "editorial"},
			{"año_creacion", "Año", "año_creacion"},
			{"doi", "DOI", "doi"},
			{"tipo", "Tipo", "tipo"},
			{"categoria", "Categoría", "categoria"},
			{"resumen", "Resumen", "resumen"},
			{"palabras_clave", "Palabras Clave", "palabras_clave"},
		},
	},
}
