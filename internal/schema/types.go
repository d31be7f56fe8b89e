// Package schema holds the static table definitions the persistence layer
// creates and evolves. Definitions are backend-neutral; each adapter's
// dialect turns them into DDL.
package schema

import "sort"

// ColumnType is the logical type of a column.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnInteger
	ColumnBool
	ColumnDate
	ColumnTimestamp
	ColumnNumeric
)

// Column describes a single table column.
type Column struct {
	Name    string
	Type    ColumnType
	NotNull bool
	Unique  bool
	Default string // raw SQL default expression, empty for none
}

// Index is a secondary index created after the table and its migrations.
type Index struct {
	Name    string
	Columns []string
}

// Table is the definition of one entity table.
type Table struct {
	Name    string
	Columns []Column // baseline columns, id is implicit

	// Migrations are additive columns applied in order after the baseline
	// table exists. Each one must be safe to re-apply.
	Migrations []Column

	// NaturalKey is the business identifier checked before insert.
	// Empty when the table has none.
	NaturalKey string

	// MissingKeyValues are placeholder values of NaturalKey that count as
	// absent in addition to NULL and the empty string.
	MissingKeyValues []string

	DisplayColumn string
	SearchColumns []string
	Indexes       []Index
}

// AllColumns returns the baseline columns followed by the migration columns.
func (t Table) AllColumns() []Column {
	cols := make([]Column, 0, len(t.Columns)+len(t.Migrations))
	cols = append(cols, t.Columns...)
	return append(cols, t.Migrations...)
}

// Column returns the named column definition.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.AllColumns() {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

var tables = map[string]Table{}

// register adds a table definition. Panics on duplicate names.
func register(t Table) {
	if _, exists := tables[t.Name]; exists {
		panic("schema: table already registered: " + t.Name)
	}
	tables[t.Name] = t
}

// Lookup returns the table definition with the given name.
func Lookup(name string) (Table, bool) {
	t, ok := tables[name]
	return t, ok
}

// All returns every table definition in creation order.
// Tables are created alphabetically so that the result is stable.
func All() []Table {
	result := make([]Table, 0, len(tables))
	for _, t := range tables {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
