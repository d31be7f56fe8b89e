// seictl is the administrative command line for the researcher registry.
//
// Usage:
//
//	# Create or upgrade the schema
//	seictl init
//
//	# Apply an additive migration
//	seictl migrate "ALTER TABLE investigadores ADD COLUMN notas TEXT"
//
//	# Export researchers to a workbook
//	seictl export --type investigadores --fields nombre,correo --format excel --out investigadores.xls
//
//	# List researchers with a missing CURP
//	seictl incomplete
//
//	# Search researchers
//	seictl search "materiales" --limit 5
//
// Connection settings come from the environment (.env is loaded when
// present) and can be overridden with --db-kind, --database-url and
// --db-file.
package main

func main() {
	Execute()
}
