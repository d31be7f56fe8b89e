// Package backends registers every store backend with the default registry.
// Import this package to make all kinds resolvable.
package backends

import (
	_ "github.com/I2Cprogramacion/SEI-sub000/internal/store/postgres" // postgresql, vercelPostgres
	_ "github.com/I2Cprogramacion/SEI-sub000/internal/store/sqlite"   // sqlite
	_ "github.com/I2Cprogramacion/SEI-sub000/internal/store/stub"     // mysql, mongodb
)
