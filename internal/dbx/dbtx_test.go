package dbx

import "database/sql"

// Both handle types must keep satisfying DBTX.
var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
