// Package records implements the record store: opaque byte values addressed
// by (namespace, key) in the SQLite records table.
//
// Every method runs against a dbx.DBTX, so a repository built on a
// transaction handle takes part in that transaction. Failures wrap
// common.ErrStorage.
package records
