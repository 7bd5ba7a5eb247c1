// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories with the storage package.
//
// Importing this package makes the following storage kinds available:
//
//   - "mysql"    (ecombench/internal/storage/mysql)
//   - "postgres" (ecombench/internal/storage/postgres)
//   - "sqlite"   (ecombench/internal/storage/sqlite)
package all

import (
	_ "ecombench/internal/storage/mysql"
	_ "ecombench/internal/storage/postgres"
	_ "ecombench/internal/storage/sqlite"
)
