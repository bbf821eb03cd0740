// assets/embed.go
//
// Files compiled into the binary.
//   - sql/*.sql: schema migrations, applied in lexical order by database.Migrate.

package assets

import (
	"embed"
	"io/fs"
)

//go:embed sql/*.sql
var FS embed.FS

// Migrations returns the migration scripts rooted at the sql directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		// the directory is embedded at compile time
		panic(err)
	}
	return sub
}
