package catalog

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pborman/uuid"
	"github.com/pkg/errors"
)

// runInSavepoint implements spec.md §5's "Schema mutations run inside a
// named savepoint begun by the binding and released on success or rolled
// back on error, giving all-or-nothing DDL." Each call gets a UUID-derived
// name so concurrent DDL from different goroutines against different
// database handles never collides on savepoint name, even though SQLite
// scopes savepoint names per-connection.
func runInSavepoint(db *sql.DB, fn func() error) (err error) {
	// Savepoint names are bare SQL identifiers: dashes from the UUID's
	// canonical form are not legal there, so fold them to underscores.
	name := "gpkggeom_" + strings.Replace(uuid.New(), "-", "_", -1)

	if _, execErr := db.Exec(fmt.Sprintf("SAVEPOINT %s", name)); execErr != nil {
		return errors.Wrapf(execErr, "catalog: beginning savepoint %s", name)
	}

	defer func() {
		if err != nil {
			if _, rbErr := db.Exec(fmt.Sprintf("ROLLBACK TO %s", name)); rbErr != nil {
				err = errors.Wrapf(err, "catalog: rollback also failed: %v", rbErr)
			}
			return
		}
		if _, relErr := db.Exec(fmt.Sprintf("RELEASE %s", name)); relErr != nil {
			err = errors.Wrapf(relErr, "catalog: releasing savepoint %s", name)
		}
	}()

	return fn()
}
