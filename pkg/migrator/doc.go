// Package migrator discovers and loads versioned migration directories.
//
// A migration directory contains one subdirectory per version. Each version
// directory is named <version_id>_<label> and holds an up.sql script to apply
// the version and a down.sql script to roll it back:
//
//	migrations/
//	  001_init/
//	    up.sql
//	    down.sql
//	  002_add_orders/
//	    up.sql
//	    down.sql
//
// The version id is the leading integer of the directory name and must be
// unique across the whole directory, not just within the range being loaded.
// Entries that are not directories, or whose names do not start with an
// integer, are ignored.
//
// Loading a range parses every selected script with the parser package so
// callers get both the exact statements to execute and the folded resources
// each version touches:
//
//	loader := migrator.NewLoader("./migrations", parser.Postgres, logger)
//
//	coll, err := loader.Load(migrator.Up, 0, math.MaxInt64)
//	if err != nil {
//		return err
//	}
//
//	for id, mig := range coll.All() {
//		fmt.Printf("%d: %d statement(s)\n", id, mig.Statements.Len())
//	}
package migrator
