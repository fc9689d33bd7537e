package models

import (
	"database/sql"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// migrations run in order on every open; each must be idempotent.
var migrations = []struct {
	name string
	sql  string
}{
	{"usuarios sequence", "CREATE SEQUENCE IF NOT EXISTS usuarios_id_seq START 1"},
	{"usuarios table", CreateUsuariosTableSQL},
}

func migrate(db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.Exec(m.sql); err != nil {
			return serr.Wrap(err, "migration failed: "+m.name)
		}
		logger.Debug("Migration applied", "name", m.name)
	}
	return nil
}
