// Package data embeds the database initialization scripts used by the test containers.
package data

import (
	_ "embed"
	"strings"
)

//go:embed initdb/mariadb/002-ddl-tables.sql
var InitdbMariaDBTables string

//go:embed initdb/mariadb/003-ddl-privileges.sql
var InitdbMariaDBPrivileges string

//go:embed initdb/postgres/002-ddl-tables.sql
var InitdbPostgresTables string

//go:embed initdb/postgres/003-ddl-privileges.sql
var InitdbPostgresPrivileges string

// Render substitutes the database and user placeholders in an init script.
func Render(script, database, appUser, user string) string {
	return strings.NewReplacer(
		"{{DATABASE}}", database,
		"{{APP_USER}}", appUser,
		"{{USER}}", user,
	).Replace(script)
}
