// Package migrations содержит SQL-миграции схемы (формат goose),
// встроенные в бинарник.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
