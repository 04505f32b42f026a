package migrate

import "embed"

//go:embed sql/migrations sql/seeds
var Files embed.FS

const (
	MigrationsDir = "sql/migrations"
	SeedsDir      = "sql/seeds"
)
