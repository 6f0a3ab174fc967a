// Package sql embeds the schema migrations and query text used by the store.
package sql

import (
	"embed"
)

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/start_run.sql
var StartRun string

//go:embed queries/finish_run.sql
var FinishRun string

//go:embed queries/count_reports.sql
var CountReports string
