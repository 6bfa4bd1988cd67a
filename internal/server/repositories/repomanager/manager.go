package repomanager

import (
	"context"
	"database/sql"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/dbx"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/repositories/sessions"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
