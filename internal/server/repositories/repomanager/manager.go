package repomanager

import (
	"context"
	"database/sql"

	"github.com/avdeev/todolist/internal/dbx"
	"github.com/avdeev/todolist/internal/server/repositories/todos"
	"github.com/avdeev/todolist/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX (plain
// connection or transaction) and owns schema migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Todos(db dbx.DBTX) todos.Repository
}
