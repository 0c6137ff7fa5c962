package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/letterdesk/internal/dbx"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/affiliates"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/letters"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/seeds"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// path works on a plain connection and inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	ResetTokens(db dbx.DBTX) resettokens.Repository
	Letters(db dbx.DBTX) letters.Repository
	Affiliates(db dbx.DBTX) affiliates.Repository
	Seeds(db dbx.DBTX) seeds.Repository
}
