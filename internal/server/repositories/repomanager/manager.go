// Package repomanager hands out repositories bound to a DBTX, so services can
// run the same repository code inside and outside a transaction.
package repomanager

import (
	"github.com/wh131462/stillalive/internal/dbx"
	"github.com/wh131462/stillalive/internal/server/repositories/checkins"
	"github.com/wh131462/stillalive/internal/server/repositories/contacts"
)

// RepositoryManager builds repositories over the given DBTX.
type RepositoryManager interface {
	Checkins(db dbx.DBTX) checkins.Repository
	Contacts(db dbx.DBTX) contacts.Repository
}
