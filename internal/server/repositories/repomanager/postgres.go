package repomanager

import (
	"github.com/wh131462/stillalive/internal/dbx"
	"github.com/wh131462/stillalive/internal/server/repositories/checkins"
	"github.com/wh131462/stillalive/internal/server/repositories/contacts"
)

// Postgres builds Postgres-backed repositories.
type Postgres struct{}

// NewPostgres returns a Postgres repository manager.
func NewPostgres() *Postgres {
	return &Postgres{}
}

func (*Postgres) Checkins(db dbx.DBTX) checkins.Repository {
	return checkins.NewPostgresRepository(db)
}

func (*Postgres) Contacts(db dbx.DBTX) contacts.Repository {
	return contacts.NewPostgresRepository(db)
}
