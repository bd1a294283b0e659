package repomanager

import (
	"github.com/wh131462/stillalive/internal/dbx"
	"github.com/wh131462/stillalive/internal/server/repositories/checkins"
	"github.com/wh131462/stillalive/internal/server/repositories/contacts"
)

// Memory hands out one shared pair of in-memory repositories regardless of
// the DBTX. Tests only.
type Memory struct {
	checkins *checkins.MemoryRepository
	contacts *contacts.MemoryRepository
}

// NewMemory returns an in-memory repository manager.
func NewMemory() *Memory {
	return &Memory{
		checkins: checkins.NewMemoryRepository(),
		contacts: contacts.NewMemoryRepository(),
	}
}

func (m *Memory) Checkins(dbx.DBTX) checkins.Repository { return m.checkins }

func (m *Memory) Contacts(dbx.DBTX) contacts.Repository { return m.contacts }
