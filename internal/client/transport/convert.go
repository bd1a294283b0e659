package transport

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wh131462/stillalive/internal/client/models"
	"github.com/wh131462/stillalive/internal/protocol"
	"github.com/wh131462/stillalive/internal/shared"
)

// CheckinToWire strips the local-only bookkeeping fields from a check-in.
func CheckinToWire(c *models.Checkin) *protocol.Checkin {
	return &protocol.Checkin{
		ID:        c.ID,
		Date:      c.Date,
		Content:   c.Content,
		Photo:     c.Photo,
		Mood:      string(c.Mood),
		IsMakeup:  c.IsMakeup,
		CreatedAt: c.CreatedAt.UnixMilli(),
		UpdatedAt: c.UpdatedAt.UnixMilli(),
	}
}

// CheckinFromWire builds a local check-in model from its wire shape. The
// caller decides the sync status to stamp on it.
func CheckinFromWire(w *protocol.Checkin) *models.Checkin {
	return &models.Checkin{
		ID:        w.ID,
		Date:      w.Date,
		Content:   w.Content,
		Photo:     w.Photo,
		Mood:      models.Mood(w.Mood),
		IsMakeup:  w.IsMakeup,
		CreatedAt: time.UnixMilli(w.CreatedAt),
		UpdatedAt: time.UnixMilli(w.UpdatedAt),
	}
}

// ContactToWire strips the local-only bookkeeping fields from a contact.
func ContactToWire(c *models.Contact) *protocol.Contact {
	return &protocol.Contact{
		ID:         c.ID,
		Name:       c.Name,
		Gender:     string(c.Gender),
		Birthday:   c.Birthday,
		BirthYear:  c.BirthYear,
		Photo:      c.Photo,
		MBTI:       c.MBTI,
		Impression: c.Impression,
		Experience: c.Experience,
		CreatedAt:  c.CreatedAt.UnixMilli(),
		UpdatedAt:  c.UpdatedAt.UnixMilli(),
	}
}

// ContactFromWire builds a local contact model from its wire shape.
func ContactFromWire(w *protocol.Contact) *models.Contact {
	return &models.Contact{
		ID:          w.ID,
		Name:        w.Name,
		Gender:      models.Gender(w.Gender),
		Birthday:    w.Birthday,
		BirthYear:   w.BirthYear,
		Photo:       w.Photo,
		MBTI:        w.MBTI,
		Impression:  w.Impression,
		Experience:  w.Experience,
		CreatedAt:   time.UnixMilli(w.CreatedAt),
		UpdatedAt:   time.UnixMilli(w.UpdatedAt),
		DeleteState: models.DeleteStateActive,
	}
}

// ChangeFromPending encodes one pending local change for the wire.
func ChangeFromPending(p *models.PendingChange) (*protocol.Change, error) {
	ch := &protocol.Change{
		Collection:     string(p.Collection),
		Operation:      string(p.Operation),
		LocalUpdatedAt: p.Timestamp.UnixMilli(),
	}

	var data any
	switch {
	case p.Operation == models.OperationDelete:
		data = protocol.DeleteData{ID: p.ID}
	case p.Collection == models.CollectionCheckins:
		data = CheckinToWire(p.Payload.Checkin)
	case p.Collection == models.CollectionContacts:
		data = ContactToWire(p.Payload.Contact)
	default:
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownCollection, p.Collection)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding change %s: %w", p.ID, err)
	}
	ch.Data = raw
	return ch, nil
}

// DecodeConflict parses the authority's copy inside a push conflict into a
// local payload.
func DecodeConflict(c *protocol.Conflict) (models.Payload, error) {
	switch c.Collection {
	case protocol.CollectionCheckins:
		var w protocol.Checkin
		if err := json.Unmarshal(c.ServerData, &w); err != nil {
			return models.Payload{}, fmt.Errorf("decoding conflict %s: %w", c.ID, err)
		}
		return models.Payload{Checkin: CheckinFromWire(&w)}, nil
	case protocol.CollectionContacts:
		var w protocol.Contact
		if err := json.Unmarshal(c.ServerData, &w); err != nil {
			return models.Payload{}, fmt.Errorf("decoding conflict %s: %w", c.ID, err)
		}
		return models.Payload{Contact: ContactFromWire(&w)}, nil
	default:
		return models.Payload{}, fmt.Errorf("%w: %s", shared.ErrUnknownCollection, c.Collection)
	}
}
