package services

import (
	"time"

	"github.com/wh131462/stillalive/internal/protocol"
	"github.com/wh131462/stillalive/internal/server/models"
)

func checkinToWire(c *models.Checkin) *protocol.Checkin {
	return &protocol.Checkin{
		ID:        c.ID,
		Date:      c.Date,
		Content:   c.Content,
		Photo:     c.Photo,
		Mood:      c.Mood,
		IsMakeup:  c.IsMakeup,
		CreatedAt: c.CreatedAt.UnixMilli(),
		UpdatedAt: c.UpdatedAt.UnixMilli(),
	}
}

func checkinFromWire(userID string, w *protocol.Checkin) *models.Checkin {
	return &models.Checkin{
		ID:        w.ID,
		UserID:    userID,
		Date:      w.Date,
		Content:   w.Content,
		Photo:     w.Photo,
		Mood:      w.Mood,
		IsMakeup:  w.IsMakeup,
		CreatedAt: time.UnixMilli(w.CreatedAt),
		UpdatedAt: time.UnixMilli(w.UpdatedAt),
	}
}

func contactToWire(c *models.Contact) *protocol.Contact {
	return &protocol.Contact{
		ID:         c.ID,
		Name:       c.Name,
		Gender:     c.Gender,
		Birthday:   c.Birthday,
		BirthYear:  c.BirthYear,
		Photo:      c.Photo,
		MBTI:       c.MBTI,
		Impression: c.Impression,
		Experience: c.Experience,
		CreatedAt:  c.CreatedAt.UnixMilli(),
		UpdatedAt:  c.UpdatedAt.UnixMilli(),
		Deleted:    c.Deleted,
	}
}

func contactFromWire(userID string, w *protocol.Contact) *models.Contact {
	return &models.Contact{
		ID:         w.ID,
		UserID:     userID,
		Name:       w.Name,
		Gender:     w.Gender,
		Birthday:   w.Birthday,
		BirthYear:  w.BirthYear,
		Photo:      w.Photo,
		MBTI:       w.MBTI,
		Impression: w.Impression,
		Experience: w.Experience,
		CreatedAt:  time.UnixMilli(w.CreatedAt),
		UpdatedAt:  time.UnixMilli(w.UpdatedAt),
		Deleted:    w.Deleted,
	}
}
