package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailLog records one outbound transactional email.
type EmailLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Template   *string   `gorm:"column:template"`
	Subject    string    `gorm:"column:subject;not null"`
	Body       string    `gorm:"column:body;not null"`
	Recipients string    `gorm:"column:recipients;not null"`
	SentAt     time.Time `gorm:"column:sent_at;autoCreateTime"`
}

func (e *EmailLog) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
