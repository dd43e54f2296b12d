package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is compliance paperwork attached to a product. Append-only per
// product; records are never deleted through the API. Whether a document is
// signed is derived from the digital_signatures table, not stored here.
type Document struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	ProductID  uuid.UUID `json:"productId" gorm:"type:char(36);not null;index"`
	FileName   string    `json:"fileName" gorm:"size:255;not null"`
	FileSize   int64     `json:"fileSize" gorm:"not null"`
	FileType   string    `json:"fileType" gorm:"size:150;not null"`
	StorageKey string    `json:"storageKey" gorm:"size:512;not null"`
	Version    string    `json:"version" gorm:"size:20;not null"` // product version at upload time
	UploadedBy uuid.UUID `json:"uploadedBy" gorm:"type:char(36);not null;index"`
	UploadedAt time.Time `json:"uploadedAt" gorm:"autoCreateTime"`

	// Relations
	Product Product `json:"-" gorm:"foreignKey:ProductID"`
}

// BeforeCreate sets UUID before creating the record.
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
