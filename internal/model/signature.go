package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DigitalSignature is an immutable signing record for a document. A document
// may accumulate any number of signatures.
type DigitalSignature struct {
	ID            uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	ProductID     uuid.UUID  `json:"productId" gorm:"type:char(36);not null;index"`
	DocumentID    *uuid.UUID `json:"documentId" gorm:"type:char(36);index"`
	SignedBy      uuid.UUID  `json:"signedBy" gorm:"type:char(36);not null;index"`
	SignatureHash string     `json:"signatureHash" gorm:"size:64;not null"` // SHA-256 hex
	SignatureData string     `json:"signatureData" gorm:"type:text;not null"`
	Timestamp     time.Time  `json:"timestamp" gorm:"autoCreateTime;index"`
}

// BeforeCreate sets UUID before creating the record.
func (s *DigitalSignature) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
