package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationStatus tracks how far a vendor has progressed through
// supplier verification.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
)

// Vendor is the supplier profile owned 1:1 by a user with the vendor role.
// Created automatically at registration. Only distributor/auditor/admin may
// change the verification status.
type Vendor struct {
	ID                 uuid.UUID          `json:"id" gorm:"type:char(36);primaryKey"`
	UserID             uuid.UUID          `json:"userId" gorm:"type:char(36);uniqueIndex;not null"`
	CompanyName        string             `json:"companyName" gorm:"size:255;not null"`
	Country            string             `json:"country" gorm:"size:100"`
	Address            string             `json:"address" gorm:"size:255"`
	Phone              string             `json:"phone" gorm:"size:50"`
	VerificationStatus VerificationStatus `json:"verificationStatus" gorm:"type:varchar(20);not null;default:'unverified';index"`
	LastSubmissionDate *time.Time         `json:"lastSubmissionDate"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (v *Vendor) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
