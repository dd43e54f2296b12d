package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductStatus is the compliance state of a SKU. Transitions are
// one-directional: draft -> pending -> approved or rejected. There is no
// edge out of approved or rejected.
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusPending  ProductStatus = "pending"
	ProductStatusApproved ProductStatus = "approved"
	ProductStatusRejected ProductStatus = "rejected"
)

// InitialVersion is the version assigned to a newly created product.
const InitialVersion = "v1.0.0"

// Product represents a SKU submission tracked for compliance. Owned
// exclusively by its vendor until submission; reviewable by
// distributor/auditor thereafter.
type Product struct {
	ID              uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	VendorID        uuid.UUID     `json:"vendorId" gorm:"type:char(36);not null;index"`
	SKUNumber       string        `json:"skuNumber" gorm:"column:sku_number;uniqueIndex;size:100;not null"`
	ProductName     string        `json:"productName" gorm:"size:255;not null"`
	Category        string        `json:"category" gorm:"size:100;not null"`
	Description     string        `json:"description" gorm:"type:text;not null"`
	Manufacturer    string        `json:"manufacturer" gorm:"size:255;not null"`
	CountryOfOrigin string        `json:"countryOfOrigin" gorm:"size:100;not null"`
	IngredientsList string        `json:"ingredientsList" gorm:"type:text"`
	AllergenInfo    string        `json:"allergenInfo" gorm:"type:text"`
	Status          ProductStatus `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	Version         string        `json:"version" gorm:"size:20;not null;default:'v1.0.0'"`
	SubmittedAt     *time.Time    `json:"submittedAt"`
	ReviewedAt      *time.Time    `json:"reviewedAt"`
	ReviewedBy      *uuid.UUID    `json:"reviewedBy" gorm:"type:char(36)"`
	ReviewNotes     string        `json:"reviewNotes" gorm:"type:text"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`

	// Relations
	Vendor Vendor `json:"-" gorm:"foreignKey:VendorID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
