package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fsvp/internal/model"
)

// SignatureRepository defines digital signature persistence operations.
// Signatures are immutable once created.
type SignatureRepository interface {
	CreateTx(ctx context.Context, tx interface{}, signature *model.DigitalSignature) error
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.DigitalSignature, error)
	FindByDocument(ctx context.Context, documentID uuid.UUID) ([]model.DigitalSignature, error)
}

type signatureRepository struct {
	db *gorm.DB
}

// NewSignatureRepository creates a new signature repository.
func NewSignatureRepository(db *gorm.DB) SignatureRepository {
	return &signatureRepository{db: db}
}

func (r *signatureRepository) CreateTx(ctx context.Context, tx interface{}, signature *model.DigitalSignature) error {
	txDB := tx.(*gorm.DB)
	return txDB.WithContext(ctx).Create(signature).Error
}

func (r *signatureRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.DigitalSignature, error) {
	var signatures []model.DigitalSignature
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).
		Order("timestamp DESC").Find(&signatures).Error; err != nil {
		return nil, err
	}
	return signatures, nil
}

func (r *signatureRepository) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]model.DigitalSignature, error) {
	var signatures []model.DigitalSignature
	if err := r.db.WithContext(ctx).Where("document_id = ?", documentID).
		Order("timestamp DESC").Find(&signatures).Error; err != nil {
		return nil, err
	}
	return signatures, nil
}
