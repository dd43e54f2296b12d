package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fsvp/internal/model"
)

// DocumentRepository defines document persistence operations. Documents are
// append-only; there are no update or delete methods.
type DocumentRepository interface {
	CreateTx(ctx context.Context, tx interface{}, document *model.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.Document, error)
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) CreateTx(ctx context.Context, tx interface{}, document *model.Document) error {
	txDB := tx.(*gorm.DB)
	return txDB.WithContext(ctx).Create(document).Error
}

func (r *documentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var document model.Document
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&document).Error; err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *documentRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.Document, error) {
	var documents []model.Document
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).
		Order("uploaded_at DESC").Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}
