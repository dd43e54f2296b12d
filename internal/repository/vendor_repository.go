package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fsvp/internal/model"
)

// VendorRepository defines vendor persistence operations.
type VendorRepository interface {
	Create(ctx context.Context, vendor *model.Vendor) error
	CreateTx(ctx context.Context, tx interface{}, vendor *model.Vendor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Vendor, error)
	List(ctx context.Context) ([]model.Vendor, error)
	UpdateFieldsTx(ctx context.Context, tx interface{}, id uuid.UUID, fields map[string]interface{}) error
	TouchSubmissionTx(ctx context.Context, tx interface{}, id uuid.UUID, at time.Time) error
}

type vendorRepository struct {
	db *gorm.DB
}

// NewVendorRepository creates a new vendor repository.
func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) Create(ctx context.Context, vendor *model.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

func (r *vendorRepository) CreateTx(ctx context.Context, tx interface{}, vendor *model.Vendor) error {
	txDB := tx.(*gorm.DB)
	return txDB.WithContext(ctx).Create(vendor).Error
}

func (r *vendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	var vendor model.Vendor
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Vendor, error) {
	var vendor model.Vendor
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) List(ctx context.Context) ([]model.Vendor, error) {
	var vendors []model.Vendor
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

// UpdateFieldsTx applies a partial update within a transaction.
func (r *vendorRepository) UpdateFieldsTx(ctx context.Context, tx interface{}, id uuid.UUID, fields map[string]interface{}) error {
	txDB := tx.(*gorm.DB)
	fields["updated_at"] = time.Now()
	return txDB.WithContext(ctx).Model(&model.Vendor{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// TouchSubmissionTx refreshes the vendor's last submission date.
func (r *vendorRepository) TouchSubmissionTx(ctx context.Context, tx interface{}, id uuid.UUID, at time.Time) error {
	txDB := tx.(*gorm.DB)
	return txDB.WithContext(ctx).Model(&model.Vendor{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"last_submission_date": at, "updated_at": at}).Error
}
