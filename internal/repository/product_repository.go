package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fsvp/internal/model"
)

// ProductRepository defines product persistence operations. Status
// transitions and edits go through the guarded Tx variants so that
// concurrent writers serialize on the row's current state.
type ProductRepository interface {
	CreateTx(ctx context.Context, tx interface{}, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDTx(ctx context.Context, tx interface{}, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, skuNumber string) (*model.Product, error)
	FindByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Product, error)
	FindByStatus(ctx context.Context, status model.ProductStatus) ([]model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	// UpdateStatusGuardedTx updates fields only while the row still has the
	// given status. Returns the number of rows affected; 0 means another
	// writer won the race.
	UpdateStatusGuardedTx(ctx context.Context, tx interface{}, id uuid.UUID, current model.ProductStatus, fields map[string]interface{}) (int64, error)
	// UpdateVersionGuardedTx updates fields only while the row still carries
	// the given version string (optimistic check for field edits).
	UpdateVersionGuardedTx(ctx context.Context, tx interface{}, id uuid.UUID, currentVersion string, fields map[string]interface{}) (int64, error)
	TouchTx(ctx context.Context, tx interface{}, id uuid.UUID) error
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interface{}) error) error
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) CreateTx(ctx context.Context, tx interface{}, product *model.Product) error {
	txDB := tx.(*gorm.DB)
	return txDB.WithContext(ctx).Create(product).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDTx(ctx context.Context, tx interface{}, id uuid.UUID) (*model.Product, error) {
	txDB := tx.(*gorm.DB)
	var product model.Product
	if err := txDB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySKU(ctx context.Context, skuNumber string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("sku_number = ?", skuNumber).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID).
		Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindByStatus(ctx context.Context, status model.ProductStatus) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Where("status = ?", status).
		Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) UpdateStatusGuardedTx(ctx context.Context, tx interface{}, id uuid.UUID, current model.ProductStatus, fields map[string]interface{}) (int64, error) {
	txDB := tx.(*gorm.DB)
	res := txDB.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND status = ?", id, current).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *productRepository) UpdateVersionGuardedTx(ctx context.Context, tx interface{}, id uuid.UUID, currentVersion string, fields map[string]interface{}) (int64, error) {
	txDB := tx.(*gorm.DB)
	res := txDB.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND version = ?", id, currentVersion).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// TouchTx refreshes updated_at, used when a child entity changes.
func (r *productRepository) TouchTx(ctx context.Context, tx interface{}, id uuid.UUID) error {
	txDB := tx.(*gorm.DB)
	return txDB.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

// WithTransaction executes a function within a database transaction.
func (r *productRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interface{}) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, tx)
	})
}
