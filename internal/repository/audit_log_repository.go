package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fsvp/internal/model"
)

// AuditLogFilter narrows List queries. Zero values mean "no filter".
type AuditLogFilter struct {
	Limit      int
	Offset     int
	Action     model.AuditAction
	EntityType string
	StartDate  *time.Time
	EndDate    *time.Time
}

// MaxAuditPageSize caps how many log rows one page may return.
const MaxAuditPageSize = 500

// DefaultAuditPageSize is used when the caller gives no limit.
const DefaultAuditPageSize = 100

// AuditLogRepository is the append-only ledger. It deliberately exposes no
// update or delete operations; rows are immutable once written.
type AuditLogRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error
	CreateTx(ctx context.Context, tx interface{}, log *model.AuditLog) error
	FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]model.AuditLog, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]model.AuditLog, error)
	// List returns one page of logs plus the total count matching the
	// filters regardless of pagination.
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, int64, error)
	// FindForProduct assembles the derived trail: logs for the product
	// itself plus logs for its documents and signatures.
	FindForProduct(ctx context.Context, productID uuid.UUID) ([]model.AuditLog, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository.
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, log *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *auditLogRepository) CreateTx(ctx context.Context, tx interface{}, log *model.AuditLog) error {
	txDB := tx.(*gorm.DB)
	return txDB.WithContext(ctx).Create(log).Error
}

func (r *auditLogRepository) FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("timestamp DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *auditLogRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *auditLogRepository) List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, int64, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultAuditPageSize
	}
	if limit > MaxAuditPageSize {
		limit = MaxAuditPageSize
	}

	query := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.StartDate != nil {
		query = query.Where("timestamp >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("timestamp <= ?", *filter.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.AuditLog
	if err := query.Order("timestamp DESC").
		Limit(limit).Offset(filter.Offset).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

func (r *auditLogRepository) FindForProduct(ctx context.Context, productID uuid.UUID) ([]model.AuditLog, error) {
	documentIDs := r.db.Model(&model.Document{}).Select("id").Where("product_id = ?", productID)
	signatureIDs := r.db.Model(&model.DigitalSignature{}).Select("id").Where("product_id = ?", productID)

	var logs []model.AuditLog
	if err := r.db.WithContext(ctx).
		Where("(entity_type = ? AND entity_id = ?) OR (entity_type = ? AND entity_id IN (?)) OR (entity_type = ? AND entity_id IN (?))",
			model.EntityTypeProduct, productID,
			model.EntityTypeDocument, documentIDs,
			model.EntityTypeSignature, signatureIDs).
		Order("timestamp DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
