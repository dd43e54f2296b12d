package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fsvp/internal/authz"
	apperrors "fsvp/internal/errors"
	"fsvp/internal/model"
	"fsvp/internal/repository"
	"fsvp/internal/storage"
)

// MaxDocumentSize is the upload ceiling in bytes.
const MaxDocumentSize = 10 << 20 // 10MB

// allowedDocumentTypes maps accepted extensions to their expected MIME types.
var allowedDocumentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// DocumentView is a document plus its derived signed flag.
type DocumentView struct {
	model.Document
	Signed bool `json:"signed"`
}

// DocumentService manages compliance paperwork and signing.
type DocumentService interface {
	Upload(ctx context.Context, actor *model.User, productID uuid.UUID, fileName, contentType string, data []byte) (*model.Document, error)
	ListByProduct(ctx context.Context, actor *model.User, productID uuid.UUID) ([]DocumentView, error)
	Download(ctx context.Context, actor *model.User, documentID uuid.UUID) (*model.Document, []byte, error)
	Sign(ctx context.Context, actor *model.User, documentID uuid.UUID) (*model.DigitalSignature, error)
}

type documentService struct {
	documentRepo  repository.DocumentRepository
	signatureRepo repository.SignatureRepository
	productRepo   repository.ProductRepository
	vendorRepo    repository.VendorRepository
	auditSvc      AuditService
	store         storage.ObjectStore
	logger        *zap.Logger
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	documentRepo repository.DocumentRepository,
	signatureRepo repository.SignatureRepository,
	productRepo repository.ProductRepository,
	vendorRepo repository.VendorRepository,
	auditSvc AuditService,
	store storage.ObjectStore,
	logger *zap.Logger,
) DocumentService {
	return &documentService{
		documentRepo:  documentRepo,
		signatureRepo: signatureRepo,
		productRepo:   productRepo,
		vendorRepo:    vendorRepo,
		auditSvc:      auditSvc,
		store:         store,
		logger:        logger,
	}
}

// Upload attaches a file to a product the actor's vendor owns. The document
// row, the product touch and the audit entry commit together; the object
// write happens first so a failed transaction leaves only an orphan blob.
func (s *documentService) Upload(ctx context.Context, actor *model.User, productID uuid.UUID, fileName, contentType string, data []byte) (*model.Document, error) {
	if !authz.Allowed(actor.Role, authz.CapDocumentUpload) {
		return nil, apperrors.Forbidden("only vendors can upload documents")
	}

	if len(data) == 0 {
		return nil, apperrors.Validation("file is empty")
	}
	if len(data) > MaxDocumentSize {
		return nil, apperrors.Validation("file exceeds the 10MB limit")
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	expectedType, ok := allowedDocumentTypes[ext]
	if !ok {
		return nil, apperrors.Validation("only pdf, docx and xlsx files are accepted")
	}
	if contentType != "" && contentType != expectedType && contentType != "application/octet-stream" {
		return nil, apperrors.Validation("file content type does not match its extension")
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	owned, err := s.ownsProduct(ctx, actor, product)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, apperrors.Forbidden("you do not own this product")
	}

	key := fmt.Sprintf("documents/%s/%d-%s", productID, time.Now().UnixMilli(), filepath.Base(fileName))
	if err := s.store.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	document := &model.Document{
		ProductID:  productID,
		FileName:   filepath.Base(fileName),
		FileSize:   int64(len(data)),
		FileType:   expectedType,
		StorageKey: key,
		Version:    product.Version,
		UploadedBy: actor.ID,
	}

	err = s.productRepo.WithTransaction(ctx, func(ctx context.Context, tx interface{}) error {
		if err := s.documentRepo.CreateTx(ctx, tx, document); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.productRepo.TouchTx(ctx, tx, productID); err != nil {
			return fmt.Errorf("touch product: %w", err)
		}
		return s.auditSvc.RecordTx(ctx, tx, &model.AuditLog{
			UserID:      actor.ID,
			Action:      model.AuditActionUpload,
			EntityType:  model.EntityTypeDocument,
			EntityID:    document.ID,
			Description: fmt.Sprintf("document %s uploaded to product %s", document.FileName, product.SKUNumber),
			Version:     product.Version,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document uploaded",
		zap.String("documentId", document.ID.String()),
		zap.String("productId", productID.String()),
		zap.Int64("size", document.FileSize))
	return document, nil
}

// ListByProduct returns a product's documents with the signed flag computed
// from signature existence.
func (s *documentService) ListByProduct(ctx context.Context, actor *model.User, productID uuid.UUID) ([]DocumentView, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, actor, product); err != nil {
		return nil, err
	}

	documents, err := s.documentRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	signatures, err := s.signatureRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	signedDocs := make(map[uuid.UUID]bool, len(signatures))
	for _, sig := range signatures {
		if sig.DocumentID != nil {
			signedDocs[*sig.DocumentID] = true
		}
	}

	views := make([]DocumentView, 0, len(documents))
	for _, doc := range documents {
		views = append(views, DocumentView{Document: doc, Signed: signedDocs[doc.ID]})
	}
	return views, nil
}

// Download returns the document metadata and its stored bytes.
func (s *documentService) Download(ctx context.Context, actor *model.User, documentID uuid.UUID) (*model.Document, []byte, error) {
	document, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	product, err := s.loadProduct(ctx, document.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorizeRead(ctx, actor, product); err != nil {
		return nil, nil, err
	}

	data, err := s.store.Get(ctx, document.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch document content: %w", err)
	}
	return document, data, nil
}

// Sign records an immutable signature over a document's current content.
// The hash covers the base64 content, the signing instant and the signer, so
// any replay with different bytes or identity produces a different digest.
func (s *documentService) Sign(ctx context.Context, actor *model.User, documentID uuid.UUID) (*model.DigitalSignature, error) {
	if !authz.Allowed(actor.Role, authz.CapDocumentSign) {
		return nil, apperrors.Forbidden("insufficient role to sign documents")
	}

	document, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	product, err := s.loadProduct(ctx, document.ProductID)
	if err != nil {
		return nil, err
	}

	// Vendors may only sign documents on their own products.
	if authz.Check(actor.Role, authz.CapDocumentSign) == authz.AllowOwner {
		owned, err := s.ownsProduct(ctx, actor, product)
		if err != nil {
			return nil, err
		}
		if !owned {
			return nil, apperrors.Forbidden("you do not own this product")
		}
	}

	data, err := s.store.Get(ctx, document.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("fetch document content: %w", err)
	}

	signedAt := time.Now().UTC()
	timestamp := signedAt.Format(time.RFC3339Nano)
	digest := sha256.Sum256([]byte(base64.StdEncoding.EncodeToString(data) + timestamp + actor.ID.String()))

	payload, err := json.Marshal(map[string]interface{}{
		"timestamp":  timestamp,
		"userId":     actor.ID.String(),
		"userName":   actor.Name,
		"userRole":   actor.Role,
		"documentId": document.ID.String(),
		"fileName":   document.FileName,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal signature data: %w", err)
	}

	signature := &model.DigitalSignature{
		ProductID:     document.ProductID,
		DocumentID:    &document.ID,
		SignedBy:      actor.ID,
		SignatureHash: hex.EncodeToString(digest[:]),
		SignatureData: string(payload),
	}

	err = s.productRepo.WithTransaction(ctx, func(ctx context.Context, tx interface{}) error {
		if err := s.signatureRepo.CreateTx(ctx, tx, signature); err != nil {
			return fmt.Errorf("create signature: %w", err)
		}
		return s.auditSvc.RecordTx(ctx, tx, &model.AuditLog{
			UserID:      actor.ID,
			Action:      model.AuditActionSign,
			EntityType:  model.EntityTypeDocument,
			EntityID:    document.ID,
			Description: fmt.Sprintf("document %s signed", document.FileName),
			Version:     document.Version,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document signed",
		zap.String("documentId", document.ID.String()),
		zap.String("signedBy", actor.ID.String()))
	return signature, nil
}

func (s *documentService) loadDocument(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	document, err := s.documentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("document not found")
		}
		return nil, err
	}
	return document, nil
}

func (s *documentService) loadProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, err
	}
	return product, nil
}

func (s *documentService) ownsProduct(ctx context.Context, actor *model.User, product *model.Product) (bool, error) {
	vendor, err := s.vendorRepo.FindByUserID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return vendor.ID == product.VendorID, nil
}

func (s *documentService) authorizeRead(ctx context.Context, actor *model.User, product *model.Product) error {
	if authz.Allowed(actor.Role, authz.CapProductViewAll) {
		return nil
	}
	owned, err := s.ownsProduct(ctx, actor, product)
	if err != nil {
		return err
	}
	if !owned {
		return apperrors.Forbidden("you do not own this product")
	}
	return nil
}
