package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"fsvp/internal/errors"
	"fsvp/internal/service"
)

// DocumentHandler handles document upload, download and signing endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload godoc
// @Summary Upload a compliance document for a product
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param productId path string true "Product ID"
// @Param file formData file true "Document file (pdf, docx or xlsx, max 10MB)"
// @Success 201 {object} model.Document
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /products/{productId}/documents [post]
func (h *DocumentHandler) Upload(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	productID, err := pathUUID(c, "productId")
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "file is required",
			Code:  "VALIDATION_ERROR",
		})
	}
	if fileHeader.Size > service.MaxDocumentSize {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "file exceeds the 10MB limit",
			Code:  "VALIDATION_ERROR",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, service.MaxDocumentSize+1))
	if err != nil {
		return respondError(c, err)
	}

	document, err := h.documentService.Upload(c.Request().Context(), user, productID,
		fileHeader.Filename, fileHeader.Header.Get(echo.HeaderContentType), data)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, document)
}

// ListByProduct godoc
// @Summary List a product's documents
// @Tags documents
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {array} service.DocumentView
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /products/{productId}/documents [get]
func (h *DocumentHandler) ListByProduct(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	productID, err := pathUUID(c, "productId")
	if err != nil {
		return err
	}

	documents, err := h.documentService.ListByProduct(c.Request().Context(), user, productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, documents)
}

// Download godoc
// @Summary Download a document's content
// @Tags documents
// @Produce octet-stream
// @Param id path string true "Document ID"
// @Success 200 {file} binary
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	document, data, err := h.documentService.Download(c.Request().Context(), user, id)
	if err != nil {
		return respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, document.FileName))
	c.Response().Header().Set(echo.HeaderContentLength, fmt.Sprint(document.FileSize))
	return c.Blob(http.StatusOK, document.FileType, data)
}

// Sign godoc
// @Summary Digitally sign a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 201 {object} model.DigitalSignature
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /documents/{id}/sign [post]
func (h *DocumentHandler) Sign(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	signature, err := h.documentService.Sign(c.Request().Context(), user, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, signature)
}
