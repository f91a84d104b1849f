package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/gnzdotmx/okane-track-sub000/internal/errors"
	"github.com/gnzdotmx/okane-track-sub000/internal/pagination"
	"github.com/gnzdotmx/okane-track-sub000/internal/services"
	"github.com/gnzdotmx/okane-track-sub000/internal/uuid"
)

// maxImportBytes caps the size of an uploaded CSV file.
const maxImportBytes = 10 << 20

// ImportHandler handles CSV import, export and import history requests.
type ImportHandler struct {
	importService services.ImportServicer
	exportService services.ExportServicer
	auditService  services.AuditServicer
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importService services.ImportServicer, exportService services.ExportServicer, auditService services.AuditServicer) *ImportHandler {
	return &ImportHandler{importService: importService, exportService: exportService, auditService: auditService}
}

// ImportTransactions handles a CSV upload
// @Summary     Import transactions from CSV
// @Description Accepts a multipart "file" field or a raw text/csv body. Rows are validated one by one; valid rows are inserted, rows already imported are skipped, and affected balances and budgets are reconciled. The response reports per-row errors.
// @Tags        transactions
// @Accept      multipart/form-data
// @Accept      text/csv
// @Produce     json
// @Security    BearerAuth
// @Param       file       formData file   false "CSV file"
// @Param       account_id query    string false "Account applied to every row"
// @Success     200 {object} services.ImportResult "Import summary"
// @Failure     400 {object} ErrorResponse "Unreadable file or missing account information"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     429 {object} ErrorResponse "Too many imports"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/import [post]
func (h *ImportHandler) ImportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)

	accountID := c.Query("account_id")
	if accountID == "" {
		accountID = c.PostForm("account_id")
	}
	if accountID != "" && !uuid.IsValid(accountID) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid account_id"))
		return
	}

	fileName, content, err := readUpload(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.importService.ImportTransactions(c.Request.Context(), services.ImportRequest{
		UserID:    userID,
		AccountID: accountID,
		FileName:  fileName,
		Content:   content,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "IMPORT_TRANSACTIONS", "import", result.ImportID, c.ClientIP(),
		map[string]interface{}{
			"file_name": fileName,
			"total":     result.TotalRecords,
			"inserted":  result.InsertedCount,
			"errors":    result.ErrorCount,
		})

	c.JSON(http.StatusOK, result)
}

// readUpload returns the uploaded file from a multipart form, or the raw body.
func readUpload(c *gin.Context) (string, []byte, error) {
	var maxErr *http.MaxBytesError

	if file, header, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		content, err := io.ReadAll(file)
		if err != nil {
			return "", nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "could not read uploaded file")
		}
		return header.Filename, content, nil
	} else if errors.As(err, &maxErr) {
		return "", nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "file too large")
	} else if !errors.Is(err, http.ErrNotMultipart) && !errors.Is(err, http.ErrMissingFile) {
		return "", nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid multipart upload")
	}

	content, err := io.ReadAll(c.Request.Body)
	if err != nil {
		if errors.As(err, &maxErr) {
			return "", nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "file too large")
		}
		return "", nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "could not read request body")
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return "", nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "a CSV file is required")
	}
	return c.GetHeader("X-File-Name"), content, nil
}

// ExportTransactions streams the user's transactions as CSV
// @Summary     Export transactions to CSV
// @Description Export transactions, oldest first, in the format accepted by the import endpoint
// @Tags        transactions
// @Produce     text/csv
// @Security    BearerAuth
// @Param       account_id  query string false "Filter by account ID"
// @Param       category_id query string false "Filter by budget category ID"
// @Param       type        query string false "Filter by transaction type"
// @Param       from_date   query string false "Filter by start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date     query string false "Filter by end date (RFC3339 or YYYY-MM-DD)"
// @Success     200 {file} file "CSV file"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /transactions/export [get]
func (h *ImportHandler) ExportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := h.exportService.ExportTransactions(c.Request.Context(), userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fileName := fmt.Sprintf("transactions-%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// GetImportHistory lists past imports
// @Summary     Get import history
// @Description Paginated list of the user's imports, newest first
// @Tags        imports
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.ImportHistory] "Paginated import history"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /imports [get]
func (h *ImportHandler) GetImportHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.importService.GetImportHistory(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
