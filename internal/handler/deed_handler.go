package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"deedcheck/internal/csvexport"
	"deedcheck/internal/service"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// maxBatchRecords bounds a single batch request.
const maxBatchRecords = 1000

// DeedHandler handles deed validation endpoints.
type DeedHandler struct {
	svc   service.DeedService
	batch *service.BatchValidator
	log   *zap.Logger
}

// NewDeedHandler creates a new DeedHandler.
func NewDeedHandler(svc service.DeedService, batch *service.BatchValidator, log *zap.Logger) *DeedHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &DeedHandler{svc: svc, batch: batch, log: log.Named("deed_handler")}
}

// ExtractRequest is the body of POST /api/v1/deeds/extract.
type ExtractRequest struct {
	Text string `json:"text" binding:"required"`
}

// BatchRequest is the body of POST /api/v1/deeds/batch.
type BatchRequest struct {
	Records []json.RawMessage `json:"records" binding:"required"`
}

// BatchEntry is one record of a JSON batch response.
type BatchEntry struct {
	Index  int                       `json:"index"`
	Result *service.ValidationResult `json:"result,omitempty"`
	Error  *APIError                 `json:"error,omitempty"`
}

// Validate handles POST /api/v1/deeds/validate.
// The body is the structured record itself. Rejected records are a 200
// response whose outcome holds the failure.
func (h *DeedHandler) Validate(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		respondBodyError(c, "INVALID_PAYLOAD", err)
		return
	}

	res, err := h.svc.Validate(c.Request.Context(), body)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, res)
}

// respondBodyError answers 413 when the body hit maxBodyBytes and 400 with
// code for any other read or decode failure.
func respondBodyError(c *gin.Context, code string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondError(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", fmt.Sprintf("request body exceeds %d bytes", maxBodyBytes))
		return
	}
	RespondError(c, http.StatusBadRequest, code, err.Error())
}

// Extract handles POST /api/v1/deeds/extract.
func (h *DeedHandler) Extract(c *gin.Context) {
	var req ExtractRequest
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBodyError(c, "INVALID_REQUEST", err)
		return
	}

	res, err := h.svc.ExtractAndValidate(c.Request.Context(), req.Text)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, res)
}

// Batch handles POST /api/v1/deeds/batch. With ?format=csv the results are
// returned as a CSV attachment, one row per record.
func (h *DeedHandler) Batch(c *gin.Context) {
	var req BatchRequest
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBodyError(c, "INVALID_REQUEST", err)
		return
	}
	if len(req.Records) > maxBatchRecords {
		RespondError(c, http.StatusBadRequest, "BATCH_TOO_LARGE", fmt.Sprintf("a batch holds at most %d records", maxBatchRecords))
		return
	}

	items, err := h.batch.Validate(c.Request.Context(), req.Records)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	if c.Query("format") == "csv" {
		h.writeCSV(c, items)
		return
	}

	entries := make([]BatchEntry, len(items))
	for i, it := range items {
		entries[i] = BatchEntry{Index: it.Index, Result: it.Result}
		if it.Err != nil {
			_, code, msg := MapDomainError(it.Err)
			entries[i].Error = &APIError{Code: code, Message: msg}
		}
	}
	RespondOK(c, entries)
}

func (h *DeedHandler) writeCSV(c *gin.Context, items []service.BatchItem) {
	var buf bytes.Buffer
	buf.Write(csvexport.BOM)
	w := csvexport.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		HandleError(c, h.log, err)
		return
	}
	if err := w.WriteItems(items); err != nil {
		HandleError(c, h.log, err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		HandleError(c, h.log, err)
		return
	}

	filename := csvexport.BuildFilename(c.DefaultQuery("name", "deeds"), time.Now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// GetRun handles GET /api/v1/runs/:id.
func (h *DeedHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid run ID")
		return
	}

	run, err := h.svc.GetRun(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, run)
}

// ListRuns handles GET /api/v1/runs.
func (h *DeedHandler) ListRuns(c *gin.Context) {
	offset, limit := parsePagination(c)

	runs, total, err := h.svc.ListRuns(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondPaginated(c, runs, PagMeta{Total: total, Offset: offset, Limit: limit})
}
