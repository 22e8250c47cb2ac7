package handler

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"meibo/internal/csvexport"
	"meibo/internal/domain"
	"meibo/internal/port"
	"meibo/internal/recon"
	"meibo/internal/service"
	"meibo/internal/xlsxexport"
)

// BatchHandler handles scan batch upload, review and export endpoints.
type BatchHandler struct {
	sessions service.SessionService
	audits   port.BatchRepository
	engine   *recon.Engine
	schema   *domain.FieldSchema
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(sessions service.SessionService, audits port.BatchRepository, engine *recon.Engine, schema *domain.FieldSchema) *BatchHandler {
	return &BatchHandler{sessions: sessions, audits: audits, engine: engine, schema: schema}
}

// reviewRequest is the body for POST /batches/:id/review. Keys are record IDs;
// unknown IDs are ignored.
type reviewRequest struct {
	Edits map[uuid.UUID]domain.ReviewEdit `json:"edits"`
}

// Create handles POST /api/v1/batches.
// Accepts multipart/form-data with one or more "files" parts, runs extraction
// and reconciliation, and returns the resulting batch.
func (h *BatchHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "multipart form is required")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		HandleError(c, domain.ErrNoFiles)
		return
	}

	uploads := make([]service.BatchUpload, 0, len(files))
	for _, fh := range files {
		f, openErr := fh.Open()
		if openErr != nil {
			log.Printf("batchHandler.Create: opening %s: %v", fh.Filename, openErr)
			RespondError(c, http.StatusBadRequest, "INVALID_FORM", "could not read uploaded file "+fh.Filename)
			return
		}
		defer func() { _ = f.Close() }()
		uploads = append(uploads, service.BatchUpload{
			FileName: fh.Filename,
			Body:     f,
			Size:     fh.Size,
		})
	}

	view, err := h.sessions.CreateBatch(c.Request.Context(), uploads)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, view)
}

// History handles GET /api/v1/batches.
// Lists persisted audit summaries of recent batches, newest first.
func (h *BatchHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	audits, err := h.audits.ListRecent(c.Request.Context(), limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, audits)
}

// Audit handles GET /api/v1/batches/:id/audit.
// Returns the persisted summary of a batch, which outlives the in-memory session.
func (h *BatchHandler) Audit(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid batch ID")
		return
	}

	audit, err := h.audits.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, audit)
}

// Get handles GET /api/v1/batches/:id
func (h *BatchHandler) Get(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid batch ID")
		return
	}

	view, err := h.sessions.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// Review handles POST /api/v1/batches/:id/review
func (h *BatchHandler) Review(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid batch ID")
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON with an edits object")
		return
	}

	result, err := h.sessions.ApplyReview(c.Request.Context(), batchID, req.Edits)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// ExportCSV handles GET /api/v1/batches/:id/export/csv
func (h *BatchHandler) ExportCSV(c *gin.Context) {
	batchID, records, ok := h.exportRecords(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	buf.Write(csvexport.BOM)

	w := csvexport.NewWriter(&buf, h.schema)
	if err := w.WriteHeader(); err != nil {
		HandleError(c, err)
		return
	}
	for _, rec := range records {
		quality := h.engine.Score(rec.Fields, rec.Confidence)
		if err := w.WriteRecord(rec, quality); err != nil {
			HandleError(c, err)
			return
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		HandleError(c, err)
		return
	}

	filename := csvexport.BuildFilename("meibo_"+batchID.String()[:8], "csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX handles GET /api/v1/batches/:id/export/xlsx
func (h *BatchHandler) ExportXLSX(c *gin.Context) {
	batchID, records, ok := h.exportRecords(c)
	if !ok {
		return
	}

	rows := make([]xlsxexport.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, xlsxexport.Row{
			Record:  rec,
			Quality: h.engine.Score(rec.Fields, rec.Confidence),
		})
	}

	var buf bytes.Buffer
	if err := xlsxexport.Write(&buf, h.schema, rows); err != nil {
		HandleError(c, err)
		return
	}

	filename := csvexport.BuildFilename("meibo_"+batchID.String()[:8], "xlsx")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// exportRecords parses the batch ID and loads its current records. On failure
// the error response has already been written and ok is false.
func (h *BatchHandler) exportRecords(c *gin.Context) (uuid.UUID, []*domain.MergedRecord, bool) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid batch ID")
		return uuid.Nil, nil, false
	}

	records, err := h.sessions.Records(batchID)
	if err != nil {
		HandleError(c, err)
		return uuid.Nil, nil, false
	}

	return batchID, records, true
}
