package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/case-import-api/internal/config"
	"github.com/case-import-api/internal/models"
	"github.com/case-import-api/internal/service"
	"github.com/case-import-api/internal/sheet"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ImportHandler handles import endpoints
type ImportHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "import").Logger(),
	}
}

// CreateImport handles POST /v1/imports
// Accepts one or more spreadsheets under the multipart field "files" and an
// optional "mapping" field holding a JSON object of field to column label.
func (h *ImportHandler) CreateImport(c *gin.Context) {
	ctx := c.Request.Context()
	caller := callerFrom(c)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form with files is required"})
		return
	}

	headers := append(form.File["files"], form.File["file"]...)
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one file is required"})
		return
	}
	if len(headers) > h.cfg.Import.MaxFiles {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("too many files, max is %d per import", h.cfg.Import.MaxFiles),
		})
		return
	}

	var mapping models.ColumnMapping
	if raw := c.PostForm("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "mapping must be a JSON object of field to column name"})
			return
		}
	}

	files := make([]models.ImportFile, 0, len(headers))
	for _, header := range headers {
		// Validate file size
		if header.Size > h.cfg.Import.MaxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("%s is too large, max size is %d MB", header.Filename, h.cfg.Import.MaxUploadSize/(1024*1024)),
			})
			return
		}
		if !sheet.SupportedExtension(header.Filename) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("%s: unsupported file type, expected .xlsx, .xlsm, .csv or .txt", header.Filename),
			})
			return
		}

		data, err := readUpload(header)
		if err != nil {
			h.log.Error().Err(err).Str("file", header.Filename).Msg("Failed to read upload")
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read " + header.Filename})
			return
		}
		files = append(files, models.ImportFile{Name: header.Filename, Data: data})
	}

	progress := func(p models.ImportProgress) {
		h.log.Debug().
			Str("tenant_id", caller.TenantID).
			Int("current", p.Current).
			Int("total", p.Total).
			Str("file", p.FileName).
			Msg("Importing file")
	}

	result, err := h.services.Import.ImportBatch(ctx, caller.TenantID, files, mapping, progress)
	if err != nil {
		h.log.Warn().Err(err).Str("tenant_id", caller.TenantID).Msg("Import interrupted")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "import interrupted", "result": result})
		return
	}

	h.log.Info().
		Str("tenant_id", caller.TenantID).
		Str("user_id", caller.UserID).
		Int("files", len(files)).
		Int("imported", result.Imported).
		Int("errors", result.Errors).
		Msg("Import completed")

	c.JSON(http.StatusOK, result)
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
