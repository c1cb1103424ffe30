package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/accaprep/backend/internal/importer"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxImportFileSize = 20 * 1024 * 1024 // 20MB

// ImportService is the interface that wraps methods for question bank imports.
type ImportService interface {
	// Method Import reads a question bank from r and upserts it into the store.
	// The format is chosen from the file name extension (.xlsx or .csv).
	//
	// Row-level problems are collected into the result; only unreadable files
	// produce an error together with "nil" value.
	Import(ctx context.Context, r io.Reader, filename string) (*importer.Result, error)
}

// AdminHandler handles question bank administration requests
type AdminHandler struct {
	BaseHandler
	imports ImportService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(imports ImportService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		imports:     imports,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all admin handler routes
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Post("/admin/questions/import", h.ImportQuestions)
}

// ImportQuestions handles POST /api/v1/admin/questions/import
// @Summary Import a question bank
// @Description Upload an XLSX or CSV question bank. Rows with problems are skipped and reported. Requires the admin API key.
// @Tags admin
// @Accept mpfd
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "Question bank file (.xlsx or .csv)"
// @Success 200 {object} importer.Result
// @Failure 400 {object} map[string]string "Bad request - missing file or unreadable format"
// @Failure 401 {object} map[string]string "Unauthorized - invalid or missing API key"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/questions/import [post]
func (h *AdminHandler) ImportQuestions(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportFileSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	result, err := h.imports.Import(r.Context(), file, header.Filename)
	if err != nil {
		h.logger.Error("question import failed", zap.Error(err), zap.String("filename", header.Filename))
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info("question bank imported",
		zap.String("filename", header.Filename),
		zap.Int("processed", result.Processed),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
	)

	h.respondJSON(w, http.StatusOK, result)
}
