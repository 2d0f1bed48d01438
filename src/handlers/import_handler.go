package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/lingesh369/tradelens/backend/src/config"
	"github.com/lingesh369/tradelens/backend/src/csvimport"
	"github.com/lingesh369/tradelens/backend/src/logger"
	"github.com/lingesh369/tradelens/backend/src/models"
	"github.com/lingesh369/tradelens/backend/src/security/validation"
	"github.com/lingesh369/tradelens/backend/src/services"
	"github.com/lingesh369/tradelens/backend/src/utils"
)

type ImportHandler struct {
	importService services.ImportService
}

func NewImportHandler(service services.ImportService) *ImportHandler {
	return &ImportHandler{
		importService: service,
	}
}

// HandlePreview accepts a CSV upload, validates its content, and returns the
// header list, a preview slice, the suggested column mapping and a session
// id for the later commit step.
func (h *ImportHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "userID", userID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file header reports size too large", "userID", userID, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "userID", userID, "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		logger.L.Warn("Server-side file content validation failed", "userID", userID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.L.Info("File content validated", "userID", userID, "filename", fileHeader.Filename, "clientType", clientContentType, "detectedType", detectedContentType)

	preview, err := h.importService.CreatePreview(file, fileHeader.Filename, userID)
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) {
			logger.L.Warn("Preview failed due to CSV parsing errors", "userID", userID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing CSV file: %v", err), http.StatusBadRequest)
		} else {
			logger.L.Error("Internal error creating import preview", "userID", userID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "An internal error occurred while reading the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(preview); err != nil {
		logger.L.Error("Error encoding JSON response for import preview", "userID", userID, "error", err)
	}
}

// HandleGetFields lists the canonical trade fields the mapping UI offers as
// targets.
func (h *ImportHandler) HandleGetFields(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(csvimport.Fields); err != nil {
		logger.L.Error("Error encoding JSON response for field list", "error", err)
	}
}

type commitImportRequest struct {
	SessionID string               `json:"session_id"`
	Mapping   models.ColumnMapping `json:"mapping"`
}

// HandleCommit processes the full dataset of a previewed upload with the
// submitted column mapping and persists the resulting trades.
func (h *ImportHandler) HandleCommit(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req commitImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid JSON request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		utils.SendJSONError(w, "session_id is required", http.StatusBadRequest)
		return
	}
	if len(req.Mapping) == 0 {
		utils.SendJSONError(w, "mapping is required", http.StatusBadRequest)
		return
	}

	result, err := h.importService.CommitImport(userID, req.SessionID, req.Mapping)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			logger.L.Warn("Commit failed, session not found", "userID", userID, "sessionID", req.SessionID)
			utils.SendJSONError(w, "Import session not found or expired. Upload the file again.", http.StatusNotFound)
		case errors.Is(err, services.ErrMappingInvalid):
			logger.L.Warn("Commit failed, invalid mapping", "userID", userID, "sessionID", req.SessionID, "error", err)
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrParsingFailed):
			logger.L.Warn("Commit failed, CSV parsing error", "userID", userID, "sessionID", req.SessionID, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing CSV file: %v", err), http.StatusBadRequest)
		default:
			logger.L.Error("Internal error committing import", "userID", userID, "sessionID", req.SessionID, "error", err)
			utils.SendJSONError(w, "An internal error occurred while importing trades. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding JSON response for import result", "userID", userID, "error", err)
	}
}
