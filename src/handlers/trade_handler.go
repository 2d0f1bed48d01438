package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lingesh369/tradelens/backend/src/logger"
	"github.com/lingesh369/tradelens/backend/src/services"
	"github.com/lingesh369/tradelens/backend/src/utils"
)

type TradeHandler struct {
	importService services.ImportService
}

func NewTradeHandler(service services.ImportService) *TradeHandler {
	return &TradeHandler{
		importService: service,
	}
}

// HandleGetTrades returns the user's stored trades with ETag support so the
// journal UI can poll cheaply.
func (h *TradeHandler) HandleGetTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	trades, err := h.importService.GetTrades(userID)
	if err != nil {
		logger.L.Error("Error retrieving trades from service", "userID", userID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving trades: %v", err), http.StatusInternalServerError)
		return
	}

	currentETag, etagErr := utils.GenerateETag(trades)
	if etagErr != nil {
		logger.L.Error("Failed to generate ETag for trades", "userID", userID, "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		clientETags := strings.Split(r.Header.Get("If-None-Match"), ",")
		for _, cETag := range clientETags {
			if strings.TrimSpace(cETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(trades); err != nil {
		logger.L.Error("Error generating JSON response for trades", "userID", userID, "error", err)
	}
}

// HandleGetTradeStats returns the aggregate statistics over stored trades.
func (h *TradeHandler) HandleGetTradeStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	stats, err := h.importService.GetTradeStats(userID)
	if err != nil {
		logger.L.Error("Error retrieving trade stats from service", "userID", userID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving trade stats: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		logger.L.Error("Error generating JSON response for trade stats", "userID", userID, "error", err)
	}
}

// HandleDeleteAllTrades removes every stored trade for the user.
func (h *TradeHandler) HandleDeleteAllTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	deleted, err := h.importService.DeleteAllTrades(userID)
	if err != nil {
		logger.L.Error("Error deleting trades", "userID", userID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error deleting trades: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"deleted": deleted})
}

// HandleExportTrades streams the user's trades back as CSV in the fixed
// export column order.
func (h *TradeHandler) HandleExportTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	fileName := fmt.Sprintf("tradelens-export-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if err := h.importService.ExportTrades(userID, w); err != nil {
		// Headers are already sent; log and terminate the stream.
		logger.L.Error("Error exporting trades", "userID", userID, "error", err)
	}
}
