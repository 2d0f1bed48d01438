package services

import (
	"errors"
	"io"

	"github.com/lingesh369/tradelens/backend/src/models"
	"github.com/lingesh369/tradelens/backend/src/processors"
)

var (
	// ErrParsingFailed covers CSV parse errors and empty files; nothing is
	// imported when it fires.
	ErrParsingFailed = errors.New("csv parsing failed")

	// ErrSessionNotFound means the preview session expired, never existed,
	// or belongs to another user.
	ErrSessionNotFound = errors.New("import session not found or expired")

	// ErrMappingInvalid means the submitted column mapping references
	// unknown headers, reuses a header, or misses a required field.
	ErrMappingInvalid = errors.New("column mapping invalid")

	// ErrProcessingFailed wraps persistence failures during commit.
	ErrProcessingFailed = errors.New("trade processing failed")
)

// ImportService is the core import orchestration: preview an upload, commit
// it with a (possibly user-edited) mapping, and serve the resulting trades.
type ImportService interface {
	CreatePreview(fileReader io.Reader, fileName string, userID string) (*models.ImportPreview, error)
	CommitImport(userID, sessionID string, mapping models.ColumnMapping) (*models.ImportResult, error)
	GetTrades(userID string) ([]models.Trade, error)
	GetTradeStats(userID string) (*processors.TradeStats, error)
	DeleteAllTrades(userID string) (int64, error)
	ExportTrades(userID string, w io.Writer) error
}
