package services

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingesh369/tradelens/backend/src/database"
	"github.com/lingesh369/tradelens/backend/src/logger"
	"github.com/lingesh369/tradelens/backend/src/models"
	"github.com/lingesh369/tradelens/backend/src/processors"
)

const sampleCSV = `Open Time,Close Time,Side,Size,Ticker,Open Price,Close Price,PnL
2024-01-15 09:30:00,2024-01-15 10:45:00,buy,10,EURUSD,1.08545,1.08912,36.7
2024-01-16 14:00:00,2024-01-16 15:30:00,sell,5,AAPL,190.5,188.2,11.5
`

func newTestService(t *testing.T) ImportService {
	t.Helper()
	logger.InitLogger("error")
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { database.DB.Close() })
	reportCache := cache.New(5*time.Minute, 10*time.Minute)
	return NewImportService(processors.NewStatsProcessor(), reportCache, time.Minute, 100)
}

func TestCreatePreviewSuggestsMapping(t *testing.T) {
	svc := newTestService(t)

	preview, err := svc.CreatePreview(strings.NewReader(sampleCSV), "trades.csv", "user-1")
	require.NoError(t, err)

	assert.NotEmpty(t, preview.SessionID)
	assert.Equal(t, "trades.csv", preview.FileName)
	assert.Len(t, preview.Rows, 2)
	assert.Equal(t, "Open Time", preview.SuggestedMapping["entry_time"])
	assert.Equal(t, "Side", preview.SuggestedMapping["action"])
	assert.Equal(t, "Ticker", preview.SuggestedMapping["instrument"])
	assert.Equal(t, "Open Price", preview.SuggestedMapping["entry_price"])
}

func TestCreatePreviewRejectsEmptyFile(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreatePreview(strings.NewReader("A,B\n"), "empty.csv", "user-1")
	assert.ErrorIs(t, err, ErrParsingFailed)
}

func TestCommitImportInsertsAndDeduplicates(t *testing.T) {
	svc := newTestService(t)

	preview, err := svc.CreatePreview(strings.NewReader(sampleCSV), "trades.csv", "user-1")
	require.NoError(t, err)

	result, err := svc.CommitImport("user-1", preview.SessionID, preview.SuggestedMapping)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 0, result.Duplicates)
	assert.NotEmpty(t, result.ImportBatch)

	// The session is consumed on commit.
	_, err = svc.CommitImport("user-1", preview.SessionID, preview.SuggestedMapping)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Re-importing the same file skips every row.
	preview, err = svc.CreatePreview(strings.NewReader(sampleCSV), "trades.csv", "user-1")
	require.NoError(t, err)
	result, err = svc.CommitImport("user-1", preview.SessionID, preview.SuggestedMapping)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 2, result.Duplicates)

	trades, err := svc.GetTrades("user-1")
	require.NoError(t, err)
	assert.Len(t, trades, 2)
}

func TestCommitImportWrongUserCannotSeeSession(t *testing.T) {
	svc := newTestService(t)

	preview, err := svc.CreatePreview(strings.NewReader(sampleCSV), "trades.csv", "user-1")
	require.NoError(t, err)

	_, err = svc.CommitImport("user-2", preview.SessionID, preview.SuggestedMapping)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCommitImportUnknownSession(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CommitImport("user-1", "no-such-session", models.ColumnMapping{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCommitImportSurfacesRowWarnings(t *testing.T) {
	svc := newTestService(t)
	csv := "Open Time,Side,Size,Ticker,Open Price\n2024-01-15 09:30:00,hold,10,EURUSD,1.08\n"

	preview, err := svc.CreatePreview(strings.NewReader(csv), "trades.csv", "user-1")
	require.NoError(t, err)

	result, err := svc.CommitImport("user-1", preview.SessionID, preview.SuggestedMapping)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Row 1")
	assert.Contains(t, result.Warnings[0], "hold")
}

func TestGetTradeStatsAndDelete(t *testing.T) {
	svc := newTestService(t)

	preview, err := svc.CreatePreview(strings.NewReader(sampleCSV), "trades.csv", "user-1")
	require.NoError(t, err)
	_, err = svc.CommitImport("user-1", preview.SessionID, preview.SuggestedMapping)
	require.NoError(t, err)

	stats, err := svc.GetTradeStats("user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalTrades)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 48.2, stats.NetProfit)

	deleted, err := svc.DeleteAllTrades("user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	stats, err = svc.GetTradeStats("user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalTrades)
}

func TestExportTradesWritesCSV(t *testing.T) {
	svc := newTestService(t)

	preview, err := svc.CreatePreview(strings.NewReader(sampleCSV), "trades.csv", "user-1")
	require.NoError(t, err)
	_, err = svc.CommitImport("user-1", preview.SessionID, preview.SuggestedMapping)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportTrades("user-1", &buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "entry_price,exit_price,entry_time"))
	assert.Contains(t, out, "EURUSD")
	assert.Contains(t, out, "1.08545")
}

func TestValidateMapping(t *testing.T) {
	headers := []string{"Open Time", "Side", "Size", "Ticker", "Open Price"}
	valid := models.ColumnMapping{
		"entry_time":  "Open Time",
		"action":      "Side",
		"quantity":    "Size",
		"instrument":  "Ticker",
		"entry_price": "Open Price",
	}

	assert.NoError(t, validateMapping(valid, headers))

	t.Run("unknown field", func(t *testing.T) {
		m := clone(valid)
		m["direction"] = "Side"
		assert.ErrorIs(t, validateMapping(m, headers), ErrMappingInvalid)
	})

	t.Run("unknown header", func(t *testing.T) {
		m := clone(valid)
		m["entry_time"] = "Missing Column"
		assert.ErrorIs(t, validateMapping(m, headers), ErrMappingInvalid)
	})

	t.Run("header mapped twice", func(t *testing.T) {
		m := clone(valid)
		m["exit_time"] = "Open Time"
		assert.ErrorIs(t, validateMapping(m, headers), ErrMappingInvalid)
	})

	t.Run("missing required field", func(t *testing.T) {
		m := clone(valid)
		delete(m, "action")
		err := validateMapping(m, headers)
		assert.ErrorIs(t, err, ErrMappingInvalid)
		assert.Contains(t, err.Error(), "action")
	})

	t.Run("optional fields may be empty", func(t *testing.T) {
		m := clone(valid)
		m["exit_time"] = ""
		assert.NoError(t, validateMapping(m, headers))
	})
}

func clone(m models.ColumnMapping) models.ColumnMapping {
	out := make(models.ColumnMapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
