package services

import (
	"bytes"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/lingesh369/tradelens/backend/src/csvimport"
	"github.com/lingesh369/tradelens/backend/src/database"
	"github.com/lingesh369/tradelens/backend/src/logger"
	"github.com/lingesh369/tradelens/backend/src/models"
	"github.com/lingesh369/tradelens/backend/src/processors"
)

const (
	ckImportSession = "import_session_%s"
	ckUserTrades    = "res_trades_user_%s"
	ckUserStats     = "res_trade_stats_user_%s"
)

type importServiceImpl struct {
	statsProcessor  *processors.StatsProcessor
	reportCache     *cache.Cache
	sessionTTL      time.Duration
	previewRowLimit int
}

func NewImportService(statsProcessor *processors.StatsProcessor, reportCache *cache.Cache, sessionTTL time.Duration, previewRowLimit int) ImportService {
	return &importServiceImpl{
		statsProcessor:  statsProcessor,
		reportCache:     reportCache,
		sessionTTL:      sessionTTL,
		previewRowLimit: previewRowLimit,
	}
}

// CreatePreview parses the upload, infers a default mapping from the headers
// and stashes the raw file in a session so commit can process the complete
// dataset later. Only the capped preview slice travels back to the client.
func (s *importServiceImpl) CreatePreview(fileReader io.Reader, fileName string, userID string) (*models.ImportPreview, error) {
	startTime := time.Now()
	logger.L.Info("CreatePreview START", "userID", userID, "fileName", fileName)

	content, err := io.ReadAll(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload: %v", ErrParsingFailed, err)
	}

	preview, err := csvimport.ReadCSV(bytes.NewReader(content), s.previewRowLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	session := &models.ImportSession{
		ID:               uuid.NewString(),
		UserID:           userID,
		FileName:         fileName,
		Content:          content,
		Headers:          preview.Headers,
		SuggestedMapping: csvimport.SmartMappingDefaults(preview.Headers),
		CreatedAt:        time.Now(),
	}
	s.reportCache.Set(fmt.Sprintf(ckImportSession, session.ID), session, s.sessionTTL)

	logger.L.Info("CreatePreview END", "userID", userID, "sessionID", session.ID,
		"headers", len(preview.Headers), "previewRows", len(preview.Rows), "duration", time.Since(startTime))

	return &models.ImportPreview{
		SessionID:        session.ID,
		FileName:         fileName,
		Headers:          preview.Headers,
		Rows:             preview.Rows,
		SuggestedMapping: session.SuggestedMapping,
	}, nil
}

// CommitImport re-parses the full session payload with the submitted
// mapping, coerces every row and persists the result. Rows are never
// dropped; anomalies come back as the warnings list.
func (s *importServiceImpl) CommitImport(userID, sessionID string, mapping models.ColumnMapping) (*models.ImportResult, error) {
	overallStartTime := time.Now()
	logger.L.Info("CommitImport START", "userID", userID, "sessionID", sessionID)

	cached, found := s.reportCache.Get(fmt.Sprintf(ckImportSession, sessionID))
	if !found {
		return nil, ErrSessionNotFound
	}
	session, ok := cached.(*models.ImportSession)
	if !ok || session.UserID != userID {
		return nil, ErrSessionNotFound
	}

	if err := validateMapping(mapping, session.Headers); err != nil {
		return nil, err
	}

	full, err := csvimport.ReadCSV(bytes.NewReader(session.Content), 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	processed := csvimport.ProcessRows(full.Rows, mapping)
	batchID := uuid.NewString()

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: beginning database transaction: %v", ErrProcessingFailed, err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`INSERT INTO trades (user_id, entry_time, exit_time, action, quantity, instrument, entry_price, exit_price, sl, target, commission, fees, profit, market_type, contract_multiplier, import_batch, hash_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("%w: preparing insert statement: %v", ErrProcessingFailed, err)
	}
	defer stmt.Close()

	inserted, duplicates := 0, 0
	for _, trade := range processed.Trades {
		hashID := tradeHash(trade)
		_, err := stmt.Exec(userID, trade.EntryTime, trade.ExitTime, trade.Action,
			trade.Quantity, trade.Instrument, trade.EntryPrice, trade.ExitPrice,
			trade.StopLoss, trade.Target, trade.Commission, trade.Fees, trade.Profit,
			trade.MarketType, trade.ContractMultiplier, batchID, hashID)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
				logger.L.Debug("Skipping duplicate trade on import", "userID", userID, "hash_id", hashID)
				duplicates++
				continue
			}
			return nil, fmt.Errorf("%w: inserting trade (instrument: %s): %v", ErrProcessingFailed, trade.Instrument, err)
		}
		inserted++
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing trades: %v", ErrProcessingFailed, err)
	}

	s.reportCache.Delete(fmt.Sprintf(ckImportSession, sessionID))
	s.InvalidateUserCache(userID)

	logger.L.Info("CommitImport END", "userID", userID, "batchID", batchID,
		"total", len(processed.Trades), "inserted", inserted, "duplicates", duplicates,
		"warnings", len(processed.Warnings), "duration", time.Since(overallStartTime))

	return &models.ImportResult{
		ImportBatch: batchID,
		Total:       len(processed.Trades),
		Inserted:    inserted,
		Duplicates:  duplicates,
		Warnings:    models.RenderWarnings(processed.Warnings),
	}, nil
}

// validateMapping rejects mappings referencing unknown fields or headers,
// mappings reusing one source header for two fields, and mappings missing a
// required field. Inference never enforces required fields; commit does.
func validateMapping(mapping models.ColumnMapping, headers []string) error {
	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}

	usedHeaders := make(map[string]string, len(mapping))
	for key, header := range mapping {
		if header == "" {
			continue
		}
		if _, ok := csvimport.FieldByKey(key); !ok {
			return fmt.Errorf("%w: unknown field %q", ErrMappingInvalid, key)
		}
		if !known[header] {
			return fmt.Errorf("%w: column %q does not exist in the uploaded file", ErrMappingInvalid, header)
		}
		if prev, taken := usedHeaders[header]; taken {
			return fmt.Errorf("%w: column %q is mapped to both %q and %q", ErrMappingInvalid, header, prev, key)
		}
		usedHeaders[header] = key
	}

	for _, key := range csvimport.RequiredFieldKeys() {
		if mapping[key] == "" {
			return fmt.Errorf("%w: required field %q is not mapped", ErrMappingInvalid, key)
		}
	}
	return nil
}

// InvalidateUserCache clears all cached results for a user; the next request
// triggers a full recalculation from the database.
func (s *importServiceImpl) InvalidateUserCache(userID string) {
	s.reportCache.Delete(fmt.Sprintf(ckUserTrades, userID))
	s.reportCache.Delete(fmt.Sprintf(ckUserStats, userID))
	logger.L.Info("Invalidated caches for user", "userID", userID)
}

func (s *importServiceImpl) GetTrades(userID string) ([]models.Trade, error) {
	cacheKey := fmt.Sprintf(ckUserTrades, userID)
	if cachedTrades, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for user trades", "userID", userID)
		return cachedTrades.([]models.Trade), nil
	}

	trades, err := fetchUserTrades(userID)
	if err != nil {
		return nil, err
	}
	s.reportCache.Set(cacheKey, trades, cache.DefaultExpiration)
	return trades, nil
}

func (s *importServiceImpl) GetTradeStats(userID string) (*processors.TradeStats, error) {
	cacheKey := fmt.Sprintf(ckUserStats, userID)
	if cachedStats, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for user trade stats", "userID", userID)
		stats := cachedStats.(processors.TradeStats)
		return &stats, nil
	}

	trades, err := s.GetTrades(userID)
	if err != nil {
		return nil, err
	}
	stats := s.statsProcessor.Process(trades)
	s.reportCache.Set(cacheKey, stats, cache.DefaultExpiration)
	return &stats, nil
}

func (s *importServiceImpl) DeleteAllTrades(userID string) (int64, error) {
	res, err := database.DB.Exec(`DELETE FROM trades WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting trades for user: %w", err)
	}
	affected, _ := res.RowsAffected()
	s.InvalidateUserCache(userID)
	logger.L.Info("Deleted all trades for user", "userID", userID, "count", affected)
	return affected, nil
}

func (s *importServiceImpl) ExportTrades(userID string, w io.Writer) error {
	trades, err := s.GetTrades(userID)
	if err != nil {
		return err
	}
	return csvimport.WriteCSV(w, trades)
}

func fetchUserTrades(userID string) ([]models.Trade, error) {
	logger.L.Info("Fetching trades from DB", "userID", userID)
	rows, err := database.DB.Query(`
		SELECT id, user_id, entry_time, exit_time, action, quantity, instrument,
		entry_price, exit_price, sl, target, commission, fees, profit,
		market_type, contract_multiplier, import_batch
		FROM trades
		WHERE user_id = ?
		ORDER BY entry_time DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var trade models.Trade
		var quantity, entryPrice, exitPrice, stopLoss, target, commission, fees, profit sql.NullFloat64
		if err := rows.Scan(&trade.ID, &trade.UserID, &trade.EntryTime, &trade.ExitTime,
			&trade.Action, &quantity, &trade.Instrument, &entryPrice, &exitPrice,
			&stopLoss, &target, &commission, &fees, &profit,
			&trade.MarketType, &trade.ContractMultiplier, &trade.ImportBatch); err != nil {
			return nil, fmt.Errorf("scanning trade: %w", err)
		}
		trade.Quantity = nullableFloat(quantity)
		trade.EntryPrice = nullableFloat(entryPrice)
		trade.ExitPrice = nullableFloat(exitPrice)
		trade.StopLoss = nullableFloat(stopLoss)
		trade.Target = nullableFloat(target)
		trade.Commission = nullableFloat(commission)
		trade.Fees = nullableFloat(fees)
		trade.Profit = nullableFloat(profit)
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trades: %w", err)
	}
	if trades == nil {
		trades = []models.Trade{}
	}
	return trades, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// tradeHash fingerprints the canonical content of a trade for per-user
// duplicate suppression across repeated uploads of overlapping files.
func tradeHash(trade models.Trade) string {
	parts := []string{
		trade.EntryTime, trade.ExitTime, trade.Action, trade.Instrument,
		floatPart(trade.Quantity), floatPart(trade.EntryPrice), floatPart(trade.ExitPrice),
		floatPart(trade.Profit), floatPart(trade.Commission), floatPart(trade.Fees),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func floatPart(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
