package csvimport

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lingesh369/tradelens/backend/src/models"
)

// ProcessResult is the terminal artifact of the pipeline: one trade per
// input row, plus the structured anomaly trail for the whole dataset.
type ProcessResult struct {
	Trades   []models.Trade
	Warnings []models.ImportWarning
}

// ProcessRows coerces every raw row into a canonical trade using the given
// column mapping. No row is ever dropped: anomalies null out the offending
// field (or apply a documented fallback) and are recorded as warnings, so the
// output always holds exactly len(rows) trades in input order. Processing is
// a pure function of rows and mapping; re-running it is deterministic.
func ProcessRows(rows []models.RawRow, mapping models.ColumnMapping) *ProcessResult {
	result := &ProcessResult{Trades: make([]models.Trade, 0, len(rows))}
	for i, row := range rows {
		trade, warnings := processRow(row, mapping, i+1)
		result.Trades = append(result.Trades, trade)
		result.Warnings = append(result.Warnings, warnings...)
	}
	return result
}

func processRow(row models.RawRow, mapping models.ColumnMapping, rowNum int) (models.Trade, []models.ImportWarning) {
	trade := models.Trade{ContractMultiplier: 1}
	var warnings []models.ImportWarning
	warn := func(field, reason string) {
		trade.WarningFields = append(trade.WarningFields, field)
		warnings = append(warnings, models.ImportWarning{Row: rowNum, Field: field, Reason: reason})
	}

	multiplierSupplied := false

	for _, field := range Fields {
		source, ok := mapping[field.Key]
		if !ok || source == "" {
			continue
		}
		raw := strings.TrimSpace(row[source])

		switch field.Kind {
		case KindTimestamp:
			if raw == "" {
				continue
			}
			ts, ok := FormatTimestamp(raw)
			if !ok {
				warn(field.Key, fmt.Sprintf("unparseable timestamp %q for %s, left empty", raw, field.Key))
				continue
			}
			if field.Key == "entry_time" {
				trade.EntryTime = ts
			} else {
				trade.ExitTime = ts
			}

		case KindAction:
			action := strings.ToLower(raw)
			if action != "buy" && action != "sell" {
				warn("action", fmt.Sprintf("invalid action %q, defaulted to buy", raw))
				action = "buy"
			}
			trade.Action = action

		case KindNumber:
			if raw == "" {
				continue
			}
			value, ok := parseNumber(raw)
			if !ok {
				warn(field.Key, fmt.Sprintf("unparseable number %q for %s, left empty", raw, field.Key))
				continue
			}
			setNumberField(&trade, field.Key, value)

		case KindInstrument:
			if raw == "" {
				warn("instrument", "missing instrument symbol")
				continue
			}
			trade.Instrument = raw

		case KindMarketType:
			trade.MarketType = raw

		case KindMultiplier:
			if raw == "" {
				continue
			}
			if value, ok := parseNumber(raw); ok && value != 0 {
				trade.ContractMultiplier = value
				multiplierSupplied = true
			}
		}
	}

	if trade.MarketType == "" && trade.Instrument != "" {
		// Undetected market type stays empty with no warning; many symbols
		// are genuinely unclassifiable.
		trade.MarketType = DetectMarketType(trade.Instrument)
	}

	if !multiplierSupplied {
		if trade.Profit != nil && trade.EntryPrice != nil && trade.ExitPrice != nil && trade.Quantity != nil && trade.Action != "" {
			var commission, fees float64
			if trade.Commission != nil {
				commission = *trade.Commission
			}
			if trade.Fees != nil {
				fees = *trade.Fees
			}
			multiplier, reason := DeriveContractMultiplier(
				*trade.Profit, commission, fees,
				*trade.EntryPrice, *trade.ExitPrice, *trade.Quantity, trade.Action)
			trade.ContractMultiplier = multiplier
			if reason != "" {
				warn("contract_multiplier", reason)
			}
		} else {
			trade.ContractMultiplier = 1
		}
	}

	// Costs are stored as positive magnitudes regardless of the source's
	// sign convention. Runs after multiplier derivation, which sees the
	// values as reported.
	if trade.Commission != nil && *trade.Commission < 0 {
		v := math.Abs(*trade.Commission)
		trade.Commission = &v
	}
	if trade.Fees != nil && *trade.Fees < 0 {
		v := math.Abs(*trade.Fees)
		trade.Fees = &v
	}

	return trade, warnings
}

// parseNumber strips thousands-separator commas and parses the full input
// precision. No rounding happens here. Non-finite values are rejected.
func parseNumber(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func setNumberField(trade *models.Trade, key string, value float64) {
	v := value
	switch key {
	case "quantity":
		trade.Quantity = &v
	case "entry_price":
		trade.EntryPrice = &v
	case "exit_price":
		trade.ExitPrice = &v
	case "sl":
		trade.StopLoss = &v
	case "target":
		trade.Target = &v
	case "commission":
		trade.Commission = &v
	case "fees":
		trade.Fees = &v
	case "profit":
		trade.Profit = &v
	}
}
