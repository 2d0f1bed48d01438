package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/lingesh369/tradelens/backend/src/models"
	"github.com/lingesh369/tradelens/backend/src/security/validation"
)

// exportColumns is the fixed column order of the download path. It is a pure
// formatting inverse of the import side; missing cells become empty strings.
var exportColumns = []string{
	"entry_price", "exit_price", "entry_time", "exit_time", "action",
	"quantity", "contract_multiplier", "instrument", "sl", "target",
	"commission", "fees", "market_type",
}

// WriteCSV serializes trades back to CSV text in the fixed column order.
// Text cells are run through the formula-injection sanitizer so the file is
// safe to open in spreadsheet software.
func WriteCSV(w io.Writer, trades []models.Trade) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(exportColumns))
	for _, trade := range trades {
		for i, col := range exportColumns {
			record[i] = exportCell(trade, col)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func exportCell(trade models.Trade, column string) string {
	switch column {
	case "entry_price":
		return formatNumberCell(trade.EntryPrice)
	case "exit_price":
		return formatNumberCell(trade.ExitPrice)
	case "entry_time":
		return trade.EntryTime
	case "exit_time":
		return trade.ExitTime
	case "action":
		return validation.SanitizeForFormulaInjection(trade.Action)
	case "quantity":
		return formatNumberCell(trade.Quantity)
	case "contract_multiplier":
		return strconv.FormatFloat(trade.ContractMultiplier, 'f', -1, 64)
	case "instrument":
		return validation.SanitizeForFormulaInjection(trade.Instrument)
	case "sl":
		return formatNumberCell(trade.StopLoss)
	case "target":
		return formatNumberCell(trade.Target)
	case "commission":
		return formatNumberCell(trade.Commission)
	case "fees":
		return formatNumberCell(trade.Fees)
	case "market_type":
		return validation.SanitizeForFormulaInjection(trade.MarketType)
	}
	return ""
}

// formatNumberCell formats without trailing zero padding, preserving the
// parsed precision.
func formatNumberCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
