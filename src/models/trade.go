package models

// Trade is the canonical trade record every import converges to. Numeric
// fields are pointers so an unmapped or unparseable cell stays NULL in the
// database instead of collapsing to zero.
type Trade struct {
	ID     int64  `json:"id,omitempty"`
	UserID string `json:"user_id,omitempty"`

	EntryTime          string   `json:"entry_time"`
	ExitTime           string   `json:"exit_time"`
	Action             string   `json:"action"`
	Quantity           *float64 `json:"quantity"`
	Instrument         string   `json:"instrument"`
	EntryPrice         *float64 `json:"entry_price"`
	ExitPrice          *float64 `json:"exit_price"`
	StopLoss           *float64 `json:"sl"`
	Target             *float64 `json:"target"`
	Commission         *float64 `json:"commission"`
	Fees               *float64 `json:"fees"`
	Profit             *float64 `json:"profit"`
	MarketType         string   `json:"market_type"`
	ContractMultiplier float64  `json:"contract_multiplier"`

	// Keys of fields that failed coercion or needed a fallback for this row.
	WarningFields []string `json:"_warnings,omitempty"`

	ImportBatch string `json:"import_batch,omitempty"`
	HashID      string `json:"-"`
}
