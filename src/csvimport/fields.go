package csvimport

// FieldKind selects the coercion applied to a mapped cell. Every canonical
// field carries exactly one kind; the switch in processRow is exhaustive
// over these values.
type FieldKind int

const (
	KindTimestamp FieldKind = iota
	KindAction
	KindNumber
	KindInstrument
	KindMarketType
	KindMultiplier
)

// Field describes one canonical trade field plus the synonym terms used by
// the smart mapper. Synonyms are ordered most-specific first; the matcher
// walks them in order.
type Field struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Required    bool     `json:"required"`
	Description string   `json:"description"`
	Kind        FieldKind `json:"-"`
	Synonyms    []string `json:"-"`
}

// Fields is the fixed schema every import converges to, in display order.
var Fields = []Field{
	{
		Key: "entry_time", Label: "Entry Time", Required: true,
		Description: "Timestamp the position was opened (wall-clock, no timezone conversion)",
		Kind:        KindTimestamp,
		Synonyms: []string{
			"entry_time", "open_time", "entry_date", "open_date", "buy_time",
			"time_in", "date_in", "opening_time", "entry_datetime",
			"open_datetime", "datetime", "date", "time",
		},
	},
	{
		Key: "exit_time", Label: "Exit Time",
		Description: "Timestamp the position was closed",
		Kind:        KindTimestamp,
		Synonyms: []string{
			"exit_time", "close_time", "exit_date", "close_date", "sell_time",
			"time_out", "date_out", "closing_time", "exit_datetime",
			"close_datetime",
		},
	},
	{
		Key: "action", Label: "Action", Required: true,
		Description: "Trade direction, buy or sell",
		Kind:        KindAction,
		Synonyms: []string{
			"action", "side", "direction", "buy_sell", "order_side",
			"trade_type", "order_type", "position_side", "type",
		},
	},
	{
		Key: "quantity", Label: "Quantity", Required: true,
		Description: "Position size in units, lots or contracts",
		Kind:        KindNumber,
		Synonyms: []string{
			"quantity", "qty", "size", "volume", "lots", "shares",
			"contracts", "units", "position_size", "amount",
		},
	},
	{
		Key: "instrument", Label: "Instrument", Required: true,
		Description: "Traded symbol or product name",
		Kind:        KindInstrument,
		Synonyms: []string{
			"instrument", "symbol", "ticker", "asset", "pair", "product",
			"security", "market", "name",
		},
	},
	{
		Key: "entry_price", Label: "Entry Price", Required: true,
		Description: "Fill price when the position was opened",
		Kind:        KindNumber,
		Synonyms: []string{
			"entry_price", "open_price", "buy_price", "entry_rate",
			"price_in", "avg_entry_price", "average_entry_price",
			"fill_price", "entry", "open",
		},
	},
	{
		Key: "exit_price", Label: "Exit Price",
		Description: "Fill price when the position was closed",
		Kind:        KindNumber,
		Synonyms: []string{
			"exit_price", "close_price", "sell_price", "exit_rate",
			"price_out", "avg_exit_price", "average_exit_price", "exit",
			"close",
		},
	},
	{
		Key: "sl", Label: "Stop Loss",
		Description: "Initial stop-loss price",
		Kind:        KindNumber,
		Synonyms: []string{
			"sl", "stop_loss", "stoploss", "stop_price", "sl_price",
			"initial_stop", "stop",
		},
	},
	{
		Key: "target", Label: "Target",
		Description: "Take-profit target price",
		Kind:        KindNumber,
		Synonyms: []string{
			"target", "take_profit", "takeprofit", "tp", "target_price",
			"tp_price", "profit_target",
		},
	},
	{
		Key: "commission", Label: "Commission",
		Description: "Broker commission, stored as a positive magnitude",
		Kind:        KindNumber,
		Synonyms: []string{
			"commission", "commissions", "comm", "brokerage", "broker_fee",
			"commission_fee",
		},
	},
	{
		Key: "fees", Label: "Fees",
		Description: "Other charges (swap, exchange, regulatory), positive magnitude",
		Kind:        KindNumber,
		Synonyms: []string{
			"fees", "fee", "charges", "swap", "swap_fee", "other_fees",
			"total_fees",
		},
	},
	{
		Key: "profit", Label: "Profit",
		Description: "Realized P&L as reported by the broker, net of costs",
		Kind:        KindNumber,
		Synonyms: []string{
			"profit", "pnl", "p_l", "net_pnl", "realized_pnl", "net_profit",
			"profit_loss", "realized_p_l", "gain", "return",
		},
	},
	{
		Key: "market_type", Label: "Market Type",
		Description: "Asset class; detected from the instrument when absent",
		Kind:        KindMarketType,
		Synonyms: []string{
			"market_type", "asset_class", "asset_type", "instrument_type",
			"category", "segment", "market",
		},
	},
	{
		Key: "contract_multiplier", Label: "Contract Multiplier",
		Description: "Scalar converting price delta times quantity into currency P&L",
		Kind:        KindMultiplier,
		Synonyms: []string{
			"contract_multiplier", "multiplier", "contract_size",
			"point_value", "lot_size", "tick_value", "big_point_value",
		},
	},
}

// mappingPriority fixes the order in which fields claim source headers
// during inference. A header claimed by an earlier field is never
// reassigned to a later one.
var mappingPriority = []string{
	"entry_time", "exit_time", "action", "quantity", "instrument",
	"entry_price", "exit_price", "profit", "commission", "fees",
	"sl", "target", "market_type", "contract_multiplier",
}

var fieldsByKey = func() map[string]Field {
	m := make(map[string]Field, len(Fields))
	for _, f := range Fields {
		m[f.Key] = f
	}
	return m
}()

// FieldByKey returns the canonical field descriptor for key.
func FieldByKey(key string) (Field, bool) {
	f, ok := fieldsByKey[key]
	return f, ok
}

// RequiredFieldKeys lists the fields an import cannot proceed without.
func RequiredFieldKeys() []string {
	var keys []string
	for _, f := range Fields {
		if f.Required {
			keys = append(keys, f.Key)
		}
	}
	return keys
}
