package processors

import (
	"sort"

	"github.com/lingesh369/tradelens/backend/src/models"
	"github.com/lingesh369/tradelens/backend/src/utils"
)

// TradeStats is the aggregate view computed over a user's stored trades.
type TradeStats struct {
	TotalTrades  int     `json:"total_trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Breakeven    int     `json:"breakeven"`
	NetProfit    float64 `json:"net_profit"`
	GrossProfit  float64 `json:"gross_profit"`
	GrossLoss    float64 `json:"gross_loss"`
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`

	ByMarket []MarketStats `json:"by_market"`
}

// MarketStats breaks the aggregate down per detected market type.
type MarketStats struct {
	MarketType string  `json:"market_type"`
	Trades     int     `json:"trades"`
	NetProfit  float64 `json:"net_profit"`
	WinRate    float64 `json:"win_rate"`
}

type StatsProcessor struct{}

func NewStatsProcessor() *StatsProcessor {
	return &StatsProcessor{}
}

// Process aggregates realized results in one pass. Trades without a profit
// figure (still open or unparseable) count toward TotalTrades but not toward
// the win/loss buckets.
func (p *StatsProcessor) Process(trades []models.Trade) TradeStats {
	stats := TradeStats{TotalTrades: len(trades)}

	type marketAcc struct {
		trades    int
		wins      int
		closed    int
		netProfit float64
	}
	byMarket := make(map[string]*marketAcc)

	for _, trade := range trades {
		market := trade.MarketType
		if market == "" {
			market = "Unknown"
		}
		acc, ok := byMarket[market]
		if !ok {
			acc = &marketAcc{}
			byMarket[market] = acc
		}
		acc.trades++

		if trade.Profit == nil {
			continue
		}
		profit := *trade.Profit
		stats.NetProfit += profit
		acc.netProfit += profit
		acc.closed++

		switch {
		case profit > 0:
			stats.Wins++
			stats.GrossProfit += profit
			acc.wins++
		case profit < 0:
			stats.Losses++
			stats.GrossLoss += -profit
		default:
			stats.Breakeven++
		}
	}

	closed := stats.Wins + stats.Losses + stats.Breakeven
	if closed > 0 {
		stats.WinRate = utils.RoundFloat(float64(stats.Wins)/float64(closed)*100, 2)
	}
	stats.ProfitFactor = utils.RoundFloat(utils.SafeDivide(stats.GrossProfit, stats.GrossLoss), 2)
	stats.AvgWin = utils.RoundFloat(utils.SafeDivide(stats.GrossProfit, float64(stats.Wins)), 2)
	stats.AvgLoss = utils.RoundFloat(utils.SafeDivide(stats.GrossLoss, float64(stats.Losses)), 2)
	stats.NetProfit = utils.RoundFloat(stats.NetProfit, 2)
	stats.GrossProfit = utils.RoundFloat(stats.GrossProfit, 2)
	stats.GrossLoss = utils.RoundFloat(stats.GrossLoss, 2)

	markets := make([]string, 0, len(byMarket))
	for market := range byMarket {
		markets = append(markets, market)
	}
	sort.Strings(markets)
	for _, market := range markets {
		acc := byMarket[market]
		ms := MarketStats{
			MarketType: market,
			Trades:     acc.trades,
			NetProfit:  utils.RoundFloat(acc.netProfit, 2),
		}
		if acc.closed > 0 {
			ms.WinRate = utils.RoundFloat(float64(acc.wins)/float64(acc.closed)*100, 2)
		}
		stats.ByMarket = append(stats.ByMarket, ms)
	}

	return stats
}
