package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lingesh369/tradelens/backend/src/models"
)

func tradeWithProfit(market string, profit float64) models.Trade {
	p := profit
	return models.Trade{MarketType: market, Profit: &p, ContractMultiplier: 1}
}

func TestStatsProcessorEmpty(t *testing.T) {
	stats := NewStatsProcessor().Process(nil)

	assert.Equal(t, 0, stats.TotalTrades)
	assert.Equal(t, 0.0, stats.WinRate)
	assert.Equal(t, 0.0, stats.ProfitFactor)
	assert.Empty(t, stats.ByMarket)
}

func TestStatsProcessorAggregates(t *testing.T) {
	trades := []models.Trade{
		tradeWithProfit("Forex", 100),
		tradeWithProfit("Forex", 50),
		tradeWithProfit("Forex", -30),
		tradeWithProfit("Crypto", 0),
	}
	stats := NewStatsProcessor().Process(trades)

	assert.Equal(t, 4, stats.TotalTrades)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.Equal(t, 1, stats.Breakeven)
	assert.Equal(t, 120.0, stats.NetProfit)
	assert.Equal(t, 150.0, stats.GrossProfit)
	assert.Equal(t, 30.0, stats.GrossLoss)
	assert.Equal(t, 50.0, stats.WinRate)
	assert.Equal(t, 5.0, stats.ProfitFactor)
	assert.Equal(t, 75.0, stats.AvgWin)
	assert.Equal(t, 30.0, stats.AvgLoss)
}

func TestStatsProcessorOpenTradesCountTotalOnly(t *testing.T) {
	trades := []models.Trade{
		tradeWithProfit("Stock", 100),
		{MarketType: "Stock", ContractMultiplier: 1},
	}
	stats := NewStatsProcessor().Process(trades)

	assert.Equal(t, 2, stats.TotalTrades)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 100.0, stats.WinRate)
}

func TestStatsProcessorByMarketSortedWithUnknownBucket(t *testing.T) {
	trades := []models.Trade{
		tradeWithProfit("Forex", 100),
		tradeWithProfit("Forex", -50),
		tradeWithProfit("Crypto", 20),
		tradeWithProfit("", 10),
	}
	stats := NewStatsProcessor().Process(trades)

	if assert.Len(t, stats.ByMarket, 3) {
		assert.Equal(t, "Crypto", stats.ByMarket[0].MarketType)
		assert.Equal(t, "Forex", stats.ByMarket[1].MarketType)
		assert.Equal(t, "Unknown", stats.ByMarket[2].MarketType)

		forex := stats.ByMarket[1]
		assert.Equal(t, 2, forex.Trades)
		assert.Equal(t, 50.0, forex.NetProfit)
		assert.Equal(t, 50.0, forex.WinRate)
	}
}
