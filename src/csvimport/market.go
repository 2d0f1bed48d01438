package csvimport

import (
	"regexp"
	"strings"
)

// marketFamily is one ordered group of patterns mapping a symbol shape to an
// asset class.
type marketFamily struct {
	name     string
	patterns []*regexp.Regexp
}

// marketFamilies are tested in order against the upper-cased symbol; the
// first matching family wins. Commodities run before forex so metal pairs
// like XAUUSD are not swallowed by the six-letter forex shape, and the crypto
// ticker check runs before forex for the same reason (BTCUSD). The bare
// USD/USDT/BUSD suffix check sits after forex so EURUSD stays forex.
var marketFamilies = []marketFamily{
	{
		name: "Commodities",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`XAU|XAG|GOLD|SILVER|OIL|CRUDE|NATGAS|WTI|BRENT`),
		},
	},
	{
		name: "Crypto",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`BTC|ETH|SOL|XRP|ADA|DOT|LINK|UNI`),
		},
	},
	{
		name: "Indices",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`US100|SPX500|DAX40|FTSE100|NAS100|SPX|NDX`),
		},
	},
	{
		name: "Futures",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`=F`),
			regexp.MustCompile(`^(ES|NQ|MES|MNQ)[FGHJKMNQUVXZ]?\d{0,2}$`),
		},
	},
	{
		name: "Options",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`CALL|PUT`),
			// OCC-style: root, yymmdd, C/P, strike in eighths of a cent.
			regexp.MustCompile(`^[A-Z]{1,6}\d{6}[CP]\d{8}$`),
		},
	},
	{
		name: "Forex",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^[A-Z]{6}$`),
			regexp.MustCompile(`^[A-Z]{3}[/_-][A-Z]{3}$`),
		},
	},
	{
		name: "Crypto",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(USDT|BUSD|USD)$`),
		},
	},
	{
		name: "Stock",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^[A-Z]{1,5}$`),
		},
	},
}

// DetectMarketType classifies an instrument symbol into one of Forex,
// Crypto, Indices, Commodities, Futures, Options or Stock. It returns ""
// when nothing matches; the caller stores the market type as unset rather
// than guessing.
func DetectMarketType(symbol string) string {
	upper := strings.ToUpper(strings.TrimSpace(symbol))
	if upper == "" {
		return ""
	}
	for _, family := range marketFamilies {
		for _, p := range family.patterns {
			if p.MatchString(upper) {
				return family.name
			}
		}
	}
	return ""
}
