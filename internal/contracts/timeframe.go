package contracts

// timeframeDays maps a pick timeframe to an approximate trading-day count.
// This lookup governs all window matching in verification and backtesting.
var timeframeDays = map[string]int{
	"24h": 1,
	"3d":  3,
	"7d":  5,
	"2w":  10,
	"1m":  21,
	"3m":  63,
	"6m":  126,
	"1y":  252,
}

// TimeframeDays returns the trading-day window for a timeframe label.
// Unknown labels fall back to 5 days so a malformed entry still matures
// instead of staying pending forever.
func TimeframeDays(timeframe string) int {
	if days, ok := timeframeDays[timeframe]; ok {
		return days
	}
	return 5
}
