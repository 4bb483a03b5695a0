// Package risk computes stop-loss buffers and position sizes for validated
// signals, and tracks account-level exposure limits.
package risk

import (
	"math"

	"smc-signal-engine/internal/signal"
)

// pipValues maps known instruments to their minimum price increment.
// Simplification: production sizing needs live pip-value/contract-size data
// from the broker; this fixed table is a documented approximation.
var pipValues = map[string]float64{
	"EURUSD": 0.0001,
	"GBPUSD": 0.0001,
	"USDCAD": 0.0001,
	"USDJPY": 0.01,
	"GBPJPY": 0.01,
	"XAUUSD": 0.1,
	"US30":   1.0,
	"NAS100": 1.0,
}

// defaultPipValue is used for symbols missing from the table.
const defaultPipValue = 0.0001

// Stop buffer widths. Pairs whose rule carries a stop buffer multiplier
// above 1 are treated as volatile and get the wider buffer.
const (
	bufferPipsNormal   = 3
	bufferPipsVolatile = 5
)

// PipValue returns the pip size for a symbol, falling back to the forex
// default for unknown instruments.
func PipValue(symbol string) float64 {
	if v, ok := pipValues[symbol]; ok {
		return v
	}
	return defaultPipValue
}

// AdjustStopLoss widens the signal's raw stop by a spread/slippage buffer,
// pushing it further from entry in the losing direction: down for longs,
// up for shorts.
func AdjustStopLoss(sig *signal.CandidateSignal) float64 {
	pip := PipValue(sig.Symbol)
	buffer := pip * bufferPipsNormal
	if rule, ok := signal.RuleFor(sig.Symbol); ok && rule.StopBufferMultiplier > 1 {
		buffer = pip * bufferPipsVolatile * rule.StopBufferMultiplier
	}
	if sig.IsLong() {
		return sig.StopLoss - buffer
	}
	return sig.StopLoss + buffer
}

// PositionSize converts account risk tolerance into a position size in
// lots. A zero stop distance means the risk is undefined, so the size is 0;
// callers must treat that as a hard stop on order placement, never as
// "trade 0 units". The result is rounded half-away-from-zero to 2 decimals.
func PositionSize(sig *signal.CandidateSignal, accountBalance, riskPercentage float64) float64 {
	riskAmount := accountBalance * riskPercentage / 100
	stopDistance := math.Abs(sig.EntryPrice - sig.StopLoss)
	if stopDistance == 0 {
		return 0
	}
	size := riskAmount / (stopDistance / PipValue(sig.Symbol))
	return math.Round(size*100) / 100
}
