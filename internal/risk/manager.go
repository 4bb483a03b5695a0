package risk

import (
	"fmt"
	"math"
	"sync"
	"time"

	"smc-signal-engine/internal/signal"

	"github.com/rs/zerolog"
)

// Manager tracks account-level risk state: the broker-reported balance,
// open trade count, and daily P&L. The sizing math itself lives in the pure
// functions of this package; the manager only supplies tracked state and
// enforces the concurrency/drawdown limits from StrategyConfig.
type Manager struct {
	cfg           signal.StrategyConfig
	logger        zerolog.Logger
	mu            sync.RWMutex
	balance       float64
	openTrades    int
	dailyPnL      float64
	dailyPnLReset time.Time
}

// NewManager creates a risk manager with the given strategy limits.
func NewManager(cfg signal.StrategyConfig, logger zerolog.Logger) *Manager {
	return &Manager{
		cfg:           cfg,
		logger:        logger.With().Str("component", "risk").Logger(),
		dailyPnLReset: time.Now().UTC().Truncate(24 * time.Hour),
	}
}

// UpdateBalance records the account balance reported by the broker's
// account-summary endpoint.
func (m *Manager) UpdateBalance(balance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance = balance
	m.logger.Info().Float64("balance", balance).Msg("account balance updated")
}

// Balance returns the last broker-reported account balance.
func (m *Manager) Balance() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balance
}

// CanOpenTrade checks the concurrency and daily-drawdown limits. The reason
// string is empty when a trade may be opened.
func (m *Manager) CanOpenTrade() (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.openTrades >= m.cfg.MaxConcurrentTrades {
		return false, fmt.Sprintf("max concurrent trades reached (%d/%d)", m.openTrades, m.cfg.MaxConcurrentTrades)
	}

	m.resetDailyPnLLocked()
	if m.balance > 0 {
		drawdown := (m.dailyPnL / m.balance) * 100
		if drawdown <= -m.cfg.MaxDailyDrawdown {
			return false, fmt.Sprintf("daily drawdown limit reached (%.2f%%)", drawdown)
		}
	}

	return true, ""
}

// SizePosition sizes a trade against the tracked balance using the
// configured risk percentage. Returns 0 when the stop distance is zero or
// no balance has been recorded yet.
func (m *Manager) SizePosition(sig *signal.CandidateSignal) float64 {
	m.mu.RLock()
	balance := m.balance
	m.mu.RUnlock()

	size := PositionSize(sig, balance, m.cfg.RiskPercentage)
	m.logger.Debug().
		Str("symbol", sig.Symbol).
		Float64("balance", balance).
		Float64("risk_pct", m.cfg.RiskPercentage).
		Float64("size", size).
		Msg("position sized")
	return size
}

// RegisterTradeOpen bumps the open trade count.
func (m *Manager) RegisterTradeOpen() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openTrades++
}

// RegisterTradeClose records a closed trade and its realized P&L.
func (m *Manager) RegisterTradeClose(pnl float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.openTrades--
	if m.openTrades < 0 {
		m.openTrades = 0
	}

	m.resetDailyPnLLocked()
	m.dailyPnL += pnl
	m.logger.Info().Float64("pnl", pnl).Float64("daily_pnl", m.dailyPnL).Msg("trade closed")
}

// OpenTrades returns the number of currently open trades.
func (m *Manager) OpenTrades() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.openTrades
}

// Metrics returns a snapshot of the risk state for the dashboard.
func (m *Manager) Metrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	drawdown := 0.0
	if m.balance > 0 {
		drawdown = (m.dailyPnL / m.balance) * 100
	}

	return map[string]interface{}{
		"account_balance":        m.balance,
		"daily_pnl":              m.dailyPnL,
		"daily_drawdown_percent": math.Round(drawdown*100) / 100,
		"open_trades":            m.openTrades,
		"max_concurrent_trades":  m.cfg.MaxConcurrentTrades,
		"risk_percentage":        m.cfg.RiskPercentage,
		"max_daily_drawdown":     m.cfg.MaxDailyDrawdown,
	}
}

// resetDailyPnLLocked zeroes the daily P&L on the first call of a new UTC
// day. Callers must hold the write lock.
func (m *Manager) resetDailyPnLLocked() {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if today.After(m.dailyPnLReset) {
		m.dailyPnL = 0
		m.dailyPnLReset = today
	}
}
