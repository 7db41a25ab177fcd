package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventFundNotified = "FUND_NOTIFIED"
)

// NotificationEvent is the audit event published after a qualifying
// fund has been ledgered, whether or not push delivery succeeded.
type NotificationEvent struct {
	EventType   string          `json:"event_type"`
	FundID      string          `json:"fund_id"`
	FundName    string          `json:"fund_name"`
	PremiumRate decimal.Decimal `json:"premium_rate"`
	Phase       string          `json:"phase"`
	Delivered   bool            `json:"delivered"`
	Timestamp   time.Time       `json:"timestamp"`
}
