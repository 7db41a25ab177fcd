package models

import "time"

// FundNotification is one row of the once-per-day notification ledger,
// keyed by (fund_id, notify_date). NotifyCount starts at 1 and is
// incremented on any further qualifying evaluation the same day; the
// pipeline's own filter keeps it at 1 in practice, so anything above 1
// is an audit signal worth looking at.
type FundNotification struct {
	ID          int       `json:"id"`
	FundID      string    `json:"fund_id"`
	NotifyDate  time.Time `json:"notify_date"`
	NotifyCount int       `json:"notify_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
