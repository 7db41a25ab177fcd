package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fund category constants, one per upstream listing endpoint
const (
	CategoryStockLOF      = "stock_lof"
	CategoryIndexLOF      = "index_lof"
	CategoryQDIIHK        = "qdii_hk"
	CategoryQDIIUS        = "qdii_us"
	CategoryQDIICommodity = "qdii_commodity"
)

// AllCategories lists every fund category in fetch order. Parsing is
// last-write-wins on duplicate fund ids, so this order is load-bearing.
var AllCategories = []string{
	CategoryStockLOF,
	CategoryIndexLOF,
	CategoryQDIIHK,
	CategoryQDIIUS,
	CategoryQDIICommodity,
}

// Subscription/redemption status labels as published by the upstream.
// ApplyStatusSuspended and ApplyStatusOpen are matched exactly;
// RedeemStatusOpenKeyword is matched by substring containment.
const (
	ApplyStatusSuspended    = "暂停申购"
	ApplyStatusOpen         = "开放申购"
	RedeemStatusOpenKeyword = "开放赎回"
)

// FundRecord is one validated row of fund market data.
// PremiumRate and IncreaseRate are in percent units (6.5 means 6.5%);
// a negative PremiumRate means the fund trades at a discount to NAV.
type FundRecord struct {
	FundID         string          `json:"fund_id"`
	FundName       string          `json:"fund_nm"`
	Price          decimal.Decimal `json:"price"`
	IncreaseRate   decimal.Decimal `json:"increase_rt"`
	NAV            decimal.Decimal `json:"fund_nav"`
	NAVDate        time.Time       `json:"nav_dt"`
	EstimatedValue decimal.Decimal `json:"estimate_value"`
	PremiumRate    decimal.Decimal `json:"discount_rt"`
	ApplyStatus    string          `json:"apply_status"`
	RedeemStatus   string          `json:"redeem_status"`
}

// IsApplySuspended reports whether subscription is suspended.
func (f *FundRecord) IsApplySuspended() bool {
	return f.ApplyStatus == ApplyStatusSuspended
}

// IsApplyOpen reports whether the fund accepts subscription at all,
// i.e. anything other than an outright suspension.
func (f *FundRecord) IsApplyOpen() bool {
	return f.ApplyStatus != ApplyStatusSuspended
}

// IsApplyLimitedOpen reports whether subscription is open but capped:
// not suspended, yet not fully open either.
func (f *FundRecord) IsApplyLimitedOpen() bool {
	return f.ApplyStatus != ApplyStatusSuspended && f.ApplyStatus != ApplyStatusOpen
}
