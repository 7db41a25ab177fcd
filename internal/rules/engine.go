// Package rules decides whether a fund record presents a premium or
// discount arbitrage opportunity worth a notification. All checks are
// pure and use fixed-point decimals in percent units.
package rules

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lofarb/fund-monitor/internal/calendar"
	"github.com/lofarb/fund-monitor/internal/models"
)

var (
	// Premium a held fund must exceed mid-session to be worth acting on.
	middayPremiumThreshold = decimal.RequireFromString("5")
	// Premium a held fund must exceed near close when subscription is open.
	nearClosePremiumThreshold = decimal.RequireFromString("1.1")
	// Premium an unheld fund must exceed near close under limited-open
	// subscription.
	unheldPremiumThreshold = decimal.RequireFromString("5")
	// Margin on top of the redemption fee before a discount is worth
	// redeeming into.
	discountSafetyMargin = decimal.RequireFromString("0.6")
	// Required discount for funds without a known redemption fee.
	defaultRequiredDiscount = decimal.RequireFromString("1")
)

// redemptionFees lists the per-fund redemption fee in percent for funds
// eligible for discount arbitrage.
var redemptionFees = map[string]decimal.Decimal{
	"501305": decimal.RequireFromString("0.1"),
	"501306": decimal.RequireFromString("0.1"),
	"501307": decimal.RequireFromString("0.1"),
	"164705": decimal.RequireFromString("0"),
	"501310": decimal.RequireFromString("0.5"),
	"501301": decimal.RequireFromString("0.5"),
	"501302": decimal.RequireFromString("0.5"),
	"160924": decimal.RequireFromString("0.5"),
	"160717": decimal.RequireFromString("0.5"),
	"161831": decimal.RequireFromString("0.5"),
}

// RequiredDiscount returns the discount (percent, positive) a fund must
// trade at before redemption arbitrage clears its fee plus the safety
// margin. Funds without a known fee fall back to the default.
func RequiredDiscount(fundID string) decimal.Decimal {
	fee, ok := redemptionFees[fundID]
	if !ok {
		return defaultRequiredDiscount
	}
	return fee.Add(discountSafetyMargin)
}

// Qualifies reports whether the record should trigger a notification in
// the current run. Qualification is boolean: a record matching several
// clauses still qualifies once.
func Qualifies(rec *models.FundRecord, isHeld bool, phase calendar.Phase) bool {
	if phase == calendar.Closed {
		return false
	}

	if isHeld {
		if phase == calendar.OpenMidday {
			return rec.PremiumRate.GreaterThan(middayPremiumThreshold)
		}
		// Near close: a modest premium is enough when new subscriptions
		// can still be placed to capture it.
		if rec.PremiumRate.GreaterThan(nearClosePremiumThreshold) && rec.IsApplyOpen() {
			return true
		}
		return discountArbitragePossible(rec)
	}

	// Unheld funds are only interesting near close, at a large premium,
	// and only when subscription is capped: a fully open fund arbs the
	// premium away on its own, a suspended one cannot be entered at all.
	if phase == calendar.OpenNearClose {
		return rec.PremiumRate.GreaterThan(unheldPremiumThreshold) && rec.IsApplyLimitedOpen()
	}
	return false
}

// discountArbitragePossible checks the held-fund redemption path: the
// fund must be redeemable right now and its live discount must exceed
// the fee-adjusted threshold.
func discountArbitragePossible(rec *models.FundRecord) bool {
	if !strings.Contains(rec.RedeemStatus, models.RedeemStatusOpenKeyword) {
		return false
	}
	return rec.PremiumRate.LessThan(RequiredDiscount(rec.FundID).Neg())
}
