package market

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lofarb/fund-monitor/internal/models"
)

var fundIDPattern = regexp.MustCompile(`^\d{6}$`)

// errNoValue marks a sentinel percentage ("-", "N/A", "", "--"). Rows
// carrying it are dropped, never defaulted to zero, because a phantom
// 0% premium would look like a fresh discount signal downstream.
var errNoValue = errors.New("value unavailable")

type listingPayload struct {
	Rows []listingRow `json:"rows"`
}

type listingRow struct {
	Cell fundCell `json:"cell"`
}

// fundCell mirrors the nested data cell of one upstream row. The
// upstream is loose about types, so every field comes in as looseString.
type fundCell struct {
	FundID        looseString `json:"fund_id"`
	FundName      looseString `json:"fund_nm"`
	Price         looseString `json:"price"`
	IncreaseRate  looseString `json:"increase_rt"`
	FundNAV       looseString `json:"fund_nav"`
	NAVDate       looseString `json:"nav_dt"`
	EstimateValue looseString `json:"estimate_value"`
	DiscountRate  looseString `json:"discount_rt"`
	ApplyStatus   looseString `json:"apply_status"`
	RedeemStatus  looseString `json:"redeem_status"`
}

// looseString accepts both JSON strings and bare numbers.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	*s = looseString(data)
	return nil
}

// ParseFunds converts raw listing payloads into validated fund records
// keyed by fund id. Payloads are processed in input order and duplicate
// ids are last-write-wins. A malformed payload or row is logged and
// skipped; it never aborts the batch.
func ParseFunds(payloads [][]byte) map[string]models.FundRecord {
	funds := make(map[string]models.FundRecord)

	for _, raw := range payloads {
		var payload listingPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			log.Printf("skipping malformed payload: %v", err)
			continue
		}

		for _, row := range payload.Rows {
			rec, err := parseFundRow(row.Cell)
			if err != nil {
				if !errors.Is(err, errNoValue) {
					log.Printf("skipping fund row %q: %v", row.Cell.FundID, err)
				}
				continue
			}
			funds[rec.FundID] = *rec
		}
	}

	return funds
}

func parseFundRow(cell fundCell) (*models.FundRecord, error) {
	fundID := strings.TrimSpace(string(cell.FundID))
	if !fundIDPattern.MatchString(fundID) {
		return nil, fmt.Errorf("invalid fund_id")
	}

	price, err := parseDecimal(string(cell.Price))
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}
	increaseRate, err := parsePercent(string(cell.IncreaseRate))
	if err != nil {
		return nil, fmt.Errorf("increase_rt: %w", err)
	}
	nav, err := parseDecimal(string(cell.FundNAV))
	if err != nil {
		return nil, fmt.Errorf("fund_nav: %w", err)
	}
	navDate, err := time.Parse("2006-01-02", strings.TrimSpace(string(cell.NAVDate)))
	if err != nil {
		return nil, fmt.Errorf("nav_dt: %w", err)
	}
	estimateValue, err := parseDecimal(string(cell.EstimateValue))
	if err != nil {
		return nil, fmt.Errorf("estimate_value: %w", err)
	}
	premiumRate, err := parsePercent(string(cell.DiscountRate))
	if err != nil {
		return nil, fmt.Errorf("discount_rt: %w", err)
	}

	applyStatus := strings.TrimSpace(string(cell.ApplyStatus))
	redeemStatus := strings.TrimSpace(string(cell.RedeemStatus))
	if applyStatus == "" || redeemStatus == "" {
		return nil, fmt.Errorf("missing apply/redeem status")
	}

	return &models.FundRecord{
		FundID:         fundID,
		FundName:       strings.TrimSpace(string(cell.FundName)),
		Price:          price,
		IncreaseRate:   increaseRate,
		NAV:            nav,
		NAVDate:        navDate,
		EstimatedValue: estimateValue,
		PremiumRate:    premiumRate,
		ApplyStatus:    applyStatus,
		RedeemStatus:   redeemStatus,
	}, nil
}

// parseDecimal parses a fixed-precision quantity: at most 4 decimal
// places and 10 significant digits, matching the upstream contract.
func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	if d.Exponent() < -4 {
		return decimal.Zero, fmt.Errorf("more than 4 decimal places: %s", s)
	}
	if len(d.Abs().Coefficient().String()) > 10 {
		return decimal.Zero, fmt.Errorf("more than 10 digits: %s", s)
	}
	return d, nil
}

// parsePercent parses a percentage field in either "12.34" or "12.34%"
// form, returning percent units. The upstream's sentinel strings map to
// errNoValue.
func parsePercent(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "-", "N/A", "", "--":
		return decimal.Zero, errNoValue
	}
	s = strings.TrimSuffix(s, "%")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d, nil
}
