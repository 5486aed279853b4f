package models

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// FinanceCategory buckets an income transaction.
type FinanceCategory string

const (
	CategoryTithe        FinanceCategory = "Tithe"
	CategoryOffering     FinanceCategory = "Offering"
	CategoryThanksgiving FinanceCategory = "Thanksgiving"
	CategorySeed         FinanceCategory = "Seed"
	CategoryWelfare      FinanceCategory = "Welfare"
	CategoryBuildingFund FinanceCategory = "Building Fund"
	CategoryOther        FinanceCategory = "Other"
)

// Currency is one of the two codes transactions are recorded in. Aggregates
// are kept per currency and never summed across codes.
type Currency string

const (
	CurrencyLRD Currency = "LRD"
	CurrencyUSD Currency = "USD"
)

// ErrInvalidAmount is returned when user input does not parse to a finite,
// non-negative number.
var ErrInvalidAmount = errors.New("amount must be a non-negative number")

// FinanceRecord is one income transaction. Records are never edited in place.
type FinanceRecord struct {
	ID          string          `json:"id"`
	Category    FinanceCategory `json:"category"`
	Amount      float64         `json:"amount"`
	Currency    Currency        `json:"currency"`
	MemberID    *string         `json:"member_id,omitempty"`
	DonorName   string          `json:"donor_name,omitempty"`
	Description string          `json:"description,omitempty"`
	RecordedAt  time.Time       `json:"recorded_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// ParseAmount converts user input into a transaction amount, rejecting
// anything that is not a finite non-negative number.
func ParseAmount(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// ParseCurrency validates a currency code.
func ParseCurrency(raw string) (Currency, error) {
	switch Currency(raw) {
	case CurrencyLRD, CurrencyUSD:
		return Currency(raw), nil
	default:
		return "", errors.New("unknown currency code")
	}
}
