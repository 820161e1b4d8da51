// Package store provides the canonical data models shared by both pipelines.
package store

import (
	"encoding/json"
	"strconv"
	"time"
)

// Metric holds a numeric field that may have arrived in a non-numeric shape.
// Coercion failures keep the raw value instead of erroring, so a single bad
// field never drops a whole record.
type Metric struct {
	// Raw is the value as received from the provider
	Raw string

	// Value is the parsed float, meaningful only when Valid is true
	Value float64

	// Valid reports whether Raw parsed as a float
	Valid bool
}

// ParseMetric attempts float coercion of a raw provider value.
func ParseMetric(raw string) Metric {
	if raw == "" {
		return Metric{}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Metric{Raw: raw}
	}
	return Metric{Raw: raw, Value: v, Valid: true}
}

// FloatMetric wraps an already-numeric value.
func FloatMetric(v float64) Metric {
	return Metric{Raw: strconv.FormatFloat(v, 'f', -1, 64), Value: v, Valid: true}
}

// PoolRecord is one liquidity pool observation in the canonical schema.
type PoolRecord struct {
	// ID is the provider pool id, "<chain>_<pool address>", unique per
	// network+pool for the lifetime of the process
	ID string

	// TokenID references the pool's base token
	TokenID string

	// Name is the human-readable pair name
	Name string

	// Chain is the network prefix derived from ID
	Chain string

	// CreatedAt is the pool creation time after provider offset correction
	CreatedAt time.Time

	FDV               Metric
	LiquidityUSD      Metric
	VolumeUSD24h      Metric
	PriceChangePct1h  Metric
	PriceChangePct24h Metric

	Buyers  Metric
	Buys    Metric
	Sellers Metric
	Sells   Metric
}

// TransactionRecord is one token transfer relevant to a tracked wallet.
type TransactionRecord struct {
	TokenSymbol     string
	ContractAddress string

	// Type is the transfer direction relative to the tracked wallet:
	// "receive" or "send"
	Type string

	// WalletAddress is the tracked wallet this row was fetched for
	WalletAddress string

	Value Metric

	// Timestamp is the transfer time in unix seconds
	Timestamp int64
}

// Coordination pattern kinds.
const (
	PatternMultipleWallets      = "Multiple Addresses"
	PatternRepeatedSingleWallet = "Same Address Multiple Times"
)

// CoordinationEvent is the reduced aggregate over a group of transfers that
// matched a coordination pattern. The struct is comparable on purpose: the
// wallet pipeline's novelty rule is full structural equality, not a key
// lookup, so a changed mean or a later timestamp re-alerts.
type CoordinationEvent struct {
	TokenSymbol     string
	ContractAddress string
	Type            string
	Pattern         string

	// Timestamp is the latest transfer time in the group, unix seconds
	Timestamp int64

	// MeanValue is the arithmetic mean over coercible values in the group
	MeanValue float64
}

// FlagState is the closed representation of a security flag value after
// boundary normalization of the provider's loosely typed payload.
type FlagState int

const (
	// FlagAbsent means the provider omitted the flag or sent null
	FlagAbsent FlagState = iota
	// FlagFalse is the "0" sentinel
	FlagFalse
	// FlagTrue is the "1" sentinel
	FlagTrue
	// FlagUnparseable is any other present value; Raw keeps the original
	FlagUnparseable
)

// Flag is one normalized security flag.
type Flag struct {
	State FlagState
	Raw   string
}

// Truthy reports whether the flag is present with a value other than the
// "0" sentinel.
func (f Flag) Truthy() bool {
	return f.State == FlagTrue || f.State == FlagUnparseable
}

// SecurityReport is one token-security lookup result after normalization.
type SecurityReport struct {
	// Address is the token contract the report describes
	Address string

	// Flags maps provider flag names to their normalized value
	Flags map[string]Flag

	// BuyTax and SellTax are free-form provider strings, empty if absent
	BuyTax  string
	SellTax string

	// Holders is the raw holders payload: either a JSON array or a JSON
	// string containing a serialized array
	Holders json.RawMessage
}

// Flag returns the normalized value for name, FlagAbsent if never set.
func (r *SecurityReport) Flag(name string) Flag {
	if r == nil || r.Flags == nil {
		return Flag{}
	}
	return r.Flags[name]
}
