package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kasuczi/Notification-App/internal/store"
)

func row(symbol, contract, typ, wallet string, value float64, ts int64) store.TransactionRecord {
	return store.TransactionRecord{
		TokenSymbol:     symbol,
		ContractAddress: contract,
		Type:            typ,
		WalletAddress:   wallet,
		Value:           store.FloatMetric(value),
		Timestamp:       ts,
	}
}

func TestMultipleWalletsThreshold(t *testing.T) {
	// three distinct wallets on the same (token, contract, type) qualify
	rows := []store.TransactionRecord{
		row("TKN", "0xc", "receive", "0x1", 10, 100),
		row("TKN", "0xc", "receive", "0x2", 20, 200),
		row("TKN", "0xc", "receive", "0x3", 30, 300),
	}

	events := DetectCoordination(rows)
	require.Len(t, events, 1)
	assert.Equal(t, store.PatternMultipleWallets, events[0].Pattern)
}

func TestTwoWalletsDoNotQualify(t *testing.T) {
	rows := []store.TransactionRecord{
		row("TKN", "0xc", "receive", "0x1", 10, 100),
		row("TKN", "0xc", "receive", "0x2", 20, 200),
	}

	assert.Empty(t, DetectCoordination(rows))
}

func TestRepeatedSingleWalletThreshold(t *testing.T) {
	// two rows from one wallet qualify
	rows := []store.TransactionRecord{
		row("TKN", "0xc", "send", "0x1", 10, 100),
		row("TKN", "0xc", "send", "0x1", 20, 200),
	}

	events := DetectCoordination(rows)
	require.Len(t, events, 1)
	assert.Equal(t, store.PatternRepeatedSingleWallet, events[0].Pattern)

	// a single row does not
	assert.Empty(t, DetectCoordination(rows[:1]))
}

func TestAggregationNumerics(t *testing.T) {
	rows := []store.TransactionRecord{
		row("TKN", "0xc", "receive", "0x1", 10, 100),
		row("TKN", "0xc", "receive", "0x2", 20, 300),
		row("TKN", "0xc", "receive", "0x3", 30, 200),
	}

	events := DetectCoordination(rows)
	require.Len(t, events, 1)
	assert.Equal(t, 20.0, events[0].MeanValue)
	assert.Equal(t, int64(300), events[0].Timestamp)
}

func TestUncoercibleValuesExcludedFromMean(t *testing.T) {
	bad := row("TKN", "0xc", "receive", "0x1", 0, 100)
	bad.Value = store.ParseMetric("garbage")

	rows := []store.TransactionRecord{
		bad,
		row("TKN", "0xc", "receive", "0x2", 30, 200),
		row("TKN", "0xc", "receive", "0x3", 50, 300),
	}

	events := DetectCoordination(rows)
	require.Len(t, events, 1)
	// mean over the two coercible values only, not treated as zero
	assert.Equal(t, 40.0, events[0].MeanValue)
}

func TestRowQualifyingUnderBothPatterns(t *testing.T) {
	// wallet 0x1 trades twice and the group has three distinct wallets:
	// one event per pattern, not one event with two tags
	rows := []store.TransactionRecord{
		row("TKN", "0xc", "receive", "0x1", 10, 100),
		row("TKN", "0xc", "receive", "0x1", 20, 200),
		row("TKN", "0xc", "receive", "0x2", 30, 300),
		row("TKN", "0xc", "receive", "0x3", 40, 400),
	}

	events := DetectCoordination(rows)
	require.Len(t, events, 2)

	patterns := []string{events[0].Pattern, events[1].Pattern}
	assert.Contains(t, patterns, store.PatternMultipleWallets)
	assert.Contains(t, patterns, store.PatternRepeatedSingleWallet)

	for _, ev := range events {
		switch ev.Pattern {
		case store.PatternMultipleWallets:
			// all four rows belong to the group
			assert.Equal(t, 25.0, ev.MeanValue)
			assert.Equal(t, int64(400), ev.Timestamp)
		case store.PatternRepeatedSingleWallet:
			// only wallet 0x1's repeated rows
			assert.Equal(t, 15.0, ev.MeanValue)
			assert.Equal(t, int64(200), ev.Timestamp)
		}
	}
}

func TestIdenticalRowsDeduplicatedWithinPattern(t *testing.T) {
	dup := row("TKN", "0xc", "send", "0x1", 10, 100)
	rows := []store.TransactionRecord{
		dup,
		dup,
		row("TKN", "0xc", "send", "0x1", 30, 200),
	}

	events := DetectCoordination(rows)
	require.Len(t, events, 1)
	// the duplicate contributes once: mean of {10, 30}
	assert.Equal(t, 20.0, events[0].MeanValue)
}

func TestDirectionsGroupSeparately(t *testing.T) {
	rows := []store.TransactionRecord{
		row("TKN", "0xc", "send", "0x1", 10, 100),
		row("TKN", "0xc", "receive", "0x1", 20, 200),
		row("TKN", "0xc", "send", "0x2", 30, 300),
	}

	// two wallets per direction at most, one trade per wallet per direction
	assert.Empty(t, DetectCoordination(rows))
}

func TestDeterministicOrder(t *testing.T) {
	rows := []store.TransactionRecord{
		row("ZZZ", "0xz", "send", "0x1", 1, 1),
		row("ZZZ", "0xz", "send", "0x1", 2, 2),
		row("AAA", "0xa", "send", "0x1", 1, 1),
		row("AAA", "0xa", "send", "0x1", 2, 2),
	}

	events := DetectCoordination(rows)
	require.Len(t, events, 2)
	assert.Equal(t, "AAA", events[0].TokenSymbol)
	assert.Equal(t, "ZZZ", events[1].TokenSymbol)
}
