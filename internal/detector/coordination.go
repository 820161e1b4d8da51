package detector

import (
	"sort"

	"github.com/Kasuczi/Notification-App/internal/store"
)

// multipleWalletsThreshold is the distinct-wallet count at which a token
// group qualifies as coordinated activity.
const multipleWalletsThreshold = 3

// groupKey identifies a (token, contract, direction) group.
type groupKey struct {
	token    string
	contract string
	typ      string
}

// walletKey identifies a single wallet's activity within a group.
type walletKey struct {
	token    string
	contract string
	wallet   string
	typ      string
}

// taggedRow is a transfer row together with the pattern it qualified under.
// A row qualifying under both patterns yields two tagged rows.
type taggedRow struct {
	row     store.TransactionRecord
	pattern string
}

// DetectCoordination finds coordination patterns in one cycle's transfer
// table and reduces each qualifying (token, contract, type, pattern) group to
// a single CoordinationEvent with the group's latest timestamp and mean
// value. Rows whose value failed numeric coercion are excluded from the mean,
// not treated as zero. Output order is deterministic.
func DetectCoordination(rows []store.TransactionRecord) []store.CoordinationEvent {
	if len(rows) == 0 {
		return nil
	}

	// Pass 1: distinct wallets per token group.
	walletsPerGroup := make(map[groupKey]map[string]struct{})
	rowsPerWallet := make(map[walletKey]int)
	for _, row := range rows {
		gk := groupKey{row.TokenSymbol, row.ContractAddress, row.Type}
		if walletsPerGroup[gk] == nil {
			walletsPerGroup[gk] = make(map[string]struct{})
		}
		walletsPerGroup[gk][row.WalletAddress] = struct{}{}

		wk := walletKey{row.TokenSymbol, row.ContractAddress, row.WalletAddress, row.Type}
		rowsPerWallet[wk]++
	}

	// Pass 2: tag rows under each pattern they qualify for, deduplicating
	// identical rows within a pattern.
	seen := make(map[taggedRow]struct{})
	var tagged []taggedRow
	for _, row := range rows {
		gk := groupKey{row.TokenSymbol, row.ContractAddress, row.Type}
		if len(walletsPerGroup[gk]) >= multipleWalletsThreshold {
			tr := taggedRow{row, store.PatternMultipleWallets}
			if _, dup := seen[tr]; !dup {
				seen[tr] = struct{}{}
				tagged = append(tagged, tr)
			}
		}

		wk := walletKey{row.TokenSymbol, row.ContractAddress, row.WalletAddress, row.Type}
		if rowsPerWallet[wk] > 1 {
			tr := taggedRow{row, store.PatternRepeatedSingleWallet}
			if _, dup := seen[tr]; !dup {
				seen[tr] = struct{}{}
				tagged = append(tagged, tr)
			}
		}
	}

	// Pass 3: reduce each (token, contract, type, pattern) group.
	type aggregate struct {
		maxTimestamp int64
		sum          float64
		count        int
	}
	type eventKey struct {
		groupKey
		pattern string
	}

	aggs := make(map[eventKey]*aggregate)
	for _, tr := range tagged {
		ek := eventKey{groupKey{tr.row.TokenSymbol, tr.row.ContractAddress, tr.row.Type}, tr.pattern}
		agg := aggs[ek]
		if agg == nil {
			agg = &aggregate{}
			aggs[ek] = agg
		}

		if tr.row.Timestamp > agg.maxTimestamp {
			agg.maxTimestamp = tr.row.Timestamp
		}
		if tr.row.Value.Valid {
			agg.sum += tr.row.Value.Value
			agg.count++
		}
	}

	events := make([]store.CoordinationEvent, 0, len(aggs))
	for ek, agg := range aggs {
		ev := store.CoordinationEvent{
			TokenSymbol:     ek.token,
			ContractAddress: ek.contract,
			Type:            ek.typ,
			Pattern:         ek.pattern,
			Timestamp:       agg.maxTimestamp,
		}
		if agg.count > 0 {
			ev.MeanValue = agg.sum / float64(agg.count)
		}
		events = append(events, ev)
	}

	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.TokenSymbol != b.TokenSymbol {
			return a.TokenSymbol < b.TokenSymbol
		}
		if a.ContractAddress != b.ContractAddress {
			return a.ContractAddress < b.ContractAddress
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Pattern < b.Pattern
	})

	return events
}
