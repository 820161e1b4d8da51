package ingest

import (
	"sort"
	"strings"
	"time"

	"github.com/Kasuczi/Notification-App/internal/store"
)

// providerClockOffset corrects a known provider timezone discrepancy in
// pool_created_at timestamps.
const providerClockOffset = time.Hour

// NormalizePool reshapes one raw provider record into the canonical schema.
// Absent fields stay zero-valued and numeric coercion failures keep the raw
// string; normalization never fails a record.
func NormalizePool(raw RawPool) store.PoolRecord {
	rec := store.PoolRecord{
		ID:      raw.ID,
		TokenID: raw.Relationships.BaseToken.Data.ID,
		Name:    raw.Attributes.Name,
		Chain:   chainPrefix(raw.ID),

		FDV:               store.ParseMetric(raw.Attributes.FDVUSD),
		LiquidityUSD:      store.ParseMetric(raw.Attributes.ReserveInUSD),
		VolumeUSD24h:      store.ParseMetric(raw.Attributes.VolumeUSD.H24),
		PriceChangePct1h:  store.ParseMetric(raw.Attributes.PriceChangePercentage.H1),
		PriceChangePct24h: store.ParseMetric(raw.Attributes.PriceChangePercentage.H24),

		Buys:    store.ParseMetric(raw.Attributes.Transactions.H24.Buys.String()),
		Buyers:  store.ParseMetric(raw.Attributes.Transactions.H24.Buyers.String()),
		Sells:   store.ParseMetric(raw.Attributes.Transactions.H24.Sells.String()),
		Sellers: store.ParseMetric(raw.Attributes.Transactions.H24.Sellers.String()),
	}

	if raw.Attributes.PoolCreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, raw.Attributes.PoolCreatedAt); err == nil {
			rec.CreatedAt = t.Add(providerClockOffset)
		}
	}

	return rec
}

// NormalizePools normalizes a whole snapshot, preserving input order.
func NormalizePools(raws []RawPool) []store.PoolRecord {
	records := make([]store.PoolRecord, 0, len(raws))
	for _, raw := range raws {
		records = append(records, NormalizePool(raw))
	}
	return records
}

// AggregatePools concatenates per-network snapshots and sorts the result
// descending by (CreatedAt, VolumeUSD24h). The sort is stable so ties keep
// their fetch order.
func AggregatePools(batches ...[]store.PoolRecord) []store.PoolRecord {
	var all []store.PoolRecord
	for _, batch := range batches {
		all = append(all, batch...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].VolumeUSD24h.Value > all[j].VolumeUSD24h.Value
	})

	return all
}

// chainPrefix extracts the network part of a "<chain>_<pool>" id.
func chainPrefix(id string) string {
	if i := strings.Index(id, "_"); i > 0 {
		return id[:i]
	}
	return id
}
