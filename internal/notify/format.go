// Package notify renders approved records to human-readable text and
// dispatches them through Pushover.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kasuczi/Notification-App/internal/store"
)

// HumanReadableNumber formats a number with K/M/B/T suffixes, one decimal.
func HumanReadableNumber(num float64) string {
	for _, unit := range []string{"", "K", "M", "B", "T"} {
		if num < 1000 && num > -1000 {
			return fmt.Sprintf("%.1f%s", num, unit)
		}
		num /= 1000
	}
	return fmt.Sprintf("%.1fT", num)
}

// metricLine renders a metric as the human-readable value, or the raw
// provider text when coercion failed.
func metricLine(m store.Metric) string {
	if m.Valid {
		return HumanReadableNumber(m.Value)
	}
	return m.Raw
}

// FormatPoolMessage renders one approved pool record with its advisory
// annotations as "key -> value" lines followed by a blank line.
func FormatPoolMessage(rec store.PoolRecord, annotations []string) string {
	var b strings.Builder

	writeLine(&b, "id", rec.ID)
	writeLine(&b, "name", rec.Name)
	writeLine(&b, "pool_created_at", rec.CreatedAt.Format(time.RFC3339))
	writeLine(&b, "fdv_usd", metricLine(rec.FDV))
	writeLine(&b, "reserve_in_usd", metricLine(rec.LiquidityUSD))
	writeLine(&b, "volume_usd_24h", metricLine(rec.VolumeUSD24h))
	writeLine(&b, "price_change_percentage_1h", metricLine(rec.PriceChangePct1h))
	writeLine(&b, "price_change_percentage_24h", metricLine(rec.PriceChangePct24h))
	writeLine(&b, "chain", rec.Chain)

	for _, line := range annotations {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	return b.String()
}

// FormatEventMessage renders one coordination event as "key -> value" lines
// followed by a blank line.
func FormatEventMessage(ev store.CoordinationEvent) string {
	var b strings.Builder

	writeLine(&b, "tokenSymbol", ev.TokenSymbol)
	writeLine(&b, "contractAddress", ev.ContractAddress)
	writeLine(&b, "Type", ev.Type)
	writeLine(&b, "transaction_type", ev.Pattern)
	writeLine(&b, "timeStamp", HumanReadableNumber(float64(ev.Timestamp)))
	writeLine(&b, "value", HumanReadableNumber(ev.MeanValue))

	b.WriteString("\n")
	return b.String()
}

func writeLine(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(" -> ")
	b.WriteString(value)
	b.WriteString("\n")
}
