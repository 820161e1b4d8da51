// Package detector applies the alert-worthiness heuristics for both
// pipelines: security screening for new pools and coordination-pattern
// detection for wallet activity.
package detector

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Kasuczi/Notification-App/internal/store"
)

// redFlags are the security attributes whose truthy presence vetoes a pool
// outright. Any value other than the "0" sentinel counts as truthy.
var redFlags = []string{
	"is_airdrop_scam",
	"transfer_pausable",
	"trading_cooldown",
	"selfdestruct",
	"is_honeypot",
	"honeypot_with_same_creator",
	"fake_token",
	"is_proxy",
	"external_call",
	"cannot_sell_all",
	"personal_slippage_modifiable",
	"cannot_buy",
	"owner_change_balance",
}

// warningFlags add advisory annotations without suppressing the alert.
// is_anti_whale is handled separately because its polarity is inverted.
var warningFlags = []string{
	"hidden_owner",
	"is_whitelisted",
	"trust_list",
	"is_blacklisted",
	"slippage_modifiable",
	"is_mintable",
	"anti_whale_modifiable",
	"can_take_back_ownership",
}

// Verdict is the screener's decision for one pool candidate.
type Verdict struct {
	// Approved is false when a red flag vetoed the record
	Approved bool

	// VetoFlag names the red flag that suppressed the record
	VetoFlag string

	// Annotations are the advisory lines attached to an approved record
	Annotations []string
}

// Screen evaluates a security report against the red/warning flag lists.
// Red flags are checked first and any hit ends evaluation: the veto is
// absolute regardless of warning or feature values.
func Screen(report *store.SecurityReport) Verdict {
	for _, name := range redFlags {
		if report.Flag(name).Truthy() {
			return Verdict{VetoFlag: name}
		}
	}

	verdict := Verdict{Approved: true}

	for _, name := range warningFlags {
		if report.Flag(name).Truthy() {
			verdict.Annotations = append(verdict.Annotations, flagAnnotation(name))
		}
	}

	// Inverted polarity: the warning fires when the protection is NOT
	// confirmed on, absent included.
	if report.Flag("is_anti_whale").State != store.FlagTrue {
		verdict.Annotations = append(verdict.Annotations, flagAnnotation("is_anti_whale"))
	}

	if report.BuyTax != "" {
		verdict.Annotations = append(verdict.Annotations, fmt.Sprintf("BUY TAX: %s", report.BuyTax))
	}
	if report.SellTax != "" {
		verdict.Annotations = append(verdict.Annotations, fmt.Sprintf("SELL TAX: %s", report.SellTax))
	}

	if count, ok := holderCount(report); ok {
		verdict.Annotations = append(verdict.Annotations, fmt.Sprintf("HOLDERS: %d", count))
	}

	return verdict
}

// flagAnnotation renders a flag name as its advisory line, e.g.
// "is_mintable" -> "IS MINTABLE alert".
func flagAnnotation(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "_", " ")) + " alert"
}

// holderCount derives the holder count from the report's holders payload,
// which arrives either as a JSON array or as a JSON string containing a
// serialized array. Anything else is an anomaly: logged, no annotation.
func holderCount(report *store.SecurityReport) (int, bool) {
	raw := report.Holders
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		return len(items), true
	}

	var serialized string
	if err := json.Unmarshal(raw, &serialized); err == nil {
		if err := json.Unmarshal([]byte(serialized), &items); err == nil {
			return len(items), true
		}
	}

	slog.Warn("holders_payload_unreadable", "address", report.Address)
	return 0, false
}
