package detector

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kasuczi/Notification-App/internal/store"
)

func reportWith(flags map[string]store.Flag) *store.SecurityReport {
	return &store.SecurityReport{Address: "0xToken", Flags: flags}
}

func trueFlag() store.Flag  { return store.Flag{State: store.FlagTrue, Raw: "1"} }
func falseFlag() store.Flag { return store.Flag{State: store.FlagFalse, Raw: "0"} }

func TestRedFlagVetoIsAbsolute(t *testing.T) {
	report := reportWith(map[string]store.Flag{
		"is_honeypot":   trueFlag(),
		"is_anti_whale": trueFlag(),
	})
	report.BuyTax = "5"

	verdict := Screen(report)

	assert.False(t, verdict.Approved)
	assert.Equal(t, "is_honeypot", verdict.VetoFlag)
	assert.Empty(t, verdict.Annotations, "a vetoed record carries no annotations")
}

func TestEveryRedFlagVetoes(t *testing.T) {
	for _, name := range redFlags {
		verdict := Screen(reportWith(map[string]store.Flag{name: trueFlag()}))
		assert.False(t, verdict.Approved, "flag %s must veto", name)
		assert.Equal(t, name, verdict.VetoFlag)
	}
}

func TestUnparseableRedFlagVetoes(t *testing.T) {
	report := reportWith(map[string]store.Flag{
		"cannot_buy": {State: store.FlagUnparseable, Raw: "yes"},
	})
	assert.False(t, Screen(report).Approved)
}

func TestFalseRedFlagsApprove(t *testing.T) {
	flags := make(map[string]store.Flag, len(redFlags))
	for _, name := range redFlags {
		flags[name] = falseFlag()
	}
	assert.True(t, Screen(reportWith(flags)).Approved)
}

func TestWarningPolarity(t *testing.T) {
	tests := []struct {
		name       string
		flags      map[string]store.Flag
		wantLine   string
		wantAbsent string
	}{
		{
			name:     "mintable set",
			flags:    map[string]store.Flag{"is_mintable": trueFlag(), "is_anti_whale": trueFlag()},
			wantLine: "IS MINTABLE alert",
		},
		{
			name:       "mintable cleared",
			flags:      map[string]store.Flag{"is_mintable": falseFlag(), "is_anti_whale": trueFlag()},
			wantAbsent: "IS MINTABLE alert",
		},
		{
			name:     "anti whale cleared triggers inverted warning",
			flags:    map[string]store.Flag{"is_anti_whale": falseFlag()},
			wantLine: "IS ANTI WHALE alert",
		},
		{
			name:     "anti whale absent triggers inverted warning",
			flags:    map[string]store.Flag{},
			wantLine: "IS ANTI WHALE alert",
		},
		{
			name:       "anti whale set stays quiet",
			flags:      map[string]store.Flag{"is_anti_whale": trueFlag()},
			wantAbsent: "IS ANTI WHALE alert",
		},
		{
			name:     "hidden owner set",
			flags:    map[string]store.Flag{"hidden_owner": trueFlag(), "is_anti_whale": trueFlag()},
			wantLine: "HIDDEN OWNER alert",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Screen(reportWith(tt.flags))
			require.True(t, verdict.Approved)

			if tt.wantLine != "" {
				assert.Contains(t, verdict.Annotations, tt.wantLine)
			}
			if tt.wantAbsent != "" {
				assert.NotContains(t, verdict.Annotations, tt.wantAbsent)
			}
		})
	}
}

func TestTaxAnnotations(t *testing.T) {
	report := reportWith(map[string]store.Flag{"is_anti_whale": trueFlag()})
	report.BuyTax = "0.05"
	report.SellTax = "0.1"

	verdict := Screen(report)
	require.True(t, verdict.Approved)
	assert.Contains(t, verdict.Annotations, "BUY TAX: 0.05")
	assert.Contains(t, verdict.Annotations, "SELL TAX: 0.1")
}

func TestHolderCountFromSerializedList(t *testing.T) {
	report := reportWith(nil)
	report.Holders = json.RawMessage(`"[{\"a\":1},{\"a\":2},{\"a\":3}]"`)

	verdict := Screen(report)
	assert.Contains(t, verdict.Annotations, "HOLDERS: 3")
}

func TestHolderCountFromStructuredList(t *testing.T) {
	report := reportWith(nil)
	report.Holders = json.RawMessage(`[{}, {}]`)

	verdict := Screen(report)
	assert.Contains(t, verdict.Annotations, "HOLDERS: 2")
}

func TestHolderCountUnreadable(t *testing.T) {
	report := reportWith(nil)
	report.Holders = json.RawMessage(`"not json"`)

	verdict := Screen(report)
	for _, line := range verdict.Annotations {
		assert.NotContains(t, line, "HOLDERS")
	}
}

func TestHolderCountAbsent(t *testing.T) {
	verdict := Screen(reportWith(nil))
	for _, line := range verdict.Annotations {
		assert.NotContains(t, line, "HOLDERS")
	}
}
