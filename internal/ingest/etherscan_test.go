package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNow pins the current-day window for the transfer tests.
var fixedNow = time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)

func transferServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "account", r.URL.Query().Get("module"))
		assert.Equal(t, "tokentx", r.URL.Query().Get("action"))

		body, ok := responses[r.URL.Query().Get("address")]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
}

func transferJSON(ts int64, from, to, value, symbol, contract string) string {
	return fmt.Sprintf(`{"timeStamp":%q,"from":%q,"to":%q,"value":%q,"tokenSymbol":%q,"contractAddress":%q}`,
		fmt.Sprint(ts), from, to, value, symbol, contract)
}

func TestTransactionsLabeling(t *testing.T) {
	wallet := "0xAAAA"
	today := fixedNow.Add(-time.Hour).Unix()
	yesterday := fixedNow.Add(-30 * time.Hour).Unix()

	body := fmt.Sprintf(`{"status":"1","message":"OK","result":[%s,%s,%s]}`,
		transferJSON(today, "0xother", wallet, "100", "TKN", "0xC1"),
		transferJSON(today, wallet, "0xother", "50", "TKN", "0xC1"),
		transferJSON(yesterday, "0xother", wallet, "10", "OLD", "0xC2"),
	)

	srv := transferServer(t, map[string]string{wallet: body})
	defer srv.Close()

	client := NewEtherscanClient(srv.URL, "key")
	client.now = func() time.Time { return fixedNow }

	rows, err := client.Transactions(context.Background(), []string{wallet})
	require.NoError(t, err)

	// the row outside the current day window is dropped
	require.Len(t, rows, 2)

	assert.Equal(t, "receive", rows[0].Type)
	assert.Equal(t, "send", rows[1].Type)
	assert.Equal(t, "0xaaaa", rows[0].WalletAddress)
	assert.Equal(t, "0xc1", rows[0].ContractAddress)
	require.True(t, rows[0].Value.Valid)
	assert.Equal(t, 100.0, rows[0].Value.Value)
}

func TestTransactionsPerWalletIsolation(t *testing.T) {
	good := "0xgood"
	today := fixedNow.Add(-time.Hour).Unix()
	body := fmt.Sprintf(`{"status":"1","message":"OK","result":[%s]}`,
		transferJSON(today, "0xother", good, "100", "TKN", "0xC1"))

	// 0xbad is not in the map, so its fetch returns HTTP 500
	srv := transferServer(t, map[string]string{good: body})
	defer srv.Close()

	client := NewEtherscanClient(srv.URL, "key")
	client.now = func() time.Time { return fixedNow }

	rows, err := client.Transactions(context.Background(), []string{"0xbad", good})
	require.NoError(t, err, "one failing wallet must not fail the fetch")
	assert.Len(t, rows, 1)
}

func TestTransactionsAllWalletsFailed(t *testing.T) {
	srv := transferServer(t, nil)
	defer srv.Close()

	client := NewEtherscanClient(srv.URL, "key")
	_, err := client.Transactions(context.Background(), []string{"0xa", "0xb"})
	assert.ErrorIs(t, err, ErrAllWalletsFailed)
}

func TestTransactionsNoTransfersFound(t *testing.T) {
	srv := transferServer(t, map[string]string{
		"0xa": `{"status":"0","message":"No transactions found","result":""}`,
	})
	defer srv.Close()

	client := NewEtherscanClient(srv.URL, "key")
	rows, err := client.Transactions(context.Background(), []string{"0xa"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTransactionsBadValueCoercion(t *testing.T) {
	wallet := "0xa"
	today := fixedNow.Add(-time.Hour).Unix()
	body := fmt.Sprintf(`{"status":"1","message":"OK","result":[%s]}`,
		transferJSON(today, "0xother", wallet, "not-numeric", "TKN", "0xC1"))

	srv := transferServer(t, map[string]string{wallet: body})
	defer srv.Close()

	client := NewEtherscanClient(srv.URL, "key")
	client.now = func() time.Time { return fixedNow }

	rows, err := client.Transactions(context.Background(), []string{wallet})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Value.Valid)
	assert.Equal(t, "not-numeric", rows[0].Value.Raw)
}
