package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/rpc"
)

func runSettle(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.Bytes()
}

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestBalancesCommand(t *testing.T) {
	path := writeSnapshot(t, `{
  "members": [{"id": "a", "name": "Alice"}, {"id": "b", "name": "Bob"}, {"id": "c", "name": "Carol"}],
  "expenses": [
    {"payer_id": "a", "amount": 90, "splits": [
      {"member_id": "a", "amount": 30}, {"member_id": "b", "amount": 30}, {"member_id": "c", "amount": 30}
    ]}
  ],
  "settlements": [{"from_member_id": "b", "to_member_id": "a", "amount": 30}]
}`)

	var got rpc.GetBalancesResponse
	require.NoError(t, json.Unmarshal(runSettle(t, "balances", "--file", path), &got))

	require.Len(t, got.Balances, 3)
	assert.Equal(t, 30.0, got.Balances[0].NetBalance)
	assert.Equal(t, 0.0, got.Balances[1].NetBalance)
	assert.Equal(t, -30.0, got.Balances[2].NetBalance)
	require.Len(t, got.SuggestedSettlements, 1)
	assert.Equal(t, rpc.SuggestedSettlement{FromMemberID: "c", ToMemberID: "a", Amount: 30}, *got.SuggestedSettlements[0])
}

func TestReceiptCommand(t *testing.T) {
	path := writeSnapshot(t, `{
  "members": [{"id": "a", "name": "Alice"}, {"id": "b", "name": "Bob"}],
  "receipt": {
    "id": "r1", "tax_amount": 3, "tip_amount": 6, "total_amount": 39,
    "items": [
      {"id": "pizza", "description": "Pizza", "total_price": 20, "claims": [{"member_id": "a", "share_fraction": 1}]},
      {"id": "salad", "description": "Salad", "total_price": 10, "claims": [
        {"member_id": "a", "share_fraction": 0.5}, {"member_id": "b", "share_fraction": 0.5}
      ]},
      {"id": "tax", "description": "Tax", "total_price": 3, "is_tax": true}
    ]
  }
}`)

	var got rpc.ReceiptSummary
	require.NoError(t, json.Unmarshal(runSettle(t, "receipt", "-f", path), &got))

	assert.True(t, got.AllItemsClaimed)
	assert.Equal(t, 2, got.ItemCount)
	require.Len(t, got.MemberTotals, 2)
	assert.Equal(t, "a", got.MemberTotals[0].MemberID)
	assert.Equal(t, 32.5, got.MemberTotals[0].GrandTotal)
	assert.Equal(t, 6.5, got.MemberTotals[1].GrandTotal)
}

func TestBadSnapshot(t *testing.T) {
	path := writeSnapshot(t, `{"members": [], "unexpected": true}`)

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"balances", "--file", path})
	assert.Error(t, cmd.Execute())

	cmd = newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"receipt", "--file", writeSnapshot(t, `{"members": []}`)})
	assert.Error(t, cmd.Execute())
}
