package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/utxoscope/utxo_grapher/common"
)

func TestGroupByRiskAlwaysThreeGroups(t *testing.T) {
	groups := BuildGroups(nil, GroupRisk)
	require.Len(t, groups, 3)
	require.Equal(t, "Low Risk", groups[0].Name)
	require.Equal(t, "Medium Risk", groups[1].Name)
	require.Equal(t, "High Risk", groups[2].Name)
	for _, g := range groups {
		require.Equal(t, 0.0, g.Value)
		require.Equal(t, 0, g.Count)
	}
	require.Equal(t, common.ColorRiskLow, groups[0].Color)
	require.Equal(t, common.ColorRiskMedium, groups[1].Color)
	require.Equal(t, common.ColorRiskHigh, groups[2].Color)
}

func TestGroupByRiskCompleteness(t *testing.T) {
	utxos := []*common.UTXO{
		u("a", 0, "X", 1, common.RiskLow),
		u("b", 0, "X", 2, common.RiskHigh),
		u("c", 0, "X", 3, common.RiskHigh),
		{TxID: "d", Vout: 0, Amount: 4}, // unclassified, dropped from risk mode
	}
	groups := BuildGroups(utxos, GroupRisk)
	total := 0
	for _, g := range groups {
		total += g.Count
	}
	require.Equal(t, 3, total)
	require.Equal(t, 1, groups[0].Count)
	require.Equal(t, 0, groups[1].Count)
	require.Equal(t, 2, groups[2].Count)
	require.Equal(t, 5.0, groups[2].Value)
}

func TestGroupByWalletStableColor(t *testing.T) {
	utxos := []*common.UTXO{
		{TxID: "a", Vout: 0, Amount: 1, WalletName: "cold"},
		{TxID: "b", Vout: 0, Amount: 2, WalletName: "cold"},
		{TxID: "c", Vout: 0, Amount: 3},
	}
	groups := BuildGroups(utxos, GroupWallet)
	require.Len(t, groups, 2)
	require.Equal(t, "cold", groups[0].Name)
	require.Equal(t, 3.0, groups[0].Value)
	require.Equal(t, 2, groups[0].Count)
	require.Equal(t, common.DefaultWalletName, groups[1].Name)

	// Same name yields the same color across rebuilds.
	again := BuildGroups(utxos, GroupWallet)
	require.Equal(t, groups[0].Color, again[0].Color)
	require.Equal(t, WalletColor("cold"), groups[0].Color)
}

func TestGroupByTagNonExclusiveMembership(t *testing.T) {
	utxos := []*common.UTXO{
		{TxID: "a", Vout: 0, Amount: 1, Tags: []string{"kyc", "exchange"}},
		{TxID: "b", Vout: 0, Amount: 2, Tags: []string{"kyc"}},
		{TxID: "c", Vout: 0, Amount: 4},
	}
	groups := BuildGroups(utxos, GroupTag)
	require.Len(t, groups, 3)

	byName := make(map[string]Group)
	for _, g := range groups {
		byName[g.Name] = g
	}
	require.Equal(t, 2, byName["kyc"].Count)
	require.Equal(t, 3.0, byName["kyc"].Value)
	require.Equal(t, 1, byName["exchange"].Count)
	require.Equal(t, 1, byName["Untagged"].Count)
	require.Equal(t, common.ColorUntagged, byName["Untagged"].Color)

	// Multi-tag membership means counted amounts can exceed the balance.
	var sum float64
	for _, g := range groups {
		sum += g.Value
	}
	require.Greater(t, sum, 7.0)
}

func TestGroupByTagUntaggedAlwaysPresent(t *testing.T) {
	groups := BuildGroups([]*common.UTXO{{TxID: "a", Vout: 0, Amount: 1, Tags: []string{"x"}}}, GroupTag)
	require.Equal(t, "Untagged", groups[len(groups)-1].Name)
	require.Equal(t, 0, groups[len(groups)-1].Count)
}

func TestUngroupedTiles(t *testing.T) {
	utxos := []*common.UTXO{
		u("a", 0, "X", 1, common.RiskLow),
		u("b", 0, "X", 9, common.RiskHigh),
	}
	groups := BuildGroups(utxos, GroupNone)
	require.Len(t, groups, 2)

	// Sorted descending by amount
	require.Equal(t, "b:0", groups[0].Name)
	require.Equal(t, 9.0, groups[0].Value)
	require.Greater(t, groups[0].DisplaySize, groups[1].DisplaySize)
	require.GreaterOrEqual(t, groups[1].DisplaySize, 0.5)
	require.Equal(t, common.ColorRiskHigh, groups[0].Color)
	require.Equal(t, common.ColorRiskLow, groups[1].Color)
}

func TestUngroupedZeroTotalNoDivideByZero(t *testing.T) {
	utxos := []*common.UTXO{
		{TxID: "a", Vout: 0, Amount: 0},
		{TxID: "b", Vout: 0, Amount: 0},
	}
	groups := BuildGroups(utxos, GroupNone)
	require.Len(t, groups, 2)
	for _, g := range groups {
		require.Equal(t, 0.5, g.DisplaySize)
	}
}
