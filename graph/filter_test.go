package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/utxoscope/utxo_grapher/common"
)

func filterFixture() []*common.UTXO {
	return []*common.UTXO{
		{TxID: "abc123", Vout: 0, Address: "bc1qxyz", Amount: 0.5, Tags: []string{"kyc"}, WalletName: "cold", PrivacyRisk: common.RiskLow},
		{TxID: "def456", Vout: 0, Address: "bc1qabc", Amount: 1.5, Tags: []string{"Change"}, PrivacyRisk: common.RiskHigh, Notes: "coinjoin output"},
		{TxID: "ghi789", Vout: 1, Address: "bc1qdef", Amount: 2.5, WalletName: "hot", PrivacyRisk: common.RiskMedium},
	}
}

func TestFilterEmptyCriteriaReturnsAll(t *testing.T) {
	utxos := filterFixture()
	out := Filter(utxos, Criteria{})
	require.Equal(t, utxos, out)
}

func TestFilterSearchTerm(t *testing.T) {
	utxos := filterFixture()

	out := Filter(utxos, Criteria{SearchTerm: "ABC"})
	// Matches txid "abc123" and address "bc1qabc"
	require.Len(t, out, 2)

	out = Filter(utxos, Criteria{SearchTerm: "coinjoin"})
	require.Len(t, out, 1)
	require.Equal(t, "def456", out[0].TxID)

	out = Filter(utxos, Criteria{SearchTerm: "kyc"})
	require.Len(t, out, 1)

	out = Filter(utxos, Criteria{SearchTerm: "nothing-matches"})
	require.Empty(t, out)
}

func TestFilterTagsAreOrWithinCriterion(t *testing.T) {
	out := Filter(filterFixture(), Criteria{Tags: []string{"kyc", "Change"}})
	require.Len(t, out, 2)
}

func TestFilterWalletsWithDefaultSentinel(t *testing.T) {
	out := Filter(filterFixture(), Criteria{Wallets: []string{common.DefaultWalletName}})
	require.Len(t, out, 1)
	require.Equal(t, "def456", out[0].TxID)
}

func TestFilterRiskLevels(t *testing.T) {
	out := Filter(filterFixture(), Criteria{RiskLevels: []common.RiskLevel{common.RiskHigh, common.RiskMedium}})
	require.Len(t, out, 2)
}

func TestFilterAmountBoundsInclusive(t *testing.T) {
	min, max := 0.5, 0.5
	out := Filter(filterFixture(), Criteria{MinAmount: &min, MaxAmount: &max})
	require.Len(t, out, 1)
	require.Equal(t, 0.5, out[0].Amount)
}

func TestFilterConjunctive(t *testing.T) {
	min := 1.0
	out := Filter(filterFixture(), Criteria{
		SearchTerm: "bc1q",
		MinAmount:  &min,
		RiskLevels: []common.RiskLevel{common.RiskHigh},
	})
	require.Len(t, out, 1)
	require.Equal(t, "def456", out[0].TxID)
}

func TestFilterIdempotent(t *testing.T) {
	min := 0.4
	criteria := Criteria{SearchTerm: "bc1q", MinAmount: &min}
	utxos := filterFixture()
	once := Filter(utxos, criteria)
	twice := Filter(once, criteria)
	require.Equal(t, once, twice)
}

func TestFilterPreservesOrder(t *testing.T) {
	out := Filter(filterFixture(), Criteria{SearchTerm: "bc1q"})
	require.Len(t, out, 3)
	require.Equal(t, "abc123", out[0].TxID)
	require.Equal(t, "def456", out[1].TxID)
	require.Equal(t, "ghi789", out[2].TxID)
}

func TestCriteriaFingerprintSetOrderInsensitive(t *testing.T) {
	a := Criteria{Tags: []string{"x", "y"}, Wallets: []string{"w1", "w2"}}
	b := Criteria{Tags: []string{"y", "x"}, Wallets: []string{"w2", "w1"}}
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	c := Criteria{Tags: []string{"x"}}
	require.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestCriteriaFingerprintDistinguishesBounds(t *testing.T) {
	min := 1.0
	a := Criteria{MinAmount: &min}
	b := Criteria{MaxAmount: &min}
	require.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	require.NotEqual(t, a.Fingerprint(), (&Criteria{}).Fingerprint())
}
