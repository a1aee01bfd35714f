package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRiskSeverityOrdering(t *testing.T) {
	require.Greater(t, RiskHigh.Severity(), RiskMedium.Severity())
	require.Greater(t, RiskMedium.Severity(), RiskLow.Severity())
	require.Greater(t, RiskLow.Severity(), RiskUnset.Severity())
}

func TestMaxRisk(t *testing.T) {
	require.Equal(t, RiskHigh, MaxRisk(RiskLow, RiskHigh))
	require.Equal(t, RiskHigh, MaxRisk(RiskHigh, RiskMedium))
	require.Equal(t, RiskMedium, MaxRisk(RiskMedium, RiskLow))
	require.Equal(t, RiskLow, MaxRisk(RiskUnset, RiskLow))
	require.Equal(t, RiskUnset, MaxRisk(RiskUnset, RiskUnset))
}

func TestRiskColors(t *testing.T) {
	require.Equal(t, ColorRiskLow, RiskLow.Color())
	require.Equal(t, ColorRiskMedium, RiskMedium.Color())
	require.Equal(t, ColorRiskHigh, RiskHigh.Color())
	require.Equal(t, ColorUntagged, RiskUnset.Color())
}

func TestOutPoint(t *testing.T) {
	u := UTXO{TxID: "abc", Vout: 7}
	require.Equal(t, "abc:7", u.OutPoint())
}

func TestWalletSentinel(t *testing.T) {
	u := UTXO{}
	require.Equal(t, DefaultWalletName, u.Wallet())
	u.WalletName = "cold"
	require.Equal(t, "cold", u.Wallet())
}

func TestNormalizeCoercesAmount(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -3} {
		n := Normalize(UTXO{TxID: "a", Amount: bad})
		require.Equal(t, 0.0, n.Amount)
	}
	n := Normalize(UTXO{TxID: "a", Amount: 1.5})
	require.Equal(t, 1.5, n.Amount)
}

func TestNormalizeWalletAndTags(t *testing.T) {
	n := Normalize(UTXO{TxID: "a", Tags: []string{"kyc", "", "kyc", "Change"}})
	require.Equal(t, DefaultWalletName, n.WalletName)
	require.Equal(t, []string{"kyc", "Change"}, n.Tags)
}

func TestNormalizeRisk(t *testing.T) {
	require.Equal(t, RiskHigh, Normalize(UTXO{PrivacyRisk: "HIGH"}).PrivacyRisk)
	require.Equal(t, RiskLow, Normalize(UTXO{PrivacyRisk: "low"}).PrivacyRisk)
	require.Equal(t, RiskUnset, Normalize(UTXO{PrivacyRisk: "banana"}).PrivacyRisk)
	require.Equal(t, RiskUnset, Normalize(UTXO{}).PrivacyRisk)
}

func TestValidateTxID(t *testing.T) {
	require.Error(t, ValidateTxID(""))
	require.Error(t, ValidateTxID("not-hex!"))
	require.NoError(t, ValidateTxID("4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"))
}

func TestHasTag(t *testing.T) {
	u := UTXO{Tags: []string{"Change", "kyc"}}
	require.True(t, u.HasTag("Change"))
	require.False(t, u.HasTag("change"))
	require.False(t, u.HasTag("other"))
}
