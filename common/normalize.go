package common

import (
	"fmt"
	"math"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Normalize coerces a raw record into the shape the engine assumes:
// non-finite or negative amounts become 0, the wallet label falls back to
// the sentinel, tags are deduplicated keeping first occurrence, and an
// unrecognized risk string is cleared rather than rejected.
func Normalize(u UTXO) UTXO {
	if math.IsNaN(u.Amount) || math.IsInf(u.Amount, 0) || u.Amount < 0 {
		u.Amount = 0
	}
	if u.WalletName == "" {
		u.WalletName = DefaultWalletName
	}
	if len(u.Tags) > 0 {
		seen := make(map[string]struct{}, len(u.Tags))
		tags := u.Tags[:0]
		for _, t := range u.Tags {
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
		u.Tags = tags
	}
	switch RiskLevel(strings.ToLower(string(u.PrivacyRisk))) {
	case RiskLow:
		u.PrivacyRisk = RiskLow
	case RiskMedium:
		u.PrivacyRisk = RiskMedium
	case RiskHigh:
		u.PrivacyRisk = RiskHigh
	default:
		u.PrivacyRisk = RiskUnset
	}
	return u
}

// ValidateTxID checks that the txid parses as a transaction hash.
func ValidateTxID(txid string) error {
	if txid == "" {
		return fmt.Errorf("txid is empty")
	}
	if _, err := chainhash.NewHashFromStr(txid); err != nil {
		return fmt.Errorf("invalid txid %s: %w", txid, err)
	}
	return nil
}

// ValidateAddress checks the address against the configured network.
// Validation is advisory: ingest counts failures but never drops records,
// since the graph engine treats addresses as opaque strings.
func ValidateAddress(address string, params *chaincfg.Params) error {
	if address == "" || params == nil {
		return nil
	}
	if _, err := btcutil.DecodeAddress(address, params); err != nil {
		return fmt.Errorf("invalid address %s: %w", address, err)
	}
	return nil
}
