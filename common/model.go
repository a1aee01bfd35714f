package common

import "strconv"

// RiskLevel is the coarse traceability classification attached to a UTXO.
// The zero value means the upstream classifier did not assign one.
type RiskLevel string

const (
	RiskUnset  RiskLevel = ""
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Fixed risk palette, shared by graph coloring and treemap tiles
const (
	ColorRiskLow    = "#10b981"
	ColorRiskMedium = "#f97316"
	ColorRiskHigh   = "#ea384c"
	ColorUntagged   = "#8E9196"
)

// DefaultWalletName is the sentinel used when a UTXO carries no wallet label.
const DefaultWalletName = "Unknown"

// ChangeTag marks a UTXO as change returned to the sender's own address.
const ChangeTag = "Change"

// Severity maps a risk level onto its total order: high > medium > low > unset.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the three defined tiers.
func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

func (r RiskLevel) Color() string {
	switch r {
	case RiskHigh:
		return ColorRiskHigh
	case RiskMedium:
		return ColorRiskMedium
	case RiskLow:
		return ColorRiskLow
	default:
		return ColorUntagged
	}
}

// MaxRisk returns the more severe of the two levels.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

// UTXO is the normalized input record the graph engine consumes. Risk
// classification happens upstream; this core only reads PrivacyRisk.
type UTXO struct {
	TxID            string    `json:"txid"`
	Vout            uint32    `json:"vout"`
	Address         string    `json:"address,omitempty"`
	SenderAddress   string    `json:"sender_address,omitempty"`
	ReceiverAddress string    `json:"receiver_address,omitempty"`
	Amount          float64   `json:"amount"`
	Tags            []string  `json:"tags,omitempty"`
	PrivacyRisk     RiskLevel `json:"privacy_risk,omitempty"`
	WalletName      string    `json:"wallet_name,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       string    `json:"created_at,omitempty"`
	AcquisitionDate string    `json:"acquisition_date,omitempty"`
}

// OutPoint returns the unique "txid:vout" key of the UTXO.
func (u *UTXO) OutPoint() string {
	return u.TxID + ":" + strconv.FormatUint(uint64(u.Vout), 10)
}

// HasTag reports set membership; display order of Tags is preserved elsewhere.
func (u *UTXO) HasTag(tag string) bool {
	for _, t := range u.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Wallet returns the wallet label, falling back to the sentinel.
func (u *UTXO) Wallet() string {
	if u.WalletName == "" {
		return DefaultWalletName
	}
	return u.WalletName
}
