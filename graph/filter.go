package graph

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/utxoscope/utxo_grapher/common"
)

// Criteria are independently optional and conjunctive: an empty criterion
// imposes no constraint, non-empty ones must all pass.
type Criteria struct {
	SearchTerm string             `json:"search_term,omitempty"`
	Tags       []string           `json:"tags,omitempty"`
	Wallets    []string           `json:"wallets,omitempty"`
	RiskLevels []common.RiskLevel `json:"risk_levels,omitempty"`
	MinAmount  *float64           `json:"min_amount,omitempty"`
	MaxAmount  *float64           `json:"max_amount,omitempty"`
}

func (c *Criteria) Empty() bool {
	return c.SearchTerm == "" && len(c.Tags) == 0 && len(c.Wallets) == 0 &&
		len(c.RiskLevels) == 0 && c.MinAmount == nil && c.MaxAmount == nil
}

// Filter returns the subsequence of utxos matching the criteria,
// preserving relative order. Filtering is idempotent.
func Filter(utxos []*common.UTXO, c Criteria) []*common.UTXO {
	out := make([]*common.UTXO, 0, len(utxos))
	term := strings.ToLower(c.SearchTerm)
	for _, u := range utxos {
		if term != "" && !matchesSearch(u, term) {
			continue
		}
		if len(c.Tags) > 0 && !hasAnyTag(u, c.Tags) {
			continue
		}
		if len(c.Wallets) > 0 && !containsString(c.Wallets, u.Wallet()) {
			continue
		}
		if len(c.RiskLevels) > 0 && !containsRisk(c.RiskLevels, u.PrivacyRisk) {
			continue
		}
		if c.MinAmount != nil && u.Amount < *c.MinAmount {
			continue
		}
		if c.MaxAmount != nil && u.Amount > *c.MaxAmount {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Fingerprint returns a canonical digest of the criteria, used together
// with the dataset version as the graph-cache key. Set order does not
// affect the digest.
func (c *Criteria) Fingerprint() uint64 {
	h := xxhash.New()
	h.WriteString(strings.ToLower(c.SearchTerm))
	h.WriteString("|")
	writeSorted(h, c.Tags)
	writeSorted(h, c.Wallets)
	risks := make([]string, 0, len(c.RiskLevels))
	for _, r := range c.RiskLevels {
		risks = append(risks, string(r))
	}
	writeSorted(h, risks)
	if c.MinAmount != nil {
		h.WriteString(strconv.FormatFloat(*c.MinAmount, 'g', -1, 64))
	}
	h.WriteString("|")
	if c.MaxAmount != nil {
		h.WriteString(strconv.FormatFloat(*c.MaxAmount, 'g', -1, 64))
	}
	return h.Sum64()
}

func writeSorted(h *xxhash.Digest, values []string) {
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	for _, v := range sorted {
		h.WriteString(v)
		h.WriteString(",")
	}
	h.WriteString("|")
}

func matchesSearch(u *common.UTXO, term string) bool {
	if strings.Contains(strings.ToLower(u.TxID), term) {
		return true
	}
	if strings.Contains(strings.ToLower(u.Address), term) {
		return true
	}
	if strings.Contains(strings.ToLower(u.Notes), term) {
		return true
	}
	for _, t := range u.Tags {
		if strings.Contains(strings.ToLower(t), term) {
			return true
		}
	}
	return false
}

func hasAnyTag(u *common.UTXO, tags []string) bool {
	for _, t := range tags {
		if u.HasTag(t) {
			return true
		}
	}
	return false
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsRisk(set []common.RiskLevel, v common.RiskLevel) bool {
	for _, r := range set {
		if r == v {
			return true
		}
	}
	return false
}
