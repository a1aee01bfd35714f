package graph

import (
	"fmt"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/utxoscope/utxo_grapher/common"
)

type GroupMode string

const (
	GroupNone   GroupMode = "none"
	GroupRisk   GroupMode = "risk"
	GroupWallet GroupMode = "wallet"
	GroupTag    GroupMode = "tag"
)

// Group is one treemap tile (or tile aggregate) handed to the renderer.
type Group struct {
	Name        string         `json:"name"`
	Value       float64        `json:"value"`
	Count       int            `json:"count"`
	Color       string         `json:"color"`
	DisplaySize float64        `json:"display_size,omitempty"`
	UTXOs       []*common.UTXO `json:"utxos"`
}

// BuildGroups aggregates UTXOs into weighted groups for the treemap.
// Membership rules differ per mode: risk mode drops UTXOs without a
// defined risk and always emits the three fixed groups, tag mode counts a
// multi-tagged UTXO in every one of its tag groups (totals may exceed the
// wallet balance by design), and none mode emits one proportionally
// sized tile per UTXO.
func BuildGroups(utxos []*common.UTXO, mode GroupMode) []Group {
	switch mode {
	case GroupRisk:
		return groupByRisk(utxos)
	case GroupWallet:
		return groupByWallet(utxos)
	case GroupTag:
		return groupByTag(utxos)
	default:
		return ungrouped(utxos)
	}
}

func groupByRisk(utxos []*common.UTXO) []Group {
	groups := []Group{
		{Name: "Low Risk", Color: common.ColorRiskLow, UTXOs: []*common.UTXO{}},
		{Name: "Medium Risk", Color: common.ColorRiskMedium, UTXOs: []*common.UTXO{}},
		{Name: "High Risk", Color: common.ColorRiskHigh, UTXOs: []*common.UTXO{}},
	}
	idx := map[common.RiskLevel]int{common.RiskLow: 0, common.RiskMedium: 1, common.RiskHigh: 2}
	for _, u := range utxos {
		i, ok := idx[u.PrivacyRisk]
		if !ok {
			// Unclassified UTXOs are excluded from risk aggregation only.
			continue
		}
		groups[i].Value += u.Amount
		groups[i].Count++
		groups[i].UTXOs = append(groups[i].UTXOs, u)
	}
	return groups
}

func groupByWallet(utxos []*common.UTXO) []Group {
	order := make([]string, 0)
	byName := make(map[string]*Group)
	for _, u := range utxos {
		name := u.Wallet()
		grp, ok := byName[name]
		if !ok {
			grp = &Group{Name: name, Color: WalletColor(name), UTXOs: []*common.UTXO{}}
			byName[name] = grp
			order = append(order, name)
		}
		grp.Value += u.Amount
		grp.Count++
		grp.UTXOs = append(grp.UTXOs, u)
	}
	groups := make([]Group, 0, len(order))
	for _, name := range order {
		groups = append(groups, *byName[name])
	}
	return groups
}

func groupByTag(utxos []*common.UTXO) []Group {
	order := make([]string, 0)
	byTag := make(map[string]*Group)
	untagged := &Group{Name: "Untagged", Color: common.ColorUntagged, UTXOs: []*common.UTXO{}}
	for _, u := range utxos {
		if len(u.Tags) == 0 {
			untagged.Value += u.Amount
			untagged.Count++
			untagged.UTXOs = append(untagged.UTXOs, u)
			continue
		}
		for _, tag := range u.Tags {
			grp, ok := byTag[tag]
			if !ok {
				grp = &Group{Name: tag, Color: WalletColor(tag), UTXOs: []*common.UTXO{}}
				byTag[tag] = grp
				order = append(order, tag)
			}
			grp.Value += u.Amount
			grp.Count++
			grp.UTXOs = append(grp.UTXOs, u)
		}
	}
	groups := make([]Group, 0, len(order)+1)
	for _, tag := range order {
		groups = append(groups, *byTag[tag])
	}
	groups = append(groups, *untagged)
	return groups
}

// ungrouped emits one tile per UTXO, sized by a log-damped share of the
// total so dust stays visible, sorted descending by amount for stable
// packing order.
func ungrouped(utxos []*common.UTXO) []Group {
	var total float64
	for _, u := range utxos {
		total += u.Amount
	}
	ordered := make([]*common.UTXO, len(utxos))
	copy(ordered, utxos)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Amount > ordered[j].Amount
	})

	groups := make([]Group, 0, len(ordered))
	for _, u := range ordered {
		size := 0.5
		if total > 0 {
			size = math.Log10(1+(u.Amount/total)*10) * 10
			if size < 0.5 {
				size = 0.5
			}
		}
		groups = append(groups, Group{
			Name:        u.OutPoint(),
			Value:       u.Amount,
			Count:       1,
			Color:       u.PrivacyRisk.Color(),
			DisplaySize: size,
			UTXOs:       []*common.UTXO{u},
		})
	}
	return groups
}

// WalletColor maps a name onto a stable HSL hue so the same wallet or tag
// keeps its color across rebuilds.
func WalletColor(name string) string {
	hue := xxhash.Sum64String(name) % 360
	return fmt.Sprintf("hsl(%d, 70%%, 50%%)", hue)
}
