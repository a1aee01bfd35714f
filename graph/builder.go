package graph

import (
	"github.com/utxoscope/utxo_grapher/common"
)

// Build converts a UTXO collection into the traceability graph. It is a
// pure function: deterministic for a given input order, no mutation of
// the inputs. UTXOs sharing a txid collapse into one transaction node,
// addresses are deduplicated by string regardless of sender/receiver
// role, and address amounts are folded in a first pass before any node
// is constructed.
func Build(utxos []*common.UTXO) *Graph {
	g := &Graph{Nodes: []*Node{}, Links: []*Link{}}
	if len(utxos) == 0 {
		return g
	}

	// Group by txid, first-seen order. A repeated (txid, vout) is the
	// same UTXO; first-seen wins.
	txOrder := make([]string, 0)
	txGroups := make(map[string][]*common.UTXO)
	seen := make(map[string]struct{}, len(utxos))
	for _, u := range utxos {
		key := u.OutPoint()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := txGroups[u.TxID]; !ok {
			txOrder = append(txOrder, u.TxID)
		}
		txGroups[u.TxID] = append(txGroups[u.TxID], u)
	}

	// First pass: per-address totals and first-seen order, so address
	// nodes can be built immutably afterwards.
	addrOrder := make([]string, 0)
	addrTotals := make(map[string]float64)
	addrCounts := make(map[string]int)
	accumulate := func(addr string, amount float64) {
		if addr == "" {
			return
		}
		if _, ok := addrTotals[addr]; !ok {
			addrOrder = append(addrOrder, addr)
		}
		addrTotals[addr] += amount
		addrCounts[addr]++
	}
	for _, txid := range txOrder {
		for _, u := range txGroups[txid] {
			for _, addr := range distinctAddresses(u) {
				accumulate(addr, u.Amount)
			}
		}
	}

	// Second pass: construct nodes and membership links.
	for _, txid := range txOrder {
		members := txGroups[txid]
		txNode := &Node{
			ID:   TxNodeID(txid),
			Type: NodeTransaction,
			Tx:   &TxPayload{TxID: txid, UTXOs: members},
		}
		tagSeen := make(map[string]struct{})
		for _, u := range members {
			txNode.Amount += u.Amount
			txNode.RiskLevel = common.MaxRisk(txNode.RiskLevel, u.PrivacyRisk)
			for _, t := range u.Tags {
				if _, ok := tagSeen[t]; ok {
					continue
				}
				tagSeen[t] = struct{}{}
				txNode.Tx.Tags = append(txNode.Tx.Tags, t)
			}
		}
		g.Nodes = append(g.Nodes, txNode)

		for _, u := range members {
			g.Nodes = append(g.Nodes, &Node{
				ID:        UTXONodeID(u.TxID, u.Vout),
				Type:      NodeUTXO,
				Amount:    u.Amount,
				RiskLevel: u.PrivacyRisk,
				UTXO:      u,
			})

			for _, recv := range receiverAddresses(u) {
				g.Links = append(g.Links, &Link{
					Source:         txNode.ID,
					Target:         AddressNodeID(recv),
					Value:          u.Amount,
					RiskLevel:      u.PrivacyRisk,
					IsChangeOutput: u.HasTag(common.ChangeTag),
				})
			}
			if u.SenderAddress != "" {
				g.Links = append(g.Links, &Link{
					Source:    AddressNodeID(u.SenderAddress),
					Target:    txNode.ID,
					Value:     u.Amount,
					RiskLevel: u.PrivacyRisk,
				})
			}
		}
	}

	for _, addr := range addrOrder {
		g.Nodes = append(g.Nodes, &Node{
			ID:     AddressNodeID(addr),
			Type:   NodeAddress,
			Amount: addrTotals[addr],
			Addr:   &AddrPayload{Address: addr, UTXOCount: addrCounts[addr]},
		})
	}

	g.Links = append(g.Links, crossTxLinks(txOrder, txGroups)...)
	return g
}

// crossTxLinks connects transaction pairs that look related: either they
// share a receiver-side address, or a change-tagged UTXO in one lands on
// an address the other touches. Each unordered pair is linked at most
// once, the address-sharing rule winning over the change heuristic.
func crossTxLinks(txOrder []string, txGroups map[string][]*common.UTXO) []*Link {
	links := make([]*Link, 0)
	for i := 0; i < len(txOrder); i++ {
		for j := i + 1; j < len(txOrder); j++ {
			a, b := txGroups[txOrder[i]], txGroups[txOrder[j]]

			linked, change := false, false
			if sharesReceiverAddress(a, b) {
				linked = true
			} else if changeMatches(a, b) || changeMatches(b, a) {
				linked, change = true, true
			}
			if !linked {
				continue
			}

			sumA, sumB := txSum(a), txSum(b)
			weight := sumA
			if sumB < weight {
				weight = sumB
			}
			risk := common.RiskUnset
			for _, u := range a {
				risk = common.MaxRisk(risk, u.PrivacyRisk)
			}
			for _, u := range b {
				risk = common.MaxRisk(risk, u.PrivacyRisk)
			}
			links = append(links, &Link{
				Source:         TxNodeID(txOrder[i]),
				Target:         TxNodeID(txOrder[j]),
				Value:          weight,
				RiskLevel:      risk,
				IsChangeOutput: change,
			})
		}
	}
	return links
}

func sharesReceiverAddress(a, b []*common.UTXO) bool {
	set := make(map[string]struct{})
	for _, u := range a {
		for _, addr := range receiverAddresses(u) {
			set[addr] = struct{}{}
		}
	}
	for _, u := range b {
		for _, addr := range receiverAddresses(u) {
			if _, ok := set[addr]; ok {
				return true
			}
		}
	}
	return false
}

// changeMatches reports whether a change-tagged UTXO in from has an
// address that appears anywhere (sender or receiver side) in to.
func changeMatches(from, to []*common.UTXO) bool {
	toAddrs := make(map[string]struct{})
	for _, u := range to {
		for _, addr := range distinctAddresses(u) {
			toAddrs[addr] = struct{}{}
		}
	}
	for _, u := range from {
		if !u.HasTag(common.ChangeTag) {
			continue
		}
		for _, addr := range receiverAddresses(u) {
			if _, ok := toAddrs[addr]; ok {
				return true
			}
		}
	}
	return false
}

func txSum(utxos []*common.UTXO) float64 {
	var sum float64
	for _, u := range utxos {
		sum += u.Amount
	}
	return sum
}

// receiverAddresses returns the receiver-side addresses of a UTXO,
// deduplicated, in field order.
func receiverAddresses(u *common.UTXO) []string {
	addrs := make([]string, 0, 2)
	if u.Address != "" {
		addrs = append(addrs, u.Address)
	}
	if u.ReceiverAddress != "" && u.ReceiverAddress != u.Address {
		addrs = append(addrs, u.ReceiverAddress)
	}
	return addrs
}

// distinctAddresses returns every address a UTXO touches, in any role,
// deduplicated so a sender==receiver address counts once.
func distinctAddresses(u *common.UTXO) []string {
	addrs := make([]string, 0, 3)
	add := func(a string) {
		if a == "" {
			return
		}
		for _, have := range addrs {
			if have == a {
				return
			}
		}
		addrs = append(addrs, a)
	}
	add(u.Address)
	add(u.SenderAddress)
	add(u.ReceiverAddress)
	return addrs
}
