// Package graph builds and lays out the transaction-traceability graph:
// a UTXO collection in, render-ready nodes, links and treemap tiles out.
// Everything here is pure in-memory computation; persistence and HTTP
// live in the storage and api packages.
package graph

import (
	"math"
	"strconv"

	"github.com/utxoscope/utxo_grapher/common"
)

type NodeType string

const (
	NodeUTXO        NodeType = "utxo"
	NodeTransaction NodeType = "transaction"
	NodeAddress     NodeType = "address"
)

// TxPayload bundles the member UTXOs of a transaction node together with
// the deduplicated union of their tags.
type TxPayload struct {
	TxID  string         `json:"txid"`
	UTXOs []*common.UTXO `json:"utxos"`
	Tags  []string       `json:"tags,omitempty"`
}

// AddrPayload carries the aggregate for an address node. The amount lives
// on the node itself.
type AddrPayload struct {
	Address   string `json:"address"`
	UTXOCount int    `json:"utxo_count"`
}

// Node is one vertex of the built graph. Exactly one of the payload
// fields is set, matching Type. Payloads hold non-owning references back
// to the input UTXOs; the builder owns the nodes themselves.
type Node struct {
	ID        string           `json:"id"`
	Type      NodeType         `json:"type"`
	Amount    float64          `json:"amount"`
	RiskLevel common.RiskLevel `json:"risk_level,omitempty"`
	X         float64          `json:"x"`
	Y         float64          `json:"y"`

	UTXO *common.UTXO `json:"utxo,omitempty"`
	Tx   *TxPayload   `json:"tx,omitempty"`
	Addr *AddrPayload `json:"addr,omitempty"`
}

// Size returns the visual radius used by the layout engine.
func (n *Node) Size() float64 {
	a := n.Amount
	if a <= 0 {
		a = 1
	}
	return math.Sqrt(a) * 5
}

// Link is one edge of the built graph. Source and Target are node IDs.
type Link struct {
	Source         string           `json:"source"`
	Target         string           `json:"target"`
	Value          float64          `json:"value"`
	RiskLevel      common.RiskLevel `json:"risk_level,omitempty"`
	IsChangeOutput bool             `json:"is_change_output"`
}

// Color is derived from the risk level, never stored.
func (l *Link) Color() string {
	return l.RiskLevel.Color()
}

// Graph is the full rebuild-from-scratch output of Build. Node identity
// across rebuilds exists only through the ID strings.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Links []*Link `json:"links"`
}

// Clone copies the graph structure (nodes and links, not the referenced
// UTXOs) so a layout run can position nodes without mutating a cached
// build.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes: make([]*Node, len(g.Nodes)),
		Links: make([]*Link, len(g.Links)),
	}
	for i, n := range g.Nodes {
		cp := *n
		out.Nodes[i] = &cp
	}
	for i, l := range g.Links {
		cp := *l
		out.Links[i] = &cp
	}
	return out
}

func (g *Graph) Node(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func UTXONodeID(txid string, vout uint32) string {
	return "utxo-" + txid + "-" + strconv.FormatUint(uint64(vout), 10)
}

func TxNodeID(txid string) string {
	return "tx-" + txid
}

func AddressNodeID(address string) string {
	return "addr-" + address
}
