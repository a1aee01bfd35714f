package storage

import (
	"fmt"
	"sort"

	"github.com/bytedance/sonic"
	"github.com/utxoscope/utxo_grapher/common"
)

// All returns every stored UTXO in a deterministic order (txid, then
// vout). Shard iteration order is not stable, so the result is sorted
// before returning; the graph builder's output depends on input order.
func (s *UTXOStore) All() ([]*common.UTXO, error) {
	var utxos []*common.UTXO
	for i, db := range s.shards {
		iter, err := db.NewIter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to open iterator on shard %d: %w", i, err)
		}
		for iter.First(); iter.Valid(); iter.Next() {
			var u common.UTXO
			if err := sonic.Unmarshal(iter.Value(), &u); err != nil {
				iter.Close()
				return nil, fmt.Errorf("failed to decode utxo %s: %w", iter.Key(), err)
			}
			utxos = append(utxos, &u)
		}
		if err := iter.Error(); err != nil {
			iter.Close()
			return nil, fmt.Errorf("iteration error on shard %d: %w", i, err)
		}
		iter.Close()
	}
	sort.Slice(utxos, func(a, b int) bool {
		if utxos[a].TxID != utxos[b].TxID {
			return utxos[a].TxID < utxos[b].TxID
		}
		return utxos[a].Vout < utxos[b].Vout
	})
	return utxos, nil
}

// DistinctTags returns all tags present in the set, sorted, for the
// frontend's tag picker.
func (s *UTXOStore) DistinctTags() ([]string, error) {
	utxos, err := s.All()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, u := range utxos {
		for _, t := range u.Tags {
			seen[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags, nil
}

// DistinctWallets returns all wallet labels present in the set, sorted,
// including the sentinel for unlabeled UTXOs.
func (s *UTXOStore) DistinctWallets() ([]string, error) {
	utxos, err := s.All()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, u := range utxos {
		seen[u.Wallet()] = struct{}{}
	}
	wallets := make([]string, 0, len(seen))
	for w := range seen {
		wallets = append(wallets, w)
	}
	sort.Strings(wallets)
	return wallets, nil
}
