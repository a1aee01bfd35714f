package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/utxoscope/utxo_grapher/common"
)

func TestCacheGraphRoundTrip(t *testing.T) {
	cache, err := NewCache(8)
	require.NoError(t, err)

	criteria := Criteria{SearchTerm: "abc"}
	g := Build([]*common.UTXO{u("a", 0, "X", 1, common.RiskLow)})

	_, ok := cache.GetGraph(1, &criteria)
	require.False(t, ok)

	cache.PutGraph(1, &criteria, g)
	got, ok := cache.GetGraph(1, &criteria)
	require.True(t, ok)
	require.Same(t, g, got)
}

func TestCacheVersionBumpInvalidates(t *testing.T) {
	cache, err := NewCache(8)
	require.NoError(t, err)

	criteria := Criteria{}
	cache.PutGraph(1, &criteria, &Graph{})

	_, ok := cache.GetGraph(2, &criteria)
	require.False(t, ok)
}

func TestCacheGroupsKeyedByMode(t *testing.T) {
	cache, err := NewCache(8)
	require.NoError(t, err)

	criteria := Criteria{}
	riskGroups := BuildGroups(nil, GroupRisk)
	cache.PutGroups(3, &criteria, GroupRisk, riskGroups)

	got, ok := cache.GetGroups(3, &criteria, GroupRisk)
	require.True(t, ok)
	require.Len(t, got, 3)

	_, ok = cache.GetGroups(3, &criteria, GroupWallet)
	require.False(t, ok)
}

func TestCacheEviction(t *testing.T) {
	cache, err := NewCache(2)
	require.NoError(t, err)

	a, b, c := Criteria{SearchTerm: "a"}, Criteria{SearchTerm: "b"}, Criteria{SearchTerm: "c"}
	cache.PutGraph(1, &a, &Graph{})
	cache.PutGraph(1, &b, &Graph{})
	cache.PutGraph(1, &c, &Graph{})
	require.Equal(t, 2, cache.Len())

	_, ok := cache.GetGraph(1, &a)
	require.False(t, ok)
}
