package aggregator

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/estrelalabs/telereport/internal/types"
)

var trailingNumber = regexp.MustCompile(`(\d+)$`)

// Aggregate groups normalized calls per store into received/lost counts.
// PctLost is provisional (lost over received) until ApplyVolumes supplies the
// real monthly volume. Rows come out ordered by store number ascending, ties
// broken by label, so repeated runs are byte-identical.
func Aggregate(calls []types.NormalizedCall) []types.StoreAggregate {
	byStore := make(map[string]*types.StoreAggregate)
	for _, c := range calls {
		agg, ok := byStore[c.Store]
		if !ok {
			agg = &types.StoreAggregate{Store: c.Store}
			byStore[c.Store] = agg
		}
		agg.Received++
		if c.IsLost {
			agg.Lost++
		}
	}

	out := make([]types.StoreAggregate, 0, len(byStore))
	for _, agg := range byStore {
		if agg.Received > 0 {
			agg.PctLost = float64(agg.Lost) / float64(agg.Received) * 100
		}
		out = append(out, *agg)
	}

	sort.Slice(out, func(a, b int) bool {
		na, nb := storeNumber(out[a].Store), storeNumber(out[b].Store)
		if na != nb {
			return na < nb
		}
		return out[a].Store < out[b].Store
	})
	return out
}

// ApplyVolumes recomputes PctLost against externally supplied monthly call
// volumes. Stores missing from the map, or with a non-positive volume, fall
// back to their received count. The input slice is not mutated.
func ApplyVolumes(aggs []types.StoreAggregate, volumes map[string]int) []types.StoreAggregate {
	out := make([]types.StoreAggregate, len(aggs))
	for i, agg := range aggs {
		vol := volumes[agg.Store]
		if vol <= 0 {
			vol = agg.Received
		}
		agg.TotalVolume = vol
		if vol > 0 {
			agg.PctLost = float64(agg.Lost) / float64(vol) * 100
		} else {
			agg.PctLost = 0
		}
		out[i] = agg
	}
	return out
}

// storeNumber extracts the numeric suffix of a store label; labels without
// one sort after all numbered stores.
func storeNumber(label string) int {
	m := trailingNumber.FindStringSubmatch(label)
	if m == nil {
		return 1 << 30
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 1 << 30
	}
	return n
}
