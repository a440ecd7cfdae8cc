package aggregator

import (
	"sort"

	"github.com/estrelalabs/telereport/internal/types"
)

// AdjustedLoss compares a store's overall lost calls against the calls the
// target queue absorbed: losses the queue answered are not real losses.
type AdjustedLoss struct {
	Store          string `json:"store"`
	LostTotal      int    `json:"lostTotal"`
	HandledByQueue int    `json:"handledByQueue"`
	Adjusted       int    `json:"adjusted"`
}

// AdjustedLosses computes per-store adjusted losses over an unfiltered call
// set (all queues). matchQueue identifies the target queue. Rows come out
// worst-first: adjusted losses descending, then total losses, then label.
func AdjustedLosses(calls []types.NormalizedCall, matchQueue func(string) bool) []AdjustedLoss {
	byStore := make(map[string]*AdjustedLoss)
	get := func(store string) *AdjustedLoss {
		al, ok := byStore[store]
		if !ok {
			al = &AdjustedLoss{Store: store}
			byStore[store] = al
		}
		return al
	}

	for _, c := range calls {
		if c.IsLost {
			get(c.Store).LostTotal++
		} else if matchQueue(c.Queue) {
			get(c.Store).HandledByQueue++
		}
	}

	out := make([]AdjustedLoss, 0, len(byStore))
	for _, al := range byStore {
		al.Adjusted = al.LostTotal - al.HandledByQueue
		out = append(out, *al)
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].Adjusted != out[b].Adjusted {
			return out[a].Adjusted > out[b].Adjusted
		}
		if out[a].LostTotal != out[b].LostTotal {
			return out[a].LostTotal > out[b].LostTotal
		}
		return out[a].Store < out[b].Store
	})
	return out
}
