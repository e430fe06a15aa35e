package xl

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Enumerate walks m in ascending key order, calling callback for each
// entry. It is the deterministic-iteration building block used where a
// map must be walked reproducibly: applying the pending sheet operations
// in sheet-number order, and DumpParts' write order.
//
// This is adnsv-go-xl's original Writer.enumerate, generalized from its
// package-private form into an exported helper usable outside the xl
// package.
func Enumerate[M ~map[K]V, K constraints.Ordered, V any](m M, callback func(k K, v V) error) error {
	keys := maps.Keys(m)
	slices.Sort(keys)
	for _, k := range keys {
		if err := callback(k, m[k]); err != nil {
			return err
		}
	}
	return nil
}
