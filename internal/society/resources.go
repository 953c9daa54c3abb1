package society

// NetFlow converts string lengths and cross-similarity into a net
// resource flow: gains scale with the producing side weighted by how
// well it matches its counterpart, losses scale with the consuming side
// weighted by the mismatch.
func NetFlow(sourceLength int, effectiveness float64, targetLength int) float64 {
	return float64(sourceLength)*effectiveness - float64(targetLength)*(1.0-effectiveness)
}

// StoreUpdate is the outcome of applying one generation's net flow to a
// resource store.
type StoreUpdate struct {
	Available float64
	Store     float64
	Depleted  bool
}

// ApplyToStore updates a store with netFlow.
//
// A flow of at least 1 is a surplus: it is available in full and the
// store is untouched. Below that a deficit is charged against the
// store: a fixed unit maintenance cost when 0 <= netFlow < 1, the full
// shortfall when negative. If the store covers the deficit, baseline
// operations continue with one unit available. If not, whatever remains
// in the store is the final available amount, the store is zeroed and
// the society is depleted.
func ApplyToStore(store, netFlow float64) StoreUpdate {
	if netFlow >= 1 {
		return StoreUpdate{Available: netFlow, Store: store}
	}

	deficit := 1.0
	if netFlow < 0 {
		deficit = -netFlow
	}
	if store >= deficit {
		return StoreUpdate{Available: 1.0, Store: store - deficit}
	}
	return StoreUpdate{Available: store, Store: 0, Depleted: true}
}
