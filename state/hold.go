package state

import "fmt"

// Flags captures the fixed/unfixed status of every primary variable across a
// block collection, keyed by block ID, ordered as StateVarNames. Produced by
// Hold and consumed exactly once by the matching Release.
type Flags map[string][]bool

// Hold prepares a block collection for a temporary-hold protocol. For each
// block, each primary variable not already fixed takes its override value
// when one is supplied under its canonical name; an absent override is
// skipped, not an error. When hold is set, every primary variable is fixed
// afterwards. The returned flags record the pre-hold status for Release.
func Hold(blocks []*Block, overrides map[string]float64, hold bool) Flags {
	flags := make(Flags, len(blocks))
	for _, b := range blocks {
		row := make([]bool, len(b.stateVarOrder))
		for i, name := range b.stateVarOrder {
			v := b.stateVars[name]
			row[i] = v.Fixed()
			if value, ok := overrides[name]; ok && !v.Fixed() {
				v.Set(value)
			}
			if hold {
				v.FixCurrent()
			}
		}
		flags[b.id] = row
	}
	return flags
}

// Release restores the fixed/unfixed status captured by Hold. The flags must
// have exactly the structure Hold returned for the same collection; a missing
// or misshapen row fails with ErrFlagShape.
func Release(blocks []*Block, flags Flags) error {
	for _, b := range blocks {
		row, ok := flags[b.id]
		if !ok {
			return fmt.Errorf("%w: no flags for block %s", ErrFlagShape, b.id)
		}
		if len(row) != len(b.stateVarOrder) {
			return fmt.Errorf("%w: block %s has %d primary variables, flags carry %d",
				ErrFlagShape, b.id, len(b.stateVarOrder), len(row))
		}
	}
	for _, b := range blocks {
		for i, name := range b.stateVarOrder {
			if flags[b.id][i] {
				b.stateVars[name].FixCurrent()
			} else {
				b.stateVars[name].Unfix()
			}
		}
	}
	return nil
}
