package index

import (
	"sort"

	"github.com/gershuni/GenizahSearch/core"
)

// slot is one admissible token occurrence at one query position: where it
// sits in the fragment, the concrete form found there, and that form's
// expansion rank.
type slot struct {
	pos  int
	form string
	rank int
}

func sortSlots(slots []slot) {
	sort.Slice(slots, func(i, j int) bool { return slots[i].pos < slots[j].pos })
}

// chainAll finds, for every feasible start occurrence of the first query
// position, one chain picking a slot per query position such that each
// consecutive pair satisfies prev.pos < next.pos <= prev.pos+gap+1. The
// chain returned per start is the leftmost admissible one. Slot lists must
// be sorted by position ascending.
func chainAll(slots [][]slot, gap int) [][]slot {
	if len(slots) == 0 {
		return nil
	}
	for _, list := range slots {
		if len(list) == 0 {
			return nil
		}
	}

	// dead[i][j] records that no full chain extends from slots[i][j].
	// Feasibility forward depends only on (i, j), so the mark is valid
	// whichever predecessor reached it.
	dead := make([]map[int]bool, len(slots))
	for i := range dead {
		dead[i] = make(map[int]bool)
	}

	chain := make([]slot, len(slots))
	var extend func(i, j int) bool
	extend = func(i, j int) bool {
		if dead[i][j] {
			return false
		}
		chain[i] = slots[i][j]
		if i == len(slots)-1 {
			return true
		}
		next := slots[i+1]
		lo := slots[i][j].pos + 1
		hi := slots[i][j].pos + gap + 1
		k := sort.Search(len(next), func(x int) bool { return next[x].pos >= lo })
		for ; k < len(next) && next[k].pos <= hi; k++ {
			if extend(i+1, k) {
				return true
			}
		}
		dead[i][j] = true
		return false
	}

	var out [][]slot
	for j := range slots[0] {
		if extend(0, j) {
			out = append(out, append([]slot(nil), chain...))
		}
	}
	return out
}

// intersectCandidates returns, sorted ascending, the fragments offering at
// least one slot at every query position.
func intersectCandidates(perPos []map[core.ID][]slot) []core.ID {
	smallest := 0
	for i := range perPos {
		if len(perPos[i]) < len(perPos[smallest]) {
			smallest = i
		}
	}

	ids := make([]core.ID, 0, len(perPos[smallest]))
	for id := range perPos[smallest] {
		present := true
		for i := range perPos {
			if i == smallest {
				continue
			}
			if _, ok := perPos[i][id]; !ok {
				present = false
				break
			}
		}
		if present {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
