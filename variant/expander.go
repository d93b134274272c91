package variant

import (
	"sort"

	"github.com/gershuni/GenizahSearch/core"
)

// GenerationLimit caps the number of variants produced for a single term.
const GenerationLimit = 5000

// Variant is a generated spelling alternative.
type Variant struct {
	// Form is the variant spelling.
	Form string
	// Rank records the tier that produced the variant: 0 for the original
	// term, 1 for basic, 2 for extended, 3 for maximum.
	Rank int
}

// layer pairs a confusion table with its substitution budget and rank.
type layer struct {
	classes    map[rune][]rune
	maxChanges int
	rank       int
}

// Expander generates spelling variants from the confusion tables.
type Expander struct{}

// NewExpander returns an Expander backed by the built-in confusion tables.
func NewExpander() *Expander {
	return &Expander{}
}

// Expand returns spelling variants of term for the given mode, ordered by
// rank, then by distance from the original term. The original term is always
// first. Terms shorter than two letters pass through unchanged, as do terms
// in modes without substitution tiers.
//
// limit clamps the result length; values outside (0, GenerationLimit] fall
// back to GenerationLimit.
func (e *Expander) Expand(term string, mode core.Mode, limit int) []Variant {
	if limit <= 0 || limit > GenerationLimit {
		limit = GenerationLimit
	}

	runes := []rune(term)
	if len(runes) < 2 {
		return []Variant{{Form: term}}
	}

	layers := layersFor(mode)
	if len(layers) == 0 {
		return []Variant{{Form: term}}
	}

	candidates := map[string]int{term: 0}
	for _, l := range layers {
		generated := make(map[string]struct{})
		generate(runes, l.classes, l.maxChanges, limit, generated)
		for form := range generated {
			if _, ok := candidates[form]; !ok {
				candidates[form] = l.rank
			}
		}
	}

	variants := make([]Variant, 0, len(candidates))
	for form, rank := range candidates {
		variants = append(variants, Variant{Form: form, Rank: rank})
	}
	sort.Slice(variants, func(i, j int) bool {
		if variants[i].Rank != variants[j].Rank {
			return variants[i].Rank < variants[j].Rank
		}
		di := hammingDistance(runes, []rune(variants[i].Form))
		dj := hammingDistance(runes, []rune(variants[j].Form))
		if di != dj {
			return di < dj
		}
		return variants[i].Form < variants[j].Form
	})

	if len(variants) > limit {
		variants = variants[:limit]
	}
	return variants
}

func layersFor(mode core.Mode) []layer {
	switch mode {
	case core.ModeVariants:
		return []layer{
			{basicClasses, 1, 1},
		}
	case core.ModeExtended:
		return []layer{
			{basicClasses, 1, 1},
			{extendedClasses, 2, 2},
		}
	case core.ModeMaximum:
		return []layer{
			{basicClasses, 1, 1},
			{extendedClasses, 2, 2},
			{maximumClasses, 2, 3},
		}
	default:
		return nil
	}
}

// generate collects every spelling reachable from runes by substituting at
// 1..maxChanges positions using classes. Generation stops once out holds
// limit entries.
func generate(runes []rune, classes map[rune][]rune, maxChanges, limit int, out map[string]struct{}) {
	n := len(runes)
	for changes := 1; changes <= maxChanges; changes++ {
		if changes > n {
			return
		}
		positions := make([]int, changes)
		for i := range positions {
			positions[i] = i
		}
		for {
			if !emitSubstitutions(runes, classes, positions, limit, out) {
				return
			}
			// Advance to the next combination of positions.
			i := changes - 1
			for i >= 0 && positions[i] == n-changes+i {
				i--
			}
			if i < 0 {
				break
			}
			positions[i]++
			for j := i + 1; j < changes; j++ {
				positions[j] = positions[j-1] + 1
			}
		}
	}
}

// emitSubstitutions adds every spelling obtained by replacing the letters at
// the chosen positions. A position whose letter has no confusion class voids
// the whole combination. Returns false once out reaches limit.
func emitSubstitutions(runes []rune, classes map[rune][]rune, positions []int, limit int, out map[string]struct{}) bool {
	options := make([][]rune, len(positions))
	for i, pos := range positions {
		class := classes[runes[pos]]
		if len(class) == 0 {
			return true
		}
		options[i] = class
	}

	buf := make([]rune, len(runes))
	copy(buf, runes)
	var visit func(i int) bool
	visit = func(i int) bool {
		if i == len(positions) {
			out[string(buf)] = struct{}{}
			return len(out) < limit
		}
		for _, replacement := range options[i] {
			buf[positions[i]] = replacement
			if !visit(i + 1) {
				return false
			}
		}
		return true
	}
	return visit(0)
}

// hammingDistance counts differing positions between equal-length terms.
// Terms of different lengths sort after all equal-length variants.
func hammingDistance(term, variant []rune) int {
	if len(term) != len(variant) {
		return len(term) + len(variant)
	}
	diff := 0
	for i := range term {
		if term[i] != variant[i] {
			diff++
		}
	}
	return diff
}
