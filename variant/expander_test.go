package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gershuni/GenizahSearch/core"
)

func forms(variants []Variant) map[string]int {
	m := make(map[string]int, len(variants))
	for _, v := range variants {
		m[v.Form] = v.Rank
	}
	return m
}

func TestExpand_ShortTermPassthrough(t *testing.T) {
	expander := NewExpander()

	for _, term := range []string{"", "א", "ו"} {
		for _, mode := range []core.Mode{core.ModeVariants, core.ModeExtended, core.ModeMaximum} {
			variants := expander.Expand(term, mode, 0)
			require.Len(t, variants, 1)
			assert.Equal(t, Variant{Form: term}, variants[0])
		}
	}
}

func TestExpand_ModesWithoutTiers(t *testing.T) {
	expander := NewExpander()

	for _, mode := range []core.Mode{core.ModeExact, core.ModeFuzzy, core.ModeRegex} {
		t.Run(mode.String(), func(t *testing.T) {
			variants := expander.Expand("ירושלים", mode, 0)
			require.Len(t, variants, 1)
			assert.Equal(t, Variant{Form: "ירושלים"}, variants[0])
		})
	}
}

func TestExpand_BasicSubstitutions(t *testing.T) {
	expander := NewExpander()

	variants := expander.Expand("דוד", core.ModeVariants, 0)

	require.NotEmpty(t, variants)
	assert.Equal(t, Variant{Form: "דוד"}, variants[0])

	got := forms(variants)
	for _, want := range []string{"רוד", "דזד", "דיד", "דןד", "דור"} {
		rank, ok := got[want]
		require.True(t, ok, "missing variant %q", want)
		assert.Equal(t, 1, rank, "variant %q", want)
	}
	// One substitution of one letter per variant, nothing else.
	assert.Len(t, variants, 6)
}

func TestExpand_OrderedByRankThenDistance(t *testing.T) {
	expander := NewExpander()

	variants := expander.Expand("בית", core.ModeExtended, 0)
	require.NotEmpty(t, variants)
	assert.Equal(t, 0, variants[0].Rank)

	termRunes := []rune("בית")
	prevRank, prevDist := 0, 0
	for _, v := range variants {
		dist := hammingDistance(termRunes, []rune(v.Form))
		if v.Rank == prevRank {
			assert.GreaterOrEqual(t, dist, prevDist, "variant %q out of order", v.Form)
		} else {
			assert.Greater(t, v.Rank, prevRank, "variant %q out of order", v.Form)
		}
		prevRank, prevDist = v.Rank, dist
	}
}

func TestExpand_WiderModesContainNarrower(t *testing.T) {
	expander := NewExpander()

	basic := forms(expander.Expand("בית", core.ModeVariants, 0))
	extended := forms(expander.Expand("בית", core.ModeExtended, 0))
	maximum := forms(expander.Expand("בית", core.ModeMaximum, 0))

	for form := range basic {
		assert.Contains(t, extended, form)
	}
	for form := range extended {
		assert.Contains(t, maximum, form)
	}
	assert.Greater(t, len(extended), len(basic))
	assert.Greater(t, len(maximum), len(extended))
}

func TestExpand_Limit(t *testing.T) {
	expander := NewExpander()

	variants := expander.Expand("בית", core.ModeMaximum, 3)
	require.Len(t, variants, 3)
	assert.Equal(t, Variant{Form: "בית"}, variants[0])
	for _, v := range variants[1:] {
		assert.Equal(t, 1, v.Rank)
	}
}

func TestExpand_MaximumTreatsFinalFormsAsInterchangeable(t *testing.T) {
	expander := NewExpander()

	extended := forms(expander.Expand("צד", core.ModeExtended, 0))
	maximum := forms(expander.Expand("צד", core.ModeMaximum, 0))

	assert.NotContains(t, extended, "ץד")
	rank, ok := maximum["ץד"]
	require.True(t, ok)
	assert.Equal(t, 3, rank)
}

func TestExpand_MaximumCapsAtTwoSubstitutions(t *testing.T) {
	expander := NewExpander()

	extended := forms(expander.Expand("דוד", core.ModeExtended, 0))
	maximum := forms(expander.Expand("דוד", core.ModeMaximum, 0))

	// Two substitutions through a pair only the widest table carries.
	assert.NotContains(t, extended, "כוכ")
	rank, ok := maximum["כוכ"]
	require.True(t, ok)
	assert.Equal(t, 3, rank)

	// No tier substitutes at three positions.
	assert.NotContains(t, maximum, "רזר")
}

func TestExpand_Deterministic(t *testing.T) {
	expander := NewExpander()

	first := expander.Expand("שלום", core.ModeMaximum, 100)
	second := expander.Expand("שלום", core.ModeMaximum, 100)
	assert.Equal(t, first, second)
}
