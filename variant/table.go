package variant

import "sort"

// Confusion tables for Hebrew letters commonly conflated in OCR output and
// manuscript transcription. Each table lists interchangeable pairs; lookups
// are symmetric.

// basicPairs covers the most frequent scanner confusions.
var basicPairs = [][2]rune{
	{'ד', 'ר'}, {'כ', 'ב'}, {'ה', 'ח'},
	{'ו', 'ז'}, {'ו', 'י'}, {'ו', 'ן'},
	{'ט', 'ת'}, {'ס', 'ש'},
}

// extendedExtraPairs widens the basic table with confusions observed in
// lower-quality scans. Combined with basicPairs for the extended tier.
var extendedExtraPairs = [][2]rune{
	{'ה', 'ח'}, {'ת', 'ה'}, {'י', 'ל'}, {'א', 'ו'}, {'ה', 'ר'}, {'ל', 'י'}, {'א', 'י'}, {'ה', 'ת'},
	{'ר', 'י'}, {'א', 'ח'}, {'י', 'א'}, {'י', 'ר'}, {'ק', 'ה'}, {'נ', 'ו'}, {'ל', 'ו'}, {'ה', 'ו'},
	{'ו', 'א'}, {'ו', 'נ'}, {'ו', 'ל'}, {'ה', 'י'}, {'א', 'ה'}, {'ר', 'ו'}, {'ו', 'ר'}, {'ל', 'ר'},
	{'מ', 'י'}, {'ה', 'א'}, {'מ', 'א'}, {'נ', 'י'}, {'מ', 'ו'}, {'י', 'ה'}, {'ו', 'ה'}, {'ו', 'ן'},
	{'ן', 'ו'}, {'ח', 'ה'}, {'א', 'ל'}, {'ל', 'נ'}, {'י', 'נ'}, {'ת', 'י'}, {'י', 'מ'}, {'ת', 'ח'},
	{'ב', 'י'}, {'ל', 'א'}, {'ה', 'ם'}, {'י', 'ב'}, {'ר', 'ה'}, {'ו', 'ש'}, {'ל', 'כ'}, {'י', 'ת'},
	{'א', 'מ'}, {'ת', 'ר'}, {'ב', 'ו'}, {'ר', 'ל'}, {'י', 'ש'}, {'ב', 'ר'}, {'ו', 'ז'}, {'א', 'ש'},
	{'ש', 'י'}, {'ס', 'ם'}, {'ז', 'ו'}, {'ש', 'ו'}, {'ב', 'נ'}, {'ח', 'א'}, {'ו', 'מ'}, {'מ', 'ש'},
	{'מ', 'ע'}, {'ת', 'ו'}, {'ר', 'א'}, {'ו', 'ב'}, {'מ', 'ל'}, {'מ', 'ב'}, {'ד', 'י'}, {'נ', 'ג'},
	{'ה', 'ד'},
}

// maximumPairs casts the widest net, admitting substitutions between most
// letters of similar shape. The geresh stands in for a truncated letter.
var maximumPairs = [][2]rune{
	{'\'', 'י'}, {'\'', 'ר'}, {'א', 'ב'}, {'א', 'ד'}, {'א', 'ה'}, {'א', 'ו'}, {'א', 'ח'}, {'א', 'י'},
	{'א', 'ל'}, {'א', 'מ'}, {'א', 'ם'}, {'א', 'נ'}, {'א', 'ע'}, {'א', 'ר'}, {'א', 'ש'}, {'א', 'ת'},
	{'ב', 'ד'}, {'ב', 'ה'}, {'ב', 'ו'}, {'ב', 'י'}, {'ב', 'כ'}, {'ב', 'ל'}, {'ב', 'מ'}, {'ב', 'נ'},
	{'ב', 'פ'}, {'ב', 'ר'}, {'ב', 'ש'}, {'ב', 'ת'}, {'ג', 'ו'}, {'ג', 'נ'}, {'ד', 'ה'}, {'ד', 'ו'},
	{'ד', 'י'}, {'ד', 'כ'}, {'ד', 'ל'}, {'ד', 'ר'}, {'ה', 'ב'}, {'ה', 'ד'}, {'ה', 'ו'}, {'ה', 'ח'},
	{'ה', 'י'}, {'ה', 'ך'}, {'ה', 'כ'}, {'ה', 'ל'}, {'ה', 'מ'}, {'ה', 'ם'}, {'ה', 'ק'}, {'ה', 'ר'},
	{'ה', 'ש'}, {'ה', 'ת'}, {'ו', 'ג'}, {'ו', 'ד'}, {'ו', 'ה'}, {'ו', 'ז'}, {'ו', 'ח'}, {'ו', 'י'},
	{'ו', 'כ'}, {'ו', 'ל'}, {'ו', 'מ'}, {'ו', 'ם'}, {'ו', 'נ'}, {'ו', 'ע'}, {'ו', 'ר'}, {'ו', 'ש'},
	{'ו', 'ת'}, {'ז', 'י'}, {'ח', 'א'}, {'ח', 'ה'}, {'ח', 'י'}, {'ח', 'מ'}, {'ח', 'ר'}, {'ח', 'ת'},
	{'ט', 'ע'}, {'ט', 'ש'}, {'ט', 'ת'}, {'י', 'ב'}, {'י', 'ד'}, {'י', 'ה'}, {'י', 'ו'}, {'י', 'ך'},
	{'י', 'כ'}, {'י', 'ל'}, {'י', 'מ'}, {'י', 'ם'}, {'י', 'נ'}, {'י', 'ן'}, {'י', 'ע'}, {'י', 'ר'},
	{'י', 'ש'}, {'י', 'ת'}, {'כ', 'ה'}, {'כ', 'ו'}, {'כ', 'ל'}, {'כ', 'מ'}, {'כ', 'נ'}, {'כ', 'פ'},
	{'כ', 'ר'}, {'כ', 'ת'}, {'ל', 'ד'}, {'ל', 'ה'}, {'ל', 'ו'}, {'ל', 'מ'}, {'ל', 'ם'}, {'ל', 'נ'},
	{'ל', 'ע'}, {'ל', 'ר'}, {'ל', 'ש'}, {'ל', 'ת'}, {'מ', 'ב'}, {'מ', 'ה'}, {'מ', 'ח'}, {'מ', 'נ'},
	{'מ', 'ס'}, {'מ', 'ע'}, {'מ', 'ר'}, {'מ', 'ש'}, {'מ', 'ת'}, {'נ', 'ג'}, {'נ', 'ו'}, {'נ', 'ל'},
	{'נ', 'פ'}, {'נ', 'ר'}, {'נ', 'ת'}, {'ס', 'ם'}, {'ס', 'מ'}, {'ס', 'ש'}, {'ע', 'ל'}, {'ע', 'מ'},
	{'ע', 'נ'}, {'ע', 'ש'}, {'פ', 'ב'}, {'פ', 'כ'}, {'פ', 'נ'}, {'ק', 'ה'}, {'ק', 'ר'}, {'ר', 'ב'},
	{'ר', 'ה'}, {'ר', 'ך'}, {'ר', 'ח'}, {'ר', 'כ'}, {'ר', 'ל'}, {'ר', 'מ'}, {'ר', 'נ'}, {'ר', 'ק'},
	{'ר', 'ש'}, {'ר', 'ת'}, {'ש', 'ב'}, {'ש', 'ה'}, {'ש', 'ו'}, {'ש', 'ט'}, {'ש', 'י'}, {'ש', 'ל'},
	{'ש', 'מ'}, {'ש', 'ע'}, {'ש', 'ר'}, {'ת', 'ה'}, {'ת', 'ו'}, {'ת', 'ח'}, {'ת', 'ט'}, {'ת', 'י'},
	{'ת', 'כ'}, {'ת', 'ל'}, {'ת', 'מ'}, {'ת', 'ם'}, {'ת', 'נ'},
}

// finalLetterPairs makes final forms interchangeable with their medial
// forms in the maximum tier.
var finalLetterPairs = [][2]rune{
	{'כ', 'ך'}, {'מ', 'ם'}, {'נ', 'ן'}, {'פ', 'ף'}, {'צ', 'ץ'},
}

var (
	basicClasses    = buildClasses(basicPairs)
	extendedClasses = buildClasses(basicPairs, extendedExtraPairs)
	maximumClasses  = buildClasses(maximumPairs, finalLetterPairs)
)

// buildClasses folds pair lists into a symmetric lookup from a letter to its
// replacement candidates. Classes are sorted so generation is deterministic.
func buildClasses(pairLists ...[][2]rune) map[rune][]rune {
	sets := make(map[rune]map[rune]struct{})
	add := func(a, b rune) {
		if a == b {
			return
		}
		if sets[a] == nil {
			sets[a] = make(map[rune]struct{})
		}
		sets[a][b] = struct{}{}
	}
	for _, pairs := range pairLists {
		for _, pair := range pairs {
			add(pair[0], pair[1])
			add(pair[1], pair[0])
		}
	}

	classes := make(map[rune][]rune, len(sets))
	for letter, replacements := range sets {
		class := make([]rune, 0, len(replacements))
		for replacement := range replacements {
			class = append(class, replacement)
		}
		sort.Slice(class, func(i, j int) bool { return class[i] < class[j] })
		classes[letter] = class
	}
	return classes
}
