package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogueCSV = `MMS ID,Call Number,Library,Location,Availability,Title
990012345670205171,ENA 2712 | T-S NS 164.12,JTS,Special,Available,משנה תורה
990022222220205171,MS Heb 28,NLI,Stacks,Available,ספר הקבלה
990033333330205171,T-S 8J5.14,CUL,Stacks,Available,
badrow
`

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	resolver, err := NewResolver(strings.NewReader(catalogueCSV))
	require.NoError(t, err)
	return resolver
}

func TestLoadResolver_FileMissing(t *testing.T) {
	_, err := LoadResolver(filepath.Join(t.TempDir(), "libraries.csv"))
	assert.ErrorIs(t, err, ErrCatalogueUnreadable)
}

func TestLoadResolver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "libraries.csv")
	require.NoError(t, os.WriteFile(path, []byte(catalogueCSV), 0o644))

	resolver, err := LoadResolver(path)
	require.NoError(t, err)
	assert.Equal(t, 3, resolver.Len())
}

func TestResolveByID(t *testing.T) {
	resolver := newTestResolver(t)

	record, ok := resolver.ResolveByID("990012345670205171")
	require.True(t, ok)
	assert.Equal(t, "990012345670205171", record.SystemId)
	// The shortest of the pipe-separated call numbers is canonical.
	assert.Equal(t, "ENA 2712", record.Shelfmark)
	assert.Equal(t, "משנה תורה", record.Title)

	_, ok = resolver.ResolveByID("990099999990205171")
	assert.False(t, ok)
}

func TestResolveByID_StrayRunes(t *testing.T) {
	resolver := newTestResolver(t)

	// Ids pasted from catalogue exports carry BOMs and direction marks.
	record, ok := resolver.ResolveByID("\uFEFF990012345670205171‏")
	require.True(t, ok)
	assert.Equal(t, "990012345670205171", record.SystemId)
}

func TestResolveByShelfmark(t *testing.T) {
	resolver := newTestResolver(t)

	tests := []struct {
		shelfmark string
		want      string
	}{
		{"ENA 2712", "990012345670205171"},
		{"ena2712", "990012345670205171"},
		// Non-canonical call numbers resolve too.
		{"T-S NS 164.12", "990012345670205171"},
		{"MS Heb 28", "990022222220205171"},
		{"Ms. Heb. 28", "990022222220205171"},
		{"heb 28", "990022222220205171"},
		{"T-S 8J5.14", "990033333330205171"},
	}
	for _, tt := range tests {
		id, ok := resolver.ResolveByShelfmark(tt.shelfmark)
		require.True(t, ok, tt.shelfmark)
		assert.Equal(t, tt.want, id, tt.shelfmark)
	}

	_, ok := resolver.ResolveByShelfmark("Bodl. MS heb. d. 66")
	assert.False(t, ok)
}

func TestTitle(t *testing.T) {
	resolver := newTestResolver(t)

	assert.Equal(t, "משנה תורה", resolver.Title("990012345670205171"))
	assert.Equal(t, "", resolver.Title("990033333330205171"))
	assert.Equal(t, "", resolver.Title("990099999990205171"))
}

func TestNormalizeShelfmark(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MS Heb 28", "heb28"},
		{"Ms. Heb. 28", "heb28"},
		{"m.s. Heb 28", "heb28"},
		{"T-S NS 164.12", "tsns16412"},
		{"ENA 2712", "ena2712"},
		// A leading m that is not an MS prefix stays.
		{"Moscow 133", "moscow133"},
		{"", ""},
		{"MS", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeShelfmark(tt.in), tt.in)
	}
}

func TestExclusionSet(t *testing.T) {
	resolver := newTestResolver(t)

	t.Run("nil resolver", func(t *testing.T) {
		_, err := NewExclusionSet(nil)
		assert.ErrorIs(t, err, ErrResolverRequired)
	})

	t.Run("ids and shelfmarks", func(t *testing.T) {
		set, err := NewExclusionSet(resolver)
		require.NoError(t, err)

		assert.True(t, set.Add("990012345670205171"))
		// Whitespace inside a pasted id is insignificant.
		assert.True(t, set.Add("9900 2222 2220 2051 71"))
		assert.True(t, set.Add("T-S 8J5.14"))

		assert.Equal(t, 3, set.Len())
		assert.True(t, set.Contains("990012345670205171"))
		assert.True(t, set.Contains("990022222220205171"))
		assert.True(t, set.Contains("990033333330205171"))
		assert.False(t, set.Contains("990099999990205171"))
		assert.Empty(t, set.Unresolved())
	})

	t.Run("unresolved shelfmarks", func(t *testing.T) {
		set, err := NewExclusionSet(resolver)
		require.NoError(t, err)

		assert.False(t, set.Add("Bodl. MS heb. d. 66"))
		assert.False(t, set.Add(""))

		assert.Equal(t, 0, set.Len())
		assert.Equal(t, []string{"Bodl. MS heb. d. 66"}, set.Unresolved())
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		set, err := NewExclusionSet(resolver)
		require.NoError(t, err)
		set.AddAll("990012345670205171")

		snapshot := set.Snapshot()
		set.Add("990022222220205171")

		assert.Len(t, snapshot, 1)
		_, ok := snapshot["990012345670205171"]
		assert.True(t, ok)
	})
}
