package genizahsearch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gershuni/GenizahSearch/compose"
	"github.com/gershuni/GenizahSearch/core"
)

const sessionCatalogue = `MMS ID,Call Number,Library,Location,Extent,Title
990044420520205171,ENA 2712 | T-S NS 164.12,JTS,New York,2 leaves,משנה תורה
990055530520205171,T-S 12.192,CUL,Cambridge,1 leaf,ספר החינוך
`

const sessionDump = "==> 990044420520205171_IE88_P1_FL881 <==\n" +
	"הלכות יסודי התורה לדעת שיש שם מצוי ראשון\n" +
	"\n" +
	"==> 990044420520205171_IE88_P2_FL882 <==\n" +
	"והוא ממציא כל נמצא\n" +
	"\n" +
	"==> 990055530520205171_IE99_P1_FL991 <==\n" +
	"לדעת שיש שם מצוי ראשון ודבר אחר לגמרי\n"

// newSessionDir lays out a data directory the way a deployment would:
// catalogue and transcription dump side by side.
func newSessionDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CatalogueFile), []byte(sessionCatalogue), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Transcriptions.txt"), []byte(sessionDump), 0o644))
	return dir
}

func TestOpen(t *testing.T) {
	t.Run("create new session", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "genizah_data")
		s, err := Open(dir)
		require.NoError(t, err)
		require.NotNil(t, s)
		defer s.Close()

		// Verify components are initialized
		assert.NotNil(t, s.backend)
		assert.NotNil(t, s.engine)
		assert.NotNil(t, s.searcher)
		assert.NotNil(t, s.matcher)
		assert.NotNil(t, s.logger)

		// No catalogue on disk: the session still opens, empty.
		assert.Zero(t, s.Resolver().Len())
		assert.False(t, s.Ready())
	})

	t.Run("loads the catalogue", func(t *testing.T) {
		s, err := Open(newSessionDir(t), WithInMemory())
		require.NoError(t, err)
		defer s.Close()

		assert.Equal(t, 2, s.Resolver().Len())
		id, ok := s.Resolver().ResolveByShelfmark("ENA 2712")
		require.True(t, ok)
		assert.Equal(t, "990044420520205171", id)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// A file where the data directory should be.
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0o644))

		s, err := Open(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, s)
	})
}

func TestSession_Close(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.NoError(t, s.Close())
}

func TestSession_IndexSearchAnalyze(t *testing.T) {
	s, err := Open(newSessionDir(t), WithInMemory())
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	// Rebuild picks up the conventional dump without naming it.
	count, err := s.RebuildIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.True(t, s.Ready())

	manifest, err := s.Manifest(ctx)
	require.NoError(t, err)
	require.NotNil(t, manifest)
	assert.Equal(t, 3, manifest.FragmentCount)

	// Phrase search lands on the two fragments sharing the clause.
	hits, err := s.Search(ctx, &core.QueryRequest{Text: "לדעת שיש שם מצוי ראשון", Mode: core.ModeExact})
	require.NoError(t, err)
	require.Len(t, hits, 2)

	fragment, err := s.Fragment(ctx, hits[0].FragmentId)
	require.NoError(t, err)
	assert.Contains(t, fragment.Text, "מצוי ראשון")

	// Manuscript browse returns pages in order.
	pages, err := s.Manuscript(ctx, "990044420520205171")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].PageIndex)
	assert.Equal(t, 2, pages[1].PageIndex)

	// Composition analysis groups the match under its catalogue title.
	result, err := s.Analyze(ctx, "לדעת שיש שם מצוי ראשון", compose.Options{Mode: core.ModeExact})
	require.NoError(t, err)
	require.NotEmpty(t, result.Primary)

	titles := make([]string, 0, len(result.Primary))
	for _, group := range result.Primary {
		titles = append(titles, group.Title)
	}
	assert.Contains(t, titles, "משנה תורה")
	assert.Contains(t, titles, "ספר החינוך")
}

func TestSession_RebuildWithoutDumps(t *testing.T) {
	s, err := Open(t.TempDir(), WithInMemory())
	require.NoError(t, err)
	defer s.Close()

	_, err = s.RebuildIndex(context.Background())
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestSession_Resolve(t *testing.T) {
	s, err := Open(newSessionDir(t), WithInMemory())
	require.NoError(t, err)
	defer s.Close()

	record, ok := s.ResolveByID("990044420520205171")
	require.True(t, ok)
	assert.Equal(t, "ENA 2712", record.Shelfmark)
	assert.Equal(t, "משנה תורה", record.Title)

	// Any catalogued spelling maps back to the system id.
	id, ok := s.ResolveByShelfmark("t-s ns 164.12")
	require.True(t, ok)
	assert.Equal(t, "990044420520205171", id)

	_, ok = s.ResolveByID("123")
	assert.False(t, ok)
}

func TestSession_ExclusionSet(t *testing.T) {
	s, err := Open(newSessionDir(t), WithInMemory())
	require.NoError(t, err)
	defer s.Close()

	set, err := s.NewExclusionSet()
	require.NoError(t, err)
	assert.True(t, set.Add("T-S NS 164.12"))
	assert.True(t, set.Contains("990044420520205171"))
}
