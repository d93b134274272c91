package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const v8Dump = `==> 990012345000205171_IE55_P1_FL2 <==
שורה ראשונה
שורה שניה
==> 990012345000205171_IE55_P2_FL3 <==
טקסט בעמוד השני
`

func TestParseRecords_V8(t *testing.T) {
	fragments, err := ParseRecords(strings.NewReader(v8Dump), FormatV8)
	require.NoError(t, err)
	require.Len(t, fragments, 2)

	first := fragments[0]
	assert.Equal(t, "990012345000205171_IE55_P1_FL2", first.Header)
	assert.Equal(t, "IE55_P1_FL2", first.FileId)
	assert.Equal(t, "990012345000205171", first.ManuscriptId)
	assert.Equal(t, 1, first.PageIndex)
	assert.Equal(t, "V0.8", first.Source)
	assert.Equal(t, "שורה ראשונה\nשורה שניה", first.Text)

	second := fragments[1]
	assert.Equal(t, 2, second.PageIndex)
	assert.Equal(t, "טקסט בעמוד השני", second.Text)
	assert.NotEqual(t, first.Id, second.Id)
}

func TestParseRecords_V7KeepsWholeHeaderLine(t *testing.T) {
	dump := `### 990012345000205171 Evr.Arab. I 123
טקסט ישן
`
	fragments, err := ParseRecords(strings.NewReader(dump), FormatV7)
	require.NoError(t, err)
	require.Len(t, fragments, 1)

	assert.Equal(t, "### 990012345000205171 Evr.Arab. I 123", fragments[0].Header)
	assert.Equal(t, "990012345000205171", fragments[0].ManuscriptId)
	assert.Equal(t, "V0.7", fragments[0].Source)
}

func TestParseRecords_PreambleIgnored(t *testing.T) {
	dump := `שורות פתיחה שאינן שייכות לאף רשומה
==> 990012345000205171_IE55_P1_FL2 <==
תוכן
`
	fragments, err := ParseRecords(strings.NewReader(dump), FormatV8)
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, "תוכן", fragments[0].Text)
}

func TestParseRecords_EmptyRecordDropped(t *testing.T) {
	dump := `==> 990012345000205171_IE55_P1_FL2 <==
==> 990012345000205171_IE55_P2_FL3 <==
תוכן
`
	fragments, err := ParseRecords(strings.NewReader(dump), FormatV8)
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, 2, fragments[0].PageIndex)
}

func TestParseRecords_SameFileIdAcrossFormats(t *testing.T) {
	newDump := `==> 990012345000205171_IE55_P1_FL2 <==
נוסח חדש
`
	oldDump := `### header mentioning IE55_P1_FL2 differently
נוסח ישן
`
	newFragments, err := ParseRecords(strings.NewReader(newDump), FormatV8)
	require.NoError(t, err)
	oldFragments, err := ParseRecords(strings.NewReader(oldDump), FormatV7)
	require.NoError(t, err)

	require.Len(t, newFragments, 1)
	require.Len(t, oldFragments, 1)
	assert.Equal(t, newFragments[0].Id, oldFragments[0].Id)
}

func TestParseRecords_UnknownFormat(t *testing.T) {
	_, err := ParseRecords(strings.NewReader(""), Format(0))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestSource_Read(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Transcriptions.txt")
	require.NoError(t, os.WriteFile(path, []byte(v8Dump), 0o644))

	fragments, err := Source{Path: path, Format: FormatV8}.Read()
	require.NoError(t, err)
	assert.Len(t, fragments, 2)
}

func TestSource_Read_Missing(t *testing.T) {
	_, err := Source{Path: filepath.Join(t.TempDir(), "nope.txt"), Format: FormatV8}.Read()
	assert.ErrorIs(t, err, ErrSourceUnreadable)
}

func TestDefaultSources_OlderFirst(t *testing.T) {
	sources := DefaultSources("/data")
	require.Len(t, sources, 2)
	assert.Equal(t, FormatV7, sources[0].Format)
	assert.Equal(t, FormatV8, sources[1].Format)
}

func TestExtractFileId(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"full triple", "990012345000205171_IE55_P1_FL2", "IE55_P1_FL2"},
		{"system id fallback", "### 990012345000205171 shelf", "990012345000205171"},
		{"short system id fallback", "scan 9912 misc", "9912"},
		{"nothing", "T-S 12.182", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFileId(tt.header))
		})
	}
}

func TestParseManuscriptId(t *testing.T) {
	assert.Equal(t, "990012345000205171", ParseManuscriptId("x 990012345000205171_IE55"))
	assert.Equal(t, "", ParseManuscriptId("9912345 too short"))
}

func TestParsePageIndex(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"page component", "990012345000205171_IE55_P12_FL2", 12},
		{"tif fallback", "box 3 scan_0042.tif", 42},
		{"tif uppercase", "box 3 scan-0042.TIF", 42},
		{"no page", "### 990012345000205171", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePageIndex(tt.header))
		})
	}
}

func TestParseHeaderComponents(t *testing.T) {
	components, ok := ParseHeaderComponents("990012345000205171_IE55_P3_FL7")
	require.True(t, ok)
	assert.Equal(t, HeaderComponents{
		SystemId:   "990012345000205171",
		IEId:       "IE55",
		Page:       3,
		FileNumber: "7",
	}, components)

	components, ok = ParseHeaderComponents("### 990012345000205171 shelf")
	require.True(t, ok)
	assert.Equal(t, "990012345000205171", components.SystemId)
	assert.Empty(t, components.IEId)

	_, ok = ParseHeaderComponents("T-S 12.182")
	assert.False(t, ok)
}
