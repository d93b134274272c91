package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gershuni/GenizahSearch/core"
)

// Format identifies the record separator style of a dump file.
type Format int

const (
	// FormatV8 marks dumps whose headers are framed by ==> and <==.
	FormatV8 Format = iota + 1
	// FormatV7 marks dumps whose headers start with ###.
	FormatV7
)

// String returns the dump label stored on fragments from this format.
func (f Format) String() string {
	switch f {
	case FormatV8:
		return "V0.8"
	case FormatV7:
		return "V0.7"
	default:
		return "unknown"
	}
}

// Scanner line limit. OCR dumps occasionally run whole pages together.
const maxLineBytes = 1 << 20

var (
	fileIdRe     = regexp.MustCompile(`IE\d+_P\d+_FL\d+`)
	systemIdRe   = regexp.MustCompile(`99\d+`)
	manuscriptRe = regexp.MustCompile(`99\d{8,}`)
	pageRe       = regexp.MustCompile(`_P(\d+)_`)
	tifPageRe    = regexp.MustCompile(`(?i)[ \-_](\d{3,4})\.tif`)
	componentsRe = regexp.MustCompile(`(99\d+)_?(IE\d+)?_?(P(\d+))?_?(FL\d+)?`)
)

// Source is a transcription dump file on disk.
type Source struct {
	Path   string
	Format Format
}

// DefaultSources lists the dump files conventionally placed in dir, older
// dump first so newer records replace duplicated fragments.
func DefaultSources(dir string) []Source {
	return []Source{
		{Path: filepath.Join(dir, "AllGenizah_OLD.txt"), Format: FormatV7},
		{Path: filepath.Join(dir, "Transcriptions.txt"), Format: FormatV8},
	}
}

// Read parses the dump file into fragments. A missing file is an
// ErrSourceUnreadable.
func (s Source) Read() ([]core.Fragment, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	defer file.Close()

	fragments, err := ParseRecords(file, s.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnreadable, s.Path, err)
	}
	return fragments, nil
}

// ParseRecords reads dump records from r. Each record starts at a separator
// line; the lines up to the next separator form the fragment text. Records
// with no text lines are dropped, as is anything before the first separator.
func ParseRecords(r io.Reader, format Format) ([]core.Fragment, error) {
	if format != FormatV8 && format != FormatV7 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		fragments []core.Fragment
		header    string
		lines     []string
		inRecord  bool
	)
	flush := func() {
		if !inRecord || len(lines) == 0 {
			return
		}
		fragments = append(fragments, newFragment(header, strings.Join(lines, "\n"), format))
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if isSeparator(line, format) {
			flush()
			header = cleanHeader(line, format)
			lines = nil
			inRecord = true
			continue
		}
		if inRecord {
			lines = append(lines, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return fragments, nil
}

func isSeparator(line string, format Format) bool {
	switch format {
	case FormatV8:
		return strings.HasPrefix(line, "==>")
	case FormatV7:
		return strings.HasPrefix(line, "###")
	default:
		return false
	}
}

// cleanHeader strips the arrow framing from new-style headers. Old-style
// headers keep the whole line.
func cleanHeader(line string, format Format) string {
	if format == FormatV8 {
		line = strings.ReplaceAll(line, "==>", "")
		line = strings.ReplaceAll(line, "<==", "")
		return strings.TrimSpace(line)
	}
	return line
}

// newFragment builds a fragment from a record. Identity comes from the file
// id when the header carries one, otherwise from the header itself, so the
// same fragment in different dumps maps to the same id.
func newFragment(header, text string, format Format) core.Fragment {
	fileId := ExtractFileId(header)
	identity := fileId
	if identity == "" {
		identity = header
	}
	return core.Fragment{
		Id:           core.IDFromContent(identity),
		ManuscriptId: ParseManuscriptId(header),
		PageIndex:    ParsePageIndex(header),
		FileId:       fileId,
		Header:       header,
		Source:       format.String(),
		Text:         text,
	}
}

// ExtractFileId pulls the most specific identifier out of a header line:
// the full IE/page/file triple when present, else a bare system id, else
// the empty string.
func ExtractFileId(header string) string {
	if m := fileIdRe.FindString(header); m != "" {
		return m
	}
	return systemIdRe.FindString(header)
}

// ParseManuscriptId extracts the library system id from a header. System
// ids start with 99 and run at least ten digits; shorter 99-runs are page
// or folio numbers.
func ParseManuscriptId(header string) string {
	return manuscriptRe.FindString(header)
}

// ParsePageIndex extracts the page number from a header, trying the _P<n>_
// component first and falling back to a trailing scan number before a .tif
// extension. Returns 0 when the header carries neither.
func ParsePageIndex(header string) int {
	if m := pageRe.FindStringSubmatch(header); m != nil {
		if page, err := strconv.Atoi(m[1]); err == nil {
			return page
		}
	}
	if m := tifPageRe.FindStringSubmatch(header); m != nil {
		if page, err := strconv.Atoi(m[1]); err == nil {
			return page
		}
	}
	return 0
}

// HeaderComponents is the decomposition of a structured fragment header.
type HeaderComponents struct {
	SystemId   string
	IEId       string
	Page       int
	FileNumber string
}

// ParseHeaderComponents splits a structured header of the form
// 99…_IE…_P…_FL… into its parts. Absent parts are left zero.
func ParseHeaderComponents(header string) (HeaderComponents, bool) {
	m := componentsRe.FindStringSubmatch(header)
	if m == nil {
		return HeaderComponents{}, false
	}
	components := HeaderComponents{
		SystemId:   m[1],
		IEId:       m[2],
		FileNumber: strings.TrimPrefix(m[5], "FL"),
	}
	if m[4] != "" {
		if page, err := strconv.Atoi(m[4]); err == nil {
			components.Page = page
		}
	}
	return components, true
}
