package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	genizahsearch "github.com/gershuni/GenizahSearch"
)

// passages is a small corpus of public domain Hebrew texts used to seed
// a data directory for trying the CLI without real transcription dumps.
// Each line becomes one page; a blank line starts a new manuscript.
var passages = []string{
	"בראשית ברא אלהים את השמים ואת הארץ",
	"והארץ היתה תהו ובהו וחשך על פני תהום ורוח אלהים מרחפת על פני המים",
	"ויאמר אלהים יהי אור ויהי אור",
	"וירא אלהים את האור כי טוב ויבדל אלהים בין האור ובין החשך",
	"ויקרא אלהים לאור יום ולחשך קרא לילה ויהי ערב ויהי בקר יום אחד",
	"",
	"שמע ישראל יי אלהינו יי אחד",
	"ואהבת את יי אלהיך בכל לבבך ובכל נפשך ובכל מאדך",
	"והיו הדברים האלה אשר אנכי מצוך היום על לבבך",
	"ושננתם לבניך ודברת בם בשבתך בביתך ובלכתך בדרך ובשכבך ובקומך",
	"",
	"מזמור לדוד יי רעי לא אחסר",
	"בנאות דשא ירביצני על מי מנחות ינהלני",
	"נפשי ישובב ינחני במעגלי צדק למען שמו",
	"גם כי אלך בגיא צלמות לא אירא רע כי אתה עמדי",
	"",
	"משה קבל תורה מסיני ומסרה ליהושע ויהושע לזקנים וזקנים לנביאים",
	"ונביאים מסרוה לאנשי כנסת הגדולה",
	"הם אמרו שלשה דברים הוו מתונים בדין והעמידו תלמידים הרבה ועשו סיג לתורה",
	"שמעון הצדיק היה משירי כנסת הגדולה",
	"הוא היה אומר על שלשה דברים העולם עומד על התורה ועל העבודה ועל גמילות חסדים",
	"",
	"מה נשתנה הלילה הזה מכל הלילות",
	"שבכל הלילות אנו אוכלין חמץ ומצה הלילה הזה כלו מצה",
	"שבכל הלילות אנו אוכלין שאר ירקות הלילה הזה מרור",
	"עבדים היינו לפרעה במצרים ויוציאנו יי אלהינו משם ביד חזקה ובזרע נטויה",
	"",
	"יסוד היסודות ועמוד החכמות לידע שיש שם מצוי ראשון",
	"והוא ממציא כל נמצא וכל הנמצאים משמים וארץ ומה שביניהם לא נמצאו אלא מאמתת המצאו",
	"ואם יעלה על הדעת שהוא אינו מצוי אין דבר אחר יכול להמצאות",
}

// titles aligns with the manuscripts in passages, in order.
var titles = []string{
	"בראשית",
	"קריאת שמע",
	"תהלים",
	"משנה אבות",
	"הגדה של פסח",
	"משנה תורה",
}

var (
	dataDir  = flag.String("data", "./genizah_data", "data directory to seed")
	seedFile = flag.String("src", "", "file of passages, blank lines separating manuscripts")
	build    = flag.Bool("build", true, "rebuild the index after writing the dump")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// manuscriptsFrom groups lines into manuscripts, one page per line,
// splitting on blank lines.
func manuscriptsFrom(source iter.Seq[string]) [][]string {
	var manuscripts [][]string
	var pages []string
	for line := range source {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(pages) > 0 {
				manuscripts = append(manuscripts, pages)
				pages = nil
			}
			continue
		}
		pages = append(pages, line)
	}
	if len(pages) > 0 {
		manuscripts = append(manuscripts, pages)
	}
	return manuscripts
}

func systemId(n int) string {
	return fmt.Sprintf("990%06d000205171", n+1)
}

func shelfmark(n int) string {
	return fmt.Sprintf("T-S Misc.36.%d", n+1)
}

// writeDump writes the manuscripts as a V0.8 dump with framed headers.
func writeDump(path string, manuscripts [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	file := 0
	for n, pages := range manuscripts {
		for p, text := range pages {
			file++
			fmt.Fprintf(w, "==> %s_IE%d_P%d_FL%d <==\n", systemId(n), n+1, p+1, file)
			fmt.Fprintln(w, text)
		}
	}
	return w.Flush()
}

// writeCatalogue writes a catalogue row per manuscript. Titles beyond
// the known slice are left blank.
func writeCatalogue(path string, count int, titles []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "MMS Id,Call Numbers,Library,Collection,Material,Title")
	for n := 0; n < count; n++ {
		title := ""
		if n < len(titles) {
			title = titles[n]
		}
		fmt.Fprintf(w, "%s,%s,,,,%s\n", systemId(n), shelfmark(n), title)
	}
	return w.Flush()
}

func main() {
	source := linesFromSlice(passages)
	known := titles
	if *seedFile != "" {
		var err error
		source, err = linesFromFile(*seedFile)
		if err != nil {
			panic(err)
		}
		known = nil
	}
	manuscripts := manuscriptsFrom(source)
	if len(manuscripts) == 0 {
		panic("no passages to seed")
	}

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		panic(err)
	}
	if err := writeDump(filepath.Join(*dataDir, "Transcriptions.txt"), manuscripts); err != nil {
		panic(err)
	}
	if err := writeCatalogue(filepath.Join(*dataDir, genizahsearch.CatalogueFile), len(manuscripts), known); err != nil {
		panic(err)
	}
	slog.Info("dump written", "manuscripts", len(manuscripts), "dir", *dataDir)

	if !*build {
		return
	}

	s, err := genizahsearch.Open(*dataDir)
	if err != nil {
		panic(err)
	}
	defer s.Close()

	count, err := s.RebuildIndex(context.Background())
	if err != nil {
		panic(err)
	}
	slog.Info("index built", "fragments", count)
}
