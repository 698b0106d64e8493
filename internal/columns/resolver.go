package columns

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultScanRows bounds the header search in sources with a preamble.
const DefaultScanRows = 200

// ErrHeaderNotFound is matched by *HeaderError.
var ErrHeaderNotFound = errors.New("header row not found")

// Normalize folds a header cell for comparison: non-breaking spaces become
// spaces, runs of whitespace collapse, case and diacritics are dropped
// (so "ё" matches "е").
func Normalize(s string) string {
	s = strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

var lookup = buildLookup()

func buildLookup() map[string]Field {
	m := make(map[string]Field)
	for f := Field(0); f < numFields; f++ {
		for _, l := range labels[f] {
			m[Normalize(l)] = f
		}
	}
	return m
}

// Index is a resolved header: the column position of every canonical field,
// or -1 when the header lacks it.
type Index struct {
	pos   [numFields]int
	width int
}

// Resolve maps header cells to canonical fields. When a field appears more
// than once the leftmost column wins.
func Resolve(header []string) Index {
	var ix Index
	for i := range ix.pos {
		ix.pos[i] = -1
	}
	ix.width = len(header)
	for col, cell := range header {
		f, ok := lookup[Normalize(cell)]
		if !ok || ix.pos[f] >= 0 {
			continue
		}
		ix.pos[f] = col
	}
	return ix
}

// Position returns the column of f, or -1.
func (ix Index) Position(f Field) int {
	if f < 0 || f >= numFields {
		return -1
	}
	return ix.pos[f]
}

// Has reports whether the header contains f.
func (ix Index) Has(f Field) bool {
	return ix.Position(f) >= 0
}

// Width is the number of cells in the header row.
func (ix Index) Width() int {
	return ix.width
}

// Missing returns the fields among want that the header lacks.
func (ix Index) Missing(want ...Field) []Field {
	var out []Field
	for _, f := range want {
		if !ix.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Record builds a row record. Cells beyond the end of a short row read as
// empty.
func (ix Index) Record(cells []string) Record {
	var r Record
	for f := Field(0); f < numFields; f++ {
		p := ix.pos[f]
		if p < 0 || p >= len(cells) {
			continue
		}
		r.Set(f, strings.TrimSpace(strings.ReplaceAll(cells[p], "\u00a0", " ")))
	}
	return r
}

// HeaderError reports that no row within the scan window carries every
// mandatory field.
type HeaderError struct {
	Window  int
	Missing []Field
	// Suggestions maps a missing field to the closest header cell seen.
	Suggestions map[Field]string
}

func (e *HeaderError) Error() string {
	names := make([]string, len(Mandatory))
	for i, f := range Mandatory {
		names[i] = f.Label()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Не удалось найти строку заголовков (не нашли колонки %s в первых %d строках).",
		strings.Join(names, "/"), e.Window)
	for _, f := range e.Missing {
		if s, ok := e.Suggestions[f]; ok {
			fmt.Fprintf(&b, " Возможно, «%s» это «%s»?", s, f.Label())
		}
	}
	return b.String()
}

func (e *HeaderError) Is(target error) bool {
	return target == ErrHeaderNotFound
}

// FindHeader returns the zero-based position of the first row within the
// first window rows that resolves every mandatory field.
func FindHeader(rows [][]string, window int) (int, Index, error) {
	if window <= 0 {
		window = DefaultScanRows
	}
	limit := min(window, len(rows))

	best, bestRow := -1, -1
	for r := 0; r < limit; r++ {
		ix := Resolve(rows[r])
		missing := ix.Missing(Mandatory...)
		if len(missing) == 0 {
			return r, ix, nil
		}
		if found := len(Mandatory) - len(missing); found > best {
			best, bestRow = found, r
		}
	}

	herr := &HeaderError{Window: window, Missing: slices.Clone(Mandatory), Suggestions: map[Field]string{}}
	if bestRow >= 0 && best > 0 {
		herr.Missing = Resolve(rows[bestRow]).Missing(Mandatory...)
		for _, f := range herr.Missing {
			if s, ok := suggest(f, rows[bestRow]); ok {
				herr.Suggestions[f] = s
			}
		}
	}
	return -1, Index{}, herr
}

// suggest picks the header cell that most resembles one of f's labels.
func suggest(f Field, cells []string) (string, bool) {
	var candidates []string
	for _, c := range cells {
		if c = strings.TrimSpace(c); c != "" {
			if _, known := lookup[Normalize(c)]; !known {
				candidates = append(candidates, c)
			}
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	// A decorated header ("Задолженность на конец, руб.") contains the label.
	for _, label := range f.Synonyms() {
		ranks := fuzzy.RankFindNormalizedFold(label, candidates)
		if len(ranks) > 0 {
			sort.Sort(ranks)
			return ranks[0].Target, true
		}
	}
	// An abbreviated one ("Задолж. на конец") is contained in it.
	for _, c := range candidates {
		for _, label := range f.Synonyms() {
			if fuzzy.MatchNormalizedFold(strings.ReplaceAll(c, ".", ""), label) {
				return c, true
			}
		}
	}

	bestDist, best := -1, ""
	for _, c := range candidates {
		d := fuzzy.LevenshteinDistance(Normalize(c), Normalize(f.Label()))
		if bestDist < 0 || d < bestDist {
			bestDist, best = d, c
		}
	}
	if bestDist >= 0 && bestDist <= len([]rune(f.Label()))/3 {
		return best, true
	}
	return "", false
}
