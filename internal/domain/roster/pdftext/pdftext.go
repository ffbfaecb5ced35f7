// Package pdftext is the seam between the PDF library and the parsing
// strategies. It turns a roster PDF into plain page data (ordered text
// lines plus positioned words) so the strategies stay pure functions of
// extracted text.
package pdftext

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Word is a single positioned text fragment on a page. Coordinates use the
// PDF convention: X grows rightward, Y grows upward from the page bottom.
type Word struct {
	X float64
	Y float64
	S string
}

// Page holds the extracted text of one PDF page. Lines are in top-to-bottom
// reading order. Words carry geometry when the page exposes it; an empty
// Words slice forces strategies into their degraded plain-text mode.
type Page struct {
	Number int
	Lines  []string
	Words  []Word
}

// Document wraps an open roster PDF. The underlying file handle is held
// for the lifetime of the document and released by Close on every path.
type Document struct {
	file   *os.File
	reader *pdf.Reader
}

// Open opens a roster PDF for extraction. Callers must Close the document.
func Open(path string) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	return &Document{file: f, reader: r}, nil
}

// Close releases the underlying file.
func (d *Document) Close() error {
	return d.file.Close()
}

// Pages extracts every page in order. Pages that fail row extraction are
// returned with whatever could be salvaged; extraction failures never abort
// the document.
func (d *Document) Pages() []Page {
	total := d.reader.NumPage()
	pages := make([]Page, 0, total)

	for num := 1; num <= total; num++ {
		p := d.reader.Page(num)
		if p.V.IsNull() {
			continue
		}

		page := Page{Number: num}

		if rows, err := p.GetTextByRow(); err == nil {
			for _, row := range rows {
				var sb strings.Builder
				for i, word := range row.Content {
					if i > 0 {
						sb.WriteString(" ")
					}
					sb.WriteString(word.S)
				}
				if line := strings.TrimSpace(sb.String()); line != "" {
					page.Lines = append(page.Lines, line)
				}
			}
		}

		for _, t := range p.Content().Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			page.Words = append(page.Words, Word{X: t.X, Y: t.Y, S: t.S})
		}

		pages = append(pages, page)
	}
	return pages
}

// lineYTolerance groups words onto the same visual line when their Y
// coordinates differ by no more than this many points.
const lineYTolerance = 2.0

// Columns splits the page's positioned words into n vertical columns and
// returns each column's text lines in reading order. Column boundaries are
// placed at the n-1 widest horizontal gaps between word start positions.
// Returns nil when the page carries no geometry, signalling the caller to
// fall back to plain-line scanning.
func (p Page) Columns(n int) [][]string {
	if len(p.Words) == 0 || n < 2 {
		return nil
	}

	bounds := columnBoundaries(p.Words, n)
	if bounds == nil {
		return nil
	}

	buckets := make([][]Word, n)
	for _, w := range p.Words {
		col := 0
		for col < len(bounds) && w.X >= bounds[col] {
			col++
		}
		buckets[col] = append(buckets[col], w)
	}

	out := make([][]string, n)
	for i, bucket := range buckets {
		out[i] = joinLines(bucket)
	}
	return out
}

// columnBoundaries finds the n-1 widest gaps between distinct word start
// positions and returns their midpoints, sorted ascending. Returns nil when
// the words do not spread over enough distinct positions.
func columnBoundaries(words []Word, n int) []float64 {
	xs := make([]float64, 0, len(words))
	for _, w := range words {
		xs = append(xs, w.X)
	}
	sort.Float64s(xs)

	distinct := xs[:0]
	for i, x := range xs {
		if i == 0 || x-distinct[len(distinct)-1] > 0.5 {
			distinct = append(distinct, x)
		}
	}
	if len(distinct) < n {
		return nil
	}

	type gap struct {
		mid   float64
		width float64
	}
	gaps := make([]gap, 0, len(distinct)-1)
	for i := 1; i < len(distinct); i++ {
		gaps = append(gaps, gap{
			mid:   (distinct[i-1] + distinct[i]) / 2,
			width: distinct[i] - distinct[i-1],
		})
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i].width > gaps[j].width })

	if len(gaps) < n-1 {
		return nil
	}
	bounds := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		bounds[i] = gaps[i].mid
	}
	sort.Float64s(bounds)
	return bounds
}

// joinLines groups positioned words into visual lines (Y descending, PDF
// origin is the page bottom) and joins each line's words left to right.
func joinLines(words []Word) []string {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []string
	var current []string
	currentY := sorted[0].Y

	flush := func() {
		if len(current) > 0 {
			lines = append(lines, strings.TrimSpace(strings.Join(current, " ")))
			current = nil
		}
	}

	for _, w := range sorted {
		if currentY-w.Y > lineYTolerance {
			flush()
			currentY = w.Y
		}
		current = append(current, w.S)
	}
	flush()
	return lines
}
