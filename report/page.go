package report

import "fmt"

type FontStyle string

const (
	FONT_REGULAR FontStyle = ""
	FONT_BOLD    FontStyle = "B"
)

// Element is one drawing operation on a page: TextRun, FilledRect or Line.
// Coordinates are points from the page's top-left corner.
type Element interface {
	element()
}

// TextRun draws Text with its baseline starting at (X, Y).
type TextRun struct {
	X, Y  float64
	Text  string
	Style FontStyle
	Size  float64
	Color RGBColor
}

type FilledRect struct {
	X, Y, W, H float64
	Fill       RGBColor
}

type Line struct {
	X1, Y1, X2, Y2 float64
	Color          RGBColor
}

func (TextRun) element()    {}
func (FilledRect) element() {}
func (Line) element()       {}

type BandKind int

const (
	BAND_TITLE BandKind = iota
	BAND_HEADER
	BAND_ROW
)

func (k BandKind) String() string {
	switch k {
	case BAND_TITLE:
		return "title"
	case BAND_HEADER:
		return "header"
	case BAND_ROW:
		return "row"
	}
	return fmt.Sprintf("BandKind(%d)", int(k))
}

// Band records what a horizontal strip of the page holds.
// RowNumber is set for BAND_ROW only.
type Band struct {
	Kind      BandKind
	Top       float64
	RowNumber int
}

// Page is an append-only list of elements on a fixed-size page.
// Drawing on a sealed page panics.
type Page struct {
	Number   int // 1 based
	Size     PageSize
	elements []Element
	bands    []Band
	sealed   bool
}

func newPage(number int, size PageSize) *Page {
	return &Page{Number: number, Size: size}
}

func (p *Page) add(e Element) {
	if p.sealed {
		panic(fmt.Sprintf("report: drawing on sealed page %d", p.Number))
	}
	p.elements = append(p.elements, e)
}

func (p *Page) mark(b Band) {
	if p.sealed {
		panic(fmt.Sprintf("report: drawing on sealed page %d", p.Number))
	}
	p.bands = append(p.bands, b)
}

func (p *Page) Seal() { p.sealed = true }

func (p *Page) Sealed() bool { return p.sealed }

// Elements returns a copy of the page's drawing operations in order.
func (p *Page) Elements() []Element {
	return append([]Element(nil), p.elements...)
}

func (p *Page) Bands() []Band {
	return append([]Band(nil), p.bands...)
}

// Rows returns the row numbers drawn on the page, in order.
func (p *Page) Rows() []int {
	rows := make([]int, 0, len(p.bands))
	for _, b := range p.bands {
		if b.Kind == BAND_ROW {
			rows = append(rows, b.RowNumber)
		}
	}
	return rows
}

// Texts returns the text of every TextRun, in drawing order.
func (p *Page) Texts() []string {
	texts := make([]string, 0)
	for _, e := range p.elements {
		if t, ok := e.(TextRun); ok {
			texts = append(texts, t.Text)
		}
	}
	return texts
}
