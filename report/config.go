package report

import (
	"fmt"
	"strings"

	"github.com/soderasen-au/go-common/util"
)

type PageSizeName string

const (
	PAGE_SIZE_A4     PageSizeName = "A4"
	PAGE_SIZE_LETTER PageSizeName = "Letter"
	PAGE_SIZE_LEGAL  PageSizeName = "Legal"
)

// portrait dimensions in points
var pageSizes = map[string]PageSize{
	"a4":     {Width: 595.28, Height: 841.89},
	"letter": {Width: 612, Height: 792},
	"legal":  {Width: 612, Height: 1008},
}

func (n PageSizeName) IsValid() bool {
	_, ok := pageSizes[strings.ToLower(string(n))]
	return ok
}

func (n *PageSizeName) MaybeDefault() {
	if !n.IsValid() {
		*n = PAGE_SIZE_A4
	}
}

type Orientation string

const (
	ORIENTATION_LANDSCAPE Orientation = "landscape"
	ORIENTATION_PORTRAIT  Orientation = "portrait"
)

func (o Orientation) IsValid() bool {
	return o == ORIENTATION_LANDSCAPE || o == ORIENTATION_PORTRAIT
}

func (o *Orientation) MaybeDefault() {
	if !o.IsValid() {
		*o = ORIENTATION_LANDSCAPE
	}
}

// PageSize is a page's dimensions in points.
type PageSize struct {
	Width  float64
	Height float64
}

const (
	DEFAULT_MARGIN           = 30.0
	DEFAULT_TITLE_FONT_SIZE  = 16.0
	DEFAULT_HEADER_FONT_SIZE = 10.0
	DEFAULT_CELL_FONT_SIZE   = 9.0
	DEFAULT_ROW_HEIGHT       = 20.0
	DEFAULT_CELL_PADDING     = 5.0
	DEFAULT_MIN_COLUMN_WIDTH = 60.0
	DEFAULT_BASELINE_OFFSET  = 14.0 // text baseline below a row's top edge
	DEFAULT_TITLE_SPACING    = 10.0 // below the title line
	DEFAULT_TITLE_GAP        = 20.0 // between title block and header band
	DEFAULT_ELLIPSIS         = "..."
	DEFAULT_HEADER_FILL      = "rgb(217,217,217)"
)

// LayoutConfig holds every layout parameter of the table renderer.
// Zero fields take defaults in Validate.
type LayoutConfig struct {
	PageSize       PageSizeName `json:"page_size,omitempty" yaml:"page_size,omitempty"`
	Orientation    Orientation  `json:"orientation,omitempty" yaml:"orientation,omitempty"`
	Margin         float64      `json:"margin,omitempty" yaml:"margin,omitempty"`
	TitleFontSize  float64      `json:"title_font_size,omitempty" yaml:"title_font_size,omitempty"`
	HeaderFontSize float64      `json:"header_font_size,omitempty" yaml:"header_font_size,omitempty"`
	CellFontSize   float64      `json:"cell_font_size,omitempty" yaml:"cell_font_size,omitempty"`
	RowHeight      float64      `json:"row_height,omitempty" yaml:"row_height,omitempty"`
	CellPadding    float64      `json:"cell_padding,omitempty" yaml:"cell_padding,omitempty"`
	MinColumnWidth float64      `json:"min_column_width,omitempty" yaml:"min_column_width,omitempty"`
	BaselineOffset float64      `json:"baseline_offset,omitempty" yaml:"baseline_offset,omitempty"`
	TitleSpacing   float64      `json:"title_spacing,omitempty" yaml:"title_spacing,omitempty"`
	TitleGap       float64      `json:"title_gap,omitempty" yaml:"title_gap,omitempty"`
	Ellipsis       string       `json:"ellipsis,omitempty" yaml:"ellipsis,omitempty"`
	HeaderFill     string       `json:"header_fill,omitempty" yaml:"header_fill,omitempty"`

	headerFill RGBColor
}

// DefaultLayoutConfig is the zero config with every default filled in.
// The built-in defaults always validate; a failure means the DEFAULT_*
// constants are inconsistent and it panics.
func DefaultLayoutConfig() LayoutConfig {
	c := LayoutConfig{}
	if res := c.Validate(); res != nil {
		panic(fmt.Sprintf("report: default layout does not validate: %v", res))
	}
	return c
}

func defaultFloat(v *float64, d float64) {
	if *v == 0 {
		*v = d
	}
}

// Validate fills defaults and rejects values no page could be laid out with.
func (c *LayoutConfig) Validate() *util.Result {
	c.PageSize.MaybeDefault()
	c.Orientation.MaybeDefault()
	defaultFloat(&c.Margin, DEFAULT_MARGIN)
	defaultFloat(&c.TitleFontSize, DEFAULT_TITLE_FONT_SIZE)
	defaultFloat(&c.HeaderFontSize, DEFAULT_HEADER_FONT_SIZE)
	defaultFloat(&c.CellFontSize, DEFAULT_CELL_FONT_SIZE)
	defaultFloat(&c.RowHeight, DEFAULT_ROW_HEIGHT)
	defaultFloat(&c.CellPadding, DEFAULT_CELL_PADDING)
	defaultFloat(&c.MinColumnWidth, DEFAULT_MIN_COLUMN_WIDTH)
	defaultFloat(&c.BaselineOffset, DEFAULT_BASELINE_OFFSET)
	defaultFloat(&c.TitleSpacing, DEFAULT_TITLE_SPACING)
	defaultFloat(&c.TitleGap, DEFAULT_TITLE_GAP)
	if c.Ellipsis == "" {
		c.Ellipsis = DEFAULT_ELLIPSIS
	}
	if c.HeaderFill == "" {
		c.HeaderFill = DEFAULT_HEADER_FILL
	}

	fill, res := ParseColor(c.HeaderFill)
	if res != nil {
		return res.With("HeaderFill")
	}
	c.headerFill = fill

	for name, v := range map[string]float64{
		"margin": c.Margin, "title_font_size": c.TitleFontSize, "header_font_size": c.HeaderFontSize,
		"cell_font_size": c.CellFontSize, "row_height": c.RowHeight, "cell_padding": c.CellPadding,
		"min_column_width": c.MinColumnWidth, "baseline_offset": c.BaselineOffset,
		"title_spacing": c.TitleSpacing, "title_gap": c.TitleGap,
	} {
		if v < 0 {
			return util.MsgError("Validate", fmt.Sprintf("%s must not be negative", name))
		}
	}

	page := c.Page()
	if c.TableWidth() <= 0 {
		return util.MsgError("Validate", "margins leave no room for the table")
	}
	if page.Height-2*c.Margin < c.headerBlock()+c.RowHeight*2 {
		return util.MsgError("Validate", "page too short for a header band and a row")
	}
	return nil
}

// Page is the configured page size in the configured orientation.
func (c LayoutConfig) Page() PageSize {
	sz, ok := pageSizes[strings.ToLower(string(c.PageSize))]
	if !ok {
		sz = pageSizes["a4"]
	}
	if c.Orientation == ORIENTATION_PORTRAIT {
		return sz
	}
	return PageSize{Width: sz.Height, Height: sz.Width}
}

// TableWidth is the page width between the side margins.
func (c LayoutConfig) TableWidth() float64 {
	return c.Page().Width - 2*c.Margin
}

func (c LayoutConfig) HeaderFillColor() RGBColor {
	return c.headerFill
}

// vertical space the title block takes on the first page
func (c LayoutConfig) headerBlock() float64 {
	return c.TitleFontSize + c.TitleSpacing + c.TitleGap
}
