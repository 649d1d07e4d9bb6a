package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/soderasen-au/go-common/util"
)

type RGBColor struct {
	R int
	G int
	B int
}

var (
	PredefinedColorMap = map[string]RGBColor{
		"yellow":       {R: 255, G: 255, B: 0},
		"white":        {R: 255, G: 255, B: 255},
		"red":          {R: 128, G: 0, B: 0},
		"magenta":      {R: 128, G: 0, B: 128},
		"lightred":     {R: 255, G: 0, B: 0},
		"lightmagenta": {R: 255, G: 0, B: 255},
		"lightgreen":   {R: 0, G: 255, B: 0},
		"lightgray":    {R: 217, G: 217, B: 217},
		"lightcyan":    {R: 0, G: 255, B: 255},
		"lightblue":    {R: 0, G: 0, B: 255},
		"green":        {R: 0, G: 238, B: 0},
		"darkgray":     {R: 128, G: 128, B: 128},
		"cyan":         {R: 0, G: 128, B: 128},
		"brown":        {R: 128, G: 128, B: 0},
		"blue":         {R: 0, G: 0, B: 128},
		"black":        {R: 0, G: 0, B: 0},
	}

	Black = RGBColor{}
	// 0.85 grey
	HeaderGray = RGBColor{R: 217, G: 217, B: 217}
)

func (c RGBColor) Luminance() float64 {
	return (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255.0
}

func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c RGBColor) valid() bool {
	in := func(v int) bool { return v >= 0 && v <= 255 }
	return in(c.R) && in(c.G) && in(c.B)
}

// ParseColor accepts `#RRGGBB`, `rgb(r,g,b)`, `argb(a,r,g,b)` or a predefined name.
// Alpha is ignored.
func ParseColor(t string) (RGBColor, *util.Result) {
	t = strings.ToUpper(strings.ReplaceAll(t, " ", ""))

	var parts []string
	switch {
	case strings.HasPrefix(t, "#"):
		if len(t) != 7 {
			return RGBColor{}, util.MsgError("ParseColor", "invalid hex color "+t)
		}
		v, err := strconv.ParseUint(t[1:], 16, 32)
		if err != nil {
			return RGBColor{}, util.Error("ParseColor", err)
		}
		return RGBColor{R: int(v >> 16 & 0xFF), G: int(v >> 8 & 0xFF), B: int(v & 0xFF)}, nil
	case strings.HasPrefix(t, "ARGB(") && strings.HasSuffix(t, ")"):
		parts = strings.Split(t[5:len(t)-1], ",")
		if len(parts) != 4 {
			return RGBColor{}, util.MsgError("ParseColor", "invalid color sections")
		}
		parts = parts[1:]
	case strings.HasPrefix(t, "RGB(") && strings.HasSuffix(t, ")"):
		parts = strings.Split(t[4:len(t)-1], ",")
		if len(parts) != 3 {
			return RGBColor{}, util.MsgError("ParseColor", "invalid RGB color sections")
		}
	default:
		c, ok := PredefinedColorMap[strings.ToLower(t)]
		if !ok {
			return RGBColor{}, util.MsgError("ParseColor", "unknown color "+t)
		}
		return c, nil
	}

	var rgb [3]int
	for i, name := range []string{"red", "green", "blue"} {
		v, err := strconv.Atoi(parts[i])
		if err != nil {
			return RGBColor{}, util.MsgError("ParseColor", "invalid "+name+" color code")
		}
		rgb[i] = v
	}
	c := RGBColor{R: rgb[0], G: rgb[1], B: rgb[2]}
	if !c.valid() {
		return RGBColor{}, util.MsgError("ParseColor", "color code out of range")
	}
	return c, nil
}
