// Package export renders a room's stroke log to printable documents.
package export

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"sharedcanvas-server/domain"
)

const (
	margin = 20.0
	// A4 in points, used when there is nothing to draw.
	emptyWidth  = 595.28
	emptyHeight = 841.89
)

var namedColors = map[string][3]int{
	"black": {0, 0, 0},
	"white": {255, 255, 255},
	"red":   {255, 0, 0},
	"green": {0, 128, 0},
	"blue":  {0, 0, 255},
}

// PDF writes strokes as vector line segments, one point per canvas pixel, on
// a single page sized to the drawing.
func PDF(w io.Writer, title string, strokes []domain.Stroke) error {
	width, height := emptyWidth, emptyHeight
	var offX, offY float64
	if len(strokes) > 0 {
		minX, minY, maxX, maxY := bounds(strokes)
		width = maxX - minX + 2*margin
		height = maxY - minY + 2*margin
		offX = margin - minX
		offY = margin - minY
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetTitle(title, true)
	pdf.SetCreator("sharedcanvas-server", true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetLineCapStyle("round")

	for _, s := range strokes {
		rgb := parseColor(s.Color)
		pdf.SetDrawColor(rgb[0], rgb[1], rgb[2])
		pdf.SetLineWidth(s.PenWidth)
		pdf.Line(s.X0+offX, s.Y0+offY, s.X1+offX, s.Y1+offY)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func bounds(strokes []domain.Stroke) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, s := range strokes {
		half := s.PenWidth / 2
		minX = math.Min(minX, math.Min(s.X0, s.X1)-half)
		minY = math.Min(minY, math.Min(s.Y0, s.Y1)-half)
		maxX = math.Max(maxX, math.Max(s.X0, s.X1)+half)
		maxY = math.Max(maxY, math.Max(s.Y0, s.Y1)+half)
	}
	return minX, minY, maxX, maxY
}

// parseColor understands #rgb, #rrggbb and a few CSS names. Anything else
// renders black.
func parseColor(c string) [3]int {
	c = strings.ToLower(strings.TrimSpace(c))
	if rgb, ok := namedColors[c]; ok {
		return rgb
	}
	if !strings.HasPrefix(c, "#") {
		return namedColors["black"]
	}

	hex := c[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return namedColors["black"]
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return namedColors["black"]
	}
	return [3]int{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}
}
