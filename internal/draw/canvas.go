package draw

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockLight     = '░'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Ink is a canvas pixel color. InkNone is an unset pixel.
type Ink uint8

const (
	InkNone Ink = iota
	InkWhite
	InkYellow
	InkRed
	InkCyan
	InkDim
)

var inkCodes = [...]string{
	InkNone:   ColorReset,
	InkWhite:  "\033[97m",
	InkYellow: "\033[93m",
	InkRed:    ColorBrightRed,
	InkCyan:   ColorBrightCyan,
	InkDim:    "\033[90m",
}

// Point represents a 2D coordinate in logical space.
type Point struct {
	X, Y float64
}

// cell is what one terminal character shows.
type cell struct {
	ch  rune
	ink Ink
}

// Canvas is a drawing buffer with 2x vertical resolution using half-block
// characters. Game code draws in logical coordinates that are scaled to the
// terminal. Render only emits cells that changed since the previous frame.
type Canvas struct {
	termWidth      int   // Actual terminal columns
	termHeight     int   // Actual terminal rows
	subPixelHeight int   // termHeight * 2
	pixels         []Ink // Flat slice: [y * termWidth + x]
	prev           []cell
	forceRedraw    bool

	logicalWidth  float64
	logicalHeight float64 // In sub-pixels
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// 0-based terminal offsets for centering the render area.
	offsetCol int
	offsetRow int

	renderBuf strings.Builder
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to
// terminal pixels.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping the
// logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth = max(termWidth, 1)
	termHeight = max(termHeight, 1)
	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = termHeight * 2
		c.pixels = make([]Ink, c.subPixelHeight*termWidth)
		c.prev = make([]cell, termHeight*termWidth)
		c.forceRedraw = true
	}
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
}

// SetOffset sets the 0-based column and row offset for centering.
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.forceRedraw = true
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// TerminalWidth returns the render area's column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the render area's row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// Clear resets all pixels.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// ForceRedraw makes the next Render emit every cell.
func (c *Canvas) ForceRedraw() {
	c.forceRedraw = true
}

// MarkTextDirty invalidates cells covered by a text overlay so the next
// Render repaints them. col and row are 1-based.
func (c *Canvas) MarkTextDirty(col, row, n int) {
	y := row - 1
	if y < 0 || y >= c.termHeight {
		return
	}
	for x := max(col-1, 0); x < min(col-1+n, c.termWidth); x++ {
		c.prev[y*c.termWidth+x] = cell{ch: -1}
	}
}

func (c *Canvas) setPixel(x, y int, ink Ink) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = ink
	}
}

// SetFloat sets a pixel at logical coordinates.
func (c *Canvas) SetFloat(x, y float64, ink Ink) {
	c.setPixel(int(math.Round(x*c.scaleX)), int(math.Round(y*c.scaleY)), ink)
}

// DrawLine draws a line between logical points using Bresenham's algorithm.
func (c *Canvas) DrawLine(p1, p2 Point, ink Ink) {
	x1 := int(math.Round(p1.X * c.scaleX))
	y1 := int(math.Round(p1.Y * c.scaleY))
	x2 := int(math.Round(p2.X * c.scaleX))
	y2 := int(math.Round(p2.Y * c.scaleY))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	for {
		c.setPixel(x1, y1, ink)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// FillRect fills the logical rectangle [x0,x1] x [y0,y1].
func (c *Canvas) FillRect(x0, y0, x1, y1 float64, ink Ink) {
	px0 := int(math.Round(min(x0, x1) * c.scaleX))
	px1 := int(math.Round(max(x0, x1) * c.scaleX))
	py0 := int(math.Round(min(y0, y1) * c.scaleY))
	py1 := int(math.Round(max(y0, y1) * c.scaleY))
	for y := py0; y <= py1; y++ {
		for x := px0; x <= px1; x++ {
			c.setPixel(x, y, ink)
		}
	}
}

// FillCircle fills a logical circle. The radius is scaled on each axis, so
// the shape stays round only while scaleX and scaleY are close.
func (c *Canvas) FillCircle(cx, cy, r float64, ink Ink) {
	rx := r * c.scaleX
	ry := r * c.scaleY
	pcx := cx * c.scaleX
	pcy := cy * c.scaleY
	if rx <= 0 || ry <= 0 {
		return
	}
	for y := int(math.Floor(pcy - ry)); y <= int(math.Ceil(pcy+ry)); y++ {
		for x := int(math.Floor(pcx - rx)); x <= int(math.Ceil(pcx+rx)); x++ {
			nx := (float64(x) + 0.5 - pcx) / rx
			ny := (float64(y) + 0.5 - pcy) / ry
			if nx*nx+ny*ny <= 1 {
				c.setPixel(x, y, ink)
			}
		}
	}
}

// Render writes changed cells to w.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()
	force := c.forceRedraw
	c.forceRedraw = false
	curInk := InkNone

	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth
		for col := 0; col < c.termWidth; col++ {
			next := composeCell(c.pixels[topOffset+col], c.pixels[bottomOffset+col])
			idx := row*c.termWidth + col
			if !force && c.prev[idx] == next {
				continue
			}
			c.prev[idx] = next
			if next.ink != curInk {
				c.renderBuf.WriteString(inkCodes[next.ink])
				curInk = next.ink
			}
			fmt.Fprintf(&c.renderBuf, "\033[%d;%dH%c", row+1+c.offsetRow, col+1+c.offsetCol, next.ch)
		}
	}
	if curInk != InkNone {
		c.renderBuf.WriteString(ColorReset)
	}

	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

// composeCell picks the half-block for a pair of sub-pixels. When both are
// set with different inks the top one wins.
func composeCell(top, bottom Ink) cell {
	switch {
	case top != InkNone && bottom != InkNone:
		if top == bottom {
			return cell{ch: BlockFull, ink: top}
		}
		return cell{ch: BlockUpperHalf, ink: top}
	case top != InkNone:
		return cell{ch: BlockUpperHalf, ink: top}
	case bottom != InkNone:
		return cell{ch: BlockLowerHalf, ink: bottom}
	default:
		return cell{ch: ' '}
	}
}

// RenderBorder draws a box around the render area when the terminal is
// larger than it on either axis.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1
	hasV := c.offsetRow >= 1

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	var buf strings.Builder
	if hasV {
		if hasH {
			fmt.Fprintf(&buf, "\033[%d;%dH┌%s┐", top, left, strings.Repeat("─", c.termWidth))
			fmt.Fprintf(&buf, "\033[%d;%dH└%s┘", bottom, left, strings.Repeat("─", c.termWidth))
		} else {
			fmt.Fprintf(&buf, "\033[%d;%dH%s", top, c.offsetCol+1, strings.Repeat("─", c.termWidth))
			fmt.Fprintf(&buf, "\033[%d;%dH%s", bottom, c.offsetCol+1, strings.Repeat("─", c.termWidth))
		}
	}
	if hasH {
		startRow, endRow := top+1, bottom
		if !hasV {
			startRow = c.offsetRow + 1
			endRow = c.offsetRow + c.termHeight + 1
		}
		for row := startRow; row < endRow; row++ {
			fmt.Fprintf(&buf, "\033[%d;%dH│\033[%d;%dH│", row, left, row, right)
		}
	}
	io.WriteString(w, buf.String())
}

// LogicalToTerminal converts logical coordinates to a 1-based terminal
// position inside the render area.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	return px + 1, py/2 + 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
