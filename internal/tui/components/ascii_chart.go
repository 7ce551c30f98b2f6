package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/btcgo/internal/tui/tuistyles"
)

// DataSeries represents a single line in a chart
type DataSeries struct {
	Name   string
	Points []float64
	Color  lipgloss.Color
}

// ASCIIChart draws one or more series on a shared Y axis.
type ASCIIChart struct {
	Title       string
	Series      []*DataSeries
	Labels      []string // X-axis labels
	Width       int
	Height      int
	ShowLegend  bool
	XAxisLabel  string
	FormatValue func(float64) string // Y-axis labels; fiat by default
}

// NewASCIIChart creates a new ASCII chart
func NewASCIIChart(title string) *ASCIIChart {
	return &ASCIIChart{
		Title:       title,
		Width:       60,
		Height:      12,
		ShowLegend:  true,
		FormatValue: formatChartValue,
	}
}

// AddSeries adds a data series to the chart
func (c *ASCIIChart) AddSeries(name string, points []float64, color lipgloss.Color) *ASCIIChart {
	c.Series = append(c.Series, &DataSeries{
		Name:   name,
		Points: points,
		Color:  color,
	})
	return c
}

// WithLabels sets the X-axis labels
func (c *ASCIIChart) WithLabels(labels []string) *ASCIIChart {
	c.Labels = labels
	return c
}

// WithSize sets the chart dimensions
func (c *ASCIIChart) WithSize(width, height int) *ASCIIChart {
	c.Width = width
	c.Height = height
	return c
}

// WithXAxisLabel sets the caption under the X axis.
func (c *ASCIIChart) WithXAxisLabel(label string) *ASCIIChart {
	c.XAxisLabel = label
	return c
}

// WithValueFormat sets the Y-axis label formatter.
func (c *ASCIIChart) WithValueFormat(f func(float64) string) *ASCIIChart {
	c.FormatValue = f
	return c
}

// Render returns the styled chart
func (c *ASCIIChart) Render() string {
	if !c.hasData() {
		return tuistyles.InfoStyle.Render("No data to display")
	}

	var content strings.Builder
	if c.Title != "" {
		titleStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(tuistyles.ColorPrimary)
		content.WriteString(titleStyle.Render(c.Title))
		content.WriteString("\n")
	}

	lo, hi := c.bounds()
	content.WriteString(c.renderGrid(lo, hi))

	if c.XAxisLabel != "" {
		labelStyle := lipgloss.NewStyle().
			Foreground(tuistyles.ColorMuted).
			Italic(true)
		content.WriteString("\n")
		content.WriteString(labelStyle.Render(c.XAxisLabel))
	}

	if c.ShowLegend && len(c.Series) > 1 {
		content.WriteString("\n")
		content.WriteString(c.renderLegend())
	}

	return content.String()
}

func (c *ASCIIChart) hasData() bool {
	for _, s := range c.Series {
		if len(s.Points) > 0 {
			return true
		}
	}
	return false
}

// bounds returns the padded value range. A flat series gets a unit range so
// it draws as a line through the middle.
func (c *ASCIIChart) bounds() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range c.Series {
		for _, p := range s.Points {
			lo = math.Min(lo, p)
			hi = math.Max(hi, p)
		}
	}
	if hi == lo {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.1
	return lo - pad, hi + pad
}

const yAxisWidth = 10

// position maps point i of n with value v onto the grid.
func (c *ASCIIChart) position(i, n int, v, lo, hi float64, chartWidth int) (int, int) {
	x := 0
	if n > 1 {
		x = int(float64(i) / float64(n-1) * float64(chartWidth-1))
	}
	y := c.Height - 1 - int((v-lo)/(hi-lo)*float64(c.Height-1))
	return x, y
}

func (c *ASCIIChart) renderGrid(lo, hi float64) string {
	chartWidth := max(c.Width-yAxisWidth, 2)
	height := max(c.Height, 2)
	c.Height = height

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", chartWidth))
	}

	for idx, s := range c.Series {
		ch := seriesChar(idx)
		n := len(s.Points)
		for i, v := range s.Points {
			x, y := c.position(i, n, v, lo, hi, chartWidth)
			if i > 0 {
				px, py := c.position(i-1, n, s.Points[i-1], lo, hi, chartWidth)
				drawLine(grid, px, py, x, y, ch)
			}
			if x >= 0 && x < chartWidth && y >= 0 && y < height {
				grid[y][x] = ch
			}
		}
	}

	format := c.FormatValue
	if format == nil {
		format = formatChartValue
	}
	axisStyle := lipgloss.NewStyle().
		Foreground(tuistyles.ColorMuted).
		Width(yAxisWidth).
		Align(lipgloss.Right)

	var out strings.Builder
	for i, row := range grid {
		// label every other row to keep the axis readable
		label := ""
		if i%2 == 0 || i == height-1 {
			label = format(hi - float64(i)/float64(height-1)*(hi-lo))
		}
		out.WriteString(axisStyle.Render(label))
		out.WriteString(" │")
		out.WriteString(c.colorRow(row))
		out.WriteString("\n")
	}

	out.WriteString(strings.Repeat(" ", yAxisWidth))
	out.WriteString(" └")
	out.WriteString(strings.Repeat("─", chartWidth))

	if len(c.Labels) > 0 {
		out.WriteString("\n")
		out.WriteString(c.renderXAxisLabels(chartWidth))
	}

	return out.String()
}

// colorRow paints each series' glyphs in the series color.
func (c *ASCIIChart) colorRow(row []rune) string {
	var b strings.Builder
	for _, r := range row {
		idx := seriesIndex(r)
		if idx < 0 || idx >= len(c.Series) || c.Series[idx].Color == "" {
			b.WriteRune(r)
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(c.Series[idx].Color).Render(string(r)))
	}
	return b.String()
}

var seriesChars = []rune{'●', '■', '▲', '♦'}

func seriesChar(index int) rune {
	return seriesChars[index%len(seriesChars)]
}

func seriesIndex(r rune) int {
	for i, c := range seriesChars {
		if c == r {
			return i
		}
	}
	return -1
}

// drawLine connects two grid points with Bresenham's algorithm without
// overwriting points already drawn.
func drawLine(grid [][]rune, x0, y0, x1, y1 int, ch rune) {
	dx, dy := abs(x1-x0), abs(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for x, y := x0, y0; ; {
		if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) && grid[y][x] == ' ' {
			grid[y][x] = ch
		}
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// renderXAxisLabels spreads up to five labels across the axis.
func (c *ASCIIChart) renderXAxisLabels(chartWidth int) string {
	const maxLabels = 5
	n := len(c.Labels)
	slots := min(maxLabels, n)

	line := []rune(strings.Repeat(" ", chartWidth+2))
	for k := 0; k < slots; k++ {
		i := 0
		if slots > 1 {
			i = k * (n - 1) / (slots - 1)
		}
		pos := 2
		if n > 1 {
			pos += int(float64(i) / float64(n-1) * float64(chartWidth-1))
		}
		label := []rune(c.Labels[i])
		pos = min(pos, len(line)-len(label))
		for j, r := range label {
			if p := pos + j; p >= 0 && p < len(line) {
				line[p] = r
			}
		}
	}

	labelStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorMuted)
	return strings.Repeat(" ", yAxisWidth) + labelStyle.Render(string(line))
}

func (c *ASCIIChart) renderLegend() string {
	items := make([]string, 0, len(c.Series))
	for i, s := range c.Series {
		symbol := lipgloss.NewStyle().Foreground(s.Color).Render(string(seriesChar(i)))
		name := lipgloss.NewStyle().Foreground(tuistyles.ColorForeground).Render(s.Name)
		items = append(items, fmt.Sprintf("%s %s", symbol, name))
	}
	return lipgloss.NewStyle().
		Foreground(tuistyles.ColorMuted).
		Render("Legend: " + strings.Join(items, " • "))
}

// formatChartValue formats fiat for the Y axis.
func formatChartValue(value float64) string {
	switch a := math.Abs(value); {
	case a >= 1_000_000:
		return fmt.Sprintf("$%.1fM", value/1_000_000)
	case a >= 1000:
		return fmt.Sprintf("$%.0fK", value/1000)
	}
	return fmt.Sprintf("$%.0f", value)
}

// FormatBTCAxis formats bitcoin amounts for the Y axis.
func FormatBTCAxis(value float64) string {
	return fmt.Sprintf("%.3f", value)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
