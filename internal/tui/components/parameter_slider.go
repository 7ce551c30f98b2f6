package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/btcgo/internal/tui/tuistyles"
)

// ParameterSlider displays an adjustable plan parameter with a visual bar.
// A slider with Choices steps through the choice indices instead of a range.
type ParameterSlider struct {
	Key         string
	Label       string
	Value       float64
	Min         float64
	Max         float64
	Step        float64
	Unit        string   // suffix, e.g. "%", " yrs", " BTC"
	Format      string   // e.g. "%.2f", "%.0f"
	Choices     []string // named values; Value is an index into it
	Width       int
	IsFocused   bool
	Description string
}

// NewParameterSlider creates a slider over [min, max] moving by step.
func NewParameterSlider(key, label string, value, min, max, step float64) *ParameterSlider {
	p := &ParameterSlider{
		Key:    key,
		Label:  label,
		Min:    min,
		Max:    max,
		Step:   step,
		Format: "%.2f",
		Width:  30,
	}
	p.SetValue(value)
	return p
}

// NewChoiceSlider creates a slider over a fixed list of names.
func NewChoiceSlider(key, label string, choices []string, selected string) *ParameterSlider {
	p := NewParameterSlider(key, label, 0, 0, float64(max(len(choices)-1, 0)), 1)
	p.Choices = choices
	p.Select(selected)
	return p
}

// WithUnit sets the unit suffix
func (p *ParameterSlider) WithUnit(unit string) *ParameterSlider {
	p.Unit = unit
	return p
}

// WithFormat sets the value format string
func (p *ParameterSlider) WithFormat(format string) *ParameterSlider {
	p.Format = format
	return p
}

// WithWidth sets the slider width
func (p *ParameterSlider) WithWidth(width int) *ParameterSlider {
	p.Width = width
	return p
}

// SetFocused sets the focus state
func (p *ParameterSlider) SetFocused(focused bool) *ParameterSlider {
	p.IsFocused = focused
	return p
}

// WithDescription adds a help line under the slider.
func (p *ParameterSlider) WithDescription(desc string) *ParameterSlider {
	p.Description = desc
	return p
}

// Increment moves one step up. It reports whether the value changed.
func (p *ParameterSlider) Increment() bool {
	return p.move(p.Step)
}

// Decrement moves one step down. It reports whether the value changed.
func (p *ParameterSlider) Decrement() bool {
	return p.move(-p.Step)
}

func (p *ParameterSlider) move(delta float64) bool {
	old := p.Value
	p.SetValue(p.Value + delta)
	return p.Value != old
}

// SetValue sets the value, snapped to the step grid and clamped to range.
func (p *ParameterSlider) SetValue(value float64) {
	if p.Step > 0 {
		value = p.Min + math.Round((value-p.Min)/p.Step)*p.Step
		// trim float noise from repeated stepping
		value = math.Round(value*1e9) / 1e9
	}
	p.Value = math.Max(p.Min, math.Min(p.Max, value))
}

// Select moves a choice slider to the named choice. Unknown names are ignored.
func (p *ParameterSlider) Select(name string) {
	for i, c := range p.Choices {
		if strings.EqualFold(c, name) {
			p.SetValue(float64(i))
			return
		}
	}
}

// Choice returns the selected name of a choice slider.
func (p *ParameterSlider) Choice() string {
	i := int(p.Value)
	if i < 0 || i >= len(p.Choices) {
		return ""
	}
	return p.Choices[i]
}

// Display returns the formatted value with its unit.
func (p *ParameterSlider) Display() string {
	if len(p.Choices) > 0 {
		return p.Choice()
	}
	return p.format(p.Value)
}

func (p *ParameterSlider) format(v float64) string {
	return fmt.Sprintf(p.Format, v) + p.Unit
}

// Percentage returns the value as a fraction of the range
func (p *ParameterSlider) Percentage() float64 {
	if p.Max == p.Min {
		return 0
	}
	return (p.Value - p.Min) / (p.Max - p.Min)
}

// Render returns the full multi-line slider.
func (p *ParameterSlider) Render() string {
	var content strings.Builder

	labelStyle := tuistyles.ParameterLabelStyle
	valueStyle := tuistyles.ParameterValueStyle
	if p.IsFocused {
		labelStyle = labelStyle.Foreground(tuistyles.ColorPrimary)
		valueStyle = valueStyle.Foreground(tuistyles.ColorAccent)
	}
	content.WriteString(labelStyle.Render(p.Label))
	content.WriteString("\n")
	content.WriteString(valueStyle.Render(p.Display()))
	content.WriteString("\n")
	content.WriteString(p.renderSliderBar())

	rangeStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorMuted)
	var rangeText string
	if len(p.Choices) > 0 {
		rangeText = strings.Join(p.Choices, " · ")
	} else {
		rangeText = fmt.Sprintf("%s  ─  %s", p.format(p.Min), p.format(p.Max))
	}
	content.WriteString("\n")
	content.WriteString(rangeStyle.Render(rangeText))

	if p.Description != "" {
		content.WriteString("\n")
		descStyle := lipgloss.NewStyle().
			Foreground(tuistyles.ColorMuted).
			Italic(true)
		content.WriteString(descStyle.Render(p.Description))
	}

	if p.IsFocused {
		content.WriteString("\n")
		hintStyle := lipgloss.NewStyle().
			Foreground(tuistyles.ColorInfo).
			Italic(true)
		content.WriteString(hintStyle.Render("← → to adjust • ↑↓ to navigate"))
	}

	return content.String()
}

func (p *ParameterSlider) renderSliderBar() string {
	filled := int(math.Round(float64(p.Width) * p.Percentage()))
	filled = max(0, min(filled, p.Width))
	empty := max(0, p.Width-filled)

	trackStyle := tuistyles.SliderTrackStyle
	thumbStyle := tuistyles.SliderThumbStyle
	if p.IsFocused {
		thumbStyle = thumbStyle.Foreground(tuistyles.ColorAccent)
	}

	var bar strings.Builder
	bar.WriteString("[")
	if filled > 1 {
		bar.WriteString(thumbStyle.Render(strings.Repeat("━", filled-1)))
	}
	bar.WriteString(thumbStyle.Render("●"))
	if empty > 1 {
		bar.WriteString(trackStyle.Render(strings.Repeat("─", empty-1)))
	}
	bar.WriteString("]")

	return bar.String()
}

// RenderCompact returns a single-line version for dense layouts.
func (p *ParameterSlider) RenderCompact() string {
	labelStyle := tuistyles.ParameterLabelStyle
	valueStyle := tuistyles.ParameterValueStyle
	marker := "  "
	if p.IsFocused {
		labelStyle = labelStyle.Foreground(tuistyles.ColorPrimary)
		valueStyle = valueStyle.Foreground(tuistyles.ColorAccent)
		marker = "▸ "
	}

	label := labelStyle.Width(22).Render(p.Label)
	value := valueStyle.Width(14).Align(lipgloss.Right).Render(p.Display())

	return marker + label + " " + value + " " + p.renderMiniSliderBar(12)
}

func (p *ParameterSlider) renderMiniSliderBar(width int) string {
	filled := int(math.Round(float64(width-1) * p.Percentage()))

	thumbStyle := tuistyles.SliderThumbStyle
	trackStyle := tuistyles.SliderTrackStyle

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < width; i++ {
		switch {
		case i == filled:
			bar.WriteString(thumbStyle.Render("●"))
		case i < filled:
			bar.WriteString(thumbStyle.Render("━"))
		default:
			bar.WriteString(trackStyle.Render("─"))
		}
	}
	bar.WriteString("]")
	return bar.String()
}
