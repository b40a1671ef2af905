// Package viz renders metric results as terminal charts. The helpers accept
// the decoded result shapes produced by the metrics package: a distribution
// map for histograms and bars, and an x-axis plus label series for stacked
// bars.
package viz

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/annolens/annolens-cli/internal/ui"
)

// barWidth is the maximum width of a rendered bar in cells.
const barWidth = 40

// Histogram renders a value distribution with buckets in ascending numeric
// order. xLegend, when non-empty, is shown as a dimmed footer.
func Histogram(data map[string]float64, title, xLegend string) string {
	var b strings.Builder
	writeTitle(&b, title)

	if len(data) == 0 {
		b.WriteString(ui.Dim.Render("(no data)"))
		return ui.Box.Render(b.String())
	}

	keys := sortedKeys(data)
	writeBars(&b, keys, data, lipgloss.NewStyle().Foreground(ui.ColorPrimary))

	if xLegend != "" {
		b.WriteString("\n")
		b.WriteString(ui.Dim.Render("x: " + xLegend))
	}
	return ui.Box.Render(b.String())
}

// Bar renders a category distribution with categories in descending count
// order.
func Bar(data map[string]float64, title string) string {
	var b strings.Builder
	writeTitle(&b, title)

	if len(data) == 0 {
		b.WriteString(ui.Dim.Render("(no data)"))
		return ui.Box.Render(b.String())
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if data[keys[i]] != data[keys[j]] {
			return data[keys[i]] > data[keys[j]]
		}
		return keys[i] < keys[j]
	})

	writeBars(&b, keys, data, lipgloss.NewStyle().Foreground(ui.ColorSecondary))
	return ui.Box.Render(b.String())
}

// StackedBar renders one stacked bar per x entry, with a colored segment
// per series label and a legend. series vectors are aligned positionally
// with x.
func StackedBar(x []string, series map[string][]int, title string) string {
	var b strings.Builder
	writeTitle(&b, title)

	if len(x) == 0 || len(series) == 0 {
		b.WriteString(ui.Dim.Render("(no data)"))
		return ui.Box.Render(b.String())
	}

	labels := make([]string, 0, len(series))
	for label := range series {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	// Scale all stacks against the largest total.
	maxTotal := 0
	totals := make([]int, len(x))
	for i := range x {
		for _, label := range labels {
			if i < len(series[label]) {
				totals[i] += series[label][i]
			}
		}
		if totals[i] > maxTotal {
			maxTotal = totals[i]
		}
	}
	if maxTotal == 0 {
		maxTotal = 1
	}

	keyWidth := maxLen(x)
	for i, name := range x {
		b.WriteString(fmt.Sprintf("%*s ", keyWidth, name))
		for li, label := range labels {
			count := 0
			if i < len(series[label]) {
				count = series[label][i]
			}
			if count == 0 {
				continue
			}
			cells := count * barWidth / maxTotal
			if cells == 0 {
				cells = 1
			}
			style := lipgloss.NewStyle().Foreground(seriesColor(li))
			b.WriteString(style.Render(strings.Repeat("█", cells)))
		}
		b.WriteString(ui.Dim.Render(fmt.Sprintf(" %d", totals[i])))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	for li, label := range labels {
		style := lipgloss.NewStyle().Foreground(seriesColor(li))
		b.WriteString(style.Render("■"))
		b.WriteString(" " + label)
		if li < len(labels)-1 {
			b.WriteString("  ")
		}
	}
	return ui.Box.Render(b.String())
}

func writeTitle(b *strings.Builder, title string) {
	if title != "" {
		b.WriteString(ui.SectionHeader.Render(title))
		b.WriteString("\n\n")
	}
}

// writeBars renders one scaled bar per key with the trailing value.
func writeBars(b *strings.Builder, keys []string, data map[string]float64, style lipgloss.Style) {
	var max float64
	for _, k := range keys {
		if data[k] > max {
			max = data[k]
		}
	}
	if max == 0 {
		max = 1
	}

	keyWidth := maxLen(keys)
	for _, k := range keys {
		cells := int(data[k] / max * barWidth)
		if cells == 0 && data[k] > 0 {
			cells = 1
		}
		bar := style.Render(strings.Repeat("█", cells)) + ui.Muted.Render(strings.Repeat("░", barWidth-cells))
		b.WriteString(fmt.Sprintf("%*s %s %s\n", keyWidth, k, bar, ui.Dim.Render(formatValue(data[k]))))
	}
}

// sortedKeys orders bucket keys numerically when every key parses as a
// number, lexically otherwise.
func sortedKeys(data map[string]float64) []string {
	keys := make([]string, 0, len(data))
	numeric := true
	for k := range data {
		keys = append(keys, k)
		if _, err := strconv.ParseFloat(k, 64); err != nil {
			numeric = false
		}
	}
	if numeric {
		sort.Slice(keys, func(i, j int) bool {
			a, _ := strconv.ParseFloat(keys[i], 64)
			b, _ := strconv.ParseFloat(keys[j], 64)
			return a < b
		})
	} else {
		sort.Strings(keys)
	}
	return keys
}

func seriesColor(i int) color.Color {
	return ui.SeriesColors[i%len(ui.SeriesColors)]
}

func maxLen(keys []string) int {
	width := 0
	for _, k := range keys {
		if len(k) > width {
			width = len(k)
		}
	}
	return width
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
