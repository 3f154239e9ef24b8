package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

var sparklineBlockRunes = []rune(sparklineBlocks)

// RenderSparkline draws the last width values of data scaled between their
// min and max. A flat series renders at the middle level.
func RenderSparkline(data []float64, width int, color lipgloss.Color) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}

	var sb strings.Builder
	sb.Grow(len(data) * 3)

	numLevels := len(sparklineBlockRunes)
	valueRange := maxVal - minVal
	for _, v := range data {
		level := numLevels / 2
		if valueRange > 0 {
			level = int((v - minVal) / valueRange * float64(numLevels-1))
			level = max(0, min(level, numLevels-1))
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}

	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}

// Series is a fixed-size ring of samples, oldest first on read.
type Series struct {
	data  []float64
	head  int
	count int
}

// NewSeries creates a series keeping at most size samples.
func NewSeries(size int) *Series {
	if size <= 0 {
		size = 1
	}
	return &Series{data: make([]float64, size)}
}

// Push appends v, evicting the oldest sample when full.
func (s *Series) Push(v float64) {
	s.data[s.head] = v
	s.head = (s.head + 1) % len(s.data)
	if s.count < len(s.data) {
		s.count++
	}
}

// Values returns the samples oldest first.
func (s *Series) Values() []float64 {
	out := make([]float64, s.count)
	start := (s.head - s.count + len(s.data)) % len(s.data)
	for i := range out {
		out[i] = s.data[(start+i)%len(s.data)]
	}
	return out
}

// Len returns the number of samples held.
func (s *Series) Len() int { return s.count }
