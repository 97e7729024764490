package tui

import "math"

// sparklineChars maps levels 0..7 to the block elements ▁▂▃▄▅▆▇█.
var sparklineChars = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RingBuffer keeps the most recent float64 samples up to a fixed capacity.
type RingBuffer struct {
	data  []float64
	head  int
	count int
}

// NewRingBuffer creates a ring buffer with the given capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &RingBuffer{data: make([]float64, capacity)}
}

// Push adds a sample, overwriting the oldest if full.
func (r *RingBuffer) Push(v float64) {
	r.data[r.head] = v
	r.head = (r.head + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
}

// Len returns the number of valid samples.
func (r *RingBuffer) Len() int { return r.count }

// Cap returns the buffer capacity.
func (r *RingBuffer) Cap() int { return len(r.data) }

// Last returns the most recent sample, or 0 if empty.
func (r *RingBuffer) Last() float64 {
	if r.count == 0 {
		return 0
	}
	return r.data[(r.head-1+len(r.data))%len(r.data)]
}

// Slice returns the samples oldest first.
func (r *RingBuffer) Slice() []float64 {
	if r.count == 0 {
		return nil
	}
	out := make([]float64, r.count)
	start := (r.head - r.count + len(r.data)) % len(r.data)
	for i := range out {
		out[i] = r.data[(start+i)%len(r.data)]
	}
	return out
}

// Resize changes the capacity and keeps the newest samples that fit.
func (r *RingBuffer) Resize(capacity int) {
	if capacity <= 0 {
		capacity = 1
	}
	if capacity == len(r.data) {
		return
	}
	old := r.Slice()
	if len(old) > capacity {
		old = old[len(old)-capacity:]
	}
	r.data = make([]float64, capacity)
	r.head, r.count = 0, 0
	for _, v := range old {
		r.Push(v)
	}
}

// Reset clears all samples.
func (r *RingBuffer) Reset() {
	r.head = 0
	r.count = 0
}

// RenderSparkline draws proportions in [0, 1] as one line of block
// characters. Out-of-range values are clamped.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	runes := make([]rune, len(values))
	for i, v := range values {
		runes[i] = sparklineChars[level(v, len(sparklineChars))]
	}
	return string(runes)
}

// level maps v in [0, 1] onto 0..steps-1.
func level(v float64, steps int) int {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Min(1, math.Max(0, v))
	return min(int(v*float64(steps-1)+0.5), steps-1)
}

// brailleDots maps (column 0-1, row 0-3) inside a cell to its dot bit.
var brailleDots = [2][4]rune{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

const brailleBlank = 0x2800

// RenderBrailleChart plots proportions in [0, 1] on a braille dot grid of
// width cells by rows lines, newest sample on the right. When target is in
// [0, 1] a dotted reference line is drawn at that height on every other
// dot column.
func RenderBrailleChart(values []float64, target float64, width, rows int) []string {
	if width <= 0 || rows <= 0 {
		return nil
	}

	dotRows := rows * 4
	dotCols := width * 2
	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = make([]rune, width)
		for c := range grid[r] {
			grid[r][c] = brailleBlank
		}
	}
	plot := func(dotCol, dotRow int) {
		grid[dotRow/4][dotCol/2] |= brailleDots[dotCol%2][dotRow%4]
	}
	toRow := func(v float64) int {
		return dotRows - 1 - level(v, dotRows)
	}

	if target >= 0 && target <= 1 {
		row := toRow(target)
		for c := 0; c < dotCols; c += 2 {
			plot(c, row)
		}
	}

	if len(values) > dotCols {
		values = values[len(values)-dotCols:]
	}
	offset := dotCols - len(values)
	for i, v := range values {
		plot(offset+i, toRow(v))
	}

	out := make([]string, rows)
	for r := range grid {
		out[r] = string(grid[r])
	}
	return out
}
