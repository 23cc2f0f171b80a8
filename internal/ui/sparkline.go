package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renderers for measurement history. Unlike percentage metrics,
// instrument readings have no natural 0-100 range, so every renderer here
// normalizes over the data's own min/max and takes its color from the
// caller instead of a threshold table.

// sparklineBlocks are block characters for 8-level vertical resolution
// (lowest to highest).
var sparklineBlockRunes = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a single-row sparkline from a series of values.
// Data is resampled to width characters; a flat series renders at the
// middle level so a steady supply doesn't draw as an empty graph.
func Sparkline(data []float64, width int, color lipgloss.Color) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	minVal, maxVal := minMax(data)
	resampled := Resample(data, width)

	var sb strings.Builder
	sb.Grow(len(resampled) * 3) // UTF-8 block chars are 3 bytes

	levels := len(sparklineBlockRunes)
	for _, v := range resampled {
		level := levels / 2
		if maxVal > minVal {
			normalized := (v - minVal) / (maxVal - minVal)
			level = clampInt(int(normalized*float64(levels-1)), levels-1)
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}

	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}

// Braille character rendering for high-resolution graphs.
//
// Braille patterns use a 2x4 dot matrix per character. Unicode braille
// starts at U+2800 (empty); each dot is one bit of the code point:
// bit 0 = dot 1, bit 1 = dot 2, bit 2 = dot 3, bit 3 = dot 4,
// bit 4 = dot 5, bit 5 = dot 6, bit 6 = dot 7, bit 7 = dot 8.
const brailleBase = '⠀'

// brailleDots maps [row][col] to the bit offset for the braille pattern,
// row 0-3 top to bottom, col 0-1 left to right.
var brailleDots = [4][2]uint8{
	{0, 3}, // Row 0: dots 1 and 4
	{1, 4}, // Row 1: dots 2 and 5
	{2, 5}, // Row 2: dots 3 and 6
	{6, 7}, // Row 3: dots 7 and 8
}

// BrailleSparkline renders a multi-row sparkline using braille characters.
// Each character column holds 2 horizontal data points with 4 vertical
// dots per row, so a height-2 graph resolves 8 levels. Data shorter than
// the width is right-aligned so the newest sample always sits at the
// right edge.
func BrailleSparkline(data []float64, width, height int, color lipgloss.Color) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minVal, maxVal := minMax(data)
	totalDots := height * 4
	targetPoints := width * 2

	// Only downsample when there is more data than display width; shorter
	// series fill the graph from the right instead of stretching.
	resampled := data
	if len(data) > targetPoints {
		resampled = Resample(data, targetPoints)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}

	horizOffset := targetPoints - len(resampled)
	if horizOffset < 0 {
		horizOffset = 0
	}

	for i, val := range resampled {
		normalized := 0.5
		if maxVal > minVal {
			normalized = (val - minVal) / (maxVal - minVal)
		}
		// A dot count of zero would draw nothing; the lowest sample still
		// shows one dot so the trace stays continuous.
		dotHeight := clampInt(int(normalized*float64(totalDots)), totalDots)
		if dotHeight == 0 {
			dotHeight = 1
		}

		charCol := (i + horizOffset) / 2
		if charCol >= width {
			continue
		}
		subCol := (i + horizOffset) % 2

		// Fill dots from bottom up
		for dot := 0; dot < dotHeight; dot++ {
			row := height - 1 - (dot / 4)
			if row < 0 {
				continue
			}
			subRow := 3 - (dot % 4)
			bitOffset := brailleDots[subRow][subCol]
			grid[row][charCol] |= rune(1 << bitOffset)
		}
	}

	style := lipgloss.NewStyle().Foreground(color)
	lines := make([]string, height)
	for i, row := range grid {
		lines[i] = style.Render(string(row))
	}
	return strings.Join(lines, "\n")
}

// Resample fits data to targetSize points. Downsampling keeps the max of
// each bucket so short spikes survive; upsampling interpolates linearly.
func Resample(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}

	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)

	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	if len(data) > targetSize {
		bucketSize := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucketSize)
			end := int(float64(i+1) * bucketSize)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}
			if start < 0 {
				start = 0
			}

			maxVal := data[start]
			for j := start + 1; j < end; j++ {
				if data[j] > maxVal {
					maxVal = data[j]
				}
			}
			result[i] = maxVal
		}
		return result
	}

	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)

		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
		} else {
			result[i] = data[idx]*(1-frac) + data[idx+1]*frac
		}
	}

	return result
}

func minMax(data []float64) (minVal, maxVal float64) {
	minVal, maxVal = data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
