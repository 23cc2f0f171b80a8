package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Force color output in tests for consistent rendering
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestSparklineEmptyData(t *testing.T) {
	assert.Empty(t, Sparkline(nil, 10, ColorInfo))
	assert.Empty(t, Sparkline([]float64{1, 2}, 0, ColorInfo))
}

func TestSparklineRendersWidthCharacters(t *testing.T) {
	data := []float64{4.98, 5.01, 5.00, 4.99, 5.02, 5.00}

	out := Sparkline(data, 6, ColorInfo)
	plain := stripANSI(out)

	require.Equal(t, 6, len([]rune(plain)))
	for _, r := range plain {
		assert.Contains(t, string(sparklineBlockRunes), string(r))
	}
}

func TestSparklineMinMaxMapping(t *testing.T) {
	// Strictly increasing data: first rune is the lowest block, last the highest.
	data := []float64{0, 1, 2, 3, 4, 5, 6, 7}

	plain := []rune(stripANSI(Sparkline(data, 8, ColorInfo)))
	require.Len(t, plain, 8)
	assert.Equal(t, sparklineBlockRunes[0], plain[0])
	assert.Equal(t, sparklineBlockRunes[len(sparklineBlockRunes)-1], plain[len(plain)-1])
}

func TestSparklineFlatSeriesUsesMiddleLevel(t *testing.T) {
	data := []float64{3.3, 3.3, 3.3, 3.3}

	plain := []rune(stripANSI(Sparkline(data, 4, ColorInfo)))
	require.Len(t, plain, 4)
	mid := sparklineBlockRunes[len(sparklineBlockRunes)/2]
	for _, r := range plain {
		assert.Equal(t, mid, r)
	}
}

func TestBrailleSparklineDimensions(t *testing.T) {
	data := []float64{1.0, 2.0, 1.5, 2.5, 1.8, 2.2, 1.2, 2.8}

	out := BrailleSparkline(data, 10, 2, ColorInfo)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, 10, len([]rune(stripANSI(line))))
	}
}

func TestBrailleSparklineEmpty(t *testing.T) {
	assert.Empty(t, BrailleSparkline(nil, 10, 2, ColorInfo))
	assert.Empty(t, BrailleSparkline([]float64{1}, 0, 2, ColorInfo))
	assert.Empty(t, BrailleSparkline([]float64{1}, 10, 0, ColorInfo))
}

func TestBrailleSparklineShortDataRightAligned(t *testing.T) {
	// 4 points in a 10-char graph (20 point capacity): the left columns
	// stay empty and the data hugs the right edge.
	data := []float64{1.0, 3.0, 2.0, 4.0}

	out := BrailleSparkline(data, 10, 1, ColorInfo)
	plain := []rune(stripANSI(out))
	require.Len(t, plain, 10)

	assert.Equal(t, rune(brailleBase), plain[0])
	assert.NotEqual(t, rune(brailleBase), plain[len(plain)-1])
}

func TestResampleDownsamplePreservesPeaks(t *testing.T) {
	// A spike inside a bucket must survive max-downsampling.
	data := []float64{1, 1, 9, 1, 1, 1, 1, 1}

	out := Resample(data, 4)
	require.Len(t, out, 4)

	var peak float64
	for _, v := range out {
		if v > peak {
			peak = v
		}
	}
	assert.Equal(t, 9.0, peak)
}

func TestResampleUpsampleInterpolates(t *testing.T) {
	data := []float64{0, 10}

	out := Resample(data, 5)
	require.Len(t, out, 5)
	assert.Equal(t, 0.0, out[0])
	assert.Equal(t, 10.0, out[4])
	assert.InDelta(t, 5.0, out[2], 1e-9)
}

func TestResampleEdgeCases(t *testing.T) {
	assert.Nil(t, Resample(nil, 5))
	assert.Nil(t, Resample([]float64{1}, 0))

	same := []float64{1, 2, 3}
	assert.Equal(t, same, Resample(same, 3))

	single := Resample([]float64{7}, 3)
	assert.Equal(t, []float64{7, 7, 7}, single)
}

// stripANSI removes escape sequences so tests can assert on glyphs.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
