package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharedcanvas-server/domain"
)

func TestPDF(t *testing.T) {
	tests := []struct {
		name    string
		strokes []domain.Stroke
	}{
		{name: "empty room"},
		{
			name: "strokes with negative coordinates",
			strokes: []domain.Stroke{
				{X0: -40, Y0: 10, X1: 200, Y1: 80, Color: "#264653", PenWidth: 4},
				{X0: 5, Y0: 5, X1: 6, Y1: 6, Color: "not-a-color", PenWidth: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, PDF(&buf, "Room TEST1", tt.strokes))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want [3]int
	}{
		{in: "#e63946", want: [3]int{0xe6, 0x39, 0x46}},
		{in: "#FFF", want: [3]int{255, 255, 255}},
		{in: "Red", want: [3]int{255, 0, 0}},
		{in: "#12345", want: [3]int{0, 0, 0}},
		{in: "#zzzzzz", want: [3]int{0, 0, 0}},
		{in: "rgb(1,2,3)", want: [3]int{0, 0, 0}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseColor(tt.in), "input %q", tt.in)
	}
}

func TestBounds(t *testing.T) {
	minX, minY, maxX, maxY := bounds([]domain.Stroke{
		{X0: 10, Y0: 20, X1: 30, Y1: 5, PenWidth: 2},
		{X0: -4, Y0: 0, X1: 0, Y1: 0, PenWidth: 4},
	})
	assert.Equal(t, -6.0, minX)
	assert.Equal(t, -2.0, minY)
	assert.Equal(t, 31.0, maxX)
	assert.Equal(t, 21.0, maxY)
}
