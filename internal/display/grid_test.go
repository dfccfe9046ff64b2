package display

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jkaberg/bms-hass/internal/config"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestOrderCells(t *testing.T) {
	tests := []struct {
		name    string
		cells   int
		columns int
		layout  config.Layout
		want    []int
	}{
		{"incremental", 4, 2, config.LayoutIncremental, []int{1, 2, 3, 4}},
		{"bank 8x2", 8, 2, config.LayoutBank, []int{1, 5, 2, 6, 3, 7, 4, 8}},
		{"bank single column", 4, 1, config.LayoutBank, []int{1, 2, 3, 4}},
		{"bank uneven", 5, 2, config.LayoutBank, []int{1, 4, 2, 5, 3}},
		{"bank 12x4", 12, 4, config.LayoutBank, []int{1, 4, 7, 10, 2, 5, 8, 11, 3, 6, 9, 12}},
		{"bank no columns", 3, 0, config.LayoutBank, []int{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OrderCells(seq(tt.cells), tt.columns, tt.layout))
		})
	}
}
