package display

import "github.com/jkaberg/bms-hass/internal/config"

// OrderCells returns items in the order a row-major grid with the given
// number of columns renders them. LayoutIncremental keeps the input order.
// LayoutBank gives each column a contiguous run of cells, so 16 cells in 2
// columns show 1-8 on the left and 9-16 on the right.
func OrderCells[T any](cells []T, columns int, layout config.Layout) []T {
	out := make([]T, 0, len(cells))
	if layout != config.LayoutBank || columns <= 1 {
		return append(out, cells...)
	}

	perColumn := (len(cells) + columns - 1) / columns
	for row := 0; row < perColumn; row++ {
		for col := 0; col < columns; col++ {
			if i := col*perColumn + row; i < len(cells) {
				out = append(out, cells[i])
			}
		}
	}
	return out
}
