package grid

// GetGridCoords converts a linear cell index into column and row for a grid
// that is cols cells wide.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}
