package compress

// ApplyHorizontalPredictor reverses TIFF's horizontal differencing predictor
// (Predictor tag value 2) in place: each row of rowBytes bytes has every
// byte after the first replaced by its wrapping sum with its left neighbor's
// already-restored value, independently per row.
func ApplyHorizontalPredictor(data []byte, rowBytes, rows int) {
	for row := 0; row < rows; row++ {
		start := row * rowBytes
		end := start + rowBytes
		if end > len(data) {
			end = len(data)
		}
		for i := start + 1; i < end; i++ {
			data[i] = data[i] + data[i-1]
		}
	}
}
