package compress

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestApplyHorizontalPredictor(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}
	ApplyHorizontalPredictor(data, 3, 2)
	assert.Equal(t, []byte{1, 3, 6, 4, 9, 15}, data)
}

func TestApplyHorizontalPredictorPerRow(t *testing.T) {
	data := []byte{1, 1, 1, 2, 2, 2}
	ApplyHorizontalPredictor(data, 3, 2)
	assert.Equal(t, []byte{1, 2, 3, 2, 4, 6}, data)
}

func TestApplyHorizontalPredictorWraps(t *testing.T) {
	data := []byte{200, 100}
	ApplyHorizontalPredictor(data, 2, 1)
	assert.Equal(t, []byte{200, 44}, data)
}
