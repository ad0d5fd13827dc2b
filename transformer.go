package rastertile

import (
	"fmt"

	"github.com/twpayne/go-proj/v11"
)

// A Transformer reprojects coordinates between two coordinate reference
// systems, identified by EPSG code. It wraps a single PROJ transformation
// pipeline built once at construction time and reused for every call.
type Transformer struct {
	pj *proj.PJ
}

// NewTransformer returns a Transformer that reprojects from sourceEPSG to
// targetEPSG.
func NewTransformer(sourceEPSG, targetEPSG int) (*Transformer, error) {
	pj, err := proj.NewCRSToCRS(epsgName(sourceEPSG), epsgName(targetEPSG), nil)
	if err != nil {
		return nil, ProjectionError(err.Error())
	}
	return &Transformer{pj: pj}, nil
}

func epsgName(epsg int) string {
	return fmt.Sprintf("epsg:%d", epsg)
}

// Forward reprojects a single (x,y) coordinate from the source to the target CRS.
func (t *Transformer) Forward(x, y float64) (float64, float64, error) {
	coords := [][]float64{{x, y}}
	if err := t.pj.ForwardFloat64Slices(coords); err != nil {
		return 0, 0, ProjectionError(err.Error())
	}
	return coords[0][0], coords[0][1], nil
}

// ForwardBatch reprojects many coordinates in place, reusing one
// transformation pipeline, which amortizes PROJ's per-call setup cost across
// the whole batch.
func (t *Transformer) ForwardBatch(coords [][]float64) error {
	if err := t.pj.ForwardFloat64Slices(coords); err != nil {
		return ProjectionError(err.Error())
	}
	return nil
}
