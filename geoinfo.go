package rastertile

import "fmt"

// An Affine is the six-parameter pixel-to-world linear transform:
//
//	geo_x = A + B*px + C*py
//	geo_y = D + E*px + F*py
type Affine struct {
	A, B, C, D, E, F float64
}

// PixelToGeo maps a pixel coordinate to world (CRS) coordinates.
func (a Affine) PixelToGeo(px, py float64) (geoX, geoY float64) {
	geoX = a.A + a.B*px + a.C*py
	geoY = a.D + a.E*px + a.F*py
	return geoX, geoY
}

// determinant returns the determinant of the affine's 2x2 linear part.
func (a Affine) determinant() float64 {
	return a.B*a.F - a.C*a.E
}

// singularThreshold is the minimum |determinant| an affine's linear part
// must have to be considered invertible.
const singularThreshold = 1e-10

// Invert returns the affine mapping world coordinates back to pixel
// coordinates, via Cramer's rule. It fails with [KindProjection] if the
// linear part is singular (|det| below [singularThreshold]).
func (a Affine) Invert() (Affine, error) {
	det := a.determinant()
	if det < 0 {
		det = -det
	}
	if det < singularThreshold {
		return Affine{}, ProjectionError("singular transform matrix")
	}

	invDet := 1 / a.determinant()
	ib := a.F * invDet
	ic := -a.C * invDet
	ie := -a.E * invDet
	if_ := a.B * invDet

	// Solve [px;py] = Minv * ([geo_x;geo_y] - [A;D]).
	ia := -(ib*a.A + ic*a.D)
	id := -(ie*a.A + if_*a.D)

	return Affine{A: ia, B: ib, C: ic, D: id, E: ie, F: if_}, nil
}

// GeoToPixel maps a world coordinate back to pixel coordinates using the
// inverse of a.
func (a Affine) GeoToPixel(geoX, geoY float64) (px, py float64, err error) {
	inv, err := a.Invert()
	if err != nil {
		return 0, 0, err
	}
	px, py = inv.PixelToGeo(geoX, geoY)
	return px, py, nil
}

// A GeoInfo is the georeferencing metadata of a single IFD: its pixel-to-world
// affine transform and, when present, its coordinate reference system.
type GeoInfo struct {
	Affine  Affine
	HasEPSG bool
	EPSG    int
	CRSName string
}

// BuildGeoInfo reads ModelPixelScale/ModelTiepoint/ModelTransformation and
// GeoKey tags from ifd via reader and constructs a [GeoInfo]. It fails with
// [KindMissingTag] if neither an explicit transformation matrix nor a
// scale-plus-tiepoint pair is present.
func BuildGeoInfo(reader *Reader, ifd *IFD) (*GeoInfo, error) {
	affine, err := buildAffine(reader, ifd)
	if err != nil {
		return nil, err
	}

	info := &GeoInfo{Affine: affine}

	if ifd.HasTag(TagGeoKeyDirectory) {
		epsg, name, ok, err := parseGeoKeyCRS(reader, ifd)
		if err != nil {
			return nil, err
		}
		if ok {
			info.HasEPSG = true
			info.EPSG = epsg
			info.CRSName = name
		}
	}

	return info, nil
}

func buildAffine(reader *Reader, ifd *IFD) (Affine, error) {
	if entry, ok := ifd.Entry(TagModelTransformation); ok {
		values, err := reader.ReadTagDoubles(entry)
		if err != nil {
			return Affine{}, err
		}
		if len(values) != 16 {
			return Affine{}, InvalidFormatError("ModelTransformationTag must have 16 values")
		}
		// Row-major 4x4; the 2-D affine lives in the top-left block.
		return Affine{A: values[3], B: values[0], C: values[1], D: values[7], E: values[4], F: values[5]}, nil
	}

	scaleEntry, ok := ifd.Entry(TagModelPixelScale)
	if !ok {
		return Affine{}, MissingTagError(TagModelPixelScale)
	}
	tiepointEntry, ok := ifd.Entry(TagModelTiepoint)
	if !ok {
		return Affine{}, MissingTagError(TagModelTiepoint)
	}

	scale, err := reader.ReadTagDoubles(scaleEntry)
	if err != nil {
		return Affine{}, err
	}
	if len(scale) < 2 {
		return Affine{}, InvalidFormatError("ModelPixelScaleTag must have at least 2 values")
	}

	tiepoints, err := reader.ReadTagDoubles(tiepointEntry)
	if err != nil {
		return Affine{}, err
	}
	if len(tiepoints) < 6 {
		return Affine{}, InvalidFormatError("ModelTiepointTag must have at least 6 values")
	}

	sx, sy := scale[0], scale[1]
	tpx, tpy, tgx, tgy := tiepoints[0], tiepoints[1], tiepoints[3], tiepoints[4]

	return Affine{
		A: tgx - sx*tpx,
		B: sx,
		C: 0,
		D: tgy + sy*tpy,
		E: 0,
		F: -sy,
	}, nil
}

// parseGeoKeyCRS parses the GeoKey directory and returns the EPSG code and a
// descriptive name from the first Geographic (2048) or Projected (3072) CRS
// key present.
func parseGeoKeyCRS(reader *Reader, ifd *IFD) (epsg int, name string, ok bool, err error) {
	parsed, ok, err := ParseGeoKeysFromIFD(reader, ifd)
	if err != nil || !ok {
		return 0, "", false, err
	}

	if code, ok := parsed.Params[GeoKeyGeodeticCRS]; ok {
		return code, geoKeyCRSName(parsed, GeoKeyGeogCitation, code), true, nil
	}
	if code, ok := parsed.Params[GeoKeyProjectedCRS]; ok {
		return code, geoKeyCRSName(parsed, GeoKeyPCSCitation, code), true, nil
	}
	return 0, "", false, nil
}

func geoKeyCRSName(parsed *ParsedGeoKeys, citationKey GeoKey, epsg int) string {
	if name, ok := parsed.ASCIIParams[citationKey]; ok {
		return name
	}
	return fmt.Sprintf("EPSG:%d", epsg)
}
