package rastertile

// TIFF tag constants.
const (
	TagImageWidth                uint16 = 256
	TagImageLength               uint16 = 257
	TagBitsPerSample             uint16 = 258
	TagCompression               uint16 = 259
	TagPhotometricInterpretation uint16 = 262
	TagImageDescription          uint16 = 270
	TagStripOffsets              uint16 = 273
	TagSamplesPerPixel           uint16 = 277
	TagRowsPerStrip              uint16 = 278
	TagStripByteCounts           uint16 = 279
	TagXResolution               uint16 = 282
	TagYResolution               uint16 = 283
	TagPlanarConfiguration       uint16 = 284
	TagResolutionUnit            uint16 = 296
	TagSoftware                  uint16 = 305
	TagDateTime                  uint16 = 306
	TagPredictor                 uint16 = 317
	TagTileWidth                 uint16 = 322
	TagTileLength                uint16 = 323
	TagTileOffsets               uint16 = 324
	TagTileByteCounts            uint16 = 325
	TagSampleFormat              uint16 = 339

	TagModelPixelScale     uint16 = 33550
	TagModelTiepoint       uint16 = 33922
	TagModelTransformation uint16 = 34264
	TagGeoKeyDirectory     uint16 = 34735
	TagGeoDoubleParams     uint16 = 34736
	TagGeoASCIIParams      uint16 = 34737

	TagGDALMetadata uint16 = 42112
	TagGDALNoData   uint16 = 42113
)

// TagName returns the human-readable name of a TIFF tag, or "Unknown" if
// tag is not recognized.
func TagName(tag uint16) string {
	switch tag {
	case TagImageWidth:
		return "ImageWidth"
	case TagImageLength:
		return "ImageLength"
	case TagBitsPerSample:
		return "BitsPerSample"
	case TagCompression:
		return "Compression"
	case TagPhotometricInterpretation:
		return "PhotometricInterpretation"
	case TagImageDescription:
		return "ImageDescription"
	case TagStripOffsets:
		return "StripOffsets"
	case TagSamplesPerPixel:
		return "SamplesPerPixel"
	case TagRowsPerStrip:
		return "RowsPerStrip"
	case TagStripByteCounts:
		return "StripByteCounts"
	case TagXResolution:
		return "XResolution"
	case TagYResolution:
		return "YResolution"
	case TagPlanarConfiguration:
		return "PlanarConfiguration"
	case TagResolutionUnit:
		return "ResolutionUnit"
	case TagSoftware:
		return "Software"
	case TagDateTime:
		return "DateTime"
	case TagPredictor:
		return "Predictor"
	case TagTileWidth:
		return "TileWidth"
	case TagTileLength:
		return "TileLength"
	case TagTileOffsets:
		return "TileOffsets"
	case TagTileByteCounts:
		return "TileByteCounts"
	case TagSampleFormat:
		return "SampleFormat"
	case TagModelPixelScale:
		return "ModelPixelScale"
	case TagModelTiepoint:
		return "ModelTiepoint"
	case TagModelTransformation:
		return "ModelTransformation"
	case TagGeoKeyDirectory:
		return "GeoKeyDirectory"
	case TagGeoDoubleParams:
		return "GeoDoubleParams"
	case TagGeoASCIIParams:
		return "GeoAsciiParams"
	case TagGDALMetadata:
		return "GDAL_METADATA"
	case TagGDALNoData:
		return "GDAL_NODATA"
	default:
		return "Unknown"
	}
}

// TIFF field-type constants.
const (
	FieldTypeByte      uint16 = 1
	FieldTypeASCII     uint16 = 2
	FieldTypeShort     uint16 = 3
	FieldTypeLong      uint16 = 4
	FieldTypeRational  uint16 = 5
	FieldTypeSByte     uint16 = 6
	FieldTypeUndefined uint16 = 7
	FieldTypeSShort    uint16 = 8
	FieldTypeSLong     uint16 = 9
	FieldTypeSRational uint16 = 10
	FieldTypeFloat     uint16 = 11
	FieldTypeDouble    uint16 = 12
	FieldTypeLong8     uint16 = 16
	FieldTypeSLong8    uint16 = 17
	FieldTypeIFD8      uint16 = 18
)

// FieldTypeName returns the human-readable name of a field type, or
// "Unknown" if fieldType is not recognized.
func FieldTypeName(fieldType uint16) string {
	switch fieldType {
	case FieldTypeByte:
		return "BYTE"
	case FieldTypeASCII:
		return "ASCII"
	case FieldTypeShort:
		return "SHORT"
	case FieldTypeLong:
		return "LONG"
	case FieldTypeRational:
		return "RATIONAL"
	case FieldTypeSByte:
		return "SBYTE"
	case FieldTypeUndefined:
		return "UNDEFINED"
	case FieldTypeSShort:
		return "SSHORT"
	case FieldTypeSLong:
		return "SLONG"
	case FieldTypeSRational:
		return "SRATIONAL"
	case FieldTypeFloat:
		return "FLOAT"
	case FieldTypeDouble:
		return "DOUBLE"
	case FieldTypeLong8:
		return "LONG8"
	case FieldTypeSLong8:
		return "SLONG8"
	case FieldTypeIFD8:
		return "IFD8"
	default:
		return "Unknown"
	}
}

// FieldTypeSize returns the size in bytes of a single value of fieldType, or
// 0 if fieldType is not recognized.
func FieldTypeSize(fieldType uint16) int {
	switch fieldType {
	case FieldTypeByte, FieldTypeASCII, FieldTypeSByte, FieldTypeUndefined:
		return 1
	case FieldTypeShort, FieldTypeSShort:
		return 2
	case FieldTypeLong, FieldTypeSLong, FieldTypeFloat:
		return 4
	case FieldTypeRational, FieldTypeSRational, FieldTypeDouble,
		FieldTypeLong8, FieldTypeSLong8, FieldTypeIFD8:
		return 8
	default:
		return 0
	}
}

// Magic numbers identifying classic TIFF vs. BigTIFF.
const (
	TIFFMagic    uint16 = 42
	BigTIFFMagic uint16 = 43
)

// Recognized TIFF Compression tag values.
const (
	CompressionNone     uint16 = 1
	CompressionLZW      uint16 = 5
	CompressionJPEG     uint16 = 7
	CompressionDeflate  uint16 = 8
	CompressionPackBits uint16 = 32773
)

