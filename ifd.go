package rastertile

import "fmt"

// An IFDEntry is a single tag/value entry within an [IFD].
type IFDEntry struct {
	Tag         uint16
	FieldType   uint16
	Count       uint64
	ValueOffset uint64
}

// NewIFDEntry returns a new IFDEntry.
func NewIFDEntry(tag, fieldType uint16, count, valueOffset uint64) IFDEntry {
	return IFDEntry{Tag: tag, FieldType: fieldType, Count: count, ValueOffset: valueOffset}
}

// PayloadSize returns the total size in bytes of e's value payload.
func (e IFDEntry) PayloadSize() uint64 {
	return uint64(FieldTypeSize(e.FieldType)) * e.Count
}

// IsInline reports whether e's value is stored inline in the entry's value
// slot rather than at a file offset. Classic TIFF inlines payloads of at
// most 4 bytes; BigTIFF inlines payloads of at most 8 bytes.
func (e IFDEntry) IsInline(isBigTIFF bool) bool {
	limit := uint64(4)
	if isBigTIFF {
		limit = 8
	}
	return e.PayloadSize() <= limit
}

// An IFD (Image File Directory) describes one image within a (Big)TIFF file.
type IFD struct {
	Number  int
	Offset  uint64
	entries []IFDEntry
	byTag   map[uint16]int
}

// NewIFD returns a new, empty IFD at the given sequence number and file offset.
func NewIFD(number int, offset uint64) *IFD {
	return &IFD{
		Number: number,
		Offset: offset,
		byTag:  make(map[uint16]int),
	}
}

// AddEntry appends entry to the IFD.
func (ifd *IFD) AddEntry(entry IFDEntry) {
	ifd.byTag[entry.Tag] = len(ifd.entries)
	ifd.entries = append(ifd.entries, entry)
}

// Entries returns all of ifd's entries, in file order.
func (ifd *IFD) Entries() []IFDEntry {
	return ifd.entries
}

// Entry returns the entry for tag, if present.
func (ifd *IFD) Entry(tag uint16) (IFDEntry, bool) {
	i, ok := ifd.byTag[tag]
	if !ok {
		return IFDEntry{}, false
	}
	return ifd.entries[i], true
}

// HasTag reports whether ifd contains an entry for tag.
func (ifd *IFD) HasTag(tag uint16) bool {
	_, ok := ifd.byTag[tag]
	return ok
}

// getTagValue returns the inline scalar value of a single-count LONG/SHORT
// tag, used by the small accessors below.
func (ifd *IFD) getTagValue(tag uint16) (uint64, bool) {
	entry, ok := ifd.Entry(tag)
	if !ok {
		return 0, false
	}
	return entry.ValueOffset, true
}

// ImageWidth returns the ImageWidth tag value, if present.
func (ifd *IFD) ImageWidth() (uint64, bool) {
	return ifd.getTagValue(TagImageWidth)
}

// ImageLength returns the ImageLength tag value, if present.
func (ifd *IFD) ImageLength() (uint64, bool) {
	return ifd.getTagValue(TagImageLength)
}

// Dimensions returns the image's pixel dimensions, if both ImageWidth and
// ImageLength are present.
func (ifd *IFD) Dimensions() (Dimensions, bool) {
	w, ok := ifd.ImageWidth()
	if !ok {
		return Dimensions{}, false
	}
	h, ok := ifd.ImageLength()
	if !ok {
		return Dimensions{}, false
	}
	return Dimensions{Width: w, Height: h}, true
}

// Compression returns the Compression tag value, defaulting to
// [CompressionNone] if absent, matching the TIFF specification's default.
func (ifd *IFD) Compression() uint16 {
	v, ok := ifd.getTagValue(TagCompression)
	if !ok {
		return CompressionNone
	}
	return uint16(v)
}

// SamplesPerPixel returns the SamplesPerPixel tag value, defaulting to 1.
func (ifd *IFD) SamplesPerPixel() uint64 {
	v, ok := ifd.getTagValue(TagSamplesPerPixel)
	if !ok {
		return 1
	}
	return v
}

// BitsPerSample returns the BitsPerSample tag value, if present.
func (ifd *IFD) BitsPerSample() (uint64, bool) {
	return ifd.getTagValue(TagBitsPerSample)
}

// SampleFormat returns the SampleFormat tag value, defaulting to 1 (unsigned integer).
func (ifd *IFD) SampleFormat() uint64 {
	v, ok := ifd.getTagValue(TagSampleFormat)
	if !ok {
		return 1
	}
	return v
}

// Predictor returns the Predictor tag value, defaulting to 1 (no prediction).
func (ifd *IFD) Predictor() uint64 {
	v, ok := ifd.getTagValue(TagPredictor)
	if !ok {
		return 1
	}
	return v
}

// IsTiled reports whether ifd describes a tiled (rather than stripped) image.
func (ifd *IFD) IsTiled() bool {
	return ifd.HasTag(TagTileWidth)
}

// TileDimensions returns the tile's pixel dimensions, if ifd is tiled.
func (ifd *IFD) TileDimensions() (Dimensions, bool) {
	w, ok := ifd.getTagValue(TagTileWidth)
	if !ok {
		return Dimensions{}, false
	}
	h, ok := ifd.getTagValue(TagTileLength)
	if !ok {
		return Dimensions{}, false
	}
	return Dimensions{Width: w, Height: h}, true
}

// TilesAcross returns ceil(imageWidth / tileWidth).
func (ifd *IFD) TilesAcross() (uint64, bool) {
	dims, ok := ifd.Dimensions()
	if !ok {
		return 0, false
	}
	tileDims, ok := ifd.TileDimensions()
	if !ok || tileDims.Width == 0 {
		return 0, false
	}
	return ceilDiv(dims.Width, tileDims.Width), true
}

// TilesDown returns ceil(imageHeight / tileLength).
func (ifd *IFD) TilesDown() (uint64, bool) {
	dims, ok := ifd.Dimensions()
	if !ok {
		return 0, false
	}
	tileDims, ok := ifd.TileDimensions()
	if !ok || tileDims.Height == 0 {
		return 0, false
	}
	return ceilDiv(dims.Height, tileDims.Height), true
}

// IsGeoTIFF reports whether ifd carries a GeoKeyDirectory tag.
func (ifd *IFD) IsGeoTIFF() bool {
	return ifd.HasTag(TagGeoKeyDirectory)
}

// GeoTIFFTags returns the subset of ifd's entries that are GeoTIFF tags.
func (ifd *IFD) GeoTIFFTags() []IFDEntry {
	var result []IFDEntry
	for _, entry := range ifd.entries {
		switch entry.Tag {
		case TagModelPixelScale, TagModelTiepoint, TagModelTransformation,
			TagGeoKeyDirectory, TagGeoDoubleParams, TagGeoASCIIParams:
			result = append(result, entry)
		}
	}
	return result
}

// Describe returns a one-line human-readable summary of ifd: dimensions,
// compression, tiling, and GeoTIFF tag presence. It is meant for the CLI's
// describe mode, not for parsing.
func (ifd *IFD) Describe() string {
	dims, hasDims := ifd.Dimensions()
	dimsStr := "unknown"
	if hasDims {
		dimsStr = fmt.Sprintf("%dx%d", dims.Width, dims.Height)
	}

	tiling := "stripped"
	if tileDims, ok := ifd.TileDimensions(); ok {
		tiling = fmt.Sprintf("tiled %dx%d", tileDims.Width, tileDims.Height)
	}

	geo := "no"
	if ifd.IsGeoTIFF() {
		geo = "yes"
	}

	return fmt.Sprintf("IFD %d: %s, compression=%d, %s, geotiff=%s",
		ifd.Number, dimsStr, ifd.Compression(), tiling, geo)
}

func ceilDiv(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}
