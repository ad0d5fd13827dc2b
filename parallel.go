package rastertile

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// A PixelResult is one coordinate's looked-up sample value in a batch read,
// in the same position as its originating input coordinate.
type PixelResult struct {
	Value float64
	Err   error
}

// ReadPixelsBatch resolves a list of pixel coordinates against a single IFD,
// decoding each distinct tile at most once, concurrently, and bypassing the
// shared tile cache: a batch workload reads many tiles once each, so caching
// them would only evict tiles a hot single-point workload still needs.
//
// Results are returned in the same order as coords. An out-of-range
// coordinate produces an error at its own result index without failing the
// rest of the batch. A tile that fails to load fails the whole batch: the
// first such error is returned and the remaining loads are cancelled.
func ReadPixelsBatch(ctx context.Context, loader *TileLoader, pixelReader *PixelReader, dataType DataType, coords []PixelCoord) ([]PixelResult, error) {
	results := make([]PixelResult, len(coords))

	type tileRequest struct {
		resultIndex int
		pixelIndex  uint64
	}
	byTile := make(map[TileID][]tileRequest)

	for i, coord := range coords {
		tileID, pixelIndex, err := pixelReader.Locate(coord)
		if err != nil {
			results[i] = PixelResult{Err: err}
			continue
		}
		byTile[tileID] = append(byTile[tileID], tileRequest{resultIndex: i, pixelIndex: pixelIndex})
	}

	bytesPerSample, err := pixelReader.bytesPerSample()
	if err != nil {
		return nil, err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for tileID, requests := range byTile {
		tileID, requests := tileID, requests
		group.Go(func() error {
			data, err := loader.LoadTile(groupCtx, tileID)
			if err != nil {
				return err
			}
			for _, req := range requests {
				value, err := extractSample(data, req.pixelIndex, bytesPerSample, dataType)
				if err != nil {
					results[req.resultIndex] = PixelResult{Err: err}
					continue
				}
				results[req.resultIndex] = PixelResult{Value: value}
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func extractSample(data []byte, pixelIndex uint64, bytesPerSample int, dataType DataType) (float64, error) {
	byteOffset := pixelIndex * uint64(bytesPerSample)
	if byteOffset+uint64(bytesPerSample) > uint64(len(data)) {
		return 0, OutOfBoundsError("sample offset outside decompressed tile")
	}
	sample := data[byteOffset : byteOffset+uint64(bytesPerSample)]
	return decodeSample(sample, dataType), nil
}
