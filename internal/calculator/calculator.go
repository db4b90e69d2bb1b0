package calculator

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"bin-finder/internal/models"

	"golang.org/x/sync/errgroup"
)

type ProgressCallback func(current, total int, msg string)
type LoggerCallback func(msg string)

// progressEvery is how many processed origins trigger a progress report.
const progressEvery = 500

type locatedBin struct {
	bin models.Bin
	loc models.Coordinate
}

func usableBins(bins []models.Bin) []locatedBin {
	out := make([]locatedBin, 0, len(bins))
	for _, b := range bins {
		if c, ok := b.Location(); ok {
			out = append(out, locatedBin{bin: b, loc: c})
		}
	}
	return out
}

func chunks(total, workers int) (int, int) {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	return workers, (total + workers - 1) / workers
}

// ComputeNearest finds, for every origin, the nearest bin with usable
// coordinates. Origins are split into one chunk per worker.
func ComputeNearest(ctx context.Context, origins []models.Origin, bins []models.Bin, workers int, onProgress ProgressCallback, logger LoggerCallback) ([]models.ResultRow, error) {
	candidates := usableBins(bins)
	if len(origins) == 0 || len(candidates) == 0 {
		return nil, fmt.Errorf("compute nearest: %w: empty input lists", ErrInvalidInput)
	}

	total := len(origins)
	results := make([]models.ResultRow, total)
	workers, chunkSize := chunks(total, workers)

	var processed int64
	logf(logger, "Starting parallel processing with %d workers, %d origins, %d bins", workers, total, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if start >= total {
			break
		}
		if end > total {
			end = total
		}

		g.Go(func() error {
			for idx := start; idx < end; idx++ {
				if err := ctx.Err(); err != nil {
					return err
				}

				src := origins[idx]
				nearestIdx := 0
				minDist := math.MaxFloat64

				for cIdx, c := range candidates {
					d := Haversine(src.Loc.Lat, src.Loc.Lng, c.loc.Lat, c.loc.Lng)
					if d < minDist {
						minDist = d
						nearestIdx = cIdx
					}
				}

				results[idx] = resultRow(src, candidates[nearestIdx], minDist)

				count := atomic.AddInt64(&processed, 1)
				if count%progressEvery == 0 && onProgress != nil {
					onProgress(int(count), total, "")
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute nearest: %w", err)
	}

	if onProgress != nil {
		onProgress(total, total, "")
	}
	logf(logger, "Calculation completed.")
	return results, nil
}

// ComputeRadius lists every (origin, bin) pair no further apart than
// radiusMeters. Rows are grouped per origin in input order.
func ComputeRadius(ctx context.Context, origins []models.Origin, bins []models.Bin, radiusMeters float64, workers int, onProgress ProgressCallback, logger LoggerCallback) ([]models.ResultRow, error) {
	if radiusMeters <= 0 || math.IsNaN(radiusMeters) {
		return nil, fmt.Errorf("compute radius: %w: radius %v", ErrInvalidInput, radiusMeters)
	}
	candidates := usableBins(bins)
	if len(origins) == 0 || len(candidates) == 0 {
		return nil, fmt.Errorf("compute radius: %w: empty input lists", ErrInvalidInput)
	}

	total := len(origins)
	workers, chunkSize := chunks(total, workers)
	perOrigin := make([][]models.ResultRow, total)

	var mu sync.Mutex
	doneChunks := 0

	logf(logger, "Starting Radius search (%.0fm) with %d workers", radiusMeters, workers)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if start >= total {
			break
		}
		if end > total {
			end = total
		}

		g.Go(func() error {
			for idx := start; idx < end; idx++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				src := origins[idx]
				for _, c := range candidates {
					d := Haversine(src.Loc.Lat, src.Loc.Lng, c.loc.Lat, c.loc.Lng)
					if d <= radiusMeters {
						perOrigin[idx] = append(perOrigin[idx], resultRow(src, c, d))
					}
				}
			}

			mu.Lock()
			doneChunks++
			current := min(doneChunks*chunkSize, total)
			mu.Unlock()
			if onProgress != nil {
				onProgress(current, total, "")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute radius: %w", err)
	}

	var all []models.ResultRow
	for _, rows := range perOrigin {
		all = append(all, rows...)
	}

	logf(logger, "Radius calculation completed.")
	return all, nil
}

func resultRow(src models.Origin, c locatedBin, d float64) models.ResultRow {
	addr := c.bin.RoadAddress
	if addr == "" {
		addr = c.bin.LandLotAddress
	}
	return models.ResultRow{
		OriginID:   src.ID,
		OriginName: src.Name,
		OriginLat:  src.Loc.Lat,
		OriginLng:  src.Loc.Lng,
		BinID:      c.bin.ID,
		BinAddress: addr,
		BinLat:     c.loc.Lat,
		BinLng:     c.loc.Lng,
		Distance:   int(math.Round(d)),
	}
}

func logf(logger LoggerCallback, format string, args ...any) {
	if logger != nil {
		logger(fmt.Sprintf(format, args...))
	}
}
