// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"errors"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/pdiddy/paper-rag/pkg/types"
)

// BatchResult holds the outcome of a batch extraction run.
type BatchResult struct {
	Records []*types.ExtractedRecord
	ByTier  map[types.ContentType]int
	Dropped int
}

// Total returns the number of candidates processed.
func (r BatchResult) Total() int {
	return len(r.Records) + r.Dropped
}

// ExtractAll runs Extract over recs and returns the surviving records in
// input order. With more than one configured worker the candidates are
// extracted on a bounded goroutine pool; per-host pacing still applies.
func (e *Extractor) ExtractAll(ctx context.Context, recs []types.CandidateRecord) (BatchResult, error) {
	slots := make([]*types.ExtractedRecord, len(recs))

	run := func(i int) {
		er, err := e.Extract(ctx, recs[i])
		if err != nil && !errors.Is(err, ErrNoContent) {
			e.logger.Warn("extraction failed", "id", recs[i].ID, "err", err)
			return
		}
		slots[i] = er
	}

	if e.cfg.Workers > 1 && len(recs) > 1 {
		pool, err := ants.NewPool(e.cfg.Workers)
		if err != nil {
			return BatchResult{}, err
		}
		defer pool.Release()

		var wg sync.WaitGroup
		for i := range recs {
			wg.Add(1)
			idx := i
			if err := pool.Submit(func() {
				defer wg.Done()
				run(idx)
			}); err != nil {
				wg.Done()
				e.logger.Warn("submitting extraction", "id", recs[idx].ID, "err", err)
			}
		}
		wg.Wait()
	} else {
		for i := range recs {
			if ctx.Err() != nil {
				break
			}
			run(i)
		}
	}

	result := BatchResult{ByTier: make(map[types.ContentType]int)}
	for _, er := range slots {
		if er == nil {
			result.Dropped++
			continue
		}
		result.Records = append(result.Records, er)
		result.ByTier[er.ContentType]++
	}
	e.logger.Info("extraction complete",
		"extracted", len(result.Records), "dropped", result.Dropped,
		"primary", result.ByTier[types.ContentPrimary],
		"secondary", result.ByTier[types.ContentSecondary],
		"abstract", result.ByTier[types.ContentAbstract])
	return result, ctx.Err()
}
