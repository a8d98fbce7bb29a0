package matching

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/jonathan/recruit-desk/internal/types"
	"golang.org/x/sync/errgroup"
)

// BulkWithdraw withdraws every listed match. Each match is updated
// independently; failures are counted, never propagated.
func (e *Engine) BulkWithdraw(ctx context.Context, matchIDs []string, actorID string) types.BulkResult {
	return e.bulkUpdate(ctx, matchIDs, &types.UpdateStatusRequest{
		Status:  types.StatusWithdrawn,
		Notes:   bulkWithdrawalNote,
		ActorID: actorID,
	})
}

// BulkUpdateStatus moves every listed match to the same status. An unknown
// status fails the whole request; per-match failures are counted.
func (e *Engine) BulkUpdateStatus(ctx context.Context, req *types.BulkStatusRequest) (types.BulkResult, error) {
	if req == nil {
		return types.BulkResult{}, &ErrValidation{Field: "request", Message: "is required"}
	}
	if !req.Status.Valid() {
		return types.BulkResult{}, &ErrValidation{Field: "status", Message: fmt.Sprintf("unknown status %q", req.Status)}
	}
	return e.bulkUpdate(ctx, req.MatchIDs, &types.UpdateStatusRequest{
		Status:      req.Status,
		Description: req.Description,
		Notes:       req.Notes,
		ActorID:     req.ActorID,
	}), nil
}

func (e *Engine) bulkUpdate(ctx context.Context, matchIDs []string, req *types.UpdateStatusRequest) types.BulkResult {
	failures := make([]*types.BulkFailure, len(matchIDs))
	var result types.BulkResult
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(e.opts.BulkConcurrency)

	for i, id := range matchIDs {
		g.Go(func() error {
			err := e.UpdateMatchStatus(ctx, id, req)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[MATCH] Bulk %s failed for %s: %v", req.Status, id, err)
				result.ErrorCount++
				failures[i] = &types.BulkFailure{MatchID: id, Error: err.Error()}
				return nil
			}
			result.SuccessCount++
			return nil
		})
	}
	// Items record their own failure and never return an error.
	g.Wait()

	for _, f := range failures {
		if f != nil {
			result.Failures = append(result.Failures, *f)
		}
	}
	return result
}
