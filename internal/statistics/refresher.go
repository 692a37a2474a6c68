package statistics

import (
	"context"
	"fmt"
	"time"

	"ynvest-tube/internal/repository"
	"ynvest-tube/utils"
)

// Refresher copies upstream statistics onto stored videos
type Refresher struct {
	repo      repository.AuctionDB
	fetcher   Fetcher
	batchSize int
	now       func() time.Time
}

// NewRefresher creates a Refresher. batchSize is clamped to [1, MaxBatchSize].
func NewRefresher(repo repository.AuctionDB, fetcher Fetcher, batchSize int) *Refresher {
	if batchSize <= 0 || batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}
	return &Refresher{
		repo:      repo,
		fetcher:   fetcher,
		batchSize: batchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RefreshSummary reports the outcome of one refresh
type RefreshSummary struct {
	Updated int
	Missing int
	Failed  int
}

// RefreshVideoStatistics updates views, likes and dislikes of every video.
// Video state is never touched; videos missing upstream keep their counts.
func (r *Refresher) RefreshVideoStatistics(ctx context.Context) (RefreshSummary, error) {
	videos, err := r.repo.ListVideos(ctx, repository.VideoFilter{})
	if err != nil {
		return RefreshSummary{}, fmt.Errorf("statistics: failed to list videos: %w", err)
	}

	var summary RefreshSummary
	for start := 0; start < len(videos); start += r.batchSize {
		batch := videos[start:min(start+r.batchSize, len(videos))]
		ids := make([]string, 0, len(batch))
		for _, v := range batch {
			ids = append(ids, v.Link)
		}

		stats, err := r.fetcher.FetchStatistics(ctx, ids)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			summary.Failed += len(batch)
			utils.Warn("statistics: batch fetch failed", map[string]any{"first_video_id": batch[0].ID, "size": len(batch), "error": err.Error()})
			continue
		}

		at := r.now()
		for _, v := range batch {
			s, ok := stats[v.Link]
			if !ok {
				summary.Missing++
				continue
			}
			if err := r.repo.UpdateVideoStatistics(ctx, v.ID, s, at); err != nil {
				summary.Failed++
				utils.Warn("statistics: update failed", map[string]any{"video_id": v.ID, "error": err.Error()})
				continue
			}
			summary.Updated++
		}
	}

	utils.Info("statistics: refresh finished", map[string]any{
		"updated": summary.Updated,
		"missing": summary.Missing,
		"failed":  summary.Failed,
	})
	return summary, nil
}
