// Package statistics keeps the view counts of known videos up to date
package statistics

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"ynvest-tube/internal/models"
)

// MaxBatchSize is the largest id list accepted by videos.list
const MaxBatchSize = 50

// Fetcher returns the current statistics of the given youtube video ids.
// Ids unknown upstream are absent from the result.
type Fetcher interface {
	FetchStatistics(ctx context.Context, ids []string) (map[string]models.VideoStatistics, error)
}

// YouTubeFetcher queries the YouTube Data API, throttled to one call per interval
type YouTubeFetcher struct {
	svc     *youtube.Service
	limiter *rate.Limiter
}

// NewYouTubeFetcher builds a client from opts, typically option.WithAPIKey.
// A non-positive minInterval disables throttling.
func NewYouTubeFetcher(ctx context.Context, minInterval time.Duration, opts ...option.ClientOption) (*YouTubeFetcher, error) {
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("statistics: failed to create youtube client: %w", err)
	}
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &YouTubeFetcher{svc: svc, limiter: rate.NewLimiter(limit, 1)}, nil
}

// FetchStatistics calls videos.list once per MaxBatchSize ids
func (f *YouTubeFetcher) FetchStatistics(ctx context.Context, ids []string) (map[string]models.VideoStatistics, error) {
	out := make(map[string]models.VideoStatistics, len(ids))
	for start := 0; start < len(ids); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(ids))

		if err := f.limiter.Wait(ctx); err != nil {
			return out, fmt.Errorf("statistics: throttle: %w", err)
		}
		resp, err := f.svc.Videos.List([]string{"statistics"}).Id(ids[start:end]...).Context(ctx).Do()
		if err != nil {
			return out, fmt.Errorf("statistics: videos.list: %w", err)
		}
		for _, item := range resp.Items {
			if item.Statistics == nil {
				continue
			}
			out[item.Id] = models.VideoStatistics{
				Views:    clampCount(item.Statistics.ViewCount),
				Likes:    clampCount(item.Statistics.LikeCount),
				Dislikes: clampCount(item.Statistics.DislikeCount),
			}
		}
	}
	return out, nil
}

// clampCount saturates upstream counters at math.MaxInt64
func clampCount(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
