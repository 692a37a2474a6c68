// Package loyalty rewards long-standing users with periodic payouts
package loyalty

import (
	"context"
	"fmt"
	"time"

	"ynvest-tube/internal/repository"
	"ynvest-tube/utils"
)

// Tiers parameterizes the payout table
type Tiers struct {
	MaxLevel     int
	CashBase     int64
	IntervalBase int
}

// DefaultTiers pays 500 per 30 days of account age up to 2500
var DefaultTiers = Tiers{MaxLevel: 6, CashBase: 500, IntervalBase: 30}

// ComputeLoyaltyPayout returns the payout for an account that is days old.
// Tier i covers [IntervalBase*i, IntervalBase*(i+1)) and pays CashBase*(i+1);
// accounts older than the last tier get nothing.
func (t Tiers) ComputeLoyaltyPayout(days int) int64 {
	if days < 0 {
		days = 0
	}
	for i := 0; i < t.MaxLevel-1; i++ {
		if days < t.IntervalBase*(i+1) {
			return t.CashBase * int64(i+1)
		}
	}
	return 0
}

// ComputeLoyaltyPayout uses DefaultTiers
func ComputeLoyaltyPayout(days int) int64 {
	return DefaultTiers.ComputeLoyaltyPayout(days)
}

// Scheduler pays every user their loyalty reward
type Scheduler struct {
	repo  repository.AuctionDB
	tiers Tiers
	now   func() time.Time
}

// NewScheduler creates a loyalty scheduler. A nil clock means time.Now.
func NewScheduler(repo repository.AuctionDB, tiers Tiers, now func() time.Time) *Scheduler {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Scheduler{repo: repo, tiers: tiers, now: now}
}

// PayoutSummary reports the outcome of one payout batch
type PayoutSummary struct {
	Paid    int
	Skipped int
	Failed  int
	Total   int64
}

// PayoutLoyalty credits every user according to their account age in whole days
func (s *Scheduler) PayoutLoyalty(ctx context.Context) (PayoutSummary, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return PayoutSummary{}, fmt.Errorf("loyalty: failed to list users: %w", err)
	}

	now := s.now()
	var summary PayoutSummary
	for _, u := range users {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		days := int(now.Sub(u.CreatedAt) / (24 * time.Hour))
		payout := s.tiers.ComputeLoyaltyPayout(days)
		if payout == 0 {
			summary.Skipped++
			continue
		}
		if err := s.repo.AdjustCash(ctx, u.ID, payout); err != nil {
			summary.Failed++
			utils.Warn("loyalty: payout failed", map[string]any{"user_id": u.ID, "payout": payout, "error": err.Error()})
			continue
		}
		summary.Paid++
		summary.Total += payout
	}

	utils.Info("loyalty: payout finished", map[string]any{
		"paid":    summary.Paid,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
		"total":   summary.Total,
	})
	return summary, nil
}
