package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	bidding "ynvest-tube/internal/biddingService"
	"ynvest-tube/internal/biddingerrors"
	"ynvest-tube/internal/config"
	"ynvest-tube/internal/lifecycle"
	"ynvest-tube/internal/locker"
	"ynvest-tube/internal/loyalty"
	"ynvest-tube/internal/models"
	"ynvest-tube/internal/realtime"
	"ynvest-tube/internal/repository"
	"ynvest-tube/internal/scheduler"
	"ynvest-tube/internal/server"
	"ynvest-tube/internal/settlement"
	"ynvest-tube/internal/statistics"
	"ynvest-tube/utils"

	"google.golang.org/api/option"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (default: ./config.yaml when present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		utils.Fatal("failed to load config", map[string]any{"error": err.Error()})
	}
	utils.SetLevel(cfg.Log.Level)

	repo, err := openStore(cfg.Database)
	if err != nil {
		utils.Fatal("failed to open store", map[string]any{"driver": cfg.Database.Driver, "error": err.Error()})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seedVideos(ctx, repo, cfg.Seed.Videos)

	hub := realtime.NewHub(realtime.DefaultBuffer)
	locks := locker.New()
	retry := locker.RetryPolicy{Attempts: cfg.Retry.Attempts, BaseDelay: cfg.Retry.BaseDelay}

	refresher := newRefresher(ctx, repo, cfg.YouTube)

	biddingSvc := bidding.NewBiddingService(repo,
		bidding.WithLocker(locks),
		bidding.WithPublisher(hub),
		bidding.WithInitialCash(cfg.Users.InitialCash),
		bidding.WithRetryPolicy(retry),
	)
	controller := lifecycle.NewController(repo,
		lifecycle.WithLocker(locks),
		lifecycle.WithPublisher(hub),
		lifecycle.WithSettings(lifecycle.Settings{
			StartingPrice: toRange(cfg.Auctions.StartingPrice),
			RentalDays:    toRange(cfg.Auctions.RentalDays),
			RentalHours:   toRange(cfg.Auctions.RentalHours),
			Retry:         retry,
			// without a refresher view counts never move, so any video may open
			RequireStatistics: refresher != nil,
		}),
	)
	settler := settlement.NewEngine(repo,
		settlement.WithLocker(locks),
		settlement.WithPublisher(hub),
		settlement.WithRetryPolicy(retry),
	)
	payouts := loyalty.NewScheduler(repo, loyalty.Tiers{
		MaxLevel:     cfg.Loyalty.MaxLevel,
		CashBase:     cfg.Loyalty.CashBase,
		IntervalBase: cfg.Loyalty.IntervalBase,
	}, nil)

	tasks := []scheduler.Task{
		{
			Name:     "close_expired_auctions",
			Interval: cfg.Scheduler.CloseAuctions,
			Run: func(ctx context.Context) error {
				_, err := controller.CloseExpiredAuctions(ctx)
				return err
			},
		},
		{
			Name:       "generate_auction",
			Interval:   cfg.Scheduler.GenerateAuction,
			RunAtStart: true,
			Run: func(ctx context.Context) error {
				_, err := controller.GenerateAuction(ctx, cfg.Auctions.MaxActive, toRange(cfg.Auctions.WindowMinutes))
				if lifecycle.IsNoVideo(err) {
					utils.Warn("generate_auction: no AVAILABLE video", nil)
					return nil
				}
				return err
			},
		},
		{
			Name:     "settle_rents",
			Interval: cfg.Scheduler.SettleRents,
			Run: func(ctx context.Context) error {
				_, err := settler.SettleRents(ctx)
				return err
			},
		},
		{
			Name:     "payout_loyalty",
			Interval: cfg.Scheduler.PayoutLoyalty,
			Run: func(ctx context.Context) error {
				_, err := payouts.PayoutLoyalty(ctx)
				return err
			},
		},
	}

	if refresher != nil {
		tasks = append(tasks, scheduler.Task{
			Name:       "refresh_video_statistics",
			Interval:   cfg.Scheduler.RefreshStatistic,
			RunAtStart: true,
			Run: func(ctx context.Context) error {
				_, err := refresher.RefreshVideoStatistics(ctx)
				return err
			},
		})
	}

	jobs := scheduler.New(tasks...)
	jobs.Start(ctx)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: server.SetupRouter(biddingSvc, hub),
	}

	go func() {
		utils.Info("starting ynvest-tube server", map[string]any{"addr": cfg.Server.Port, "store": cfg.Database.Driver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Error("server failed", map[string]any{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	utils.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("graceful shutdown failed", map[string]any{"error": err.Error()})
	}
	jobs.Stop()
}

// openStore returns the in-memory store or a migrated gorm-backed one
func openStore(cfg config.DatabaseConfig) (repository.AuctionDB, error) {
	if cfg.Driver == "memory" {
		return repository.NewMemoryRepo(), nil
	}
	db, err := repository.OpenDB(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	return repository.NewGormRepo(db), nil
}

// seedVideos registers the configured youtube ids that are not known yet
func seedVideos(ctx context.Context, repo repository.AuctionDB, links []string) {
	for _, link := range links {
		video := models.Video{Link: link, Title: link, State: models.VideoAvailable}
		err := repo.CreateVideo(ctx, &video)
		switch {
		case err == nil:
			utils.Info("seeded video", map[string]any{"video_id": video.ID, "link": link})
		case errors.Is(err, biddingerrors.ErrVideoAlreadyExists):
		default:
			utils.Warn("failed to seed video", map[string]any{"link": link, "error": err.Error()})
		}
	}
}

// newRefresher returns nil when no YouTube API key is configured
func newRefresher(ctx context.Context, repo repository.AuctionDB, cfg config.YouTubeConfig) *statistics.Refresher {
	if cfg.APIKey == "" {
		utils.Warn("youtube.api_key not set, video statistics will not be refreshed", nil)
		return nil
	}
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	fetcher, err := statistics.NewYouTubeFetcher(ctx, cfg.MinInterval, opts...)
	if err != nil {
		utils.Error("failed to create youtube client", map[string]any{"error": err.Error()})
		return nil
	}
	return statistics.NewRefresher(repo, fetcher, cfg.BatchSize)
}

func toRange(r config.IntRange) lifecycle.Range {
	return lifecycle.Range{Min: r.Min, Max: r.Max}
}
