package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"ynvest-tube/internal/biddingerrors"
	"ynvest-tube/internal/models"
)

// OpenDB opens a gorm connection for driver ("sqlite" or "postgres") and migrates the schema
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("open db: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Video{}, &models.Auction{}, &models.Bid{}, &models.Rent{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return db, nil
}

// GormRepo implements AuctionDB on top of gorm
type GormRepo struct {
	db       *gorm.DB
	inTx     bool
	rowLocks bool
}

// NewGormRepo wraps an opened gorm connection. Row locks are only taken on
// dialects that support SELECT ... FOR UPDATE.
func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db, rowLocks: db.Dialector.Name() == "postgres"}
}

// Atomic runs fn inside a database transaction
func (r *GormRepo) Atomic(ctx context.Context, fn func(tx AuctionDB) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{db: tx, inTx: true, rowLocks: r.rowLocks})
	})
	return translate(err)
}

func (r *GormRepo) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// locked reads rows FOR UPDATE when running inside a transaction
func (r *GormRepo) locked(ctx context.Context) *gorm.DB {
	q := r.query(ctx)
	if r.inTx && r.rowLocks {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (r *GormRepo) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.query(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user %s: %w", user.ID, translate(err))
	}
	return nil
}

func (r *GormRepo) GetUser(ctx context.Context, userID string) (models.User, error) {
	var u models.User
	if err := r.locked(ctx).Where("id = ?", userID).First(&u).Error; err != nil {
		return models.User{}, fmt.Errorf("get user %s: %w", userID, notFound(err, biddingerrors.ErrUnknownUser))
	}
	return u, nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.query(ctx).Order("created_at, id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", translate(err))
	}
	return users, nil
}

func (r *GormRepo) AdjustCash(ctx context.Context, userID string, delta int64) error {
	res := r.query(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("cash", gorm.Expr("cash + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("adjust cash of user %s: %w", userID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("adjust cash of user %s: %w", userID, biddingerrors.ErrUnknownUser)
	}
	return nil
}

func (r *GormRepo) DebitCash(ctx context.Context, userID string, amount int64) error {
	res := r.query(ctx).Model(&models.User{}).
		Where("id = ? AND cash >= ?", userID, amount).
		UpdateColumn("cash", gorm.Expr("cash - ?", amount))
	if res.Error != nil {
		return fmt.Errorf("debit user %s: %w", userID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetUser(ctx, userID); err != nil {
			return err
		}
		return fmt.Errorf("debit user %s by %d: %w", userID, amount, biddingerrors.ErrInsufficientFunds)
	}
	return nil
}

func (r *GormRepo) CreateVideo(ctx context.Context, video *models.Video) error {
	if err := r.query(ctx).Create(video).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create video %s: %w", video.Link, biddingerrors.ErrVideoAlreadyExists)
		}
		return fmt.Errorf("create video %s: %w", video.Link, translate(err))
	}
	return nil
}

func (r *GormRepo) GetVideo(ctx context.Context, videoID int64) (models.Video, error) {
	var v models.Video
	if err := r.locked(ctx).First(&v, videoID).Error; err != nil {
		return models.Video{}, fmt.Errorf("get video %d: %w", videoID, notFound(err, biddingerrors.ErrUnknownVideo))
	}
	return v, nil
}

func (r *GormRepo) ListVideos(ctx context.Context, filter VideoFilter) ([]models.Video, error) {
	q := r.query(ctx).Order("id")
	if filter.State != "" {
		q = q.Where("state = ?", filter.State)
	}
	if filter.WithStatistics {
		q = q.Where("statistics_updated_at IS NOT NULL")
	}
	var videos []models.Video
	if err := q.Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("list videos: %w", translate(err))
	}
	return videos, nil
}

func (r *GormRepo) SetVideoState(ctx context.Context, videoID int64, state models.VideoState) error {
	res := r.query(ctx).Model(&models.Video{}).Where("id = ?", videoID).Update("state", state)
	if res.Error != nil {
		return fmt.Errorf("set state of video %d: %w", videoID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("set state of video %d: %w", videoID, biddingerrors.ErrUnknownVideo)
	}
	return nil
}

func (r *GormRepo) UpdateVideoStatistics(ctx context.Context, videoID int64, stats models.VideoStatistics, at time.Time) error {
	res := r.query(ctx).Model(&models.Video{}).Where("id = ?", videoID).Updates(map[string]any{
		"views":                 stats.Views,
		"likes":                 stats.Likes,
		"dislikes":              stats.Dislikes,
		"statistics_updated_at": at,
	})
	if res.Error != nil {
		return fmt.Errorf("update statistics of video %d: %w", videoID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update statistics of video %d: %w", videoID, biddingerrors.ErrUnknownVideo)
	}
	return nil
}

func (r *GormRepo) CreateAuction(ctx context.Context, auction *models.Auction) error {
	if err := r.query(ctx).Create(auction).Error; err != nil {
		return fmt.Errorf("create auction for video %d: %w", auction.VideoID, translate(err))
	}
	return nil
}

func (r *GormRepo) GetAuction(ctx context.Context, auctionID int64) (models.Auction, error) {
	var a models.Auction
	if err := r.locked(ctx).First(&a, auctionID).Error; err != nil {
		return models.Auction{}, fmt.Errorf("get auction %d: %w", auctionID, notFound(err, biddingerrors.ErrUnknownAuction))
	}
	return a, nil
}

func (r *GormRepo) ListAuctions(ctx context.Context, filter AuctionFilter) ([]models.Auction, error) {
	q := r.query(ctx).Order("id")
	if filter.State != "" {
		q = q.Where("state = ?", filter.State)
	}
	if filter.ExpiredBy != nil {
		q = q.Where("auction_expiration <= ?", *filter.ExpiredBy)
	}
	if len(filter.IDs) > 0 {
		q = q.Where("id IN ?", filter.IDs)
	}
	var auctions []models.Auction
	if err := q.Find(&auctions).Error; err != nil {
		return nil, fmt.Errorf("list auctions: %w", translate(err))
	}
	return auctions, nil
}

func (r *GormRepo) CountOpenAuctions(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.query(ctx).Model(&models.Auction{}).
		Where("state = ? AND rental_expiration > ?", models.AuctionActive, now).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count open auctions: %w", translate(err))
	}
	return n, nil
}

func (r *GormRepo) UpdateAuction(ctx context.Context, auction models.Auction) error {
	if err := r.query(ctx).Save(&auction).Error; err != nil {
		return fmt.Errorf("update auction %d: %w", auction.ID, translate(err))
	}
	return nil
}

func (r *GormRepo) CreateBid(ctx context.Context, bid *models.Bid) error {
	if err := r.query(ctx).Create(bid).Error; err != nil {
		return fmt.Errorf("record bid for auction %d: %w", bid.AuctionID, translate(err))
	}
	return nil
}

func (r *GormRepo) ListBids(ctx context.Context, filter BidFilter) ([]models.Bid, error) {
	q := r.query(ctx).Order("id")
	if filter.AuctionID != 0 {
		q = q.Where("auction_id = ?", filter.AuctionID)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	var bids []models.Bid
	if err := q.Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("list bids: %w", translate(err))
	}
	return bids, nil
}

func (r *GormRepo) CreateRent(ctx context.Context, rent *models.Rent) error {
	if err := r.query(ctx).Create(rent).Error; err != nil {
		return fmt.Errorf("create rent for auction %d: %w", rent.AuctionID, translate(err))
	}
	return nil
}

func (r *GormRepo) GetRent(ctx context.Context, rentID int64) (models.Rent, error) {
	var rent models.Rent
	if err := r.locked(ctx).First(&rent, rentID).Error; err != nil {
		return models.Rent{}, fmt.Errorf("get rent %d: %w", rentID, notFound(err, biddingerrors.ErrUnknownRent))
	}
	return rent, nil
}

func (r *GormRepo) ListRents(ctx context.Context, filter RentFilter) ([]models.Rent, error) {
	q := r.query(ctx).Order("id")
	if filter.State != "" {
		q = q.Where("state = ?", filter.State)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	var rents []models.Rent
	if err := q.Find(&rents).Error; err != nil {
		return nil, fmt.Errorf("list rents: %w", translate(err))
	}
	return rents, nil
}

func (r *GormRepo) UpdateRent(ctx context.Context, rent models.Rent) error {
	if err := r.query(ctx).Save(&rent).Error; err != nil {
		return fmt.Errorf("update rent %d: %w", rent.ID, translate(err))
	}
	return nil
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return translate(err)
}

// translate maps driver-level contention errors to ErrPersistenceConflict
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%w: %v", biddingerrors.ErrPersistenceConflict, err)
		}
	}
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY") {
		return fmt.Errorf("%w: %v", biddingerrors.ErrPersistenceConflict, err)
	}
	return err
}
