package repository

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"stream-sync/constant"
	"stream-sync/entities"
)

// ErrNotFound is returned by lookups that matched no stream record.
var ErrNotFound = errors.New("stream record not found")

type StreamRepository interface {
	GetDB() *gorm.DB
	CreateStream(ctx context.Context, stream *entities.AssetStream) error
	FindByAssetId(ctx context.Context, assetId string) (*entities.AssetStream, error)
	// UpdateByAssetId applies updates to the unique record matching assetId
	// and reports how many rows matched. Zero rows is not an error here; the
	// caller decides whether that is a fault.
	UpdateByAssetId(ctx context.Context, assetId string, updates map[string]interface{}) (int64, error)
	FindReadyByContentHash(ctx context.Context, contentHash string) (*entities.AssetStream, error)
	ListStreams(ctx context.Context) ([]*entities.AssetStream, error)
	ListUnready(ctx context.Context, limit int) ([]*entities.AssetStream, error)
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB) StreamRepository {
	gormDB, _ := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		},
	)
	return &repo{
		db: gormDB,
	}
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

func (r *repo) CreateStream(ctx context.Context, stream *entities.AssetStream) error {
	return r.GetDB().WithContext(ctx).Create(stream).Error
}

func (r *repo) FindByAssetId(ctx context.Context, assetId string) (*entities.AssetStream, error) {
	stream := &entities.AssetStream{}
	err := r.GetDB().WithContext(ctx).First(stream, "asset_id = ?", assetId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (r *repo) UpdateByAssetId(ctx context.Context, assetId string, updates map[string]interface{}) (int64, error) {
	res := r.GetDB().WithContext(ctx).
		Model(&entities.AssetStream{}).
		Where("asset_id = ?", assetId).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repo) FindReadyByContentHash(ctx context.Context, contentHash string) (*entities.AssetStream, error) {
	stream := &entities.AssetStream{}
	err := r.GetDB().WithContext(ctx).
		Where("content_hash = ? AND status = ?", contentHash, constant.StreamStatusReady).
		First(stream).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (r *repo) ListStreams(ctx context.Context) ([]*entities.AssetStream, error) {
	var streams []*entities.AssetStream
	err := r.GetDB().WithContext(ctx).Order("created_at DESC").Find(&streams).Error
	if err != nil {
		return nil, err
	}
	return streams, nil
}

func (r *repo) ListUnready(ctx context.Context, limit int) ([]*entities.AssetStream, error) {
	var streams []*entities.AssetStream
	err := r.GetDB().WithContext(ctx).
		Where("status <> ?", constant.StreamStatusReady).
		Order("created_at ASC").
		Limit(limit).
		Find(&streams).Error
	if err != nil {
		return nil, err
	}
	return streams, nil
}
