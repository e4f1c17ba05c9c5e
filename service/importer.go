package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"stream-sync/config"
	"stream-sync/constant"
	"stream-sync/dto"
	"stream-sync/entities"
	"stream-sync/repository"
)

// ImportService registers new media with the transcoding pipeline and creates
// the local tracking record. The pipeline pulls the media from a source URL;
// callers either supply one directly or name an object in the media bucket,
// for which a presigned URL is generated.
type ImportService interface {
	Import(ctx context.Context, req dto.ImportRequest) (*dto.ImportResponse, error)
}

type importService struct {
	repo     repository.StreamRepository
	pipeline PipelineClient
	cfg      *config.Config
}

func NewImportService(repo repository.StreamRepository, pc PipelineClient, cfg *config.Config) ImportService {
	return &importService{
		repo:     repo,
		pipeline: pc,
		cfg:      cfg,
	}
}

func (s *importService) Import(ctx context.Context, req dto.ImportRequest) (*dto.ImportResponse, error) {
	if req.ContentHash == "" {
		return nil, errors.Join(ErrValidation, errors.New("missing content hash"))
	}
	if req.SourceUrl == "" && req.ObjectName == "" {
		return nil, errors.Join(ErrValidation, errors.New("missing source url or object name"))
	}

	sourceUrl := req.SourceUrl
	if sourceUrl == "" {
		presigned, err := s.cfg.Storage.PresignedGetObject(ctx, s.cfg.MinIOBucket, req.ObjectName, 12*time.Hour, nil)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("object", req.ObjectName).Msg("failed to presign source object")
			return nil, errors.Join(ErrStore, err)
		}
		sourceUrl = presigned.String()
	}

	asset, err := s.pipeline.ImportAsset(ctx, sourceUrl, req.Name)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("content_hash", req.ContentHash).Msg("pipeline import failed")
		return nil, err
	}

	now := time.Now().UTC()
	status := FromPhase(asset.Status.Phase)
	stream := &entities.AssetStream{
		ID:             uuid.New(),
		AssetId:        asset.Id,
		ContentHash:    req.ContentHash,
		Status:         status,
		Name:           req.Name,
		UploaderWallet: req.UploaderWallet,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	// The handle is only trusted once the pipeline reports ready; until then
	// the webhook or poller fills it in.
	if status == constant.StreamStatusReady {
		stream.PlaybackHandle = asset.PlaybackId
	}

	if err := s.repo.CreateStream(ctx, stream); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("asset_id", asset.Id).Msg("failed to create stream record")
		return nil, errors.Join(ErrStore, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("asset_id", asset.Id).
		Str("content_hash", req.ContentHash).
		Msg("registered asset with pipeline")

	return &dto.ImportResponse{
		AssetId:    asset.Id,
		PlaybackId: asset.PlaybackId,
		Status:     status.String(),
	}, nil
}
