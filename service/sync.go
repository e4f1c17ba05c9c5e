package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"stream-sync/constant"
	"stream-sync/dto"
	"stream-sync/entities"
	"stream-sync/pipeline"
	"stream-sync/repository"
)

// PipelineClient is the slice of the transcoding pipeline API this service
// needs. Satisfied by pipeline.Client; tests substitute a fake.
type PipelineClient interface {
	GetAsset(ctx context.Context, assetId string) (*pipeline.Asset, error)
	ImportAsset(ctx context.Context, sourceUrl, name string) (*pipeline.Asset, error)
}

type SyncService interface {
	// Ingest applies one pushed status notification to the store.
	Ingest(ctx context.Context, event dto.StatusEvent) error
	// Poll fetches the current upstream document for assetId, applies it to
	// the store, and returns the document verbatim.
	Poll(ctx context.Context, assetId string) (*pipeline.Asset, error)
	// Resolve answers which playback handle serves a content hash. A miss or
	// a not-yet-ready record is a normal null result, not an error.
	Resolve(ctx context.Context, contentHash string) (dto.ResolveResponse, error)
	List(ctx context.Context) ([]*entities.AssetStream, error)
	// Reconcile re-polls up to limit records that are not ready yet.
	Reconcile(ctx context.Context, limit int) (*dto.ReconcileResponse, error)
}

type syncService struct {
	repo     repository.StreamRepository
	pipeline PipelineClient
}

func NewSyncService(repo repository.StreamRepository, pc PipelineClient) SyncService {
	return &syncService{
		repo:     repo,
		pipeline: pc,
	}
}

func (s *syncService) Ingest(ctx context.Context, event dto.StatusEvent) error {
	if event.Id == "" {
		return errors.Join(ErrValidation, errors.New("missing asset id"))
	}
	if len(event.Status) == 0 || string(event.Status) == "null" {
		return errors.Join(ErrValidation, errors.New("missing status"))
	}

	status := Normalize(event.Status)
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if status == constant.StreamStatusReady {
		// Keep any handle the pipeline put in the notification body; when
		// absent a later poll or webhook fills it in.
		if playbackId := playbackIdFrom(event.Status); playbackId != "" {
			updates["playback_handle"] = playbackId
		}
	}

	rows, err := s.repo.UpdateByAssetId(ctx, event.Id, updates)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("asset_id", event.Id).Msg("failed to apply status update")
		return errors.Join(ErrStore, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: asset %s", ErrNotFound, event.Id)
	}

	zerolog.Ctx(ctx).Info().Str("asset_id", event.Id).Str("status", status.String()).Msg("applied status update")
	return nil
}

func (s *syncService) Poll(ctx context.Context, assetId string) (*pipeline.Asset, error) {
	if assetId == "" {
		return nil, errors.Join(ErrValidation, errors.New("missing asset id"))
	}

	// Fetch first, write second: a failed fetch must leave the record as it
	// was.
	asset, err := s.pipeline.GetAsset(ctx, assetId)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("asset_id", assetId).Msg("pipeline status fetch failed")
		return nil, err
	}

	status := FromPhase(asset.Status.Phase)
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if status == constant.StreamStatusReady && asset.PlaybackId != "" {
		updates["playback_handle"] = asset.PlaybackId
	}

	rows, err := s.repo.UpdateByAssetId(ctx, assetId, updates)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("asset_id", assetId).Msg("failed to apply polled status")
		return nil, errors.Join(ErrStore, err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: asset %s", ErrNotFound, assetId)
	}

	return asset, nil
}

func (s *syncService) Resolve(ctx context.Context, contentHash string) (dto.ResolveResponse, error) {
	if contentHash == "" {
		return dto.ResolveResponse{}, errors.Join(ErrValidation, errors.New("missing content hash"))
	}

	stream, err := s.repo.FindReadyByContentHash(ctx, contentHash)
	if errors.Is(err, repository.ErrNotFound) {
		return dto.ResolveResponse{}, nil
	}
	if err != nil {
		return dto.ResolveResponse{}, errors.Join(ErrStore, err)
	}
	// Ready but the handle has not landed yet (webhook body omitted it):
	// still a normal empty result until a poll fills it in.
	if stream.PlaybackHandle == "" {
		return dto.ResolveResponse{}, nil
	}

	status := stream.Status.String()
	return dto.ResolveResponse{
		PlaybackId: &stream.PlaybackHandle,
		Status:     &status,
	}, nil
}

func (s *syncService) List(ctx context.Context) ([]*entities.AssetStream, error) {
	streams, err := s.repo.ListStreams(ctx)
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	return streams, nil
}

func (s *syncService) Reconcile(ctx context.Context, limit int) (*dto.ReconcileResponse, error) {
	if limit <= 0 {
		limit = 10
	}

	streams, err := s.repo.ListUnready(ctx, limit)
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}

	resp := &dto.ReconcileResponse{Results: make([]dto.ReconcileResult, 0, len(streams))}
	for _, stream := range streams {
		result := dto.ReconcileResult{AssetId: stream.AssetId}
		asset, err := s.Poll(ctx, stream.AssetId)
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Success = true
			result.Status = FromPhase(asset.Status.Phase).String()
		}
		resp.Results = append(resp.Results, result)
	}
	resp.Processed = len(resp.Results)
	return resp, nil
}
