package service

import (
	"context"
	"errors"
	"testing"

	"stream-sync/config"
	"stream-sync/constant"
	"stream-sync/dto"
	"stream-sync/pipeline"
)

func TestImportCreatesProcessingRecord(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewImportService(repo, &fakePipeline{}, &config.Config{})

	resp, err := svc.Import(context.Background(), dto.ImportRequest{
		SourceUrl:   "https://gateway.example/ipfs/h1",
		ContentHash: "h1",
		Name:        "demo",
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if resp.AssetId != "imported" || resp.Status != "processing" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	stored, err := repo.FindByAssetId(context.Background(), "imported")
	if err != nil {
		t.Fatalf("FindByAssetId: %v", err)
	}
	if stored.ContentHash != "h1" || stored.Status != constant.StreamStatusProcessing {
		t.Fatalf("unexpected record: %+v", stored)
	}
	if stored.PlaybackHandle != "" {
		t.Fatalf("handle must stay empty until ready, got %q", stored.PlaybackHandle)
	}
}

func TestImportValidation(t *testing.T) {
	t.Parallel()

	svc := NewImportService(newFakeRepo(), &fakePipeline{}, &config.Config{})

	_, err := svc.Import(context.Background(), dto.ImportRequest{SourceUrl: "https://x"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing hash, got %v", err)
	}

	_, err = svc.Import(context.Background(), dto.ImportRequest{ContentHash: "h1"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing source, got %v", err)
	}
}

func TestImportUpstreamFailureCreatesNothing(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewImportService(repo, &fakePipeline{err: &pipeline.UpstreamError{Code: 503, Err: errors.New("unavailable")}}, &config.Config{})

	_, err := svc.Import(context.Background(), dto.ImportRequest{SourceUrl: "https://x", ContentHash: "h1"})
	var upstream *pipeline.UpstreamError
	if !errors.As(err, &upstream) || upstream.Code != 503 {
		t.Fatalf("expected upstream error, got %v", err)
	}

	streams, _ := repo.ListStreams(context.Background())
	if len(streams) != 0 {
		t.Fatalf("expected no records after failed import, got %d", len(streams))
	}
}
