package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"stream-sync/dto"
	"stream-sync/entities"
	"stream-sync/pipeline"
	"stream-sync/service"
)

type stubSync struct {
	ingestErr error
	ingested  []dto.StatusEvent
	pollAsset *pipeline.Asset
	pollErr   error
	resolve   dto.ResolveResponse
	streams   []*entities.AssetStream
}

func (s *stubSync) Ingest(ctx context.Context, event dto.StatusEvent) error {
	s.ingested = append(s.ingested, event)
	return s.ingestErr
}

func (s *stubSync) Poll(ctx context.Context, assetId string) (*pipeline.Asset, error) {
	return s.pollAsset, s.pollErr
}

func (s *stubSync) Resolve(ctx context.Context, contentHash string) (dto.ResolveResponse, error) {
	return s.resolve, nil
}

func (s *stubSync) List(ctx context.Context) ([]*entities.AssetStream, error) {
	return s.streams, nil
}

func (s *stubSync) Reconcile(ctx context.Context, limit int) (*dto.ReconcileResponse, error) {
	return &dto.ReconcileResponse{}, nil
}

type stubImport struct {
	resp *dto.ImportResponse
	err  error
}

func (s *stubImport) Import(ctx context.Context, req dto.ImportRequest) (*dto.ImportResponse, error) {
	return s.resp, s.err
}

func newTestRouter(sync *stubSync, imp *stubImport) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r, ServiceDependencies{SyncService: sync, ImportService: imp})
	return r
}

func TestWebhookMapsValidationTo400(t *testing.T) {
	t.Parallel()

	sync := &stubSync{ingestErr: errors.Join(service.ErrValidation, errors.New("missing asset id"))}
	r := newTestRouter(sync, &stubImport{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"status":"ready"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestWebhookAcknowledges(t *testing.T) {
	t.Parallel()

	sync := &stubSync{}
	r := newTestRouter(sync, &stubImport{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"id":"a1","status":{"phase":"ready"}}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(sync.ingested) != 1 || sync.ingested[0].Id != "a1" {
		t.Fatalf("event not passed through: %+v", sync.ingested)
	}
}

func TestStatusPropagatesUpstreamFailure(t *testing.T) {
	t.Parallel()

	sync := &stubSync{pollErr: &pipeline.UpstreamError{Code: 500, Err: errors.New("boom")}}
	r := newTestRouter(sync, &stubImport{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status/a1", nil))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["upstreamStatus"] != float64(500) {
		t.Fatalf("expected upstream status in body, got %v", body)
	}
}

func TestStatusReturnsUpstreamDocumentVerbatim(t *testing.T) {
	t.Parallel()

	raw := `{"id":"a1","playbackId":"pb123","status":{"phase":"ready"},"extra":"field"}`
	sync := &stubSync{pollAsset: &pipeline.Asset{Id: "a1", Raw: json.RawMessage(raw)}}
	r := newTestRouter(sync, &stubImport{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status/a1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != raw {
		t.Fatalf("document rewritten: %s", w.Body.String())
	}
}

func TestStreamMissIsNullNotError(t *testing.T) {
	t.Parallel()

	r := newTestRouter(&stubSync{}, &stubImport{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream?cid=h1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body dto.ResolveResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.PlaybackId != nil || body.Status != nil {
		t.Fatalf("expected null fields, got %s", w.Body.String())
	}
}

func TestStatusEventHandlerFeedsIngest(t *testing.T) {
	t.Parallel()

	sync := &stubSync{}
	deps := ServiceDependencies{SyncService: sync, ImportService: &stubImport{}}

	msg := amqp.Delivery{Body: []byte(`{"id":"a1","status":"ready"}`)}
	if err := StatusEventHandler(context.Background(), msg, deps); err != nil {
		t.Fatalf("StatusEventHandler: %v", err)
	}
	if len(sync.ingested) != 1 || sync.ingested[0].Id != "a1" {
		t.Fatalf("event not ingested: %+v", sync.ingested)
	}

	bad := amqp.Delivery{Body: []byte(`not json`)}
	if err := StatusEventHandler(context.Background(), bad, deps); err == nil {
		t.Fatal("expected error for malformed event")
	}
}
