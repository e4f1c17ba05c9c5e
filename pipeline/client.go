package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// UpstreamError reports a failed call to the transcoding pipeline. Code is the
// upstream HTTP status, or 0 when the pipeline was unreachable.
type UpstreamError struct {
	Code int
	Err  error
}

func (e *UpstreamError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("pipeline returned %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("pipeline unreachable: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Asset is the pipeline's view of one media asset. Raw carries the complete
// upstream document so callers are not limited to the fields modeled here.
type Asset struct {
	Id         string      `json:"id"`
	PlaybackId string      `json:"playbackId"`
	Status     AssetStatus `json:"status"`

	Raw json.RawMessage `json:"-"`
}

type AssetStatus struct {
	Phase string `json:"phase"`
}

type importRequest struct {
	Url  string `json:"url"`
	Name string `json:"name"`
}

type importResponse struct {
	Asset Asset `json:"asset"`
}

type Client struct {
	baseUrl string
	apiKey  string
	client  *http.Client
}

func NewClient(baseUrl, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseUrl: strings.TrimRight(baseUrl, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetAsset fetches the current upstream document for one asset.
func (c *Client) GetAsset(ctx context.Context, assetId string) (*Asset, error) {
	url := fmt.Sprintf("%s/asset/%s", c.baseUrl, assetId)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build asset request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &UpstreamError{Code: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Code: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(body)))}
	}

	asset := &Asset{}
	if err := json.Unmarshal(body, asset); err != nil {
		return nil, &UpstreamError{Code: resp.StatusCode, Err: fmt.Errorf("decode asset document: %w", err)}
	}
	asset.Raw = body
	return asset, nil
}

// ImportAsset asks the pipeline to ingest media from sourceUrl and start
// transcoding. The returned asset may already carry a playback id.
func (c *Client) ImportAsset(ctx context.Context, sourceUrl, name string) (*Asset, error) {
	payload, err := json.Marshal(importRequest{Url: sourceUrl, Name: name})
	if err != nil {
		return nil, fmt.Errorf("encode import request: %w", err)
	}

	url := fmt.Sprintf("%s/asset/import", c.baseUrl)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build import request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &UpstreamError{Code: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Code: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(body)))}
	}

	var decoded importResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &UpstreamError{Code: resp.StatusCode, Err: fmt.Errorf("decode import response: %w", err)}
	}
	decoded.Asset.Raw = body
	return &decoded.Asset, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}
