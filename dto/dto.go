package dto

import "encoding/json"

// StatusEvent is the payload the pipeline delivers for a status change, over
// the webhook endpoint or the status event queue. Status is either a bare
// string or an object carrying a nested phase.
type StatusEvent struct {
	Id     string          `json:"id"`
	Status json.RawMessage `json:"status"`
}

type ResolveResponse struct {
	PlaybackId *string `json:"playbackId"`
	Status     *string `json:"status"`
}

type ImportRequest struct {
	SourceUrl      string `json:"sourceUrl"`
	ObjectName     string `json:"objectName"`
	ContentHash    string `json:"contentHash"`
	Name           string `json:"name"`
	UploaderWallet string `json:"uploaderWallet"`
}

type ImportResponse struct {
	AssetId    string `json:"assetId"`
	PlaybackId string `json:"playbackId,omitempty"`
	Status     string `json:"status"`
}

type ReconcileRequest struct {
	Limit int `json:"limit"`
}

type ReconcileResult struct {
	AssetId string `json:"assetId"`
	Status  string `json:"status,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type ReconcileResponse struct {
	Processed int               `json:"processed"`
	Results   []ReconcileResult `json:"results"`
}
