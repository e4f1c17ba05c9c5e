package service

import (
	"encoding/json"

	"stream-sync/constant"
)

// Normalize maps a raw status payload from the pipeline onto the canonical
// lifecycle status. The pipeline reports status either as a bare string or as
// an object with a nested phase; when the phase is present it wins. Anything
// not recognized as ready or failed counts as still processing.
func Normalize(raw json.RawMessage) constant.StreamStatus {
	if len(raw) == 0 {
		return constant.StreamStatusProcessing
	}

	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil {
		return FromPhase(bare)
	}

	var nested struct {
		Phase string `json:"phase"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return FromPhase(nested.Phase)
	}

	return constant.StreamStatusProcessing
}

// FromPhase maps one pipeline phase string onto the canonical status.
func FromPhase(phase string) constant.StreamStatus {
	switch constant.StreamStatus(phase) {
	case constant.StreamStatusReady:
		return constant.StreamStatusReady
	case constant.StreamStatusFailed:
		return constant.StreamStatusFailed
	default:
		return constant.StreamStatusProcessing
	}
}

// playbackIdFrom pulls a playback id out of a status payload when the
// pipeline chose to include one in the notification body.
func playbackIdFrom(raw json.RawMessage) string {
	var nested struct {
		PlaybackId string `json:"playbackId"`
	}
	if err := json.Unmarshal(raw, &nested); err != nil {
		return ""
	}
	return nested.PlaybackId
}
